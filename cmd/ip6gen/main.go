// Command ip6gen writes a synthetic IPv6 address dataset for exercising
// ip6count: a chosen number of distinct addresses padded to a total line
// count with random textual variants, shuffled, without a trailing newline.
//
// Usage:
//
//	ip6gen [--seed N] <output_file> <num_unique> <total_lines>
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/hupe1980/ip6count/testutil"
)

func main() {
	seed := flag.Int64("seed", 42, "random seed")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [--seed N] <output_file> <num_unique> <total_lines>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Writes total_lines IPv6 address lines containing exactly\nnum_unique distinct addresses.\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 3 {
		flag.Usage()
		os.Exit(2)
	}
	outputPath := flag.Arg(0)

	unique, err := strconv.Atoi(flag.Arg(1))
	if err != nil || unique <= 0 {
		fmt.Fprintf(os.Stderr, "ip6gen: num_unique must be a positive integer, got %q\n", flag.Arg(1))
		os.Exit(2)
	}
	total, err := strconv.Atoi(flag.Arg(2))
	if err != nil || total <= 0 {
		fmt.Fprintf(os.Stderr, "ip6gen: total_lines must be a positive integer, got %q\n", flag.Arg(2))
		os.Exit(2)
	}

	lines, err := testutil.NewGenerator(*seed).Lines(unique, total)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ip6gen: %v\n", err)
		os.Exit(2)
	}

	if err := testutil.WriteFile(outputPath, lines); err != nil {
		fmt.Fprintf(os.Stderr, "ip6gen: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %d lines (%d unique) to %s\n", total, unique, outputPath)
}
