// Command ip6count counts the distinct IPv6 addresses in a text file and
// writes the decimal count to an output file.
//
// Usage:
//
//	ip6count [flags] <input_file> <output_file>
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"

	"github.com/hupe1980/ip6count"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	flags := flag.NewFlagSet("ip6count", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var (
		basic       = flags.Bool("basic", false, "force the in-memory strategy")
		optimized   = flags.Bool("optimized", false, "force the disk-spilling strategy")
		workers     = flags.Int("workers", 0, "counting workers (0 = available CPUs minus one)")
		spillCodec  = flags.String("spill-codec", "none", "spill compression: none, lz4 or zstd")
		memLimitMB  = flags.Int64("memory-limit-mb", 0, "counting memory budget in MiB (0 = unlimited)")
		ioLimitMB   = flags.Int64("io-limit-mb", 0, "spill IO throttle in MiB/s (0 = unlimited)")
		tempDir     = flags.String("temp-dir", "", "parent directory for spill files (default system temp)")
		progress    = flags.Bool("progress", false, "show a progress bar on stderr")
		logLevel    = flags.String("log-level", "warn", "log level: debug, info, warn or error")
		logJSON     = flags.Bool("log-json", false, "emit logs as JSON")
		skipInvalid = flags.Bool("skip-invalid", false, "skip unparseable lines instead of aborting")
	)

	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: ip6count [flags] <input_file> <output_file>\n\n")
		fmt.Fprintf(stderr, "Counts distinct IPv6 addresses in <input_file> and writes the\ndecimal count to <output_file>.\n\nFlags:\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return 2
	}

	if flags.NArg() != 2 {
		flags.Usage()
		return 2
	}
	inputPath, outputPath := flags.Arg(0), flags.Arg(1)

	if *basic && *optimized {
		fmt.Fprintln(stderr, "ip6count: --basic and --optimized are mutually exclusive")
		return 2
	}

	mode := ip6count.ModeAuto
	switch {
	case *basic:
		mode = ip6count.ModeBasic
	case *optimized:
		mode = ip6count.ModePartitioned
	}

	codec, err := ip6count.ParseCodec(*spillCodec)
	if err != nil {
		fmt.Fprintf(stderr, "ip6count: %v\n", err)
		return 2
	}

	level, err := parseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "ip6count: %v\n", err)
		return 2
	}

	logger := ip6count.NewTextLogger(level)
	if *logJSON {
		logger = ip6count.NewJSONLogger(level)
	}

	policy := ip6count.FailOnInvalid
	if *skipInvalid {
		policy = ip6count.SkipInvalid
	}

	optFns := []ip6count.Option{
		ip6count.WithMode(mode),
		ip6count.WithWorkers(*workers),
		ip6count.WithSpillCodec(codec),
		ip6count.WithTempDir(*tempDir),
		ip6count.WithInvalidPolicy(policy),
		ip6count.WithMemoryLimit(*memLimitMB << 20),
		ip6count.WithIOLimit(*ioLimitMB << 20),
		ip6count.WithLogger(logger),
	}

	var bar *progressbar.ProgressBar
	if *progress {
		size := int64(-1)
		if fi, err := os.Stat(inputPath); err == nil {
			size = fi.Size()
		}
		bar = progressbar.DefaultBytes(size, "counting")
		optFns = append(optFns, ip6count.WithProgress(bar))
	}

	counter, err := ip6count.New(optFns...)
	if err != nil {
		fmt.Fprintf(stderr, "ip6count: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = counter.CountFileTo(ctx, inputPath, outputPath)
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(stderr)
	}
	if err != nil {
		fmt.Fprintf(stderr, "ip6count: %v\n", err)
		return 1
	}
	return 0
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}
