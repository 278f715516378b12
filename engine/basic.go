package engine

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/ip6count/internal/canon"
)

// CountBasic counts distinct canonical addresses wholly in memory: one
// pass over the input, every canonical form held in a set. Suitable below
// the size threshold where the whole address population fits in RAM.
//
// Returns the distinct count and the number of skipped lines (always zero
// under FailOnInvalid).
func CountBasic(ctx context.Context, inputPath string, optFns ...func(o *Options)) (uint64, uint64, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	f, err := opts.FS.OpenFile(inputPath, os.O_RDONLY, 0)
	if err != nil {
		return 0, 0, fmt.Errorf("engine: open input: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if opts.Progress != nil {
		r = io.TeeReader(f, opts.Progress)
	}

	unique := make(map[string]struct{})
	var skipped uint64

	canonical := make([]byte, 0, canon.Len)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return 0, skipped, err
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		canonical, err = canon.AppendCanonical(canonical[:0], string(line))
		if err != nil {
			if opts.InvalidPolicy == SkipInvalid {
				skipped++
				continue
			}
			return 0, skipped, err
		}

		if _, ok := unique[string(canonical)]; !ok {
			unique[string(canonical)] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, skipped, fmt.Errorf("engine: read input: %w", err)
	}

	return uint64(len(unique)), skipped, nil
}
