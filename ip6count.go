package ip6count

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/hupe1980/ip6count/engine"
	"github.com/hupe1980/ip6count/internal/resource"
)

// RunStats is a snapshot of the partitioned engine's run counters.
type RunStats = engine.RunStats

// Counter counts distinct IPv6 addresses in text files.
//
// A Counter is immutable after construction and safe for concurrent use;
// each CountFile call runs independently.
type Counter struct {
	opts    options
	logger  *Logger
	metrics MetricsCollector

	lastStats atomic.Pointer[RunStats]
}

// New creates a Counter.
func New(optFns ...Option) (*Counter, error) {
	opts := applyOptions(optFns)

	if opts.partitions <= 0 {
		return nil, fmt.Errorf("ip6count: partitions must be positive, got %d", opts.partitions)
	}
	if opts.flushThreshold <= 0 {
		return nil, fmt.Errorf("ip6count: flush threshold must be positive, got %d", opts.flushThreshold)
	}
	if opts.workers < 0 {
		return nil, fmt.Errorf("ip6count: workers must not be negative, got %d", opts.workers)
	}
	if opts.sizeThreshold < 0 {
		return nil, fmt.Errorf("ip6count: size threshold must not be negative, got %d", opts.sizeThreshold)
	}
	if opts.memoryLimit < 0 || opts.ioLimit < 0 {
		return nil, fmt.Errorf("ip6count: resource limits must not be negative")
	}
	switch opts.mode {
	case ModeAuto, ModeBasic, ModePartitioned:
	default:
		return nil, fmt.Errorf("ip6count: unknown mode %d", int(opts.mode))
	}

	c := &Counter{
		opts:    opts,
		logger:  opts.logger,
		metrics: opts.metrics,
	}
	c.lastStats.Store(&RunStats{})
	return c, nil
}

// CountFile counts the distinct IPv6 addresses in inputPath.
//
// The strategy is chosen by the configured mode; under ModeAuto the
// partitioned engine is used when the input exceeds the size threshold.
// Returns ErrInputNotFound if the input does not exist; any other failure
// aborts the run with no partial result.
func (c *Counter) CountFile(ctx context.Context, inputPath string) (uint64, error) {
	fi, err := os.Stat(inputPath)
	if err != nil {
		return 0, translateError(err)
	}

	mode := c.opts.mode
	if mode == ModeAuto {
		if fi.Size() > c.opts.sizeThreshold {
			mode = ModePartitioned
		} else {
			mode = ModeBasic
		}
	}

	workers := c.opts.workers
	if workers == 0 {
		workers = engine.DefaultWorkers()
	}

	c.logger.LogRunStart(ctx, mode, fi.Size(), workers)
	start := time.Now()

	var count, skipped uint64
	switch mode {
	case ModeBasic:
		count, skipped, err = c.runBasic(ctx, inputPath)
	default:
		count, skipped, err = c.runPartitioned(ctx, inputPath, workers)
	}

	duration := time.Since(start)
	err = translateError(err)
	c.metrics.RecordRun(mode, count, duration, err)
	c.logger.LogSkipped(ctx, skipped)
	c.logger.LogRunDone(ctx, mode, count, duration, err)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CountFileTo counts inputPath and writes the decimal count to outputPath
// with no trailing newline. On any counting failure nothing is written.
func (c *Counter) CountFileTo(ctx context.Context, inputPath, outputPath string) error {
	count, err := c.CountFile(ctx, inputPath)
	if err != nil {
		return err
	}

	err = os.WriteFile(outputPath, []byte(strconv.FormatUint(count, 10)), 0o644)
	c.logger.LogOutput(ctx, outputPath, count, err)
	if err != nil {
		return fmt.Errorf("ip6count: write output: %w", err)
	}
	return nil
}

// Stats returns the counters of the most recent partitioned run.
// Basic runs do not update it.
func (c *Counter) Stats() RunStats {
	return *c.lastStats.Load()
}

func (c *Counter) runBasic(ctx context.Context, inputPath string) (uint64, uint64, error) {
	return engine.CountBasic(ctx, inputPath, func(o *engine.Options) {
		o.InvalidPolicy = c.opts.invalidPolicy
		o.Progress = c.opts.progress
		o.Logger = c.logger.Logger
	})
}

func (c *Counter) runPartitioned(ctx context.Context, inputPath string, workers int) (uint64, uint64, error) {
	var res *resource.Controller
	if c.opts.memoryLimit > 0 || c.opts.ioLimit > 0 {
		res = resource.NewController(resource.Config{
			MemoryLimitBytes:   c.opts.memoryLimit,
			IOLimitBytesPerSec: c.opts.ioLimit,
		})
	}

	coord, err := engine.NewCoordinator(func(o *engine.Options) {
		o.Partitions = c.opts.partitions
		o.FlushThreshold = c.opts.flushThreshold
		o.Workers = workers
		o.TempDir = c.opts.tempDir
		o.Codec = c.opts.codec
		o.InvalidPolicy = c.opts.invalidPolicy
		o.Resources = res
		o.Logger = c.logger.Logger
		o.Progress = c.opts.progress
	})
	if err != nil {
		return 0, 0, err
	}

	count, err := coord.Run(ctx, inputPath)

	stats := coord.Stats()
	c.lastStats.Store(&stats)
	c.metrics.RecordPartitionPhase(stats.Lines, stats.SpilledBytes, stats.Flushes, stats.PartitionDuration)
	c.metrics.RecordCountPhase(stats.Partitions, stats.CountDuration)

	return count, stats.Skipped, err
}
