package engine

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/ip6count/internal/canon"
	"github.com/hupe1980/ip6count/internal/fs"
	"github.com/hupe1980/ip6count/internal/resource"
	"github.com/hupe1980/ip6count/internal/spill"
)

// State is the coordinator lifecycle state.
type State int32

const (
	// StateIdle is the initial state before Run.
	StateIdle State = iota
	// StatePartitioning streams the input into spill files.
	StatePartitioning
	// StateCounting fans out per-partition counting tasks.
	StateCounting
	// StateAggregated has all partition results summed.
	StateAggregated
	// StateDone is the successful terminal state.
	StateDone
	// StateFailed is the failure terminal state, reachable from any
	// non-terminal state.
	StateFailed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePartitioning:
		return "partitioning"
	case StateCounting:
		return "counting"
	case StateAggregated:
		return "aggregated"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// InvalidPolicy decides what happens when a line fails canonicalization.
type InvalidPolicy int

const (
	// FailOnInvalid aborts the whole run on the first unparseable line.
	FailOnInvalid InvalidPolicy = iota
	// SkipInvalid drops unparseable lines and counts them in RunStats.
	SkipInvalid
)

// WorkerError wraps a failure of one partition counting task.
type WorkerError struct {
	Partition uint32
	Err       error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("engine: partition %04d worker: %v", e.Partition, e.Err)
}

func (e *WorkerError) Unwrap() error { return e.Err }

// ErrCoordinatorUsed is returned when Run is called more than once.
var ErrCoordinatorUsed = errors.New("engine: coordinator already used")

// Options configures a Coordinator.
type Options struct {
	// Partitions is the fixed number of spill partitions.
	Partitions int

	// FlushThreshold is the buffered-byte total that triggers a spill flush.
	FlushThreshold int

	// Workers bounds the counting worker pool.
	// 0 means available parallelism minus one.
	Workers int

	// TempDir is the parent directory for the per-run spill directory.
	// Empty means the system default.
	TempDir string

	// Codec compresses spill blocks.
	Codec Codec

	// InvalidPolicy decides handling of unparseable lines.
	InvalidPolicy InvalidPolicy

	// FS is the file system for input, spill files, and temp storage.
	FS fs.FileSystem

	// Resources bounds counting memory and spill IO. May be nil.
	Resources *resource.Controller

	// Logger receives phase events. May be nil.
	Logger *slog.Logger

	// Progress, if non-nil, receives every input byte read.
	// Wire a progress bar here.
	Progress io.Writer
}

// DefaultOptions are the default options for a Coordinator.
var DefaultOptions = Options{
	Partitions:     spill.DefaultPartitions,
	FlushThreshold: spill.DefaultFlushThreshold,
	Codec:          CodecNone,
	InvalidPolicy:  FailOnInvalid,
	FS:             fs.Default,
}

// DefaultWorkers returns the default counting worker-pool size:
// available parallelism minus one, at least one.
func DefaultWorkers() int {
	return max(1, runtime.NumCPU()-1)
}

// RunStats is a snapshot of coordinator counters after (or during) a run.
type RunStats struct {
	Lines             uint64 // non-empty input lines processed
	Skipped           uint64 // invalid lines dropped (SkipInvalid only)
	SpilledBytes      uint64 // bytes written to spill files
	Flushes           uint64 // spill flush cycles
	Partitions        uint64 // occupied partitions
	Distinct          uint64 // final distinct count (valid once aggregated)
	PartitionDuration time.Duration
	CountDuration     time.Duration
}

// Coordinator drives one external counting run through three phases:
// partitioning, counting, aggregation. It owns the lifecycle of all
// temporary storage; spill files never outlive Run, success or failure.
//
// A Coordinator is single-use.
type Coordinator struct {
	opts   Options
	logger *slog.Logger

	state atomic.Int32
	stats atomic.Pointer[RunStats]
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(optFns ...func(o *Options)) (*Coordinator, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Partitions <= 0 {
		return nil, fmt.Errorf("engine: partitions must be positive, got %d", opts.Partitions)
	}
	if opts.FlushThreshold <= 0 {
		return nil, fmt.Errorf("engine: flush threshold must be positive, got %d", opts.FlushThreshold)
	}
	if opts.Workers < 0 {
		return nil, fmt.Errorf("engine: workers must not be negative, got %d", opts.Workers)
	}
	if opts.Workers == 0 {
		opts.Workers = DefaultWorkers()
	}
	if opts.FS == nil {
		opts.FS = fs.Default
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Coordinator{
		opts:   opts,
		logger: logger,
	}
	c.stats.Store(&RunStats{})
	return c, nil
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// Stats returns a snapshot of the run counters.
func (c *Coordinator) Stats() RunStats {
	return *c.stats.Load()
}

func (c *Coordinator) fail(err error) error {
	c.state.Store(int32(StateFailed))
	return err
}

// Run counts the distinct canonical addresses in inputPath.
//
// Any single failure — IO, parse (under FailOnInvalid), or worker — aborts
// the whole run; no partial result is ever returned. The per-run temp
// directory is removed on every exit path.
func (c *Coordinator) Run(ctx context.Context, inputPath string) (uint64, error) {
	if !c.state.CompareAndSwap(int32(StateIdle), int32(StatePartitioning)) {
		return 0, ErrCoordinatorUsed
	}

	dir, err := c.opts.FS.MkdirTemp(c.opts.TempDir, "ip6count-")
	if err != nil {
		return 0, c.fail(fmt.Errorf("engine: create spill dir: %w", err))
	}
	defer func() {
		if rmErr := c.opts.FS.RemoveAll(dir); rmErr != nil {
			c.logger.WarnContext(ctx, "spill dir cleanup failed", "dir", dir, "error", rmErr)
		}
	}()

	stats := RunStats{}

	writer, err := c.partition(ctx, inputPath, dir, &stats)
	if err != nil {
		c.stats.Store(&stats)
		return 0, c.fail(err)
	}

	c.state.Store(int32(StateCounting))
	results, err := c.count(ctx, writer, &stats)
	if err != nil {
		c.stats.Store(&stats)
		return 0, c.fail(err)
	}

	c.state.Store(int32(StateAggregated))

	// Addition is commutative; completion order of workers is irrelevant.
	var total uint64
	for _, r := range results {
		total += r.Distinct
	}
	stats.Distinct = total
	c.stats.Store(&stats)

	c.state.Store(int32(StateDone))
	c.logger.InfoContext(ctx, "run done",
		"distinct", total,
		"lines", stats.Lines,
		"partitions", stats.Partitions,
	)
	return total, nil
}

// partition streams the input once, canonicalizing and spilling each line.
func (c *Coordinator) partition(ctx context.Context, inputPath, dir string, stats *RunStats) (*spill.Writer, error) {
	start := time.Now()

	writer, err := spill.NewWriter(dir, func(o *spill.WriterOptions) {
		o.Partitions = c.opts.Partitions
		o.FlushThreshold = c.opts.FlushThreshold
		o.Codec = spill.Codec(c.opts.Codec)
		o.FS = c.opts.FS
		o.Resources = c.opts.Resources
		o.Logger = c.logger
	})
	if err != nil {
		return nil, err
	}

	f, err := c.opts.FS.OpenFile(inputPath, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("engine: open input: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if c.opts.Progress != nil {
		r = io.TeeReader(f, c.opts.Progress)
	}

	canonical := make([]byte, 0, canon.Len)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		canonical, err = canon.AppendCanonical(canonical[:0], string(line))
		if err != nil {
			if c.opts.InvalidPolicy == SkipInvalid {
				stats.Skipped++
				c.logger.WarnContext(ctx, "skipping invalid line", "line", string(line))
				continue
			}
			return nil, err
		}

		stats.Lines++
		if err := writer.Add(ctx, canonical); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("engine: read input: %w", err)
	}

	if err := writer.Close(ctx); err != nil {
		return nil, err
	}

	ws := writer.Stats()
	stats.SpilledBytes = ws.BytesWritten
	stats.Flushes = ws.Flushes
	stats.Partitions = ws.Occupied
	stats.PartitionDuration = time.Since(start)

	c.logger.InfoContext(ctx, "partitioning done",
		"lines", stats.Lines,
		"skipped", stats.Skipped,
		"partitions", stats.Partitions,
		"spilled_bytes", stats.SpilledBytes,
		"duration", stats.PartitionDuration,
	)
	return writer, nil
}

// count fans one task per occupied partition out across the worker pool.
// Results travel only by return value; the first failure cancels the group.
func (c *Coordinator) count(ctx context.Context, writer *spill.Writer, stats *RunStats) ([]spill.PartitionResult, error) {
	start := time.Now()

	counter := spill.NewCounter(func(o *spill.CounterOptions) {
		o.Codec = spill.Codec(c.opts.Codec)
		o.FS = c.opts.FS
		o.Resources = c.opts.Resources
	})

	occupied := writer.Occupied().ToArray()
	results := make([]spill.PartitionResult, len(occupied))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)

	for i, p := range occupied {
		i, p := i, p
		g.Go(func() error {
			r, err := counter.CountDistinct(gctx, p, writer.PartitionPath(p))
			if err != nil {
				return &WorkerError{Partition: p, Err: err}
			}
			results[i] = r
			c.logger.DebugContext(gctx, "partition counted",
				"partition", p,
				"lines", r.Lines,
				"distinct", r.Distinct,
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.CountDuration = time.Since(start)
	return results, nil
}
