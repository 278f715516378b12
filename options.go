package ip6count

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/hupe1980/ip6count/engine"
)

// Mode selects the counting strategy.
type Mode int

const (
	// ModeAuto selects the strategy by input size: partitioned above the
	// size threshold, basic below (the default).
	ModeAuto Mode = iota
	// ModeBasic forces the in-memory strategy.
	ModeBasic
	// ModePartitioned forces the external disk-spilling strategy.
	ModePartitioned
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeBasic:
		return "basic"
	case ModePartitioned:
		return "partitioned"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// InvalidPolicy decides what happens when a line fails canonicalization.
type InvalidPolicy = engine.InvalidPolicy

const (
	// FailOnInvalid aborts the whole run on the first unparseable line
	// (the default, matching the no-partial-results guarantee).
	FailOnInvalid = engine.FailOnInvalid
	// SkipInvalid drops unparseable lines and reports them in stats.
	SkipInvalid = engine.SkipInvalid
)

// Codec selects the spill-file compression for the partitioned strategy.
type Codec = engine.Codec

const (
	// CodecNone stores spill files as plain text (the default).
	CodecNone = engine.CodecNone
	// CodecLZ4 compresses spill blocks with LZ4.
	CodecLZ4 = engine.CodecLZ4
	// CodecZstd compresses spill blocks with ZSTD.
	CodecZstd = engine.CodecZstd
)

// ParseCodec parses a codec name ("none", "lz4", "zstd").
func ParseCodec(s string) (Codec, error) {
	return engine.ParseCodec(s)
}

const (
	// DefaultPartitions is the fixed number of spill partitions.
	DefaultPartitions = 4096

	// DefaultFlushThreshold is the buffered-byte total that triggers a
	// spill flush (8 MiB).
	DefaultFlushThreshold = 8 << 20

	// DefaultSizeThreshold is the input size above which ModeAuto selects
	// the partitioned strategy (50 MiB).
	DefaultSizeThreshold = 50 << 20
)

type options struct {
	mode           Mode
	workers        int
	partitions     int
	flushThreshold int
	sizeThreshold  int64
	tempDir        string
	codec          Codec
	invalidPolicy  InvalidPolicy
	memoryLimit    int64
	ioLimit        int64
	progress       io.Writer
	logger         *Logger
	metrics        MetricsCollector
}

// Option configures Counter construction.
type Option func(*options)

// WithMode forces a counting strategy instead of size-based auto-selection.
func WithMode(mode Mode) Option {
	return func(o *options) {
		o.mode = mode
	}
}

// WithWorkers sets the counting worker-pool size for the partitioned
// strategy. 0 means available parallelism minus one.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithPartitions overrides the spill partition count.
// Mostly useful in tests; changing it changes spill-file layout, not
// correctness.
func WithPartitions(p int) Option {
	return func(o *options) {
		o.partitions = p
	}
}

// WithFlushThreshold overrides the spill flush threshold in bytes.
// The partitioning phase never buffers more than this plus per-partition
// bookkeeping.
func WithFlushThreshold(bytes int) Option {
	return func(o *options) {
		o.flushThreshold = bytes
	}
}

// WithSizeThreshold overrides the input size above which ModeAuto selects
// the partitioned strategy.
func WithSizeThreshold(bytes int64) Option {
	return func(o *options) {
		o.sizeThreshold = bytes
	}
}

// WithTempDir sets the parent directory for per-run spill storage.
// Empty means the system default temp directory.
func WithTempDir(dir string) Option {
	return func(o *options) {
		o.tempDir = dir
	}
}

// WithSpillCodec selects spill-file compression, trading CPU for disk
// space during partitioned runs. Distinct counts are codec-invariant.
func WithSpillCodec(c Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithInvalidPolicy decides handling of unparseable lines.
func WithInvalidPolicy(p InvalidPolicy) Option {
	return func(o *options) {
		o.invalidPolicy = p
	}
}

// WithMemoryLimit caps the partition data held in memory by concurrent
// counting workers. Workers wait for one another when the budget is
// momentarily exhausted; only a partition exceeding the whole budget fails
// the run with a memory-limit error. 0 means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithIOLimit throttles spill read/write throughput in bytes per second.
// 0 means unlimited.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithProgress wires a writer that receives every input byte read, e.g. a
// progress bar. Pass nil to disable.
func WithProgress(w io.Writer) Option {
	return func(o *options) {
		o.progress = w
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring runs.
// Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metrics = mc
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		mode:           ModeAuto,
		partitions:     DefaultPartitions,
		flushThreshold: DefaultFlushThreshold,
		sizeThreshold:  DefaultSizeThreshold,
		codec:          CodecNone,
		invalidPolicy:  FailOnInvalid,
		logger:         NoopLogger(),
		metrics:        NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metrics == nil {
		o.metrics = NoopMetricsCollector{}
	}
	return o
}
