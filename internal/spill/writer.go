package spill

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/ip6count/internal/fs"
	"github.com/hupe1980/ip6count/internal/hash"
	"github.com/hupe1980/ip6count/internal/resource"
)

const (
	// DefaultPartitions is the fixed number of spill partitions.
	DefaultPartitions = 4096

	// DefaultFlushThreshold is the buffered-byte total that triggers a
	// flush of all partition buffers (8 MiB).
	DefaultFlushThreshold = 8 << 20
)

// IOError wraps a spill file IO failure with its operation and path.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("spill: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// WriterOptions configures a Writer.
type WriterOptions struct {
	// Partitions is the number of spill partitions.
	Partitions int

	// FlushThreshold is the total buffered bytes across all partitions
	// that triggers a flush.
	FlushThreshold int

	// Codec is the compression applied to flushed blocks.
	Codec Codec

	// FS is the file system spill files are written to.
	FS fs.FileSystem

	// Resources throttles flush IO. May be nil.
	Resources *resource.Controller

	// Logger receives flush events. May be nil.
	Logger *slog.Logger
}

// DefaultWriterOptions are the default options for a Writer.
var DefaultWriterOptions = WriterOptions{
	Partitions:     DefaultPartitions,
	FlushThreshold: DefaultFlushThreshold,
	Codec:          CodecNone,
	FS:             fs.Default,
}

// WriterStats is a snapshot of Writer counters.
type WriterStats struct {
	Lines        uint64 // canonical lines routed
	BytesWritten uint64 // bytes written to spill files (after encoding)
	Flushes      uint64 // flush cycles performed
	Occupied     uint64 // partitions holding at least one line
}

// Writer routes canonical address lines into per-partition buffers and
// spills them to disk in bounded flushes.
//
// A Writer is single-goroutine: the partitioning phase has exactly one
// stream reader and one writer per spill file, so no locking is needed.
// Ordering within a partition is irrelevant because the counting phase
// treats content as an unordered set.
type Writer struct {
	opts WriterOptions
	dir  string

	bufs     [][]byte
	buffered int
	occupied *roaring.Bitmap

	lines        uint64
	bytesWritten uint64
	flushes      uint64

	logger *slog.Logger
}

// NewWriter creates a Writer spilling into dir, which must exist.
func NewWriter(dir string, optFns ...func(o *WriterOptions)) (*Writer, error) {
	opts := DefaultWriterOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Partitions <= 0 {
		return nil, fmt.Errorf("spill: partitions must be positive, got %d", opts.Partitions)
	}
	if opts.FlushThreshold <= 0 {
		return nil, fmt.Errorf("spill: flush threshold must be positive, got %d", opts.FlushThreshold)
	}
	if opts.FS == nil {
		opts.FS = fs.Default
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Writer{
		opts:     opts,
		dir:      dir,
		bufs:     make([][]byte, opts.Partitions),
		occupied: roaring.New(),
		logger:   logger,
	}, nil
}

// Add routes one canonical address line to its partition buffer.
// The caller must not include the line terminator; Add appends it.
// Flushes all buffers when the buffered total crosses the threshold.
func (w *Writer) Add(ctx context.Context, canonical []byte) error {
	p := hash.Partition(canonical, w.opts.Partitions)

	w.bufs[p] = append(w.bufs[p], canonical...)
	w.bufs[p] = append(w.bufs[p], '\n')
	w.buffered += len(canonical) + 1
	w.occupied.Add(uint32(p))
	w.lines++

	if w.buffered >= w.opts.FlushThreshold {
		return w.Flush(ctx)
	}
	return nil
}

// Flush writes every non-empty partition buffer to its spill file and
// resets the buffers. Files are opened per flush and closed after, so the
// open-descriptor count stays O(1) regardless of the partition count.
func (w *Writer) Flush(ctx context.Context) error {
	if w.buffered == 0 {
		return nil
	}

	start := time.Now()
	var written int

	for p, buf := range w.bufs {
		if len(buf) == 0 {
			continue
		}

		n, err := w.flushPartition(ctx, uint32(p), buf)
		if err != nil {
			return err
		}
		written += n
		w.bufs[p] = buf[:0]
	}

	w.buffered = 0
	w.flushes++
	w.bytesWritten += uint64(written)

	w.logger.DebugContext(ctx, "spill flush",
		"bytes", written,
		"duration", time.Since(start),
	)
	return nil
}

func (w *Writer) flushPartition(ctx context.Context, p uint32, buf []byte) (int, error) {
	path := w.PartitionPath(p)

	block, err := encodeBlock(w.opts.Codec, buf)
	if err != nil {
		return 0, &IOError{Op: "encode", Path: path, Err: err}
	}

	if err := w.opts.Resources.AcquireIO(ctx, len(block)); err != nil {
		return 0, err
	}

	f, err := w.opts.FS.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, &IOError{Op: "open", Path: path, Err: err}
	}

	if _, err := f.Write(block); err != nil {
		_ = f.Close()
		return 0, &IOError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return 0, &IOError{Op: "close", Path: path, Err: err}
	}
	return len(block), nil
}

// Close flushes all remaining buffered data.
func (w *Writer) Close(ctx context.Context) error {
	return w.Flush(ctx)
}

// Occupied returns the set of partition ids holding at least one line.
// The bitmap is owned by the Writer; callers must not modify it.
func (w *Writer) Occupied() *roaring.Bitmap {
	return w.occupied
}

// PartitionPath returns the spill file path for partition p.
func (w *Writer) PartitionPath(p uint32) string {
	return filepath.Join(w.dir, fmt.Sprintf("part_%04d.spill", p))
}

// Stats returns a snapshot of the writer counters.
func (w *Writer) Stats() WriterStats {
	return WriterStats{
		Lines:        w.lines,
		BytesWritten: w.bytesWritten,
		Flushes:      w.flushes,
		Occupied:     w.occupied.GetCardinality(),
	}
}
