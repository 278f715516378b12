package spill

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/hupe1980/ip6count/internal/fs"
	"github.com/hupe1980/ip6count/internal/mmap"
	"github.com/hupe1980/ip6count/internal/resource"
)

// PartitionResult is the outcome of counting one spill file.
type PartitionResult struct {
	Partition uint32
	Lines     uint64 // total lines read, duplicates included
	Distinct  uint64
}

// CounterOptions configures a Counter.
type CounterOptions struct {
	// Codec must match the codec the spill files were written with.
	Codec Codec

	// FS is the file system spill files are read from.
	FS fs.FileSystem

	// Resources bounds the memory held by concurrent counters and
	// throttles read IO. May be nil.
	Resources *resource.Controller
}

// Counter counts distinct lines in spill files.
//
// A Counter is stateless and safe for concurrent use: each CountDistinct
// call owns exclusive access to its file and communicates only through its
// return value.
type Counter struct {
	opts CounterOptions
}

// NewCounter creates a Counter.
func NewCounter(optFns ...func(o *CounterOptions)) *Counter {
	opts := CounterOptions{
		Codec: CodecNone,
		FS:    fs.Default,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.FS == nil {
		opts.FS = fs.Default
	}
	return &Counter{opts: opts}
}

// CountDistinct loads one spill file fully and returns the number of
// distinct lines it contains. The whole partition must fit in memory; this
// rests on hashing spreading addresses roughly evenly across partitions.
// When a memory budget is configured, the decoded size is reserved up
// front: counters wait for each other when the budget is momentarily
// exhausted, and only a partition larger than the whole budget fails.
func (c *Counter) CountDistinct(ctx context.Context, partition uint32, path string) (PartitionResult, error) {
	result := PartitionResult{Partition: partition}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	raw, closeRaw, err := c.load(ctx, path)
	if err != nil {
		return result, err
	}
	defer closeRaw()

	if len(raw) == 0 {
		return result, nil
	}

	size, err := decodedSize(c.opts.Codec, raw)
	if err != nil {
		return result, &IOError{Op: "read", Path: path, Err: err}
	}

	if err := c.opts.Resources.AcquireMemory(ctx, size); err != nil {
		return result, err
	}
	defer c.opts.Resources.ReleaseMemory(size)

	data := raw
	if c.opts.Codec != CodecNone {
		data, err = decodeAll(c.opts.Codec, raw, make([]byte, 0, size))
		if err != nil {
			return result, &IOError{Op: "read", Path: path, Err: err}
		}
	}

	unique := make(map[string]struct{})
	for len(data) > 0 {
		var line []byte
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i], data[i+1:]
		} else {
			line, data = data, nil
		}
		if len(line) == 0 {
			continue
		}
		result.Lines++
		// string(line) copies, so the set stays valid after unmap.
		unique[string(line)] = struct{}{}
	}

	result.Distinct = uint64(len(unique))
	return result, nil
}

// load returns the raw spill file contents. On the local file system the
// file is memory-mapped for zero-copy sequential scans; injected file
// systems (fault injection in tests) are read through their own File.
func (c *Counter) load(ctx context.Context, path string) ([]byte, func(), error) {
	fi, err := c.opts.FS.Stat(path)
	if err != nil {
		return nil, nil, &IOError{Op: "stat", Path: path, Err: err}
	}

	if err := c.opts.Resources.AcquireIO(ctx, int(fi.Size())); err != nil {
		return nil, nil, err
	}

	if _, local := c.opts.FS.(fs.LocalFS); local {
		m, err := mmap.Open(path)
		if err != nil {
			return nil, nil, &IOError{Op: "mmap", Path: path, Err: err}
		}
		_ = m.Advise(mmap.AccessSequential)
		return m.Bytes(), func() { _ = m.Close() }, nil
	}

	f, err := c.opts.FS.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return data, func() {}, nil
}
