package spill

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ip6count/internal/fs"
	"github.com/hupe1980/ip6count/internal/hash"
)

func testLines(n int) [][]byte {
	lines := make([][]byte, n)
	for i := range lines {
		lines[i] = fmt.Appendf(nil, "2001:0db8:0000:0000:0000:0000:%04x:%04x", i>>16, i&0xffff)
	}
	return lines
}

func TestWriterRoutesEveryLineExactlyOnce(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	w, err := NewWriter(dir, func(o *WriterOptions) {
		o.Partitions = 16
	})
	require.NoError(t, err)

	lines := testLines(1000)
	for _, l := range lines {
		require.NoError(t, w.Add(ctx, l))
	}
	require.NoError(t, w.Close(ctx))

	// Collect everything written across all spill files.
	seen := make(map[string]int)
	for p := uint32(0); p < 16; p++ {
		data, err := os.ReadFile(w.PartitionPath(p))
		if os.IsNotExist(err) {
			continue
		}
		require.NoError(t, err)

		for _, line := range bytes.Split(data, []byte("\n")) {
			if len(line) == 0 {
				continue
			}
			seen[string(line)]++
			// Every spill line routes back to its own partition.
			assert.Equal(t, int(p), hash.Partition(line, 16))
		}
	}

	assert.Len(t, seen, len(lines))
	for _, l := range lines {
		assert.Equal(t, 1, seen[string(l)], "line %s", l)
	}
}

func TestWriterFlushThreshold(t *testing.T) {
	ctx := context.Background()

	// Threshold small enough that 1000 40-byte lines force many flushes.
	w, err := NewWriter(t.TempDir(), func(o *WriterOptions) {
		o.Partitions = 8
		o.FlushThreshold = 512
	})
	require.NoError(t, err)

	for _, l := range testLines(1000) {
		require.NoError(t, w.Add(ctx, l))
	}
	require.NoError(t, w.Close(ctx))

	stats := w.Stats()
	assert.Equal(t, uint64(1000), stats.Lines)
	assert.Greater(t, stats.Flushes, uint64(10))
	// 40 bytes per line with terminator.
	assert.Equal(t, uint64(1000*40), stats.BytesWritten)
}

func TestWriterOccupancyMatchesDisk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	w, err := NewWriter(dir, func(o *WriterOptions) {
		o.Partitions = 64
	})
	require.NoError(t, err)

	for _, l := range testLines(200) {
		require.NoError(t, w.Add(ctx, l))
	}
	require.NoError(t, w.Close(ctx))

	occupied := w.Occupied()
	for p := uint32(0); p < 64; p++ {
		fi, err := os.Stat(w.PartitionPath(p))
		if occupied.Contains(p) {
			require.NoError(t, err, "partition %d marked occupied but has no file", p)
			assert.Greater(t, fi.Size(), int64(0))
		} else {
			assert.True(t, os.IsNotExist(err), "partition %d not occupied but file exists", p)
		}
	}
}

func TestWriterDuplicateStaysInOnePartition(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	w, err := NewWriter(dir, func(o *WriterOptions) {
		o.Partitions = 32
		o.FlushThreshold = 64 // flush between duplicates
	})
	require.NoError(t, err)

	line := []byte("2001:0db0:0000:0000:0000:0000:0000:0030")
	for i := 0; i < 50; i++ {
		require.NoError(t, w.Add(ctx, line))
	}
	require.NoError(t, w.Close(ctx))

	assert.Equal(t, uint64(1), w.Occupied().GetCardinality())
}

func TestWriterCompressedFlushes(t *testing.T) {
	ctx := context.Background()

	for _, c := range []Codec{CodecLZ4, CodecZstd} {
		t.Run(c.String(), func(t *testing.T) {
			sub := t.TempDir()
			w, err := NewWriter(sub, func(o *WriterOptions) {
				o.Partitions = 4
				o.FlushThreshold = 1024
				o.Codec = c
			})
			require.NoError(t, err)

			lines := testLines(500)
			for _, l := range lines {
				require.NoError(t, w.Add(ctx, l))
			}
			require.NoError(t, w.Close(ctx))

			// Decoding all spill files yields every line back.
			total := 0
			for p := uint32(0); p < 4; p++ {
				raw, err := os.ReadFile(w.PartitionPath(p))
				if os.IsNotExist(err) {
					continue
				}
				require.NoError(t, err)

				decoded, err := decodeAll(c, raw, nil)
				require.NoError(t, err)
				for _, line := range bytes.Split(decoded, []byte("\n")) {
					if len(line) > 0 {
						total++
					}
				}
			}
			assert.Equal(t, len(lines), total)
		})
	}
}

func TestWriterSpillIOFailure(t *testing.T) {
	ctx := context.Background()
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("part_", fs.Fault{FailAfterBytes: 0})

	w, err := NewWriter(t.TempDir(), func(o *WriterOptions) {
		o.Partitions = 2
		o.FlushThreshold = 256
		o.FS = ffs
	})
	require.NoError(t, err)

	var addErr error
	for _, l := range testLines(100) {
		if addErr = w.Add(ctx, l); addErr != nil {
			break
		}
	}
	if addErr == nil {
		addErr = w.Close(ctx)
	}

	require.Error(t, addErr)
	var ioErr *IOError
	assert.ErrorAs(t, addErr, &ioErr)
	assert.Equal(t, "write", ioErr.Op)
}

func TestWriterRejectsBadOptions(t *testing.T) {
	_, err := NewWriter(t.TempDir(), func(o *WriterOptions) { o.Partitions = 0 })
	assert.Error(t, err)

	_, err = NewWriter(t.TempDir(), func(o *WriterOptions) { o.FlushThreshold = -1 })
	assert.Error(t, err)
}

func BenchmarkWriterAdd(b *testing.B) {
	ctx := context.Background()
	w, err := NewWriter(b.TempDir())
	if err != nil {
		b.Fatal(err)
	}

	line := []byte("2001:0db0:0000:0000:0000:0000:0000:0030")
	for i := 0; i < b.N; i++ {
		if err := w.Add(ctx, line); err != nil {
			b.Fatal(err)
		}
	}
	if err := w.Close(ctx); err != nil {
		b.Fatal(err)
	}
}
