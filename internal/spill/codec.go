package spill

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/ip6count/internal/hash"
)

// Codec defines the compression algorithm applied to spill blocks.
type Codec uint8

const (
	// CodecNone stores spill files as plain newline-terminated text.
	CodecNone Codec = 0
	// CodecLZ4 stores LZ4 block compression (fast, modest ratio).
	CodecLZ4 Codec = 1
	// CodecZstd stores ZSTD block compression (better ratio).
	CodecZstd Codec = 2
)

// String implements fmt.Stringer.
func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecLZ4:
		return "lz4"
	case CodecZstd:
		return "zstd"
	default:
		return fmt.Sprintf("codec(%d)", uint8(c))
	}
}

// ParseCodec parses a codec name as used on the command line.
func ParseCodec(s string) (Codec, error) {
	switch s {
	case "", "none":
		return CodecNone, nil
	case "lz4":
		return CodecLZ4, nil
	case "zstd":
		return CodecZstd, nil
	default:
		return CodecNone, fmt.Errorf("spill: unknown codec %q", s)
	}
}

// ZSTD encoder/decoder pools. Encoders are expensive to construct and safe
// to reuse via EncodeAll/DecodeAll with nil writers/readers.
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// Compressed spill files are a sequence of self-contained blocks, one per
// flush. Block format:
//
//	[UncompressedSize uint32][CompressedSize uint32][CRC32C uint32][Payload...]
//
// CompressedSize == 0 means the payload is stored uncompressed (the block
// did not compress well). The CRC covers the stored payload.
//
// CodecNone files carry no framing at all: they are plain text, readable
// with any line tool, exactly what the counting phase mmaps.
const blockHeaderSize = 12

// encodeBlock frames and compresses one flush worth of partition data.
// CodecNone returns data unchanged.
func encodeBlock(c Codec, data []byte) ([]byte, error) {
	if c == CodecNone || len(data) == 0 {
		return data, nil
	}

	var compressed []byte
	var err error

	switch c {
	case CodecLZ4:
		compressed, err = compressLZ4(data)
	case CodecZstd:
		compressed, err = compressZstd(data)
	default:
		return nil, fmt.Errorf("spill: unknown codec %q", c)
	}
	if err != nil {
		return nil, err
	}

	// If compression doesn't help (ratio > 0.9), store uncompressed.
	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		block := make([]byte, blockHeaderSize+len(data))
		binary.LittleEndian.PutUint32(block[0:], uint32(len(data)))
		binary.LittleEndian.PutUint32(block[4:], 0) // 0 = uncompressed
		binary.LittleEndian.PutUint32(block[8:], hash.CRC32C(data))
		copy(block[blockHeaderSize:], data)
		return block, nil
	}

	block := make([]byte, blockHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(block[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(block[4:], uint32(len(compressed)))
	binary.LittleEndian.PutUint32(block[8:], hash.CRC32C(compressed))
	copy(block[blockHeaderSize:], compressed)
	return block, nil
}

func compressLZ4(data []byte) ([]byte, error) {
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))

	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // Incompressible
	}
	return compressed[:n], nil
}

func compressZstd(data []byte) ([]byte, error) {
	enc := getZstdEncoder()
	defer putZstdEncoder(enc)
	return enc.EncodeAll(data, nil), nil
}

// decodedSize returns the total uncompressed size of all blocks in a
// compressed spill file, reading headers only. Used to reserve memory
// before decoding. For CodecNone the file size is the decoded size.
func decodedSize(c Codec, data []byte) (int64, error) {
	if c == CodecNone {
		return int64(len(data)), nil
	}

	var total int64
	for off := 0; off < len(data); {
		if len(data)-off < blockHeaderSize {
			return 0, fmt.Errorf("spill: truncated block header at offset %d", off)
		}
		uncompressedSize := binary.LittleEndian.Uint32(data[off:])
		compressedSize := binary.LittleEndian.Uint32(data[off+4:])

		stored := int(compressedSize)
		if compressedSize == 0 {
			stored = int(uncompressedSize)
		}
		if len(data)-off-blockHeaderSize < stored {
			return 0, fmt.Errorf("spill: truncated block payload at offset %d", off)
		}

		total += int64(uncompressedSize)
		off += blockHeaderSize + stored
	}
	return total, nil
}

// decodeAll decompresses every block in data, appending to dst.
// Verifies the per-block CRC before decompressing.
func decodeAll(c Codec, data []byte, dst []byte) ([]byte, error) {
	if c == CodecNone {
		return append(dst, data...), nil
	}

	for off := 0; off < len(data); {
		if len(data)-off < blockHeaderSize {
			return nil, fmt.Errorf("spill: truncated block header at offset %d", off)
		}
		uncompressedSize := binary.LittleEndian.Uint32(data[off:])
		compressedSize := binary.LittleEndian.Uint32(data[off+4:])
		checksum := binary.LittleEndian.Uint32(data[off+8:])
		off += blockHeaderSize

		stored := int(compressedSize)
		if compressedSize == 0 {
			stored = int(uncompressedSize)
		}
		if len(data)-off < stored {
			return nil, fmt.Errorf("spill: truncated block payload at offset %d", off)
		}
		payload := data[off : off+stored]
		off += stored

		if got := hash.CRC32C(payload); got != checksum {
			return nil, fmt.Errorf("spill: block checksum mismatch: got %08x, want %08x", got, checksum)
		}

		if compressedSize == 0 {
			dst = append(dst, payload...)
			continue
		}

		switch c {
		case CodecLZ4:
			out := make([]byte, uncompressedSize)
			n, err := lz4.UncompressBlock(payload, out)
			if err != nil {
				return nil, fmt.Errorf("spill: lz4 decompress: %w", err)
			}
			dst = append(dst, out[:n]...)
		case CodecZstd:
			dec := getZstdDecoder()
			out, err := dec.DecodeAll(payload, nil)
			putZstdDecoder(dec)
			if err != nil {
				return nil, fmt.Errorf("spill: zstd decompress: %w", err)
			}
			dst = append(dst, out...)
		default:
			return nil, fmt.Errorf("spill: unknown codec %q", c)
		}
	}
	return dst, nil
}
