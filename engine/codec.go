package engine

import "github.com/hupe1980/ip6count/internal/spill"

// Codec selects the spill-file compression.
type Codec uint8

const (
	// CodecNone stores spill files as plain text (the default).
	CodecNone Codec = Codec(spill.CodecNone)
	// CodecLZ4 compresses spill blocks with LZ4.
	CodecLZ4 Codec = Codec(spill.CodecLZ4)
	// CodecZstd compresses spill blocks with ZSTD.
	CodecZstd Codec = Codec(spill.CodecZstd)
)

// String implements fmt.Stringer.
func (c Codec) String() string { return spill.Codec(c).String() }

// ParseCodec parses a codec name ("none", "lz4", "zstd").
func ParseCodec(s string) (Codec, error) {
	c, err := spill.ParseCodec(s)
	return Codec(c), err
}
