package hash

import "github.com/zeebo/xxh3"

// Sum64 computes the stable XXH3 hash of data.
// The result is identical across runs, processes, and architectures.
func Sum64(data []byte) uint64 {
	return xxh3.Hash(data)
}

// Partition maps data to a partition index in [0, partitions).
// partitions must be positive.
func Partition(data []byte, partitions int) int {
	return int(xxh3.Hash(data) % uint64(partitions))
}
