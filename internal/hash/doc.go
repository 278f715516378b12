// Package hash provides the deterministic hashing used for partition
// routing and for spill-block integrity checksums.
//
// # Partition routing (XXH3)
//
// Partition assignment must be reproducible across runs, processes, and
// machines: the same canonical address always maps to the same partition.
// Go's runtime map hash is seeded per process and therefore unusable here;
// routing uses XXH3 with its fixed default seed instead:
//
//	idx := hash.Partition(canonicalBytes, 4096)
//
// # CRC32-Castagnoli (CRC32C)
//
// Spill-block checksums use CRC32-Castagnoli, hardware-accelerated on x86
// (SSE4.2) and ARM:
//
//	checksum := hash.CRC32C(data)
package hash
