// Package spill implements the disk-spilling partition layer of the
// external counting engine.
//
// # Writing
//
// [Writer] routes canonical address lines into one of a fixed number of
// partitions by a deterministic hash of the canonical bytes. Lines
// accumulate in per-partition memory buffers; when the buffered total
// crosses the flush threshold, every non-empty buffer is appended to its
// partition's spill file and cleared. Memory use is bounded by the flush
// threshold plus per-partition bookkeeping, independent of input size.
//
// Identical canonical strings always hash to the same partition, so no
// address's occurrences are ever split across spill files. That invariant
// is what makes per-partition distinct counts summable into an exact
// global count.
//
// # Counting
//
// [Counter] loads exactly one spill file, deduplicates its lines in a set,
// and returns the set size. Counters share no mutable state and are fanned
// out across a bounded worker pool by the engine coordinator.
//
// # Codecs
//
// Spill files are plain text by default ([CodecNone]). [CodecLZ4] and
// [CodecZstd] trade CPU for spill disk space: each flush appends one
// self-contained compressed block with a CRC32C checksum, and the counter
// decodes the concatenated blocks before scanning. Distinct counts are
// codec-invariant.
package spill
