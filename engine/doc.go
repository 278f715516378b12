// Package engine implements the two distinct-counting strategies.
//
// # Partitioned (external) engine
//
// [Coordinator] is the bounded-memory engine for inputs that do not fit in
// RAM. A run moves through three phases:
//
//  1. Partitioning: a single-threaded streaming pass canonicalizes every
//     line and routes it by a deterministic hash into one of a fixed
//     number of spill files, using bounded write buffers.
//  2. Counting: one task per occupied spill file, fanned out across a
//     bounded worker pool. Tasks share no mutable state; each returns its
//     partition's distinct count by value.
//  3. Aggregation: per-partition counts are summed into the exact global
//     distinct count. Identical canonical strings always hash to the same
//     partition, so the sum is exact.
//
// The lifecycle is Idle -> Partitioning -> Counting -> Aggregated -> Done,
// with Failed reachable from any non-terminal state. Entering a terminal
// state always releases the temporary spill directory. The first failure
// anywhere aborts the run; no partial count is ever reported.
//
// # Basic (in-memory) engine
//
// [CountBasic] is the trivial strategy: a single pass into a deduplicating
// set. The root package selects between the two by input size.
package engine
