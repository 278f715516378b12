// Package ip6count counts the distinct IPv6 addresses in a text file, one
// textual address per line, under a bounded memory budget.
//
// Two strategies back the count:
//
//   - Basic: a single pass into an in-memory deduplicating set. Fast and
//     simple, bounded by RAM.
//   - Partitioned: a disk-spilling external engine. The input is streamed
//     once, each address canonicalized and routed by a deterministic hash
//     into one of 4096 spill files; the files are then deduplicated in
//     parallel and the per-partition counts summed into an exact global
//     answer. Memory use is independent of input size.
//
// By default the strategy is chosen automatically by input size (threshold
// 50 MiB); either can be forced.
//
// # Quick Start
//
//	ctx := context.Background()
//	counter, err := ip6count.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	distinct, err := counter.CountFile(ctx, "addresses.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(distinct)
//
// Addresses are compared by 128-bit value, not by spelling: 2001:db0::30,
// 2001:DB0::30 and 2001:0db0:0000:0000:0000:0000:0000:0030 count as one.
//
// # Tuning
//
// Options control strategy selection, the counting worker pool, spill
// compression, and resource limits:
//
//	counter, err := ip6count.New(
//	    ip6count.WithMode(ip6count.ModePartitioned),
//	    ip6count.WithWorkers(4),
//	    ip6count.WithSpillCodec(ip6count.CodecZstd),
//	    ip6count.WithMemoryLimit(512<<20),
//	    ip6count.WithLogger(ip6count.NewTextLogger(slog.LevelInfo)),
//	)
//
// # Error Handling
//
// There are no retries and no partial results: the first failure aborts
// the run, and all temporary spill storage is removed on every exit path.
// Failures translate to a small taxonomy at the API boundary:
// [ErrInputNotFound], [ErrInvalidAddress], [ErrWorkerFailure], [ErrSpillIO].
package ip6count
