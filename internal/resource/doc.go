// Package resource implements the Controller for per-run resource limits.
//
// The Controller governs two resource types during a counting run:
//
//   - Memory: track and cap the partition contents held by concurrent
//     counting workers (blocking acquire with context)
//   - IO: rate-limit spill reads and writes (token bucket)
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for the hard limit and an atomic
// counter for usage. AcquireMemory blocks until concurrent holders release
// enough of the budget, honoring context cancellation. A reservation larger
// than the whole budget fails immediately with ErrMemoryLimitExceeded: the
// memory-per-partition model assumes hashing spreads addresses roughly
// evenly, and a partition that cannot fit alone is a structural failure to
// surface, not something to queue behind.
//
// # IO Rate Limiting
//
// Spill flushes and reads pass through AcquireIO, a golang.org/x/time/rate
// token bucket. Requests larger than the bucket burst are split so that
// arbitrarily large flushes remain admissible.
//
// A nil *Controller enforces nothing, so the zero configuration costs one
// nil check per call site.
package resource
