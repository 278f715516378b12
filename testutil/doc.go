// Package testutil generates synthetic IPv6 datasets for tests, benchmarks,
// and the ip6gen command.
//
// A dataset has a known number of unique addresses padded to a total line
// count with textual variants of those addresses (exploded/compressed,
// lower/upper case), shuffled. The distinct count of the generated file is
// therefore known exactly, which makes it ground truth for engine tests:
//
//	gen := testutil.NewGenerator(42)
//	lines, err := gen.Lines(100, 500) // 100 unique values, 500 lines
//
// Generation is deterministic per seed.
package testutil
