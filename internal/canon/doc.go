// Package canon normalizes textual IPv6 addresses to a single canonical form.
//
// The canonical form is the exploded lowercase representation: 8 groups of
// 4 hexadecimal digits separated by colons, e.g.
//
//	2001:db0::30 -> 2001:0db0:0000:0000:0000:0000:0000:0030
//
// Exactly one canonical string exists per 128-bit value, which makes string
// equality on canonical forms equivalent to address equality. All routing and
// deduplication downstream operates on canonical bytes only.
//
// Parsing is delegated to net/netip. Plain IPv4 text and zone-bearing
// addresses (fe80::1%eth0) are rejected: the former is not a 128-bit value,
// the latter carries state beyond it.
package canon
