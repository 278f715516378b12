package canon

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
)

// ErrInvalidAddress is returned when input text does not parse as an IPv6 address.
var ErrInvalidAddress = errors.New("canon: invalid ipv6 address")

const (
	// Len is the length of a canonical address string:
	// 8 groups of 4 hex digits plus 7 colons.
	Len = 8*4 + 7

	hexDigits = "0123456789abcdef"
)

// Canonical returns the canonical form of the IPv6 address in s:
// lowercase, 8 groups of 4 hex digits, colon-separated, no compression.
//
// Any valid textual representation of the same 128-bit value (exploded,
// compressed, mixed-case, IPv4-mapped suffix) canonicalizes to the same
// string. Leading and trailing whitespace is ignored.
func Canonical(s string) (string, error) {
	b, err := AppendCanonical(nil, s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// AppendCanonical appends the canonical form of the IPv6 address in s to dst
// and returns the extended slice. It is the allocation-free variant of
// Canonical for hot loops: callers reuse dst across lines.
func AppendCanonical(dst []byte, s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return dst, fmt.Errorf("%w: empty input", ErrInvalidAddress)
	}

	addr, err := netip.ParseAddr(s)
	if err != nil {
		return dst, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	// Plain IPv4 is not an IPv6 address; a zone is not part of the 128-bit value.
	if !addr.Is6() || addr.Zone() != "" {
		return dst, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}

	a16 := addr.As16()
	for i := 0; i < 16; i += 2 {
		if i > 0 {
			dst = append(dst, ':')
		}
		dst = append(dst,
			hexDigits[a16[i]>>4],
			hexDigits[a16[i]&0xf],
			hexDigits[a16[i+1]>>4],
			hexDigits[a16[i+1]&0xf],
		)
	}
	return dst, nil
}
