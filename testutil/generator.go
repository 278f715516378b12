package testutil

import (
	"fmt"
	"math/rand"
	"net/netip"
	"os"
	"strings"

	"github.com/hupe1980/ip6count/internal/canon"
)

// Generator produces deterministic synthetic IPv6 datasets.
// It is not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a Generator with the given seed.
// Equal seeds yield identical datasets.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Addr returns a uniformly random IPv6 address (128 random bits).
func (g *Generator) Addr() netip.Addr {
	var b [16]byte
	for i := 0; i < 16; i += 8 {
		v := g.rng.Uint64()
		for j := 0; j < 8; j++ {
			b[i+j] = byte(v >> (8 * j))
		}
	}
	return netip.AddrFrom16(b)
}

// Variants returns four textual spellings of one address:
// exploded/compressed times lower/upper case. All canonicalize to the
// same string.
func Variants(addr netip.Addr) []string {
	exploded, err := canon.Canonical(addr.String())
	if err != nil {
		// Addr came from AddrFrom16; its String form always parses.
		panic(err)
	}
	compressed := addr.String()
	return []string{
		exploded,
		strings.ToUpper(exploded),
		compressed,
		strings.ToUpper(compressed),
	}
}

// Lines generates total address lines spanning exactly unique distinct
// values. The unique addresses appear in compressed form; padding lines
// are random variants of already-chosen addresses; the result is shuffled.
func (g *Generator) Lines(unique, total int) ([]string, error) {
	if unique <= 0 {
		return nil, fmt.Errorf("testutil: unique must be positive, got %d", unique)
	}
	if total < unique {
		return nil, fmt.Errorf("testutil: total (%d) must not be less than unique (%d)", total, unique)
	}

	addrs := make([]netip.Addr, 0, unique)
	variants := make(map[netip.Addr][]string, unique)
	for len(addrs) < unique {
		a := g.Addr()
		if _, ok := variants[a]; ok {
			continue
		}
		addrs = append(addrs, a)
		if total > unique {
			variants[a] = Variants(a)
		} else {
			variants[a] = []string{a.String()}
		}
	}

	lines := make([]string, 0, total)
	for _, a := range addrs {
		lines = append(lines, a.String())
	}
	for len(lines) < total {
		a := addrs[g.rng.Intn(len(addrs))]
		v := variants[a]
		lines = append(lines, v[g.rng.Intn(len(v))])
	}

	g.rng.Shuffle(len(lines), func(i, j int) {
		lines[i], lines[j] = lines[j], lines[i]
	})
	return lines, nil
}

// WriteFile writes lines to path joined by newlines, with no trailing
// newline.
func WriteFile(path string, lines []string) error {
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644)
}
