package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ip6count/internal/canon"
)

func TestLinesExactUniqueCount(t *testing.T) {
	gen := NewGenerator(42)

	lines, err := gen.Lines(100, 500)
	require.NoError(t, err)
	require.Len(t, lines, 500)

	distinct := make(map[string]struct{})
	for _, l := range lines {
		c, err := canon.Canonical(l)
		require.NoError(t, err, "line %q", l)
		distinct[c] = struct{}{}
	}
	assert.Len(t, distinct, 100)
}

func TestLinesDeterministicPerSeed(t *testing.T) {
	a, err := NewGenerator(7).Lines(50, 200)
	require.NoError(t, err)
	b, err := NewGenerator(7).Lines(50, 200)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := NewGenerator(8).Lines(50, 200)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestLinesNoPadding(t *testing.T) {
	lines, err := NewGenerator(1).Lines(25, 25)
	require.NoError(t, err)
	require.Len(t, lines, 25)

	// Without padding every line is a distinct address.
	distinct := make(map[string]struct{})
	for _, l := range lines {
		c, err := canon.Canonical(l)
		require.NoError(t, err)
		distinct[c] = struct{}{}
	}
	assert.Len(t, distinct, 25)
}

func TestLinesValidation(t *testing.T) {
	gen := NewGenerator(1)

	_, err := gen.Lines(0, 10)
	assert.Error(t, err)

	_, err = gen.Lines(-5, 10)
	assert.Error(t, err)

	_, err = gen.Lines(10, 5)
	assert.Error(t, err)
}

func TestVariantsCanonicalizeIdentically(t *testing.T) {
	gen := NewGenerator(99)

	for i := 0; i < 20; i++ {
		addr := gen.Addr()
		vs := Variants(addr)
		require.Len(t, vs, 4)

		want, err := canon.Canonical(vs[0])
		require.NoError(t, err)
		for _, v := range vs[1:] {
			got, err := canon.Canonical(v)
			require.NoError(t, err)
			assert.Equal(t, want, got, "variant %q of %s", v, addr)
		}
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, WriteFile(path, []string{"::1", "::2"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// Newline-joined, no trailing newline.
	assert.Equal(t, "::1\n::2", string(data))
	assert.False(t, strings.HasSuffix(string(data), "\n"))
}
