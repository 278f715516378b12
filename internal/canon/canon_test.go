package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "exploded lowercase is identity",
			input: "2001:0db0:0000:0000:0000:0000:0000:0030",
			want:  "2001:0db0:0000:0000:0000:0000:0000:0030",
		},
		{
			name:  "compressed",
			input: "2001:db0::30",
			want:  "2001:0db0:0000:0000:0000:0000:0000:0030",
		},
		{
			name:  "uppercase exploded",
			input: "2001:0DB0:0000:0000:0000:0000:0000:0030",
			want:  "2001:0db0:0000:0000:0000:0000:0000:0030",
		},
		{
			name:  "mixed case compressed",
			input: "2001:Db0::30",
			want:  "2001:0db0:0000:0000:0000:0000:0000:0030",
		},
		{
			name:  "loopback",
			input: "::1",
			want:  "0000:0000:0000:0000:0000:0000:0000:0001",
		},
		{
			name:  "unspecified",
			input: "::",
			want:  "0000:0000:0000:0000:0000:0000:0000:0000",
		},
		{
			name:  "ipv4 mapped",
			input: "::ffff:1.2.3.4",
			want:  "0000:0000:0000:0000:0000:ffff:0102:0304",
		},
		{
			name:  "all ones",
			input: "FFFF:FFFF:FFFF:FFFF:FFFF:FFFF:FFFF:FFFF",
			want:  "ffff:ffff:ffff:ffff:ffff:ffff:ffff:ffff",
		},
		{
			name:  "surrounding whitespace",
			input: "  2001:db0::30\t",
			want:  "2001:0db0:0000:0000:0000:0000:0000:0030",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, Len)
		})
	}
}

func TestCanonicalEquivalence(t *testing.T) {
	// All textual forms of one value must agree.
	forms := []string{
		"2001:0db8:0000:0000:0001:0000:0000:0001",
		"2001:db8::1:0:0:1",
		"2001:DB8:0:0:1::1",
		"2001:db8:0:0:1:0:0:1",
	}

	want, err := Canonical(forms[0])
	require.NoError(t, err)

	for _, f := range forms[1:] {
		got, err := Canonical(f)
		require.NoError(t, err)
		assert.Equal(t, want, got, "form %q", f)
	}
}

func TestCanonicalInvalid(t *testing.T) {
	invalid := []string{
		"",
		"   ",
		"not-an-address",
		"192.0.2.1",          // plain IPv4 is not IPv6
		"fe80::1%eth0",       // zones are rejected
		"2001:db8::g",        // non-hex digit
		"2001:db8::1::1",     // double compression
		"12001:db8::1",       // group out of range
		"2001:db8:0:0:0:0:0", // too few groups
		"2001:db8::1 extra",
	}

	for _, s := range invalid {
		_, err := Canonical(s)
		require.Error(t, err, "input %q", s)
		assert.ErrorIs(t, err, ErrInvalidAddress)
	}
}

func TestAppendCanonicalReuse(t *testing.T) {
	buf := make([]byte, 0, Len)

	buf, err := AppendCanonical(buf[:0], "::1")
	require.NoError(t, err)
	assert.Equal(t, "0000:0000:0000:0000:0000:0000:0000:0001", string(buf))

	// Reusing the slice must not leak the previous canonical form.
	buf, err = AppendCanonical(buf[:0], "2001:db0::30")
	require.NoError(t, err)
	assert.Equal(t, "2001:0db0:0000:0000:0000:0000:0000:0030", string(buf))
}

func BenchmarkAppendCanonical(b *testing.B) {
	buf := make([]byte, 0, Len)
	for i := 0; i < b.N; i++ {
		var err error
		buf, err = AppendCanonical(buf[:0], "2001:db8::8a2e:370:7334")
		if err != nil {
			b.Fatal(err)
		}
	}
}
