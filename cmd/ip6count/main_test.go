package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInput(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644))
	return path
}

func TestRunWritesDecimalCount(t *testing.T) {
	input := writeInput(t,
		"2001:0DB0:0000:0000:0000:0000:0000:0030",
		"2001:db0::30",
		"::1",
	)
	output := filepath.Join(t.TempDir(), "result.txt")

	var stderr bytes.Buffer
	code := run([]string{input, output}, &stderr)
	require.Equal(t, 0, code, "stderr: %s", stderr.String())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	// Decimal count, no trailing newline.
	assert.Equal(t, "2", string(data))
}

func TestRunForcedStrategiesAgree(t *testing.T) {
	input := writeInput(t, "::1", "::2", "::1", "::3")

	for _, flag := range []string{"--basic", "--optimized"} {
		output := filepath.Join(t.TempDir(), "result.txt")

		var stderr bytes.Buffer
		code := run([]string{flag, "--temp-dir", t.TempDir(), input, output}, &stderr)
		require.Equal(t, 0, code, "%s stderr: %s", flag, stderr.String())

		data, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.Equal(t, "3", string(data), "flag %s", flag)
	}
}

func TestRunMissingInput(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "result.txt")

	var stderr bytes.Buffer
	code := run([]string{filepath.Join(dir, "missing.txt"), output}, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "not found")

	_, err := os.Stat(output)
	assert.True(t, os.IsNotExist(err), "no output may be written on failure")
}

func TestRunInvalidLineWritesNoOutput(t *testing.T) {
	input := writeInput(t, "::1", "garbage")
	output := filepath.Join(t.TempDir(), "result.txt")

	var stderr bytes.Buffer
	code := run([]string{input, output}, &stderr)
	assert.Equal(t, 1, code)

	_, err := os.Stat(output)
	assert.True(t, os.IsNotExist(err))
}

func TestRunSkipInvalid(t *testing.T) {
	input := writeInput(t, "::1", "garbage", "::2")
	output := filepath.Join(t.TempDir(), "result.txt")

	var stderr bytes.Buffer
	code := run([]string{"--skip-invalid", input, output}, &stderr)
	require.Equal(t, 0, code, "stderr: %s", stderr.String())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "2", string(data))
}

func TestRunFlagMisuse(t *testing.T) {
	input := writeInput(t, "::1")
	output := filepath.Join(t.TempDir(), "result.txt")

	tests := []struct {
		name string
		args []string
	}{
		{name: "no arguments", args: nil},
		{name: "missing output", args: []string{input}},
		{name: "mutually exclusive strategies", args: []string{"--basic", "--optimized", input, output}},
		{name: "unknown flag", args: []string{"--frobnicate", input, output}},
		{name: "unknown codec", args: []string{"--spill-codec", "gzip", input, output}},
		{name: "unknown log level", args: []string{"--log-level", "loud", input, output}},
		{name: "negative workers", args: []string{"--workers", "-1", input, output}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			code := run(tt.args, &stderr)
			assert.Equal(t, 2, code)

			_, err := os.Stat(output)
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := parseLevel(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := parseLevel("chatty")
	assert.Error(t, err)
}
