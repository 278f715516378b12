package ip6count

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with ip6count-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// LogRunStart logs the start of a counting run.
func (l *Logger) LogRunStart(ctx context.Context, mode Mode, inputSize int64, workers int) {
	l.InfoContext(ctx, "run started",
		"mode", mode.String(),
		"input_bytes", inputSize,
		"workers", workers,
	)
}

// LogRunDone logs the end of a counting run.
func (l *Logger) LogRunDone(ctx context.Context, mode Mode, distinct uint64, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "run failed",
			"mode", mode.String(),
			"duration", duration,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "run completed",
			"mode", mode.String(),
			"distinct", distinct,
			"duration", duration,
		)
	}
}

// LogSkipped logs the number of invalid lines dropped under SkipInvalid.
func (l *Logger) LogSkipped(ctx context.Context, skipped uint64) {
	if skipped > 0 {
		l.WarnContext(ctx, "invalid lines skipped",
			"skipped", skipped,
		)
	}
}

// LogOutput logs a result written to an output file.
func (l *Logger) LogOutput(ctx context.Context, path string, distinct uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "write output failed",
			"path", path,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "output written",
			"path", path,
			"distinct", distinct,
		)
	}
}
