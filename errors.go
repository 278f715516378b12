package ip6count

import (
	"errors"
	"fmt"
	"os"

	"github.com/hupe1980/ip6count/engine"
	"github.com/hupe1980/ip6count/internal/canon"
	"github.com/hupe1980/ip6count/internal/spill"
)

var (
	// ErrInputNotFound is returned when the input path does not exist.
	// Raised before any processing begins.
	ErrInputNotFound = errors.New("input file not found")

	// ErrInvalidAddress is returned when a line fails to parse as an IPv6
	// address during canonicalization. Fatal under FailOnInvalid.
	ErrInvalidAddress = errors.New("invalid ipv6 address")

	// ErrWorkerFailure is returned when a partition counting task fails.
	// The run aborts; no partial count is ever emitted.
	ErrWorkerFailure = errors.New("partition worker failed")

	// ErrSpillIO is returned on failure creating, writing, or reading a
	// spill file.
	ErrSpillIO = errors.New("spill io failure")
)

// translateError normalizes internal errors to the public taxonomy at the
// API boundary. Unrecognized errors pass through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, canon.ErrInvalidAddress) {
		return fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	// Worker failures subsume their cause (which may itself be spill IO).
	var we *engine.WorkerError
	if errors.As(err, &we) {
		return fmt.Errorf("%w: %w", ErrWorkerFailure, err)
	}

	var ioe *spill.IOError
	if errors.As(err, &ioe) {
		return fmt.Errorf("%w: %w", ErrSpillIO, err)
	}

	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %w", ErrInputNotFound, err)
	}

	return err
}
