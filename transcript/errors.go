package transcript

import (
	"errors"
	"fmt"
)

// Sentinel errors for transcript processing.
var (
	// ErrInvalidConfig indicates invalid compressor configuration.
	ErrInvalidConfig = errors.New("invalid transcript configuration")
)

// TranscriptError provides structured error context for transcript operations.
type TranscriptError struct {
	// Op is the operation that failed (e.g., "ReadSanitized").
	Op string

	// Path is the log file path if applicable.
	Path string

	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message.
func (e *TranscriptError) Error() string {
	msg := fmt.Sprintf("transcript %s failed", e.Op)
	if e.Path != "" {
		msg += fmt.Sprintf(" for %s", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *TranscriptError) Unwrap() error {
	return e.Err
}
