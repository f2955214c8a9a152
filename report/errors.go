package report

import (
	"errors"
	"fmt"
)

// Sentinel errors for report operations.
var (
	// ErrInvalidConfig indicates invalid compaction or store configuration.
	ErrInvalidConfig = errors.New("invalid report configuration")

	// ErrRenderFailed indicates a renderer could not produce a document.
	ErrRenderFailed = errors.New("report rendering failed")

	// ErrCeilingExceeded indicates the rendered document could not be
	// brought under the size ceiling even after tightened compaction.
	ErrCeilingExceeded = errors.New("report exceeds size ceiling")
)

// StoreError provides structured error context for store operations.
type StoreError struct {
	// Op is the operation that failed (e.g., "Load", "Write").
	Op string

	// Path is the report file path.
	Path string

	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message.
func (e *StoreError) Error() string {
	msg := fmt.Sprintf("report store %s failed", e.Op)
	if e.Path != "" {
		msg += fmt.Sprintf(" for %s", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *StoreError) Unwrap() error {
	return e.Err
}
