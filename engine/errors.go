package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors for engine operations.
var (
	// ErrNoEngine indicates no summarization capability is reachable:
	// no API credentials and no local CLI binary.
	ErrNoEngine = errors.New("no summarization engine available")

	// ErrSummarizationFailed indicates the delegated call failed.
	ErrSummarizationFailed = errors.New("summarization failed")

	// ErrEmptyResponse indicates the engine returned no text.
	ErrEmptyResponse = errors.New("empty response from engine")
)

// EngineError provides structured error context for engine operations.
type EngineError struct {
	// Op is the operation that failed (e.g., "Summarize", "Detect").
	Op string

	// Engine is the engine name if applicable.
	Engine string

	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message.
func (e *EngineError) Error() string {
	msg := fmt.Sprintf("engine %s failed", e.Op)
	if e.Engine != "" {
		msg += fmt.Sprintf(" (%s)", e.Engine)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *EngineError) Unwrap() error {
	return e.Err
}
