package engine

import "context"

// DefaultMaxTokens is the response budget used when a request does not
// specify one. Merged reports are large structured documents, so the
// budget is generous.
const DefaultMaxTokens = 8192

// Request is a single summarization request: a fixed instruction contract
// and an assembled prompt. There is no streaming contract; the call blocks
// until the engine returns or the context is done.
type Request struct {
	// System is the fixed instruction contract.
	System string

	// Prompt is the assembled user content (labeled input blocks).
	Prompt string

	// MaxTokens bounds the response size. Zero means DefaultMaxTokens.
	MaxTokens int
}

// Summarizer is the narrow capability the merge pipeline depends on.
type Summarizer interface {
	// Name identifies the engine in logs and run records.
	Name() string

	// Summarize performs one blocking request/response exchange and
	// returns the raw response text.
	Summarize(ctx context.Context, req Request) (string, error)
}
