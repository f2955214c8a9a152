// Package engine abstracts the external summarization capability behind a
// narrow interface so the merge pipeline is testable with a stub and the
// real invocation is swappable.
//
// Three engines are provided:
//
//   - Anthropic: the Anthropic Messages API (streaming, accumulated).
//   - OpenAI: any OpenAI-compatible chat completions endpoint.
//   - ClaudeCLI: a local `claude` binary invoked as a subprocess.
//
// Detect selects an engine from the environment: ANTHROPIC_API_KEY wins,
// then OPENAI_API_KEY, then a `claude` binary on PATH. When none is
// available it returns ErrNoEngine, which callers degrade into a
// placeholder report rather than a failure.
package engine
