package engine

import (
	"os"
	"os/exec"

	"github.com/anthropics/anthropic-sdk-go"
)

// Environment variables consulted by Detect.
const (
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvOpenAIBase   = "OPENAI_BASE_URL"
	EnvClaudePath   = "REAL_CLAUDE_PATH"
)

// Detect discovers a reachable summarization engine from the environment.
// Precedence: Anthropic API key, then OpenAI-compatible API key, then a
// local claude binary (explicit REAL_CLAUDE_PATH override, then PATH
// lookup). The model argument is a hint applied to whichever engine is
// selected; empty selects the engine's default.
//
// When nothing is reachable Detect returns ErrNoEngine; callers degrade
// to a placeholder report rather than failing the run.
func Detect(model string) (Summarizer, error) {
	if os.Getenv(EnvAnthropicKey) != "" {
		client := anthropic.NewClient()
		return NewAnthropic(&client, model), nil
	}

	if key := os.Getenv(EnvOpenAIKey); key != "" {
		return NewOpenAI(key, os.Getenv(EnvOpenAIBase), model), nil
	}

	if path := os.Getenv(EnvClaudePath); path != "" {
		return NewClaudeCLI(path), nil
	}
	if path, err := exec.LookPath(DefaultClaudeBinary); err == nil {
		return NewClaudeCLI(path), nil
	}

	return nil, &EngineError{Op: "Detect", Err: ErrNoEngine}
}
