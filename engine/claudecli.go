package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// DefaultClaudeBinary is the binary name looked up on PATH when no
// explicit path is configured.
const DefaultClaudeBinary = "claude"

// ClaudeCLI summarizes by invoking a local `claude` binary as a
// subprocess: `claude -p --system-prompt <contract>` with the assembled
// prompt piped through stdin. The prompt is staged in a temp file that is
// removed on every exit path.
type ClaudeCLI struct {
	binary string
}

// NewClaudeCLI creates a CLI engine for the given binary path. An empty
// path uses DefaultClaudeBinary.
func NewClaudeCLI(binary string) *ClaudeCLI {
	if binary == "" {
		binary = DefaultClaudeBinary
	}
	return &ClaudeCLI{binary: binary}
}

// Name returns "claude-cli".
func (c *ClaudeCLI) Name() string { return "claude-cli" }

// Summarize runs one subprocess invocation. A non-zero exit is reported
// with an excerpt of stderr.
func (c *ClaudeCLI) Summarize(ctx context.Context, req Request) (string, error) {
	prompt, err := os.CreateTemp("", "contextmap-prompt-*.txt")
	if err != nil {
		return "", &EngineError{Op: "Summarize", Engine: c.Name(), Err: err}
	}
	defer os.Remove(prompt.Name())
	defer prompt.Close()

	if _, err := prompt.WriteString(req.Prompt); err != nil {
		return "", &EngineError{Op: "Summarize", Engine: c.Name(), Err: err}
	}
	if _, err := prompt.Seek(0, 0); err != nil {
		return "", &EngineError{Op: "Summarize", Engine: c.Name(), Err: err}
	}

	cmd := exec.CommandContext(ctx, c.binary, "-p", "--system-prompt", req.System)
	cmd.Stdin = prompt

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if len(detail) > 500 {
			detail = detail[:500]
		}
		if detail != "" {
			return "", fmt.Errorf("%w: %v: %s", ErrSummarizationFailed, err, detail)
		}
		return "", fmt.Errorf("%w: %v", ErrSummarizationFailed, err)
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}
