package transcript

import (
	"fmt"
	"strings"
)

// Compressor shrinks sanitized session text while preserving the narrative
// signal: prompt lines are tagged as step boundaries, known progress noise
// is dropped, overlong lines keep only their head and tail, and the final
// text is windowed to a trailing character budget.
type Compressor struct {
	config *Config
}

// NewCompressor creates a Compressor with the given configuration.
// A nil config uses defaults; zero fields are filled in.
func NewCompressor(config *Config) (*Compressor, error) {
	if config == nil {
		config = DefaultConfig()
	} else {
		config.ApplyDefaults()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Compressor{config: config}, nil
}

// Compress applies the compression heuristics to sanitized text.
// Empty input yields empty output, signaling "nothing to analyze".
//
// Heuristic precedence per line: prompt-boundary tagging first, then noise
// suppression, then long-line truncation. A prompt line over the length
// threshold is truncated after tagging, so the boundary marker survives.
// The tail window is applied last over the joined result.
func (c *Compressor) Compress(sanitized string) string {
	if strings.TrimSpace(sanitized) == "" {
		return ""
	}

	lines := strings.Split(sanitized, "\n")
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)

		if c.isPromptLine(trimmed) {
			out = append(out, "\n"+StepBoundary+"\n"+c.truncateLine(trimmed))
			continue
		}

		if c.isNoise(line) {
			continue
		}

		out = append(out, c.truncateLine(line))
	}

	return c.tailWindow(strings.Join(out, "\n"))
}

// ReadAndCompress reads a raw session log, sanitizes it, and compresses it.
// A missing file yields an empty transcript and a nil error.
func ReadAndCompress(path string, config *Config) (string, error) {
	compressor, err := NewCompressor(config)
	if err != nil {
		return "", err
	}
	sanitized, err := ReadSanitized(path)
	if err != nil {
		return "", err
	}
	return compressor.Compress(sanitized), nil
}

func (c *Compressor) isPromptLine(trimmed string) bool {
	for _, marker := range c.config.PromptMarkers {
		if strings.HasPrefix(trimmed, marker) {
			return true
		}
	}
	return false
}

func (c *Compressor) isNoise(line string) bool {
	for _, pattern := range c.config.NoisePatterns {
		if strings.Contains(line, pattern) {
			return true
		}
	}
	return false
}

// truncateLine replaces an overlong line with its head segment, an explicit
// truncation marker, and its tail segment. Both ends often contain the
// meaningful start and end of pasted or generated content.
func (c *Compressor) truncateLine(line string) string {
	runes := []rune(line)
	if len(runes) <= c.config.MaxLineLength {
		return line
	}
	head := string(runes[:c.config.KeepHead])
	tail := string(runes[len(runes)-c.config.KeepTail:])
	dropped := len(runes) - c.config.KeepHead - c.config.KeepTail
	return fmt.Sprintf("%s ... [%d chars truncated] ... %s", head, dropped, tail)
}

// tailWindow bounds the compressed transcript to its trailing TailWindow
// bytes, preferring to cut at a line boundary so the window does not start
// mid-line.
func (c *Compressor) tailWindow(text string) string {
	if len(text) <= c.config.TailWindow {
		return text
	}
	window := text[len(text)-c.config.TailWindow:]
	if i := strings.IndexByte(window, '\n'); i >= 0 && i < len(window)-1 {
		window = window[i+1:]
	}
	return window
}
