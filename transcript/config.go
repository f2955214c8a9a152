package transcript

import "fmt"

// Default configuration values for the compressor. The thresholds are
// tuned for interactive AI coding session logs, where pasted or generated
// content routinely produces multi-kilobyte single lines and the useful
// narrative lives near the end of the log.
const (
	DefaultMaxLineLength = 300   // lines longer than this are truncated
	DefaultKeepHead      = 100   // characters kept from the head of a truncated line
	DefaultKeepTail      = 100   // characters kept from the tail of a truncated line
	DefaultTailWindow    = 80000 // trailing character budget for the whole transcript
)

// StepBoundary is the marker inserted before detected prompt lines so the
// merge step can anchor iteration boundaries on them.
const StepBoundary = "--- USER STEP ---"

// defaultNoisePatterns are substrings identifying low-signal progress lines
// that repeat heavily in session logs and carry no narrative value.
var defaultNoisePatterns = []string{
	"Resolving...",
	"Fetching...",
	"Downloading...",
}

// defaultPromptMarkers are the leading glyphs of known interactive prompts.
var defaultPromptMarkers = []string{
	"> ",
	"❯ ",
}

// Config holds compressor configuration.
type Config struct {
	// MaxLineLength is the length (in characters) above which a line is
	// truncated to its head and tail segments.
	// Default: 300
	MaxLineLength int

	// KeepHead is the number of characters kept from the head of a
	// truncated line.
	// Default: 100
	KeepHead int

	// KeepTail is the number of characters kept from the tail of a
	// truncated line.
	// Default: 100
	KeepTail int

	// TailWindow is the trailing character budget applied to the whole
	// compressed transcript. The most recent content is the most relevant,
	// and this bounds what downstream processing receives.
	// Default: 80000
	TailWindow int

	// NoisePatterns are substrings identifying lines to drop entirely.
	// Default: "Resolving...", "Fetching...", "Downloading..."
	NoisePatterns []string

	// PromptMarkers are prefixes identifying interactive prompt lines,
	// matched against the whitespace-trimmed line.
	// Default: "> ", "❯ "
	PromptMarkers []string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxLineLength: DefaultMaxLineLength,
		KeepHead:      DefaultKeepHead,
		KeepTail:      DefaultKeepTail,
		TailWindow:    DefaultTailWindow,
		NoisePatterns: defaultNoisePatterns,
		PromptMarkers: defaultPromptMarkers,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.MaxLineLength == 0 {
		c.MaxLineLength = DefaultMaxLineLength
	}
	if c.KeepHead == 0 {
		c.KeepHead = DefaultKeepHead
	}
	if c.KeepTail == 0 {
		c.KeepTail = DefaultKeepTail
	}
	if c.TailWindow == 0 {
		c.TailWindow = DefaultTailWindow
	}
	if c.NoisePatterns == nil {
		c.NoisePatterns = defaultNoisePatterns
	}
	if c.PromptMarkers == nil {
		c.PromptMarkers = defaultPromptMarkers
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.MaxLineLength <= 0 {
		return fmt.Errorf("%w: max_line_length must be positive, got %d", ErrInvalidConfig, c.MaxLineLength)
	}
	if c.KeepHead <= 0 {
		return fmt.Errorf("%w: keep_head must be positive, got %d", ErrInvalidConfig, c.KeepHead)
	}
	if c.KeepTail <= 0 {
		return fmt.Errorf("%w: keep_tail must be positive, got %d", ErrInvalidConfig, c.KeepTail)
	}
	if c.KeepHead+c.KeepTail >= c.MaxLineLength {
		return fmt.Errorf("%w: keep_head+keep_tail (%d) must be less than max_line_length (%d)",
			ErrInvalidConfig, c.KeepHead+c.KeepTail, c.MaxLineLength)
	}
	if c.TailWindow <= 0 {
		return fmt.Errorf("%w: tail_window must be positive, got %d", ErrInvalidConfig, c.TailWindow)
	}
	return nil
}
