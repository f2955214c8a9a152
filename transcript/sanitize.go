package transcript

import (
	"errors"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ansiEscape matches CSI sequences (cursor movement, colors) and
// two-character ESC sequences.
var ansiEscape = regexp.MustCompile(`\x1B(?:[@-Z\\-_]|\[[0-?]*[ -/]*[@-~])`)

// Sanitize removes terminal escape sequences and non-printable control
// characters from raw log text. Line breaks (LF and CR) are preserved so
// the line structure of the session survives. Invalid UTF-8 is replaced
// with the Unicode replacement character rather than rejected.
//
// Sanitize never removes or reorders printable content.
func Sanitize(raw string) string {
	if raw == "" {
		return ""
	}

	text := strings.ToValidUTF8(raw, string(utf8.RuneError))
	text = ansiEscape.ReplaceAllString(text, "")

	// Strip remaining C0 control characters (backspaces in particular can
	// corrupt captured logs) and DEL, keeping LF and CR.
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\r' {
			b.WriteRune(r)
			continue
		}
		if r < 0x20 || r == 0x7F {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ReadSanitized reads a raw session log from disk and sanitizes it.
// A missing file yields an empty transcript and a nil error: absence of
// input is "nothing to process", not a failure.
func ReadSanitized(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", &TranscriptError{Op: "ReadSanitized", Path: path, Err: err}
	}
	return Sanitize(string(data)), nil
}
