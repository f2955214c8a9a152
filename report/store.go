package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Embedded-state markers. The canonical JSON state travels inside the
// rendered document so the document stays the sole persisted artifact.
// json.Marshal escapes '<' and '>' inside strings, so neither terminator
// can occur inside the embedded JSON.
const (
	stateCommentOpen  = "<!-- contextmap:state\n"
	stateCommentClose = "\n-->"
	stateScriptOpen   = `<script type="application/json" id="contextmap-state">`
	stateScriptClose  = "</script>"
)

// ErrStateUnreadable indicates the persisted document exists but its
// embedded state could not be decoded. Callers should treat this as a
// first run rather than failing the pipeline.
var ErrStateUnreadable = errors.New("embedded report state unreadable")

// Store persists the cumulative report as a single self-contained document
// at a fixed path, fully overwritten each run.
type Store struct {
	path string
}

// NewStore creates a store for the given output path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the output path the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted document and decodes the embedded report state.
// A missing file yields an empty report and a nil error (first run). A
// document without a state block, or with an undecodable one, yields an
// empty report and ErrStateUnreadable so the caller can warn and continue.
func (s *Store) Load() (*Report, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Report{}, nil
		}
		return &Report{}, &StoreError{Op: "Load", Path: s.path, Err: err}
	}

	state, ok := ExtractState(string(data))
	if !ok {
		return &Report{}, fmt.Errorf("%w: no state block in %s", ErrStateUnreadable, s.path)
	}

	var r Report
	if err := json.Unmarshal([]byte(state), &r); err != nil {
		return &Report{}, fmt.Errorf("%w: %v", ErrStateUnreadable, err)
	}
	return &r, nil
}

// Write atomically replaces the persisted document: the new content is
// written to a temp file in the destination directory and renamed over the
// old document. A crash mid-run leaves the prior report intact; the new
// document is never partially visible.
func (s *Store) Write(doc string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &StoreError{Op: "Write", Path: s.path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".contextmap-*.tmp")
	if err != nil {
		return &StoreError{Op: "Write", Path: s.path, Err: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.WriteString(doc); err != nil {
		tmp.Close()
		return &StoreError{Op: "Write", Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &StoreError{Op: "Write", Path: s.path, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return &StoreError{Op: "Write", Path: s.path, Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return &StoreError{Op: "Write", Path: s.path, Err: err}
	}
	return nil
}

// ExtractState locates the embedded JSON state in a rendered document.
// It understands both embeddings: the JSON script block used by HTML
// output and the HTML comment used by Markdown output.
func ExtractState(doc string) (string, bool) {
	if start := strings.Index(doc, stateScriptOpen); start >= 0 {
		rest := doc[start+len(stateScriptOpen):]
		if end := strings.Index(rest, stateScriptClose); end >= 0 {
			return strings.TrimSpace(rest[:end]), true
		}
	}
	if start := strings.Index(doc, stateCommentOpen); start >= 0 {
		rest := doc[start+len(stateCommentOpen):]
		if end := strings.Index(rest, stateCommentClose); end >= 0 {
			return strings.TrimSpace(rest[:end]), true
		}
	}
	return "", false
}

// EncodeState serializes a report to the canonical JSON embedded in
// rendered documents and fed verbatim to the merge engine as the previous
// report.
func EncodeState(r *Report) (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	return string(b), nil
}
