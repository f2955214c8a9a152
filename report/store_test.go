package report

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func sampleReport() *Report {
	return &Report{
		Project:     "demo",
		Narrative:   "built the <thing> & shipped it",
		Anchor:      "working on auth",
		OpenThreads: []string{"flaky test in ci"},
		Sessions: []Session{{
			ID:        uuid.New(),
			Timestamp: time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC),
			Steps: []Step{{
				Title:     "fix login bug",
				Intent:    "login 500s on empty password",
				Expected:  "validation error instead",
				Result:    "added guard, tests pass",
				Status:    StatusSuccess,
				Artifacts: []string{"auth/login.go"},
			}},
		}},
		Archive:     []ArchiveEntry{{Title: "bootstrap repo", Status: StatusSuccess, Result: "scaffolded"}},
		GeneratedAt: time.Date(2026, 8, 29, 10, 31, 0, 0, time.UTC),
	}
}

func TestStoreRoundTripMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "session_summary.md")
	store := NewStore(path)

	want := sampleReport()
	doc, err := NewMarkdownRenderer().Render(want)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if err := store.Write(doc); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Anchor != want.Anchor {
		t.Errorf("anchor = %q, want %q", got.Anchor, want.Anchor)
	}
	if got.Narrative != want.Narrative {
		t.Errorf("narrative = %q, want %q", got.Narrative, want.Narrative)
	}
	if len(got.Sessions) != 1 || len(got.Sessions[0].Steps) != 1 {
		t.Fatalf("sessions not preserved: %+v", got.Sessions)
	}
	if got.Sessions[0].ID != want.Sessions[0].ID {
		t.Errorf("session ID = %v, want %v", got.Sessions[0].ID, want.Sessions[0].ID)
	}
	if len(got.Archive) != 1 || got.Archive[0].Title != "bootstrap repo" {
		t.Errorf("archive not preserved: %+v", got.Archive)
	}
}

func TestStoreRoundTripHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session_summary.html")
	store := NewStore(path)

	want := sampleReport()
	doc, err := NewHTMLRenderer().Render(want)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if err := store.Write(doc); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Anchor != want.Anchor {
		t.Errorf("anchor = %q, want %q", got.Anchor, want.Anchor)
	}
	// Angle brackets in content must survive the script-tag embedding.
	if got.Narrative != want.Narrative {
		t.Errorf("narrative = %q, want %q", got.Narrative, want.Narrative)
	}
	if len(got.Sessions) != 1 {
		t.Fatalf("sessions not preserved: %+v", got.Sessions)
	}
}

func TestStoreLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope.md"))
	r, err := store.Load()
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if !r.Empty() {
		t.Errorf("missing file should yield an empty report, got %+v", r)
	}
}

func TestStoreLoadNoStateBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.md")
	if err := os.WriteFile(path, []byte("# Old Report\n\nhand-written notes\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := NewStore(path).Load()
	if !errors.Is(err, ErrStateUnreadable) {
		t.Fatalf("err = %v, want ErrStateUnreadable", err)
	}
	if !r.Empty() {
		t.Errorf("unreadable state should yield an empty report")
	}
}

func TestStoreLoadCorruptState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.md")
	doc := "# Report\n\n" + stateCommentOpen + "{not json" + stateCommentClose + "\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := NewStore(path).Load()
	if !errors.Is(err, ErrStateUnreadable) {
		t.Fatalf("err = %v, want ErrStateUnreadable", err)
	}
	if !r.Empty() {
		t.Errorf("corrupt state should yield an empty report")
	}
}

func TestStoreLoadUnreadablePath(t *testing.T) {
	// A directory at the output path fails the read with something other
	// than a missing file. The caller still gets a usable empty report so
	// it can warn and start fresh.
	path := filepath.Join(t.TempDir(), "report.md")
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatal(err)
	}

	r, err := NewStore(path).Load()
	if err == nil {
		t.Fatal("Load on a directory should report an error")
	}
	if errors.Is(err, ErrStateUnreadable) {
		t.Fatalf("err = %v, want a read failure rather than ErrStateUnreadable", err)
	}
	var storeErr *StoreError
	if !errors.As(err, &storeErr) || storeErr.Op != "Load" {
		t.Fatalf("err = %v, want a StoreError with Op Load", err)
	}
	if r == nil || !r.Empty() {
		t.Errorf("unreadable path should yield an empty report, got %+v", r)
	}
}

func TestStoreWriteOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")
	store := NewStore(path)

	render := func(anchor string) string {
		doc, err := NewMarkdownRenderer().Render(&Report{Anchor: anchor})
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		return doc
	}

	if err := store.Write(render("first")); err != nil {
		t.Fatal(err)
	}
	if err := store.Write(render("second")); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.Anchor != "second" {
		t.Errorf("anchor = %q, want the second write to win", got.Anchor)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the document", len(entries))
	}
}

func TestExtractStateAbsent(t *testing.T) {
	if _, ok := ExtractState("just some text"); ok {
		t.Error("ExtractState should fail on a document without a state block")
	}
}
