package merge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ykai16/context-cartographer/engine"
	"github.com/ykai16/context-cartographer/report"
)

// stubEngine returns a canned response (or error) and records the last
// request it received.
type stubEngine struct {
	response string
	err      error
	lastReq  engine.Request
	calls    int
}

func (s *stubEngine) Name() string { return "stub" }

func (s *stubEngine) Summarize(ctx context.Context, req engine.Request) (string, error) {
	s.lastReq = req
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

var fixedNow = time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

func newOrchestrator(t *testing.T, eng engine.Summarizer) *Orchestrator {
	t.Helper()
	o, err := New(Config{
		Engine: eng,
		Logger: log.New(io.Discard, "", 0),
		Now:    func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return o
}

const mergedResponse = `{
	"project": "demo",
	"narrative": "The user fixed the login bug.",
	"anchor": "Login validation is in place; run the integration suite next.",
	"open_threads": ["integration suite not yet run"],
	"sessions": [{"id": "", "timestamp": "", "narrative": "",
		"steps": [{"title": "fix login bug", "intent": "login 500s", "expected": "validation error",
			"result": "guard added", "status": "success", "artifacts": ["auth/login.go"]}]}]
}`

func TestNewRequiresEngine(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("New without engine: err = %v, want ErrInvalidConfig", err)
	}
}

func TestMergeSuccess(t *testing.T) {
	eng := &stubEngine{response: mergedResponse}
	o := newOrchestrator(t, eng)

	got, ok := o.Merge(context.Background(), &report.Report{}, "--- USER STEP ---\n> fix login bug\nDone.")

	if !ok {
		t.Error("Merge should report success for a parsed response")
	}
	if got.Narrative != "The user fixed the login bug." {
		t.Errorf("narrative = %q", got.Narrative)
	}
	if len(got.Sessions) != 1 || len(got.Sessions[0].Steps) != 1 {
		t.Fatalf("sessions = %+v", got.Sessions)
	}
	s := got.Sessions[0]
	if s.ID == uuid.Nil {
		t.Error("new session should be stamped with an ID")
	}
	if !s.Timestamp.Equal(fixedNow) {
		t.Errorf("timestamp = %v, want %v", s.Timestamp, fixedNow)
	}
	if !got.GeneratedAt.Equal(fixedNow) {
		t.Errorf("GeneratedAt = %v, want %v", got.GeneratedAt, fixedNow)
	}
	if eng.lastReq.System != ExtractionSystemPrompt {
		t.Error("system prompt not passed to engine")
	}
}

func TestMergeToleratesCodeFence(t *testing.T) {
	eng := &stubEngine{response: "Here is the report:\n```json\n" + mergedResponse + "\n```\nDone."}
	o := newOrchestrator(t, eng)

	got, ok := o.Merge(context.Background(), &report.Report{}, "transcript")
	if !ok {
		t.Error("Merge should report success for a fenced response")
	}
	if got.Narrative != "The user fixed the login bug." {
		t.Errorf("fenced response not parsed, narrative = %q", got.Narrative)
	}
}

func TestMergeFirstRunPrompt(t *testing.T) {
	eng := &stubEngine{response: mergedResponse}
	o := newOrchestrator(t, eng)

	o.Merge(context.Background(), &report.Report{}, "the transcript body")

	prompt := eng.lastReq.Prompt
	if !strings.Contains(prompt, "first session for this project") {
		t.Errorf("first-run prompt missing scratch instruction:\n%s", prompt)
	}
	for _, label := range []string{PreviousReportLabel, CurrentTranscriptLabel} {
		if !strings.Contains(prompt, label) {
			t.Errorf("prompt missing block label %q", label)
		}
	}
	if !strings.Contains(prompt, "the transcript body") {
		t.Error("prompt missing transcript content")
	}
}

func TestMergeSubsequentRunPrompt(t *testing.T) {
	eng := &stubEngine{response: mergedResponse}
	o := newOrchestrator(t, eng)

	prev := &report.Report{
		Anchor: "mid-refactor",
		Sessions: []report.Session{
			{ID: uuid.New(), Timestamp: fixedNow.Add(-24 * time.Hour),
				Steps: []report.Step{{Title: "earlier work", Status: report.StatusSuccess}}},
		},
	}
	o.Merge(context.Background(), prev, "new transcript")

	prompt := eng.lastReq.Prompt
	if strings.Contains(prompt, "first session for this project") {
		t.Error("subsequent run used the first-run preamble")
	}
	if !strings.Contains(prompt, "earlier work") {
		t.Error("previous report JSON not included in prompt")
	}
}

func TestMergeFailSoftOnEngineError(t *testing.T) {
	eng := &stubEngine{err: errors.New("api unreachable")}
	o := newOrchestrator(t, eng)

	prev := &report.Report{
		Narrative: "old narrative",
		Anchor:    "old anchor",
		Sessions: []report.Session{
			{ID: uuid.New(), Timestamp: fixedNow.Add(-time.Hour),
				Steps: []report.Step{{Title: "prior step", Status: report.StatusSuccess}}},
		},
	}
	got, ok := o.Merge(context.Background(), prev, "transcript")

	if ok {
		t.Error("Merge should report failure when the engine errors")
	}
	if !strings.Contains(got.Narrative, "Merge failed") {
		t.Errorf("narrative does not surface the failure: %q", got.Narrative)
	}
	if !strings.Contains(got.Narrative, "api unreachable") {
		t.Errorf("narrative does not carry the cause: %q", got.Narrative)
	}
	if got.Anchor != "old anchor" {
		t.Errorf("anchor = %q, previous anchor should be preserved", got.Anchor)
	}
	if len(got.Sessions) != 1 || got.Sessions[0].Steps[0].Title != "prior step" {
		t.Errorf("previous sessions not carried forward: %+v", got.Sessions)
	}
}

func TestMergeFailSoftOnUnparseableResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "prose only", response: "I could not analyze this transcript."},
		{name: "broken json", response: "{\"narrative\": "},
		{name: "content-free object", response: "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := &stubEngine{response: tt.response}
			o := newOrchestrator(t, eng)

			prev := &report.Report{Anchor: "keep me"}
			got, ok := o.Merge(context.Background(), prev, "transcript")

			if ok {
				t.Error("Merge should report failure for an unparseable response")
			}
			if !strings.Contains(got.Narrative, "Merge failed") {
				t.Errorf("narrative = %q, want failure surfaced", got.Narrative)
			}
			if got.Anchor != "keep me" {
				t.Errorf("anchor = %q, want previous preserved", got.Anchor)
			}
		})
	}
}

func TestMergeCompactsResult(t *testing.T) {
	// An engine response with more detailed steps than the threshold is
	// compacted locally before being returned.
	var steps []string
	for i := 0; i < 12; i++ {
		steps = append(steps, fmt.Sprintf(
			`{"title": "step %d", "intent": "i", "expected": "e", "result": "r", "status": "success"}`, i))
	}
	response := fmt.Sprintf(`{"narrative": "n", "anchor": "a",
		"sessions": [{"id": "", "timestamp": "", "steps": [%s]}]}`,
		strings.Join(steps, ","))

	eng := &stubEngine{response: response}
	o, err := New(Config{
		Engine:     eng,
		Compaction: &report.CompactionConfig{MaxDetailedSteps: 8},
		Logger:     log.New(io.Discard, "", 0),
		Now:        func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, ok := o.Merge(context.Background(), &report.Report{}, "transcript")

	if !ok {
		t.Fatal("Merge should report success")
	}
	if n := got.DetailedSteps(); n != 8 {
		t.Errorf("DetailedSteps = %d, want 8", n)
	}
	if len(got.Archive) != 4 {
		t.Errorf("archive = %d entries, want 4", len(got.Archive))
	}
	if got.Archive[0].Title != "step 0" {
		t.Errorf("oldest step should be archived first, got %q", got.Archive[0].Title)
	}
}

func TestMergeNilPrevious(t *testing.T) {
	eng := &stubEngine{err: errors.New("down")}
	o := newOrchestrator(t, eng)

	got, ok := o.Merge(context.Background(), nil, "transcript")
	if got == nil {
		t.Fatal("Merge returned nil")
	}
	if ok {
		t.Error("Merge should report failure when the engine is down")
	}
	if got.Anchor == "" {
		t.Error("fail-soft on empty previous should still set an anchor")
	}
}

func TestPlaceholder(t *testing.T) {
	prev := &report.Report{
		Anchor: "was working on parser",
		Sessions: []report.Session{
			{ID: uuid.New(), Timestamp: fixedNow,
				Steps: []report.Step{{Title: "parser work", Status: report.StatusPartial}}},
		},
	}
	got := Placeholder(prev, "/tmp/session.log", 4096, fixedNow)

	if !strings.Contains(got.Narrative, "No summarization engine available") {
		t.Errorf("narrative = %q", got.Narrative)
	}
	if !strings.Contains(got.Narrative, "/tmp/session.log") || !strings.Contains(got.Narrative, "4096") {
		t.Errorf("narrative missing raw log facts: %q", got.Narrative)
	}
	if got.Anchor != "was working on parser" {
		t.Errorf("anchor = %q, want previous preserved", got.Anchor)
	}
	if len(got.Sessions) != 1 {
		t.Errorf("previous sessions not preserved: %+v", got.Sessions)
	}
	if !got.GeneratedAt.Equal(fixedNow) {
		t.Errorf("GeneratedAt = %v", got.GeneratedAt)
	}
}

func TestPlaceholderNilPrevious(t *testing.T) {
	got := Placeholder(nil, "x.log", 0, fixedNow)
	if got.Anchor == "" {
		t.Error("placeholder on first run should set a default anchor")
	}
}
