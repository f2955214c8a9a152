package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ykai16/context-cartographer/engine"
	"github.com/ykai16/context-cartographer/history"
	"github.com/ykai16/context-cartographer/report"
)

// disableEngines blanks every engine credential and empties PATH so the
// pipeline under test cannot reach a real summarization engine.
func disableEngines(t *testing.T) {
	t.Helper()
	t.Setenv(engine.EnvAnthropicKey, "")
	t.Setenv(engine.EnvOpenAIKey, "")
	t.Setenv(engine.EnvClaudePath, "")
	t.Setenv(history.EnvHistoryDSN, "")
	t.Setenv("PATH", t.TempDir())
}

func TestRunPipelineEmptyTranscriptWritesNothing(t *testing.T) {
	disableEngines(t)

	tests := []struct {
		name  string
		setup func(t *testing.T, dir string) string
	}{
		{
			name: "missing log file",
			setup: func(t *testing.T, dir string) string {
				return filepath.Join(dir, "absent.log")
			},
		},
		{
			name: "empty log file",
			setup: func(t *testing.T, dir string) string {
				path := filepath.Join(dir, "empty.log")
				if err := os.WriteFile(path, nil, 0o644); err != nil {
					t.Fatal(err)
				}
				return path
			},
		},
		{
			name: "whitespace only log file",
			setup: func(t *testing.T, dir string) string {
				path := filepath.Join(dir, "blank.log")
				if err := os.WriteFile(path, []byte("  \n\t\n"), 0o644); err != nil {
					t.Fatal(err)
				}
				return path
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			out := filepath.Join(dir, "report.md")
			opts := &runOptions{out: out, format: "markdown", keepDays: 2}

			if err := runPipeline(context.Background(), tt.setup(t, dir), opts); err != nil {
				t.Fatalf("runPipeline: %v", err)
			}
			if _, err := os.Stat(out); !os.IsNotExist(err) {
				t.Errorf("no output file should be written, stat err = %v", err)
			}
		})
	}
}

func TestRunPipelinePlaceholderWhenNoEngine(t *testing.T) {
	disableEngines(t)

	dir := t.TempDir()
	logPath := filepath.Join(dir, "session.log")
	if err := os.WriteFile(logPath, []byte("> fix login bug\nDone.\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "report.md")

	// A pre-existing document without an embedded state block degrades to
	// a first run instead of aborting the pipeline.
	if err := os.WriteFile(out, []byte("# hand-written notes\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := &runOptions{out: out, format: "markdown", keepDays: 2}
	if err := runPipeline(context.Background(), logPath, opts); err != nil {
		t.Fatalf("runPipeline: %v", err)
	}

	rep, err := report.NewStore(out).Load()
	if err != nil {
		t.Fatalf("Load rewritten report: %v", err)
	}
	if !strings.Contains(rep.Narrative, "No summarization engine available") {
		t.Errorf("narrative = %q, want the engine-unavailable placeholder", rep.Narrative)
	}
	if !strings.Contains(rep.Narrative, logPath) {
		t.Errorf("narrative should carry the raw log path: %q", rep.Narrative)
	}
}
