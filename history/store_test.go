package history

import (
	"context"
	"os"
	"testing"
	"time"
)

func getTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv(EnvHistoryDSN)
	if dsn == "" {
		t.Skipf("%s not set, skipping integration test", EnvHistoryDSN)
		return nil
	}

	store, err := Connect(context.Background(), dsn)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	return store
}

func TestIntegration_Store_RecordAndList(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	store := getTestStore(t)
	if store == nil {
		return
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	run := &Run{
		Project:         "contextmap-test",
		LogPath:         "/tmp/session.log",
		Engine:          "anthropic",
		Model:           "claude-3-5-haiku-20241022",
		Format:          "markdown",
		TranscriptBytes: 12345,
		ReportBytes:     6789,
		Succeeded:       true,
		StartedAt:       time.Now().UTC().Truncate(time.Microsecond),
		Duration:        3 * time.Second,
	}
	if err := store.RecordRun(ctx, run); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if run.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("RecordRun should assign an ID")
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}

	found := false
	for _, got := range runs {
		if got.ID == run.ID {
			found = true
			if got.Project != run.Project {
				t.Errorf("Project = %q, want %q", got.Project, run.Project)
			}
			if got.Engine != run.Engine {
				t.Errorf("Engine = %q, want %q", got.Engine, run.Engine)
			}
			if !got.Succeeded {
				t.Error("Succeeded flag lost")
			}
		}
	}
	if !found {
		t.Errorf("recorded run %s not returned by RecentRuns", run.ID)
	}
}

func TestIntegration_Store_EnsureSchemaIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	store := getTestStore(t)
	if store == nil {
		return
	}
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := store.EnsureSchema(ctx); err != nil {
			t.Fatalf("EnsureSchema run %d: %v", i+1, err)
		}
	}
}
