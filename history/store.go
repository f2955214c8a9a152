// Package history provides an optional Postgres-backed archive of
// pipeline runs. It records one row per run (what was analyzed, with
// which engine, and how large the inputs and outputs were) so long-lived
// projects can inspect their reporting history beyond the single
// persisted document.
//
// History is strictly supplemental: it is enabled only when a DSN is
// configured, and every failure is surfaced as an error for the caller to
// log and swallow. Report generation never depends on it.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnvHistoryDSN enables run-history recording when set.
const EnvHistoryDSN = "CONTEXTMAP_HISTORY_DSN"

// Run is one recorded pipeline run.
type Run struct {
	ID              uuid.UUID
	Project         string
	LogPath         string
	Engine          string
	Model           string
	Format          string
	TranscriptBytes int
	ReportBytes     int
	Succeeded       bool
	StartedAt       time.Time
	Duration        time.Duration
}

// Store records pipeline runs in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a pool for the given DSN and verifies connectivity.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

// EnsureSchema creates the run-history table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS contextmap_runs (
			id               UUID PRIMARY KEY,
			project          TEXT NOT NULL DEFAULT '',
			log_path         TEXT NOT NULL,
			engine           TEXT NOT NULL DEFAULT '',
			model            TEXT NOT NULL DEFAULT '',
			format           TEXT NOT NULL DEFAULT '',
			transcript_bytes INTEGER NOT NULL DEFAULT 0,
			report_bytes     INTEGER NOT NULL DEFAULT 0,
			succeeded        BOOLEAN NOT NULL DEFAULT FALSE,
			started_at       TIMESTAMPTZ NOT NULL,
			duration_ms      BIGINT NOT NULL DEFAULT 0
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// RecordRun inserts one run record. A zero ID is assigned.
func (s *Store) RecordRun(ctx context.Context, run *Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO contextmap_runs
			(id, project, log_path, engine, model, format,
			 transcript_bytes, report_bytes, succeeded, started_at, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		run.ID, run.Project, run.LogPath, run.Engine, run.Model, run.Format,
		run.TranscriptBytes, run.ReportBytes, run.Succeeded, run.StartedAt,
		run.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, project, log_path, engine, model, format,
		       transcript_bytes, report_bytes, succeeded, started_at, duration_ms
		FROM contextmap_runs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		var durationMS int64
		if err := rows.Scan(&run.ID, &run.Project, &run.LogPath, &run.Engine,
			&run.Model, &run.Format, &run.TranscriptBytes, &run.ReportBytes,
			&run.Succeeded, &run.StartedAt, &durationMS); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	return runs, nil
}
