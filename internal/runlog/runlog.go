// Package runlog keeps a local SQLite history of cleaning runs. It is the
// always-on counterpart of the optional warehouse registry: a run on a
// laptop with no GCP credentials still leaves an auditable trail.
package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/cleaner"
)

// Entry is one recorded cleaning run.
type Entry struct {
	RunID      string
	InputPath  string
	OutputPath string
	Status     string
	RowsIn     int
	RowsOut    int
	Rejected   int
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS cleaning_runs (
	run_id      TEXT PRIMARY KEY,
	input_path  TEXT NOT NULL,
	output_path TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	rows_in     INTEGER NOT NULL DEFAULT 0,
	rows_out    INTEGER NOT NULL DEFAULT 0,
	rejected    INTEGER NOT NULL DEFAULT 0,
	error       TEXT NOT NULL DEFAULT '',
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_cleaning_runs_started ON cleaning_runs(started_at);
`

// Open opens (creating if needed) the run history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("runlog: open %q: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("runlog: applying schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts a run in RUNNING state. Call Finish when the run ends.
func (s *Store) Record(ctx context.Context, runID, inputPath string, startedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cleaning_runs (run_id, input_path, status, started_at)
		VALUES (?, ?, ?, ?)`,
		runID, inputPath, cleaner.StatusRunning, startedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("runlog: recording run %s: %w", runID, err)
	}
	return nil
}

// Finish updates a run with its final report.
func (s *Store) Finish(ctx context.Context, report *cleaner.RunReport) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE cleaning_runs
		SET output_path = ?, status = ?, rows_in = ?, rows_out = ?,
		    rejected = ?, error = ?, finished_at = ?
		WHERE run_id = ?`,
		report.OutputPath, report.Status, report.RowsIn, report.RowsOut,
		report.RowsRejected(), report.Error,
		report.FinishedAt.UTC().Format(time.RFC3339), report.RunID,
	)
	if err != nil {
		return fmt.Errorf("runlog: finishing run %s: %w", report.RunID, err)
	}
	return nil
}

// Recent returns the latest runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, input_path, output_path, status, rows_in, rows_out,
		       rejected, error, started_at, finished_at
		FROM cleaning_runs
		ORDER BY started_at DESC, run_id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("runlog: querying recent runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var started, finished string
		if err := rows.Scan(&e.RunID, &e.InputPath, &e.OutputPath, &e.Status,
			&e.RowsIn, &e.RowsOut, &e.Rejected, &e.Error, &started, &finished); err != nil {
			return nil, fmt.Errorf("runlog: scanning run: %w", err)
		}
		e.StartedAt, _ = time.Parse(time.RFC3339, started)
		if finished != "" {
			e.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("runlog: iterating runs: %w", err)
	}
	return entries, nil
}
