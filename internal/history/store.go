// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a local SQLite record of completed conversion runs
// so that past batches can be listed without their report files.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/docbatch/pkg/types"
)

// DefaultPath is the database location used when none is configured.
const DefaultPath = ".docbatch/history.db"

// Run is one row of the runs table.
type Run struct {
	ID          string
	GeneratedAt time.Time
	InputDir    string
	OutputDir   string
	Backend     string
	Total       int
	Succeeded   int
	Failed      int
	Characters  int
}

// Store manages the history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path and ensures the schema
// exists.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			generated_at TEXT NOT NULL,
			input_dir TEXT,
			output_dir TEXT,
			backend TEXT,
			total INTEGER NOT NULL,
			succeeded INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			characters INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS outcomes (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			file_path TEXT NOT NULL,
			extension TEXT,
			success INTEGER NOT NULL,
			content_length INTEGER NOT NULL,
			output_path TEXT,
			duration_ms INTEGER NOT NULL,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_run_id ON outcomes(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_generated_at ON runs(generated_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores a run and its per-file outcomes in one transaction.
// Recording the same run ID twice replaces the earlier rows.
func (s *Store) Record(ctx context.Context, r types.Report) error {
	if r.RunID == "" {
		return fmt.Errorf("recording run: missing run id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, r.RunID); err != nil {
		return fmt.Errorf("clearing run %s: %w", r.RunID, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, generated_at, input_dir, output_dir, backend, total, succeeded, failed, characters)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.GeneratedAt.UTC().Format(time.RFC3339Nano), r.InputDir, r.OutputDir, r.Backend,
		r.TotalFiles, r.SuccessCount, r.FailureCount, r.TotalContentLength,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO outcomes (run_id, file_path, extension, success, content_length, output_path, duration_ms, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range r.Outcomes {
		_, err := stmt.ExecContext(ctx,
			r.RunID, o.SourcePath, o.Extension, o.Succeeded, o.ContentLength,
			o.OutputPath, o.DurationMS, o.Error,
		)
		if err != nil {
			return fmt.Errorf("inserting outcome %s: %w", o.SourcePath, err)
		}
	}

	return tx.Commit()
}

// Recent returns up to limit runs, newest first. A non-positive limit
// defaults to 10.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, generated_at, input_dir, output_dir, backend, total, succeeded, failed, characters
		 FROM runs ORDER BY generated_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run       Run
			generated string
		)
		if err := rows.Scan(&run.ID, &generated, &run.InputDir, &run.OutputDir, &run.Backend,
			&run.Total, &run.Succeeded, &run.Failed, &run.Characters); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.GeneratedAt, _ = time.Parse(time.RFC3339Nano, generated)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Failures returns the failed outcomes recorded for runID in insertion order.
func (s *Store) Failures(ctx context.Context, runID string) ([]types.Outcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file_path, extension, content_length, output_path, duration_ms, error
		 FROM outcomes WHERE run_id = ? AND success = 0 ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying outcomes: %w", err)
	}
	defer rows.Close()

	var out []types.Outcome
	for rows.Next() {
		var o types.Outcome
		if err := rows.Scan(&o.SourcePath, &o.Extension, &o.ContentLength,
			&o.OutputPath, &o.DurationMS, &o.Error); err != nil {
			return nil, fmt.Errorf("scanning outcome: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
