// Package store persists run history in a local SQLite database so
// repeated runs over the same tree can be audited and compared.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	ended_at   TEXT,
	root       TEXT NOT NULL,
	provider   TEXT NOT NULL,
	model      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS outcomes (
	run_id       TEXT NOT NULL REFERENCES runs(id),
	file         TEXT NOT NULL,
	declaration  TEXT NOT NULL,
	status       TEXT NOT NULL,
	attempts     INTEGER NOT NULL,
	corrections  INTEGER NOT NULL,
	violations   INTEGER NOT NULL,
	recorded_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_outcomes_run ON outcomes(run_id);
`

// Store is a run ledger backed by SQLite.
type Store struct {
	db *sql.DB
}

// OutcomeRecord is one declaration's result within a run.
type OutcomeRecord struct {
	File        string
	Declaration string
	Status      string
	Attempts    int
	Corrections int
	Violations  int
}

// RunSummary is a completed run as read back from the ledger.
type RunSummary struct {
	ID        string
	StartedAt time.Time
	EndedAt   time.Time
	Root      string
	Provider  string
	Model     string
	Outcomes  int
}

// Open opens (creating if needed) the ledger at path. The parent
// directory is created if it does not exist.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing ledger schema: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenMemory opens an in-memory ledger, used by tests and dry runs.
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing ledger schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// BeginRun records the start of a run and returns its id.
func (s *Store) BeginRun(ctx context.Context, root, provider, model string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, root, provider, model) VALUES (?, ?, ?, ?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339), root, provider, model)
	if err != nil {
		return "", fmt.Errorf("recording run start: %w", err)
	}
	return id, nil
}

// EndRun stamps the run's completion time.
func (s *Store) EndRun(ctx context.Context, runID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET ended_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), runID)
	if err != nil {
		return fmt.Errorf("recording run end: %w", err)
	}
	return nil
}

// RecordOutcome appends one declaration outcome to the run.
func (s *Store) RecordOutcome(ctx context.Context, runID string, rec OutcomeRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outcomes (run_id, file, declaration, status, attempts, corrections, violations, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, rec.File, rec.Declaration, rec.Status, rec.Attempts, rec.Corrections, rec.Violations,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording outcome: %w", err)
	}
	return nil
}

// Outcomes returns every outcome recorded for the run, file order first.
func (s *Store) Outcomes(ctx context.Context, runID string) ([]OutcomeRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file, declaration, status, attempts, corrections, violations
		 FROM outcomes WHERE run_id = ? ORDER BY file, declaration`, runID)
	if err != nil {
		return nil, fmt.Errorf("reading outcomes: %w", err)
	}
	defer rows.Close()

	var out []OutcomeRecord
	for rows.Next() {
		var rec OutcomeRecord
		if err := rows.Scan(&rec.File, &rec.Declaration, &rec.Status, &rec.Attempts, &rec.Corrections, &rec.Violations); err != nil {
			return nil, fmt.Errorf("scanning outcome: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Runs lists recorded runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.started_at, COALESCE(r.ended_at, ''), r.root, r.provider, r.model,
		        (SELECT COUNT(*) FROM outcomes o WHERE o.run_id = r.id)
		 FROM runs r ORDER BY r.started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("reading runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var rs RunSummary
		var started, ended string
		if err := rows.Scan(&rs.ID, &started, &ended, &rs.Root, &rs.Provider, &rs.Model, &rs.Outcomes); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		rs.StartedAt, _ = time.Parse(time.RFC3339, started)
		if ended != "" {
			rs.EndedAt, _ = time.Parse(time.RFC3339, ended)
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}
