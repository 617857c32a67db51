// Package history records completed evolution runs in an embedded SQLite
// database so past campaigns can be listed and compared without keeping
// the process alive.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "modernc.org/sqlite"

	apperrors "github.com/messiay/protein-refinary/pkg/errors"
)

// GenerationSummary is the per-generation slice of a run record.
type GenerationSummary struct {
	Index          int     `json:"index"`
	CandidateCount int     `json:"candidate_count"`
	BestID         string  `json:"best_id"`
	BestAffinity   float64 `json:"best_affinity"`
	Origin         string  `json:"origin"`
}

// RunSummary is the durable record of one evolution session.
type RunSummary struct {
	ID                    string              `json:"id"`
	StartedAt             time.Time           `json:"started_at"`
	FinishedAt            time.Time           `json:"finished_at"`
	VariantsPerGeneration int                 `json:"variants_per_generation"`
	Generations           int                 `json:"generations"`
	BestCandidateID       string              `json:"best_candidate_id"`
	BestAffinity          float64             `json:"best_affinity"`
	Records               []GenerationSummary `json:"records"`
}

// Store persists run summaries.  The schema is created on open, so the
// database file can simply be deleted to reset history.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id            TEXT PRIMARY KEY,
    started_at    TEXT NOT NULL,
    finished_at   TEXT NOT NULL,
    best_affinity REAL NOT NULL,
    payload       BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
`

// Open opens (and if needed creates) the history database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeHistoryStoreFailed, "failed to open history database")
	}
	// modernc's driver serialises writes itself; a single connection
	// avoids SQLITE_BUSY under concurrent saves.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, apperrors.Wrap(err, apperrors.ErrCodeHistoryStoreFailed, "failed to initialise history schema")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// SaveRun inserts or replaces the summary for a run.
func (s *Store) SaveRun(ctx context.Context, run RunSummary) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to encode run summary")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (id, started_at, finished_at, best_affinity, payload) VALUES (?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.BestAffinity,
		payload,
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeHistoryStoreFailed, "failed to save run summary")
	}
	return nil
}

// GetRun loads one run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (RunSummary, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM runs WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return RunSummary{}, apperrors.Newf(apperrors.ErrCodeHistoryNotFound, "run %s not found", id)
	}
	if err != nil {
		return RunSummary{}, apperrors.Wrap(err, apperrors.ErrCodeHistoryStoreFailed, "failed to load run summary")
	}
	var run RunSummary
	if err := json.Unmarshal(payload, &run); err != nil {
		return RunSummary{}, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to decode run summary")
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit < 1 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeHistoryStoreFailed, "failed to list runs")
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeHistoryStoreFailed, "failed to scan run row")
		}
		var run RunSummary
		if err := json.Unmarshal(payload, &run); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to decode run summary")
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeHistoryStoreFailed, "failed to iterate runs")
	}
	return runs, nil
}
