// Package store keeps a history of analysis runs in SQLite.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/cwbudde/algo-bhloop/measure/bhloop"
)

// ErrNotFound is returned by Get for unknown run ids.
var ErrNotFound = errors.New("store: run not found")

// Run status values.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

//go:embed schema.sql
var schemaSQL string

// Store is a run-history database.
type Store struct {
	*sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection serializes writers from concurrent batch workers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db}, nil
}

// Run is one history row.
type Run struct {
	ID        string
	Source    string
	CreatedAt time.Time
	Status    string
	Stage     string
	Error     string

	Samples       int
	TimeIncrement float64
	Amplitude     float64
	Frequency     float64
	Phase         float64
	Index1        int
	Index2        int
	Index3        int
	ResidualRMS   float64
}

// NewRun builds a history row for an analysis of source that produced res
// or failed with runErr.
func NewRun(source string, samples int, res *bhloop.Result, runErr error, now time.Time) Run {
	run := Run{
		ID:        uuid.NewString(),
		Source:    source,
		CreatedAt: now.UTC(),
		Status:    StatusOK,
		Samples:   samples,
	}

	if runErr != nil {
		run.Status = StatusFailed
		run.Stage = string(bhloop.StageOf(runErr))
		run.Error = runErr.Error()
		return run
	}

	if res != nil {
		run.TimeIncrement = res.Config.TimeIncrement
		run.Amplitude = res.Fit.Amplitude
		run.Frequency = res.Fit.Frequency
		run.Phase = res.Fit.Phase
		run.Index1 = res.Instants.Index1
		run.Index2 = res.Instants.Index2
		run.Index3 = res.Instants.Index3
		run.ResidualRMS = res.Fit.ResidualRMS
	}
	return run
}

// Save inserts run.
func (s *Store) Save(ctx context.Context, run Run) error {
	query := `
		INSERT INTO runs (
			run_id, source, created_at, status, stage, error, samples, time_increment,
			amplitude, frequency, phase, refindex1, refindex2, refindex3, residual_rms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.ExecContext(ctx, query,
		run.ID, run.Source, run.CreatedAt.UnixNano(), run.Status, run.Stage, run.Error,
		run.Samples, run.TimeIncrement, run.Amplitude, run.Frequency, run.Phase,
		run.Index1, run.Index2, run.Index3, run.ResidualRMS,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

const selectRuns = `
	SELECT run_id, source, created_at, status, stage, error, samples, time_increment,
		amplitude, frequency, phase, refindex1, refindex2, refindex3, residual_rms
	FROM runs
`

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.QueryContext(ctx, selectRuns+" ORDER BY created_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}

// Get returns the run with the given id.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	run, err := scanRun(s.QueryRowContext(ctx, selectRuns+" WHERE run_id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run     Run
		created int64
		stage   sql.NullString
		errText sql.NullString
	)
	err := sc.Scan(
		&run.ID, &run.Source, &created, &run.Status, &stage, &errText,
		&run.Samples, &run.TimeIncrement, &run.Amplitude, &run.Frequency, &run.Phase,
		&run.Index1, &run.Index2, &run.Index3, &run.ResidualRMS,
	)
	if err != nil {
		return Run{}, err
	}

	run.CreatedAt = time.Unix(0, created).UTC()
	run.Stage = stage.String
	run.Error = errText.String
	return run, nil
}
