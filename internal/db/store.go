package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vzy-dashboard/backend/internal/models"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) CreateRun(ctx context.Context, id string, startedAt time.Time) error {
	_, err := s.Pool.Exec(ctx, `INSERT INTO runs (id, status, started_at) VALUES ($1, $2, $3)`, id, models.RunStatusRunning, startedAt)
	return err
}

func (s *Store) FinishRun(ctx context.Context, runID string, status string, summary []byte) error {
	_, err := s.Pool.Exec(ctx, `UPDATE runs SET status = $1, summary = $2, finished_at = NOW() WHERE id = $3`, status, summary, runID)
	return err
}

// SaveSnapshot stores the matrix of a run. A run has at most one snapshot.
func (s *Store) SaveSnapshot(ctx context.Context, snap models.Snapshot) error {
	matrix, err := json.Marshal(snap.Matrix)
	if err != nil {
		return err
	}
	diag, err := json.Marshal(snap.Diagnostics)
	if err != nil {
		return err
	}
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM snapshots WHERE run_id = $1`, snap.RunID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO snapshots (run_id, project, updated_at, total_issues, matrix, diagnostics) VALUES ($1, $2, $3, $4, $5, $6)`,
			snap.RunID, snap.Project, snap.UpdatedAt, snap.TotalIssues, matrix, diag)
		return err
	})
}

func (s *Store) GetLatestRun(ctx context.Context) (models.Run, error) {
	row := s.Pool.QueryRow(ctx, `SELECT id, started_at, finished_at, status, summary FROM runs ORDER BY started_at DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Run{}, ErrNotFound
	}
	return run, err
}

func (s *Store) ListRuns(ctx context.Context, limit int) ([]models.Run, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `SELECT id, started_at, finished_at, status, summary FROM runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (s *Store) GetSnapshot(ctx context.Context, runID string) (models.Snapshot, error) {
	var (
		snap   models.Snapshot
		matrix []byte
		diag   []byte
	)
	err := s.Pool.QueryRow(ctx,
		`SELECT run_id, project, updated_at, total_issues, matrix, diagnostics FROM snapshots WHERE run_id = $1`, runID).
		Scan(&snap.RunID, &snap.Project, &snap.UpdatedAt, &snap.TotalIssues, &matrix, &diag)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return models.Snapshot{}, err
	}
	if err := json.Unmarshal(matrix, &snap.Matrix); err != nil {
		return models.Snapshot{}, fmt.Errorf("snapshot matrix: %w", err)
	}
	if err := json.Unmarshal(diag, &snap.Diagnostics); err != nil {
		return models.Snapshot{}, fmt.Errorf("snapshot diagnostics: %w", err)
	}
	return snap, nil
}

func scanRun(row pgx.Row) (models.Run, error) {
	var (
		run     models.Run
		summary []byte
	)
	if err := row.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Status, &summary); err != nil {
		return models.Run{}, err
	}
	if len(summary) > 0 {
		run.Summary = json.RawMessage(summary)
	}
	return run, nil
}
