package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rcliao/birdswarm/internal/model"
)

// ExportAll returns all non-deleted runs with their samples, optionally
// filtered by label.
func (s *SQLiteStore) ExportAll(ctx context.Context, label string) ([]model.Run, error) {
	where := []string{"deleted_at IS NULL"}
	args := []interface{}{}

	if label != "" {
		where = append(where, "label = ?")
		args = append(args, label)
	}

	query := `SELECT ` + runColumns + ` FROM runs WHERE ` + strings.Join(where, " AND ") + ` ORDER BY started_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		runs = append(runs, r)
	}
	rows.Close()

	for i := range runs {
		runs[i].Samples, err = s.samples(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// Import stores runs from an export, keeping their ids. Runs whose id
// already exists are skipped.
func (s *SQLiteStore) Import(ctx context.Context, runs []model.Run) (int, error) {
	imported := 0
	for _, r := range runs {
		ok, err := s.importRun(ctx, r)
		if err != nil {
			return imported, fmt.Errorf("import run %s: %w", r.ID, err)
		}
		if ok {
			imported++
		}
	}
	return imported, nil
}

func (s *SQLiteStore) importRun(ctx context.Context, r model.Run) (bool, error) {
	if r.ID == "" {
		r.ID = s.newID()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var finishedAt, config *string
	if r.FinishedAt != nil {
		f := r.FinishedAt.UTC().Format(time.RFC3339)
		finishedAt = &f
	}
	if r.Config != "" {
		config = &r.Config
	}

	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO runs (id, label, seed, ticks, dt, birds, config, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Label, r.Seed, r.Ticks, r.Dt, r.Birds, config,
		r.StartedAt.UTC().Format(time.RFC3339), finishedAt)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil
	}

	for i, smp := range r.Samples {
		if err := insertSample(ctx, tx, r.ID, i, smp); err != nil {
			return false, err
		}
	}
	return true, tx.Commit()
}
