package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath       string       `json:"db_path"`
	DBSizeBytes  int64        `json:"db_size_bytes"`
	TotalRuns    int          `json:"total_runs"`
	ActiveRuns   int          `json:"active_runs"`
	FinishedRuns int          `json:"finished_runs"`
	TotalSamples int          `json:"total_samples"`
	Labels       []LabelStats `json:"labels"`
}

// LabelStats holds per-label counts.
type LabelStats struct {
	Label   string `json:"label"`
	Runs    int    `json:"runs"`
	Samples int    `json:"samples"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&st.TotalRuns)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE deleted_at IS NULL`).Scan(&st.ActiveRuns)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE deleted_at IS NULL AND finished_at IS NOT NULL`).Scan(&st.FinishedRuns)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM samples`).Scan(&st.TotalSamples)

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.label, COUNT(DISTINCT r.id) AS runs, COUNT(smp.seq) AS samples
		FROM runs r LEFT JOIN samples smp ON smp.run_id = r.id
		WHERE r.deleted_at IS NULL
		GROUP BY r.label ORDER BY runs DESC, r.label`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var l LabelStats
		rows.Scan(&l.Label, &l.Runs, &l.Samples)
		st.Labels = append(st.Labels, l)
	}

	return st, nil
}
