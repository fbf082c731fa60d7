package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/birdswarm/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy io.Reader
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		label       TEXT NOT NULL DEFAULT '',
		seed        INTEGER NOT NULL,
		ticks       INTEGER NOT NULL,
		dt          REAL NOT NULL,
		birds       INTEGER NOT NULL,
		config      TEXT,
		started_at  TEXT NOT NULL,
		finished_at TEXT,
		deleted_at  TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_label ON runs(label);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_deleted ON runs(deleted_at);

	CREATE TABLE IF NOT EXISTS samples (
		run_id          TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq             INTEGER NOT NULL,
		timestamp       REAL NOT NULL,
		hungry          INTEGER NOT NULL,
		feeding         INTEGER NOT NULL,
		communicating   INTEGER NOT NULL,
		exploring       INTEGER NOT NULL,
		discovered_food INTEGER NOT NULL,
		spawned_food    INTEGER NOT NULL,
		removed_food    INTEGER NOT NULL,
		avg_discovery   REAL NOT NULL,
		avg_lifetime    REAL NOT NULL,
		avg_hops        REAL NOT NULL,
		avg_duplicates  REAL NOT NULL,
		avg_age         REAL NOT NULL,
		avg_certainty   REAL NOT NULL,
		PRIMARY KEY (run_id, seq)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) CreateRun(ctx context.Context, p CreateRunParams) (*model.Run, error) {
	now := time.Now().UTC()
	id := s.newID()

	var configPtr *string
	if p.Config != "" {
		configPtr = &p.Config
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, label, seed, ticks, dt, birds, config, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.Label, p.Seed, p.Ticks, p.Dt, p.Birds, configPtr, now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	return &model.Run{
		ID:        id,
		Label:     p.Label,
		Seed:      p.Seed,
		Ticks:     p.Ticks,
		Dt:        p.Dt,
		Birds:     p.Birds,
		Config:    p.Config,
		StartedAt: now.Truncate(time.Second),
	}, nil
}

func (s *SQLiteStore) PutSamples(ctx context.Context, runID string, samples []model.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var next int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq) + 1, 0) FROM samples WHERE run_id = ?`, runID).Scan(&next)
	if err != nil {
		return fmt.Errorf("next sample seq: %w", err)
	}

	for i, smp := range samples {
		if err := insertSample(ctx, tx, runID, next+i, smp); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertSample(ctx context.Context, tx *sql.Tx, runID string, seq int, smp model.Sample) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO samples (run_id, seq, timestamp, hungry, feeding, communicating, exploring,
		                      discovered_food, spawned_food, removed_food, avg_discovery, avg_lifetime,
		                      avg_hops, avg_duplicates, avg_age, avg_certainty)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, seq, smp.Timestamp,
		smp.HungryBirds, smp.FeedingBirds, smp.CommunicatingBirds, smp.ExploringBirds,
		smp.DiscoveredFood, smp.SpawnedFood, smp.RemovedFood,
		smp.AverageDiscoveryDuration, smp.AverageFoodLifetime,
		smp.AverageHops, smp.AverageDuplicatesPerInformation,
		smp.AverageInformationAge, smp.AverageInformationCertainty)
	if err != nil {
		return fmt.Errorf("insert sample: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FinishRun(ctx context.Context, runID string, ticks int) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, ticks = ? WHERE id = ? AND deleted_at IS NULL`,
		now, ticks, runID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

const runColumns = `id, label, seed, ticks, dt, birds, config, started_at, finished_at`

func (s *SQLiteStore) GetRun(ctx context.Context, p GetParams) (*model.Run, error) {
	id, err := s.resolveID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	run, err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? AND deleted_at IS NULL`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, p.ID)
	}
	if err != nil {
		return nil, err
	}

	if p.Samples {
		run.Samples, err = s.samples(ctx, run.ID)
		if err != nil {
			return nil, err
		}
	}
	return &run, nil
}

// resolveID expands a unique id prefix to the full id.
func (s *SQLiteStore) resolveID(ctx context.Context, prefix string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("%w: empty id", ErrRunNotFound)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM runs WHERE id LIKE ? AND deleted_at IS NULL LIMIT 2`,
		strings.ToUpper(prefix)+"%")
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		ids = append(ids, id)
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	case 1:
		return ids[0], nil
	}
	return "", fmt.Errorf("ambiguous run id prefix %q", prefix)
}

func (s *SQLiteStore) samples(ctx context.Context, runID string) ([]model.Sample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT timestamp, hungry, feeding, communicating, exploring,
		        discovered_food, spawned_food, removed_food, avg_discovery, avg_lifetime,
		        avg_hops, avg_duplicates, avg_age, avg_certainty
		 FROM samples WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []model.Sample
	for rows.Next() {
		var smp model.Sample
		err := rows.Scan(&smp.Timestamp,
			&smp.HungryBirds, &smp.FeedingBirds, &smp.CommunicatingBirds, &smp.ExploringBirds,
			&smp.DiscoveredFood, &smp.SpawnedFood, &smp.RemovedFood,
			&smp.AverageDiscoveryDuration, &smp.AverageFoodLifetime,
			&smp.AverageHops, &smp.AverageDuplicatesPerInformation,
			&smp.AverageInformationAge, &smp.AverageInformationCertainty)
		if err != nil {
			return nil, err
		}
		samples = append(samples, smp)
	}
	return samples, rows.Err()
}

func (s *SQLiteStore) ListRuns(ctx context.Context, p ListParams) ([]model.Run, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	where := []string{"deleted_at IS NULL"}
	var args []interface{}
	if p.Label != "" {
		where = append(where, "label = ?")
		args = append(args, p.Label)
	}

	query := fmt.Sprintf(`SELECT %s FROM runs WHERE %s ORDER BY started_at DESC, id DESC LIMIT ?`,
		runColumns, strings.Join(where, " AND "))
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, nil
}

func (s *SQLiteStore) Rm(ctx context.Context, p RmParams) error {
	id, err := s.resolveID(ctx, p.ID)
	if err != nil {
		return err
	}

	if p.Hard {
		_, err := s.db.ExecContext(ctx, `DELETE FROM samples WHERE run_id = ?`, id)
		if err != nil {
			return err
		}
		_, err = s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, `UPDATE runs SET deleted_at = ? WHERE id = ?`, now, id)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (model.Run, error) {
	var r model.Run
	var config, finishedAt sql.NullString
	var startedAt string

	err := row.Scan(&r.ID, &r.Label, &r.Seed, &r.Ticks, &r.Dt, &r.Birds, &config, &startedAt, &finishedAt)
	if err != nil {
		return r, err
	}

	r.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	if config.Valid {
		r.Config = config.String
	}
	if finishedAt.Valid {
		t, _ := time.Parse(time.RFC3339, finishedAt.String)
		r.FinishedAt = &t
	}
	return r, nil
}
