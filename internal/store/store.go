// Package store provides the run log interface and its SQLite implementation.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/birdswarm/internal/model"
)

// ErrRunNotFound is returned when no live run matches an id.
var ErrRunNotFound = errors.New("run not found")

// CreateRunParams holds parameters for recording a new run.
type CreateRunParams struct {
	Label  string
	Seed   int64
	Ticks  int
	Dt     float64
	Birds  int
	Config string // YAML snapshot
}

// GetParams holds parameters for retrieving a run.
type GetParams struct {
	ID      string // full id or unique prefix
	Samples bool
}

// ListParams holds parameters for listing runs.
type ListParams struct {
	Label string
	Limit int
}

// RmParams holds parameters for deleting a run.
type RmParams struct {
	ID   string
	Hard bool
}

// Store defines the run log interface.
type Store interface {
	// CreateRun records the start of a run. Returns the created run.
	CreateRun(ctx context.Context, p CreateRunParams) (*model.Run, error)

	// PutSamples appends samples to a run.
	PutSamples(ctx context.Context, runID string, samples []model.Sample) error

	// FinishRun stamps the finish time and the number of ticks actually run.
	FinishRun(ctx context.Context, runID string, ticks int) error

	// GetRun retrieves a run, optionally with its samples.
	GetRun(ctx context.Context, p GetParams) (*model.Run, error)

	// ListRuns lists runs, newest first.
	ListRuns(ctx context.Context, p ListParams) ([]model.Run, error)

	// Rm soft-deletes (or hard-deletes) a run.
	Rm(ctx context.Context, p RmParams) error

	// Close closes the store.
	Close() error
}
