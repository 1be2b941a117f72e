// Package history records completed pipeline runs for later inspection.
package history

import (
	"context"
	"errors"
	"time"
)

// Record is one completed pipeline run. Error is empty when the run
// succeeded.
type Record struct {
	RunID     string        `json:"run_id"`
	Query     string        `json:"query"`
	Category  string        `json:"category"`
	SQL       string        `json:"sql"`
	Status    string        `json:"status"`
	Attempts  int           `json:"attempts"`
	CacheHit  bool          `json:"cache_hit"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// Store persists run records.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save records a run. A record with the same RunID is replaced
	// in place. A zero CreatedAt is stamped with the current time.
	Save(ctx context.Context, rec Record) error

	// Get retrieves the record for a run.
	// Returns ErrNotFound if no such run was recorded.
	Get(ctx context.Context, runID string) (Record, error)

	// List returns recorded runs, newest first, up to limit.
	// A non-positive limit returns all records.
	List(ctx context.Context, limit int) ([]Record, error)

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for history operations.
var (
	// ErrNotFound indicates a run record doesn't exist.
	ErrNotFound = errors.New("history record not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("history store closed")
)
