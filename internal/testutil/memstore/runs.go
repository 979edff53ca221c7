package memstore

import (
	"context"
	"sync"
	"time"
)

// Runs is an in-memory checkpoint run store.
type Runs struct {
	mu   sync.Mutex
	last map[string]time.Time
}

// NewRuns returns an empty run store.
func NewRuns() *Runs {
	return &Runs{last: map[string]time.Time{}}
}

// LastRun returns the last successful run of the checkpoint.
func (r *Runs) LastRun(_ context.Context, checkpoint string) (time.Time, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	at, ok := r.last[checkpoint]
	return at, ok, nil
}

// SetLastRun records a successful run.
func (r *Runs) SetLastRun(_ context.Context, checkpoint string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last[checkpoint] = at
	return nil
}
