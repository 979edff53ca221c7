package saga

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fulfillment-platform/internal/domain"
)

// Dispatcher is a fixed pool of workers fed by a bounded queue.
// A saga is tracked from Submit until its handler returns, so resubmitting it is a no-op.
type Dispatcher struct {
	jobs    chan domain.Saga
	workers int
	handle  func(context.Context, domain.Saga)

	mu       sync.Mutex
	inflight map[uuid.UUID]struct{}
}

// NewDispatcher creates a dispatcher with the given pool and queue sizes.
func NewDispatcher(workers, queueSize int, handle func(context.Context, domain.Saga)) *Dispatcher {
	return &Dispatcher{
		jobs:     make(chan domain.Saga, queueSize),
		workers:  workers,
		handle:   handle,
		inflight: make(map[uuid.UUID]struct{}),
	}
}

// Submit enqueues s without blocking. It returns false only when the queue is full.
func (d *Dispatcher) Submit(s domain.Saga) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.inflight[s.ID]; ok {
		return true
	}
	select {
	case d.jobs <- s:
		d.inflight[s.ID] = struct{}{}
		return true
	default:
		return false
	}
}

// Pending returns the number of tracked sagas, queued or running.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.inflight)
}

// Run processes the queue until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < d.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case s := <-d.jobs:
					d.handle(ctx, s)
					d.done(s.ID)
				}
			}
		})
	}
	return g.Wait()
}

func (d *Dispatcher) done(id uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.inflight, id)
}
