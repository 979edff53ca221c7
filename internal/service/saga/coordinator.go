// Package saga coordinates optimistic stock mutations with the order service.
//
// A successful reservation or restock is recorded as a pending saga before the
// caller gets its answer. Workers later ask the order service whether the order
// reached the expected state and either confirm the saga or compensate it.
package saga

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"fulfillment-platform/internal/domain"
	"fulfillment-platform/internal/logx"
)

// Options tunes saga resolution.
type Options struct {
	GracePeriod      time.Duration
	Deadline         time.Duration
	RetryInterval    time.Duration
	Workers          int
	QueueSize        int
	RecoveryInterval time.Duration
	RecoveryBatch    int
}

// Instruments are optional Prometheus collectors; nil fields are skipped.
type Instruments struct {
	Resolved    *prometheus.CounterVec
	CheckErrors *prometheus.CounterVec
	Rejected    prometheus.Counter
}

// Coordinator runs both the reservation and the cancellation flow.
type Coordinator struct {
	ledger Ledger
	sagas  Log
	orders OrderChecker
	opts   Options
	inst   Instruments
	queue  *Dispatcher
	logger logx.Logger
	now    func() time.Time
}

// NewCoordinator wires a coordinator; call Run to start resolving sagas.
func NewCoordinator(ledger Ledger, sagas Log, orders OrderChecker, opts Options, inst Instruments, logger logx.Logger) *Coordinator {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1
	}
	if opts.Deadline < opts.GracePeriod {
		opts.Deadline = opts.GracePeriod
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = time.Second
	}
	if opts.RecoveryInterval <= 0 {
		opts.RecoveryInterval = 30 * time.Second
	}
	if opts.RecoveryBatch <= 0 {
		opts.RecoveryBatch = opts.QueueSize
	}

	c := &Coordinator{
		ledger: ledger,
		sagas:  sagas,
		orders: orders,
		opts:   opts,
		inst:   inst,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	c.queue = NewDispatcher(opts.Workers, opts.QueueSize, c.resolve)
	return c
}

// Run starts the worker pool and the recovery sweep and blocks until ctx is done.
func (c *Coordinator) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.queue.Run(ctx) })
	g.Go(func() error { return c.recoverLoop(ctx) })
	return g.Wait()
}

func (c *Coordinator) newSaga(kind domain.SagaKind, orderID string, lines []domain.SagaLine) *domain.Saga {
	now := c.now()
	return &domain.Saga{
		ID:        uuid.New(),
		Kind:      kind,
		OrderID:   orderID,
		Lines:     lines,
		State:     domain.SagaPending,
		DueAt:     now.Add(c.opts.GracePeriod),
		Deadline:  now.Add(c.opts.Deadline),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// submit hands the saga to the worker pool; a full queue leaves it for the recovery sweep.
func (c *Coordinator) submit(s domain.Saga) bool {
	if c.queue.Submit(s) {
		return true
	}
	if c.inst.Rejected != nil {
		c.inst.Rejected.Inc()
	}
	c.logger.Warn("compensation queue is full, saga left for recovery",
		logx.String("event", "saga_queue_full"),
		logx.String("saga_id", s.ID.String()),
		logx.String("order_id", s.OrderID),
	)
	return false
}

func (c *Coordinator) countResolved(kind domain.SagaKind, state domain.SagaState) {
	if c.inst.Resolved != nil {
		c.inst.Resolved.WithLabelValues(string(kind), string(state)).Inc()
	}
}

func (c *Coordinator) countCheckError(kind domain.SagaKind) {
	if c.inst.CheckErrors != nil {
		c.inst.CheckErrors.WithLabelValues(string(kind)).Inc()
	}
}
