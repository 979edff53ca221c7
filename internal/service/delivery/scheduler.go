package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"fulfillment-platform/internal/domain"
	"fulfillment-platform/internal/logx"
	"fulfillment-platform/internal/ports/deliverytx"
)

// Checkpoint is one batch job: deliveries in From advance one step and
// their orders are moved to Notify.
type Checkpoint struct {
	Name     string
	From     domain.DeliveryStatus
	Notify   domain.OrderStatus
	Schedule cron.Schedule
}

// Checkpoint names
const (
	CheckpointProcessing = "processing"
	CheckpointOnRoute    = "on_route"
	CheckpointDelivered  = "delivered"
)

// NewCheckpoints parses the three standard cron specs, in pipeline order.
func NewCheckpoints(processing, onRoute, delivered string) ([]Checkpoint, error) {
	specs := []struct {
		name   string
		spec   string
		from   domain.DeliveryStatus
		notify domain.OrderStatus
	}{
		{CheckpointProcessing, processing, domain.DeliveryPending, domain.OrderProcessing},
		{CheckpointOnRoute, onRoute, domain.DeliveryProcessing, domain.OrderShipped},
		{CheckpointDelivered, delivered, domain.DeliveryOnRoute, domain.OrderCompleted},
	}
	out := make([]Checkpoint, 0, len(specs))
	for _, s := range specs {
		sched, err := cron.ParseStandard(s.spec)
		if err != nil {
			return nil, fmt.Errorf("checkpoint %s: parse %q: %w", s.name, s.spec, err)
		}
		out = append(out, Checkpoint{Name: s.name, From: s.from, Notify: s.notify, Schedule: sched})
	}
	return out, nil
}

// SchedulerOptions tunes the scheduler.
type SchedulerOptions struct {
	Capacity int
	Tick     time.Duration
	Location *time.Location
	Now      func() time.Time

	Advanced       *prometheus.CounterVec
	NotifyFailures prometheus.Counter
}

// Scheduler advances deliveries in capped batches at checkpoint times.
type Scheduler struct {
	repo        Repository
	runs        RunStore
	orders      OrderNotifier
	checkpoints []Checkpoint
	opts        SchedulerOptions
	logger      logx.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(repo Repository, runs RunStore, orders OrderNotifier, checkpoints []Checkpoint, opts SchedulerOptions, logger logx.Logger) *Scheduler {
	if opts.Tick <= 0 {
		opts.Tick = time.Minute
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Scheduler{
		repo:        repo,
		runs:        runs,
		orders:      orders,
		checkpoints: checkpoints,
		opts:        opts,
		logger:      logger,
	}
}

// Run evaluates due checkpoints on every tick until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.Tick)
	defer ticker.Stop()

	for {
		s.RunDue(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// RunDue runs every checkpoint whose schedule fired since its last successful run.
// A checkpoint seen for the first time only records the marker.
// Failed batches keep the old marker and are retried on the next tick.
// Checkpoints run in reverse pipeline order so a delivery advances at most
// one step per tick, even when several checkpoints are caught up together.
func (s *Scheduler) RunDue(ctx context.Context) {
	now := s.opts.Now().In(s.opts.Location)
	for i := len(s.checkpoints) - 1; i >= 0; i-- {
		cp := s.checkpoints[i]
		log := s.logger.With(logx.String("checkpoint", cp.Name))

		last, ok, err := s.runs.LastRun(ctx, cp.Name)
		if err != nil {
			log.Warn("read checkpoint marker", logx.Err(err))
			continue
		}
		if ok && cp.Schedule.Next(last.In(s.opts.Location)).After(now) {
			continue
		}
		if ok {
			if _, err := s.RunCheckpoint(ctx, cp); err != nil {
				log.Error("checkpoint batch failed",
					logx.String("event", "checkpoint_failed"),
					logx.Err(err),
				)
				continue
			}
		}
		if err := s.runs.SetLastRun(ctx, cp.Name, now); err != nil {
			log.Warn("write checkpoint marker", logx.Err(err))
		}
	}
}

// RunCheckpoint advances up to capacity active deliveries, oldest first, in one
// transaction, then notifies the order service for each of them. Notification
// failures are logged and never undo the advance.
func (s *Scheduler) RunCheckpoint(ctx context.Context, cp Checkpoint) (int, error) {
	now := s.opts.Now().UTC()

	var advanced []domain.Delivery
	err := s.repo.WithTx(ctx, func(tx deliverytx.Repository) error {
		batch, err := tx.ListForAdvance(ctx, cp.From, s.opts.Capacity)
		if err != nil {
			return err
		}
		for i := range batch {
			if err := batch[i].Advance(now); err != nil {
				return err
			}
			if err := tx.UpdateStatus(ctx, &batch[i]); err != nil {
				return err
			}
		}
		advanced = batch
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("checkpoint %s: %w", cp.Name, err)
	}

	if s.opts.Advanced != nil {
		s.opts.Advanced.WithLabelValues(cp.Name).Add(float64(len(advanced)))
	}
	for _, d := range advanced {
		if err := s.orders.UpdateOrderStatus(ctx, d.OrderID, cp.Notify); err != nil {
			if s.opts.NotifyFailures != nil {
				s.opts.NotifyFailures.Inc()
			}
			s.logger.Warn("order status notification failed",
				logx.String("event", "order_notify_failed"),
				logx.String("order_id", d.OrderID),
				logx.Int64("delivery_id", d.ID),
				logx.String("status", string(cp.Notify)),
				logx.Err(err),
			)
		}
	}

	s.logger.Info("checkpoint batch done",
		logx.String("event", "checkpoint_done"),
		logx.String("checkpoint", cp.Name),
		logx.Int("advanced", len(advanced)),
	)
	return len(advanced), nil
}
