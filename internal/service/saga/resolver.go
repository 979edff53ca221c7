package saga

import (
	"context"
	"fmt"
	"time"

	"fulfillment-platform/internal/domain"
	"fulfillment-platform/internal/logx"
	"fulfillment-platform/internal/ports/sagatx"
)

// resolve waits until the saga is due, asks the order service and settles the saga.
// A failed check moves the due time by RetryInterval and frees the worker; the
// recovery sweep resubmits it. Past the deadline the saga is compensated.
// Returning early on ctx leaves the saga pending for the next recovery sweep.
func (c *Coordinator) resolve(ctx context.Context, s domain.Saga) {
	log := c.logger.With(
		logx.String("saga_id", s.ID.String()),
		logx.String("order_id", s.OrderID),
		logx.String("kind", string(s.Kind)),
	)

	if !c.sleep(ctx, s.DueAt.Sub(c.now())) {
		return
	}

	confirmed, err := c.check(ctx, s)
	if err == nil {
		c.settle(ctx, s, confirmed, log)
		return
	}
	if ctx.Err() != nil {
		return
	}
	c.countCheckError(s.Kind)

	if !c.now().Before(s.Deadline) {
		log.Warn("order check failing past deadline, compensating",
			logx.String("event", "saga_deadline_exceeded"),
			logx.Err(err),
		)
		c.settle(ctx, s, false, log)
		return
	}

	if aerr := c.sagas.RecordAttempt(ctx, s.ID, c.now().Add(c.opts.RetryInterval)); aerr != nil {
		log.Warn("record saga attempt", logx.Err(aerr))
	}
	log.Warn("order check failed, will retry",
		logx.String("event", "saga_check_failed"),
		logx.Duration("retry_in", c.opts.RetryInterval),
		logx.Err(err),
	)
}

// check reports whether the order reached the state that keeps the saga's effect.
func (c *Coordinator) check(ctx context.Context, s domain.Saga) (bool, error) {
	switch s.Kind {
	case domain.SagaReservation:
		return c.orders.IsOrderPersisted(ctx, s.OrderID)
	case domain.SagaRestock:
		return c.orders.IsOrderCanceled(ctx, s.OrderID)
	default:
		return false, fmt.Errorf("unknown saga kind %q", s.Kind)
	}
}

// settle confirms or compensates s in one transaction. A saga that is no longer
// pending is left alone, so each saga is resolved at most once.
func (c *Coordinator) settle(ctx context.Context, s domain.Saga, confirmed bool, log logx.Logger) {
	state := domain.SagaConfirmed
	if !confirmed {
		state = domain.SagaCompensated
	}

	applied := false
	err := c.sagas.WithTx(ctx, func(tx sagatx.Repository) error {
		applied = false
		cur, err := tx.GetForUpdate(ctx, s.ID)
		if err != nil {
			return err
		}
		if cur == nil || cur.State != domain.SagaPending {
			return nil
		}
		if !confirmed {
			if err := c.compensate(ctx, tx, *cur, log); err != nil {
				return err
			}
		}
		if err := tx.SetState(ctx, s.ID, state, c.now()); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		log.Error("saga resolution failed",
			logx.String("event", "saga_resolve_failed"),
			logx.String("state", string(state)),
			logx.Err(err),
		)
		return
	}
	if !applied {
		log.Debug("saga already resolved", logx.String("event", "saga_already_resolved"))
		return
	}

	c.countResolved(s.Kind, state)
	log.Info("saga resolved",
		logx.String("event", "saga_resolved"),
		logx.String("state", string(state)),
	)
}

// compensate undoes the saga's stock effect. Reservations are released; restocks are
// debited only where quantity allows it, and the rest are skipped.
func (c *Coordinator) compensate(ctx context.Context, tx sagatx.Repository, s domain.Saga, log logx.Logger) error {
	for _, ln := range s.Lines {
		switch s.Kind {
		case domain.SagaReservation:
			found, err := tx.ReleaseStock(ctx, ln.ProductID, ln.Quantity)
			if err != nil {
				return err
			}
			if !found {
				log.Debug("release skipped, product is gone", logx.Int64("product_id", ln.ProductID))
			}
		case domain.SagaRestock:
			ok, err := tx.DebitStock(ctx, ln.ProductID, ln.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				log.Warn("re-debit skipped, not enough stock",
					logx.String("event", "saga_redebit_skipped"),
					logx.Int64("product_id", ln.ProductID),
					logx.Int("quantity", ln.Quantity),
				)
			}
		}
	}
	return nil
}

func (c *Coordinator) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
