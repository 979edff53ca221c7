package saga

import (
	"context"
	"fmt"
	"time"

	"fulfillment-platform/internal/logx"
)

// Recover resubmits pending sagas from the log, e.g. after a restart or a full queue.
// It returns the number of sagas handed to the worker pool.
func (c *Coordinator) Recover(ctx context.Context) (int, error) {
	pending, err := c.sagas.ListPending(ctx, c.now().Add(c.opts.GracePeriod), c.opts.RecoveryBatch)
	if err != nil {
		return 0, fmt.Errorf("list pending sagas: %w", err)
	}
	n := 0
	for _, s := range pending {
		if !c.submit(s) {
			break
		}
		n++
	}
	return n, nil
}

func (c *Coordinator) recoverLoop(ctx context.Context) error {
	ticker := time.NewTicker(c.opts.RecoveryInterval)
	defer ticker.Stop()

	for {
		n, err := c.Recover(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			c.logger.Warn("saga recovery sweep failed",
				logx.String("event", "saga_recovery_failed"),
				logx.Err(err),
			)
		case n > 0:
			c.logger.Debug("pending sagas resubmitted",
				logx.String("event", "saga_recovery"),
				logx.Int("count", n),
				logx.Int("inflight", c.queue.Pending()),
			)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
