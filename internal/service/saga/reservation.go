package saga

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fulfillment-platform/internal/apperr"
	"fulfillment-platform/internal/domain"
	"fulfillment-platform/internal/logx"
)

// BuyProducts reserves every line in the given order. The first failing line aborts
// the call with Success=false; lines reserved before it are returned, not released,
// and the caller is expected to roll them back.
//
// On success a pending reservation saga is persisted before returning. If the order
// is not known to be persisted once the grace period elapses, the saga releases the stock.
func (c *Coordinator) BuyProducts(ctx context.Context, orderID string, lines []domain.LineRequest) (domain.BuyResult, error) {
	orderID, err := validateRequest(orderID, lines)
	if err != nil {
		return domain.BuyResult{}, err
	}

	reserved := make([]domain.ReservedLine, 0, len(lines))
	for _, ln := range lines {
		r, err := c.ledger.Reserve(ctx, ln.ProductID, ln.Quantity)
		if err != nil {
			if !errors.Is(err, apperr.ErrNotFound) && !errors.Is(err, apperr.ErrInsufficientStock) {
				c.logger.Error("reserve failed",
					logx.String("event", "stock_reserve_failed"),
					logx.String("order_id", orderID),
					logx.Int64("product_id", ln.ProductID),
					logx.Err(err),
				)
			}
			return domain.BuyResult{Success: false, Lines: reserved, Reason: err.Error()}, nil
		}
		reserved = append(reserved, r)
	}

	sagaLines := make([]domain.SagaLine, 0, len(reserved))
	for _, r := range reserved {
		sagaLines = append(sagaLines, domain.SagaLine{ProductID: r.ProductID, Quantity: r.Quantity})
	}

	s := c.newSaga(domain.SagaReservation, orderID, sagaLines)
	if err := c.sagas.Create(ctx, s); err != nil {
		c.releaseLines(context.WithoutCancel(ctx), orderID, sagaLines)
		return domain.BuyResult{}, fmt.Errorf("persist reservation saga: %w", err)
	}
	c.submit(*s)

	c.logger.Info("products reserved",
		logx.String("event", "products_reserved"),
		logx.String("order_id", orderID),
		logx.String("saga_id", s.ID.String()),
		logx.Int("lines", len(reserved)),
	)
	return domain.BuyResult{Success: true, Lines: reserved}, nil
}

// Rollback releases lines on the caller's behalf, best effort across all lines.
func (c *Coordinator) Rollback(ctx context.Context, lines []domain.LineRequest) (domain.RollbackResult, error) {
	if len(lines) == 0 {
		return domain.RollbackResult{}, apperr.ErrInvalid
	}
	var failed []string
	for _, ln := range lines {
		if err := c.ledger.Release(ctx, ln.ProductID, ln.Quantity); err != nil {
			c.logger.Warn("rollback line failed",
				logx.String("event", "stock_rollback_failed"),
				logx.Int64("product_id", ln.ProductID),
				logx.Err(err),
			)
			failed = append(failed, fmt.Sprintf("%d", ln.ProductID))
		}
	}
	if len(failed) > 0 {
		return domain.RollbackResult{
			Success: false,
			Message: "rollback failed for products " + strings.Join(failed, ","),
		}, nil
	}
	return domain.RollbackResult{Success: true, Message: fmt.Sprintf("%d lines released", len(lines))}, nil
}

func (c *Coordinator) releaseLines(ctx context.Context, orderID string, lines []domain.SagaLine) {
	for _, ln := range lines {
		if err := c.ledger.Release(ctx, ln.ProductID, ln.Quantity); err != nil {
			c.logger.Error("release after failed saga persist",
				logx.String("event", "stock_release_failed"),
				logx.String("order_id", orderID),
				logx.Int64("product_id", ln.ProductID),
				logx.Err(err),
			)
		}
	}
}

func validateRequest(orderID string, lines []domain.LineRequest) (string, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" || len(lines) == 0 {
		return "", apperr.ErrInvalid
	}
	for _, ln := range lines {
		if ln.ProductID <= 0 || ln.Quantity <= 0 {
			return "", fmt.Errorf("product %d, quantity %d: %w", ln.ProductID, ln.Quantity, apperr.ErrInvalid)
		}
	}
	return orderID, nil
}
