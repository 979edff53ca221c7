package saga

import (
	"context"
	"fmt"

	"fulfillment-platform/internal/domain"
	"fulfillment-platform/internal/logx"
)

// RestockProducts returns every line to stock, continuing past failed lines.
// The restocked lines are guarded by a restock saga: if the order turns out not to
// be canceled, they are debited again.
func (c *Coordinator) RestockProducts(ctx context.Context, orderID string, lines []domain.LineRequest) (domain.RestockResult, error) {
	orderID, err := validateRequest(orderID, lines)
	if err != nil {
		return domain.RestockResult{}, err
	}

	var (
		restocked []domain.SagaLine
		failed    []int64
	)
	for _, ln := range lines {
		ok, err := c.ledger.Restock(ctx, ln.ProductID, ln.Quantity)
		if err != nil || !ok {
			c.logger.Warn("restock line failed",
				logx.String("event", "stock_restock_failed"),
				logx.String("order_id", orderID),
				logx.Int64("product_id", ln.ProductID),
				logx.Bool("found", ok),
				logx.Any("err", err),
			)
			failed = append(failed, ln.ProductID)
			continue
		}
		restocked = append(restocked, domain.SagaLine{ProductID: ln.ProductID, Quantity: ln.Quantity})
	}

	if len(restocked) > 0 {
		s := c.newSaga(domain.SagaRestock, orderID, restocked)
		if err := c.sagas.Create(ctx, s); err != nil {
			c.debitLines(context.WithoutCancel(ctx), orderID, restocked)
			return domain.RestockResult{}, fmt.Errorf("persist restock saga: %w", err)
		}
		c.submit(*s)
	}

	return domain.RestockResult{Success: len(failed) == 0, Failed: failed}, nil
}

func (c *Coordinator) debitLines(ctx context.Context, orderID string, lines []domain.SagaLine) {
	for _, ln := range lines {
		if _, err := c.ledger.Reserve(ctx, ln.ProductID, ln.Quantity); err != nil {
			c.logger.Error("re-debit after failed saga persist",
				logx.String("event", "stock_redebit_failed"),
				logx.String("order_id", orderID),
				logx.Int64("product_id", ln.ProductID),
				logx.Err(err),
			)
		}
	}
}
