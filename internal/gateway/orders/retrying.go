package order

import (
	"context"

	"fulfillment-platform/internal/domain"
	"fulfillment-platform/internal/gateway"
)

type orderGateway interface {
	IsOrderPersisted(ctx context.Context, orderID string) (bool, error)
	IsOrderCanceled(ctx context.Context, orderID string) (bool, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
}

// RetryingGateway retries the orders calls, all of which are idempotent.
type RetryingGateway struct {
	next  orderGateway
	retry *gateway.Retrier
}

// NewRetryingGateway wraps next; it returns nil if next is nil.
func NewRetryingGateway(next orderGateway, retry *gateway.Retrier) *RetryingGateway {
	if next == nil {
		return nil
	}
	return &RetryingGateway{next: next, retry: retry}
}

// IsOrderPersisted implements saga.OrderChecker.
func (g *RetryingGateway) IsOrderPersisted(ctx context.Context, orderID string) (bool, error) {
	var ok bool
	err := g.retry.Do(ctx, "IsOrderPersisted", func(ctx context.Context) error {
		var err error
		ok, err = g.next.IsOrderPersisted(ctx, orderID)
		return err
	})
	return ok, err
}

// IsOrderCanceled implements saga.OrderChecker.
func (g *RetryingGateway) IsOrderCanceled(ctx context.Context, orderID string) (bool, error) {
	var ok bool
	err := g.retry.Do(ctx, "IsOrderCanceled", func(ctx context.Context) error {
		var err error
		ok, err = g.next.IsOrderCanceled(ctx, orderID)
		return err
	})
	return ok, err
}

// UpdateOrderStatus implements delivery.OrderNotifier.
func (g *RetryingGateway) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	return g.retry.Do(ctx, "UpdateOrderStatus", func(ctx context.Context) error {
		return g.next.UpdateOrderStatus(ctx, orderID, status)
	})
}
