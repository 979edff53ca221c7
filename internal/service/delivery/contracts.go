//go:generate mockgen -destination=mocks_test.go -package=delivery_test fulfillment-platform/internal/service/delivery OrderNotifier

package delivery

import (
	"context"
	"time"

	"fulfillment-platform/internal/domain"
	"fulfillment-platform/internal/ports/deliverytx"
)

// Repository is the delivery persistence.
type Repository interface {
	deliverytx.Runner
	Insert(ctx context.Context, d *domain.Delivery) error
	GetByID(ctx context.Context, id int64) (*domain.Delivery, error)
	GetByOrderID(ctx context.Context, orderID string) (*domain.Delivery, error)
	CountPending(ctx context.Context) (int, error)
	CountProcessedSince(ctx context.Context, since time.Time) (int, error)
	SetActive(ctx context.Context, id int64, active bool, now time.Time) (bool, error)
}

// OrderNotifier reports order status changes to the order service.
type OrderNotifier interface {
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
}

// RunStore keeps the last successful run of each checkpoint.
type RunStore interface {
	LastRun(ctx context.Context, checkpoint string) (time.Time, bool, error)
	SetLastRun(ctx context.Context, checkpoint string, at time.Time) error
}
