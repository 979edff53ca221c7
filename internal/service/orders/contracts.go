//go:generate mockgen -destination=mocks_test.go -package=orders_test fulfillment-platform/internal/service/orders DeliveryPort

package orders

import (
	"context"

	"fulfillment-platform/internal/domain"
)

// DeliveryPort abstracts the subset of delivery service operations
// needed by orders Processor when handling order events
type DeliveryPort interface {
	Create(ctx context.Context, orderID string, userID int64) (*domain.Delivery, bool, error)
	Cancel(ctx context.Context, orderID string) (*domain.Delivery, error)
}
