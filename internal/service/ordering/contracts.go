package ordering

import (
	"context"
	"time"

	"fulfillment-platform/internal/domain"
)

// Repository is the order persistence.
type Repository interface {
	Create(ctx context.Context, o *domain.Order) error
	Get(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, now time.Time) (bool, error)
}

// Inventory is the inventory service as seen by the order ledger.
type Inventory interface {
	BuyProducts(ctx context.Context, orderID string, lines []domain.LineRequest) (domain.BuyResult, error)
	RollbackProducts(ctx context.Context, lines []domain.LineRequest) (domain.RollbackResult, error)
	RestockProducts(ctx context.Context, orderID string, lines []domain.LineRequest) (domain.RestockResult, error)
}

// Deliveries requests delivery creation and cancellation.
type Deliveries interface {
	CreateDelivery(ctx context.Context, orderID string, userID int64) error
	CancelDelivery(ctx context.Context, orderID string) error
}
