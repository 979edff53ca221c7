//go:generate mockgen -destination=mocks_test.go -package=saga_test fulfillment-platform/internal/service/saga OrderChecker

package saga

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fulfillment-platform/internal/domain"
	"fulfillment-platform/internal/ports/sagatx"
)

// Ledger is the stock ledger the coordinators mutate.
type Ledger interface {
	Reserve(ctx context.Context, productID int64, qty int) (domain.ReservedLine, error)
	Release(ctx context.Context, productID int64, qty int) error
	Restock(ctx context.Context, productID int64, qty int) (bool, error)
}

// Log is the durable saga record.
type Log interface {
	Create(ctx context.Context, s *domain.Saga) error
	ListPending(ctx context.Context, dueBefore time.Time, limit int) ([]domain.Saga, error)
	RecordAttempt(ctx context.Context, id uuid.UUID, nextDue time.Time) error
	sagatx.Runner
}

// OrderChecker asks the order owner about the durable state of an order.
type OrderChecker interface {
	IsOrderPersisted(ctx context.Context, orderID string) (bool, error)
	IsOrderCanceled(ctx context.Context, orderID string) (bool, error)
}
