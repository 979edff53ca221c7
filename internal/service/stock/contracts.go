package stock

import (
	"context"

	"fulfillment-platform/internal/domain"
)

// Store is the persistence behind the ledger.
type Store interface {
	Get(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, limit, offset *int) ([]domain.Product, error)
	Create(ctx context.Context, p *domain.Product) (int64, error)
	// Reserve decrements quantity atomically, failing with ErrNotFound or ErrInsufficientStock.
	Reserve(ctx context.Context, id int64, qty int) (domain.ReservedLine, error)
	// Release increments quantity; false means the product is absent.
	Release(ctx context.Context, id int64, qty int) (bool, error)
}
