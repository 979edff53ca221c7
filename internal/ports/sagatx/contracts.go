package sagatx

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fulfillment-platform/internal/domain"
)

// Repository is the set of operations a saga resolution performs in one transaction.
type Repository interface {
	// GetForUpdate locks the saga row; nil means the saga does not exist.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Saga, error)
	// ReleaseStock increments quantity; false means the product row is gone.
	ReleaseStock(ctx context.Context, productID int64, qty int) (bool, error)
	// DebitStock decrements quantity only if it stays non-negative; false means it was not applied.
	DebitStock(ctx context.Context, productID int64, qty int) (bool, error)
	SetState(ctx context.Context, id uuid.UUID, state domain.SagaState, now time.Time) error
}

// Runner is a transaction runner
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
