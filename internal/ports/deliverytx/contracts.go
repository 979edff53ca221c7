package deliverytx

import (
	"context"

	"fulfillment-platform/internal/domain"
)

// Repository is the set of operations a scheduler batch performs in one transaction.
type Repository interface {
	// ListForAdvance locks up to limit active deliveries in status, oldest first.
	ListForAdvance(ctx context.Context, status domain.DeliveryStatus, limit int) ([]domain.Delivery, error)
	UpdateStatus(ctx context.Context, d *domain.Delivery) error
}

// Runner is a transaction runner
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
