package handlers

import (
	"context"

	"fulfillment-platform/internal/domain"
)

type coordinatorUsecase interface {
	BuyProducts(ctx context.Context, orderID string, lines []domain.LineRequest) (domain.BuyResult, error)
	Rollback(ctx context.Context, lines []domain.LineRequest) (domain.RollbackResult, error)
	RestockProducts(ctx context.Context, orderID string, lines []domain.LineRequest) (domain.RestockResult, error)
}

type stockUsecase interface {
	Decrease(ctx context.Context, productID int64, qty int) error
	Restock(ctx context.Context, productID int64, qty int) (bool, error)
	Product(ctx context.Context, id int64) (*domain.Product, error)
	Products(ctx context.Context, limit, offset *int) ([]domain.Product, error)
	CreateProduct(ctx context.Context, p domain.Product) (int64, error)
}

type orderUsecase interface {
	Create(ctx context.Context, in domain.NewOrder) (*domain.Order, error)
	Cancel(ctx context.Context, id string) (*domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	IsPersisted(ctx context.Context, id string) (bool, error)
	IsCanceled(ctx context.Context, id string) (bool, error)
}

type deliveryUsecase interface {
	Create(ctx context.Context, orderID string, userID int64) (*domain.Delivery, bool, error)
	Cancel(ctx context.Context, orderID string) (*domain.Delivery, error)
	Get(ctx context.Context, id int64) (*domain.Delivery, error)
	SoftDelete(ctx context.Context, id int64) (*domain.Delivery, error)
	Restore(ctx context.Context, id int64) (*domain.Delivery, error)
}
