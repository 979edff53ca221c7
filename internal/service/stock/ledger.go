// Package stock implements the stock ledger: per-product available quantity
// with atomic reserve and release primitives.
package stock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fulfillment-platform/internal/apperr"
	"fulfillment-platform/internal/domain"
	"fulfillment-platform/internal/logx"
)

// Ledger owns product quantities.
type Ledger struct {
	store            Store
	operationTimeout time.Duration
	logger           logx.Logger
}

// NewLedger creates a new Ledger.
func NewLedger(store Store, timeout time.Duration, logger logx.Logger) *Ledger {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Ledger{store: store, operationTimeout: timeout, logger: logger}
}

func (l *Ledger) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, l.operationTimeout)
}

// Reserve decrements qty units of an active product and returns a pricing snapshot.
// A reservation that would drive quantity negative is rejected and changes nothing.
func (l *Ledger) Reserve(ctx context.Context, productID int64, qty int) (domain.ReservedLine, error) {
	if err := validateLine(productID, qty); err != nil {
		return domain.ReservedLine{}, err
	}
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()
	return l.store.Reserve(ctx, productID, qty)
}

// Release returns qty units; a missing product is a silent no-op.
func (l *Ledger) Release(ctx context.Context, productID int64, qty int) error {
	if err := validateLine(productID, qty); err != nil {
		return err
	}
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	found, err := l.store.Release(ctx, productID, qty)
	if err != nil {
		return err
	}
	if !found {
		l.logger.Debug("release skipped, product is gone",
			logx.String("event", "stock_release_skipped"),
			logx.Int64("product_id", productID),
			logx.Int("quantity", qty),
		)
	}
	return nil
}

// Restock returns qty units and reports false when the product does not exist.
func (l *Ledger) Restock(ctx context.Context, productID int64, qty int) (bool, error) {
	if err := validateLine(productID, qty); err != nil {
		return false, err
	}
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()
	return l.store.Release(ctx, productID, qty)
}

// Decrease is a plain decrement outside the buy flow; no saga guards it.
func (l *Ledger) Decrease(ctx context.Context, productID int64, qty int) error {
	_, err := l.Reserve(ctx, productID, qty)
	return err
}

// Product returns a product or ErrNotFound.
func (l *Ledger) Product(ctx context.Context, id int64) (*domain.Product, error) {
	if id <= 0 {
		return nil, apperr.ErrInvalid
	}
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	p, err := l.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.ErrNotFound
	}
	return p, nil
}

// Products lists products with optional pagination.
func (l *Ledger) Products(ctx context.Context, limit, offset *int) ([]domain.Product, error) {
	if (limit != nil && *limit <= 0) || (offset != nil && *offset < 0) {
		return nil, apperr.ErrInvalid
	}
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()
	return l.store.List(ctx, limit, offset)
}

// CreateProduct validates and stores a new product.
func (l *Ledger) CreateProduct(ctx context.Context, p domain.Product) (int64, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" || p.Quantity < 0 || p.UnitPrice.IsNegative() {
		return 0, apperr.ErrInvalid
	}
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	id, err := l.store.Create(ctx, &p)
	if err != nil {
		return 0, err
	}
	l.logger.Info("product created",
		logx.String("event", "product_created"),
		logx.Int64("product_id", id),
		logx.Int("quantity", p.Quantity),
	)
	return id, nil
}

func validateLine(productID int64, qty int) error {
	if productID <= 0 || qty <= 0 {
		return fmt.Errorf("product %d, quantity %d: %w", productID, qty, apperr.ErrInvalid)
	}
	return nil
}
