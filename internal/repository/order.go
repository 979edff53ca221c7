package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fulfillment-platform/internal/apperr"
	"fulfillment-platform/internal/domain"
)

// OrderRepo represents the order ledger repository.
type OrderRepo struct{ db *pgxpool.Pool }

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(db *pgxpool.Pool) *OrderRepo { return &OrderRepo{db: db} }

// Create inserts the order and its lines in one transaction.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
            INSERT INTO orders (id, user_id, address, status, total_price, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $6)
        `, o.ID, o.UserID, o.Address, string(o.Status), o.TotalPrice(), o.CreatedAt)
		if err != nil {
			if IsDuplicate(err) {
				return apperr.ErrConflict
			}
			return fmt.Errorf("insert order %s: %w", o.ID, err)
		}

		batch := &pgx.Batch{}
		for i, l := range o.Lines {
			batch.Queue(`
                INSERT INTO order_lines (order_id, position, product_id, quantity, unit_price)
                VALUES ($1, $2, $3, $4, $5)
            `, o.ID, i, l.ProductID, l.Quantity, l.UnitPrice)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert order %s lines: %w", o.ID, err)
		}
		return nil
	})
}

// Get - returns order with its lines, nil if absent.
func (r *OrderRepo) Get(ctx context.Context, id string) (*domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	err := r.db.QueryRow(ctx, `
        SELECT id, user_id, address, status, created_at FROM orders WHERE id = $1
    `, id).Scan(&o.ID, &o.UserID, &o.Address, &status, &o.CreatedAt)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	o.Status = domain.OrderStatus(status)

	rows, err := r.db.Query(ctx, `
        SELECT product_id, quantity, unit_price FROM order_lines WHERE order_id = $1 ORDER BY position
    `, id)
	if err != nil {
		return nil, fmt.Errorf("get order %s lines: %w", id, err)
	}
	o.Lines, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.OrderLine, error) {
		var l domain.OrderLine
		err := row.Scan(&l.ProductID, &l.Quantity, &l.UnitPrice)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("get order %s lines: %w", id, err)
	}
	return &o, nil
}

// UpdateStatus sets the order status and reports whether the order exists.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, now time.Time) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1
    `, id, string(status), now)
	if err != nil {
		return false, fmt.Errorf("update order %s status: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}
