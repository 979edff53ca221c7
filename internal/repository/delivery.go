package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fulfillment-platform/internal/apperr"
	"fulfillment-platform/internal/domain"
	"fulfillment-platform/internal/ports/deliverytx"
)

const deliveryColumns = `id, order_id, user_id, status, eta, active, processed_at, created_at, updated_at`

// DeliveryRepo represents delivery repository.
type DeliveryRepo struct {
	db *pgxpool.Pool
}

// NewDeliveryRepo creates a new DeliveryRepo.
func NewDeliveryRepo(db *pgxpool.Pool) *DeliveryRepo {
	return &DeliveryRepo{db: db}
}

// WithTx opens a transaction and executes fn within it.
func (r *DeliveryRepo) WithTx(ctx context.Context, fn func(tx deliverytx.Repository) error) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&DeliveryTx{tx: tx})
	})
}

// Insert - inserts a new delivery; a second delivery for the same order is a conflict.
func (r *DeliveryRepo) Insert(ctx context.Context, d *domain.Delivery) error {
	err := r.db.QueryRow(ctx, `
        INSERT INTO deliveries (order_id, user_id, status, eta, active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `, d.OrderID, d.UserID, string(d.Status), d.ETA, d.Active, d.CreatedAt, d.UpdatedAt).Scan(&d.ID)
	if err != nil {
		if IsDuplicate(err) {
			return apperr.ErrConflict
		}
		return fmt.Errorf("insert delivery: %w", err)
	}
	return nil
}

// GetByID - get delivery by ID, nil if absent.
func (r *DeliveryRepo) GetByID(ctx context.Context, id int64) (*domain.Delivery, error) {
	return r.getOne(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE id = $1`, id)
}

// GetByOrderID - get delivery by order ID, nil if absent.
func (r *DeliveryRepo) GetByOrderID(ctx context.Context, orderID string) (*domain.Delivery, error) {
	return r.getOne(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE order_id = $1`, orderID)
}

func (r *DeliveryRepo) getOne(ctx context.Context, q string, arg any) (*domain.Delivery, error) {
	rows, err := r.db.Query(ctx, q, arg)
	if err != nil {
		return nil, fmt.Errorf("get delivery: %w", err)
	}
	d, err := pgx.CollectExactlyOneRow(rows, scanDelivery)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery: %w", err)
	}
	return &d, nil
}

// CountPending - number of active deliveries still waiting to be processed.
func (r *DeliveryRepo) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
        SELECT COUNT(*) FROM deliveries WHERE active AND status = $1
    `, string(domain.DeliveryPending)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pending deliveries: %w", err)
	}
	return n, nil
}

// CountProcessedSince - number of deliveries that left pending at or after since.
func (r *DeliveryRepo) CountProcessedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
        SELECT COUNT(*) FROM deliveries WHERE processed_at >= $1
    `, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count processed deliveries: %w", err)
	}
	return n, nil
}

// SetActive - soft-deletes or restores a delivery; false if it does not exist.
func (r *DeliveryRepo) SetActive(ctx context.Context, id int64, active bool, now time.Time) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE deliveries SET active = $2, updated_at = $3 WHERE id = $1
    `, id, active, now)
	if err != nil {
		return false, fmt.Errorf("set delivery %d active=%t: %w", id, active, err)
	}
	return ct.RowsAffected() > 0, nil
}

// DeliveryTx represents delivery transaction repository.
type DeliveryTx struct {
	tx pgx.Tx
}

// ListForAdvance - locks a batch of active deliveries in status, oldest first.
// SKIP LOCKED lets two scheduler replicas split a batch instead of blocking.
func (r *DeliveryTx) ListForAdvance(ctx context.Context, status domain.DeliveryStatus, limit int) ([]domain.Delivery, error) {
	rows, err := r.tx.Query(ctx, `
        SELECT `+deliveryColumns+`
        FROM deliveries
        WHERE active AND status = $1
        ORDER BY created_at, id
        LIMIT $2
        FOR UPDATE SKIP LOCKED
    `, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("list %s deliveries: %w", status, err)
	}
	out, err := pgx.CollectRows(rows, scanDelivery)
	if err != nil {
		return nil, fmt.Errorf("list %s deliveries: %w", status, err)
	}
	return out, nil
}

// UpdateStatus - persists status, processed_at and updated_at.
func (r *DeliveryTx) UpdateStatus(ctx context.Context, d *domain.Delivery) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE deliveries
        SET status = $2, processed_at = $3, updated_at = $4
        WHERE id = $1
    `, d.ID, string(d.Status), d.ProcessedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update delivery %d status: %w", d.ID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("delivery %d not found", d.ID)
	}
	return nil
}

func scanDelivery(row pgx.CollectableRow) (domain.Delivery, error) {
	var (
		d      domain.Delivery
		status string
	)
	err := row.Scan(&d.ID, &d.OrderID, &d.UserID, &status, &d.ETA, &d.Active, &d.ProcessedAt, &d.CreatedAt, &d.UpdatedAt)
	d.Status = domain.DeliveryStatus(status)
	return d, err
}
