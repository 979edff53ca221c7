package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fulfillment-platform/internal/domain"
	"fulfillment-platform/internal/ports/sagatx"
)

// SagaRepo persists the saga log next to the stock ledger.
type SagaRepo struct {
	db *pgxpool.Pool
}

// NewSagaRepo creates a new SagaRepo.
func NewSagaRepo(db *pgxpool.Pool) *SagaRepo {
	return &SagaRepo{db: db}
}

// Create inserts the saga with its lines.
func (r *SagaRepo) Create(ctx context.Context, s *domain.Saga) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
            INSERT INTO sagas (id, kind, order_id, state, due_at, deadline, attempts, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
        `, s.ID, string(s.Kind), s.OrderID, string(s.State), s.DueAt, s.Deadline, s.Attempts, s.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert saga %s: %w", s.ID, err)
		}

		batch := &pgx.Batch{}
		for i, l := range s.Lines {
			batch.Queue(`INSERT INTO saga_lines (saga_id, position, product_id, quantity) VALUES ($1, $2, $3, $4)`,
				s.ID, i, l.ProductID, l.Quantity)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert saga %s lines: %w", s.ID, err)
		}
		return nil
	})
}

// ListPending returns up to limit pending sagas due at or before dueBefore, earliest first.
func (r *SagaRepo) ListPending(ctx context.Context, dueBefore time.Time, limit int) ([]domain.Saga, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, kind, order_id, state, due_at, deadline, attempts, created_at, updated_at
        FROM sagas
        WHERE state = $1 AND due_at <= $2
        ORDER BY due_at, id
        LIMIT $3
    `, string(domain.SagaPending), dueBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending sagas: %w", err)
	}
	sagas, err := pgx.CollectRows(rows, scanSaga)
	if err != nil {
		return nil, fmt.Errorf("list pending sagas: %w", err)
	}
	if len(sagas) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(sagas))
	byID := make(map[uuid.UUID]*domain.Saga, len(sagas))
	for i := range sagas {
		ids = append(ids, sagas[i].ID.String())
		byID[sagas[i].ID] = &sagas[i]
	}

	lineRows, err := r.db.Query(ctx, `
        SELECT saga_id, product_id, quantity
        FROM saga_lines
        WHERE saga_id = ANY($1::uuid[])
        ORDER BY saga_id, position
    `, ids)
	if err != nil {
		return nil, fmt.Errorf("list saga lines: %w", err)
	}
	defer lineRows.Close()
	for lineRows.Next() {
		var (
			id uuid.UUID
			l  domain.SagaLine
		)
		if err := lineRows.Scan(&id, &l.ProductID, &l.Quantity); err != nil {
			return nil, err
		}
		if s, ok := byID[id]; ok {
			s.Lines = append(s.Lines, l)
		}
	}
	return sagas, lineRows.Err()
}

// RecordAttempt bumps the confirmation attempt counter and moves the saga's due time.
func (r *SagaRepo) RecordAttempt(ctx context.Context, id uuid.UUID, nextDue time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE sagas SET attempts = attempts + 1, due_at = $2, updated_at = now()
		WHERE id = $1 AND state = 'pending'`, id, nextDue)
	if err != nil {
		return fmt.Errorf("record saga %s attempt: %w", id, err)
	}
	return nil
}

// WithTx opens a transaction and executes fn within it.
func (r *SagaRepo) WithTx(ctx context.Context, fn func(tx sagatx.Repository) error) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&SagaTx{tx: tx})
	})
}

// SagaTx represents saga transaction repository.
type SagaTx struct {
	tx pgx.Tx
}

// GetForUpdate - locks the saga row and loads its lines.
func (r *SagaTx) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Saga, error) {
	rows, err := r.tx.Query(ctx, `
        SELECT id, kind, order_id, state, due_at, deadline, attempts, created_at, updated_at
        FROM sagas
        WHERE id = $1
        FOR UPDATE
    `, id)
	if err != nil {
		return nil, fmt.Errorf("lock saga %s: %w", id, err)
	}
	s, err := pgx.CollectExactlyOneRow(rows, scanSaga)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock saga %s: %w", id, err)
	}

	lineRows, err := r.tx.Query(ctx,
		`SELECT product_id, quantity FROM saga_lines WHERE saga_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("saga %s lines: %w", id, err)
	}
	s.Lines, err = pgx.CollectRows(lineRows, func(row pgx.CollectableRow) (domain.SagaLine, error) {
		var l domain.SagaLine
		err := row.Scan(&l.ProductID, &l.Quantity)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("saga %s lines: %w", id, err)
	}
	return &s, nil
}

// ReleaseStock - increments product quantity.
func (r *SagaTx) ReleaseStock(ctx context.Context, productID int64, qty int) (bool, error) {
	ct, err := r.tx.Exec(ctx, `
        UPDATE products SET quantity = quantity + $2, updated_at = now() WHERE id = $1
    `, productID, qty)
	if err != nil {
		return false, fmt.Errorf("release product %d: %w", productID, err)
	}
	return ct.RowsAffected() > 0, nil
}

// DebitStock - decrements product quantity if enough is left.
func (r *SagaTx) DebitStock(ctx context.Context, productID int64, qty int) (bool, error) {
	ct, err := r.tx.Exec(ctx, `
        UPDATE products SET quantity = quantity - $2, updated_at = now()
        WHERE id = $1 AND quantity >= $2
    `, productID, qty)
	if err != nil {
		return false, fmt.Errorf("debit product %d: %w", productID, err)
	}
	return ct.RowsAffected() > 0, nil
}

// SetState - updates saga state.
func (r *SagaTx) SetState(ctx context.Context, id uuid.UUID, state domain.SagaState, now time.Time) error {
	ct, err := r.tx.Exec(ctx, `UPDATE sagas SET state = $2, updated_at = $3 WHERE id = $1`, id, string(state), now)
	if err != nil {
		return fmt.Errorf("set saga %s state: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("saga %s not found", id)
	}
	return nil
}

func scanSaga(row pgx.CollectableRow) (domain.Saga, error) {
	var (
		s           domain.Saga
		kind, state string
	)
	err := row.Scan(&s.ID, &kind, &s.OrderID, &state, &s.DueAt, &s.Deadline, &s.Attempts, &s.CreatedAt, &s.UpdatedAt)
	s.Kind = domain.SagaKind(kind)
	s.State = domain.SagaState(state)
	return s, err
}
