package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"fulfillment-platform/internal/apperr"
	"fulfillment-platform/internal/domain"
)

// StockRepo represents the stock ledger repository.
type StockRepo struct{ db *pgxpool.Pool }

// NewStockRepo creates a new StockRepo.
func NewStockRepo(db *pgxpool.Pool) *StockRepo { return &StockRepo{db: db} }

// Get - returns product by its ID, nil if absent.
func (r *StockRepo) Get(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.QueryRow(ctx,
		`SELECT id, name, quantity, unit_price, active FROM products WHERE id=$1`, id,
	).Scan(&p.ID, &p.Name, &p.Quantity, &p.UnitPrice, &p.Active)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &p, nil
}

// List returns products ordered by id. If limit/offset are nil, returns the full list.
func (r *StockRepo) List(ctx context.Context, limit, offset *int) ([]domain.Product, error) {
	q := `SELECT id, name, quantity, unit_price, active FROM products ORDER BY id`
	args := make([]any, 0, 2)
	if limit != nil {
		q += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, *limit)
	}
	if offset != nil {
		q += fmt.Sprintf(" OFFSET $%d", len(args)+1)
		args = append(args, *offset)
	}

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Quantity, &p.UnitPrice, &p.Active); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Create - creates a new product.
func (r *StockRepo) Create(ctx context.Context, p *domain.Product) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO products(name, quantity, unit_price, active) VALUES($1,$2,$3,$4) RETURNING id`,
		p.Name, p.Quantity, p.UnitPrice, p.Active).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create product: %w", err)
	}
	return id, nil
}

// Reserve atomically decrements quantity of an active product.
// The guard lives in the WHERE clause so concurrent reservations serialize on the row.
func (r *StockRepo) Reserve(ctx context.Context, id int64, qty int) (domain.ReservedLine, error) {
	var price decimal.Decimal
	err := r.db.QueryRow(ctx, `
        UPDATE products
        SET quantity = quantity - $2, updated_at = now()
        WHERE id = $1 AND active AND quantity >= $2
        RETURNING unit_price
    `, id, qty).Scan(&price)
	if err == nil {
		return domain.ReservedLine{ProductID: id, Quantity: qty, UnitPrice: price}, nil
	}
	if !IsNotFound(err) {
		return domain.ReservedLine{}, fmt.Errorf("reserve product %d: %w", id, err)
	}

	p, err := r.Get(ctx, id)
	if err != nil {
		return domain.ReservedLine{}, err
	}
	if p == nil || !p.Active {
		return domain.ReservedLine{}, fmt.Errorf("product %d: %w", id, apperr.ErrNotFound)
	}
	return domain.ReservedLine{}, fmt.Errorf("product %d: want %d, have %d: %w",
		id, qty, p.Quantity, apperr.ErrInsufficientStock)
}

// Release increments quantity; false means the product row does not exist.
func (r *StockRepo) Release(ctx context.Context, id int64, qty int) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE products
        SET quantity = quantity + $2, updated_at = now()
        WHERE id = $1
    `, id, qty)
	if err != nil {
		return false, fmt.Errorf("release product %d: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}
