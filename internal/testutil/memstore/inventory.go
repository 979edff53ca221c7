// Package memstore holds in-memory stand-ins for the pgx and redis
// repositories, used by service tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"fulfillment-platform/internal/apperr"
	"fulfillment-platform/internal/domain"
	"fulfillment-platform/internal/ports/sagatx"
)

// Inventory keeps products and sagas behind one lock, like rows of one database.
type Inventory struct {
	mu       sync.Mutex
	nextID   int64
	products map[int64]*domain.Product
	sagas    map[uuid.UUID]*domain.Saga
	minQty   map[int64]int

	// FailCreateSaga makes Create return this error.
	FailCreateSaga error
}

// NewInventory returns an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{
		products: map[int64]*domain.Product{},
		sagas:    map[uuid.UUID]*domain.Saga{},
		minQty:   map[int64]int{},
	}
}

// Seed inserts an active product with the given quantity and returns its id.
func (m *Inventory) Seed(qty int) int64 {
	id, _ := m.Create(context.Background(), &domain.Product{Name: "seed", Quantity: qty, Active: true})
	return id
}

// Quantity returns the current quantity, -1 if the product is absent.
func (m *Inventory) Quantity(id int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return -1
	}
	return p.Quantity
}

// MinQuantity returns the lowest quantity the product ever had.
func (m *Inventory) MinQuantity(id int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.minQty[id]
}

// Delete drops a product row.
func (m *Inventory) Delete(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, id)
}

// Get returns a copy of the product, nil if absent.
func (m *Inventory) Get(_ context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// List returns products ordered by id.
func (m *Inventory) List(_ context.Context, limit, offset *int) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset != nil {
		if *offset >= len(out) {
			return nil, nil
		}
		out = out[*offset:]
	}
	if limit != nil && *limit < len(out) {
		out = out[:*limit]
	}
	return out, nil
}

// Create stores a product and assigns its id.
func (m *Inventory) Create(_ context.Context, p *domain.Product) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	cp := *p
	cp.ID = m.nextID
	m.products[cp.ID] = &cp
	m.minQty[cp.ID] = cp.Quantity
	return cp.ID, nil
}

// Reserve decrements quantity if enough is available.
func (m *Inventory) Reserve(_ context.Context, id int64, qty int) (domain.ReservedLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok || !p.Active {
		return domain.ReservedLine{}, fmt.Errorf("product %d: %w", id, apperr.ErrNotFound)
	}
	if p.Quantity < qty {
		return domain.ReservedLine{}, fmt.Errorf("product %d: %w", id, apperr.ErrInsufficientStock)
	}
	m.setQty(p, p.Quantity-qty)
	return domain.ReservedLine{ProductID: id, Quantity: qty, UnitPrice: p.UnitPrice}, nil
}

// Release increments quantity; false means the product is absent.
func (m *Inventory) Release(_ context.Context, id int64, qty int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.release(id, qty), nil
}

func (m *Inventory) release(id int64, qty int) bool {
	p, ok := m.products[id]
	if !ok {
		return false
	}
	m.setQty(p, p.Quantity+qty)
	return true
}

func (m *Inventory) debit(id int64, qty int) bool {
	p, ok := m.products[id]
	if !ok || p.Quantity < qty {
		return false
	}
	m.setQty(p, p.Quantity-qty)
	return true
}

func (m *Inventory) setQty(p *domain.Product, qty int) {
	p.Quantity = qty
	if qty < m.minQty[p.ID] {
		m.minQty[p.ID] = qty
	}
}

// Saga returns a copy of the saga, nil if absent.
func (m *Inventory) Saga(id uuid.UUID) *domain.Saga {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sagas[id]
	if !ok {
		return nil
	}
	cp := copySaga(s)
	return &cp
}

// Sagas returns copies of all sagas for the order.
func (m *Inventory) Sagas(orderID string) []domain.Saga {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Saga
	for _, s := range m.sagas {
		if s.OrderID == orderID {
			out = append(out, copySaga(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// SagaLog is the saga repository view of an Inventory.
type SagaLog struct{ m *Inventory }

// SagaLog returns the saga repository view sharing the inventory's rows.
func (m *Inventory) SagaLog() *SagaLog { return &SagaLog{m: m} }

// Create persists a saga.
func (l *SagaLog) Create(_ context.Context, s *domain.Saga) error {
	m := l.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCreateSaga != nil {
		return m.FailCreateSaga
	}
	cp := copySaga(s)
	m.sagas[s.ID] = &cp
	return nil
}

// ListPending returns pending sagas due before dueBefore, earliest first.
func (l *SagaLog) ListPending(_ context.Context, dueBefore time.Time, limit int) ([]domain.Saga, error) {
	m := l.m
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Saga
	for _, s := range m.sagas {
		if s.State == domain.SagaPending && !s.DueAt.After(dueBefore) {
			out = append(out, copySaga(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueAt.Before(out[j].DueAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// RecordAttempt bumps the attempt counter and moves the due time.
func (l *SagaLog) RecordAttempt(_ context.Context, id uuid.UUID, nextDue time.Time) error {
	m := l.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sagas[id]; ok && s.State == domain.SagaPending {
		s.Attempts++
		s.DueAt = nextDue
	}
	return nil
}

// WithTx runs fn under the store lock and restores the previous state if fn fails.
func (l *SagaLog) WithTx(_ context.Context, fn func(tx sagatx.Repository) error) error {
	m := l.m
	m.mu.Lock()
	defer m.mu.Unlock()

	qty := make(map[int64]int, len(m.products))
	for id, p := range m.products {
		qty[id] = p.Quantity
	}
	states := make(map[uuid.UUID]domain.SagaState, len(m.sagas))
	for id, s := range m.sagas {
		states[id] = s.State
	}

	if err := fn(inventoryTx{m: m}); err != nil {
		for id, q := range qty {
			if p, ok := m.products[id]; ok {
				p.Quantity = q
			}
		}
		for id, st := range states {
			m.sagas[id].State = st
		}
		return err
	}
	return nil
}

type inventoryTx struct{ m *Inventory }

func (t inventoryTx) GetForUpdate(_ context.Context, id uuid.UUID) (*domain.Saga, error) {
	s, ok := t.m.sagas[id]
	if !ok {
		return nil, nil
	}
	cp := copySaga(s)
	return &cp, nil
}

func (t inventoryTx) ReleaseStock(_ context.Context, productID int64, qty int) (bool, error) {
	return t.m.release(productID, qty), nil
}

func (t inventoryTx) DebitStock(_ context.Context, productID int64, qty int) (bool, error) {
	return t.m.debit(productID, qty), nil
}

func (t inventoryTx) SetState(_ context.Context, id uuid.UUID, state domain.SagaState, now time.Time) error {
	s, ok := t.m.sagas[id]
	if !ok {
		return apperr.ErrNotFound
	}
	s.State = state
	s.UpdatedAt = now
	return nil
}

func copySaga(s *domain.Saga) domain.Saga {
	cp := *s
	cp.Lines = append([]domain.SagaLine(nil), s.Lines...)
	return cp
}
