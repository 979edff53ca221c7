package memstore

import (
	"context"
	"sync"
	"time"

	"fulfillment-platform/internal/apperr"
	"fulfillment-platform/internal/domain"
)

// Orders is an in-memory order repository.
type Orders struct {
	mu   sync.Mutex
	rows map[string]domain.Order
}

// NewOrders returns an empty order repository.
func NewOrders() *Orders {
	return &Orders{rows: map[string]domain.Order{}}
}

// Create stores o; ids are unique.
func (m *Orders) Create(_ context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[o.ID]; ok {
		return apperr.ErrConflict
	}
	cp := *o
	cp.Lines = append([]domain.OrderLine(nil), o.Lines...)
	m.rows[o.ID] = cp
	return nil
}

// Get returns a copy of the order, nil if absent.
func (m *Orders) Get(_ context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	o.Lines = append([]domain.OrderLine(nil), o.Lines...)
	return &o, nil
}

// UpdateStatus sets the status; false means the order is absent.
func (m *Orders) UpdateStatus(_ context.Context, id string, status domain.OrderStatus, _ time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.rows[id]
	if !ok {
		return false, nil
	}
	o.Status = status
	m.rows[id] = o
	return true, nil
}
