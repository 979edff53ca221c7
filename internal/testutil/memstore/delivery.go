package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"fulfillment-platform/internal/apperr"
	"fulfillment-platform/internal/domain"
	"fulfillment-platform/internal/ports/deliverytx"
)

// Deliveries is an in-memory delivery repository.
type Deliveries struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*domain.Delivery

	// FailTx makes WithTx return this error without calling fn.
	FailTx error
}

// NewDeliveries returns an empty delivery repository.
func NewDeliveries() *Deliveries {
	return &Deliveries{rows: map[int64]*domain.Delivery{}}
}

// Insert stores d and assigns its id; one delivery per order.
func (m *Deliveries) Insert(_ context.Context, d *domain.Delivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.OrderID == d.OrderID {
			return apperr.ErrConflict
		}
	}
	m.nextID++
	d.ID = m.nextID
	cp := copyDelivery(d)
	m.rows[d.ID] = &cp
	return nil
}

// GetByID returns a copy of the delivery, nil if absent.
func (m *Deliveries) GetByID(_ context.Context, id int64) (*domain.Delivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	cp := copyDelivery(r)
	return &cp, nil
}

// GetByOrderID returns a copy of the order's delivery, nil if absent.
func (m *Deliveries) GetByOrderID(_ context.Context, orderID string) (*domain.Delivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.OrderID == orderID {
			cp := copyDelivery(r)
			return &cp, nil
		}
	}
	return nil, nil
}

// CountPending counts active pending deliveries.
func (m *Deliveries) CountPending(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.rows {
		if r.Active && r.Status == domain.DeliveryPending {
			n++
		}
	}
	return n, nil
}

// CountProcessedSince counts deliveries that entered processing at or after since.
func (m *Deliveries) CountProcessedSince(_ context.Context, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.rows {
		if r.ProcessedAt != nil && !r.ProcessedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// SetActive flips the soft-delete flag; false means the delivery is absent.
func (m *Deliveries) SetActive(_ context.Context, id int64, active bool, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return false, nil
	}
	r.Active = active
	r.UpdatedAt = now
	return true, nil
}

// WithTx runs fn under the store lock and discards its writes if fn fails.
func (m *Deliveries) WithTx(_ context.Context, fn func(tx deliverytx.Repository) error) error {
	if m.FailTx != nil {
		return m.FailTx
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &deliveriesTx{m: m, staged: map[int64]domain.Delivery{}}
	if err := fn(tx); err != nil {
		return err
	}
	for id, d := range tx.staged {
		cp := copyDelivery(&d)
		m.rows[id] = &cp
	}
	return nil
}

// Put overwrites a row; used to arrange fixtures such as aged deliveries.
func (m *Deliveries) Put(d domain.Delivery) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID > m.nextID {
		m.nextID = d.ID
	}
	cp := copyDelivery(&d)
	m.rows[d.ID] = &cp
}

// ByStatus counts deliveries per status.
func (m *Deliveries) ByStatus() map[domain.DeliveryStatus]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[domain.DeliveryStatus]int{}
	for _, r := range m.rows {
		out[r.Status]++
	}
	return out
}

type deliveriesTx struct {
	m      *Deliveries
	staged map[int64]domain.Delivery
}

func (t *deliveriesTx) ListForAdvance(_ context.Context, status domain.DeliveryStatus, limit int) ([]domain.Delivery, error) {
	var out []domain.Delivery
	for _, r := range t.m.rows {
		if r.Active && r.Status == status {
			out = append(out, copyDelivery(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (t *deliveriesTx) UpdateStatus(_ context.Context, d *domain.Delivery) error {
	if _, ok := t.m.rows[d.ID]; !ok {
		return apperr.ErrNotFound
	}
	t.staged[d.ID] = copyDelivery(d)
	return nil
}

func copyDelivery(d *domain.Delivery) domain.Delivery {
	cp := *d
	if d.ETA != nil {
		eta := *d.ETA
		cp.ETA = &eta
	}
	if d.ProcessedAt != nil {
		at := *d.ProcessedAt
		cp.ProcessedAt = &at
	}
	return cp
}
