package domain

import (
	"fmt"
	"time"

	"fulfillment-platform/internal/apperr"
)

// Delivery tracks a single order's way to the customer (exactly one per order).
type Delivery struct {
	ID          int64
	OrderID     string
	UserID      int64
	Status      DeliveryStatus
	ETA         *time.Time
	Active      bool
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewDelivery returns an active pending delivery.
func NewDelivery(orderID string, userID int64, now time.Time) *Delivery {
	return &Delivery{
		OrderID:   orderID,
		UserID:    userID,
		Status:    DeliveryPending,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkProcessing moves a pending delivery to processing.
func (d *Delivery) MarkProcessing(now time.Time) error {
	if err := d.transition(DeliveryPending, DeliveryProcessing, now); err != nil {
		return err
	}
	d.ProcessedAt = &now
	return nil
}

// MarkOnRoute moves a processing delivery to on_route.
func (d *Delivery) MarkOnRoute(now time.Time) error {
	return d.transition(DeliveryProcessing, DeliveryOnRoute, now)
}

// MarkDelivered moves an on_route delivery to delivered.
func (d *Delivery) MarkDelivered(now time.Time) error {
	return d.transition(DeliveryOnRoute, DeliveryDelivered, now)
}

// Advance fires the transition out of the current status.
func (d *Delivery) Advance(now time.Time) error {
	next, ok := d.Status.Next()
	if !ok {
		return fmt.Errorf("%w: no transition out of %q", apperr.ErrInvalidStateTransition, d.Status)
	}
	if next == DeliveryProcessing {
		return d.MarkProcessing(now)
	}
	return d.transition(d.Status, next, now)
}

// SoftDelete deactivates the delivery without touching its status.
func (d *Delivery) SoftDelete(now time.Time) {
	d.Active = false
	d.UpdatedAt = now
}

// Restore reactivates a soft-deleted delivery.
func (d *Delivery) Restore(now time.Time) {
	d.Active = true
	d.UpdatedAt = now
}

func (d *Delivery) transition(from, to DeliveryStatus, now time.Time) error {
	if d.Status != from {
		return fmt.Errorf("%w: %q -> %q requires %q", apperr.ErrInvalidStateTransition, d.Status, to, from)
	}
	d.Status = to
	d.UpdatedAt = now
	return nil
}
