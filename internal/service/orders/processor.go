package orders

import (
	"context"
	"errors"

	"fulfillment-platform/internal/apperr"
)

// Processor turns order events into delivery use case calls
type Processor struct {
	delivery DeliveryPort
	factory  *actionFactory
}

// NewProcessor creates a new orders.Processor
func NewProcessor(deliverySvc DeliveryPort) *Processor {
	p := &Processor{delivery: deliverySvc}
	p.factory = newActionFactory(p.onCreated, p.onCanceled)
	return p
}

// Handle processes a single orders.Event. Unknown statuses are ignored.
func (p *Processor) Handle(ctx context.Context, e Event) error {
	fn, ok := p.factory.get(e.Status)
	if !ok {
		return nil
	}
	return fn(ctx, e)
}

func (p *Processor) onCreated(ctx context.Context, e Event) error {
	_, _, err := p.delivery.Create(ctx, e.OrderID, e.UserID)
	if errors.Is(err, apperr.ErrInvalid) {
		return nil
	}
	return err
}

func (p *Processor) onCanceled(ctx context.Context, e Event) error {
	_, err := p.delivery.Cancel(ctx, e.OrderID)
	if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrInvalid) {
		return nil
	}
	return err
}
