package app

import (
	"context"
	"errors"
	"time"

	"fulfillment-platform/internal/apperr"
	"fulfillment-platform/internal/logx"
	"fulfillment-platform/internal/service/orders"
	"fulfillment-platform/internal/transport/kafka"
)

// makeOrdersKafka adapts the processor to the consumer. Errors that a redelivery
// cannot fix are marked permanent so the message is skipped.
func makeOrdersKafka(p *orders.Processor, logger logx.Logger, timeout time.Duration) kafka.HandleFunc {
	return func(ctx context.Context, event orders.Event) error {
		hctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		err := p.Handle(hctx, event)
		switch {
		case err == nil:
			logger.Debug("order event handled",
				logx.String("order_id", event.OrderID),
				logx.String("status", event.Status),
			)
			return nil
		case errors.Is(err, apperr.ErrConflict),
			errors.Is(err, apperr.ErrInvalidStateTransition),
			errors.Is(err, apperr.ErrInvalid):
			return kafka.Permanent(err)
		default:
			return err
		}
	}
}
