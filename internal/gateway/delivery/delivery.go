// Package delivery is the order service's HTTP client of the delivery service.
package delivery

import (
	"context"
	"errors"
	"net/http"

	"fulfillment-platform/internal/apperr"
	"fulfillment-platform/internal/gateway"
)

// CreateRequest is the body of POST /deliveries.
type CreateRequest struct {
	OrderID string `json:"order_id"`
	UserID  int64  `json:"user_id"`
}

// CancelRequest is the body of POST /deliveries/cancel.
type CancelRequest struct {
	OrderID string `json:"order_id"`
}

// HTTPGateway calls the delivery service. Both calls are idempotent per order and retried.
type HTTPGateway struct {
	client *gateway.Client
	retry  *gateway.Retrier
}

// NewHTTPGateway creates a delivery gateway.
func NewHTTPGateway(client *gateway.Client, retry *gateway.Retrier) *HTTPGateway {
	return &HTTPGateway{client: client, retry: retry}
}

// CreateDelivery asks for the order's delivery.
func (g *HTTPGateway) CreateDelivery(ctx context.Context, orderID string, userID int64) error {
	return g.retry.Do(ctx, "CreateDelivery", func(ctx context.Context) error {
		return g.client.Do(ctx, http.MethodPost, "/deliveries", CreateRequest{OrderID: orderID, UserID: userID}, nil)
	})
}

// CancelDelivery cancels the order's delivery; a missing delivery is not an error.
func (g *HTTPGateway) CancelDelivery(ctx context.Context, orderID string) error {
	err := g.retry.Do(ctx, "CancelDelivery", func(ctx context.Context) error {
		return g.client.Do(ctx, http.MethodPost, "/deliveries/cancel", CancelRequest{OrderID: orderID}, nil)
	})
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	return err
}
