package order

import (
	"context"
	"net/http"
	"net/url"

	"fulfillment-platform/internal/domain"
	"fulfillment-platform/internal/gateway"
)

// HTTPGateway is an orders gateway backed by the orders service HTTP API.
type HTTPGateway struct {
	client *gateway.Client
}

// NewHTTPGateway creates an orders gateway.
func NewHTTPGateway(client *gateway.Client) *HTTPGateway {
	if client == nil {
		return nil
	}
	return &HTTPGateway{client: client}
}

// IsOrderPersisted asks whether the order was stored.
func (g *HTTPGateway) IsOrderPersisted(ctx context.Context, orderID string) (bool, error) {
	var resp struct {
		Persisted bool `json:"persisted"`
	}
	if err := g.client.Do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID)+"/persisted", nil, &resp); err != nil {
		return false, err
	}
	return resp.Persisted, nil
}

// IsOrderCanceled asks whether the order is cancelled.
func (g *HTTPGateway) IsOrderCanceled(ctx context.Context, orderID string) (bool, error) {
	var resp struct {
		Canceled bool `json:"canceled"`
	}
	if err := g.client.Do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID)+"/canceled", nil, &resp); err != nil {
		return false, err
	}
	return resp.Canceled, nil
}

// UpdateOrderStatus sets the order status.
func (g *HTTPGateway) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	req := struct {
		Status string `json:"status"`
	}{Status: string(status)}
	return g.client.Do(ctx, http.MethodPut, "/orders/"+url.PathEscape(orderID)+"/status", req, nil)
}
