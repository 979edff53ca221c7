// Package inventory is the order service's client of the inventory service.
// Buy, rollback and restock change stock and are never retried.
package inventory

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"fulfillment-platform/internal/domain"
	"fulfillment-platform/internal/gateway"
)

// LineDTO is one requested product quantity on the wire.
type LineDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// ReservedLineDTO is one reserved line on the wire.
type ReservedLineDTO struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"bought_quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// BuyRequest is the body of POST /inventory/buy.
type BuyRequest struct {
	OrderID string    `json:"order_id"`
	Lines   []LineDTO `json:"lines"`
}

// BuyResponse is the answer of POST /inventory/buy.
type BuyResponse struct {
	Success  bool              `json:"success"`
	Products []ReservedLineDTO `json:"products"`
	Reason   string            `json:"reason,omitempty"`
}

// RestockRequest is the body of POST /inventory/restock.
type RestockRequest struct {
	OrderID string    `json:"order_id"`
	Lines   []LineDTO `json:"lines"`
}

// RestockResponse is the answer of POST /inventory/restock.
type RestockResponse struct {
	Success bool    `json:"success"`
	Failed  []int64 `json:"failed,omitempty"`
}

// RollbackRequest is the body of POST /inventory/rollback.
type RollbackRequest struct {
	Lines []LineDTO `json:"lines"`
}

// RollbackResponse is the answer of POST /inventory/rollback.
type RollbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DecreaseResponse is the answer of POST /inventory/decrease.
type DecreaseResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// LinesToDTO converts domain lines to their wire form.
func LinesToDTO(lines []domain.LineRequest) []LineDTO {
	out := make([]LineDTO, 0, len(lines))
	for _, l := range lines {
		out = append(out, LineDTO{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return out
}

// LinesFromDTO converts wire lines to domain lines.
func LinesFromDTO(lines []LineDTO) []domain.LineRequest {
	out := make([]domain.LineRequest, 0, len(lines))
	for _, l := range lines {
		out = append(out, domain.LineRequest{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return out
}

// HTTPGateway calls the inventory service.
type HTTPGateway struct {
	client *gateway.Client
}

// NewHTTPGateway creates an inventory gateway.
func NewHTTPGateway(client *gateway.Client) *HTTPGateway {
	return &HTTPGateway{client: client}
}

// BuyProducts reserves stock for the order.
func (g *HTTPGateway) BuyProducts(ctx context.Context, orderID string, lines []domain.LineRequest) (domain.BuyResult, error) {
	var resp BuyResponse
	if err := g.client.Do(ctx, http.MethodPost, "/inventory/buy", BuyRequest{OrderID: orderID, Lines: LinesToDTO(lines)}, &resp); err != nil {
		return domain.BuyResult{}, err
	}
	res := domain.BuyResult{Success: resp.Success, Reason: resp.Reason, Lines: make([]domain.ReservedLine, 0, len(resp.Products))}
	for _, p := range resp.Products {
		res.Lines = append(res.Lines, domain.ReservedLine{ProductID: p.ProductID, Quantity: p.Quantity, UnitPrice: p.UnitPrice})
	}
	return res, nil
}

// RollbackProducts releases lines reserved by a failed buy.
func (g *HTTPGateway) RollbackProducts(ctx context.Context, lines []domain.LineRequest) (domain.RollbackResult, error) {
	var resp RollbackResponse
	if err := g.client.Do(ctx, http.MethodPost, "/inventory/rollback", RollbackRequest{Lines: LinesToDTO(lines)}, &resp); err != nil {
		return domain.RollbackResult{}, err
	}
	return domain.RollbackResult{Success: resp.Success, Message: resp.Message}, nil
}

// RestockProducts returns a cancelled order's stock.
func (g *HTTPGateway) RestockProducts(ctx context.Context, orderID string, lines []domain.LineRequest) (domain.RestockResult, error) {
	var resp RestockResponse
	if err := g.client.Do(ctx, http.MethodPost, "/inventory/restock", RestockRequest{OrderID: orderID, Lines: LinesToDTO(lines)}, &resp); err != nil {
		return domain.RestockResult{}, err
	}
	return domain.RestockResult{Success: resp.Success, Failed: resp.Failed}, nil
}
