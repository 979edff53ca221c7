package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"fulfillment-platform/internal/domain"
)

type lineRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type createOrderRequest struct {
	UserID  int64         `json:"user_id"`
	Address string        `json:"address"`
	Lines   []lineRequest `json:"lines"`
}

type orderLineDTO struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type orderDTO struct {
	ID         string          `json:"id"`
	UserID     int64           `json:"user_id"`
	Address    string          `json:"address"`
	Status     string          `json:"status"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
	Lines      []orderLineDTO  `json:"lines"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type persistedResponse struct {
	Persisted bool `json:"persisted"`
}

type canceledResponse struct {
	Canceled bool `json:"canceled"`
}

func (r createOrderRequest) toModel() domain.NewOrder {
	lines := make([]domain.LineRequest, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, domain.LineRequest{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return domain.NewOrder{UserID: r.UserID, Address: r.Address, Lines: lines}
}

func orderToResponse(o domain.Order) orderDTO {
	out := orderDTO{
		ID:         o.ID,
		UserID:     o.UserID,
		Address:    o.Address,
		Status:     string(o.Status),
		TotalPrice: o.TotalPrice(),
		CreatedAt:  o.CreatedAt,
		Lines:      make([]orderLineDTO, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		out.Lines = append(out.Lines, orderLineDTO{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	return out
}
