package handlers

import (
	"github.com/shopspring/decimal"

	"fulfillment-platform/internal/domain"
)

type productDTO struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Active    bool            `json:"active"`
}

type createProductRequest struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Active    *bool           `json:"active,omitempty"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func productToResponse(p domain.Product) productDTO {
	return productDTO{
		ID:        p.ID,
		Name:      p.Name,
		Quantity:  p.Quantity,
		UnitPrice: p.UnitPrice,
		Active:    p.Active,
	}
}
