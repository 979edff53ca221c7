package handlers

import (
	"time"

	"fulfillment-platform/internal/domain"
)

type deliveryDTO struct {
	ID          int64      `json:"id"`
	OrderID     string     `json:"order_id"`
	UserID      int64      `json:"user_id"`
	Status      string     `json:"status"`
	ETA         *time.Time `json:"eta,omitempty"`
	Active      bool       `json:"active"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func deliveryToResponse(d domain.Delivery) deliveryDTO {
	return deliveryDTO{
		ID:          d.ID,
		OrderID:     d.OrderID,
		UserID:      d.UserID,
		Status:      string(d.Status),
		ETA:         d.ETA,
		Active:      d.Active,
		ProcessedAt: d.ProcessedAt,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
