package orders

import (
	"time"
)

// Event statuses published by the order service
const (
	StatusCreated  = "created"
	StatusCanceled = "canceled"
)

// Event is a single order event
type Event struct {
	OrderID   string    `json:"order_id"`
	UserID    int64     `json:"user_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
