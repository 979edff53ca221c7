package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLine is a single line of an order.
type OrderLine struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// Total returns quantity * unit price.
func (l OrderLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is owned by the order ledger.
type Order struct {
	ID        string
	UserID    int64
	Address   string
	Status    OrderStatus
	CreatedAt time.Time
	Lines     []OrderLine
}

// TotalPrice is always derived from the current lines.
func (o Order) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Total())
	}
	return total
}

// NewOrder carries the caller input for order creation.
type NewOrder struct {
	UserID  int64
	Address string
	Lines   []LineRequest
}
