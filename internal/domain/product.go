package domain

import "github.com/shopspring/decimal"

// Product is a stock ledger row.
type Product struct {
	ID        int64
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Active    bool
}

// LineRequest asks for Quantity units of ProductID.
type LineRequest struct {
	ProductID int64
	Quantity  int
}

// ReservedLine is a snapshot of a successful reservation, sufficient for pricing.
type ReservedLine struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// BuyResult is the outcome of reserving stock for a whole order.
// Lines holds whatever was reserved before a failure, so the caller can compensate.
type BuyResult struct {
	Success bool
	Lines   []ReservedLine
	Reason  string
}

// RestockResult is the outcome of a cancellation restock.
type RestockResult struct {
	Success bool
	Failed  []int64
}

// RollbackResult is the outcome of an explicit caller-driven rollback.
type RollbackResult struct {
	Success bool
	Message string
}
