package domain

import (
	"time"

	"github.com/google/uuid"
)

type (
	// SagaKind tells which optimistic effect a saga guards.
	SagaKind string
	// SagaState is the resolution state of a saga.
	SagaState string
)

// Saga kinds
const (
	// SagaReservation guards a stock decrement until the order is known to be persisted.
	SagaReservation SagaKind = "reservation"
	// SagaRestock guards a stock increment until the order is known to be cancelled.
	SagaRestock SagaKind = "restock"
)

// Saga states
const (
	SagaPending     SagaState = "pending"
	SagaConfirmed   SagaState = "confirmed"
	SagaCompensated SagaState = "compensated"
)

// SagaLine is one product quantity touched by a saga.
type SagaLine struct {
	ProductID int64
	Quantity  int
}

// Saga is the durable record of an optimistic stock mutation awaiting confirmation.
type Saga struct {
	ID        uuid.UUID
	Kind      SagaKind
	OrderID   string
	Lines     []SagaLine
	State     SagaState
	DueAt     time.Time
	Deadline  time.Time
	Attempts  int
	CreatedAt time.Time
	UpdatedAt time.Time
}
