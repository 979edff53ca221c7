// Package ordering is the order ledger: it owns orders and drives the inventory
// and delivery services on creation and cancellation.
package ordering

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fulfillment-platform/internal/apperr"
	"fulfillment-platform/internal/domain"
	"fulfillment-platform/internal/logx"
)

// Service - order ledger use cases.
type Service struct {
	repo       Repository
	inventory  Inventory
	deliveries Deliveries
	logger     logx.Logger
	now        func() time.Time
	newID      func() string
}

// NewService creates a new order Service.
func NewService(repo Repository, inv Inventory, deliveries Deliveries, logger logx.Logger) *Service {
	return &Service{
		repo:       repo,
		inventory:  inv,
		deliveries: deliveries,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
	}
}

// Create reserves stock, stores the order as confirmed with reservation prices
// and asks for a delivery. If the order cannot be stored the inventory saga
// releases the reservation on its own.
func (s *Service) Create(ctx context.Context, in domain.NewOrder) (*domain.Order, error) {
	if err := validateNewOrder(in); err != nil {
		return nil, err
	}
	id := s.newID()
	log := s.logger.With(logx.String("order_id", id))

	res, err := s.inventory.BuyProducts(ctx, id, in.Lines)
	if err != nil {
		return nil, fmt.Errorf("buy products: %w", err)
	}
	if !res.Success {
		if len(res.Lines) > 0 {
			s.rollback(ctx, log, res.Lines)
		}
		log.Info("order rejected", logx.String("event", "order_rejected"), logx.String("reason", res.Reason))
		return nil, fmt.Errorf("%s: %w", res.Reason, apperr.ErrInsufficientStock)
	}

	o := &domain.Order{
		ID:        id,
		UserID:    in.UserID,
		Address:   strings.TrimSpace(in.Address),
		Status:    domain.OrderConfirmed,
		CreatedAt: s.now(),
		Lines:     make([]domain.OrderLine, 0, len(res.Lines)),
	}
	for _, l := range res.Lines {
		o.Lines = append(o.Lines, domain.OrderLine{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("store order: %w", err)
	}

	if err := s.deliveries.CreateDelivery(ctx, o.ID, o.UserID); err != nil {
		log.Warn("delivery request failed", logx.String("event", "delivery_request_failed"), logx.Err(err))
	}

	log.Info("order confirmed",
		logx.String("event", "order_confirmed"),
		logx.Int64("user_id", o.UserID),
		logx.String("total", o.TotalPrice().String()),
	)
	return o, nil
}

// Cancel marks the order cancelled, returns its stock and cancels the delivery.
func (s *Service) Cancel(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status == domain.OrderCompleted || o.Status == domain.OrderCancelled {
		return nil, fmt.Errorf("order is %s: %w", o.Status, apperr.ErrConflict)
	}
	if err := s.setStatus(ctx, o, domain.OrderCancelled); err != nil {
		return nil, err
	}
	log := s.logger.With(logx.String("order_id", o.ID))

	lines := make([]domain.LineRequest, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, domain.LineRequest{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	res, err := s.inventory.RestockProducts(ctx, o.ID, lines)
	switch {
	case err != nil:
		log.Error("restock failed", logx.String("event", "restock_failed"), logx.Err(err))
	case !res.Success:
		log.Warn("restock partially failed", logx.String("event", "restock_partial"), logx.Any("failed", res.Failed))
	}

	if err := s.deliveries.CancelDelivery(ctx, o.ID); err != nil {
		log.Warn("delivery cancel failed", logx.String("event", "delivery_cancel_failed"), logx.Err(err))
	}

	log.Info("order cancelled", logx.String("event", "order_cancelled"))
	return o, nil
}

// Get returns an order or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperr.ErrInvalid
	}
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.ErrNotFound
	}
	return o, nil
}

// UpdateStatus applies a status reported by the delivery pipeline.
// A cancelled order stays cancelled.
func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, apperr.ErrInvalid
	}
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status == domain.OrderCancelled && status != domain.OrderCancelled {
		return nil, fmt.Errorf("order is cancelled: %w", apperr.ErrConflict)
	}
	if err := s.setStatus(ctx, o, status); err != nil {
		return nil, err
	}
	s.logger.Info("order status updated",
		logx.String("event", "order_status_updated"),
		logx.String("order_id", o.ID),
		logx.String("status", string(status)),
	)
	return o, nil
}

// IsPersisted reports whether the order was stored.
func (s *Service) IsPersisted(ctx context.Context, id string) (bool, error) {
	o, err := s.repo.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return false, err
	}
	return o != nil, nil
}

// IsCanceled reports whether the order exists and is cancelled.
func (s *Service) IsCanceled(ctx context.Context, id string) (bool, error) {
	o, err := s.repo.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return false, err
	}
	return o != nil && o.Status == domain.OrderCancelled, nil
}

func (s *Service) setStatus(ctx context.Context, o *domain.Order, status domain.OrderStatus) error {
	found, err := s.repo.UpdateStatus(ctx, o.ID, status, s.now())
	if err != nil {
		return err
	}
	if !found {
		return apperr.ErrNotFound
	}
	o.Status = status
	return nil
}

func (s *Service) rollback(ctx context.Context, log logx.Logger, reserved []domain.ReservedLine) {
	lines := make([]domain.LineRequest, 0, len(reserved))
	for _, l := range reserved {
		lines = append(lines, domain.LineRequest{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	res, err := s.inventory.RollbackProducts(context.WithoutCancel(ctx), lines)
	if err != nil || !res.Success {
		log.Error("rollback of partial reservation failed",
			logx.String("event", "rollback_failed"),
			logx.String("message", res.Message),
			logx.Any("err", err),
		)
	}
}

func validateNewOrder(in domain.NewOrder) error {
	if in.UserID <= 0 || strings.TrimSpace(in.Address) == "" || len(in.Lines) == 0 {
		return apperr.ErrInvalid
	}
	for _, l := range in.Lines {
		if l.ProductID <= 0 || l.Quantity <= 0 {
			return apperr.ErrInvalid
		}
	}
	return nil
}
