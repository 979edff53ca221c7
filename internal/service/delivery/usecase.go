package delivery

import (
	"context"
	"errors"
	"strings"
	"time"

	"fulfillment-platform/internal/apperr"
	"fulfillment-platform/internal/domain"
	"fulfillment-platform/internal/logx"
)

// Service - delivery use cases: creation with ETA, cancellation and soft delete.
type Service struct {
	repo             Repository
	estimator        *Estimator
	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// NewDeliveryService - creates a new delivery Service.
func NewDeliveryService(r Repository, e *Estimator, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{
		repo:             r,
		estimator:        e,
		operationTimeout: timeout,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the service clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create starts a pending delivery for the order with an estimated arrival.
// A second call for the same order returns the existing delivery.
func (s *Service) Create(ctx context.Context, orderID string, userID int64) (*domain.Delivery, bool, error) {
	orderID, err := validateOrderID(orderID)
	if err != nil {
		return nil, false, err
	}
	if userID <= 0 {
		return nil, false, apperr.ErrInvalid
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	existing, err := s.repo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	now := s.now()
	pending, err := s.repo.CountPending(ctx)
	if err != nil {
		return nil, false, err
	}
	processed, err := s.repo.CountProcessedSince(ctx, s.estimator.StartOfDay(now))
	if err != nil {
		return nil, false, err
	}
	eta := s.estimator.Estimate(now, pending+1, processed).UTC()

	d := domain.NewDelivery(orderID, userID, now)
	d.ETA = &eta
	if err := s.repo.Insert(ctx, d); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			if existing, gerr := s.repo.GetByOrderID(ctx, orderID); gerr == nil && existing != nil {
				return existing, false, nil
			}
		}
		return nil, false, err
	}

	s.logger.Info("delivery created",
		logx.String("event", "delivery_created"),
		logx.String("order_id", orderID),
		logx.Int64("delivery_id", d.ID),
		logx.Int("queue", pending+1),
		logx.Time("eta", eta),
	)
	return d, true, nil
}

// Cancel soft-deletes the order's delivery so the scheduler no longer advances it.
func (s *Service) Cancel(ctx context.Context, orderID string) (*domain.Delivery, error) {
	orderID, err := validateOrderID(orderID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	d, err := s.repo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.ErrNotFound
	}
	if err := s.setActive(ctx, d, false); err != nil {
		return nil, err
	}

	s.logger.Info("delivery cancelled",
		logx.String("event", "delivery_cancelled"),
		logx.String("order_id", orderID),
		logx.Int64("delivery_id", d.ID),
		logx.String("status", string(d.Status)),
	)
	return d, nil
}

// Get returns a delivery by id.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Delivery, error) {
	if id <= 0 {
		return nil, apperr.ErrInvalid
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.ErrNotFound
	}
	return d, nil
}

// SoftDelete deactivates a delivery.
func (s *Service) SoftDelete(ctx context.Context, id int64) (*domain.Delivery, error) {
	return s.toggle(ctx, id, false)
}

// Restore reactivates a soft-deleted delivery.
func (s *Service) Restore(ctx context.Context, id int64) (*domain.Delivery, error) {
	return s.toggle(ctx, id, true)
}

func (s *Service) toggle(ctx context.Context, id int64, active bool) (*domain.Delivery, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.setActive(ctx, d, active); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) setActive(ctx context.Context, d *domain.Delivery, active bool) error {
	now := s.now()
	found, err := s.repo.SetActive(ctx, d.ID, active, now)
	if err != nil {
		return err
	}
	if !found {
		return apperr.ErrNotFound
	}
	if active {
		d.Restore(now)
	} else {
		d.SoftDelete(now)
	}
	return nil
}

func validateOrderID(raw string) (string, error) {
	orderID := strings.TrimSpace(raw)
	if orderID == "" {
		return "", apperr.ErrInvalid
	}
	return orderID, nil
}
