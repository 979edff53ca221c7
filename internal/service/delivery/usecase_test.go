package delivery_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fulfillment-platform/internal/apperr"
	"fulfillment-platform/internal/domain"
	"fulfillment-platform/internal/logx"
	"fulfillment-platform/internal/service/delivery"
	"fulfillment-platform/internal/testutil/memstore"
)

func newTestDeliveryService(t *testing.T, capacity int, now time.Time) (*delivery.Service, *memstore.Deliveries) {
	t.Helper()
	sched, err := cron.ParseStandard("0 9 * * *")
	require.NoError(t, err)
	repo := memstore.NewDeliveries()
	svc := delivery.NewDeliveryService(repo, delivery.NewEstimator(sched, capacity, time.UTC), 0, logx.Nop()).
		WithClock(func() time.Time { return now })
	return svc, repo
}

func TestCreate_SetsPendingAndETA(t *testing.T) {
	t.Parallel()
	svc, _ := newTestDeliveryService(t, 20, at(8, 0))

	d, created, err := svc.Create(context.Background(), " order-1 ", 7)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "order-1", d.OrderID)
	assert.Equal(t, domain.DeliveryPending, d.Status)
	assert.True(t, d.Active)
	require.NotNil(t, d.ETA)
	assert.Equal(t, at(9, 0), *d.ETA)
}

func TestCreate_IsIdempotentPerOrder(t *testing.T) {
	t.Parallel()
	svc, repo := newTestDeliveryService(t, 20, at(8, 0))
	ctx := context.Background()

	first, _, err := svc.Create(ctx, "order-1", 7)
	require.NoError(t, err)
	second, created, err := svc.Create(ctx, "order-1", 7)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	pending, err := repo.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
}

func TestCreate_ETAFromQueueDepth(t *testing.T) {
	t.Parallel()
	svc, repo := newTestDeliveryService(t, 20, at(8, 0))
	ctx := context.Background()

	processedAt := at(0, 30)
	for i := 0; i < 20; i++ {
		repo.Put(domain.Delivery{
			ID: int64(100 + i), OrderID: fmt.Sprintf("done-%d", i), UserID: 1,
			Status: domain.DeliveryProcessing, Active: true, ProcessedAt: &processedAt, CreatedAt: day,
		})
	}
	for i := 0; i < 44; i++ {
		repo.Put(domain.Delivery{
			ID: int64(200 + i), OrderID: fmt.Sprintf("queued-%d", i), UserID: 1,
			Status: domain.DeliveryPending, Active: true, CreatedAt: day,
		})
	}

	d, _, err := svc.Create(ctx, "order-45", 7)
	require.NoError(t, err)
	require.NotNil(t, d.ETA)
	assert.Equal(t, at(9, 0).AddDate(0, 0, 3), *d.ETA)
}

func TestCreate_Validation(t *testing.T) {
	t.Parallel()
	svc, _ := newTestDeliveryService(t, 20, at(8, 0))

	_, _, err := svc.Create(context.Background(), "  ", 1)
	assert.ErrorIs(t, err, apperr.ErrInvalid)
	_, _, err = svc.Create(context.Background(), "order-1", 0)
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestCancel_SoftDeletes(t *testing.T) {
	t.Parallel()
	svc, repo := newTestDeliveryService(t, 20, at(8, 0))
	ctx := context.Background()

	created, _, err := svc.Create(ctx, "order-1", 7)
	require.NoError(t, err)

	d, err := svc.Cancel(ctx, "order-1")
	require.NoError(t, err)
	assert.False(t, d.Active)
	assert.Equal(t, domain.DeliveryPending, d.Status)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	_, err = svc.Cancel(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSoftDeleteRestore(t *testing.T) {
	t.Parallel()
	svc, _ := newTestDeliveryService(t, 20, at(8, 0))
	ctx := context.Background()

	created, _, err := svc.Create(ctx, "order-1", 7)
	require.NoError(t, err)

	d, err := svc.SoftDelete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, d.Active)

	d, err = svc.Restore(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, d.Active)

	_, err = svc.Get(ctx, 999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.Restore(ctx, 0)
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}
