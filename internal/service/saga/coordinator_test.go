package saga_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fulfillment-platform/internal/apperr"
	"fulfillment-platform/internal/domain"
	"fulfillment-platform/internal/logx"
	"fulfillment-platform/internal/metrics"
	"fulfillment-platform/internal/service/saga"
	"fulfillment-platform/internal/service/stock"
	"fulfillment-platform/internal/testutil/memstore"
	"fulfillment-platform/internal/testutil/testlog"
)

const waitFor = 2 * time.Second

func newCtrl(t *testing.T) *gomock.Controller {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return ctrl
}

func fastOptions() saga.Options {
	return saga.Options{
		GracePeriod:      10 * time.Millisecond,
		Deadline:         200 * time.Millisecond,
		RetryInterval:    10 * time.Millisecond,
		Workers:          4,
		QueueSize:        16,
		RecoveryInterval: time.Hour,
	}
}

type env struct {
	inv      *memstore.Inventory
	ledger   *stock.Ledger
	coord    *saga.Coordinator
	logs     *testlog.Recorder
	resolved *prometheus.CounterVec
	rejected prometheus.Counter
}

func newEnv(t *testing.T, orders saga.OrderChecker, opts saga.Options) *env {
	t.Helper()
	e := &env{
		inv:      memstore.NewInventory(),
		logs:     testlog.New(),
		resolved: metrics.NewSagaResolvedTotal(),
		rejected: metrics.NewSagaQueueRejectedTotal(),
	}
	e.ledger = stock.NewLedger(e.inv, 0, logx.Nop())
	e.coord = saga.NewCoordinator(e.ledger, e.inv.SagaLog(), orders, opts, saga.Instruments{
		Resolved:    e.resolved,
		CheckErrors: metrics.NewSagaCheckErrorsTotal(),
		Rejected:    e.rejected,
	}, e.logs.Logger())
	return e
}

// start runs the coordinator until the test ends.
func (e *env) start(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = e.coord.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func (e *env) sagaState(t *testing.T, orderID string, kind domain.SagaKind) domain.SagaState {
	t.Helper()
	for _, s := range e.inv.Sagas(orderID) {
		if s.Kind == kind {
			return s.State
		}
	}
	return ""
}

func TestBuyProducts_NotPersisted_ReleasesReservation(t *testing.T) {
	ctrl := newCtrl(t)
	orders := NewMockOrderChecker(ctrl)
	orders.EXPECT().IsOrderPersisted(gomock.Any(), "order-1").Return(false, nil).MinTimes(1)

	e := newEnv(t, orders, fastOptions())
	e.start(t)
	pid := e.inv.Seed(10)

	res, err := e.coord.BuyProducts(context.Background(), "order-1", []domain.LineRequest{{ProductID: pid, Quantity: 4}})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, 6, e.inv.Quantity(pid))

	require.Eventually(t, func() bool {
		return e.sagaState(t, "order-1", domain.SagaReservation) == domain.SagaCompensated
	}, waitFor, 5*time.Millisecond)
	assert.Equal(t, 10, e.inv.Quantity(pid))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.resolved.WithLabelValues("reservation", "compensated")))
}

func TestBuyProducts_Persisted_KeepsReservation(t *testing.T) {
	ctrl := newCtrl(t)
	orders := NewMockOrderChecker(ctrl)
	orders.EXPECT().IsOrderPersisted(gomock.Any(), "order-1").Return(true, nil).MinTimes(1)

	e := newEnv(t, orders, fastOptions())
	e.start(t)
	pid := e.inv.Seed(10)

	res, err := e.coord.BuyProducts(context.Background(), "order-1", []domain.LineRequest{{ProductID: pid, Quantity: 5}})
	require.NoError(t, err)
	require.True(t, res.Success)

	require.Eventually(t, func() bool {
		return e.sagaState(t, "order-1", domain.SagaReservation) == domain.SagaConfirmed
	}, waitFor, 5*time.Millisecond)
	assert.Equal(t, 5, e.inv.Quantity(pid))
}

func TestBuyProducts_CheckErrorIsRetried(t *testing.T) {
	ctrl := newCtrl(t)
	orders := NewMockOrderChecker(ctrl)
	gomock.InOrder(
		orders.EXPECT().IsOrderPersisted(gomock.Any(), "order-1").Return(false, errors.New("timeout")),
		orders.EXPECT().IsOrderPersisted(gomock.Any(), "order-1").Return(true, nil).MinTimes(1),
	)

	opts := fastOptions()
	opts.RecoveryInterval = 10 * time.Millisecond
	e := newEnv(t, orders, opts)
	e.start(t)
	pid := e.inv.Seed(10)

	_, err := e.coord.BuyProducts(context.Background(), "order-1", []domain.LineRequest{{ProductID: pid, Quantity: 4}})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return e.sagaState(t, "order-1", domain.SagaReservation) == domain.SagaConfirmed
	}, waitFor, 5*time.Millisecond)
	assert.Equal(t, 6, e.inv.Quantity(pid))
	assert.True(t, e.logs.Has("warn", "order check failed, will retry"))
	assert.Equal(t, 1, e.inv.Sagas("order-1")[0].Attempts)
}

func TestBuyProducts_FailingCheckDoesNotHoldWorker(t *testing.T) {
	ctrl := newCtrl(t)
	orders := NewMockOrderChecker(ctrl)
	orders.EXPECT().IsOrderPersisted(gomock.Any(), "order-down").Return(false, errors.New("unavailable")).MinTimes(1)
	orders.EXPECT().IsOrderPersisted(gomock.Any(), "order-up").Return(true, nil).MinTimes(1)

	opts := fastOptions()
	opts.Workers = 1
	opts.Deadline = time.Minute
	opts.RetryInterval = time.Minute
	e := newEnv(t, orders, opts)
	e.start(t)
	pid := e.inv.Seed(10)

	for _, id := range []string{"order-down", "order-up"} {
		_, err := e.coord.BuyProducts(context.Background(), id, []domain.LineRequest{{ProductID: pid, Quantity: 1}})
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		return e.sagaState(t, "order-up", domain.SagaReservation) == domain.SagaConfirmed
	}, waitFor, 5*time.Millisecond)

	down := e.inv.Sagas("order-down")[0]
	assert.Equal(t, domain.SagaPending, down.State)
	assert.Equal(t, 1, down.Attempts)
	assert.True(t, down.DueAt.After(down.CreatedAt.Add(opts.GracePeriod)), "retry is rescheduled, not slept on")
}

func TestBuyProducts_CheckFailingPastDeadline_Compensates(t *testing.T) {
	ctrl := newCtrl(t)
	orders := NewMockOrderChecker(ctrl)
	orders.EXPECT().IsOrderPersisted(gomock.Any(), "order-1").Return(false, errors.New("unavailable")).MinTimes(1)

	opts := fastOptions()
	opts.Deadline = 50 * time.Millisecond
	opts.RecoveryInterval = 10 * time.Millisecond
	e := newEnv(t, orders, opts)
	e.start(t)
	pid := e.inv.Seed(10)

	_, err := e.coord.BuyProducts(context.Background(), "order-1", []domain.LineRequest{{ProductID: pid, Quantity: 4}})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return e.sagaState(t, "order-1", domain.SagaReservation) == domain.SagaCompensated
	}, waitFor, 5*time.Millisecond)
	assert.Equal(t, 10, e.inv.Quantity(pid))
	assert.True(t, e.logs.Has("warn", "order check failing past deadline, compensating"))

	s := e.inv.Sagas("order-1")[0]
	assert.GreaterOrEqual(t, s.Attempts, 1)
}

func TestBuyProducts_FirstFailureAborts(t *testing.T) {
	ctrl := newCtrl(t)
	orders := NewMockOrderChecker(ctrl)

	e := newEnv(t, orders, fastOptions())
	a := e.inv.Seed(10)
	b := e.inv.Seed(1)
	c := e.inv.Seed(10)

	res, err := e.coord.BuyProducts(context.Background(), "order-1", []domain.LineRequest{
		{ProductID: a, Quantity: 3},
		{ProductID: b, Quantity: 2},
		{ProductID: c, Quantity: 1},
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Reason, apperr.ErrInsufficientStock.Error())
	require.Len(t, res.Lines, 1)
	assert.Equal(t, a, res.Lines[0].ProductID)

	assert.Equal(t, 7, e.inv.Quantity(a), "already reserved lines are left to the caller")
	assert.Equal(t, 1, e.inv.Quantity(b))
	assert.Equal(t, 10, e.inv.Quantity(c))
	assert.Empty(t, e.inv.Sagas("order-1"))

	rb, err := e.coord.Rollback(context.Background(), []domain.LineRequest{{ProductID: a, Quantity: 3}})
	require.NoError(t, err)
	assert.True(t, rb.Success)
	assert.Equal(t, 10, e.inv.Quantity(a))
}

func TestBuyProducts_SagaPersistFailure_ReleasesSynchronously(t *testing.T) {
	ctrl := newCtrl(t)
	e := newEnv(t, NewMockOrderChecker(ctrl), fastOptions())
	pid := e.inv.Seed(10)
	e.inv.FailCreateSaga = errors.New("db down")

	_, err := e.coord.BuyProducts(context.Background(), "order-1", []domain.LineRequest{{ProductID: pid, Quantity: 4}})
	require.Error(t, err)
	assert.Equal(t, 10, e.inv.Quantity(pid))
}

func TestBuyProducts_Validation(t *testing.T) {
	ctrl := newCtrl(t)
	e := newEnv(t, NewMockOrderChecker(ctrl), fastOptions())

	cases := []struct {
		name    string
		orderID string
		lines   []domain.LineRequest
	}{
		{"empty order id", " ", []domain.LineRequest{{ProductID: 1, Quantity: 1}}},
		{"no lines", "o", nil},
		{"zero quantity", "o", []domain.LineRequest{{ProductID: 1, Quantity: 0}}},
		{"bad product", "o", []domain.LineRequest{{ProductID: 0, Quantity: 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.coord.BuyProducts(context.Background(), tc.orderID, tc.lines)
			require.ErrorIs(t, err, apperr.ErrInvalid)
		})
	}
}

func TestRestockProducts_NotCanceled_Redebits(t *testing.T) {
	ctrl := newCtrl(t)
	orders := NewMockOrderChecker(ctrl)
	orders.EXPECT().IsOrderCanceled(gomock.Any(), "order-1").Return(false, nil).MinTimes(1)

	e := newEnv(t, orders, fastOptions())
	e.start(t)
	pid := e.inv.Seed(2)

	res, err := e.coord.RestockProducts(context.Background(), "order-1", []domain.LineRequest{{ProductID: pid, Quantity: 3}})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 5, e.inv.Quantity(pid))

	require.Eventually(t, func() bool {
		return e.sagaState(t, "order-1", domain.SagaRestock) == domain.SagaCompensated
	}, waitFor, 5*time.Millisecond)
	assert.Equal(t, 2, e.inv.Quantity(pid))
}

func TestRestockProducts_Canceled_KeepsRestock(t *testing.T) {
	ctrl := newCtrl(t)
	orders := NewMockOrderChecker(ctrl)
	orders.EXPECT().IsOrderCanceled(gomock.Any(), "order-1").Return(true, nil).MinTimes(1)

	e := newEnv(t, orders, fastOptions())
	e.start(t)
	pid := e.inv.Seed(2)

	_, err := e.coord.RestockProducts(context.Background(), "order-1", []domain.LineRequest{{ProductID: pid, Quantity: 3}})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return e.sagaState(t, "order-1", domain.SagaRestock) == domain.SagaConfirmed
	}, waitFor, 5*time.Millisecond)
	assert.Equal(t, 5, e.inv.Quantity(pid))
}

func TestRestockProducts_RedebitNeverGoesNegative(t *testing.T) {
	ctrl := newCtrl(t)
	orders := NewMockOrderChecker(ctrl)
	orders.EXPECT().IsOrderCanceled(gomock.Any(), "order-1").Return(false, nil).MinTimes(1)

	opts := fastOptions()
	opts.GracePeriod = 50 * time.Millisecond
	e := newEnv(t, orders, opts)
	e.start(t)
	pid := e.inv.Seed(0)

	_, err := e.coord.RestockProducts(context.Background(), "order-1", []domain.LineRequest{{ProductID: pid, Quantity: 3}})
	require.NoError(t, err)
	_, err = e.ledger.Reserve(context.Background(), pid, 2)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return e.sagaState(t, "order-1", domain.SagaRestock) == domain.SagaCompensated
	}, waitFor, 5*time.Millisecond)
	assert.Equal(t, 1, e.inv.Quantity(pid))
	assert.GreaterOrEqual(t, e.inv.MinQuantity(pid), 0)
	assert.True(t, e.logs.Has("warn", "re-debit skipped, not enough stock"))
}

func TestRestockProducts_BestEffort(t *testing.T) {
	ctrl := newCtrl(t)
	orders := NewMockOrderChecker(ctrl)
	orders.EXPECT().IsOrderCanceled(gomock.Any(), "order-1").Return(true, nil).AnyTimes()

	e := newEnv(t, orders, fastOptions())
	a := e.inv.Seed(1)
	b := e.inv.Seed(1)

	res, err := e.coord.RestockProducts(context.Background(), "order-1", []domain.LineRequest{
		{ProductID: a, Quantity: 1},
		{ProductID: 404, Quantity: 1},
		{ProductID: b, Quantity: 2},
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, []int64{404}, res.Failed)
	assert.Equal(t, 2, e.inv.Quantity(a))
	assert.Equal(t, 3, e.inv.Quantity(b))

	sagas := e.inv.Sagas("order-1")
	require.Len(t, sagas, 1)
	assert.Len(t, sagas[0].Lines, 2)
}

func TestRecover_ResolvesStrandedSaga(t *testing.T) {
	ctrl := newCtrl(t)
	orders := NewMockOrderChecker(ctrl)
	orders.EXPECT().IsOrderPersisted(gomock.Any(), "order-crashed").Return(false, nil).MinTimes(1)

	e := newEnv(t, orders, fastOptions())
	pid := e.inv.Seed(6)

	past := time.Now().UTC().Add(-time.Minute)
	require.NoError(t, e.inv.SagaLog().Create(context.Background(), &domain.Saga{
		ID:        uuid.New(),
		Kind:      domain.SagaReservation,
		OrderID:   "order-crashed",
		Lines:     []domain.SagaLine{{ProductID: pid, Quantity: 4}},
		State:     domain.SagaPending,
		DueAt:     past,
		Deadline:  past.Add(time.Second),
		CreatedAt: past,
	}))

	e.start(t)

	require.Eventually(t, func() bool {
		return e.sagaState(t, "order-crashed", domain.SagaReservation) == domain.SagaCompensated
	}, waitFor, 5*time.Millisecond)
	assert.Equal(t, 10, e.inv.Quantity(pid))
}

func TestBuyProducts_FullQueueLeavesSagaForRecovery(t *testing.T) {
	ctrl := newCtrl(t)
	orders := NewMockOrderChecker(ctrl)
	orders.EXPECT().IsOrderPersisted(gomock.Any(), gomock.Any()).Return(true, nil).MinTimes(2)

	opts := fastOptions()
	opts.Workers = 1
	opts.QueueSize = 1
	opts.RecoveryInterval = 20 * time.Millisecond
	e := newEnv(t, orders, opts)
	pid := e.inv.Seed(10)

	for _, id := range []string{"order-1", "order-2"} {
		res, err := e.coord.BuyProducts(context.Background(), id, []domain.LineRequest{{ProductID: pid, Quantity: 1}})
		require.NoError(t, err)
		require.True(t, res.Success)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(e.rejected))
	assert.Equal(t, domain.SagaPending, e.sagaState(t, "order-2", domain.SagaReservation))

	e.start(t)

	require.Eventually(t, func() bool {
		return e.sagaState(t, "order-1", domain.SagaReservation) == domain.SagaConfirmed &&
			e.sagaState(t, "order-2", domain.SagaReservation) == domain.SagaConfirmed
	}, waitFor, 5*time.Millisecond)
	assert.Equal(t, 8, e.inv.Quantity(pid))
}

// racingOrders answers randomly, so buy and cancel compensations interleave.
type racingOrders struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func (r *racingOrders) flip() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Intn(2) == 0
}

func (r *racingOrders) IsOrderPersisted(context.Context, string) (bool, error) { return r.flip(), nil }
func (r *racingOrders) IsOrderCanceled(context.Context, string) (bool, error)  { return r.flip(), nil }

func TestBuyAndRestockRace_NeverNegative(t *testing.T) {
	opts := fastOptions()
	opts.QueueSize = 256
	e := newEnv(t, &racingOrders{rnd: rand.New(rand.NewSource(1))}, opts)
	e.start(t)
	pid := e.inv.Seed(5)

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = e.coord.BuyProducts(context.Background(), "order-race", []domain.LineRequest{{ProductID: pid, Quantity: 3}})
		}()
		go func() {
			defer wg.Done()
			_, _ = e.coord.RestockProducts(context.Background(), "order-race", []domain.LineRequest{{ProductID: pid, Quantity: 3}})
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		for _, s := range e.inv.Sagas("order-race") {
			if s.State == domain.SagaPending {
				return false
			}
		}
		return true
	}, 5*time.Second, 10*time.Millisecond)

	assert.GreaterOrEqual(t, e.inv.MinQuantity(pid), 0)
	assert.GreaterOrEqual(t, e.inv.Quantity(pid), 0)
}
