package order_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fulfillment-platform/internal/apperr"
	"fulfillment-platform/internal/domain"
	"fulfillment-platform/internal/gateway"
	order "fulfillment-platform/internal/gateway/orders"
	"fulfillment-platform/internal/testutil/testlog"
)

type counterStub struct{ n atomic.Int64 }

func (c *counterStub) Inc() { c.n.Add(1) }

func newGateway(t *testing.T, h http.HandlerFunc, attempts int) (*order.RetryingGateway, *counterStub, *testlog.Recorder) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	rec := testlog.New()
	ctr := &counterStub{}
	retry := gateway.NewRetrier("orders", rec.Logger(), ctr, gateway.RetryConfig{MaxAttempts: attempts})
	return order.NewRetryingGateway(order.NewHTTPGateway(gateway.NewClient(srv.URL, time.Second)), retry), ctr, rec
}

func TestIsOrderPersisted(t *testing.T) {
	t.Parallel()
	g, _, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/orders/order-1/persisted", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]bool{"persisted": true})
	}, 1)

	ok, err := g.IsOrderPersisted(context.Background(), "order-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsOrderCanceled_RetriesThenSucceeds(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	g, ctr, rec := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]bool{"canceled": true})
	}, 5)

	ok, err := g.IsOrderCanceled(context.Background(), "order-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, int64(2), ctr.n.Load())
	assert.Equal(t, 2, rec.Count("warn", "orders gateway retry"))
}

func TestUpdateOrderStatus_NoRetryOnClientError(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	g, ctr, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "shipped", body["status"])
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"order not found"}`))
	}, 5)

	err := g.UpdateOrderStatus(context.Background(), "order-1", domain.OrderShipped)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Contains(t, err.Error(), "order not found")
	assert.Equal(t, int32(1), calls.Load())
	assert.Zero(t, ctr.n.Load())
}

func TestIsOrderPersisted_GivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	g, _, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, 3)

	_, err := g.IsOrderPersisted(context.Background(), "order-1")
	require.ErrorIs(t, err, apperr.ErrRemoteCall)
	assert.Equal(t, int32(3), calls.Load())
}
