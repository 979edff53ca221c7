package gateway_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fulfillment-platform/internal/apperr"
	"fulfillment-platform/internal/gateway"
	"fulfillment-platform/internal/logx"
)

func TestClient_Do_MapsStatuses(t *testing.T) {
	t.Parallel()
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, apperr.ErrInvalid},
		{http.StatusNotFound, apperr.ErrNotFound},
		{http.StatusConflict, apperr.ErrConflict},
		{http.StatusUnprocessableEntity, apperr.ErrInsufficientStock},
		{http.StatusBadGateway, apperr.ErrRemoteCall},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprint(tc.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"error":"nope"}`))
			}))
			defer srv.Close()

			err := gateway.NewClient(srv.URL, time.Second).Do(context.Background(), http.MethodGet, "/x", nil, nil)
			require.ErrorIs(t, err, tc.want)

			var re *gateway.RemoteError
			require.True(t, errors.As(err, &re))
			assert.Equal(t, "nope", re.Message)
		})
	}
}

func TestClient_Do_TransportError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := gateway.NewClient(url, time.Second).Do(context.Background(), http.MethodGet, "/x", nil, nil)
	require.ErrorIs(t, err, apperr.ErrRemoteCall)
	assert.True(t, gateway.IsRetryable(err))
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()
	assert.True(t, gateway.IsRetryable(&gateway.RemoteError{Status: 503}))
	assert.True(t, gateway.IsRetryable(&gateway.RemoteError{Status: 429}))
	assert.False(t, gateway.IsRetryable(&gateway.RemoteError{Status: 404}))
	assert.False(t, gateway.IsRetryable(errors.New("plain")))
	assert.False(t, gateway.IsRetryable(context.Canceled))
	assert.False(t, gateway.IsRetryable(nil))
}

func TestRetrier_StopsOnContextCancel(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	r := gateway.NewRetrier("test", logx.Nop(), nil, gateway.RetryConfig{MaxAttempts: 10, BaseDelay: time.Hour, MaxDelay: time.Hour})

	calls := 0
	err := r.Do(ctx, "m", func(context.Context) error {
		calls++
		cancel()
		return &gateway.RemoteError{Status: 503}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
