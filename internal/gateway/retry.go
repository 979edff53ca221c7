package gateway

import (
	"context"
	"time"

	"fulfillment-platform/internal/logx"
)

type counter interface {
	Inc()
}

// RetryConfig describes how idempotent calls are retried.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Retrier repeats idempotent calls with capped exponential backoff.
type Retrier struct {
	name    string
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
}

// NewRetrier creates a Retrier; name identifies the remote service in logs.
func NewRetrier(name string, logger logx.Logger, retries counter, cfg RetryConfig) *Retrier {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &Retrier{name: name, logger: logger, retries: retries, cfg: cfg}
}

// Do calls fn until it succeeds, fails with a non-retryable error,
// runs out of attempts or ctx is done. It returns the last error.
func (r *Retrier) Do(ctx context.Context, method string, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == r.cfg.MaxAttempts || !IsRetryable(err) {
			break
		}

		delay := backoff(r.cfg.BaseDelay, r.cfg.MaxDelay, attempt)
		if r.retries != nil {
			r.retries.Inc()
		}
		r.logger.Warn(r.name+" gateway retry",
			logx.String("method", method),
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Any("err", err),
		)
		if !sleepWithContext(ctx, delay) {
			break
		}
	}
	return lastErr
}

// backoff вычисляет задержку повтора
func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d > max {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
