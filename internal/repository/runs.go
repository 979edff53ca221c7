package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyCheckpointRun = "delivery:checkpoint:%s:last_run"

// NewRedisClient creates and pings a redis client.
func NewRedisClient(ctx context.Context, addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

// RunStore keeps the last successful run of each scheduler checkpoint in redis.
type RunStore struct {
	rdb redis.Cmdable
}

// NewRunStore creates a new RunStore.
func NewRunStore(rdb redis.Cmdable) *RunStore {
	return &RunStore{rdb: rdb}
}

// LastRun returns the last recorded run; ok is false if the checkpoint never ran.
func (s *RunStore) LastRun(ctx context.Context, checkpoint string) (time.Time, bool, error) {
	v, err := s.rdb.Get(ctx, fmt.Sprintf(keyCheckpointRun, checkpoint)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("get %s last run: %w", checkpoint, err)
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse %s last run %q: %w", checkpoint, v, err)
	}
	return t, true, nil
}

// SetLastRun records a successful run.
func (s *RunStore) SetLastRun(ctx context.Context, checkpoint string, at time.Time) error {
	err := s.rdb.Set(ctx, fmt.Sprintf(keyCheckpointRun, checkpoint), at.UTC().Format(time.RFC3339Nano), 0).Err()
	if err != nil {
		return fmt.Errorf("set %s last run: %w", checkpoint, err)
	}
	return nil
}
