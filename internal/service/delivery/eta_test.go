package delivery_test

import (
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fulfillment-platform/internal/service/delivery"
)

var day = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func TestEstimateETA(t *testing.T) {
	t.Parallel()
	checkpoint := at(9, 0)

	cases := []struct {
		name string
		now  time.Time
		q    delivery.Queue
		want time.Time
	}{
		{
			name: "capacity left today",
			now:  at(8, 0),
			q:    delivery.Queue{Pending: 5, ProcessedToday: 2, Capacity: 20},
			want: checkpoint,
		},
		{
			name: "today is full",
			now:  at(8, 0),
			q:    delivery.Queue{Pending: 45, ProcessedToday: 20, Capacity: 20},
			want: checkpoint.AddDate(0, 0, 3),
		},
		{
			name: "spills over partially",
			now:  at(8, 0),
			q:    delivery.Queue{Pending: 25, ProcessedToday: 10, Capacity: 20},
			want: checkpoint.AddDate(0, 0, 1),
		},
		{
			name: "after checkpoint",
			now:  at(10, 0),
			q:    delivery.Queue{Pending: 1, ProcessedToday: 0, Capacity: 20},
			want: checkpoint.AddDate(0, 0, 1),
		},
		{
			name: "after checkpoint, deep queue",
			now:  at(10, 0),
			q:    delivery.Queue{Pending: 41, ProcessedToday: 20, Capacity: 20},
			want: checkpoint.AddDate(0, 0, 3),
		},
		{
			name: "over-processed day",
			now:  at(8, 0),
			q:    delivery.Queue{Pending: 1, ProcessedToday: 30, Capacity: 20},
			want: checkpoint.AddDate(0, 0, 1),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, delivery.EstimateETA(tc.now, checkpoint, tc.q))
		})
	}
}

func TestEstimateETA_MonotonicInQueueDepth(t *testing.T) {
	t.Parallel()
	checkpoint := at(9, 0)
	for _, now := range []time.Time{at(6, 0), at(12, 0)} {
		for _, processed := range []int{0, 7, 20, 25} {
			prev := time.Time{}
			for p := 1; p <= 200; p++ {
				eta := delivery.EstimateETA(now, checkpoint, delivery.Queue{Pending: p, ProcessedToday: processed, Capacity: 20})
				require.False(t, eta.Before(prev), "now=%s processed=%d pending=%d", now, processed, p)
				prev = eta
			}
		}
	}
}

func TestEstimator_CheckpointInLocation(t *testing.T) {
	t.Parallel()
	msk, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)
	sched, err := cron.ParseStandard("0 9 * * *")
	require.NoError(t, err)

	e := delivery.NewEstimator(sched, 20, msk)
	now := time.Date(2026, 3, 10, 5, 0, 0, 0, time.UTC) // 08:00 in Moscow

	cp := e.Checkpoint(now)
	assert.Equal(t, time.Date(2026, 3, 10, 9, 0, 0, 0, msk), cp)
	assert.Equal(t, cp, e.Estimate(now, 3, 0))
	assert.Equal(t, cp.AddDate(0, 0, 1), e.Estimate(now.Add(2*time.Hour), 3, 0))
}
