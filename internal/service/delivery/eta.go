package delivery

import (
	"time"

	"github.com/robfig/cron/v3"
)

// Queue is the delivery backlog seen at creation time.
type Queue struct {
	// Pending counts active pending deliveries, including the one being estimated.
	Pending        int
	ProcessedToday int
	Capacity       int // deliveries per day
}

// EstimateETA returns checkpoint plus the number of days the queue needs to drain
// down to this delivery. checkpoint is today's processing checkpoint.
func EstimateETA(now, checkpoint time.Time, q Queue) time.Time {
	if q.Capacity <= 0 {
		return checkpoint
	}
	remaining := max(q.Capacity-q.ProcessedToday, 0)

	var days int
	switch before := now.Before(checkpoint); {
	case before && remaining > q.Pending:
		days = 0
	case before:
		days = ceilDiv(q.Pending-remaining, q.Capacity)
	default:
		days = ceilDiv(q.Pending, q.Capacity)
	}
	return checkpoint.AddDate(0, 0, days)
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// Estimator anchors ETAs to the processing schedule.
type Estimator struct {
	schedule cron.Schedule
	capacity int
	loc      *time.Location
}

// NewEstimator creates an Estimator for the processing schedule.
func NewEstimator(processing cron.Schedule, capacity int, loc *time.Location) *Estimator {
	if loc == nil {
		loc = time.UTC
	}
	return &Estimator{schedule: processing, capacity: capacity, loc: loc}
}

// StartOfDay returns local midnight of now's day.
func (e *Estimator) StartOfDay(now time.Time) time.Time {
	now = now.In(e.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, e.loc)
}

// Checkpoint returns the first processing run of now's day.
func (e *Estimator) Checkpoint(now time.Time) time.Time {
	return e.schedule.Next(e.StartOfDay(now).Add(-time.Nanosecond))
}

// Estimate computes the ETA for a new delivery; pending includes that delivery.
func (e *Estimator) Estimate(now time.Time, pending, processedToday int) time.Time {
	now = now.In(e.loc)
	return EstimateETA(now, e.Checkpoint(now), Queue{
		Pending:        pending,
		ProcessedToday: processedToday,
		Capacity:       e.capacity,
	})
}
