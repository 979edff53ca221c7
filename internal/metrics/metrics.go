package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// NewGatewayRetriesTotal returns a Prometheus counter for the number of retry attempts performed by gateways
func NewGatewayRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gateway_retries_total",
		Help: "Total number of retry attempts performed by gateways",
	})
}

// NewSagaResolvedTotal counts resolved sagas by kind and outcome (confirmed/compensated).
func NewSagaResolvedTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "saga_resolved_total",
		Help: "Total number of resolved stock sagas",
	}, []string{"kind", "outcome"})
}

// NewSagaCheckErrorsTotal counts failed order-state checks by saga kind.
func NewSagaCheckErrorsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "saga_check_errors_total",
		Help: "Total number of failed order state checks during saga resolution",
	}, []string{"kind"})
}

// NewSagaQueueRejectedTotal counts sagas left to the recovery sweep because the queue was full.
func NewSagaQueueRejectedTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "saga_queue_rejected_total",
		Help: "Total number of sagas not enqueued because the compensation queue was full",
	})
}

// NewDeliveriesAdvancedTotal counts deliveries advanced by checkpoint.
func NewDeliveriesAdvancedTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "deliveries_advanced_total",
		Help: "Total number of deliveries advanced by the scheduler",
	}, []string{"checkpoint"})
}

// NewOrderNotifyFailuresTotal counts failed order status notifications.
func NewOrderNotifyFailuresTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_notify_failures_total",
		Help: "Total number of order status notifications that failed",
	})
}

// NewHTTPRequestsTotal counts served HTTP requests by method, route pattern and status.
func NewHTTPRequestsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
}

// NewHTTPRequestDuration observes HTTP request latency.
func NewHTTPRequestDuration() *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
}

// Register registers collectors, tolerating ones that are already registered.
func Register(reg prometheus.Registerer, cs ...prometheus.Collector) error {
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}
