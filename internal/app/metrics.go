package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	mw "fulfillment-platform/internal/http/middleware"
	"fulfillment-platform/internal/metrics"
	"fulfillment-platform/internal/service/saga"
)

type schedulerMetrics struct {
	Advanced       *prometheus.CounterVec
	NotifyFailures prometheus.Counter
}

type gatewayRetriesOut struct {
	dig.Out

	Counter prometheus.Counter `name:"gateway_retries_total"`
}

type gatewayRetriesIn struct {
	dig.In

	Counter prometheus.Counter `name:"gateway_retries_total"`
}

func registerMetrics(container *dig.Container) error {
	return provideAll(container,
		func(reg *prometheus.Registry) (mw.HTTPMetrics, error) {
			m := mw.HTTPMetrics{Requests: metrics.NewHTTPRequestsTotal(), Duration: metrics.NewHTTPRequestDuration()}
			return m, metrics.Register(reg, m.Requests, m.Duration)
		},
		func(reg *prometheus.Registry) (gatewayRetriesOut, error) {
			c := metrics.NewGatewayRetriesTotal()
			return gatewayRetriesOut{Counter: c}, metrics.Register(reg, c)
		},
		func(reg *prometheus.Registry) (saga.Instruments, error) {
			inst := saga.Instruments{
				Resolved:    metrics.NewSagaResolvedTotal(),
				CheckErrors: metrics.NewSagaCheckErrorsTotal(),
				Rejected:    metrics.NewSagaQueueRejectedTotal(),
			}
			return inst, metrics.Register(reg, inst.Resolved, inst.CheckErrors, inst.Rejected)
		},
		func(reg *prometheus.Registry) (schedulerMetrics, error) {
			m := schedulerMetrics{
				Advanced:       metrics.NewDeliveriesAdvancedTotal(),
				NotifyFailures: metrics.NewOrderNotifyFailuresTotal(),
			}
			return m, metrics.Register(reg, m.Advanced, m.NotifyFailures)
		},
	)
}
