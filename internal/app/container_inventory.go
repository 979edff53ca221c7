package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"fulfillment-platform/internal/config"
	"fulfillment-platform/internal/gateway"
	ordersgw "fulfillment-platform/internal/gateway/orders"
	"fulfillment-platform/internal/http/handlers"
	"fulfillment-platform/internal/http/router"
	"fulfillment-platform/internal/logx"
	"fulfillment-platform/internal/repository"
	"fulfillment-platform/internal/service/saga"
	"fulfillment-platform/internal/service/stock"
)

func newRetrier(name string, cfg *config.Config, logger logx.Logger, retries prometheus.Counter) *gateway.Retrier {
	return gateway.NewRetrier(name, logger, retries, gateway.RetryConfig{
		MaxAttempts: cfg.Gateway.MaxAttempts,
		BaseDelay:   cfg.Gateway.BaseDelay,
		MaxDelay:    cfg.Gateway.MaxDelay,
	})
}

func newOrdersGateway(cfg *config.Config, logger logx.Logger, in gatewayRetriesIn) *ordersgw.RetryingGateway {
	client := gateway.NewClient(cfg.Services.OrdersURL, cfg.Gateway.Timeout)
	return ordersgw.NewRetryingGateway(ordersgw.NewHTTPGateway(client), newRetrier("orders", cfg, logger, in.Counter))
}

func registerInventory(container *dig.Container) error {
	err := provideAll(container,
		repository.NewStockRepo,
		repository.NewSagaRepo,
		newOrdersGateway,
		func(repo *repository.StockRepo, logger logx.Logger) *stock.Ledger {
			return stock.NewLedger(repo, useCaseTimeout, logger)
		},
		func(
			ledger *stock.Ledger,
			sagas *repository.SagaRepo,
			orders *ordersgw.RetryingGateway,
			cfg *config.Config,
			inst saga.Instruments,
			logger logx.Logger,
		) *saga.Coordinator {
			return saga.NewCoordinator(ledger, sagas, orders, saga.Options{
				GracePeriod:      cfg.Saga.GracePeriod,
				Deadline:         cfg.Saga.Deadline,
				RetryInterval:    cfg.Saga.RetryInterval,
				Workers:          cfg.Saga.Workers,
				QueueSize:        cfg.Saga.QueueSize,
				RecoveryInterval: cfg.Saga.RecoveryInterval,
			}, inst, logger)
		},
		func(logger logx.Logger, coord *saga.Coordinator, ledger *stock.Ledger) *handlers.InventoryHandler {
			return handlers.NewInventoryHandler(logger, coord, ledger)
		},
	)
	if err != nil {
		return err
	}
	if err := provideGroup(container, "routes", func(h *handlers.InventoryHandler) router.Routes {
		return router.Inventory(h)
	}); err != nil {
		return err
	}
	return provideGroup(container, "tasks", func(c *saga.Coordinator) Task {
		return Task{Name: "saga-coordinator", Run: c.Run}
	})
}
