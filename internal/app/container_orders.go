package app

import (
	"go.uber.org/dig"

	"fulfillment-platform/internal/config"
	"fulfillment-platform/internal/gateway"
	deliverygw "fulfillment-platform/internal/gateway/delivery"
	invgw "fulfillment-platform/internal/gateway/inventory"
	"fulfillment-platform/internal/http/handlers"
	"fulfillment-platform/internal/http/router"
	"fulfillment-platform/internal/logx"
	"fulfillment-platform/internal/repository"
	"fulfillment-platform/internal/service/ordering"
	"fulfillment-platform/internal/transport/kafka"
)

type deliveriesOut struct {
	dig.Out

	Deliveries ordering.Deliveries
	Closer     Closer `group:"closers"`
}

var newPublisher = kafka.NewPublisher

// newDeliveries picks how the orders service reaches the delivery service.
func newDeliveries(cfg *config.Config, logger logx.Logger, in gatewayRetriesIn) (deliveriesOut, error) {
	if cfg.Delivery.Transport == config.TransportKafka {
		p, err := newPublisher(logger, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return deliveriesOut{}, err
		}
		return deliveriesOut{Deliveries: p, Closer: p.Close}, nil
	}
	client := gateway.NewClient(cfg.Services.DeliveryURL, cfg.Gateway.Timeout)
	gw := deliverygw.NewHTTPGateway(client, newRetrier("delivery", cfg, logger, in.Counter))
	return deliveriesOut{Deliveries: gw, Closer: func() error { return nil }}, nil
}

func registerOrders(container *dig.Container) error {
	err := provideAll(container,
		repository.NewOrderRepo,
		func(cfg *config.Config) *invgw.HTTPGateway {
			return invgw.NewHTTPGateway(gateway.NewClient(cfg.Services.InventoryURL, cfg.Gateway.Timeout))
		},
		newDeliveries,
		func(repo *repository.OrderRepo, inv *invgw.HTTPGateway, deliveries ordering.Deliveries, logger logx.Logger) *ordering.Service {
			return ordering.NewService(repo, inv, deliveries, logger)
		},
		func(logger logx.Logger, svc *ordering.Service) *handlers.OrderHandler {
			return handlers.NewOrderHandler(logger, svc)
		},
	)
	if err != nil {
		return err
	}
	return provideGroup(container, "routes", func(h *handlers.OrderHandler) router.Routes {
		return router.Orders(h)
	})
}
