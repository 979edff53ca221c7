package app

import (
	"go.uber.org/dig"

	"fulfillment-platform/internal/config"
	"fulfillment-platform/internal/logx"
	"fulfillment-platform/internal/service/delivery"
	"fulfillment-platform/internal/service/orders"
	"fulfillment-platform/internal/transport/kafka"
)

var newConsumer = kafka.NewConsumer

func registerWorker(container *dig.Container) error {
	if err := registerDeliveryCore(container); err != nil {
		return err
	}
	return provideAll(container,
		func(svc *delivery.Service) *orders.Processor { return orders.NewProcessor(svc) },
		func(cfg *config.Config, logger logx.Logger, p *orders.Processor) (*kafka.Consumer, error) {
			return newConsumer(logger, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, makeOrdersKafka(p, logger, useCaseTimeout))
		},
	)
}
