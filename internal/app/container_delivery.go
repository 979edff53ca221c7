package app

import (
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/dig"

	"fulfillment-platform/internal/config"
	ordersgw "fulfillment-platform/internal/gateway/orders"
	"fulfillment-platform/internal/http/handlers"
	"fulfillment-platform/internal/http/router"
	"fulfillment-platform/internal/logx"
	"fulfillment-platform/internal/repository"
	"fulfillment-platform/internal/service/delivery"
)

// registerDeliveryCore provides the delivery use cases shared by the delivery service and the worker.
func registerDeliveryCore(container *dig.Container) error {
	return provideAll(container,
		repository.NewDeliveryRepo,
		func(cfg *config.Config) (*time.Location, error) {
			return cfg.Delivery.TimeLocation()
		},
		func(cfg *config.Config, loc *time.Location) (*delivery.Estimator, error) {
			sched, err := cron.ParseStandard(cfg.Delivery.ProcessingSchedule)
			if err != nil {
				return nil, err
			}
			return delivery.NewEstimator(sched, cfg.Delivery.CapacityPerDay, loc), nil
		},
		func(repo *repository.DeliveryRepo, est *delivery.Estimator, logger logx.Logger) *delivery.Service {
			return delivery.NewDeliveryService(repo, est, useCaseTimeout, logger)
		},
	)
}

func registerDelivery(container *dig.Container) error {
	if err := registerDeliveryCore(container); err != nil {
		return err
	}
	err := provideAll(container,
		func(rdb *redis.Client) *repository.RunStore { return repository.NewRunStore(rdb) },
		newOrdersGateway,
		func(cfg *config.Config) ([]delivery.Checkpoint, error) {
			return delivery.NewCheckpoints(cfg.Delivery.ProcessingSchedule, cfg.Delivery.OnRouteSchedule, cfg.Delivery.DeliveredSchedule)
		},
		func(
			repo *repository.DeliveryRepo,
			runs *repository.RunStore,
			orders *ordersgw.RetryingGateway,
			checkpoints []delivery.Checkpoint,
			cfg *config.Config,
			loc *time.Location,
			m schedulerMetrics,
			logger logx.Logger,
		) *delivery.Scheduler {
			return delivery.NewScheduler(repo, runs, orders, checkpoints, delivery.SchedulerOptions{
				Capacity:       cfg.Delivery.CapacityPerDay,
				Tick:           cfg.Delivery.TickInterval,
				Location:       loc,
				Advanced:       m.Advanced,
				NotifyFailures: m.NotifyFailures,
			}, logger)
		},
		func(logger logx.Logger, svc *delivery.Service) *handlers.DeliveryHandler {
			return handlers.NewDeliveryHandler(logger, svc)
		},
	)
	if err != nil {
		return err
	}
	if err := provideGroup(container, "routes", func(h *handlers.DeliveryHandler) router.Routes {
		return router.Deliveries(h)
	}); err != nil {
		return err
	}
	return provideGroup(container, "tasks", func(s *delivery.Scheduler) Task {
		return Task{Name: "delivery-scheduler", Run: s.Run}
	})
}
