package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"fulfillment-platform/internal/config"
	"fulfillment-platform/internal/http/handlers"
	mw "fulfillment-platform/internal/http/middleware"
	"fulfillment-platform/internal/http/router"
	"fulfillment-platform/internal/logx"
	"fulfillment-platform/internal/repository"
)

// Service names a binary built from this module.
type Service string

// List of binaries
const (
	ServiceInventory Service = "service-inventory"
	ServiceOrders    Service = "service-orders"
	ServiceDelivery  Service = "service-delivery"
	ServiceWorker    Service = "worker"
)

const useCaseTimeout = 3 * time.Second

type (
	dbConnectFunc    func(context.Context, logx.Logger, string, int, time.Duration) (*pgxpool.Pool, error)
	redisConnectFunc func(context.Context, string, int) (*redis.Client, error)
)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	loadConfig   func() (*config.Config, error)
	dbConnect    dbConnectFunc
	migrate      func(context.Context, *pgxpool.Pool) error
	redisConnect redisConnectFunc
	logFatalf    func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		loadConfig:   config.Load,
		dbConnect:    connectDbWithRetry,
		migrate:      repository.EnsureSchema,
		redisConnect: repository.NewRedisClient,
		logFatalf:    log.Fatalf,
	}
}

// WithConfig replaces config loading with a fixed config
func (b *ContainerBuilder) WithConfig(cfg *config.Config) *ContainerBuilder {
	if cfg != nil {
		b.loadConfig = func() (*config.Config, error) { return cfg, nil }
	}
	return b
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(fn dbConnectFunc) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithMigrate sets the schema migration function
func (b *ContainerBuilder) WithMigrate(fn func(context.Context, *pgxpool.Pool) error) *ContainerBuilder {
	if fn != nil {
		b.migrate = fn
	}
	return b
}

// WithRedisConnect sets the redis connection function
func (b *ContainerBuilder) WithRedisConnect(fn redisConnectFunc) *ContainerBuilder {
	if fn != nil {
		b.redisConnect = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds and returns a new dig container for svc
func (b *ContainerBuilder) MustBuild(ctx context.Context, svc Service) *dig.Container {
	container, err := b.build(ctx, svc)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

// build builds and returns a new dig container
func (b *ContainerBuilder) build(ctx context.Context, svc Service) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx, svc, b.loadConfig); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect, b.migrate); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerMetrics(container); err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	var err error
	switch svc {
	case ServiceInventory:
		err = registerInventory(container)
	case ServiceOrders:
		err = registerOrders(container)
	case ServiceDelivery:
		if err = registerRedis(container, b.redisConnect); err == nil {
			err = registerDelivery(container)
		}
	case ServiceWorker:
		err = registerWorker(container)
	default:
		return nil, fmt.Errorf("unknown service %q", svc)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", svc, err)
	}

	if svc != ServiceWorker {
		if err := registerHTTP(container); err != nil {
			return nil, fmt.Errorf("http: %w", err)
		}
	}
	return container, nil
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func provideGroup(container *dig.Container, group string, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider, dig.Group(group)); err != nil {
			return fmt.Errorf("provide %T to %s: %w", provider, group, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context, svc Service, loadConfig func() (*config.Config, error)) error {
	return provideAll(container,
		func() context.Context { return ctx },
		func() Service { return svc },
		loadConfig,
		func(cfg *config.Config) logx.Logger {
			return NewLogger(cfg.Log).With(logx.String("service", string(svc)))
		},
		prometheus.NewRegistry,
	)
}

func registerDb(container *dig.Container, dbConnect dbConnectFunc, migrate func(context.Context, *pgxpool.Pool) error) error {
	providerDB := func(ctx context.Context, cfg *config.Config, logger logx.Logger) (*pgxpool.Pool, error) {
		pool, err := dbConnect(ctx, logger, cfg.DB.DSN(), 10, time.Second)
		if err != nil {
			return nil, err
		}
		if err := migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return pool, nil
	}
	return provideAll(container, providerDB)
}

type redisOut struct {
	dig.Out

	Client *redis.Client
	Closer Closer `group:"closers"`
}

func registerRedis(container *dig.Container, connect redisConnectFunc) error {
	return provideAll(container, func(ctx context.Context, cfg *config.Config) (redisOut, error) {
		rdb, err := connect(ctx, cfg.Redis.Addr, cfg.Redis.DB)
		if err != nil {
			return redisOut{}, fmt.Errorf("redis: %w", err)
		}
		return redisOut{Client: rdb, Closer: rdb.Close}, nil
	})
}

type routerIn struct {
	dig.In

	Base     *handlers.Handlers
	Logger   logx.Logger
	Metrics  mw.HTTPMetrics
	Registry *prometheus.Registry
	Routes   []router.Routes `group:"routes"`
}

func registerHTTP(container *dig.Container) error {
	routerProvider := func(in routerIn) http.Handler {
		return router.New(in.Base, router.Options{
			Logger:   in.Logger,
			Metrics:  in.Metrics,
			Gatherer: in.Registry,
		}, in.Routes...)
	}
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	return provideAll(container,
		handlers.New,
		routerProvider,
		serverProvider,
	)
}
