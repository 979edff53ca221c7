package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"
	"golang.org/x/sync/errgroup"

	"fulfillment-platform/internal/logx"
)

const shutdownTimeout = 15 * time.Second

// Runner runs an HTTP service together with its background tasks
type Runner struct {
	runFn  func(*dig.Container) error
	fatalf func(string, ...interface{})
}

// NewRunner returns a new Runner
func NewRunner() *Runner {
	return &Runner{runFn: run, fatalf: log.Fatalf}
}

// MustRun starts the service using the provided DI container
func (r *Runner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil {
		return
	}

	logger := logx.Nop()
	_ = container.Invoke(func(l logx.Logger) { logger = l })

	switch {
	case errors.Is(err, context.Canceled):
		logger.Info("shutdown requested, exiting")
	case errors.Is(err, context.DeadlineExceeded):
		logger.Info("startup aborted: startup timeout exceeded")
	default:
		r.fatalf("run error: %v", err)
	}
}

type runIn struct {
	dig.In

	Ctx     context.Context
	Service Service `optional:"true"`
	Server  *http.Server
	Pool    *pgxpool.Pool
	Logger  logx.Logger
	Tasks   []Task   `group:"tasks"`
	Closers []Closer `group:"closers"`
}

func run(container *dig.Container) error {
	return container.Invoke(appRun)
}

func appRun(in runIn) error {
	g, ctx := errgroup.WithContext(in.Ctx)

	g.Go(func() error { return startServer(in.Server, in.Logger, in.Service) })
	for _, t := range in.Tasks {
		t := t
		g.Go(func() error { return runTask(ctx, in.Logger, t) })
	}
	g.Go(func() error {
		<-ctx.Done()
		in.Logger.Info("shutting down", logx.String("service", string(in.Service)))
		gracefulShutdown(in.Server, in.Logger, shutdownTimeout)
		return nil
	})

	err := g.Wait()
	closeResources(in.Pool, in.Server, in.Logger, in.Closers)
	if err != nil {
		return err
	}
	return in.Ctx.Err()
}

func startServer(server *http.Server, logger logx.Logger, svc Service) error {
	logger.Info("listening", logx.String("service", string(svc)), logx.String("addr", server.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

func runTask(ctx context.Context, logger logx.Logger, t Task) error {
	logger.Info("background task started", logx.String("task", t.Name))
	err := t.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", t.Name, err)
	}
	logger.Info("background task stopped", logx.String("task", t.Name))
	return nil
}

func gracefulShutdown(srv *http.Server, logger logx.Logger, timeout time.Duration) {
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Error("graceful shutdown error", logx.Err(err))
	}
}

func closeResources(pool *pgxpool.Pool, server *http.Server, logger logx.Logger, closers []Closer) {
	if server != nil {
		if err := server.Close(); err != nil {
			logger.Error("server close error", logx.Err(err))
		}
	}
	for _, c := range closers {
		if err := c(); err != nil {
			logger.Error("resource close error", logx.Err(err))
		}
	}
	if pool != nil {
		pool.Close()
	}
}
