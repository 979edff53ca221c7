package main

import (
	"context"
	"os/signal"
	"syscall"

	"fulfillment-platform/internal/app"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	container := app.NewContainerBuilder().MustBuild(ctx, app.ServiceWorker)
	app.NewWorkerRunner().MustRun(container)
}
