package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fulfillment-platform/internal/http/handlers"
	mw "fulfillment-platform/internal/http/middleware"
	"fulfillment-platform/internal/logx"
)

// Routes mounts one service's endpoints.
type Routes func(chi.Router)

// Options configures the shared router.
type Options struct {
	Logger   logx.Logger
	Metrics  mw.HTTPMetrics
	Gatherer prometheus.Gatherer
	Timeout  time.Duration
}

// New constructs a chi-based http.Handler with base middleware, the shared
// service endpoints and the given routes.
func New(h *handlers.Handlers, opts Options, routes ...Routes) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logx.Nop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Observability(logger, opts.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/ping", h.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(h.HealthcheckHead))
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	r.NotFound(http.HandlerFunc(h.NotFound))

	for _, mount := range routes {
		mount(r)
	}
	return r
}

// Inventory mounts the stock ledger RPC and product admin endpoints.
func Inventory(h *handlers.InventoryHandler) Routes {
	return func(r chi.Router) {
		r.Route("/inventory", func(r chi.Router) {
			r.Post("/buy", h.Buy)
			r.Post("/rollback", h.Rollback)
			r.Post("/restock", h.Restock)
			r.Post("/decrease", h.Decrease)
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Post("/", h.CreateProduct)
			r.Get("/{id}", h.GetProduct)
			r.Post("/{id}/restock", h.RestockProduct)
		})
	}
}

// Orders mounts the order ledger endpoints.
func Orders(h *handlers.OrderHandler) Routes {
	return func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.Create)
			r.Get("/{id}", h.Get)
			r.Post("/{id}/cancel", h.Cancel)
			r.Get("/{id}/persisted", h.Persisted)
			r.Get("/{id}/canceled", h.Canceled)
			r.Put("/{id}/status", h.UpdateStatus)
		})
	}
}

// Deliveries mounts the delivery endpoints.
func Deliveries(h *handlers.DeliveryHandler) Routes {
	return func(r chi.Router) {
		r.Route("/deliveries", func(r chi.Router) {
			r.Post("/", h.Create)
			r.Post("/cancel", h.Cancel)
			r.Get("/{id}", h.Get)
			r.Delete("/{id}", h.Delete)
			r.Post("/{id}/restore", h.Restore)
		})
	}
}
