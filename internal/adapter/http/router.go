package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/mlmledger/internal/adapter/http/handler"
	"github.com/iho/mlmledger/internal/adapter/http/middleware"
	"github.com/iho/mlmledger/internal/domain"
	"github.com/iho/mlmledger/internal/infrastructure/metrics"
	"github.com/iho/mlmledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	OrderHandler       *handler.OrderHandler
	CommissionHandler  *handler.CommissionHandler
	TransactionHandler *handler.TransactionHandler
	UserHandler        *handler.UserHandler
	ReportHandler      *handler.ReportHandler
	HealthHandler      *handler.HealthHandler

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	Metrics          *metrics.Metrics
	RateLimiter      *middleware.RateLimiter
	Logger           zerolog.Logger

	// Gatherer serves /metrics. Nil selects the default gatherer.
	Gatherer prometheus.Gatherer

	// TokenVerifier enables bearer auth on /api/v1 when set.
	TokenVerifier middleware.TokenVerifier
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}

		authEnabled := cfg.TokenVerifier != nil
		if authEnabled {
			r.Use(middleware.AuthMiddleware(cfg.TokenVerifier, cfg.Metrics))
		}

		// Idempotency runs after auth so unauthenticated calls never claim a key
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.Logger).WithTTL(cfg.IdempotencyTTL).Wrap)
		}

		role := func(min domain.Role) func(http.Handler) http.Handler {
			if !authEnabled {
				return func(next http.Handler) http.Handler { return next }
			}
			return middleware.RequireRole(min)
		}

		// Reads
		r.Group(func(r chi.Router) {
			r.Use(role(domain.RoleViewer))

			r.Get("/orders/{id}/status", cfg.OrderHandler.Status)
			r.Get("/users/{id}/transactions", cfg.TransactionHandler.ListByUser)
			r.Get("/users/{id}/commissions", cfg.CommissionHandler.ListByUser)
			r.Get("/transactions/{id}/flow", cfg.TransactionHandler.Flow)
			r.Get("/reports/summary", cfg.ReportHandler.Summary)
			r.Get("/ledger/consistency", cfg.ReportHandler.Consistency)
			r.Get("/accounts/{id}/reconcile", cfg.ReportHandler.ReconcileAccount)
			r.Get("/reports/reconciliation", cfg.ReportHandler.Reconciliation)
			r.Get("/users/{id}/upline", cfg.UserHandler.Upline)
		})

		// Order processing
		r.Group(func(r chi.Router) {
			r.Use(role(domain.RoleOperator))

			r.Post("/payments/{id}/process", cfg.OrderHandler.ProcessPayment)
			r.Post("/orders/{id}/fulfillment/retry", cfg.OrderHandler.RetryFulfillment)
		})

		// Money movement and graph changes
		r.Group(func(r chi.Router) {
			r.Use(role(domain.RoleAdmin))

			r.Post("/commissions/sweep", cfg.CommissionHandler.Sweep)
			r.Post("/revenue-shares/{id}/pay", cfg.CommissionHandler.Pay)
			r.Post("/transfers", cfg.TransactionHandler.Transfer)
			r.Post("/users/{id}/referrer", cfg.UserHandler.AttachReferrer)
			r.Post("/users/{id}/leadership/evaluate", cfg.UserHandler.EvaluateLeadership)
		})
	})

	return r
}
