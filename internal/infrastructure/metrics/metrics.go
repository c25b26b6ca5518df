package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/iho/mlmledger/internal/domain"
)

const namespace = "mlmledger"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	TransactionsBooked *prometheus.CounterVec
	TransactionAmount  *prometheus.HistogramVec

	// Commission metrics
	SharesCreated        prometheus.Counter
	CommissionsPaid      prometheus.Counter
	CommissionPaidAmount prometheus.Counter
	CommissionFailures   *prometheus.CounterVec
	SweepRuns            *prometheus.CounterVec

	// Order metrics
	OrdersProcessed     *prometheus.CounterVec
	FulfillmentFailures prometheus.Counter

	// Leadership metrics
	Promotions *prometheus.CounterVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec

	// API metrics
	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	HTTPInFlight  prometheus.Gauge
	RateLimitHits prometheus.Counter
	AuthFailures  *prometheus.CounterVec
}

// New creates all metrics and registers them with reg. A nil reg selects the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		TransactionsBooked: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transactions_booked_total",
				Help:      "Total number of ledger transactions booked by type",
			},
			[]string{"type"},
		),
		TransactionAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transaction_amount",
				Help:      "Ledger transaction amounts by type",
				Buckets:   []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"type"},
		),

		SharesCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revenue_shares_created_total",
			Help:      "Total number of generation revenue shares created",
		}),
		CommissionsPaid: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commissions_paid_total",
			Help:      "Total number of commission payouts",
		}),
		CommissionPaidAmount: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commissions_paid_amount_total",
			Help:      "Sum of commission payout amounts",
		}),
		CommissionFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commission_payout_failures_total",
				Help:      "Total number of failed commission payouts by reason",
			},
			[]string{"reason"},
		),
		SweepRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commission_sweep_runs_total",
				Help:      "Commission sweep runs by outcome",
			},
			[]string{"outcome"},
		),

		OrdersProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "orders_processed_total",
				Help:      "Total number of processed orders by resulting status",
			},
			[]string{"status"},
		),
		FulfillmentFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fulfillment_failures_total",
			Help:      "Total number of failed fulfillment attempts",
		}),

		Promotions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "user_promotions_total",
				Help:      "Total number of leadership promotions by new level",
			},
			[]string{"level"},
		),

		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outbox_events_total",
				Help:      "Outbox events handled by type and result",
			},
			[]string{"event_type", "result"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		}),
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Total requests rejected by the rate limiter",
		}),
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_failures_total",
				Help:      "Total authentication failures",
			},
			[]string{"reason"},
		),
	}
}

// TransactionBooked records a booked ledger transaction.
func (m *Metrics) TransactionBooked(txType domain.TransactionType, amount decimal.Decimal) {
	m.TransactionsBooked.WithLabelValues(string(txType)).Inc()
	m.TransactionAmount.WithLabelValues(string(txType)).Observe(amount.InexactFloat64())
}

// RevenueSharesCreated records newly created revenue shares.
func (m *Metrics) RevenueSharesCreated(count int) {
	m.SharesCreated.Add(float64(count))
}

// CommissionPaid records a settled commission.
func (m *Metrics) CommissionPaid(amount decimal.Decimal) {
	m.CommissionsPaid.Inc()
	m.CommissionPaidAmount.Add(amount.InexactFloat64())
}

// CommissionPayoutFailed records a failed payout.
func (m *Metrics) CommissionPayoutFailed(reason string) {
	m.CommissionFailures.WithLabelValues(reason).Inc()
}

// OrderProcessed records the status an order ended in.
func (m *Metrics) OrderProcessed(status domain.OrderStatus) {
	m.OrdersProcessed.WithLabelValues(string(status)).Inc()
}

// FulfillmentFailed records a failed fulfillment attempt.
func (m *Metrics) FulfillmentFailed() {
	m.FulfillmentFailures.Inc()
}

// UserPromoted records a promotion to level.
func (m *Metrics) UserPromoted(level int) {
	m.Promotions.WithLabelValues(strconv.Itoa(level)).Inc()
}

// SweepRun records a commission sweep outcome (ran, skipped, failed).
func (m *Metrics) SweepRun(outcome string) {
	m.SweepRuns.WithLabelValues(outcome).Inc()
}

// EventPublished records an outbox publish attempt.
func (m *Metrics) EventPublished(eventType string, err error) {
	result := "published"
	if err != nil {
		result = "failed"
	}
	m.EventsPublished.WithLabelValues(eventType, result).Inc()
}
