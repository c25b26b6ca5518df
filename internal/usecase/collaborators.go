package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/mlmledger/internal/domain"
)

//go:generate mockgen -source=collaborators.go -destination=mocks/mock_collaborators.go -package=mocks

// FulfillmentService delivers goods or services for a paid order.
type FulfillmentService interface {
	ProcessOrderFulfillment(ctx context.Context, order *domain.Order) (*domain.FulfillmentResult, error)
}

// SweepLock serializes commission sweeps across instances.
type SweepLock interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// MetricsRecorder receives business counters from the use cases.
type MetricsRecorder interface {
	TransactionBooked(txType domain.TransactionType, amount decimal.Decimal)
	RevenueSharesCreated(count int)
	CommissionPaid(amount decimal.Decimal)
	CommissionPayoutFailed(reason string)
	OrderProcessed(status domain.OrderStatus)
	FulfillmentFailed()
	UserPromoted(level int)
}

type noopMetrics struct{}

func (noopMetrics) TransactionBooked(domain.TransactionType, decimal.Decimal) {}
func (noopMetrics) RevenueSharesCreated(int)                                  {}
func (noopMetrics) CommissionPaid(decimal.Decimal)                            {}
func (noopMetrics) CommissionPayoutFailed(string)                             {}
func (noopMetrics) OrderProcessed(domain.OrderStatus)                         {}
func (noopMetrics) FulfillmentFailed()                                        {}
func (noopMetrics) UserPromoted(int)                                          {}
