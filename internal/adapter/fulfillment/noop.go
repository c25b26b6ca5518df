package fulfillment

import (
	"context"

	"github.com/iho/mlmledger/internal/domain"
)

// Noop fulfills every item immediately. It is used when no fulfillment
// service is configured.
type Noop struct{}

// ProcessOrderFulfillment reports success for every item of the order.
func (Noop) ProcessOrderFulfillment(_ context.Context, order *domain.Order) (*domain.FulfillmentResult, error) {
	result := &domain.FulfillmentResult{Success: true}
	for _, item := range order.Items {
		result.Items = append(result.Items, domain.FulfillmentItemResult{OrderItemID: item.ID, Success: true})
	}
	return result, nil
}
