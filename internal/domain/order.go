package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus follows pending_payment → paid → processing → completed, with cancelled as an exit.
type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusPaid           OrderStatus = "paid"
	OrderStatusProcessing     OrderStatus = "processing"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCompleted      OrderStatus = "completed"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPendingPayment: {OrderStatusPaid, OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusPaid:           {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing:     {OrderStatusShipped, OrderStatusDelivered, OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusShipped:        {OrderStatusDelivered, OrderStatusCompleted},
	OrderStatusDelivered:      {OrderStatusCompleted},
}

// CanTransition reports whether from → to is allowed.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsProcessed reports whether the financial leg already ran for an order in this status.
func (s OrderStatus) IsProcessed() bool {
	switch s {
	case OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCompleted:
		return true
	}
	return false
}

// PaymentStatus is the gateway outcome of a payment attempt.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusSuccess  PaymentStatus = "success"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Order aggregates purchased items for one customer.
type Order struct {
	ID          string
	UserID      string
	Status      OrderStatus
	TotalAmount decimal.Decimal
	Currency    string
	Items       []*OrderItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Transition moves the order to status to or fails with ErrInvalidOrderTransition.
func (o *Order) Transition(to OrderStatus, at time.Time) error {
	if !o.Status.CanTransition(to) {
		return ErrInvalidOrderTransition
	}
	o.Status = to
	o.UpdatedAt = at
	return nil
}

// OrderItem is one purchased line.
type OrderItem struct {
	ID         string
	OrderID    string
	ProductID  string
	VendorID   string
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// Payment is a gateway payment attempt against an order.
type Payment struct {
	ID        string
	OrderID   string
	Amount    decimal.Decimal
	Currency  string
	Status    PaymentStatus
	Gateway   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsSuccessful reports whether the payment cleared.
func (p *Payment) IsSuccessful() bool { return p.Status == PaymentStatusSuccess }

// FulfillmentItemResult is the per-item outcome reported by the fulfillment collaborator.
type FulfillmentItemResult struct {
	OrderItemID string
	Success     bool
	Message     string
}

// FulfillmentResult is the outcome of a fulfillment attempt.
type FulfillmentResult struct {
	Success bool
	Items   []FulfillmentItemResult
	Error   string
}
