package domain

import "time"

// Event types
const (
	EventTypeTransactionCreated  = "transaction.created"
	EventTypeRevenueShareCreated = "revenue_share.created"
	EventTypeRevenueSharePaid    = "revenue_share.paid"
	EventTypeOrderProcessing     = "order.processing"
	EventTypeOrderCompleted      = "order.completed"
	EventTypeUserPromoted        = "user.promoted"
)

// Aggregate types
const (
	AggregateTypeTransaction  = "transaction"
	AggregateTypeRevenueShare = "revenue_share"
	AggregateTypeOrder        = "order"
	AggregateTypeUser         = "user"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// TransactionCreatedPayload builds the transaction.created payload.
func TransactionCreatedPayload(t *Transaction) map[string]any {
	return map[string]any{
		"transaction_id": t.ID,
		"user_id":        t.UserID,
		"type":           string(t.Type),
		"amount":         t.Amount.String(),
		"currency":       t.Currency,
		"direction":      string(t.Direction),
		"entries":        len(t.Entries),
	}
}

// RevenueSharePayload builds revenue_share.* payloads.
func RevenueSharePayload(s *RevenueShare) map[string]any {
	p := map[string]any{
		"revenue_share_id":      s.ID,
		"recipient_id":          s.RecipientID,
		"origin_transaction_id": s.OriginTransactionID,
		"generation_level":      s.GenerationLevel,
		"amount":                s.Amount.String(),
		"status":                string(s.Status),
	}
	if s.PayoutTransactionID != "" {
		p["payout_transaction_id"] = s.PayoutTransactionID
	}
	return p
}

// OrderPayload builds order.* payloads.
func OrderPayload(o *Order) map[string]any {
	return map[string]any{
		"order_id":     o.ID,
		"user_id":      o.UserID,
		"status":       string(o.Status),
		"total_amount": o.TotalAmount.String(),
	}
}

// UserPromotedPayload builds the user.promoted payload.
func UserPromotedPayload(u *User, from int) map[string]any {
	return map[string]any{
		"user_id":         u.ID,
		"from_level":      from,
		"to_level":        u.LeadershipID,
		"designation":     u.Designation,
		"direct_referral": u.TotalDirectReferrals,
	}
}
