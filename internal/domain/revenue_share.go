package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RevenueShareStatus is pending until the payout transaction is booked.
type RevenueShareStatus string

const (
	RevenueShareStatusPending RevenueShareStatus = "pending"
	RevenueShareStatusPaid    RevenueShareStatus = "paid"
)

// RevenueShare is a commission owed to one upline user for one purchase at one generation.
type RevenueShare struct {
	ID                  string
	RecipientID         string
	OriginTransactionID string
	OrderItemID         string
	GenerationLevel     int
	Amount              decimal.Decimal
	Currency            string
	Status              RevenueShareStatus
	PayoutTransactionID string
	PaidAt              *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsPaid reports whether the share was already settled.
func (s *RevenueShare) IsPaid() bool { return s.Status == RevenueShareStatusPaid }

// MarkPaid flips the share to paid. It fails with a conflict when already paid.
func (s *RevenueShare) MarkPaid(payoutTxID string, at time.Time) error {
	if s.IsPaid() {
		return ErrRevenueShareAlreadyPaid
	}
	s.Status = RevenueShareStatusPaid
	s.PayoutTransactionID = payoutTxID
	s.PaidAt = &at
	s.UpdatedAt = at
	return nil
}

// ShareAmount computes base * pct / 100 rounded to the currency's minor unit.
func ShareAmount(base, pct decimal.Decimal, currency string) decimal.Decimal {
	return RoundToCurrency(base.Mul(pct).Div(decimal.NewFromInt(100)), currency)
}

// ValidatePercentages rejects negative entries and tables whose sum exceeds 100.
func ValidatePercentages(pcts []decimal.Decimal) error {
	total := decimal.Zero
	for _, p := range pcts {
		if p.IsNegative() {
			return ErrInvalidPercentages
		}
		total = total.Add(p)
	}
	if total.GreaterThan(decimal.NewFromInt(100)) {
		return ErrInvalidPercentages
	}
	return nil
}

// DefaultGenerationPercentages is the ten-generation payout table.
func DefaultGenerationPercentages() []decimal.Decimal {
	raw := []int64{10, 8, 7, 6, 5, 4, 3, 2, 1, 1}
	out := make([]decimal.Decimal, len(raw))
	for i, v := range raw {
		out[i] = decimal.NewFromInt(v)
	}
	return out
}

// CommissionFilter narrows a recipient's commission history.
type CommissionFilter struct {
	Status          RevenueShareStatus
	GenerationLevel int
	From            *time.Time
	To              *time.Time
}

// CommissionTotals aggregates shares for one order.
type CommissionTotals struct {
	Total        decimal.Decimal
	PaidCount    int
	PendingCount int
}
