package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestOrderStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPendingPayment, OrderStatusPaid, true},
		{OrderStatusPaid, OrderStatusProcessing, true},
		{OrderStatusProcessing, OrderStatusCompleted, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusCompleted, OrderStatusProcessing, false},
		{OrderStatusCancelled, OrderStatusPaid, false},
		{OrderStatusPaid, OrderStatusCompleted, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestOrder_Transition(t *testing.T) {
	now := time.Now()
	o := &Order{Status: OrderStatusPaid}

	if err := o.Transition(OrderStatusProcessing, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Status != OrderStatusProcessing || !o.UpdatedAt.Equal(now) {
		t.Fatalf("transition not applied: %+v", o)
	}

	if err := o.Transition(OrderStatusPaid, now); !errors.Is(err, ErrInvalidOrderTransition) {
		t.Fatalf("expected ErrInvalidOrderTransition, got %v", err)
	}
}

func TestOrderStatus_IsProcessed(t *testing.T) {
	if OrderStatusPaid.IsProcessed() {
		t.Error("paid orders have not been processed yet")
	}
	if !OrderStatusProcessing.IsProcessed() || !OrderStatusCompleted.IsProcessed() {
		t.Error("processing and completed orders are processed")
	}
}

func TestRevenueShare_MarkPaid(t *testing.T) {
	s := &RevenueShare{Status: RevenueShareStatusPending, Amount: decimal.NewFromInt(100)}
	now := time.Now()

	if err := s.MarkPaid("tx-1", now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.IsPaid() || s.PayoutTransactionID != "tx-1" || s.PaidAt == nil {
		t.Fatalf("share not marked paid: %+v", s)
	}

	err := s.MarkPaid("tx-2", now)
	if !errors.Is(err, ErrRevenueShareAlreadyPaid) || !IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if s.PayoutTransactionID != "tx-1" {
		t.Fatalf("second MarkPaid must not overwrite payout id")
	}
}

func TestShareAmount(t *testing.T) {
	base := decimal.NewFromInt(1000)
	pcts := DefaultGenerationPercentages()
	want := []string{"100", "80", "70", "60", "50", "40", "30", "20", "10", "10"}

	for i, p := range pcts {
		got := ShareAmount(base, p, "BDT")
		if !got.Equal(decimal.RequireFromString(want[i])) {
			t.Errorf("generation %d: got %s, want %s", i+1, got, want[i])
		}
	}

	if got := ShareAmount(decimal.RequireFromString("33.33"), decimal.NewFromInt(7), "BDT"); !got.Equal(decimal.RequireFromString("2.33")) {
		t.Errorf("expected rounding to cents, got %s", got)
	}
}

func TestValidatePercentages(t *testing.T) {
	if err := ValidatePercentages(DefaultGenerationPercentages()); err != nil {
		t.Fatalf("default table must be valid: %v", err)
	}

	if err := ValidatePercentages([]decimal.Decimal{decimal.NewFromInt(-1)}); !errors.Is(err, ErrInvalidPercentages) {
		t.Fatalf("expected ErrInvalidPercentages, got %v", err)
	}

	if err := ValidatePercentages([]decimal.Decimal{decimal.NewFromInt(60), decimal.NewFromInt(41)}); !errors.Is(err, ErrInvalidPercentages) {
		t.Fatalf("expected sum > 100 to be rejected, got %v", err)
	}
}

func TestErrorClasses(t *testing.T) {
	if !IsNotFound(ErrUserNotFound) || !IsNotFound(ErrRevenueShareNotFound) || !IsNotFound(ErrPaymentNotFound) {
		t.Error("not-found errors must wrap ErrNotFound")
	}
	if !IsValidation(ErrWalletMismatch) || !IsValidation(ErrUnbalancedJournal) {
		t.Error("validation errors must wrap ErrValidation")
	}
	if !IsConflict(ErrOrderAlreadyProcessed) || IsValidation(ErrRevenueShareAlreadyPaid) {
		t.Error("conflicts must only wrap ErrConflict")
	}
}
