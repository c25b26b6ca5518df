package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateCurrency(t *testing.T) {
	t.Parallel()

	if err := ValidateCurrency("bdt"); err != nil {
		t.Fatalf("expected uppercase conversion to succeed, got %v", err)
	}

	if err := ValidateCurrency("XYZ"); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}

	if !IsValidation(ValidateCurrency("")) {
		t.Fatalf("expected empty currency to be a validation error")
	}
}

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	if err := ValidateAmount(decimal.NewFromFloat(100.25), "BDT"); err != nil {
		t.Fatalf("expected valid amount, got %v", err)
	}

	if err := ValidateAmount(decimal.Zero, "BDT"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero, got %v", err)
	}

	if err := ValidateAmount(decimal.NewFromInt(-5), "BDT"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for negative, got %v", err)
	}

	if err := ValidateAmount(decimal.RequireFromString("0.004"), "BDT"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for sub-cent amount, got %v", err)
	}

	if err := ValidateAmount(decimal.RequireFromString("10.5"), "JPY"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for fractional yen, got %v", err)
	}

	tooLarge := decimal.RequireFromString(MaxLedgerAmount).Add(decimal.NewFromInt(1))
	if err := ValidateAmount(tooLarge, "BDT"); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}
}

func TestValidateMetadata(t *testing.T) {
	t.Parallel()

	if err := ValidateMetadata(nil); err != nil {
		t.Fatalf("nil metadata should be valid, got %v", err)
	}

	big := map[string]any{"blob": strings.Repeat("x", MaxMetadataSize+1)}
	if err := ValidateMetadata(big); !errors.Is(err, ErrMetadataTooLarge) {
		t.Fatalf("expected ErrMetadataTooLarge, got %v", err)
	}
}

func TestValidateFilter(t *testing.T) {
	t.Parallel()

	if err := ValidateFilter(TransactionFilter{}); err != nil {
		t.Fatalf("empty filter should be valid, got %v", err)
	}

	ok := TransactionFilter{
		Type:      TransactionTypeCommissionPayout,
		ValueType: ValueTypeMoney,
		Direction: DirectionOutflow,
		Status:    TransactionStatusCompleted,
	}
	if err := ValidateFilter(ok); err != nil {
		t.Fatalf("expected valid filter, got %v", err)
	}

	if err := ValidateFilter(TransactionFilter{Direction: "sideways"}); !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
}

func TestValidatePage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		page, perPage int
		limit, offset int
	}{
		{1, 10, 10, 0},
		{3, 10, 10, 20},
		{0, 0, DefaultPageSize, 0},
		{2, 1000, MaxPageSize, MaxPageSize},
	}

	for _, tt := range tests {
		limit, offset := ValidatePage(tt.page, tt.perPage)
		if limit != tt.limit || offset != tt.offset {
			t.Errorf("ValidatePage(%d,%d) = (%d,%d), want (%d,%d)", tt.page, tt.perPage, limit, offset, tt.limit, tt.offset)
		}
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	limit, offset, err := ValidatePagination(-1, -5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limit != DefaultPageSize || offset != 0 {
		t.Fatalf("expected defaults, got limit=%d offset=%d", limit, offset)
	}

	limit, _, _ = ValidatePagination(5000, 0)
	if limit != MaxReportPageSize {
		t.Fatalf("expected limit to be clamped to %d, got %d", MaxReportPageSize, limit)
	}
}
