package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidCurrency  = fmt.Errorf("%w: invalid currency code", ErrValidation)
	ErrAmountTooLarge   = fmt.Errorf("%w: amount exceeds maximum allowed", ErrValidation)
	ErrMetadataTooLarge = fmt.Errorf("%w: metadata size exceeds limit", ErrValidation)
	ErrInvalidWallet    = fmt.Errorf("%w: invalid wallet type", ErrValidation)
	ErrInvalidFilter    = fmt.Errorf("%w: invalid filter", ErrValidation)
)

// Validation constants
const (
	MaxMetadataSize   = 10240           // 10KB
	MaxLedgerAmount   = "1000000000000" // 1 trillion
	DefaultCurrency   = "BDT"
	DefaultPageSize   = 20
	MaxPageSize       = 100
	MaxReportPageSize = 1000
)

// Valid currency codes (ISO 4217) plus the POINTS pseudo-currency.
var validCurrencies = map[string]bool{
	"BDT": true, "USD": true, "EUR": true, "GBP": true,
	"INR": true, "JPY": true, "KRW": true, "SGD": true,
	"AED": true, "MYR": true, "CAD": true, "AUD": true,
	"PTS": true,
}

// NormalizeCurrency upper-cases and trims a currency code.
func NormalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

// ValidateCurrency validates currency code
func ValidateCurrency(currency string) error {
	currency = NormalizeCurrency(currency)

	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s is not supported", ErrInvalidCurrency, currency)
	}

	return nil
}

// ValidateAmount requires a strictly positive amount within the ledger ceiling,
// expressed in whole minor units of currency.
func ValidateAmount(amount decimal.Decimal, currency string) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if !FitsMinorUnit(amount, currency) {
		return fmt.Errorf("%w: %s has more than %d decimal places for %s", ErrInvalidAmount, amount, MinorUnits(currency), currency)
	}

	maxAmount, _ := decimal.NewFromString(MaxLedgerAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxLedgerAmount)
	}

	return nil
}

// ValidateMetadata validates metadata size
func ValidateMetadata(metadata map[string]any) error {
	if metadata == nil {
		return nil
	}

	// Estimate size (rough approximation)
	size := 0
	for k, v := range metadata {
		size += len(k)
		size += len(fmt.Sprintf("%v", v))
	}

	if size > MaxMetadataSize {
		return fmt.Errorf("%w: metadata size %d bytes exceeds limit of %d bytes", ErrMetadataTooLarge, size, MaxMetadataSize)
	}

	return nil
}

// ValidateFilter rejects unknown enum values in a transaction filter. Empty fields match everything.
func ValidateFilter(f TransactionFilter) error {
	switch f.Type {
	case "", TransactionTypePurchase, TransactionTypeWithdrawal, TransactionTypeCommissionPayout,
		TransactionTypeTransfer, TransactionTypeRefund, TransactionTypeDeposit, TransactionTypeAdjustment:
	default:
		return fmt.Errorf("%w: type %q", ErrInvalidFilter, f.Type)
	}

	switch f.ValueType {
	case "", ValueTypeMoney, ValueTypePoints:
	default:
		return fmt.Errorf("%w: value type %q", ErrInvalidFilter, f.ValueType)
	}

	switch f.Direction {
	case "", DirectionInflow, DirectionOutflow:
	default:
		return fmt.Errorf("%w: direction %q", ErrInvalidFilter, f.Direction)
	}

	switch f.Status {
	case "", TransactionStatusPending, TransactionStatusCompleted, TransactionStatusFailed, TransactionStatusCancelled:
	default:
		return fmt.Errorf("%w: status %q", ErrInvalidFilter, f.Status)
	}

	return nil
}

// ValidatePage converts a 1-based page/perPage pair into limit/offset.
func ValidatePage(page, perPage int) (limit, offset int) {
	if page < 1 {
		page = 1
	}

	if perPage <= 0 {
		perPage = DefaultPageSize
	}

	if perPage > MaxPageSize {
		perPage = MaxPageSize
	}

	return perPage, (page - 1) * perPage
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxReportPageSize {
		limit = MaxReportPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
