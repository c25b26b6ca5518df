package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// JournalLine is a requested journal entry before it is persisted.
type JournalLine struct {
	AccountID string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Currency  string
}

// zero-decimal currencies; everything else rounds to cents.
var minorUnits = map[string]int32{
	"JPY": 0,
	"KRW": 0,
}

// MinorUnits returns the number of decimal places used by currency.
func MinorUnits(currency string) int32 {
	if places, ok := minorUnits[strings.ToUpper(currency)]; ok {
		return places
	}
	return 2
}

// RoundToCurrency rounds d to the currency's minor unit.
func RoundToCurrency(d decimal.Decimal, currency string) decimal.Decimal {
	return d.Round(MinorUnits(currency))
}

// FitsMinorUnit reports whether d carries no more decimal places than the currency allows.
func FitsMinorUnit(d decimal.Decimal, currency string) bool {
	return d.Equal(RoundToCurrency(d, currency))
}

// Validate checks a single line: exactly one side positive, the other zero,
// and neither finer than the currency's minor unit.
func (l JournalLine) Validate(currency string) error {
	if l.AccountID == "" {
		return ErrInvalidJournalLine
	}
	if l.Debit.IsNegative() || l.Credit.IsNegative() {
		return ErrInvalidJournalLine
	}
	if l.Debit.IsPositive() == l.Credit.IsPositive() {
		return ErrInvalidJournalLine
	}
	if !FitsMinorUnit(l.Debit, currency) || !FitsMinorUnit(l.Credit, currency) {
		return fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidJournalLine, l.AccountID, MinorUnits(currency))
	}
	return nil
}

// CheckBalanced validates every line and returns ErrUnbalancedJournal when Σdebit != Σcredit.
// Lines are already at the minor unit, so the sums are compared exactly.
func CheckBalanced(lines []JournalLine, currency string) error {
	debits, credits := decimal.Zero, decimal.Zero
	for _, l := range lines {
		if err := l.Validate(currency); err != nil {
			return err
		}
		debits = debits.Add(l.Debit)
		credits = credits.Add(l.Credit)
	}

	if !debits.Equal(credits) {
		return ErrUnbalancedJournal
	}
	return nil
}

// TwoLegJournal builds the canonical transfer journal: credit the source, debit the destination.
func TwoLegJournal(fromAccountID, toAccountID string, amount decimal.Decimal, currency string) []JournalLine {
	return []JournalLine{
		{AccountID: toAccountID, Debit: amount, Credit: decimal.Zero, Currency: currency},
		{AccountID: fromAccountID, Debit: decimal.Zero, Credit: amount, Currency: currency},
	}
}
