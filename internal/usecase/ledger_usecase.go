package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInconsistentLedger is returned when the ledger is not balanced.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: debits do not equal credits")
)

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerRepo LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo: ledgerRepo,
	}
}

// LedgerTotals are the global journal sums.
type LedgerTotals struct {
	TotalDebits  decimal.Decimal
	TotalCredits decimal.Decimal
	Consistent   bool
}

// CheckConsistency verifies that Σdebit == Σcredit over every journal entry.
// The totals are returned alongside ErrInconsistentLedger so operators can see the gap.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*LedgerTotals, error) {
	debits, credits, err := uc.ledgerRepo.CheckConsistency(ctx)
	if err != nil {
		return nil, err
	}

	totals := &LedgerTotals{
		TotalDebits:  debits,
		TotalCredits: credits,
		Consistent:   debits.Equal(credits),
	}

	if !totals.Consistent {
		return totals, fmt.Errorf("%w: debits=%s credits=%s difference=%s",
			ErrInconsistentLedger, debits, credits, debits.Sub(credits))
	}

	return totals, nil
}
