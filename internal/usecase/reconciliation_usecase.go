package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/mlmledger/internal/domain"
)

// ReconciliationUseCase handles balance reconciliation operations
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	balanceRepo BalanceRepository
	journalRepo JournalRepository
	ledger      *LedgerUseCase
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	accountRepo AccountRepository,
	balanceRepo BalanceRepository,
	journalRepo JournalRepository,
	ledgerRepo LedgerRepository,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo: accountRepo,
		balanceRepo: balanceRepo,
		journalRepo: journalRepo,
		ledger:      NewLedgerUseCase(ledgerRepo),
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	AccountID         string
	RecordedBalance   decimal.Decimal
	SnapshotBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	IsReconciled      bool
	LastChecked       time.Time
}

// ReconcileAccount recomputes Σ(debit − credit) from the journal and compares it
// with the cached balance and the balance snapshot.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID string) (*ReconciliationResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return uc.reconcile(ctx, account)
}

func (uc *ReconciliationUseCase) reconcile(ctx context.Context, account *domain.Account) (*ReconciliationResult, error) {
	calculated, err := uc.journalRepo.SumByAccount(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("sum journal of account %s: %w", account.ID, err)
	}

	snapshot := decimal.Zero
	bal, err := uc.balanceRepo.GetByAccountID(ctx, account.ID)
	switch {
	case err == nil:
		snapshot = bal.Balance
	case !errors.Is(err, domain.ErrBalanceNotFound):
		return nil, fmt.Errorf("balance snapshot of account %s: %w", account.ID, err)
	}

	return &ReconciliationResult{
		AccountID:         account.ID,
		RecordedBalance:   account.Balance,
		SnapshotBalance:   snapshot,
		CalculatedBalance: calculated,
		Difference:        account.Balance.Sub(calculated),
		IsReconciled:      account.Balance.Equal(calculated) && snapshot.Equal(calculated),
		LastChecked:       time.Now().UTC(),
	}, nil
}

// ReconcileAllAccounts reconciles all accounts in the system
func (uc *ReconciliationUseCase) ReconcileAllAccounts(ctx context.Context) ([]*ReconciliationResult, error) {
	limit, _, _ := domain.ValidatePagination(domain.MaxReportPageSize, 0)

	var results []*ReconciliationResult
	for offset := 0; ; offset += limit {
		accounts, err := uc.accountRepo.List(ctx, limit, offset)
		if err != nil {
			return nil, err
		}

		for _, account := range accounts {
			result, err := uc.reconcile(ctx, account)
			if err != nil {
				return nil, fmt.Errorf("failed to reconcile account %s: %w", account.ID, err)
			}
			results = append(results, result)
		}

		if len(accounts) < limit {
			break
		}
	}

	return results, nil
}

// CheckLedgerConsistency verifies double-entry bookkeeping consistency
func (uc *ReconciliationUseCase) CheckLedgerConsistency(ctx context.Context) (*LedgerTotals, error) {
	return uc.ledger.CheckConsistency(ctx)
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	LedgerConsistent   bool
	Totals             *LedgerTotals
	CheckedAt          time.Time
}

// GenerateReconciliationReport generates a comprehensive reconciliation report
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	results, err := uc.ReconcileAllAccounts(ctx)
	if err != nil {
		return nil, err
	}

	totals, ledgerErr := uc.ledger.CheckConsistency(ctx)
	if ledgerErr != nil && !errors.Is(ledgerErr, ErrInconsistentLedger) {
		return nil, ledgerErr
	}

	report := &ReconciliationReport{
		TotalAccounts:    len(results),
		Discrepancies:    make([]*ReconciliationResult, 0),
		LedgerConsistent: ledgerErr == nil,
		Totals:           totals,
		CheckedAt:        time.Now().UTC(),
	}

	for _, result := range results {
		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, nil
}
