package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/mlmledger/internal/domain"
)

// TransactionUseCase books balanced transactions and answers ledger queries.
type TransactionUseCase struct {
	txManager   TransactionManager
	retrier     Retrier
	userRepo    UserRepository
	accountRepo AccountRepository
	balanceRepo BalanceRepository
	txRepo      TransactionRepository
	journalRepo JournalRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	metrics     MetricsRecorder
	logger      zerolog.Logger
	currency    string
}

// TransactionDeps groups the collaborators of TransactionUseCase.
type TransactionDeps struct {
	TxManager   TransactionManager
	Retrier     Retrier
	UserRepo    UserRepository
	AccountRepo AccountRepository
	BalanceRepo BalanceRepository
	TxRepo      TransactionRepository
	JournalRepo JournalRepository
	OutboxRepo  OutboxRepository
	IDGen       IDGenerator
	Metrics     MetricsRecorder
	Logger      zerolog.Logger
	Currency    string
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(deps TransactionDeps) *TransactionUseCase {
	if deps.Metrics == nil {
		deps.Metrics = noopMetrics{}
	}
	if deps.Currency == "" {
		deps.Currency = domain.DefaultCurrency
	}

	return &TransactionUseCase{
		txManager:   deps.TxManager,
		retrier:     deps.Retrier,
		userRepo:    deps.UserRepo,
		accountRepo: deps.AccountRepo,
		balanceRepo: deps.BalanceRepo,
		txRepo:      deps.TxRepo,
		journalRepo: deps.JournalRepo,
		outboxRepo:  deps.OutboxRepo,
		idGen:       deps.IDGen,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		currency:    domain.NormalizeCurrency(deps.Currency),
	}
}

// CreateTransactionInput describes a transaction and its journal lines.
type CreateTransactionInput struct {
	UserID    string
	WalletID  string
	Type      domain.TransactionType
	ValueType domain.ValueType
	Amount    decimal.Decimal
	Currency  string
	Direction domain.Direction
	Related   domain.RelatedEntity
	Metadata  map[string]any
	Entries   []domain.JournalLine
}

// CreateTransactionWithJournal validates and books a transaction with its
// journal entries in one unit of work. Nothing is persisted when any step fails.
func (uc *TransactionUseCase) CreateTransactionWithJournal(ctx context.Context, input CreateTransactionInput) (*domain.Transaction, error) {
	if err := uc.validate(&input); err != nil {
		return nil, err
	}

	if err := uc.resolveOwner(ctx, input); err != nil {
		return nil, err
	}

	var booked *domain.Transaction
	err := runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		var err error
		booked, err = uc.book(ctx, tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.TransactionBooked(booked.Type, booked.Amount)
	uc.logger.Info().
		Str("transaction_id", booked.ID).
		Str("type", string(booked.Type)).
		Str("amount", booked.Amount.String()).
		Int("entries", len(booked.Entries)).
		Msg("transaction booked")

	return booked, nil
}

// CreateTransactionWithJournalTx books a transaction inside the caller's unit of work.
func (uc *TransactionUseCase) CreateTransactionWithJournalTx(ctx context.Context, tx Transaction, input CreateTransactionInput) (*domain.Transaction, error) {
	if err := uc.validate(&input); err != nil {
		return nil, err
	}

	if err := uc.resolveOwner(ctx, input); err != nil {
		return nil, err
	}

	booked, err := uc.book(ctx, tx, input)
	if err != nil {
		return nil, err
	}

	uc.metrics.TransactionBooked(booked.Type, booked.Amount)

	return booked, nil
}

// CreateSimpleTransferInput moves amount from one account to another.
type CreateSimpleTransferInput struct {
	UserID        string
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Currency      string
	Type          domain.TransactionType
	ValueType     domain.ValueType
	Related       domain.RelatedEntity
	Metadata      map[string]any
}

// CreateSimpleTransfer books the canonical two-line journal: credit source, debit destination.
func (uc *TransactionUseCase) CreateSimpleTransfer(ctx context.Context, input CreateSimpleTransferInput) (*domain.Transaction, error) {
	if input.FromAccountID == input.ToAccountID {
		return nil, domain.ErrSameAccount
	}

	currency := input.Currency
	if currency == "" {
		currency = uc.currency
	}

	txType := input.Type
	if txType == "" {
		txType = domain.TransactionTypeTransfer
	}

	valueType := input.ValueType
	if valueType == "" {
		valueType = domain.ValueTypeMoney
	}

	return uc.CreateTransactionWithJournal(ctx, CreateTransactionInput{
		UserID:    input.UserID,
		WalletID:  input.FromAccountID,
		Type:      txType,
		ValueType: valueType,
		Amount:    input.Amount,
		Currency:  currency,
		Direction: domain.DirectionOutflow,
		Related:   input.Related,
		Metadata:  input.Metadata,
		Entries:   domain.TwoLegJournal(input.FromAccountID, input.ToAccountID, input.Amount, currency),
	})
}

// validate runs every check that needs no storage. It normalizes currencies in place.
func (uc *TransactionUseCase) validate(input *CreateTransactionInput) error {
	if input.Currency == "" {
		input.Currency = uc.currency
	}
	input.Currency = domain.NormalizeCurrency(input.Currency)
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return err
	}

	if err := domain.ValidateAmount(input.Amount, input.Currency); err != nil {
		return err
	}

	if err := domain.ValidateFilter(domain.TransactionFilter{
		Type:      input.Type,
		ValueType: input.ValueType,
		Direction: input.Direction,
	}); err != nil {
		return err
	}
	if input.Type == "" || input.ValueType == "" || input.Direction == "" {
		return fmt.Errorf("%w: type, value type and direction are required", domain.ErrValidation)
	}

	if err := domain.ValidateMetadata(input.Metadata); err != nil {
		return err
	}

	for i := range input.Entries {
		if input.Entries[i].Currency == "" {
			input.Entries[i].Currency = input.Currency
		}
		if domain.NormalizeCurrency(input.Entries[i].Currency) != input.Currency {
			return domain.ErrCurrencyMismatch
		}
	}

	if len(input.Entries) > 0 {
		if err := domain.CheckBalanced(input.Entries, input.Currency); err != nil {
			return err
		}
	}

	return nil
}

func (uc *TransactionUseCase) resolveOwner(ctx context.Context, input CreateTransactionInput) error {
	if input.UserID == "" {
		if input.WalletID != "" {
			return domain.ErrWalletMismatch
		}
		return nil
	}

	if _, err := uc.userRepo.GetByID(ctx, input.UserID); err != nil {
		return fmt.Errorf("resolve user %s: %w", input.UserID, err)
	}

	return nil
}

func (uc *TransactionUseCase) book(ctx context.Context, tx Transaction, input CreateTransactionInput) (*domain.Transaction, error) {
	now := time.Now().UTC()

	// Lock touched accounts in sorted order so concurrent writers cannot deadlock.
	accountIDs := collectAccountIDs(input.Entries, input.WalletID)
	accounts := make(map[string]*domain.Account, len(accountIDs))
	if len(accountIDs) > 0 {
		locked, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, accountIDs)
		if err != nil {
			return nil, err
		}
		for _, a := range locked {
			accounts[a.ID] = a
		}
	}

	for _, id := range accountIDs {
		acc, ok := accounts[id]
		if !ok {
			return nil, fmt.Errorf("%w: account %s", domain.ErrAccountNotFound, id)
		}
		if acc.Currency != input.Currency {
			return nil, fmt.Errorf("%w: account %s holds %s", domain.ErrCurrencyMismatch, id, acc.Currency)
		}
	}

	if input.WalletID != "" && accounts[input.WalletID].UserID != input.UserID {
		return nil, fmt.Errorf("%w: wallet %s does not belong to user %s", domain.ErrWalletMismatch, input.WalletID, input.UserID)
	}

	t := &domain.Transaction{
		ID:        uc.idGen.Generate(),
		UserID:    input.UserID,
		WalletID:  input.WalletID,
		Type:      input.Type,
		ValueType: input.ValueType,
		Amount:    input.Amount,
		Currency:  input.Currency,
		Direction: input.Direction,
		Status:    domain.TransactionStatusCompleted,
		Related:   input.Related,
		Metadata:  input.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if wallet, ok := accounts[input.WalletID]; ok {
		oldBalance := wallet.Balance
		newBalance := oldBalance
		for _, l := range input.Entries {
			if l.AccountID == wallet.ID {
				newBalance = newBalance.Add(l.Debit.Sub(l.Credit))
			}
		}
		t.OldBalance = &oldBalance
		t.NewBalance = &newBalance
	}

	if err := uc.txRepo.Create(ctx, tx, t); err != nil {
		return nil, fmt.Errorf("persist transaction: %w", err)
	}

	for _, line := range input.Entries {
		entry := &domain.JournalEntry{
			ID:            uc.idGen.Generate(),
			TransactionID: t.ID,
			AccountID:     line.AccountID,
			Debit:         line.Debit,
			Credit:        line.Credit,
			Currency:      input.Currency,
			CreatedAt:     now,
		}

		if err := uc.journalRepo.Create(ctx, tx, entry); err != nil {
			return nil, fmt.Errorf("persist journal entry for account %s: %w", line.AccountID, err)
		}

		acc := accounts[line.AccountID]
		newBalance := acc.ApplyDelta(entry.Delta())

		if err := uc.accountRepo.UpdateBalance(ctx, tx, acc.ID, newBalance, now); err != nil {
			return nil, fmt.Errorf("update balance of account %s: %w", acc.ID, err)
		}

		if err := uc.balanceRepo.Upsert(ctx, tx, &domain.AccountBalance{
			AccountID: acc.ID,
			Balance:   newBalance,
			Currency:  acc.Currency,
			UpdatedAt: now,
		}); err != nil {
			return nil, fmt.Errorf("upsert balance snapshot of account %s: %w", acc.ID, err)
		}

		acc.Balance = newBalance
		acc.Version++
		t.Entries = append(t.Entries, entry)
	}

	if err := recordEvent(ctx, uc.outboxRepo, uc.idGen, tx,
		domain.AggregateTypeTransaction, t.ID, domain.EventTypeTransactionCreated,
		domain.TransactionCreatedPayload(t),
	); err != nil {
		return nil, err
	}

	return t, nil
}

// TransactionHistoryInput is a paginated, filtered history query.
type TransactionHistoryInput struct {
	UserID         string
	Filter         domain.TransactionFilter
	Page           int
	PerPage        int
	IncludeJournal bool
}

// TransactionHistory is one page of a user's transactions, newest first.
type TransactionHistory struct {
	Transactions []*domain.Transaction
	Total        int
	Page         int
	PerPage      int
}

// GetTransactionHistory lists a user's transactions newest first.
func (uc *TransactionUseCase) GetTransactionHistory(ctx context.Context, input TransactionHistoryInput) (*TransactionHistory, error) {
	if err := domain.ValidateFilter(input.Filter); err != nil {
		return nil, err
	}

	if _, err := uc.userRepo.GetByID(ctx, input.UserID); err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePage(input.Page, input.PerPage)

	txs, total, err := uc.txRepo.ListByUser(ctx, input.UserID, input.Filter, limit, offset)
	if err != nil {
		return nil, err
	}

	if input.IncludeJournal {
		accounts := make(map[string]*domain.Account)
		for _, t := range txs {
			entries, err := uc.loadEntries(ctx, t.ID, accounts)
			if err != nil {
				return nil, err
			}
			t.Entries = entries
		}
	}

	page := input.Page
	if page < 1 {
		page = 1
	}

	return &TransactionHistory{
		Transactions: txs,
		Total:        total,
		Page:         page,
		PerPage:      limit,
	}, nil
}

// GetTransactionFlow returns the credited (from) and debited (to) accounts of a transaction.
func (uc *TransactionUseCase) GetTransactionFlow(ctx context.Context, transactionID string) (*domain.TransactionFlow, error) {
	t, err := uc.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	entries, err := uc.loadEntries(ctx, transactionID, make(map[string]*domain.Account))
	if err != nil {
		return nil, err
	}
	t.Entries = entries

	flow := &domain.TransactionFlow{Transaction: t}
	for _, e := range entries {
		if e.Credit.IsPositive() {
			flow.From = append(flow.From, flowLeg(e.Account, e.Credit))
		}
		if e.Debit.IsPositive() {
			flow.To = append(flow.To, flowLeg(e.Account, e.Debit))
		}
	}

	return flow, nil
}

// loadEntries returns a transaction's journal lines with their accounts attached.
// accounts caches lookups across calls.
func (uc *TransactionUseCase) loadEntries(ctx context.Context, transactionID string, accounts map[string]*domain.Account) ([]*domain.JournalEntry, error) {
	entries, err := uc.journalRepo.GetByTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		acc, ok := accounts[e.AccountID]
		if !ok {
			acc, err = uc.accountRepo.GetByID(ctx, e.AccountID)
			if err != nil {
				return nil, fmt.Errorf("journal account %s: %w", e.AccountID, err)
			}
			accounts[e.AccountID] = acc
		}
		e.Account = acc
	}

	return entries, nil
}

func flowLeg(acc *domain.Account, amount decimal.Decimal) domain.FlowLeg {
	return domain.FlowLeg{
		AccountID:  acc.ID,
		UserID:     acc.UserID,
		WalletType: acc.WalletType,
		Label:      acc.Label(),
		Amount:     amount,
	}
}

func collectAccountIDs(lines []domain.JournalLine, walletID string) []string {
	seen := make(map[string]bool, len(lines)+1)

	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	for _, l := range lines {
		add(l.AccountID)
	}
	add(walletID)

	sort.Strings(ids)

	return ids
}
