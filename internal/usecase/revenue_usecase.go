package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/mlmledger/internal/domain"
)

// RevenueUseCase distributes purchase revenue up the referral chain and settles
// the resulting revenue shares.
type RevenueUseCase struct {
	txManager    TransactionManager
	retrier      Retrier
	userRepo     UserRepository
	txRepo       TransactionRepository
	shareRepo    RevenueShareRepository
	outboxRepo   OutboxRepository
	accounts     *AccountUseCase
	transactions *TransactionUseCase
	idGen        IDGenerator
	metrics      MetricsRecorder
	logger       zerolog.Logger

	percentages []decimal.Decimal
	payFromPool bool
}

// RevenueDeps groups the collaborators of RevenueUseCase.
type RevenueDeps struct {
	TxManager    TransactionManager
	Retrier      Retrier
	UserRepo     UserRepository
	TxRepo       TransactionRepository
	ShareRepo    RevenueShareRepository
	OutboxRepo   OutboxRepository
	Accounts     *AccountUseCase
	Transactions *TransactionUseCase
	IDGen        IDGenerator
	Metrics      MetricsRecorder
	Logger       zerolog.Logger

	// Percentages is the generation payout table; nil selects the default ten generations.
	Percentages []decimal.Decimal
	// PayFromCommissionPool credits payouts to the commission pool instead of the revenue wallet.
	PayFromCommissionPool bool
}

// NewRevenueUseCase creates a new RevenueUseCase.
func NewRevenueUseCase(deps RevenueDeps) (*RevenueUseCase, error) {
	pcts := deps.Percentages
	if len(pcts) == 0 {
		pcts = domain.DefaultGenerationPercentages()
	}
	if err := domain.ValidatePercentages(pcts); err != nil {
		return nil, err
	}

	if deps.Metrics == nil {
		deps.Metrics = noopMetrics{}
	}

	return &RevenueUseCase{
		txManager:    deps.TxManager,
		retrier:      deps.Retrier,
		userRepo:     deps.UserRepo,
		txRepo:       deps.TxRepo,
		shareRepo:    deps.ShareRepo,
		outboxRepo:   deps.OutboxRepo,
		accounts:     deps.Accounts,
		transactions: deps.Transactions,
		idGen:        deps.IDGen,
		metrics:      deps.Metrics,
		logger:       deps.Logger,
		percentages:  pcts,
		payFromPool:  deps.PayFromCommissionPool,
	}, nil
}

// Percentages returns a copy of the configured generation table.
func (uc *RevenueUseCase) Percentages() []decimal.Decimal {
	return append([]decimal.Decimal(nil), uc.percentages...)
}

// DistributeInput describes one distribution run.
type DistributeInput struct {
	OriginUserID string
	Transaction  *domain.Transaction
	// BaseAmount defaults to Transaction.Amount.
	BaseAmount  decimal.Decimal
	OrderItemID string
	// Percentages defaults to the configured table.
	Percentages []decimal.Decimal
}

// DistributeGenerationRevenue loads the origin transaction and creates pending
// shares for the purchaser's upline in its own unit of work.
func (uc *RevenueUseCase) DistributeGenerationRevenue(ctx context.Context, originUserID, transactionID string, percentages []decimal.Decimal) ([]*domain.RevenueShare, error) {
	origin, err := uc.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("origin transaction %s: %w", transactionID, err)
	}

	var shares []*domain.RevenueShare
	err = runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		var err error
		shares, err = uc.DistributeGenerationRevenueTx(ctx, tx, DistributeInput{
			OriginUserID: originUserID,
			Transaction:  origin,
			Percentages:  percentages,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return shares, nil
}

// DistributeGenerationRevenueTx walks the upline from the purchaser and persists
// one pending share per generation. The walk stops at the first user without a
// referrer, or when it revisits a user.
func (uc *RevenueUseCase) DistributeGenerationRevenueTx(ctx context.Context, tx Transaction, input DistributeInput) ([]*domain.RevenueShare, error) {
	if input.Transaction == nil {
		return nil, fmt.Errorf("%w: origin transaction is required", domain.ErrValidation)
	}

	pcts := input.Percentages
	if len(pcts) == 0 {
		pcts = uc.percentages
	} else if err := domain.ValidatePercentages(pcts); err != nil {
		return nil, err
	}

	base := input.BaseAmount
	if base.IsZero() {
		base = input.Transaction.Amount
	}
	currency := input.Transaction.Currency

	current, err := uc.userRepo.GetByID(ctx, input.OriginUserID)
	if err != nil {
		return nil, fmt.Errorf("origin user %s: %w", input.OriginUserID, err)
	}

	now := time.Now().UTC()
	visited := map[string]bool{current.ID: true}

	var shares []*domain.RevenueShare
	for i, pct := range pcts {
		if !current.HasReferrer() {
			break
		}

		if visited[current.ReferredByID] {
			uc.logger.Warn().
				Str("user_id", current.ID).
				Str("referrer_id", current.ReferredByID).
				Str("transaction_id", input.Transaction.ID).
				Msg("referral cycle detected, stopping revenue distribution")
			break
		}

		upline, err := uc.userRepo.GetByID(ctx, current.ReferredByID)
		if errors.Is(err, domain.ErrUserNotFound) {
			uc.logger.Warn().
				Str("user_id", current.ID).
				Str("referrer_id", current.ReferredByID).
				Msg("dangling referrer, stopping revenue distribution")
			break
		}
		if err != nil {
			return nil, fmt.Errorf("upline of user %s: %w", current.ID, err)
		}
		visited[upline.ID] = true
		current = upline

		// A share below one minor unit cannot be paid out; the walk still climbs past it.
		amount := domain.ShareAmount(base, pct, currency)
		if !amount.IsPositive() {
			continue
		}

		shares = append(shares, &domain.RevenueShare{
			ID:                  uc.idGen.Generate(),
			RecipientID:         upline.ID,
			OriginTransactionID: input.Transaction.ID,
			OrderItemID:         input.OrderItemID,
			GenerationLevel:     i + 1,
			Amount:              amount,
			Currency:            currency,
			Status:              domain.RevenueShareStatusPending,
			CreatedAt:           now,
			UpdatedAt:           now,
		})
	}

	if len(shares) == 0 {
		return nil, nil
	}

	if err := uc.shareRepo.CreateBatch(ctx, tx, shares); err != nil {
		return nil, fmt.Errorf("persist revenue shares for transaction %s: %w", input.Transaction.ID, err)
	}

	for _, s := range shares {
		if err := recordEvent(ctx, uc.outboxRepo, uc.idGen, tx,
			domain.AggregateTypeRevenueShare, s.ID, domain.EventTypeRevenueShareCreated,
			domain.RevenueSharePayload(s),
		); err != nil {
			return nil, err
		}
	}

	uc.metrics.RevenueSharesCreated(len(shares))
	uc.logger.Info().
		Str("transaction_id", input.Transaction.ID).
		Str("order_item_id", input.OrderItemID).
		Int("shares", len(shares)).
		Msg("revenue distributed")

	return shares, nil
}

// PayoutResult is a settled share and the transaction that paid it.
type PayoutResult struct {
	Share       *domain.RevenueShare
	Transaction *domain.Transaction
}

// PayRevenueShare settles a pending share in its own unit of work. An empty
// platformWalletID selects the configured platform wallet.
func (uc *RevenueUseCase) PayRevenueShare(ctx context.Context, shareID, platformWalletID string) (*PayoutResult, error) {
	var result *PayoutResult
	err := runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		var err error
		result, err = uc.PayRevenueShareTx(ctx, tx, shareID, platformWalletID)
		return err
	})
	if err != nil {
		uc.metrics.CommissionPayoutFailed(payoutFailureReason(err))
		return nil, err
	}

	uc.metrics.CommissionPaid(result.Share.Amount)

	return result, nil
}

// PayRevenueShareTx books the payout and flips the share to paid in the
// caller's unit of work. Paying a share twice fails with a conflict.
func (uc *RevenueUseCase) PayRevenueShareTx(ctx context.Context, tx Transaction, shareID, platformWalletID string) (*PayoutResult, error) {
	share, err := uc.shareRepo.GetByIDForUpdate(ctx, tx, shareID)
	if err != nil {
		return nil, fmt.Errorf("revenue share %s: %w", shareID, err)
	}

	if share.IsPaid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrRevenueShareAlreadyPaid, shareID)
	}

	wallet, err := uc.accounts.FindWalletByUserAndTypeTx(ctx, tx, share.RecipientID, domain.WalletTypeMoney)
	if err != nil {
		return nil, err
	}

	platformWalletID, err = uc.platformWallet(ctx, platformWalletID)
	if err != nil {
		return nil, err
	}

	payout, err := uc.transactions.CreateTransactionWithJournalTx(ctx, tx, CreateTransactionInput{
		UserID:    share.RecipientID,
		WalletID:  wallet.ID,
		Type:      domain.TransactionTypeCommissionPayout,
		ValueType: domain.ValueTypeMoney,
		Amount:    share.Amount,
		Currency:  share.Currency,
		Direction: domain.DirectionInflow,
		Related:   domain.RelatedTo(domain.RelatedRevenueShare, share.ID),
		Metadata: map[string]any{
			"generation_level":      share.GenerationLevel,
			"origin_transaction_id": share.OriginTransactionID,
		},
		Entries: domain.TwoLegJournal(platformWalletID, wallet.ID, share.Amount, share.Currency),
	})
	if err != nil {
		return nil, fmt.Errorf("book payout for revenue share %s: %w", share.ID, err)
	}

	now := time.Now().UTC()
	if err := uc.shareRepo.MarkPaid(ctx, tx, share.ID, payout.ID, now); err != nil {
		return nil, fmt.Errorf("mark revenue share %s paid: %w", share.ID, err)
	}
	if err := share.MarkPaid(payout.ID, now); err != nil {
		return nil, err
	}

	if err := recordEvent(ctx, uc.outboxRepo, uc.idGen, tx,
		domain.AggregateTypeRevenueShare, share.ID, domain.EventTypeRevenueSharePaid,
		domain.RevenueSharePayload(share),
	); err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("revenue_share_id", share.ID).
		Str("recipient_id", share.RecipientID).
		Str("transaction_id", payout.ID).
		Str("amount", share.Amount.String()).
		Int("generation", share.GenerationLevel).
		Msg("revenue share paid")

	return &PayoutResult{Share: share, Transaction: payout}, nil
}

func (uc *RevenueUseCase) platformWallet(ctx context.Context, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	system, err := uc.accounts.SystemAccounts(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve platform wallet: %w", err)
	}

	if uc.payFromPool {
		return system.CommissionPool.ID, nil
	}

	return system.Revenue.ID, nil
}

func payoutFailureReason(err error) string {
	switch {
	case domain.IsConflict(err):
		return "conflict"
	case domain.IsNotFound(err):
		return "not_found"
	case domain.IsValidation(err):
		return "validation"
	default:
		return "internal"
	}
}
