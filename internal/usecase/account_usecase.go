package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/mlmledger/internal/domain"
)

// AccountUseCase is the wallet directory: user wallets and the platform system accounts.
type AccountUseCase struct {
	accountRepo    AccountRepository
	userRepo       UserRepository
	balanceRepo    BalanceRepository
	idGen          IDGenerator
	platformUserID string
	currency       string

	mu     sync.Mutex
	system *domain.SystemAccounts
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	accountRepo AccountRepository,
	userRepo UserRepository,
	balanceRepo BalanceRepository,
	idGen IDGenerator,
	platformUserID string,
	currency string,
) *AccountUseCase {
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	return &AccountUseCase{
		accountRepo:    accountRepo,
		userRepo:       userRepo,
		balanceRepo:    balanceRepo,
		idGen:          idGen,
		platformUserID: platformUserID,
		currency:       domain.NormalizeCurrency(currency),
	}
}

// Currency is the ledger's default currency.
func (uc *AccountUseCase) Currency() string { return uc.currency }

// FindOrCreateWallet returns the user's wallet of the given type, creating an
// empty one when missing. The user must exist.
func (uc *AccountUseCase) FindOrCreateWallet(ctx context.Context, userID string, walletType domain.WalletType, currency string) (*domain.Account, error) {
	return uc.FindOrCreateWalletTx(ctx, nil, userID, walletType, currency)
}

// FindOrCreateWalletTx is FindOrCreateWallet inside the caller's unit of work.
func (uc *AccountUseCase) FindOrCreateWalletTx(ctx context.Context, tx Transaction, userID string, walletType domain.WalletType, currency string) (*domain.Account, error) {
	if !walletType.Valid() {
		return nil, domain.ErrInvalidWallet
	}

	if currency == "" {
		currency = uc.currency
	}
	currency = domain.NormalizeCurrency(currency)
	if err := domain.ValidateCurrency(currency); err != nil {
		return nil, err
	}

	if _, err := uc.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	wallet, err := uc.accountRepo.FindByUserAndType(ctx, tx, userID, walletType)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	wallet = uc.newAccount(userID, walletType, domain.PurposeNone, currency)
	if err := uc.create(ctx, tx, wallet); err != nil {
		if errors.Is(err, domain.ErrAccountExists) {
			return uc.accountRepo.FindByUserAndType(ctx, tx, userID, walletType)
		}
		return nil, err
	}

	return wallet, nil
}

// FindWalletByUserAndType returns an existing wallet and never creates one.
func (uc *AccountUseCase) FindWalletByUserAndType(ctx context.Context, userID string, walletType domain.WalletType) (*domain.Account, error) {
	return uc.FindWalletByUserAndTypeTx(ctx, nil, userID, walletType)
}

// FindWalletByUserAndTypeTx is FindWalletByUserAndType inside the caller's unit of work.
func (uc *AccountUseCase) FindWalletByUserAndTypeTx(ctx context.Context, tx Transaction, userID string, walletType domain.WalletType) (*domain.Account, error) {
	if !walletType.Valid() {
		return nil, domain.ErrInvalidWallet
	}

	wallet, err := uc.accountRepo.FindByUserAndType(ctx, tx, userID, walletType)
	if err != nil {
		return nil, fmt.Errorf("%s wallet of user %s: %w", walletType, userID, err)
	}

	return wallet, nil
}

// SystemAccounts returns the platform wallets, creating them on first use.
func (uc *AccountUseCase) SystemAccounts(ctx context.Context) (*domain.SystemAccounts, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.system != nil {
		return uc.system, nil
	}

	revenue, err := uc.systemAccount(ctx, domain.PurposeRevenue, domain.WalletTypeMoney)
	if err != nil {
		return nil, err
	}

	pool, err := uc.systemAccount(ctx, domain.PurposeCommissionPool, domain.WalletTypeCommission)
	if err != nil {
		return nil, err
	}

	holding, err := uc.systemAccount(ctx, domain.PurposeWithdrawalHolding, domain.WalletTypeMoney)
	if err != nil {
		return nil, err
	}

	uc.system = &domain.SystemAccounts{
		Revenue:           revenue,
		CommissionPool:    pool,
		WithdrawalHolding: holding,
	}

	return uc.system, nil
}

func (uc *AccountUseCase) systemAccount(ctx context.Context, purpose domain.SystemPurpose, walletType domain.WalletType) (*domain.Account, error) {
	acc, err := uc.accountRepo.FindSystemAccount(ctx, nil, uc.platformUserID, purpose)
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	acc = uc.newAccount(uc.platformUserID, walletType, purpose, uc.currency)
	if err := uc.accountRepo.Create(ctx, acc); err != nil {
		if errors.Is(err, domain.ErrAccountExists) {
			return uc.accountRepo.FindSystemAccount(ctx, nil, uc.platformUserID, purpose)
		}
		return nil, fmt.Errorf("create %s system account: %w", purpose, err)
	}

	return acc, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// GetBalance returns the balance snapshot of an account.
func (uc *AccountUseCase) GetBalance(ctx context.Context, accountID string) (*domain.AccountBalance, error) {
	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	bal, err := uc.balanceRepo.GetByAccountID(ctx, accountID)
	if errors.Is(err, domain.ErrBalanceNotFound) {
		// no journal entry has touched the account yet
		return &domain.AccountBalance{AccountID: accountID, Balance: decimal.Zero, Currency: uc.currency}, nil
	}

	return bal, err
}

func (uc *AccountUseCase) newAccount(userID string, walletType domain.WalletType, purpose domain.SystemPurpose, currency string) *domain.Account {
	now := time.Now().UTC()

	return &domain.Account{
		ID:         uc.idGen.Generate(),
		UserID:     userID,
		WalletType: walletType,
		Purpose:    purpose,
		Currency:   currency,
		Balance:    decimal.Zero,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (uc *AccountUseCase) create(ctx context.Context, tx Transaction, account *domain.Account) error {
	if tx == nil {
		return uc.accountRepo.Create(ctx, account)
	}
	return uc.accountRepo.CreateTx(ctx, tx, account)
}
