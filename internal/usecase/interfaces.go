package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/mlmledger/internal/domain"
)

// Repository methods that take a Transaction accept nil to run outside a unit of work.

// UserRepository defines data access for the referral graph.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.User, error)
	UpdateReferral(ctx context.Context, tx Transaction, user *domain.User) error
	IncrementDirectReferrals(ctx context.Context, tx Transaction, id string, updatedAt time.Time) error
	UpdateLeadership(ctx context.Context, tx Transaction, id string, leadershipID int, designation string, updatedAt time.Time) error
}

// AccountRepository defines data access for wallets.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	CreateTx(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	FindByUserAndType(ctx context.Context, tx Transaction, userID string, walletType domain.WalletType) (*domain.Account, error)
	FindSystemAccount(ctx context.Context, tx Transaction, userID string, purpose domain.SystemPurpose) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// BalanceRepository defines data access for account balance snapshots.
type BalanceRepository interface {
	Upsert(ctx context.Context, tx Transaction, balance *domain.AccountBalance) error
	GetByAccountID(ctx context.Context, accountID string) (*domain.AccountBalance, error)
}

// TransactionRepository defines data access for ledger transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, t *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	ListByUser(ctx context.Context, userID string, filter domain.TransactionFilter, limit, offset int) ([]*domain.Transaction, int, error)
	SumAmount(ctx context.Context, txType domain.TransactionType, status domain.TransactionStatus, from, to *time.Time) (decimal.Decimal, error)
}

// JournalRepository defines data access for journal entries.
type JournalRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.JournalEntry) error
	GetByTransaction(ctx context.Context, transactionID string) ([]*domain.JournalEntry, error)
	SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error)
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	CheckConsistency(ctx context.Context) (totalDebits, totalCredits decimal.Decimal, err error)
}

// RevenueShareRepository defines data access for commissions.
type RevenueShareRepository interface {
	CreateBatch(ctx context.Context, tx Transaction, shares []*domain.RevenueShare) error
	GetByID(ctx context.Context, id string) (*domain.RevenueShare, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.RevenueShare, error)
	// MarkPaid only flips shares that are still pending and returns
	// domain.ErrRevenueShareAlreadyPaid otherwise.
	MarkPaid(ctx context.Context, tx Transaction, id, payoutTransactionID string, paidAt time.Time) error
	ListPending(ctx context.Context, limit int) ([]*domain.RevenueShare, error)
	ListByRecipient(ctx context.Context, recipientID string, filter domain.CommissionFilter, limit, offset int) ([]*domain.RevenueShare, int, error)
	TotalsByOrder(ctx context.Context, orderID string) (domain.CommissionTotals, error)
	SumAmount(ctx context.Context, status domain.RevenueShareStatus, from, to *time.Time) (decimal.Decimal, error)
}

// OrderRepository defines data access for orders.
type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.OrderStatus, updatedAt time.Time) error
}

// PaymentRepository defines data access for payments.
type PaymentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
}

// DesignationRepository defines data access for the leadership ladder.
type DesignationRepository interface {
	GetByLevel(ctx context.Context, level int) (*domain.Designation, error)
}

// LeadershipStatsRepository answers the metrics designation targets test.
type LeadershipStatsRepository interface {
	CountDirectReferrals(ctx context.Context, userID string) (int64, error)
	CountActiveDirectReferrals(ctx context.Context, userID string) (int64, error)
	CountTeam(ctx context.Context, userID string) (int64, error)
	PersonalSales(ctx context.Context, userID string) (decimal.Decimal, error)
	TeamSales(ctx context.Context, userID string) (decimal.Decimal, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction. Begin opens a nested
// transaction (savepoint) that can be rolled back on its own.
type Transaction interface {
	Begin(ctx context.Context) (Transaction, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier retries a whole unit of work on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IdempotencyStore remembers responses to mutating API calls by client key.
type IdempotencyStore interface {
	// CheckAndSet claims key with a placeholder when it is free.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update replaces the placeholder with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release frees a claimed key so the request can be retried.
	Release(ctx context.Context, key string) error
}
