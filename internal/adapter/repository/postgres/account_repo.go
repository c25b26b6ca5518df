package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/mlmledger/internal/domain"
	"github.com/iho/mlmledger/internal/usecase"
)

const accountColumns = `id, user_id, wallet_type, purpose, currency, balance, version, active, created_at, updated_at`

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	return r.CreateTx(ctx, nil, account)
}

// CreateTx inserts the account, returning domain.ErrAccountExists when the
// owner already holds a wallet of that type and purpose. The insert never
// raises, so the caller's transaction stays usable.
func (r *AccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	tag, err := conn(r.pool, tx).Exec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, wallet_type, purpose) DO NOTHING
	`,
		account.ID,
		account.UserID,
		string(account.WalletType),
		string(account.Purpose),
		account.Currency,
		decimalToNumeric(account.Balance),
		account.Version,
		account.Active,
		timeToPgTimestamptz(account.CreatedAt),
		timeToPgTimestamptz(account.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAccountExists
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountExists
	}

	return nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	account, err := scanAccount(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}

	return account, err
}

// GetByIDsForUpdate locks the accounts in id order.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	rows, err := conn(r.pool, tx).Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`, ids)
	if err != nil {
		return nil, err
	}

	return collectAccounts(rows)
}

// FindByUserAndType returns the user's wallet of the given type.
func (r *AccountRepository) FindByUserAndType(ctx context.Context, tx usecase.Transaction, userID string, walletType domain.WalletType) (*domain.Account, error) {
	account, err := scanAccount(conn(r.pool, tx).QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE user_id = $1 AND wallet_type = $2 AND purpose = ''
	`, userID, string(walletType)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}

	return account, err
}

// FindSystemAccount returns the platform account tagged with purpose.
func (r *AccountRepository) FindSystemAccount(ctx context.Context, tx usecase.Transaction, userID string, purpose domain.SystemPurpose) (*domain.Account, error) {
	account, err := scanAccount(conn(r.pool, tx).QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE user_id = $1 AND purpose = $2
	`, userID, string(purpose)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}

	return account, err
}

// UpdateBalance updates the cached balance of an account.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	tag, err := conn(r.pool, tx).Exec(ctx, `
		UPDATE accounts
		SET balance = $2, version = version + 1, updated_at = $3
		WHERE id = $1
	`, id, decimalToNumeric(balance), timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}

	return nil
}

// List lists accounts with pagination.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		ORDER BY id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}

	return collectAccounts(rows)
}

func collectAccounts(rows pgx.Rows) ([]*domain.Account, error) {
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		a                   domain.Account
		walletType, purpose string
		balance             pgtype.Numeric
		createdAt, updated  pgtype.Timestamptz
	)

	err := row.Scan(
		&a.ID,
		&a.UserID,
		&walletType,
		&purpose,
		&a.Currency,
		&balance,
		&a.Version,
		&a.Active,
		&createdAt,
		&updated,
	)
	if err != nil {
		return nil, err
	}

	a.WalletType = domain.WalletType(walletType)
	a.Purpose = domain.SystemPurpose(purpose)
	a.Balance = numericToDecimal(balance)
	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updated.Time

	return &a, nil
}

// BalanceRepository implements usecase.BalanceRepository.
type BalanceRepository struct {
	pool Pool
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(pool Pool) *BalanceRepository {
	return &BalanceRepository{pool: pool}
}

// Upsert writes the balance snapshot of an account.
func (r *BalanceRepository) Upsert(ctx context.Context, tx usecase.Transaction, balance *domain.AccountBalance) error {
	_, err := conn(r.pool, tx).Exec(ctx, `
		INSERT INTO account_balances (account_id, balance, currency, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_id) DO UPDATE
		SET balance = EXCLUDED.balance, currency = EXCLUDED.currency, updated_at = EXCLUDED.updated_at
	`, balance.AccountID, decimalToNumeric(balance.Balance), balance.Currency, timeToPgTimestamptz(balance.UpdatedAt))

	return err
}

// GetByAccountID returns the balance snapshot of an account.
func (r *BalanceRepository) GetByAccountID(ctx context.Context, accountID string) (*domain.AccountBalance, error) {
	var (
		b         domain.AccountBalance
		balance   pgtype.Numeric
		updatedAt pgtype.Timestamptz
	)

	err := r.pool.QueryRow(ctx, `
		SELECT account_id, balance, currency, updated_at
		FROM account_balances
		WHERE account_id = $1
	`, accountID).Scan(&b.AccountID, &balance, &b.Currency, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBalanceNotFound
	}
	if err != nil {
		return nil, err
	}

	b.Balance = numericToDecimal(balance)
	b.UpdatedAt = updatedAt.Time

	return &b, nil
}
