package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/mlmledger/internal/domain"
	"github.com/iho/mlmledger/internal/usecase"
)

const transactionColumns = `id, user_id, wallet_id, type, value_type, amount, currency, direction, status,
	related_kind, related_id, metadata, old_balance, new_balance, created_at, updated_at`

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	pool Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create inserts the transaction header. Journal lines are written separately.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	metadata, err := marshalJSON(t.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	_, err = conn(r.pool, tx).Exec(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`,
		t.ID,
		nullableText(t.UserID),
		nullableText(t.WalletID),
		string(t.Type),
		string(t.ValueType),
		decimalToNumeric(t.Amount),
		t.Currency,
		string(t.Direction),
		string(t.Status),
		string(t.Related.Kind),
		t.Related.ID,
		metadata,
		nullableDecimal(t.OldBalance),
		nullableDecimal(t.NewBalance),
		timeToPgTimestamptz(t.CreatedAt),
		timeToPgTimestamptz(t.UpdatedAt),
	)

	return err
}

// GetByID retrieves a transaction header by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	t, err := scanTransaction(r.pool.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrTransactionNotFound, id)
	}

	return t, err
}

// ListByUser returns one page of the user's transactions, newest first, and
// the total number of matches.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID string, filter domain.TransactionFilter, limit, offset int) ([]*domain.Transaction, int, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}

	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		where = append(where, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("type", string(filter.Type))
	add("value_type", string(filter.ValueType))
	add("direction", string(filter.Direction))
	add("status", string(filter.Status))

	clause := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM transactions
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, transactionColumns, clause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}

	return out, total, rows.Err()
}

// SumAmount totals transactions of one type and status created in [from, to].
func (r *TransactionRepository) SumAmount(ctx context.Context, txType domain.TransactionType, status domain.TransactionStatus, from, to *time.Time) (decimal.Decimal, error) {
	var sum pgtype.Numeric

	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE type = $1 AND status = $2
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
		  AND ($4::timestamptz IS NULL OR created_at <= $4)
	`, string(txType), string(status), nullableTime(from), nullableTime(to)).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		t                              domain.Transaction
		userID, walletID               pgtype.Text
		txType, valueType, direction   string
		status, relatedKind            string
		amount, oldBalance, newBalance pgtype.Numeric
		metadata                       []byte
		createdAt, updatedAt           pgtype.Timestamptz
	)

	err := row.Scan(
		&t.ID,
		&userID,
		&walletID,
		&txType,
		&valueType,
		&amount,
		&t.Currency,
		&direction,
		&status,
		&relatedKind,
		&t.Related.ID,
		&metadata,
		&oldBalance,
		&newBalance,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.UserID = userID.String
	t.WalletID = walletID.String
	t.Type = domain.TransactionType(txType)
	t.ValueType = domain.ValueType(valueType)
	t.Direction = domain.Direction(direction)
	t.Status = domain.TransactionStatus(status)
	t.Related.Kind = domain.RelatedKind(relatedKind)
	t.Amount = numericToDecimal(amount)
	t.Metadata = unmarshalJSON(metadata)
	t.OldBalance = numericToDecimalPtr(oldBalance)
	t.NewBalance = numericToDecimalPtr(newBalance)
	t.CreatedAt = createdAt.Time
	t.UpdatedAt = updatedAt.Time

	return &t, nil
}

// JournalRepository implements usecase.JournalRepository.
type JournalRepository struct {
	pool Pool
}

// NewJournalRepository creates a new JournalRepository.
func NewJournalRepository(pool Pool) *JournalRepository {
	return &JournalRepository{pool: pool}
}

// Create appends one journal line.
func (r *JournalRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	_, err := conn(r.pool, tx).Exec(ctx, `
		INSERT INTO journal_entries (id, transaction_id, account_id, debit, credit, currency, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		entry.ID,
		entry.TransactionID,
		entry.AccountID,
		decimalToNumeric(entry.Debit),
		decimalToNumeric(entry.Credit),
		entry.Currency,
		timeToPgTimestamptz(entry.CreatedAt),
	)

	return err
}

// GetByTransaction returns the lines of a transaction in insertion order.
func (r *JournalRepository) GetByTransaction(ctx context.Context, transactionID string) ([]*domain.JournalEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, transaction_id, account_id, debit, credit, currency, created_at
		FROM journal_entries
		WHERE transaction_id = $1
		ORDER BY created_at, id
	`, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.JournalEntry
	for rows.Next() {
		var (
			e             domain.JournalEntry
			debit, credit pgtype.Numeric
			createdAt     pgtype.Timestamptz
		)
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.AccountID, &debit, &credit, &e.Currency, &createdAt); err != nil {
			return nil, err
		}
		e.Debit = numericToDecimal(debit)
		e.Credit = numericToDecimal(credit)
		e.CreatedAt = createdAt.Time
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// SumByAccount recomputes Σ(debit − credit) for an account.
func (r *JournalRepository) SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	var sum pgtype.Numeric

	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(debit - credit), 0)
		FROM journal_entries
		WHERE account_id = $1
	`, accountID).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}
