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

const revenueShareColumns = `id, recipient_id, origin_transaction_id, order_item_id, generation_level, amount,
	currency, status, payout_transaction_id, paid_at, created_at, updated_at`

// RevenueShareRepository implements usecase.RevenueShareRepository.
type RevenueShareRepository struct {
	pool Pool
}

// NewRevenueShareRepository creates a new RevenueShareRepository.
func NewRevenueShareRepository(pool Pool) *RevenueShareRepository {
	return &RevenueShareRepository{pool: pool}
}

// CreateBatch inserts all shares in one round trip.
func (r *RevenueShareRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, shares []*domain.RevenueShare) error {
	if len(shares) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, s := range shares {
		batch.Queue(`
			INSERT INTO revenue_shares (`+revenueShareColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`,
			s.ID,
			s.RecipientID,
			s.OriginTransactionID,
			nullableText(s.OrderItemID),
			s.GenerationLevel,
			decimalToNumeric(s.Amount),
			s.Currency,
			string(s.Status),
			nullableText(s.PayoutTransactionID),
			nullableTime(s.PaidAt),
			timeToPgTimestamptz(s.CreatedAt),
			timeToPgTimestamptz(s.UpdatedAt),
		)
	}

	results := conn(r.pool, tx).SendBatch(ctx, batch)
	for range shares {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return err
		}
	}

	return results.Close()
}

// GetByID retrieves a revenue share by ID.
func (r *RevenueShareRepository) GetByID(ctx context.Context, id string) (*domain.RevenueShare, error) {
	return r.get(ctx, r.pool, `SELECT `+revenueShareColumns+` FROM revenue_shares WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves a revenue share by ID with a FOR UPDATE lock.
func (r *RevenueShareRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.RevenueShare, error) {
	return r.get(ctx, conn(r.pool, tx), `SELECT `+revenueShareColumns+` FROM revenue_shares WHERE id = $1 FOR UPDATE`, id)
}

func (r *RevenueShareRepository) get(ctx context.Context, q querier, query, id string) (*domain.RevenueShare, error) {
	share, err := scanRevenueShare(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrRevenueShareNotFound, id)
	}

	return share, err
}

// MarkPaid flips a pending share to paid. A share that is no longer pending
// is left untouched and reported as already paid.
func (r *RevenueShareRepository) MarkPaid(ctx context.Context, tx usecase.Transaction, id, payoutTransactionID string, paidAt time.Time) error {
	tag, err := conn(r.pool, tx).Exec(ctx, `
		UPDATE revenue_shares
		SET status = $2, payout_transaction_id = $3, paid_at = $4, updated_at = $4
		WHERE id = $1 AND status = $5
	`, id, string(domain.RevenueShareStatusPaid), payoutTransactionID, timeToPgTimestamptz(paidAt), string(domain.RevenueShareStatusPending))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrRevenueShareAlreadyPaid, id)
	}

	return nil
}

// ListPending returns the oldest pending shares.
func (r *RevenueShareRepository) ListPending(ctx context.Context, limit int) ([]*domain.RevenueShare, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+revenueShareColumns+`
		FROM revenue_shares
		WHERE status = $1
		ORDER BY created_at, id
		LIMIT $2
	`, string(domain.RevenueShareStatusPending), limit)
	if err != nil {
		return nil, err
	}

	return collectRevenueShares(rows)
}

// ListByRecipient returns one page of a recipient's shares, newest first, and
// the total number of matches.
func (r *RevenueShareRepository) ListByRecipient(ctx context.Context, recipientID string, filter domain.CommissionFilter, limit, offset int) ([]*domain.RevenueShare, int, error) {
	where := []string{"recipient_id = $1"}
	args := []any{recipientID}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.GenerationLevel > 0 {
		args = append(args, filter.GenerationLevel)
		where = append(where, fmt.Sprintf("generation_level = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, timeToPgTimestamptz(*filter.From))
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, timeToPgTimestamptz(*filter.To))
		where = append(where, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	clause := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM revenue_shares WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM revenue_shares
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, revenueShareColumns, clause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}

	shares, err := collectRevenueShares(rows)

	return shares, total, err
}

// TotalsByOrder sums the shares produced by the order's purchase.
func (r *RevenueShareRepository) TotalsByOrder(ctx context.Context, orderID string) (domain.CommissionTotals, error) {
	var (
		totals domain.CommissionTotals
		sum    pgtype.Numeric
	)

	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(rs.amount), 0),
		       COUNT(*) FILTER (WHERE rs.status = $2),
		       COUNT(*) FILTER (WHERE rs.status = $3)
		FROM revenue_shares rs
		JOIN transactions t ON t.id = rs.origin_transaction_id
		WHERE t.related_kind = $4 AND t.related_id = $1
	`, orderID, string(domain.RevenueShareStatusPaid), string(domain.RevenueShareStatusPending), string(domain.RelatedOrder)).
		Scan(&sum, &totals.PaidCount, &totals.PendingCount)
	if err != nil {
		return domain.CommissionTotals{}, err
	}

	totals.Total = numericToDecimal(sum)

	return totals, nil
}

// SumAmount totals shares in a status created in [from, to].
func (r *RevenueShareRepository) SumAmount(ctx context.Context, status domain.RevenueShareStatus, from, to *time.Time) (decimal.Decimal, error) {
	var sum pgtype.Numeric

	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM revenue_shares
		WHERE status = $1
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at <= $3)
	`, string(status), nullableTime(from), nullableTime(to)).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}

func collectRevenueShares(rows pgx.Rows) ([]*domain.RevenueShare, error) {
	defer rows.Close()

	var shares []*domain.RevenueShare
	for rows.Next() {
		s, err := scanRevenueShare(rows)
		if err != nil {
			return nil, err
		}
		shares = append(shares, s)
	}

	return shares, rows.Err()
}

func scanRevenueShare(row pgx.Row) (*domain.RevenueShare, error) {
	var (
		s                    domain.RevenueShare
		orderItemID, payout  pgtype.Text
		amount               pgtype.Numeric
		status               string
		paidAt               pgtype.Timestamptz
		createdAt, updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&s.ID,
		&s.RecipientID,
		&s.OriginTransactionID,
		&orderItemID,
		&s.GenerationLevel,
		&amount,
		&s.Currency,
		&status,
		&payout,
		&paidAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.OrderItemID = orderItemID.String
	s.PayoutTransactionID = payout.String
	s.Amount = numericToDecimal(amount)
	s.Status = domain.RevenueShareStatus(status)
	s.PaidAt = timestamptzPtr(paidAt)
	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return &s, nil
}
