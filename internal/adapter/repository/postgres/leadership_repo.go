package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/mlmledger/internal/domain"
)

// DesignationRepository implements usecase.DesignationRepository.
type DesignationRepository struct {
	pool Pool
}

// NewDesignationRepository creates a new DesignationRepository.
func NewDesignationRepository(pool Pool) *DesignationRepository {
	return &DesignationRepository{pool: pool}
}

// GetByLevel loads a tier with its targets. Targets of an unknown kind fail the load.
func (r *DesignationRepository) GetByLevel(ctx context.Context, level int) (*domain.Designation, error) {
	d := domain.Designation{Level: level}

	err := r.pool.QueryRow(ctx, `SELECT name FROM designations WHERE level = $1`, level).Scan(&d.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: level %d", domain.ErrDesignationNotFound, level)
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT name, kind, value
		FROM designation_targets
		WHERE level = $1
		ORDER BY id
	`, level)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name, kind, value string
		if err := rows.Scan(&name, &kind, &value); err != nil {
			return nil, err
		}

		target, err := domain.ParseTarget(name, kind, value)
		if err != nil {
			return nil, fmt.Errorf("designation %s: %w", d.Name, err)
		}
		d.Targets = append(d.Targets, target)
	}

	return &d, rows.Err()
}

// teamCTE collects every descendant of $1. UNION drops repeated rows, so a
// cyclic graph still terminates.
const teamCTE = `
	WITH RECURSIVE team(id) AS (
		SELECT id FROM users WHERE referred_by_id = $1
		UNION
		SELECT u.id FROM users u JOIN team t ON u.referred_by_id = t.id
	)
`

// LeadershipStatsRepository implements usecase.LeadershipStatsRepository.
type LeadershipStatsRepository struct {
	pool Pool
}

// NewLeadershipStatsRepository creates a new LeadershipStatsRepository.
func NewLeadershipStatsRepository(pool Pool) *LeadershipStatsRepository {
	return &LeadershipStatsRepository{pool: pool}
}

// CountDirectReferrals counts users referred by userID.
func (r *LeadershipStatsRepository) CountDirectReferrals(ctx context.Context, userID string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users WHERE referred_by_id = $1`, userID)
}

// CountActiveDirectReferrals counts active users referred by userID.
func (r *LeadershipStatsRepository) CountActiveDirectReferrals(ctx context.Context, userID string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users WHERE referred_by_id = $1 AND active`, userID)
}

// CountTeam counts the whole downline of userID.
func (r *LeadershipStatsRepository) CountTeam(ctx context.Context, userID string) (int64, error) {
	return r.count(ctx, teamCTE+`SELECT COUNT(*) FROM team WHERE id <> $1`, userID)
}

// PersonalSales sums the user's completed purchases.
func (r *LeadershipStatsRepository) PersonalSales(ctx context.Context, userID string) (decimal.Decimal, error) {
	return r.sum(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND type = $2 AND status = $3
	`, userID)
}

// TeamSales sums completed purchases across the downline.
func (r *LeadershipStatsRepository) TeamSales(ctx context.Context, userID string) (decimal.Decimal, error) {
	return r.sum(ctx, teamCTE+`
		SELECT COALESCE(SUM(t.amount), 0)
		FROM transactions t
		JOIN team ON team.id = t.user_id
		WHERE team.id <> $1 AND t.type = $2 AND t.status = $3
	`, userID)
}

func (r *LeadershipStatsRepository) count(ctx context.Context, query, userID string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, query, userID).Scan(&n)
	return n, err
}

func (r *LeadershipStatsRepository) sum(ctx context.Context, query, userID string) (decimal.Decimal, error) {
	var total pgtype.Numeric

	err := r.pool.QueryRow(ctx, query, userID,
		string(domain.TransactionTypePurchase), string(domain.TransactionStatusCompleted),
	).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}
