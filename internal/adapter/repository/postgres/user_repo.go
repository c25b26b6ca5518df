package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/mlmledger/internal/domain"
	"github.com/iho/mlmledger/internal/usecase"
)

const userColumns = `id, email, name, referral_code, referred_by_id, generation,
	total_direct_referrals, leadership_id, designation, active, created_at, updated_at`

// UserRepository implements usecase.UserRepository.
type UserRepository struct {
	pool Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.get(ctx, r.pool, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves a user by ID with a FOR UPDATE lock.
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.User, error) {
	return r.get(ctx, conn(r.pool, tx), `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
}

func (r *UserRepository) get(ctx context.Context, q querier, query, id string) (*domain.User, error) {
	user, err := scanUser(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}

	return user, err
}

// UpdateReferral persists the referrer link, generation and active flag.
func (r *UserRepository) UpdateReferral(ctx context.Context, tx usecase.Transaction, user *domain.User) error {
	tag, err := conn(r.pool, tx).Exec(ctx, `
		UPDATE users
		SET referred_by_id = $2, generation = $3, active = $4, updated_at = $5
		WHERE id = $1
	`, user.ID, nullableText(user.ReferredByID), user.Generation, user.Active, user.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, user.ID)
	}

	return nil
}

// IncrementDirectReferrals bumps the cached direct referral count.
func (r *UserRepository) IncrementDirectReferrals(ctx context.Context, tx usecase.Transaction, id string, updatedAt time.Time) error {
	tag, err := conn(r.pool, tx).Exec(ctx, `
		UPDATE users
		SET total_direct_referrals = total_direct_referrals + 1, updated_at = $2
		WHERE id = $1
	`, id, updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}

	return nil
}

// UpdateLeadership sets the user's tier.
func (r *UserRepository) UpdateLeadership(ctx context.Context, tx usecase.Transaction, id string, leadershipID int, designation string, updatedAt time.Time) error {
	tag, err := conn(r.pool, tx).Exec(ctx, `
		UPDATE users
		SET leadership_id = $2, designation = $3, updated_at = $4
		WHERE id = $1
	`, id, leadershipID, designation, updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}

	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u          domain.User
		referredBy pgtype.Text
	)

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.ReferralCode,
		&referredBy,
		&u.Generation,
		&u.TotalDirectReferrals,
		&u.LeadershipID,
		&u.Designation,
		&u.Active,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.ReferredByID = referredBy.String

	return &u, nil
}
