package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/mlmledger/internal/domain"
)

// ReferralUseCase attaches users to the referral graph and walks uplines.
type ReferralUseCase struct {
	txManager  TransactionManager
	retrier    Retrier
	userRepo   UserRepository
	leadership *LeadershipUseCase
	logger     zerolog.Logger
}

// NewReferralUseCase creates a new ReferralUseCase.
func NewReferralUseCase(
	txManager TransactionManager,
	retrier Retrier,
	userRepo UserRepository,
	leadership *LeadershipUseCase,
	logger zerolog.Logger,
) *ReferralUseCase {
	return &ReferralUseCase{
		txManager:  txManager,
		retrier:    retrier,
		userRepo:   userRepo,
		leadership: leadership,
		logger:     logger,
	}
}

// AttachReferrer sets the user's referrer, then re-evaluates the referrer's
// leadership tier.
func (uc *ReferralUseCase) AttachReferrer(ctx context.Context, userID, referrerID string) (*domain.User, error) {
	if userID == referrerID {
		return nil, domain.ErrSelfReferral
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", userID, err)
	}
	if user.HasReferrer() {
		return nil, fmt.Errorf("%w: user %s", domain.ErrReferrerAlreadySet, userID)
	}

	if _, err := uc.userRepo.GetByID(ctx, referrerID); err != nil {
		return nil, fmt.Errorf("referrer %s: %w", referrerID, err)
	}

	if err := uc.checkNoCycle(ctx, userID, referrerID); err != nil {
		return nil, err
	}

	var attached *domain.User
	err = runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		locked, err := uc.lockPair(ctx, tx, userID, referrerID)
		if err != nil {
			return err
		}
		u, ref := locked[userID], locked[referrerID]

		if u.HasReferrer() {
			return fmt.Errorf("%w: user %s", domain.ErrReferrerAlreadySet, userID)
		}

		now := time.Now().UTC()
		u.ReferredByID = ref.ID
		u.Generation = ref.Generation + 1
		u.Active = true
		u.UpdatedAt = now

		if err := uc.userRepo.UpdateReferral(ctx, tx, u); err != nil {
			return fmt.Errorf("attach referrer to user %s: %w", u.ID, err)
		}

		if err := uc.userRepo.IncrementDirectReferrals(ctx, tx, ref.ID, now); err != nil {
			return fmt.Errorf("count referral for user %s: %w", ref.ID, err)
		}

		attached = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("user_id", userID).
		Str("referrer_id", referrerID).
		Int("generation", attached.Generation).
		Msg("referrer attached")

	if uc.leadership != nil {
		if _, err := uc.leadership.UpdateLeadership(ctx, referrerID); err != nil {
			uc.logger.Error().Err(err).Str("user_id", referrerID).Msg("leadership update failed")
		}
	}

	return attached, nil
}

// lockPair locks both users in id order.
func (uc *ReferralUseCase) lockPair(ctx context.Context, tx Transaction, a, b string) (map[string]*domain.User, error) {
	ids := []string{a, b}
	sort.Strings(ids)

	out := make(map[string]*domain.User, 2)
	for _, id := range ids {
		u, err := uc.userRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return nil, fmt.Errorf("user %s: %w", id, err)
		}
		out[id] = u
	}

	return out, nil
}

// checkNoCycle rejects a referrer that sits in the user's downline.
func (uc *ReferralUseCase) checkNoCycle(ctx context.Context, userID, referrerID string) error {
	chain, err := uc.walk(ctx, referrerID, 0)
	if err != nil {
		return err
	}

	for _, hop := range chain {
		if hop.User.ID == userID {
			return fmt.Errorf("%w: %s is in the downline of %s", domain.ErrReferralCycle, referrerID, userID)
		}
	}

	return nil
}

// GetUpline returns up to depth ancestors of the user, nearest first.
func (uc *ReferralUseCase) GetUpline(ctx context.Context, userID string, depth int) ([]domain.UplineUser, error) {
	if _, err := uc.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	if depth <= 0 || depth > maxUplineDepth {
		depth = maxUplineDepth
	}

	return uc.walk(ctx, userID, depth)
}

// walk climbs referrer links from start. depth 0 walks to the root. The
// visited set stops the walk on a cyclic graph.
func (uc *ReferralUseCase) walk(ctx context.Context, start string, depth int) ([]domain.UplineUser, error) {
	current, err := uc.userRepo.GetByID(ctx, start)
	if err != nil {
		return nil, err
	}

	visited := map[string]bool{current.ID: true}

	var chain []domain.UplineUser
	for gen := 1; current.HasReferrer(); gen++ {
		if depth > 0 && gen > depth {
			break
		}
		if visited[current.ReferredByID] {
			uc.logger.Warn().
				Str("user_id", current.ID).
				Str("referrer_id", current.ReferredByID).
				Msg("referral cycle detected")
			break
		}

		upline, err := uc.userRepo.GetByID(ctx, current.ReferredByID)
		if errors.Is(err, domain.ErrUserNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}

		visited[upline.ID] = true
		chain = append(chain, domain.UplineUser{User: upline, Generation: gen})
		current = upline
	}

	return chain, nil
}
