package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/mlmledger/internal/domain"
)

// targetEvaluator observes the metric a designation target is compared against.
type targetEvaluator func(ctx context.Context, user *domain.User) (domain.Metric, error)

// LeadershipUseCase promotes users up the designation ladder.
type LeadershipUseCase struct {
	txManager       TransactionManager
	retrier         Retrier
	userRepo        UserRepository
	designationRepo DesignationRepository
	outboxRepo      OutboxRepository
	idGen           IDGenerator
	metrics         MetricsRecorder
	logger          zerolog.Logger
	minDirect       int

	evaluators map[domain.TargetKind]targetEvaluator
}

// LeadershipDeps groups the collaborators of LeadershipUseCase.
type LeadershipDeps struct {
	TxManager       TransactionManager
	Retrier         Retrier
	UserRepo        UserRepository
	DesignationRepo DesignationRepository
	StatsRepo       LeadershipStatsRepository
	OutboxRepo      OutboxRepository
	IDGen           IDGenerator
	Metrics         MetricsRecorder
	Logger          zerolog.Logger

	// MinDirectReferrals short-circuits evaluation for users at or below it.
	MinDirectReferrals int
}

// NewLeadershipUseCase creates a new LeadershipUseCase.
func NewLeadershipUseCase(deps LeadershipDeps) *LeadershipUseCase {
	if deps.Metrics == nil {
		deps.Metrics = noopMetrics{}
	}
	if deps.MinDirectReferrals <= 0 {
		deps.MinDirectReferrals = DefaultLeadershipMinDirectReferrals
	}

	stats := deps.StatsRepo

	return &LeadershipUseCase{
		txManager:       deps.TxManager,
		retrier:         deps.Retrier,
		userRepo:        deps.UserRepo,
		designationRepo: deps.DesignationRepo,
		outboxRepo:      deps.OutboxRepo,
		idGen:           deps.IDGen,
		metrics:         deps.Metrics,
		logger:          deps.Logger,
		minDirect:       deps.MinDirectReferrals,
		evaluators: map[domain.TargetKind]targetEvaluator{
			domain.TargetDirectReferrals: func(ctx context.Context, u *domain.User) (domain.Metric, error) {
				n, err := stats.CountDirectReferrals(ctx, u.ID)
				return domain.NumericMetric(n), err
			},
			domain.TargetActiveDirectReferrals: func(ctx context.Context, u *domain.User) (domain.Metric, error) {
				n, err := stats.CountActiveDirectReferrals(ctx, u.ID)
				return domain.NumericMetric(n), err
			},
			domain.TargetTeamSize: func(ctx context.Context, u *domain.User) (domain.Metric, error) {
				n, err := stats.CountTeam(ctx, u.ID)
				return domain.NumericMetric(n), err
			},
			domain.TargetPersonalSales: func(ctx context.Context, u *domain.User) (domain.Metric, error) {
				v, err := stats.PersonalSales(ctx, u.ID)
				return domain.Metric{Numeric: v}, err
			},
			domain.TargetTeamSales: func(ctx context.Context, u *domain.User) (domain.Metric, error) {
				v, err := stats.TeamSales(ctx, u.ID)
				return domain.Metric{Numeric: v}, err
			},
			domain.TargetDesignation: func(_ context.Context, u *domain.User) (domain.Metric, error) {
				return domain.Metric{Text: u.Designation}, nil
			},
		},
	}
}

// Promotion records one tier change made by UpdateLeadership.
type Promotion struct {
	UserID      string
	FromLevel   int
	ToLevel     int
	Designation string
}

// UpdateLeadership evaluates the user for the next tier and, when promoted,
// continues with the user's upline. Every user is visited at most once, so a
// cyclic referral graph terminates.
func (uc *LeadershipUseCase) UpdateLeadership(ctx context.Context, userID string) ([]Promotion, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var promotions []Promotion
	err = uc.updateLeadership(ctx, user, map[string]bool{}, &promotions)

	return promotions, err
}

func (uc *LeadershipUseCase) updateLeadership(ctx context.Context, user *domain.User, visited map[string]bool, out *[]Promotion) error {
	if visited[user.ID] {
		return nil
	}
	visited[user.ID] = true

	if user.TotalDirectReferrals <= uc.minDirect {
		return nil
	}

	next, err := uc.designationRepo.GetByLevel(ctx, user.LeadershipID+1)
	if errors.Is(err, domain.ErrDesignationNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("designation level %d: %w", user.LeadershipID+1, err)
	}

	ok, err := uc.qualifies(ctx, user, next)
	if err != nil || !ok {
		return err
	}

	promotion, err := uc.promote(ctx, user, next)
	if err != nil {
		return err
	}
	if promotion == nil {
		return nil
	}
	*out = append(*out, *promotion)

	if !user.HasReferrer() {
		return nil
	}

	upline, err := uc.userRepo.GetByID(ctx, user.ReferredByID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("upline of user %s: %w", user.ID, err)
	}

	return uc.updateLeadership(ctx, upline, visited, out)
}

// qualifies reports whether every target of the tier is met.
func (uc *LeadershipUseCase) qualifies(ctx context.Context, user *domain.User, tier *domain.Designation) (bool, error) {
	for _, target := range tier.Targets {
		eval, ok := uc.evaluators[target.Kind]
		if !ok {
			return false, fmt.Errorf("%w: %q on designation %s", domain.ErrUnknownTargetKind, target.Kind, tier.Name)
		}

		metric, err := eval(ctx, user)
		if err != nil {
			return false, fmt.Errorf("evaluate %s for user %s: %w", target.Kind, user.ID, err)
		}

		if !target.SatisfiedBy(metric) {
			uc.logger.Debug().
				Str("user_id", user.ID).
				Str("target", target.Name).
				Str("kind", string(target.Kind)).
				Msg("leadership target not met")
			return false, nil
		}
	}

	return true, nil
}

// promote persists the new tier. It returns nil when the stored user already
// moved past the evaluated level.
func (uc *LeadershipUseCase) promote(ctx context.Context, user *domain.User, tier *domain.Designation) (*Promotion, error) {
	var promotion *Promotion

	err := runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		promotion = nil

		locked, err := uc.userRepo.GetByIDForUpdate(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		if locked.LeadershipID+1 != tier.Level {
			return nil
		}

		now := time.Now().UTC()
		if err := uc.userRepo.UpdateLeadership(ctx, tx, locked.ID, tier.Level, tier.Name, now); err != nil {
			return fmt.Errorf("promote user %s: %w", locked.ID, err)
		}

		from := locked.LeadershipID
		locked.LeadershipID = tier.Level
		locked.Designation = tier.Name
		locked.UpdatedAt = now

		promotion = &Promotion{UserID: locked.ID, FromLevel: from, ToLevel: tier.Level, Designation: tier.Name}

		return recordEvent(ctx, uc.outboxRepo, uc.idGen, tx,
			domain.AggregateTypeUser, locked.ID, domain.EventTypeUserPromoted,
			domain.UserPromotedPayload(locked, from),
		)
	})
	if err != nil || promotion == nil {
		return nil, err
	}

	user.LeadershipID = promotion.ToLevel
	user.Designation = promotion.Designation

	uc.metrics.UserPromoted(promotion.ToLevel)
	uc.logger.Info().
		Str("user_id", user.ID).
		Int("from_level", promotion.FromLevel).
		Int("to_level", promotion.ToLevel).
		Str("designation", promotion.Designation).
		Msg("user promoted")

	return promotion, nil
}
