package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/mlmledger/internal/domain"
)

func TestReferral_AttachReferrer(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	h.store.SeedUser(&domain.User{ID: "R", Generation: 2, Active: true})
	h.store.SeedUser(&domain.User{ID: "U"})

	u, err := h.referral.AttachReferrer(ctx, "U", "R")
	require.NoError(t, err)
	assert.Equal(t, "R", u.ReferredByID)
	assert.Equal(t, 3, u.Generation)
	assert.True(t, u.Active)

	stored, _ := h.store.User("U")
	assert.Equal(t, "R", stored.ReferredByID)
	assert.Equal(t, 3, stored.Generation)

	ref, _ := h.store.User("R")
	assert.Equal(t, 1, ref.TotalDirectReferrals)
}

func TestReferral_AttachReferrer_PromotesReferrer(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	seedTeam(h.store, "R", "", 2)
	h.store.SeedUser(&domain.User{ID: "U"})
	h.store.SeedDesignation(directReferralsTier(1, "Bronze", 3))

	_, err := h.referral.AttachReferrer(ctx, "U", "R")
	require.NoError(t, err)

	ref, _ := h.store.User("R")
	assert.Equal(t, 3, ref.TotalDirectReferrals)
	assert.Equal(t, 1, ref.LeadershipID)
	assert.Equal(t, "Bronze", ref.Designation)
}

func TestReferral_AttachReferrer_LeadershipFailureDoesNotUndoAttach(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	seedTeam(h.store, "R", "", 2)
	h.store.SeedUser(&domain.User{ID: "U"})
	h.store.SeedDesignation(&domain.Designation{
		Level:   1,
		Name:    "Mystery",
		Targets: []domain.Target{{Name: "karma", Kind: "karma"}},
	})

	_, err := h.referral.AttachReferrer(ctx, "U", "R")
	require.NoError(t, err)

	stored, _ := h.store.User("U")
	assert.Equal(t, "R", stored.ReferredByID)
}

func TestReferral_AttachReferrer_Rejections(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		userID     string
		referrerID string
		wantErr    error
	}{
		{"self referral", "A", "A", domain.ErrSelfReferral},
		{"unknown user", "ghost", "A", domain.ErrUserNotFound},
		{"unknown referrer", "C", "ghost", domain.ErrUserNotFound},
		{"referrer already set", "B", "C", domain.ErrReferrerAlreadySet},
		{"referrer in downline", "A", "B", domain.ErrReferralCycle},
		{"referrer deep in downline", "A", "D", domain.ErrReferralCycle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			// D -> B -> A, C unattached
			h.store.SeedUser(&domain.User{ID: "A", Active: true})
			h.store.SeedUser(&domain.User{ID: "B", ReferredByID: "A", Active: true})
			h.store.SeedUser(&domain.User{ID: "C", Active: true})
			h.store.SeedUser(&domain.User{ID: "D", ReferredByID: "B", Active: true})

			_, err := h.referral.AttachReferrer(ctx, tt.userID, tt.referrerID)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, domain.IsValidation(err) || domain.IsNotFound(err))

			a, _ := h.store.User("A")
			assert.Empty(t, a.ReferredByID)
		})
	}
}

func TestReferral_GetUpline(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	h.store.SeedUser(&domain.User{ID: "C"})
	h.store.SeedUser(&domain.User{ID: "B", ReferredByID: "C"})
	h.store.SeedUser(&domain.User{ID: "A", ReferredByID: "B"})
	h.store.SeedUser(&domain.User{ID: "U", ReferredByID: "A"})

	t.Run("bounded depth", func(t *testing.T) {
		upline, err := h.referral.GetUpline(ctx, "U", 2)
		require.NoError(t, err)
		require.Len(t, upline, 2)
		assert.Equal(t, "A", upline[0].User.ID)
		assert.Equal(t, 1, upline[0].Generation)
		assert.Equal(t, "B", upline[1].User.ID)
		assert.Equal(t, 2, upline[1].Generation)
	})

	t.Run("default depth reaches the root", func(t *testing.T) {
		upline, err := h.referral.GetUpline(ctx, "U", 0)
		require.NoError(t, err)
		require.Len(t, upline, 3)
		assert.Equal(t, "C", upline[2].User.ID)
	})

	t.Run("root has no upline", func(t *testing.T) {
		upline, err := h.referral.GetUpline(ctx, "C", 5)
		require.NoError(t, err)
		assert.Empty(t, upline)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := h.referral.GetUpline(ctx, "ghost", 5)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestReferral_GetUpline_Cycle(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	h.store.SeedUser(&domain.User{ID: "X", ReferredByID: "Y"})
	h.store.SeedUser(&domain.User{ID: "Y", ReferredByID: "Z"})
	h.store.SeedUser(&domain.User{ID: "Z", ReferredByID: "X"})

	upline, err := h.referral.GetUpline(ctx, "X", 0)
	require.NoError(t, err)
	require.Len(t, upline, 2)
	assert.Equal(t, "Y", upline[0].User.ID)
	assert.Equal(t, "Z", upline[1].User.ID)
}
