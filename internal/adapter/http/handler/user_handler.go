package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/mlmledger/internal/adapter/http/dto"
	"github.com/iho/mlmledger/internal/domain"
	"github.com/iho/mlmledger/internal/usecase"
)

// ReferralService manages the referral graph.
type ReferralService interface {
	AttachReferrer(ctx context.Context, userID, referrerID string) (*domain.User, error)
	GetUpline(ctx context.Context, userID string, depth int) ([]domain.UplineUser, error)
}

// LeadershipService re-evaluates designation tiers.
type LeadershipService interface {
	UpdateLeadership(ctx context.Context, userID string) ([]usecase.Promotion, error)
}

// UserHandler handles referral graph requests.
type UserHandler struct {
	referrals  ReferralService
	leadership LeadershipService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(referrals ReferralService, leadership LeadershipService) *UserHandler {
	return &UserHandler{referrals: referrals, leadership: leadership}
}

// AttachReferrer handles POST /users/{id}/referrer.
func (h *UserHandler) AttachReferrer(w http.ResponseWriter, r *http.Request) {
	var req dto.AttachReferrerRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if fields := dto.Validate(&req); fields != nil {
		writeValidationError(w, fields)
		return
	}

	user, err := h.referrals.AttachReferrer(r.Context(), chi.URLParam(r, "id"), req.ReferrerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(user))
}

// Upline handles GET /users/{id}/upline. depth=0 walks to the root.
func (h *UserHandler) Upline(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	chain, err := h.referrals.GetUpline(r.Context(), userID, parseIntQuery(r, "depth", 0))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UplineFromDomain(userID, chain))
}

// EvaluateLeadership handles POST /users/{id}/leadership/evaluate.
func (h *UserHandler) EvaluateLeadership(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	promotions, err := h.leadership.UpdateLeadership(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LeadershipEvaluationFromUseCase(userID, promotions))
}
