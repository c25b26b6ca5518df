package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/mlmledger/internal/adapter/http/dto"
	"github.com/iho/mlmledger/internal/domain"
	"github.com/iho/mlmledger/internal/usecase"
)

// CommissionService sweeps and lists revenue shares.
type CommissionService interface {
	ProcessPendingCommissions(ctx context.Context, limit int) (*usecase.CommissionSweepResult, error)
	GetCommissionHistory(ctx context.Context, input usecase.CommissionHistoryInput) (*usecase.CommissionHistory, error)
}

// PayoutService settles a single revenue share.
type PayoutService interface {
	PayRevenueShare(ctx context.Context, shareID, platformWalletID string) (*usecase.PayoutResult, error)
}

// CommissionHandler handles revenue share requests.
type CommissionHandler struct {
	commissions CommissionService
	payouts     PayoutService
}

// NewCommissionHandler creates a new CommissionHandler.
func NewCommissionHandler(commissions CommissionService, payouts PayoutService) *CommissionHandler {
	return &CommissionHandler{commissions: commissions, payouts: payouts}
}

// Sweep handles POST /commissions/sweep.
func (h *CommissionHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	var req dto.SweepCommissionsRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if fields := dto.Validate(&req); fields != nil {
		writeValidationError(w, fields)
		return
	}

	result, err := h.commissions.ProcessPendingCommissions(r.Context(), req.Limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SweepFromUseCase(result))
}

// Pay handles POST /revenue-shares/{id}/pay.
func (h *CommissionHandler) Pay(w http.ResponseWriter, r *http.Request) {
	var req dto.PayRevenueShareRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.payouts.PayRevenueShare(r.Context(), chi.URLParam(r, "id"), req.PlatformWalletID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PayoutFromUseCase(result))
}

// ListByUser handles GET /users/{id}/commissions.
func (h *CommissionHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date window", err.Error())
		return
	}

	q := r.URL.Query()
	history, err := h.commissions.GetCommissionHistory(r.Context(), usecase.CommissionHistoryInput{
		UserID: chi.URLParam(r, "id"),
		Filter: domain.CommissionFilter{
			Status:          domain.RevenueShareStatus(q.Get("status")),
			GenerationLevel: parseIntQuery(r, "generation", 0),
			From:            from,
			To:              to,
		},
		Page:    parseIntQuery(r, "page", 1),
		PerPage: parseIntQuery(r, "per_page", domain.DefaultPageSize),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CommissionHistoryFromUseCase(history))
}
