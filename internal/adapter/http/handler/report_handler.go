package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/mlmledger/internal/adapter/http/dto"
	"github.com/iho/mlmledger/internal/usecase"
)

// SummaryService produces financial reports.
type SummaryService interface {
	GetFinancialSummary(ctx context.Context, from, to *time.Time) (*usecase.FinancialSummary, error)
}

// ReconciliationService checks ledger integrity.
type ReconciliationService interface {
	CheckLedgerConsistency(ctx context.Context) (*usecase.LedgerTotals, error)
	ReconcileAccount(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error)
	GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// ReportHandler handles reporting and reconciliation requests.
type ReportHandler struct {
	summary        SummaryService
	reconciliation ReconciliationService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(summary SummaryService, reconciliation ReconciliationService) *ReportHandler {
	return &ReportHandler{summary: summary, reconciliation: reconciliation}
}

// Summary handles GET /reports/summary.
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date window", err.Error())
		return
	}

	summary, err := h.summary.GetFinancialSummary(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FinancialSummaryFromUseCase(summary))
}

// Consistency handles GET /ledger/consistency. An unbalanced ledger is
// reported in the body with 200, not as a server error.
func (h *ReportHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	totals, err := h.reconciliation.CheckLedgerConsistency(r.Context())
	if err != nil && !(errors.Is(err, usecase.ErrInconsistentLedger) && totals != nil) {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerConsistencyFromUseCase(totals))
}

// ReconcileAccount handles GET /accounts/{id}/reconcile.
func (h *ReportHandler) ReconcileAccount(w http.ResponseWriter, r *http.Request) {
	result, err := h.reconciliation.ReconcileAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromUseCase(result))
}

// Reconciliation handles GET /reports/reconciliation.
func (h *ReportHandler) Reconciliation(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliation.GenerateReconciliationReport(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationReportFromUseCase(report))
}
