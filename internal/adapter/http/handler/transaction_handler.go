package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/iho/mlmledger/internal/adapter/http/dto"
	"github.com/iho/mlmledger/internal/domain"
	"github.com/iho/mlmledger/internal/usecase"
)

// TransactionService defines the interface for transaction operations.
type TransactionService interface {
	CreateSimpleTransfer(ctx context.Context, input usecase.CreateSimpleTransferInput) (*domain.Transaction, error)
	GetTransactionHistory(ctx context.Context, input usecase.TransactionHistoryInput) (*usecase.TransactionHistory, error)
	GetTransactionFlow(ctx context.Context, transactionID string) (*domain.TransactionFlow, error)
}

// TransactionHandler handles transfers and transaction queries.
type TransactionHandler struct {
	transactions TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactions TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

// Transfer handles POST /transfers.
func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransferRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if fields := dto.Validate(&req); fields != nil {
		writeValidationError(w, fields)
		return
	}

	tx, err := h.transactions.CreateSimpleTransfer(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(tx))
}

// ListByUser handles GET /users/{id}/transactions.
func (h *TransactionHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	includeJournal, _ := strconv.ParseBool(q.Get("include_journal"))

	history, err := h.transactions.GetTransactionHistory(r.Context(), usecase.TransactionHistoryInput{
		UserID: chi.URLParam(r, "id"),
		Filter: domain.TransactionFilter{
			Type:      domain.TransactionType(q.Get("type")),
			ValueType: domain.ValueType(q.Get("value_type")),
			Direction: domain.Direction(q.Get("direction")),
			Status:    domain.TransactionStatus(q.Get("status")),
		},
		Page:           parseIntQuery(r, "page", 1),
		PerPage:        parseIntQuery(r, "per_page", domain.DefaultPageSize),
		IncludeJournal: includeJournal,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionHistoryFromUseCase(history))
}

// Flow handles GET /transactions/{id}/flow.
func (h *TransactionHandler) Flow(w http.ResponseWriter, r *http.Request) {
	flow, err := h.transactions.GetTransactionFlow(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFlowFromDomain(flow))
}
