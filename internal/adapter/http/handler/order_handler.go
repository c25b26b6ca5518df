package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/mlmledger/internal/adapter/http/dto"
	"github.com/iho/mlmledger/internal/domain"
	"github.com/iho/mlmledger/internal/usecase"
)

// OrderService is the subset of the orchestrator the order endpoints need.
type OrderService interface {
	ProcessOrderPayment(ctx context.Context, paymentID string) (*usecase.OrderPaymentResult, error)
	RetryOrderFulfillment(ctx context.Context, orderID string) (*domain.FulfillmentResult, usecase.OrderRef, error)
	GetOrderProcessingStatus(ctx context.Context, orderID string) (*usecase.OrderProcessingStatus, error)
}

// OrderHandler handles payment processing and order status requests.
type OrderHandler struct {
	orders OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// ProcessPayment handles POST /payments/{id}/process.
func (h *OrderHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	result, err := h.orders.ProcessOrderPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OrderPaymentFromUseCase(result))
}

// RetryFulfillment handles POST /orders/{id}/fulfillment/retry.
func (h *OrderHandler) RetryFulfillment(w http.ResponseWriter, r *http.Request) {
	result, order, err := h.orders.RetryOrderFulfillment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RetryFulfillmentResponse{
		Order:       dto.OrderRefResponse{ID: order.ID, Status: string(order.Status)},
		Fulfillment: dto.FulfillmentFromDomain(result),
	})
}

// Status handles GET /orders/{id}/status.
func (h *OrderHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.orders.GetOrderProcessingStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OrderStatusFromUseCase(status))
}
