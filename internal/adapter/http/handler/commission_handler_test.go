package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/mlmledger/internal/adapter/http/dto"
	"github.com/iho/mlmledger/internal/domain"
	"github.com/iho/mlmledger/internal/usecase"
)

type commissionServiceStub struct {
	sweepFn   func(ctx context.Context, limit int) (*usecase.CommissionSweepResult, error)
	historyFn func(ctx context.Context, input usecase.CommissionHistoryInput) (*usecase.CommissionHistory, error)
}

func (s *commissionServiceStub) ProcessPendingCommissions(ctx context.Context, limit int) (*usecase.CommissionSweepResult, error) {
	return s.sweepFn(ctx, limit)
}

func (s *commissionServiceStub) GetCommissionHistory(ctx context.Context, input usecase.CommissionHistoryInput) (*usecase.CommissionHistory, error) {
	return s.historyFn(ctx, input)
}

type payoutServiceFunc func(ctx context.Context, shareID, platformWalletID string) (*usecase.PayoutResult, error)

func (f payoutServiceFunc) PayRevenueShare(ctx context.Context, shareID, platformWalletID string) (*usecase.PayoutResult, error) {
	return f(ctx, shareID, platformWalletID)
}

func TestCommissionHandler_Sweep(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantLimit int
	}{
		{"empty body uses default", "", http.StatusOK, 0},
		{"explicit limit", `{"limit":25}`, http.StatusOK, 25},
		{"zero limit uses default", `{"limit":0}`, http.StatusOK, 0},
		{"limit too large", `{"limit":5000}`, http.StatusBadRequest, -1},
		{"malformed body", `{"limit":`, http.StatusBadRequest, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotLimit := -1
			h := NewCommissionHandler(&commissionServiceStub{
				sweepFn: func(ctx context.Context, limit int) (*usecase.CommissionSweepResult, error) {
					gotLimit = limit
					return &usecase.CommissionSweepResult{}, nil
				},
			}, nil)

			req := httptest.NewRequest(http.MethodPost, "/commissions/sweep", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			h.Sweep(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
			if gotLimit != tt.wantLimit {
				t.Fatalf("expected limit %d, got %d", tt.wantLimit, gotLimit)
			}
		})
	}
}

func TestCommissionHandler_Pay(t *testing.T) {
	var gotShare, gotWallet string
	h := NewCommissionHandler(nil, payoutServiceFunc(func(ctx context.Context, shareID, platformWalletID string) (*usecase.PayoutResult, error) {
		gotShare, gotWallet = shareID, platformWalletID
		return &usecase.PayoutResult{
			Share:       &domain.RevenueShare{ID: shareID, Status: domain.RevenueShareStatusPaid, Amount: decimal.NewFromInt(8)},
			Transaction: &domain.Transaction{ID: "tx-7"},
		}, nil
	}))

	req := httptest.NewRequest(http.MethodPost, "/revenue-shares/rs-1/pay", bytes.NewBufferString(`{"platform_wallet_id":"w-1"}`))
	req = withURLParam(req, "id", "rs-1")
	rec := httptest.NewRecorder()
	h.Pay(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotShare != "rs-1" || gotWallet != "w-1" {
		t.Fatalf("unexpected arguments %q %q", gotShare, gotWallet)
	}

	var resp dto.PayoutResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.RevenueShare.Status != "paid" || resp.Transaction.ID != "tx-7" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestCommissionHandler_Pay_AlreadyPaid(t *testing.T) {
	h := NewCommissionHandler(nil, payoutServiceFunc(func(ctx context.Context, shareID, platformWalletID string) (*usecase.PayoutResult, error) {
		return nil, domain.ErrRevenueShareAlreadyPaid
	}))

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/revenue-shares/rs-1/pay", nil), "id", "rs-1")
	rec := httptest.NewRecorder()
	h.Pay(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestCommissionHandler_ListByUser(t *testing.T) {
	var captured usecase.CommissionHistoryInput
	h := NewCommissionHandler(&commissionServiceStub{
		historyFn: func(ctx context.Context, input usecase.CommissionHistoryInput) (*usecase.CommissionHistory, error) {
			captured = input
			return &usecase.CommissionHistory{
				Shares:  []*domain.RevenueShare{{ID: "rs-1"}},
				Total:   1,
				Page:    input.Page,
				PerPage: input.PerPage,
			}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/users/u-1/commissions?status=pending&generation=2&from=2026-01-01&page=2&per_page=5", nil)
	req = withURLParam(req, "id", "u-1")
	rec := httptest.NewRecorder()
	h.ListByUser(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.UserID != "u-1" || captured.Filter.Status != domain.RevenueShareStatusPending ||
		captured.Filter.GenerationLevel != 2 || captured.Filter.From == nil || captured.Filter.To != nil {
		t.Fatalf("unexpected input: %+v", captured)
	}
	if captured.Page != 2 || captured.PerPage != 5 {
		t.Fatalf("unexpected paging: %+v", captured)
	}
}

func TestCommissionHandler_ListByUser_BadDate(t *testing.T) {
	h := NewCommissionHandler(&commissionServiceStub{
		historyFn: func(ctx context.Context, input usecase.CommissionHistoryInput) (*usecase.CommissionHistory, error) {
			t.Fatalf("service should not be called")
			return nil, nil
		},
	}, nil)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/users/u-1/commissions?to=soon", nil), "id", "u-1")
	rec := httptest.NewRecorder()
	h.ListByUser(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
