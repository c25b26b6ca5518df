package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/mlmledger/internal/adapter/http/dto"
	"github.com/iho/mlmledger/internal/domain"
	"github.com/iho/mlmledger/internal/usecase"
)

type summaryServiceFunc func(ctx context.Context, from, to *time.Time) (*usecase.FinancialSummary, error)

func (f summaryServiceFunc) GetFinancialSummary(ctx context.Context, from, to *time.Time) (*usecase.FinancialSummary, error) {
	return f(ctx, from, to)
}

type reconciliationServiceStub struct {
	consistencyFn func(ctx context.Context) (*usecase.LedgerTotals, error)
	reconcileFn   func(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error)
	reportFn      func(ctx context.Context) (*usecase.ReconciliationReport, error)
}

func (s *reconciliationServiceStub) CheckLedgerConsistency(ctx context.Context) (*usecase.LedgerTotals, error) {
	return s.consistencyFn(ctx)
}

func (s *reconciliationServiceStub) ReconcileAccount(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error) {
	return s.reconcileFn(ctx, accountID)
}

func (s *reconciliationServiceStub) GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error) {
	return s.reportFn(ctx)
}

func TestReportHandler_Summary(t *testing.T) {
	var gotFrom, gotTo *time.Time
	h := NewReportHandler(summaryServiceFunc(func(ctx context.Context, from, to *time.Time) (*usecase.FinancialSummary, error) {
		gotFrom, gotTo = from, to
		return &usecase.FinancialSummary{
			TotalRevenue:     decimal.NewFromInt(1000),
			TotalCommissions: decimal.NewFromInt(470),
			NetRevenue:       decimal.NewFromInt(530),
			From:             from,
			To:               to,
		}, nil
	}), nil)

	req := httptest.NewRequest(http.MethodGet, "/reports/summary?from=2026-01-01&to=2026-02-01", nil)
	rec := httptest.NewRecorder()
	h.Summary(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotFrom == nil || gotTo == nil {
		t.Fatalf("expected window to be passed through")
	}

	var resp dto.FinancialSummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.NetRevenue.Equal(decimal.NewFromInt(530)) {
		t.Fatalf("unexpected net revenue %s", resp.NetRevenue)
	}
}

func TestReportHandler_Summary_InvertedWindow(t *testing.T) {
	h := NewReportHandler(summaryServiceFunc(func(ctx context.Context, from, to *time.Time) (*usecase.FinancialSummary, error) {
		return nil, fmt.Errorf("%w: start date is after end date", domain.ErrValidation)
	}), nil)

	req := httptest.NewRequest(http.MethodGet, "/reports/summary?from=2026-03-01&to=2026-02-01", nil)
	rec := httptest.NewRecorder()
	h.Summary(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestReportHandler_Consistency(t *testing.T) {
	tests := []struct {
		name           string
		totals         *usecase.LedgerTotals
		err            error
		wantCode       int
		wantConsistent bool
	}{
		{
			name:           "balanced",
			totals:         &usecase.LedgerTotals{TotalDebits: decimal.NewFromInt(10), TotalCredits: decimal.NewFromInt(10), Consistent: true},
			wantCode:       http.StatusOK,
			wantConsistent: true,
		},
		{
			name:     "unbalanced is reported in the body",
			totals:   &usecase.LedgerTotals{TotalDebits: decimal.NewFromInt(10), TotalCredits: decimal.NewFromInt(9)},
			err:      fmt.Errorf("%w: debits=10 credits=9", usecase.ErrInconsistentLedger),
			wantCode: http.StatusOK,
		},
		{
			name:     "query failure",
			err:      errors.New("connection reset"),
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewReportHandler(nil, &reconciliationServiceStub{
				consistencyFn: func(ctx context.Context) (*usecase.LedgerTotals, error) {
					return tt.totals, tt.err
				},
			})

			rec := httptest.NewRecorder()
			h.Consistency(rec, httptest.NewRequest(http.MethodGet, "/ledger/consistency", nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if tt.wantCode != http.StatusOK {
				return
			}

			var resp dto.LedgerConsistencyResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Consistent != tt.wantConsistent {
				t.Fatalf("expected consistent=%v, got %+v", tt.wantConsistent, resp)
			}
		})
	}
}

func TestReportHandler_ReconcileAccount(t *testing.T) {
	h := NewReportHandler(nil, &reconciliationServiceStub{
		reconcileFn: func(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error) {
			if accountID != "acc-1" {
				return nil, domain.ErrAccountNotFound
			}
			return &usecase.ReconciliationResult{
				AccountID:         accountID,
				RecordedBalance:   decimal.NewFromInt(5),
				SnapshotBalance:   decimal.NewFromInt(5),
				CalculatedBalance: decimal.NewFromInt(5),
				IsReconciled:      true,
			}, nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/acc-1/reconcile", nil), "id", "acc-1")
	rec := httptest.NewRecorder()
	h.ReconcileAccount(rec, req)

	var resp dto.ReconciliationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Reconciled || resp.AccountID != "acc-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	req = withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/nope/reconcile", nil), "id", "nope")
	rec = httptest.NewRecorder()
	h.ReconcileAccount(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestReportHandler_Reconciliation(t *testing.T) {
	h := NewReportHandler(nil, &reconciliationServiceStub{
		reportFn: func(ctx context.Context) (*usecase.ReconciliationReport, error) {
			return &usecase.ReconciliationReport{
				TotalAccounts:      3,
				ReconciledAccounts: 2,
				Discrepancies: []*usecase.ReconciliationResult{{
					AccountID:         "acc-drift",
					RecordedBalance:   decimal.NewFromInt(10),
					CalculatedBalance: decimal.NewFromInt(7),
					Difference:        decimal.NewFromInt(3),
				}},
				LedgerConsistent: true,
				Totals:           &usecase.LedgerTotals{Consistent: true},
			}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.Reconciliation(rec, httptest.NewRequest(http.MethodGet, "/reports/reconciliation", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.ReconciliationReportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TotalAccounts != 3 || len(resp.Discrepancies) != 1 || resp.Discrepancies[0].AccountID != "acc-drift" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Totals == nil || !resp.Totals.Consistent {
		t.Fatalf("expected ledger totals in report, got %+v", resp.Totals)
	}
}
