package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/iho/mlmledger/internal/adapter/http/dto"
	"github.com/iho/mlmledger/internal/domain"
)

// withURLParam attaches a chi route param to req.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp
}

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/users/u-1/transactions?per_page=50", nil)
	if got := parseIntQuery(req, "per_page", 10); got != 50 {
		t.Fatalf("expected per_page=50, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/users/u-1/transactions?per_page=invalid", nil)
	if got := parseIntQuery(req, "per_page", 10); got != 10 {
		t.Fatalf("expected fallback to default, got %d", got)
	}

	req.URL = &url.URL{RawQuery: ""}
	if got := parseIntQuery(req, "per_page", 25); got != 25 {
		t.Fatalf("expected default when missing, got %d", got)
	}
}

func TestParseWindow(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/reports/summary?from=2026-01-01&to=2026-01-31T23:59:59Z", nil)
	from, to, err := parseWindow(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if from == nil || from.Day() != 1 || from.Month() != 1 {
		t.Fatalf("unexpected from: %v", from)
	}
	if to == nil || to.Hour() != 23 {
		t.Fatalf("unexpected to: %v", to)
	}

	req = httptest.NewRequest(http.MethodGet, "/reports/summary", nil)
	from, to, err = parseWindow(req)
	if err != nil || from != nil || to != nil {
		t.Fatalf("expected open window, got %v %v %v", from, to, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/reports/summary?from=yesterday", nil)
	if _, _, err := parseWindow(req); err == nil {
		t.Fatalf("expected error for malformed date")
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"user not found", domain.ErrUserNotFound, http.StatusNotFound},
		{"wrapped order not found", fmt.Errorf("order o-1: %w", domain.ErrOrderNotFound), http.StatusNotFound},
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest},
		{"referral cycle", domain.ErrReferralCycle, http.StatusBadRequest},
		{"share already paid", domain.ErrRevenueShareAlreadyPaid, http.StatusConflict},
		{"order already processed", domain.ErrOrderAlreadyProcessed, http.StatusConflict},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestWriteDomainError_HidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()

	writeDomainError(rec, errors.New("pq: password authentication failed"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Message != "" {
		t.Fatalf("expected no details on internal errors, got %q", resp.Message)
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	payload := map[string]string{"status": "ok"}

	writeJSON(rr, http.StatusCreated, payload)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type application/json, got %s", ct)
	}

	var decoded map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if decoded["status"] != "ok" {
		t.Fatalf("expected payload to round-trip, got %+v", decoded)
	}
}
