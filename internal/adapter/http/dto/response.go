package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/mlmledger/internal/domain"
	"github.com/iho/mlmledger/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// JournalEntryResponse represents one journal line.
type JournalEntryResponse struct {
	ID        string          `json:"id"`
	AccountID string          `json:"account_id"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"created_at"`

	AccountUserID string `json:"account_user_id,omitempty"`
	WalletType    string `json:"wallet_type,omitempty"`
	AccountLabel  string `json:"account_label,omitempty"`
}

// TransactionResponse represents a ledger transaction in API responses.
type TransactionResponse struct {
	ID          string                  `json:"id"`
	UserID      string                  `json:"user_id"`
	WalletID    string                  `json:"wallet_id"`
	Type        string                  `json:"type"`
	ValueType   string                  `json:"value_type"`
	Amount      decimal.Decimal         `json:"amount"`
	Currency    string                  `json:"currency"`
	Direction   string                  `json:"direction"`
	Status      string                  `json:"status"`
	RelatedType string                  `json:"related_type,omitempty"`
	RelatedID   string                  `json:"related_id,omitempty"`
	Metadata    map[string]any          `json:"metadata,omitempty"`
	OldBalance  *decimal.Decimal        `json:"old_balance,omitempty"`
	NewBalance  *decimal.Decimal        `json:"new_balance,omitempty"`
	Entries     []*JournalEntryResponse `json:"entries,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	if t == nil {
		return nil
	}

	resp := &TransactionResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		WalletID:    t.WalletID,
		Type:        string(t.Type),
		ValueType:   string(t.ValueType),
		Amount:      t.Amount,
		Currency:    t.Currency,
		Direction:   string(t.Direction),
		Status:      string(t.Status),
		RelatedType: string(t.Related.Kind),
		RelatedID:   t.Related.ID,
		Metadata:    t.Metadata,
		OldBalance:  t.OldBalance,
		NewBalance:  t.NewBalance,
		CreatedAt:   t.CreatedAt,
	}
	for _, e := range t.Entries {
		entry := &JournalEntryResponse{
			ID:        e.ID,
			AccountID: e.AccountID,
			Debit:     e.Debit,
			Credit:    e.Credit,
			Currency:  e.Currency,
			CreatedAt: e.CreatedAt,
		}
		if e.Account != nil {
			entry.AccountUserID = e.Account.UserID
			entry.WalletType = string(e.Account.WalletType)
			entry.AccountLabel = e.Account.Label()
		}
		resp.Entries = append(resp.Entries, entry)
	}

	return resp
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txs []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txs))
	for i, t := range txs {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// Pagination describes the page a list response carries.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func newPagination(page, perPage, total int) Pagination {
	pages := 0
	if perPage > 0 {
		pages = (total + perPage - 1) / perPage
	}
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: pages}
}

// TransactionHistoryResponse is one page of a user's transactions.
type TransactionHistoryResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Pagination   Pagination             `json:"pagination"`
}

// TransactionHistoryFromUseCase converts a history page to response.
func TransactionHistoryFromUseCase(h *usecase.TransactionHistory) *TransactionHistoryResponse {
	return &TransactionHistoryResponse{
		Transactions: TransactionsFromDomain(h.Transactions),
		Pagination:   newPagination(h.Page, h.PerPage, h.Total),
	}
}

// RevenueShareResponse represents a commission in API responses.
type RevenueShareResponse struct {
	ID                  string          `json:"id"`
	RecipientID         string          `json:"recipient_id"`
	OriginTransactionID string          `json:"origin_transaction_id"`
	OrderItemID         string          `json:"order_item_id,omitempty"`
	GenerationLevel     int             `json:"generation_level"`
	Amount              decimal.Decimal `json:"amount"`
	Currency            string          `json:"currency"`
	Status              string          `json:"status"`
	PayoutTransactionID string          `json:"payout_transaction_id,omitempty"`
	PaidAt              *time.Time      `json:"paid_at,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
}

// RevenueShareFromDomain converts a domain revenue share to response.
func RevenueShareFromDomain(s *domain.RevenueShare) *RevenueShareResponse {
	return &RevenueShareResponse{
		ID:                  s.ID,
		RecipientID:         s.RecipientID,
		OriginTransactionID: s.OriginTransactionID,
		OrderItemID:         s.OrderItemID,
		GenerationLevel:     s.GenerationLevel,
		Amount:              s.Amount,
		Currency:            s.Currency,
		Status:              string(s.Status),
		PayoutTransactionID: s.PayoutTransactionID,
		PaidAt:              s.PaidAt,
		CreatedAt:           s.CreatedAt,
	}
}

// RevenueSharesFromDomain converts domain revenue shares to responses.
func RevenueSharesFromDomain(shares []*domain.RevenueShare) []*RevenueShareResponse {
	result := make([]*RevenueShareResponse, len(shares))
	for i, s := range shares {
		result[i] = RevenueShareFromDomain(s)
	}
	return result
}

// CommissionHistoryResponse is one page of a recipient's commissions.
type CommissionHistoryResponse struct {
	Commissions []*RevenueShareResponse `json:"commissions"`
	Pagination  Pagination              `json:"pagination"`
}

// CommissionHistoryFromUseCase converts a commission page to response.
func CommissionHistoryFromUseCase(h *usecase.CommissionHistory) *CommissionHistoryResponse {
	return &CommissionHistoryResponse{
		Commissions: RevenueSharesFromDomain(h.Shares),
		Pagination:  newPagination(h.Page, h.PerPage, h.Total),
	}
}

// PayoutResponse is a settled revenue share with its payout transaction.
type PayoutResponse struct {
	RevenueShare *RevenueShareResponse `json:"revenue_share"`
	Transaction  *TransactionResponse  `json:"transaction"`
}

// PayoutFromUseCase converts a payout result to response.
func PayoutFromUseCase(p *usecase.PayoutResult) *PayoutResponse {
	return &PayoutResponse{
		RevenueShare: RevenueShareFromDomain(p.Share),
		Transaction:  TransactionFromDomain(p.Transaction),
	}
}

// FulfillmentItemResponse is the per-item fulfillment outcome.
type FulfillmentItemResponse struct {
	OrderItemID string `json:"order_item_id"`
	Success     bool   `json:"success"`
	Message     string `json:"message,omitempty"`
}

// FulfillmentResponse is the outcome of a fulfillment attempt.
type FulfillmentResponse struct {
	Success bool                      `json:"success"`
	Items   []FulfillmentItemResponse `json:"items,omitempty"`
	Error   string                    `json:"error,omitempty"`
}

// FulfillmentFromDomain converts a fulfillment result to response.
func FulfillmentFromDomain(f *domain.FulfillmentResult) *FulfillmentResponse {
	if f == nil {
		return nil
	}

	resp := &FulfillmentResponse{Success: f.Success, Error: f.Error}
	for _, item := range f.Items {
		resp.Items = append(resp.Items, FulfillmentItemResponse{
			OrderItemID: item.OrderItemID,
			Success:     item.Success,
			Message:     item.Message,
		})
	}

	return resp
}

// OrderRefResponse identifies an order and its status after an operation.
type OrderRefResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// FailedPayoutResponse is an eager payout that was rolled back.
type FailedPayoutResponse struct {
	RevenueShareID string `json:"revenue_share_id"`
	Error          string `json:"error"`
}

// OrderPaymentResponse is the outcome of processing a paid order.
type OrderPaymentResponse struct {
	Order               OrderRefResponse        `json:"order"`
	PurchaseTransaction *TransactionResponse    `json:"purchase_transaction"`
	RevenueShares       []*RevenueShareResponse `json:"revenue_shares"`
	PaidCommissions     []*PayoutResponse       `json:"paid_commissions"`
	FailedPayouts       []FailedPayoutResponse  `json:"failed_payouts,omitempty"`
	Fulfillment         *FulfillmentResponse    `json:"fulfillment,omitempty"`
}

// OrderPaymentFromUseCase converts an order payment result to response.
func OrderPaymentFromUseCase(r *usecase.OrderPaymentResult) *OrderPaymentResponse {
	resp := &OrderPaymentResponse{
		Order:               OrderRefResponse{ID: r.Order.ID, Status: string(r.Order.Status)},
		PurchaseTransaction: TransactionFromDomain(r.PurchaseTransaction),
		RevenueShares:       RevenueSharesFromDomain(r.RevenueShares),
		PaidCommissions:     make([]*PayoutResponse, len(r.PaidCommissions)),
		Fulfillment:         FulfillmentFromDomain(r.Fulfillment),
	}
	for i, p := range r.PaidCommissions {
		resp.PaidCommissions[i] = PayoutFromUseCase(p)
	}
	for _, f := range r.FailedPayouts {
		resp.FailedPayouts = append(resp.FailedPayouts, FailedPayoutResponse{RevenueShareID: f.RevenueShareID, Error: f.Error})
	}

	return resp
}

// RetryFulfillmentResponse is the outcome of a fulfillment retry.
type RetryFulfillmentResponse struct {
	Order       OrderRefResponse     `json:"order"`
	Fulfillment *FulfillmentResponse `json:"fulfillment"`
}

// CommissionTotalsResponse aggregates an order's commissions.
type CommissionTotalsResponse struct {
	Total        decimal.Decimal `json:"total"`
	PaidCount    int             `json:"paid_count"`
	PendingCount int             `json:"pending_count"`
}

// OrderStatusResponse reports an order's processing state.
type OrderStatusResponse struct {
	OrderID     string                   `json:"order_id"`
	Status      string                   `json:"status"`
	TotalAmount decimal.Decimal          `json:"total_amount"`
	Currency    string                   `json:"currency"`
	UpdatedAt   time.Time                `json:"updated_at"`
	Commissions CommissionTotalsResponse `json:"commissions"`
}

// OrderStatusFromUseCase converts an order processing status to response.
func OrderStatusFromUseCase(s *usecase.OrderProcessingStatus) *OrderStatusResponse {
	return &OrderStatusResponse{
		OrderID:     s.Order.ID,
		Status:      string(s.Order.Status),
		TotalAmount: s.Order.TotalAmount,
		Currency:    s.Order.Currency,
		UpdatedAt:   s.Order.UpdatedAt,
		Commissions: CommissionTotalsResponse{
			Total:        s.Commissions.Total,
			PaidCount:    s.Commissions.PaidCount,
			PendingCount: s.Commissions.PendingCount,
		},
	}
}

// CommissionResultResponse is one share's sweep outcome.
type CommissionResultResponse struct {
	RevenueShareID string           `json:"revenue_share_id"`
	Success        bool             `json:"success"`
	TransactionID  string           `json:"transaction_id,omitempty"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	Error          string           `json:"error,omitempty"`
}

// SweepResponse aggregates a commission sweep.
type SweepResponse struct {
	Processed  int                        `json:"processed"`
	Successful int                        `json:"successful"`
	Failed     int                        `json:"failed"`
	Results    []CommissionResultResponse `json:"results"`
}

// SweepFromUseCase converts a sweep result to response.
func SweepFromUseCase(r *usecase.CommissionSweepResult) *SweepResponse {
	resp := &SweepResponse{
		Processed:  r.Processed,
		Successful: r.Successful,
		Failed:     r.Failed,
		Results:    make([]CommissionResultResponse, len(r.Results)),
	}
	for i, res := range r.Results {
		item := CommissionResultResponse{
			RevenueShareID: res.RevenueShareID,
			Success:        res.Success,
			TransactionID:  res.TransactionID,
			Error:          res.Error,
		}
		if res.Success {
			amount := res.Amount
			item.Amount = &amount
		}
		resp.Results[i] = item
	}

	return resp
}

// FlowLegResponse is one account on either side of a transaction flow.
type FlowLegResponse struct {
	AccountID  string          `json:"account_id"`
	UserID     string          `json:"user_id"`
	WalletType string          `json:"wallet_type"`
	Label      string          `json:"label"`
	Amount     decimal.Decimal `json:"amount"`
}

// TransactionFlowResponse shows where a transaction's value came from and went to.
type TransactionFlowResponse struct {
	Transaction *TransactionResponse `json:"transaction"`
	From        []FlowLegResponse    `json:"from"`
	To          []FlowLegResponse    `json:"to"`
}

// TransactionFlowFromDomain converts a transaction flow to response.
func TransactionFlowFromDomain(f *domain.TransactionFlow) *TransactionFlowResponse {
	legs := func(in []domain.FlowLeg) []FlowLegResponse {
		out := make([]FlowLegResponse, len(in))
		for i, l := range in {
			out[i] = FlowLegResponse{
				AccountID:  l.AccountID,
				UserID:     l.UserID,
				WalletType: string(l.WalletType),
				Label:      l.Label,
				Amount:     l.Amount,
			}
		}
		return out
	}

	return &TransactionFlowResponse{
		Transaction: TransactionFromDomain(f.Transaction),
		From:        legs(f.From),
		To:          legs(f.To),
	}
}

// UserResponse represents a referral graph member.
type UserResponse struct {
	ID                   string `json:"id"`
	ReferredByID         string `json:"referred_by_id,omitempty"`
	Generation           int    `json:"generation"`
	TotalDirectReferrals int    `json:"total_direct_referrals"`
	LeadershipLevel      int    `json:"leadership_level"`
	Designation          string `json:"designation,omitempty"`
	Active               bool   `json:"active"`
}

// UserFromDomain converts a domain user to response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:                   u.ID,
		ReferredByID:         u.ReferredByID,
		Generation:           u.Generation,
		TotalDirectReferrals: u.TotalDirectReferrals,
		LeadershipLevel:      u.LeadershipID,
		Designation:          u.Designation,
		Active:               u.Active,
	}
}

// FinancialSummaryResponse is the platform financial summary.
type FinancialSummaryResponse struct {
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	TotalCommissions   decimal.Decimal `json:"total_commissions"`
	PendingCommissions decimal.Decimal `json:"pending_commissions"`
	PlatformBalance    decimal.Decimal `json:"platform_balance"`
	NetRevenue         decimal.Decimal `json:"net_revenue"`
	From               *time.Time      `json:"from,omitempty"`
	To                 *time.Time      `json:"to,omitempty"`
}

// FinancialSummaryFromUseCase converts a financial summary to response.
func FinancialSummaryFromUseCase(s *usecase.FinancialSummary) *FinancialSummaryResponse {
	return &FinancialSummaryResponse{
		TotalRevenue:       s.TotalRevenue,
		TotalCommissions:   s.TotalCommissions,
		PendingCommissions: s.PendingCommissions,
		PlatformBalance:    s.PlatformBalance,
		NetRevenue:         s.NetRevenue,
		From:               s.From,
		To:                 s.To,
	}
}

// LedgerConsistencyResponse reports global debit/credit totals.
type LedgerConsistencyResponse struct {
	Consistent   bool            `json:"consistent"`
	TotalDebits  decimal.Decimal `json:"total_debits"`
	TotalCredits decimal.Decimal `json:"total_credits"`
	Difference   decimal.Decimal `json:"difference"`
}

// LedgerConsistencyFromUseCase converts ledger totals to response.
func LedgerConsistencyFromUseCase(t *usecase.LedgerTotals) *LedgerConsistencyResponse {
	return &LedgerConsistencyResponse{
		Consistent:   t.Consistent,
		TotalDebits:  t.TotalDebits,
		TotalCredits: t.TotalCredits,
		Difference:   t.TotalDebits.Sub(t.TotalCredits),
	}
}

// ReconciliationResponse compares an account's cached, snapshot and journal balances.
type ReconciliationResponse struct {
	AccountID         string          `json:"account_id"`
	RecordedBalance   decimal.Decimal `json:"recorded_balance"`
	SnapshotBalance   decimal.Decimal `json:"snapshot_balance"`
	CalculatedBalance decimal.Decimal `json:"calculated_balance"`
	Difference        decimal.Decimal `json:"difference"`
	Reconciled        bool            `json:"reconciled"`
	CheckedAt         time.Time       `json:"checked_at"`
}

// ReconciliationFromUseCase converts a reconciliation result to response.
func ReconciliationFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:         r.AccountID,
		RecordedBalance:   r.RecordedBalance,
		SnapshotBalance:   r.SnapshotBalance,
		CalculatedBalance: r.CalculatedBalance,
		Difference:        r.Difference,
		Reconciled:        r.IsReconciled,
		CheckedAt:         r.LastChecked,
	}
}

// ReconciliationReportResponse summarizes a full reconciliation run.
type ReconciliationReportResponse struct {
	TotalAccounts      int                        `json:"total_accounts"`
	ReconciledAccounts int                        `json:"reconciled_accounts"`
	Discrepancies      []*ReconciliationResponse  `json:"discrepancies"`
	LedgerConsistent   bool                       `json:"ledger_consistent"`
	Totals             *LedgerConsistencyResponse `json:"totals,omitempty"`
	CheckedAt          time.Time                  `json:"checked_at"`
}

// ReconciliationReportFromUseCase converts a reconciliation report to response.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	resp := &ReconciliationReportResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		Discrepancies:      make([]*ReconciliationResponse, len(r.Discrepancies)),
		LedgerConsistent:   r.LedgerConsistent,
		CheckedAt:          r.CheckedAt,
	}
	for i, d := range r.Discrepancies {
		resp.Discrepancies[i] = ReconciliationFromUseCase(d)
	}
	if r.Totals != nil {
		resp.Totals = LedgerConsistencyFromUseCase(r.Totals)
	}
	return resp
}

// UplineUserResponse is one ancestor in a referral chain.
type UplineUserResponse struct {
	Generation int           `json:"generation"`
	User       *UserResponse `json:"user"`
}

// UplineResponse lists a user's ancestors, nearest first.
type UplineResponse struct {
	UserID string               `json:"user_id"`
	Upline []UplineUserResponse `json:"upline"`
}

// UplineFromDomain converts an upline chain to response.
func UplineFromDomain(userID string, chain []domain.UplineUser) *UplineResponse {
	resp := &UplineResponse{UserID: userID, Upline: make([]UplineUserResponse, len(chain))}
	for i, u := range chain {
		resp.Upline[i] = UplineUserResponse{Generation: u.Generation, User: UserFromDomain(u.User)}
	}
	return resp
}

// PromotionResponse is one designation change.
type PromotionResponse struct {
	UserID      string `json:"user_id"`
	FromLevel   int    `json:"from_level"`
	ToLevel     int    `json:"to_level"`
	Designation string `json:"designation"`
}

// LeadershipEvaluationResponse lists the promotions a leadership run applied.
type LeadershipEvaluationResponse struct {
	UserID     string              `json:"user_id"`
	Promotions []PromotionResponse `json:"promotions"`
}

// LeadershipEvaluationFromUseCase converts promotions to response.
func LeadershipEvaluationFromUseCase(userID string, promotions []usecase.Promotion) *LeadershipEvaluationResponse {
	resp := &LeadershipEvaluationResponse{UserID: userID, Promotions: make([]PromotionResponse, len(promotions))}
	for i, p := range promotions {
		resp.Promotions[i] = PromotionResponse{
			UserID:      p.UserID,
			FromLevel:   p.FromLevel,
			ToLevel:     p.ToLevel,
			Designation: p.Designation,
		}
	}
	return resp
}
