package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/mlmledger/internal/domain"
	"github.com/iho/mlmledger/internal/usecase"
)

// CreateTransferRequest represents a request to move value between two wallets.
type CreateTransferRequest struct {
	UserID        string          `json:"user_id" validate:"required"`
	FromAccountID string          `json:"from_account_id" validate:"required"`
	ToAccountID   string          `json:"to_account_id" validate:"required,nefield=FromAccountID"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency,omitempty" validate:"omitempty,len=3"`
	Type          string          `json:"type,omitempty" validate:"omitempty,oneof=transfer deposit withdrawal adjustment refund"`
	ValueType     string          `json:"value_type,omitempty" validate:"omitempty,oneof=money points"`
	Metadata      map[string]any  `json:"metadata,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransferRequest) ToUseCaseInput() usecase.CreateSimpleTransferInput {
	return usecase.CreateSimpleTransferInput{
		UserID:        r.UserID,
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		Amount:        r.Amount,
		Currency:      r.Currency,
		Type:          domain.TransactionType(r.Type),
		ValueType:     domain.ValueType(r.ValueType),
		Metadata:      r.Metadata,
	}
}

// AttachReferrerRequest links a user to their referrer.
type AttachReferrerRequest struct {
	ReferrerID string `json:"referrer_id" validate:"required"`
}

// SweepCommissionsRequest bounds a manual commission sweep. An empty body uses
// the default batch size.
type SweepCommissionsRequest struct {
	Limit int `json:"limit,omitempty" validate:"omitempty,gte=1,lte=1000"`
}

// PayRevenueShareRequest optionally names the wallet the payout is drawn from.
type PayRevenueShareRequest struct {
	PlatformWalletID string `json:"platform_wallet_id,omitempty"`
}
