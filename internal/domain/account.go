package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletType classifies what an account holds.
type WalletType string

const (
	WalletTypeMoney      WalletType = "MONEY"
	WalletTypePoints     WalletType = "POINTS"
	WalletTypeCommission WalletType = "COMMISSION"
)

// Valid reports whether t is a known wallet type.
func (t WalletType) Valid() bool {
	switch t {
	case WalletTypeMoney, WalletTypePoints, WalletTypeCommission:
		return true
	}
	return false
}

// SystemPurpose tags the platform-owned accounts. End-user wallets carry an empty purpose.
type SystemPurpose string

const (
	PurposeNone              SystemPurpose = ""
	PurposeRevenue           SystemPurpose = "revenue"
	PurposeCommissionPool    SystemPurpose = "commission_pool"
	PurposeWithdrawalHolding SystemPurpose = "withdrawal_holding"
)

// Account is a wallet owned by a user or by the platform user. Balance is a cache
// of Σ(debit − credit) over the account's journal entries.
type Account struct {
	ID         string
	UserID     string
	WalletType WalletType
	Purpose    SystemPurpose
	Currency   string
	Balance    decimal.Decimal
	Version    int64
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Label is the human readable name used in money-flow views.
func (a *Account) Label() string {
	if a.Purpose != PurposeNone {
		return string(a.WalletType) + ":" + string(a.Purpose)
	}
	return string(a.WalletType)
}

// ApplyDelta returns the balance after applying delta (debit − credit).
func (a *Account) ApplyDelta(delta decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(delta)
}

// AccountBalance is the point-in-time snapshot mirror of an Account balance.
type AccountBalance struct {
	AccountID string
	Balance   decimal.Decimal
	Currency  string
	UpdatedAt time.Time
}

// SystemAccounts groups the platform wallets used as counterparties.
type SystemAccounts struct {
	Revenue           *Account
	CommissionPool    *Account
	WithdrawalHolding *Account
}
