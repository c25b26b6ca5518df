package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the business category of a ledger transaction.
type TransactionType string

const (
	TransactionTypePurchase         TransactionType = "purchase"
	TransactionTypeWithdrawal       TransactionType = "withdrawal"
	TransactionTypeCommissionPayout TransactionType = "commission_payout"
	TransactionTypeTransfer         TransactionType = "transfer"
	TransactionTypeRefund           TransactionType = "refund"
	TransactionTypeDeposit          TransactionType = "deposit"
	TransactionTypeAdjustment       TransactionType = "adjustment"
)

// ValueType tells whether a transaction moves money or points.
type ValueType string

const (
	ValueTypeMoney  ValueType = "money"
	ValueTypePoints ValueType = "points"
)

// Direction is relative to the primary user of the transaction.
type Direction string

const (
	DirectionInflow  Direction = "inflow"
	DirectionOutflow Direction = "outflow"
)

// TransactionStatus tracks the ledger-level settlement state.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// RelatedKind discriminates what business object a transaction originated from.
type RelatedKind string

const (
	RelatedNone         RelatedKind = ""
	RelatedOrder        RelatedKind = "order"
	RelatedRevenueShare RelatedKind = "revenue_share"
	RelatedWithdrawal   RelatedKind = "withdrawal"
	RelatedTransfer     RelatedKind = "transfer"
)

// RelatedEntity is a typed reference to the business object behind a transaction.
type RelatedEntity struct {
	Kind RelatedKind
	ID   string
}

// IsZero reports whether no related entity is set.
func (r RelatedEntity) IsZero() bool { return r.Kind == RelatedNone }

// RelatedTo builds a RelatedEntity.
func RelatedTo(kind RelatedKind, id string) RelatedEntity {
	return RelatedEntity{Kind: kind, ID: id}
}

// ParseRelatedKind validates a stored discriminator.
func ParseRelatedKind(s string) (RelatedKind, error) {
	switch k := RelatedKind(s); k {
	case RelatedNone, RelatedOrder, RelatedRevenueShare, RelatedWithdrawal, RelatedTransfer:
		return k, nil
	}
	return RelatedNone, fmt.Errorf("%w: unknown related kind %q", ErrValidation, s)
}

// Transaction is an atomic financial event. It is immutable once completed
// apart from status transitions.
type Transaction struct {
	ID         string
	UserID     string
	WalletID   string
	Type       TransactionType
	ValueType  ValueType
	Amount     decimal.Decimal
	Currency   string
	Direction  Direction
	Status     TransactionStatus
	Related    RelatedEntity
	Metadata   map[string]any
	OldBalance *decimal.Decimal
	NewBalance *decimal.Decimal
	Entries    []*JournalEntry
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// JournalEntry is one side of a double-entry record.
type JournalEntry struct {
	ID            string
	TransactionID string
	AccountID     string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
	Currency      string
	CreatedAt     time.Time

	// Account is loaded only on request.
	Account *Account
}

// Delta is the signed balance change this entry applies to its account.
func (e *JournalEntry) Delta() decimal.Decimal {
	return e.Debit.Sub(e.Credit)
}

// TransactionFilter narrows a transaction history query.
type TransactionFilter struct {
	Type      TransactionType
	ValueType ValueType
	Direction Direction
	Status    TransactionStatus
}

// FlowLeg is one account participating in a transaction's money movement.
type FlowLeg struct {
	AccountID  string
	UserID     string
	WalletType WalletType
	Label      string
	Amount     decimal.Decimal
}

// TransactionFlow shows which accounts were credited (from) and debited (to).
type TransactionFlow struct {
	Transaction *Transaction
	From        []FlowLeg
	To          []FlowLeg
}
