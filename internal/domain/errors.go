package domain

import (
	"errors"
	"fmt"
)

// Error classes. Every specific error below wraps exactly one of them so callers
// can branch on the class with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
)

var (
	// Ledger errors
	ErrInvalidAmount       = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrUnbalancedJournal   = fmt.Errorf("%w: journal entries do not balance", ErrValidation)
	ErrInvalidJournalLine  = fmt.Errorf("%w: journal line must carry exactly one positive side in whole minor units", ErrValidation)
	ErrWalletMismatch      = fmt.Errorf("%w: wallet mismatch", ErrValidation)
	ErrCurrencyMismatch    = fmt.Errorf("%w: currency mismatch", ErrValidation)
	ErrSameAccount         = fmt.Errorf("%w: cannot transfer to same account", ErrValidation)
	ErrAccountNotFound     = fmt.Errorf("account %w", ErrNotFound)
	ErrTransactionNotFound = fmt.Errorf("transaction %w", ErrNotFound)
	ErrBalanceNotFound     = fmt.Errorf("account balance %w", ErrNotFound)
	ErrAccountExists       = fmt.Errorf("account already exists: %w", ErrConflict)

	// Referral graph errors
	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
	ErrReferrerAlreadySet  = fmt.Errorf("%w: user already has a referrer", ErrValidation)
	ErrSelfReferral        = fmt.Errorf("%w: user cannot refer themselves", ErrValidation)
	ErrReferralCycle       = fmt.Errorf("%w: referral would create a cycle", ErrValidation)
	ErrDesignationNotFound = fmt.Errorf("designation %w", ErrNotFound)
	ErrUnknownTargetKind   = fmt.Errorf("%w: unknown leadership target kind", ErrValidation)

	// Commission errors
	ErrRevenueShareNotFound    = fmt.Errorf("revenue share %w", ErrNotFound)
	ErrRevenueShareAlreadyPaid = fmt.Errorf("revenue share already paid: %w", ErrConflict)
	ErrInvalidPercentages      = fmt.Errorf("%w: invalid generation percentages", ErrValidation)

	// Order / payment errors
	ErrOrderNotFound            = fmt.Errorf("order %w", ErrNotFound)
	ErrPaymentNotFound          = fmt.Errorf("payment %w", ErrNotFound)
	ErrPaymentNotSuccessful     = fmt.Errorf("%w: payment is not successful", ErrValidation)
	ErrOrderAlreadyProcessed    = fmt.Errorf("order already processed: %w", ErrConflict)
	ErrInvalidOrderTransition   = fmt.Errorf("%w: invalid order status transition", ErrValidation)
	ErrOrderNotAwaitingDelivery = fmt.Errorf("%w: order is not awaiting fulfillment", ErrValidation)
)

// IsNotFound reports whether err belongs to the not-found class.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsValidation reports whether err belongs to the validation class.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsConflict reports whether err belongs to the conflict class.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
