package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultFulfillmentTimeout bounds the fulfillment call made after the financial leg commits.
	DefaultFulfillmentTimeout = 30 * time.Second

	// DefaultSweepBatch is the number of pending commissions settled per sweep.
	DefaultSweepBatch = 100

	// DefaultEagerPayoutMaxGeneration is the deepest generation paid during order processing.
	DefaultEagerPayoutMaxGeneration = 3

	// DefaultLeadershipMinDirectReferrals is the short-circuit threshold for promotions.
	DefaultLeadershipMinDirectReferrals = 10

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// upline walks never go deeper than this, whatever the caller asks for.
	maxUplineDepth = 64
)
