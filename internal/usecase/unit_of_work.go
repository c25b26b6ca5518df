package usecase

import (
	"context"
	"time"

	"github.com/iho/mlmledger/internal/domain"
)

// runInTx executes fn inside one database transaction, retrying the whole
// unit on transient errors when a retrier is configured.
func runInTx(ctx context.Context, txManager TransactionManager, retrier Retrier, fn func(ctx context.Context, tx Transaction) error) error {
	op := func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer tx.Rollback(txCtx)

		if err := fn(txCtx, tx); err != nil {
			return err
		}

		return tx.Commit(txCtx)
	}

	if retrier == nil {
		return op()
	}

	return retrier.Retry(ctx, op)
}

// withSavepoint runs fn in a nested transaction so a failure undoes only fn's writes.
func withSavepoint(ctx context.Context, tx Transaction, fn func(sp Transaction) error) error {
	sp, err := tx.Begin(ctx)
	if err != nil {
		return err
	}
	defer sp.Rollback(ctx)

	if err := fn(sp); err != nil {
		return err
	}

	return sp.Commit(ctx)
}

// recordEvent appends an outbox event in the caller's unit of work.
func recordEvent(ctx context.Context, outbox OutboxRepository, idGen IDGenerator, tx Transaction,
	aggregateType, aggregateID, eventType string, payload map[string]any,
) error {
	if outbox == nil {
		return nil
	}

	return outbox.Create(ctx, tx, &domain.OutboxEvent{
		ID:            idGen.Generate(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
	})
}
