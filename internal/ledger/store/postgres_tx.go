package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dErrors "credledger/pkg/domain-errors"
	"credledger/pkg/platform/sentinel"
	txcontext "credledger/pkg/platform/tx"
)

// PostgresTx runs fn inside a SQL transaction carried in the context, so the
// account store and the outbox store join the same commit.
type PostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPostgresTx(db *sql.DB, timeout time.Duration) *PostgresTx {
	if timeout <= 0 {
		timeout = defaultTxTimeout
	}
	return &PostgresTx{db: db, timeout: timeout}
}

func (t *PostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, ok := txcontext.From(ctx); ok {
		return fn(ctx)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // no-op after commit
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		if isConnectionFailure(err) {
			return fmt.Errorf("commit: %w: %w", sentinel.ErrUnavailable, err)
		}
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
