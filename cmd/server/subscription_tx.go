package main

import (
	"context"
	"database/sql"
	"time"

	dErrors "bulletin/pkg/domain-errors"
	txcontext "bulletin/pkg/platform/tx"
)

const defaultSubscriptionTxTimeout = 5 * time.Second

// subscriptionPostgresTx runs the registration workflow inside a database
// transaction. The open *sql.Tx travels on the context so the stores pick it
// up without changing their signatures.
type subscriptionPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newSubscriptionPostgresTx(db *sql.DB) *subscriptionPostgresTx {
	return &subscriptionPostgresTx{db: db}
}

func (t *subscriptionPostgresTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultSubscriptionTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	return nil
}
