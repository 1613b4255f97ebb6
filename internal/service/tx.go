// internal/service/tx.go
package service

import (
	"context"
	"fmt"
	"log/slog"

	"custody-wallet/internal/repository"
	"custody-wallet/internal/util"
	"custody-wallet/pkg/db"
)

// TxFuncs bundles the injected transaction boundary so tests can replace it.
type TxFuncs struct {
	Begin    db.BeginTxFunc
	Commit   db.CommitTxFunc
	Rollback db.RollbackTxFunc
}

// DefaultTxFuncs returns the sqlx-backed implementations from pkg/db.
func DefaultTxFuncs() TxFuncs {
	return TxFuncs{Begin: db.BeginTx, Commit: db.CommitTx, Rollback: db.RollbackTx}
}

// unitOfWork runs a function inside one database transaction and retries the
// whole function on optimistic conflicts or PostgreSQL serialization failures.
type unitOfWork struct {
	dbBeginner db.DBTxBeginner
	tx         TxFuncs
	logger     *slog.Logger
}

func isRetryable(err error) bool {
	return util.IsError(err, util.ErrConcurrentModification) || db.IsRetryablePQ(err)
}

// run executes fn at most db.MaxTxAttempts times. fn must be safe to repeat:
// everything it wrote is rolled back before the next attempt.
func (u *unitOfWork) run(ctx context.Context, op string, fn func(q repository.DBExecutor) error) error {
	var err error
	for attempt := 1; attempt <= db.MaxTxAttempts; attempt++ {
		err = u.runOnce(ctx, op, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", op, ctxErr)
		}
		u.logger.WarnContext(ctx, "Retrying transaction after conflict", "op", op, "attempt", attempt, "error", err)
	}
	return err
}

func (u *unitOfWork) runOnce(ctx context.Context, op string, fn func(q repository.DBExecutor) error) error {
	txController, err := u.tx.Begin(ctx, u.dbBeginner)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer u.tx.Rollback(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("%s: transaction controller does not implement DBExecutor", op)
	}

	if err := fn(txExecutor); err != nil {
		return err
	}

	if err := u.tx.Commit(txController); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	return nil
}

// classify returns err unchanged when it already carries a known kind and
// marks it as internal otherwise.
func classify(op string, err error) error {
	if err == nil || util.IsClassified(err) {
		return err
	}
	return util.Internal(op, err)
}
