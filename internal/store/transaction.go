package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/paperboy-dev/paperboy-api/internal/platform/logger"
)

// TxFn is the unit of work run inside a transaction. A digest run passes
// one of these covering every write for the run, so either the papers,
// synopses, and delivery record all land or none do.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RunInTransaction begins a transaction, runs fn, and commits it. If fn
// returns an error the transaction is rolled back and the error is
// returned unchanged so callers can match store sentinels. A panic in fn
// also rolls back, then re-panics.
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn) error {
	log := logger.FromContextOrDefault(ctx, nil)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrTransactionFailed, err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("rollback after panic failed",
					slog.String("error", rbErr.Error()),
					slog.Any("panic", p))
			}
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("transaction rollback failed",
				slog.String("rollback_error", rbErr.Error()),
				slog.String("cause", err.Error()))
			return fmt.Errorf("%w: rollback after %v: %v", ErrTransactionFailed, err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrTransactionFailed, err)
	}
	return nil
}
