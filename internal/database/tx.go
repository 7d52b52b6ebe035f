package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so repositories can run inside or outside a transaction
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx executes fn within a database transaction.
// If fn returns an error the transaction is rolled back, otherwise it is committed.
//
// Usage:
//
//	err := database.WithTx(ctx, db, func(tx *sql.Tx) error {
//	    if err := repository.NewStepApprovalRepository(tx).Upsert(ctx, approval); err != nil {
//	        return err
//	    }
//	    return repository.NewRevisionRequestRepository(tx).Create(ctx, request)
//	})
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.ErrorContext(ctx, "Failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
