package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbooks/general_ledger/internal/apperrors"
)

// txKey carries the active pgx transaction through the context so nested
// repository calls join the same unit of work.
type txKey struct{}

// querier is the subset of pgx operations shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// BaseRepository provides common functionality for all repositories.
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// WithinTransaction executes fn inside a single atomic transaction. Repository
// calls made with the context passed to fn join that transaction. A nested
// call opens a savepoint (pgx nested Begin) instead of a second transaction,
// so a failed inner unit rolls back alone and the outer transaction stays
// usable; without the savepoint the first failed statement would abort the
// whole transaction (SQLSTATE 25P02) and every sibling statement with it.
func (r *BaseRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if outer := txFromContext(ctx); outer != nil {
		nested, err := outer.Begin(ctx)
		if err != nil {
			return apperrors.NewStorageError("failed to open savepoint", err)
		}
		defer nested.Rollback(ctx) // No-op after a successful commit

		if err := fn(context.WithValue(ctx, txKey{}, nested)); err != nil {
			return err
		}
		if err := nested.Commit(ctx); err != nil {
			return apperrors.NewStorageError("failed to release savepoint", err)
		}
		return nil
	}

	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return apperrors.NewStorageError("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx) // No-op after a successful commit

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewStorageError("failed to commit transaction", err)
	}
	return nil
}

// conn returns the active transaction from the context, or the pool when no
// transaction is open.
func (r *BaseRepository) conn(ctx context.Context) querier {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return r.Pool
}

func txFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
