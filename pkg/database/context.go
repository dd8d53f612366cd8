package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx operations shared by *pgxpool.Pool and pgx.Tx.
// Repositories execute against a Querier so the same methods work inside and
// outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type contextKey string

// txKey is the context key for an open transaction.
const txKey contextKey = "tx"

// WithTx stores an open transaction in the context. Repository methods called
// with the returned context join that transaction instead of the pool.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// TxFrom retrieves the transaction from context, if any.
func TxFrom(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey).(pgx.Tx)
	return tx, ok
}

// QuerierFrom returns the transaction carried by the context, or db when the
// context has none.
func QuerierFrom(ctx context.Context, db *DB) Querier {
	if tx, ok := TxFrom(ctx); ok {
		return tx
	}
	return db.Pool
}
