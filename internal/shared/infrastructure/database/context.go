package database

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type txKey struct{}

// TxInfo holds the transaction in context and whether it is owned by the caller.
type TxInfo struct {
	Tx    *sqlx.Tx
	Owned bool
}

// WithTx stores transaction info in the context.
func WithTx(ctx context.Context, tx *sqlx.Tx, owned bool) context.Context {
	return context.WithValue(ctx, txKey{}, TxInfo{Tx: tx, Owned: owned})
}

// TxInfoFromContext extracts transaction info from the context.
func TxInfoFromContext(ctx context.Context) (TxInfo, bool) {
	info, ok := ctx.Value(txKey{}).(TxInfo)
	if !ok || info.Tx == nil {
		return TxInfo{}, false
	}
	return info, true
}

// Querier is what repositories run statements against: *sqlx.DB or *sqlx.Tx.
type Querier = sqlx.ExtContext

// QuerierFromContext returns the transaction in ctx if there is one, otherwise db.
// Repositories use it to join a unit of work without knowing about it.
func QuerierFromContext(ctx context.Context, db *sqlx.DB) Querier {
	if info, ok := TxInfoFromContext(ctx); ok {
		return info.Tx
	}
	return db
}
