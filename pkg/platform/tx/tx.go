// Package tx carries a SQL transaction through context so stores can take
// part in a caller-managed transaction without changing their signatures.
package tx

import (
	"context"
	"database/sql"
)

type ctxKey struct{}

var txKey = ctxKey{}

// With stores the transaction in context for downstream store calls.
func With(ctx context.Context, t *sql.Tx) context.Context {
	if t == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, t)
}

// From returns the transaction carried by ctx, or nil when the caller did not
// open one. Stores fall back to their own DB handle on nil.
func From(ctx context.Context) *sql.Tx {
	t, _ := ctx.Value(txKey).(*sql.Tx)
	return t
}
