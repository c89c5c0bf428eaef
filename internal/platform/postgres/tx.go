package postgres

import (
	"context"
	"database/sql"

	"github.com/phrazzld/folio-api/internal/store"
)

// queryFn runs statements against either a fresh transaction or the
// caller's transaction.
type queryFn func(ctx context.Context, q store.DBTX) error

// inTransaction runs fn atomically. A store built on the pool opens its own
// transaction; a store built with WithTx joins the caller's, which then
// owns commit and rollback.
func inTransaction(ctx context.Context, db store.DBTX, fn queryFn) error {
	pool, ok := db.(*sql.DB)
	if !ok {
		return fn(ctx, db)
	}
	return store.RunInTransaction(ctx, pool, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, tx)
	})
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
