package store

import (
	"context"
	"database/sql"
)

// DBTX is the common surface of *sql.DB and *sql.Tx. Store
// implementations are written against it so the same code path serves
// standalone calls and calls running inside RunInTransaction via WithTx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
