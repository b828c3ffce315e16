// Package store defines the persistence interfaces for the application's
// core entities. Implementations live under internal/platform; the rest
// of the codebase depends only on these interfaces so storage can be
// swapped or mocked in tests.
package store

import (
	"context"
	"database/sql"
)

// DBTX is an interface that abstracts database operations,
// allowing the same store methods to work with either a database
// connection or a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
