// internal/core/ports/database.go
package ports

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Transactor is the transaction boundary the costing engine runs under.
// Every mutating operation executes its read-modify-write cycle inside a
// single call to Transaction so partial writes can never be observed.
type Transactor interface {
	Transaction(ctx context.Context, fn func(pgx.Tx) error) error
}

// Database defines the port for database operations, abstracting the
// concrete pgxpool implementation from handlers that need basic DB access.
type Database interface {
	Transactor
	Pool() *pgxpool.Pool
	Close()
	Ping(ctx context.Context) error
	Health(ctx context.Context) map[string]interface{}
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}
