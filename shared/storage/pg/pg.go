// Package pg provides database/sql primitives shared by the SQL record
// stores: pool setup, a transaction helper and identifier quoting.
//
// Core Components:
//   - Querier: transaction-agnostic database operations
//   - WithTx: begin/commit/rollback around a function
//   - Connect: open, configure and ping a pool for any registered driver
package pg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	_ "github.com/lib/pq" // Registers the PostgreSQL driver
)

// Querier is satisfied by both *sql.DB and *sql.Tx, so store code can run
// inside or outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// ConnectionConfig holds database connection pool settings.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConnectionConfig suits the API server talking to Postgres.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 1 * time.Minute,
	}
}

// SingleWriterConnectionConfig keeps one connection open. SQLite allows a
// single writer, so a larger pool only produces SQLITE_BUSY.
func SingleWriterConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}
}

// Connect opens a pool for driverName, applies connCfg and verifies it with
// a ping.
//
// Example:
//
//	db, err := pg.Connect(ctx, "postgres", cfg.Private.Database.URL, pg.DefaultConnectionConfig())
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
func Connect(ctx context.Context, driverName, dsn string, connCfg ConnectionConfig) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(connCfg.MaxOpenConns)
	db.SetMaxIdleConns(connCfg.MaxIdleConns)
	db.SetConnMaxLifetime(connCfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(connCfg.ConnMaxIdleTime)

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// WithTx executes fn within a transaction. An error from fn rolls back;
// otherwise the transaction is committed. The deferred Rollback is a no-op
// after a successful commit.
func WithTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// QuoteIdentifier quotes a table name for use in dynamic SQL. The quoting
// rules are the same for Postgres and SQLite.
//
// Example: ("records") -> `"records"`
func QuoteIdentifier(name string) string {
	return pq.QuoteIdentifier(name)
}
