// Package pg provides core PostgreSQL database primitives for storage layers.
//
// Core Components:
//   - Conn: the shared, lazily established connection handle
//   - Querier: Interface for transaction-agnostic database operations
//   - WithTx: Helper for managing database transactions
package pg

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/itchan-dev/threads/shared/config"
	internal_errors "github.com/itchan-dev/threads/shared/errors"
	"github.com/itchan-dev/threads/shared/logger"
	_ "github.com/lib/pq" // Registers the PostgreSQL driver
)

// Querier is satisfied by both *sql.DB and *sql.Tx, so the same query code
// runs inside and outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// ConnectionConfig holds database connection pool settings.
type ConnectionConfig struct {
	MaxOpenConns    int           // Maximum number of open connections to the database
	MaxIdleConns    int           // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration // Maximum amount of time a connection may be reused
	ConnMaxIdleTime time.Duration // Maximum amount of time a connection may be idle
}

// DefaultConnectionConfig returns sensible defaults for connection pooling.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 1 * time.Minute,
	}
}

// LightweightConnectionConfig returns conservative settings for tools and
// test harnesses that don't need many concurrent connections.
func LightweightConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 1 * time.Minute,
	}
}

// Conn owns the single process-wide connection pool.
//
// Connect is cheap once connected and is meant to be called before every
// operation: the first call opens and pings the pool, later calls return it.
// A failed attempt leaves the handle unconnected so the next call retries.
// The returned *sql.DB is safe for concurrent use; Conn does not serialize queries.
type Conn struct {
	dsn     string
	connCfg ConnectionConfig

	mu sync.Mutex
	db *sql.DB
}

func NewConn(cfg *config.Config, connCfg ConnectionConfig) *Conn {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Private.Pg.Host, cfg.Private.Pg.Port,
		cfg.Private.Pg.User, cfg.Private.Pg.Password,
		cfg.Private.Pg.Dbname)
	return &Conn{dsn: dsn, connCfg: connCfg}
}

// Connect returns the shared pool, establishing it on first use.
// Failures are returned as *errors.ConnectionError.
func (c *Conn) Connect(ctx context.Context) (*sql.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return c.db, nil
	}

	db, err := sql.Open("postgres", c.dsn)
	if err != nil {
		return nil, &internal_errors.ConnectionError{Err: fmt.Errorf("failed to open database connection: %w", err)}
	}

	db.SetMaxOpenConns(c.connCfg.MaxOpenConns)
	db.SetMaxIdleConns(c.connCfg.MaxIdleConns)
	db.SetConnMaxLifetime(c.connCfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(c.connCfg.ConnMaxIdleTime)

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &internal_errors.ConnectionError{Err: fmt.Errorf("failed to ping database: %w", err)}
	}

	logger.Log.Info("connected to postgres")
	c.db = db
	return db, nil
}

// Ping connects if needed and checks the pool is alive.
func (c *Conn) Ping(ctx context.Context) error {
	db, err := c.Connect(ctx)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		return &internal_errors.ConnectionError{Err: err}
	}
	return nil
}

// Close tears the pool down. The handle may be connected again afterwards.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// WithTx executes fn within a database transaction.
// If fn returns an error the transaction is rolled back, otherwise it is committed.
func WithTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // No-op if transaction is already committed

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
