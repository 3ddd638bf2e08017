// Package postgres keeps persisted chance data in PostgreSQL through a pgx v5 pool.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/chance/internal/config"
)

// Schema is the kv_entries table, identical to migrations/000001_kv_entries.up.sql.
const Schema = `
CREATE TABLE IF NOT EXISTS kv_entries (
    key        TEXT        PRIMARY KEY,
    value      BYTEA       NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

// connectAttempts bounds the pings NewPool makes before giving up.
const connectAttempts = 5

// Pool owns the pgx connection pool shared by the postgres stores.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to the database described by cfg. The first ping is
// retried with doubling backoff so the daemon can start alongside the
// database container.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a pool that answered a ping, or a non-nil error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := ping(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &Pool{pool: pool}, nil
}

func ping(ctx context.Context, pool *pgxpool.Pool) error {
	backoff := 100 * time.Millisecond
	var err error
	for attempt := 1; ; attempt++ {
		if err = pool.Ping(ctx); err == nil {
			return nil
		}
		if attempt == connectAttempts {
			return fmt.Errorf("pinging database (%d attempts): %w", attempt, err)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("pinging database: %w", ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

// EnsureSchema creates kv_entries if it does not exist yet.
func (p *Pool) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("creating kv schema: %w", err)
	}
	return nil
}

// Health pings the database, failing if no answer arrives within timeout.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// Close releases every pooled connection.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
