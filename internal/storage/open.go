package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/chance/internal/config"
	"github.com/cory-johannsen/chance/internal/storage/postgres"
	"github.com/cory-johannsen/chance/internal/storage/sqlite"
)

// Backend is an opened KV together with the resources it holds.
type Backend struct {
	KV   KV
	Name string

	pool   *postgres.Pool
	sqlite *sqlite.KVStore
}

// Open builds the backend named by cfg.Storage.Backend.
//
// Precondition: cfg has passed Validate.
// Postcondition: Returns a usable backend or a non-nil error. Close must be
// called to release connections.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return &Backend{KV: NewMemoryKV(), Name: config.BackendMemory}, nil
	case config.BackendFile:
		kv, err := NewFileKV(cfg.Storage.Dir)
		if err != nil {
			return nil, err
		}
		return &Backend{KV: kv, Name: config.BackendFile}, nil
	case config.BackendSQLite:
		kv, err := sqlite.Open(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		return &Backend{KV: kv, Name: config.BackendSQLite, sqlite: kv}, nil
	case config.BackendPostgres:
		start := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		if err := pool.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("database connected", zap.Duration("elapsed", time.Since(start)))
		return &Backend{KV: postgres.NewKVStore(pool.DB()), Name: config.BackendPostgres, pool: pool}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// Health reports whether the backing store is reachable. In-process
// backends are always healthy.
func (b *Backend) Health(ctx context.Context, timeout time.Duration) error {
	switch {
	case b.pool != nil:
		return b.pool.Health(ctx, timeout)
	case b.sqlite != nil:
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return b.sqlite.Ping(ctx)
	default:
		return nil
	}
}

// Close releases any held connections.
func (b *Backend) Close() error {
	if b.pool != nil {
		b.pool.Close()
	}
	if b.sqlite != nil {
		return b.sqlite.Close()
	}
	return nil
}
