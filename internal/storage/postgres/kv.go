package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrEmptyKey is returned when a blank key is supplied.
var ErrEmptyKey = errors.New("postgres: empty key")

// KVStore persists opaque values in the kv_entries table.
type KVStore struct {
	db *pgxpool.Pool
}

// NewKVStore creates a KVStore backed by the given pool.
//
// Precondition: db must be a valid, open connection pool and the kv_entries
// migration must have been applied.
func NewKVStore(db *pgxpool.Pool) *KVStore {
	return &KVStore{db: db}
}

// Get returns the value stored at key.
//
// Postcondition: ok is false and err is nil when the key is absent.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	var value []byte
	err := s.db.QueryRow(ctx,
		`SELECT value FROM kv_entries WHERE key = $1`,
		key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("querying kv entry: %w", err)
	}
	return value, true, nil
}

// Put upserts value at key.
func (s *KVStore) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	if value == nil {
		value = []byte{}
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO kv_entries (key, value)
		 VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("upserting kv entry: %w", err)
	}
	return nil
}

// Delete removes key.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM kv_entries WHERE key = $1`, key); err != nil {
		return fmt.Errorf("deleting kv entry: %w", err)
	}
	return nil
}
