// Package storage persists small opaque values by key for the chance tools.
//
// Every backend is a raw key-value store; interpreting the bytes (schema
// versions, migration of legacy shapes) belongs to the caller.
package storage

import (
	"context"
	"errors"
)

// ErrEmptyKey is returned when a blank key is supplied.
var ErrEmptyKey = errors.New("storage: empty key")

// KV is a byte-valued key-value store.
//
// Implementations must be safe for concurrent use.
type KV interface {
	// Get returns the value stored at key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Put stores value at key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
