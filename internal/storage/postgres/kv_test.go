//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/chance/internal/storage/postgres"
	"github.com/cory-johannsen/chance/internal/testutil"
)

func TestKVStore_RoundTrip(t *testing.T) {
	pg := testutil.StartPostgres(t)
	store := pg.Store
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "wheel.options.v2:alice")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "wheel.options.v2:alice", []byte(`["a","b"]`)))
	require.NoError(t, store.Put(ctx, "wheel.options.v2:alice", []byte(`["c"]`)))

	got, ok, err := store.Get(ctx, "wheel.options.v2:alice")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["c"]`, string(got))

	require.NoError(t, store.Delete(ctx, "wheel.options.v2:alice"))
	require.NoError(t, store.Delete(ctx, "wheel.options.v2:alice"))
	_, ok, err = store.Get(ctx, "wheel.options.v2:alice")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, store.Put(ctx, "", nil), postgres.ErrEmptyKey)
	assert.NoError(t, pg.Pool.Health(ctx, pg.Config.MaxConnLifetime))
}

// Property: arbitrary bytes survive a put/get cycle unchanged.
func TestKVStore_PropertyBytesPreserved(t *testing.T) {
	pg := testutil.StartPostgres(t)
	store := pg.Store
	ctx := context.Background()

	rapid.Check(t, func(rt *rapid.T) {
		key := rapid.StringMatching(`[a-z]{1,12}`).Draw(rt, "key")
		value := rapid.SliceOf(rapid.Byte()).Draw(rt, "value")
		require.NoError(rt, store.Put(ctx, key, value))
		got, ok, err := store.Get(ctx, key)
		require.NoError(rt, err)
		require.True(rt, ok)
		assert.Equal(rt, len(value), len(got))
		if len(value) > 0 {
			assert.Equal(rt, value, got)
		}
	})
}
