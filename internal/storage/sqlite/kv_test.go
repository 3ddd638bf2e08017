package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/chance/internal/storage/sqlite"
)

func openStore(t *testing.T) (*sqlite.KVStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chance.db")
	store, err := sqlite.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestKVStore_PutGetDelete(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "k", []byte("one")))
	require.NoError(t, store.Put(ctx, "k", []byte("two")))
	got, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", string(got))

	require.NoError(t, store.Delete(ctx, "k"))
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, store.Ping(ctx))
}

func TestKVStore_SurvivesReopen(t *testing.T) {
	store, path := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "wheel.options.v2:bob", []byte(`[]`)))
	require.NoError(t, store.Close())

	again, err := sqlite.Open(path)
	require.NoError(t, err)
	defer again.Close()
	got, ok, err := again.Get(ctx, "wheel.options.v2:bob")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", string(got))
}

func TestKVStore_EmptyKeyAndPath(t *testing.T) {
	store, _ := openStore(t)
	assert.ErrorIs(t, store.Put(context.Background(), "", nil), sqlite.ErrEmptyKey)

	_, err := sqlite.Open("  ")
	assert.Error(t, err)
}

func TestOpen_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "nested", "chance.db")
	store, err := sqlite.Open(path)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Ping(context.Background()))
}
