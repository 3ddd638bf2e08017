package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/chance/internal/chance/wheel"
	"github.com/cory-johannsen/chance/internal/config"
	"github.com/cory-johannsen/chance/internal/storage"
)

func backends(t *testing.T) map[string]storage.KV {
	t.Helper()
	file, err := storage.NewFileKV(filepath.Join(t.TempDir(), "kv"))
	require.NoError(t, err)
	return map[string]storage.KV{
		"memory": storage.NewMemoryKV(),
		"file":   file,
	}
}

func TestKV_Contract(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := kv.Get(ctx, "wheel.options.v2:a/b")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, kv.Put(ctx, "wheel.options.v2:a/b", []byte("x")))
			got, ok, err := kv.Get(ctx, "wheel.options.v2:a/b")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "x", string(got))

			require.NoError(t, kv.Delete(ctx, "wheel.options.v2:a/b"))
			require.NoError(t, kv.Delete(ctx, "wheel.options.v2:a/b"))
			_, ok, err = kv.Get(ctx, "wheel.options.v2:a/b")
			require.NoError(t, err)
			assert.False(t, ok)

			assert.ErrorIs(t, kv.Put(ctx, "", nil), storage.ErrEmptyKey)
		})
	}
}

func TestMemoryKV_CopiesValues(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	v := []byte("abc")
	require.NoError(t, kv.Put(ctx, "k", v))
	v[0] = 'z'
	got, _, _ := kv.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))
}

func TestOptionsKey(t *testing.T) {
	assert.Equal(t, "wheel.options.v2", storage.OptionsKey(""))
	assert.Equal(t, "wheel.options.v2:alice", storage.OptionsKey("alice"))
}

// assertDefaults checks labels and colors; default options get fresh ids on
// every call.
func assertDefaults(t *testing.T, got []wheel.Option) {
	t.Helper()
	want := wheel.DefaultOptions()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Label, got[i].Label)
		assert.Equal(t, want[i].Color, got[i].Color)
		assert.NotEmpty(t, got[i].ID)
	}
}

func TestOptionRepository_MissingYieldsDefaults(t *testing.T) {
	repo := storage.NewOptionRepository(storage.NewMemoryKV(), "alice", zaptest.NewLogger(t))
	assertDefaults(t, repo.Load(context.Background()))
}

func TestOptionRepository_SaveLoad(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	repo := storage.NewOptionRepository(kv, "alice", zaptest.NewLogger(t))
	opts := []wheel.Option{
		{ID: "1", Label: "Pizza", Color: "#ff0000"},
		{ID: "2", Label: "Tacos", Color: "#00ff00"},
	}
	require.NoError(t, repo.Save(ctx, opts))
	assert.Equal(t, opts, repo.Load(ctx))

	other := storage.NewOptionRepository(kv, "bob", zap.NewNop())
	assertDefaults(t, other.Load(ctx))
}

func TestOptionRepository_MigratesLegacyAndRewrites(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Put(ctx, storage.OptionsKey("alice"), []byte(`["Pizza","Tacos"]`)))

	repo := storage.NewOptionRepository(kv, "alice", zaptest.NewLogger(t))
	opts := repo.Load(ctx)
	require.Len(t, opts, 2)
	assert.Equal(t, "Pizza", opts[0].Label)
	assert.Equal(t, wheel.Palette[1], opts[1].Color)

	raw, ok, err := kv.Get(ctx, storage.OptionsKey("alice"))
	require.NoError(t, err)
	require.True(t, ok)
	again, shape := wheel.DecodeOptions(raw, wheel.NewID)
	assert.Equal(t, wheel.ShapeCurrent, shape)
	assert.Equal(t, opts, again)
}

func TestOptionRepository_CorruptFallsBack(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Put(ctx, storage.OptionsKey("alice"), []byte(`{not json`)))
	repo := storage.NewOptionRepository(kv, "alice", zaptest.NewLogger(t))
	assertDefaults(t, repo.Load(ctx))
}

func TestOpen_InProcessBackends(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cases := map[string]config.StorageConfig{
		config.BackendMemory: {Backend: config.BackendMemory},
		config.BackendFile:   {Backend: config.BackendFile, Dir: filepath.Join(dir, "files")},
		config.BackendSQLite: {Backend: config.BackendSQLite, Path: filepath.Join(dir, "chance.db")},
	}
	for name, sc := range cases {
		t.Run(name, func(t *testing.T) {
			b, err := storage.Open(ctx, config.Config{Storage: sc}, zap.NewNop())
			require.NoError(t, err)
			defer b.Close()
			assert.Equal(t, name, b.Name)
			assert.NoError(t, b.Health(ctx, time.Second))
			require.NoError(t, b.KV.Put(ctx, "k", []byte("v")))
		})
	}

	_, err := storage.Open(ctx, config.Config{Storage: config.StorageConfig{Backend: "nope"}}, zap.NewNop())
	assert.Error(t, err)
}
