package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-lunar-birthday/internal/config"
	"github.com/tartampluch/go-lunar-birthday/internal/storage"
)

// backends returns one fresh instance of every KV implementation.
func backends(t *testing.T) map[string]storage.KV {
	t.Helper()

	file, err := storage.NewFile(filepath.Join(t.TempDir(), "kv"))
	require.NoError(t, err)

	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return map[string]storage.KV{
		"memory": storage.NewMemory(),
		"file":   file,
		"sqlite": db,
	}
}

func TestKV_GetMissing(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := kv.Get(context.Background(), "absent")
			assert.ErrorIs(t, err, storage.ErrNotFound)
		})
	}
}

func TestKV_PutThenGet(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, kv.Put(ctx, config.StorageKeyBirthdays, []byte(`[{"id":"a"}]`)))

			got, err := kv.Get(ctx, config.StorageKeyBirthdays)
			require.NoError(t, err)
			assert.JSONEq(t, `[{"id":"a"}]`, string(got))

			// Overwrite replaces the whole value.
			require.NoError(t, kv.Put(ctx, config.StorageKeyBirthdays, []byte(`[]`)))
			got, err = kv.Get(ctx, config.StorageKeyBirthdays)
			require.NoError(t, err)
			assert.Equal(t, "[]", string(got))
		})
	}
}

func TestKV_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, kv.Put(ctx, config.StorageKeyBirthdays, []byte("list")))
			require.NoError(t, kv.Put(ctx, config.StorageKeyLastEvaluated, []byte("2024-02-10")))

			got, err := kv.Get(ctx, config.StorageKeyLastEvaluated)
			require.NoError(t, err)
			assert.Equal(t, "2024-02-10", string(got))
		})
	}
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()

	in := []byte("abc")
	require.NoError(t, kv.Put(ctx, "k", in))
	in[0] = 'z'

	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got), "mutating the input must not change the stored value")

	got[1] = 'z'
	again, _ := kv.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestSQLite_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "persist.db")

	db, err := storage.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, db.Put(ctx, "k", []byte("v")))
	require.NoError(t, db.Close())

	// Migrations must be idempotent on an existing database.
	db, err = storage.OpenSQLite(path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	got, err := db.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestKV_IOErrorsNameTheKey(t *testing.T) {
	ctx := context.Background()

	t.Run("File", func(t *testing.T) {
		dir := t.TempDir()
		kv, err := storage.NewFile(dir)
		require.NoError(t, err)
		// A directory where the value file should be makes both reads and renames fail.
		require.NoError(t, os.Mkdir(filepath.Join(dir, "k.json"), config.DirPermUserRWX))

		_, err = kv.Get(ctx, "k")
		assert.ErrorContains(t, err, config.ErrKVRead+` "k"`)
		assert.ErrorContains(t, kv.Put(ctx, "k", []byte("v")), config.ErrKVWrite+` "k"`)
	})

	t.Run("SQLite", func(t *testing.T) {
		db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "closed.db"))
		require.NoError(t, err)
		require.NoError(t, db.Close())

		_, err = db.Get(ctx, "k")
		assert.ErrorContains(t, err, config.ErrKVRead+` "k"`)
		assert.ErrorContains(t, db.Put(ctx, "k", []byte("v")), config.ErrKVWrite+` "k"`)
	})
}

func TestFile_CancelledContext(t *testing.T) {
	kv, err := storage.NewFile(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, kv.Put(ctx, "k", []byte("v")), context.Canceled)
	_, err = kv.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpen_SelectsBackend(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		backend string
		path    string
		wantErr bool
	}{
		{"Memory", config.StorageMemory, "", false},
		{"File", config.StorageFile, filepath.Join(dir, "files"), false},
		{"SQLite", config.StorageSQLite, filepath.Join(dir, "db", "b.db"), false},
		{"Unknown", "redis", filepath.Join(dir, "x"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := config.Defaults()
			s.Storage.Backend = tt.backend
			s.Storage.Path = tt.path

			kv, closer, err := storage.Open(s)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer func() { _ = closer.Close() }()

			require.NoError(t, kv.Put(context.Background(), "k", []byte("v")))
		})
	}
}
