// ABOUTME: Contract tests shared by every Storage backend
// ABOUTME: Runs get/set/remove against memory, file and SQLite storage

package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storageBackends(t *testing.T) map[string]Storage {
	t.Helper()

	fileStorage, err := NewFileStorage(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)

	sqliteStorage, err := NewSQLiteStorage(DriverModernc, filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqliteStorage.Close() })

	return map[string]Storage{
		"memory": NewMemoryStorage(),
		"file":   fileStorage,
		"sqlite": sqliteStorage,
	}
}

func TestStorageContract(t *testing.T) {
	for name, storage := range storageBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := storage.Get(ctx, "k")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, storage.Set(ctx, "k", []byte("one")))
			v, err := storage.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "one", string(v))

			require.NoError(t, storage.Set(ctx, "k", []byte("two")))
			v, err = storage.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "two", string(v))

			require.NoError(t, storage.Remove(ctx, "k"))
			_, err = storage.Get(ctx, "k")
			assert.ErrorIs(t, err, ErrNotFound)

			// Removing twice is fine.
			assert.NoError(t, storage.Remove(ctx, "k"))
		})
	}
}

func TestStoreOverBackends(t *testing.T) {
	for name, storage := range storageBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newTestStore(t, storage)

			_, err := s.Save(ctx, SaveRequest{AgentID: "a", RunID: "r", Messages: exchange("m", "r")})
			require.NoError(t, err)
			assert.Len(t, s.List(ctx), 1)

			s.Clear(ctx)
			assert.Empty(t, s.List(ctx))
		})
	}
}

func TestFileStorage_RejectsPathKeys(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "..", "a/b", `a\b`} {
		assert.Error(t, fs.Set(context.Background(), key, []byte("x")), "key %q", key)
	}
}

func TestFileStorage_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStorage(dir)
	require.NoError(t, err)

	require.NoError(t, fs.Set(context.Background(), "history", []byte("[]")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "history.json", entries[0].Name())
}

func TestNewSQLiteStorage_UnknownDriver(t *testing.T) {
	_, err := NewSQLiteStorage("postgres", filepath.Join(t.TempDir(), "x.db"))
	assert.Error(t, err)
}
