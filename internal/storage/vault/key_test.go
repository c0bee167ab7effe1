package vault

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/launchdeck/internal/common"
)

func TestLoadOrCreateKeyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.key")

	key1, err := LoadOrCreateKeyFile(path)
	require.NoError(t, err)
	assert.Len(t, key1, keySize)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	key2, err := LoadOrCreateKeyFile(path)
	require.NoError(t, err)
	assert.Equal(t, key1, key2, "second load must return the same key")
}

func TestLoadOrCreateKeyFile_CorruptSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.key")
	require.NoError(t, os.WriteFile(path, []byte("short"), 0o600))

	_, err := LoadOrCreateKeyFile(path)
	require.Error(t, err)
}

func setupMetaDB(t *testing.T) *SQLiteStore {
	t.Helper()
	db := setupDB(t)
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS vault_meta (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
DELETE FROM vault_meta;
`)
	require.NoError(t, err)
	return NewSQLiteStore(db, nil)
}

func TestKeyFromPassphrase(t *testing.T) {
	store := setupMetaDB(t)
	ctx := context.Background()

	key1, err := KeyFromPassphrase(ctx, store.db, []byte("correct horse"))
	require.NoError(t, err)
	assert.Len(t, key1, 32)

	key2, err := KeyFromPassphrase(ctx, store.db, []byte("correct horse"))
	require.NoError(t, err)
	assert.Equal(t, key1, key2)

	_, err = KeyFromPassphrase(ctx, store.db, []byte("wrong"))
	require.ErrorIs(t, err, common.ErrUnauthorized)
}
