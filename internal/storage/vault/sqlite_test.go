package vault

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/launchdeck/internal/common"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:vaulttest?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS tokens (
  scope      TEXT PRIMARY KEY,
  ciphertext BLOB NOT NULL,
  nonce      BLOB NOT NULL,
  updated_at INTEGER NOT NULL
);
DELETE FROM tokens;
`)
	require.NoError(t, err)
	return db
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	db := setupDB(t)
	store := NewSQLiteStore(db, common.GenerateRandByteArray(32))
	ctx := context.Background()

	ts := TokenSet{AccessToken: "at-1", RefreshToken: "rt-1", ExpiresAt: 1900000000}
	require.NoError(t, store.Save(ctx, "ws-1", ts))

	got, err := store.Load(ctx, "ws-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ts, *got)
}

func TestSQLiteStore_LoadAbsent(t *testing.T) {
	store := NewSQLiteStore(setupDB(t), common.GenerateRandByteArray(32))

	got, err := store.Load(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_SaveReplacesWholesale(t *testing.T) {
	store := NewSQLiteStore(setupDB(t), common.GenerateRandByteArray(32))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "ws-1", TokenSet{AccessToken: "old", RefreshToken: "old-rt", ExpiresAt: 1}))
	require.NoError(t, store.Save(ctx, "ws-1", TokenSet{AccessToken: "new", ExpiresAt: 2}))

	got, err := store.Load(ctx, "ws-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "new", got.AccessToken)
	assert.Empty(t, got.RefreshToken, "save must replace the whole set, not merge")
}

func TestSQLiteStore_ScopeIsolation(t *testing.T) {
	db := setupDB(t)
	store := NewSQLiteStore(db, common.GenerateRandByteArray(32))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "workspace-A", TokenSet{AccessToken: "a"}))
	require.NoError(t, store.Save(ctx, "workspace-B", TokenSet{AccessToken: "b"}))

	require.NoError(t, store.Clear(ctx, "workspace-A"))

	gotA, err := store.Load(ctx, "workspace-A")
	require.NoError(t, err)
	assert.Nil(t, gotA)

	gotB, err := store.Load(ctx, "workspace-B")
	require.NoError(t, err)
	require.NotNil(t, gotB)
	assert.Equal(t, "b", gotB.AccessToken)
}

func TestSQLiteStore_EncryptedAtRest(t *testing.T) {
	db := setupDB(t)
	store := NewSQLiteStore(db, common.GenerateRandByteArray(32))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "ws-1", TokenSet{AccessToken: "super-secret-token"}))

	var raw []byte
	require.NoError(t, db.QueryRow(`SELECT ciphertext FROM tokens WHERE scope = 'ws-1'`).Scan(&raw))
	assert.NotContains(t, string(raw), "super-secret-token")
}

func TestSQLiteStore_WrongKeyFailsToUnseal(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	require.NoError(t, NewSQLiteStore(db, common.GenerateRandByteArray(32)).
		Save(ctx, "ws-1", TokenSet{AccessToken: "x"}))

	_, err := NewSQLiteStore(db, common.GenerateRandByteArray(32)).Load(ctx, "ws-1")
	require.Error(t, err)
}

func TestTokenSet_Expired(t *testing.T) {
	now := time.Unix(1000, 0)
	assert.False(t, TokenSet{ExpiresAt: 1001}.Expired(now))
	assert.True(t, TokenSet{ExpiresAt: 1000}.Expired(now))
	assert.True(t, TokenSet{ExpiresAt: 999}.Expired(now))
}
