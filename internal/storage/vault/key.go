package vault

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/launchdeck/internal/common"
	"github.com/dmitrijs2005/launchdeck/internal/cryptox"
	"github.com/dmitrijs2005/launchdeck/internal/dbx"
)

const keySize = 32

// LoadOrCreateKeyFile returns the sealing key stored at path. On first use a
// fresh random key is generated and written with owner-only permissions.
func LoadOrCreateKeyFile(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != keySize {
			return nil, fmt.Errorf("key file %s: unexpected size %d", path, len(key))
		}
		return key, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	key = common.GenerateRandByteArray(keySize)
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, fmt.Errorf("write key file: %w", err)
	}
	return key, nil
}

// KeyFromPassphrase derives the sealing key from a user passphrase using the
// salt persisted in vault_meta, creating salt and verifier on first use.
// A wrong passphrase is reported as common.ErrUnauthorized.
func KeyFromPassphrase(ctx context.Context, db dbx.DBTX, passphrase []byte) ([]byte, error) {
	salt, err := getMeta(ctx, db, "salt")
	if err != nil {
		return nil, err
	}

	if salt == nil {
		salt = common.GenerateRandByteArray(32)
		key := cryptox.DeriveKey(passphrase, salt)
		if err := setMeta(ctx, db, "salt", salt); err != nil {
			return nil, err
		}
		if err := setMeta(ctx, db, "verifier", cryptox.MakeVerifier(key)); err != nil {
			return nil, err
		}
		return key, nil
	}

	verifier, err := getMeta(ctx, db, "verifier")
	if err != nil {
		return nil, err
	}

	key := cryptox.DeriveKey(passphrase, salt)
	if subtle.ConstantTimeCompare(cryptox.MakeVerifier(key), verifier) == 0 {
		return nil, common.ErrUnauthorized
	}
	return key, nil
}

func getMeta(ctx context.Context, db dbx.DBTX, key string) ([]byte, error) {
	var value []byte
	err := db.QueryRowContext(ctx, `SELECT value FROM vault_meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vault_meta[%s]: %w", key, err)
	}
	return value, nil
}

func setMeta(ctx context.Context, db dbx.DBTX, key string, value []byte) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO vault_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set vault_meta[%s]: %w", key, err)
	}
	return nil
}
