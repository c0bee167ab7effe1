package vault

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/launchdeck/internal/cryptox"
	"github.com/dmitrijs2005/launchdeck/internal/dbx"
)

// SQLiteStore keeps sealed token sets in the tokens table. The sealing key
// never leaves memory; rows hold only ciphertext and nonce.
type SQLiteStore struct {
	db  dbx.DBTX
	key []byte
}

func NewSQLiteStore(db dbx.DBTX, key []byte) *SQLiteStore {
	return &SQLiteStore{db: db, key: key}
}

func (s *SQLiteStore) Load(ctx context.Context, scope string) (*TokenSet, error) {
	var ciphertext, nonce []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT ciphertext, nonce FROM tokens WHERE scope = ?`, scope,
	).Scan(&ciphertext, &nonce)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tokens[%s]: %w", scope, err)
	}

	var ts TokenSet
	if err := cryptox.Open(ciphertext, nonce, s.key, &ts); err != nil {
		return nil, fmt.Errorf("failed to unseal tokens[%s]: %w", scope, err)
	}
	return &ts, nil
}

func (s *SQLiteStore) Save(ctx context.Context, scope string, ts TokenSet) error {
	ciphertext, nonce, err := cryptox.Seal(ts, s.key)
	if err != nil {
		return fmt.Errorf("failed to seal tokens[%s]: %w", scope, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tokens (scope, ciphertext, nonce, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(scope) DO UPDATE SET
			ciphertext = excluded.ciphertext,
			nonce      = excluded.nonce,
			updated_at = excluded.updated_at
	`, scope, ciphertext, nonce, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save tokens[%s]: %w", scope, err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context, scope string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tokens WHERE scope = ?`, scope)
	if err != nil {
		return fmt.Errorf("failed to clear tokens[%s]: %w", scope, err)
	}
	return nil
}
