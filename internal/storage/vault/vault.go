// Package vault is the encrypted token store: one OAuth token set per
// credential scope, sealed with AES-GCM before it touches disk. It stands in
// for the launcher host's encrypted key-value vault.
package vault

import (
	"context"
	"time"
)

// TokenSet is an access/refresh token pair plus the absolute expiry instant.
// ExpiresAt is epoch seconds, never a duration, so nothing can re-base it.
// A TokenSet is only ever replaced wholesale.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

// Expired reports whether the access token is past its expiry at now.
func (ts TokenSet) Expired(now time.Time) bool {
	return now.Unix() >= ts.ExpiresAt
}

// Store persists one TokenSet per scope. Implementations perform no network
// access; Clear is invoked when a backend reports the credential as invalid
// so the next call re-authorizes.
type Store interface {
	// Load returns the TokenSet for scope, or (nil, nil) when absent.
	Load(ctx context.Context, scope string) (*TokenSet, error)
	Save(ctx context.Context, scope string, ts TokenSet) error
	Clear(ctx context.Context, scope string) error
}
