package oauth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/launchdeck/internal/httpx"
	"github.com/dmitrijs2005/launchdeck/internal/storage/vault"
)

// expirySkew is subtracted from the reported lifetime so a token is
// refreshed slightly before the backend would reject it.
const expirySkew = 30 * time.Second

// fallbackLifetime is assumed when the token endpoint reports no lifetime
// and the access token carries no readable exp claim.
const fallbackLifetime = time.Hour

// tokenResponse is the token endpoint reply for both the code exchange and
// the refresh grant.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// toTokenSet validates the reply and converts the relative lifetime into an
// absolute expiry instant. When expires_in is missing, the exp claim of a
// JWT-shaped access token is used; failing that, a conservative fallback.
func (tr tokenResponse) toTokenSet(now time.Time) (vault.TokenSet, error) {
	if tr.AccessToken == "" {
		return vault.TokenSet{}, fmt.Errorf("%w: token response without access_token", httpx.ErrUnexpectedShape)
	}

	var expiresAt time.Time
	switch {
	case tr.ExpiresIn > 0:
		expiresAt = now.Add(time.Duration(tr.ExpiresIn) * time.Second)
	default:
		if exp, ok := jwtExpiry(tr.AccessToken); ok {
			expiresAt = exp
		} else {
			expiresAt = now.Add(fallbackLifetime)
		}
	}

	return vault.TokenSet{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresAt:    expiresAt.Add(-expirySkew).Unix(),
	}, nil
}

// jwtExpiry reads the exp claim of a JWT-shaped access token without
// verifying the signature; we only need the expiry hint, not authenticity.
func jwtExpiry(raw string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
