package oauth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/launchdeck/internal/httpx"
)

func TestTokenResponse_ExpiresIn(t *testing.T) {
	now := time.Unix(1_000_000, 0)
	tr := tokenResponse{AccessToken: "at", RefreshToken: "rt", ExpiresIn: 3600}

	ts, err := tr.toTokenSet(now)
	require.NoError(t, err)
	assert.Equal(t, "at", ts.AccessToken)
	assert.Equal(t, "rt", ts.RefreshToken)
	assert.Equal(t, now.Add(3600*time.Second).Add(-expirySkew).Unix(), ts.ExpiresAt)
}

func TestTokenResponse_JWTExpFallback(t *testing.T) {
	exp := time.Unix(2_000_000, 0)
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": exp.Unix(),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)

	tr := tokenResponse{AccessToken: raw}
	ts, err := tr.toTokenSet(time.Unix(1_000_000, 0))
	require.NoError(t, err)
	assert.Equal(t, exp.Add(-expirySkew).Unix(), ts.ExpiresAt)
}

func TestTokenResponse_OpaqueTokenFallback(t *testing.T) {
	now := time.Unix(1_000_000, 0)
	tr := tokenResponse{AccessToken: "opaque-token"}

	ts, err := tr.toTokenSet(now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(fallbackLifetime).Add(-expirySkew).Unix(), ts.ExpiresAt)
}

func TestTokenResponse_MissingAccessToken(t *testing.T) {
	_, err := tokenResponse{}.toTokenSet(time.Now())
	require.ErrorIs(t, err, httpx.ErrUnexpectedShape)
}

func TestNewPKCEPair(t *testing.T) {
	p1, err := newPKCEPair()
	require.NoError(t, err)
	assert.NotEmpty(t, p1.Verifier)
	assert.NotEmpty(t, p1.Challenge)
	assert.NotEqual(t, p1.Verifier, p1.Challenge)

	p2, err := newPKCEPair()
	require.NoError(t, err)
	assert.NotEqual(t, p1.Verifier, p2.Verifier)
}
