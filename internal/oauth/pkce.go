package oauth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// pkcePair is the verifier/challenge pair for one authorization attempt.
// The challenge method is always S256.
type pkcePair struct {
	Verifier  string
	Challenge string
}

func newPKCEPair() (pkcePair, error) {
	raw := make([]byte, 64)
	if _, err := rand.Read(raw); err != nil {
		return pkcePair{}, err
	}
	verifier := base64.RawURLEncoding.EncodeToString(raw)

	sum := sha256.Sum256([]byte(verifier))
	return pkcePair{
		Verifier:  verifier,
		Challenge: base64.RawURLEncoding.EncodeToString(sum[:]),
	}, nil
}
