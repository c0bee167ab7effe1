// Package oauth implements the token authorizer: it produces a valid access
// token for a credential scope, transparently refreshing an expired one, and
// runs the interactive PKCE consent flow when no usable credential exists.
// "Ensure authorized" and "perform request" are deliberately separate phases:
// Authorize never blocks on user interaction, only Login may.
package oauth

import (
	"fmt"
	"net/url"
)

// Provider describes one OAuth2 backend (authorization endpoint, token
// endpoint, and the client registration used for PKCE).
type Provider struct {
	Name        string
	AuthURL     string
	TokenURL    string
	ClientID    string
	RedirectURI string
	Scopes      string // space-separated, empty for provider default
}

// consentURL builds the browser URL for the authorization request.
func (p Provider) consentURL(state, challenge string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", p.ClientID)
	q.Set("redirect_uri", p.RedirectURI)
	q.Set("state", state)
	q.Set("code_challenge", challenge)
	q.Set("code_challenge_method", "S256")
	if p.Scopes != "" {
		q.Set("scope", p.Scopes)
	}
	return fmt.Sprintf("%s?%s", p.AuthURL, q.Encode())
}
