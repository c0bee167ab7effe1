package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/launchdeck/internal/common"
	"github.com/dmitrijs2005/launchdeck/internal/httpx"
	"github.com/dmitrijs2005/launchdeck/internal/logging"
	"github.com/dmitrijs2005/launchdeck/internal/storage/vault"
)

// Authorizer produces valid access tokens for credential scopes. Stored
// token sets live in the vault; refreshes for the same scope are serialized
// so two concurrent callers cannot race two refreshes or consent flows.
type Authorizer struct {
	provider Provider
	store    vault.Store
	flow     ConsentFlow
	hc       *http.Client
	log      logging.Logger
	now      func() time.Time

	mu         sync.Mutex
	scopeLocks map[string]*sync.Mutex
}

type Option func(*Authorizer)

func WithHTTPClient(hc *http.Client) Option {
	return func(a *Authorizer) { a.hc = hc }
}

func WithLogger(log logging.Logger) Option {
	return func(a *Authorizer) { a.log = log }
}

// WithClock overrides the time source; tests pin it.
func WithClock(now func() time.Time) Option {
	return func(a *Authorizer) { a.now = now }
}

func New(provider Provider, store vault.Store, flow ConsentFlow, opts ...Option) *Authorizer {
	a := &Authorizer{
		provider:   provider,
		store:      store,
		flow:       flow,
		hc:         http.DefaultClient,
		log:        logging.NewDefault(logging.DefaultLevel),
		now:        time.Now,
		scopeLocks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Authorizer) lockScope(scope string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	l, ok := a.scopeLocks[scope]
	if !ok {
		l = &sync.Mutex{}
		a.scopeLocks[scope] = l
	}
	return l
}

// Authorize returns a currently-valid access token for scope without any
// user interaction: a stored unexpired token is reused as-is, an expired one
// is refreshed (and the new set persisted wholesale). When nothing usable is
// stored, or the refresh token turns out to be revoked (the stored set is
// cleared first), it returns common.ErrAuthorizationRequired so the caller
// can decide whether to run Login or fail fast.
func (a *Authorizer) Authorize(ctx context.Context, scope string) (string, error) {
	l := a.lockScope(scope)
	l.Lock()
	defer l.Unlock()

	ts, err := a.store.Load(ctx, scope)
	if err != nil {
		return "", fmt.Errorf("load tokens: %w", err)
	}
	if ts == nil {
		return "", common.ErrAuthorizationRequired
	}

	if !ts.Expired(a.now()) {
		return ts.AccessToken, nil
	}

	if ts.RefreshToken == "" {
		return "", common.ErrAuthorizationRequired
	}

	refreshed, err := a.refresh(ctx, scope, ts.RefreshToken)
	if err != nil {
		if isInvalidGrant(err) {
			a.log.Warn(ctx, "refresh token rejected, clearing credentials",
				"provider", a.provider.Name, "scope", scope)
			if clearErr := a.store.Clear(ctx, scope); clearErr != nil {
				return "", fmt.Errorf("clear tokens: %w", clearErr)
			}
			return "", common.ErrAuthorizationRequired
		}
		return "", fmt.Errorf("refresh token: %w", err)
	}
	return refreshed.AccessToken, nil
}

// Login runs the interactive PKCE consent flow for scope, persists the
// resulting token set, and returns its access token. This is the only
// operation in the client that may block on user interaction.
func (a *Authorizer) Login(ctx context.Context, scope string) (string, error) {
	l := a.lockScope(scope)
	l.Lock()
	defer l.Unlock()

	pkce, err := newPKCEPair()
	if err != nil {
		return "", fmt.Errorf("generate pkce pair: %w", err)
	}
	state, err := common.MakeRandHexString(16)
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}

	code, err := a.flow.Obtain(ctx, a.provider.consentURL(state, pkce.Challenge), state)
	if err != nil {
		return "", fmt.Errorf("consent flow: %w", err)
	}

	ts, err := a.exchange(ctx, code, pkce.Verifier)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}

	if err := a.store.Save(ctx, scope, ts); err != nil {
		return "", fmt.Errorf("save tokens: %w", err)
	}
	a.log.Info(ctx, "authorized", "provider", a.provider.Name, "scope", scope)
	return ts.AccessToken, nil
}

// Ensure is Authorize with an interactive fallback: when no usable
// credential is stored it falls through to Login instead of failing.
func (a *Authorizer) Ensure(ctx context.Context, scope string) (string, error) {
	token, err := a.Authorize(ctx, scope)
	if errors.Is(err, common.ErrAuthorizationRequired) {
		return a.Login(ctx, scope)
	}
	return token, err
}

// Clear drops the stored token set for scope. Typed API surfaces call it
// when a backend reports the credential as invalid.
func (a *Authorizer) Clear(ctx context.Context, scope string) error {
	return a.store.Clear(ctx, scope)
}

func (a *Authorizer) exchange(ctx context.Context, code, verifier string) (vault.TokenSet, error) {
	body := map[string]string{
		"grant_type":    "authorization_code",
		"client_id":     a.provider.ClientID,
		"code":          code,
		"code_verifier": verifier,
		"redirect_uri":  a.provider.RedirectURI,
	}
	return a.callTokenEndpoint(ctx, body)
}

func (a *Authorizer) refresh(ctx context.Context, scope, refreshToken string) (vault.TokenSet, error) {
	body := map[string]string{
		"grant_type":    "refresh_token",
		"client_id":     a.provider.ClientID,
		"refresh_token": refreshToken,
	}
	ts, err := a.callTokenEndpoint(ctx, body)
	if err != nil {
		return vault.TokenSet{}, err
	}
	if err := a.store.Save(ctx, scope, ts); err != nil {
		return vault.TokenSet{}, fmt.Errorf("save tokens: %w", err)
	}
	return ts, nil
}

func (a *Authorizer) callTokenEndpoint(ctx context.Context, body map[string]string) (vault.TokenSet, error) {
	req, err := httpx.NewJSONRequest(ctx, http.MethodPost, a.provider.TokenURL, body)
	if err != nil {
		return vault.TokenSet{}, err
	}

	var tr tokenResponse
	if err := httpx.DoJSON(a.hc, req, &tr); err != nil {
		return vault.TokenSet{}, err
	}
	return tr.toTokenSet(a.now())
}

// isInvalidGrant matches "the refresh token is dead" replies: the standard
// invalid_grant code, or an auth-level status from backends that do not
// speak the OAuth error vocabulary.
func isInvalidGrant(err error) bool {
	var apiErr *httpx.APIError
	if errors.As(err, &apiErr) && apiErr.Code == "invalid_grant" {
		return true
	}
	return httpx.IsAuthError(err)
}
