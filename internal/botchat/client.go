// Package botchat is a typed client for the chat-bot platform API.
// Every call authorizes against the scope that owns the target
// workspace, pages through list endpoints sequentially, and clears the
// scope's stored tokens when the platform denies authorization.
package botchat

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/launchdeck/internal/common"
	"github.com/dmitrijs2005/launchdeck/internal/httpx"
	"github.com/dmitrijs2005/launchdeck/internal/logging"
	"github.com/dmitrijs2005/launchdeck/internal/pager"
	"github.com/dmitrijs2005/launchdeck/internal/storage/cache"
)

// OwnerScope is the authorization scope of the user's personal
// workspace. Team workspaces authorize under their own workspace id.
const OwnerScope = "owner"

const (
	defaultPageSize = 20

	cacheKeyScopes     = "botchat:workspace_scopes"
	cacheKeyWorkspaces = "botchat:workspaces"
)

// TokenSource yields bearer tokens per scope and forgets them when the
// platform rejects one.
type TokenSource interface {
	Authorize(ctx context.Context, scope string) (string, error)
	Clear(ctx context.Context, scope string) error
}

// Client talks to the chat-bot platform.
type Client struct {
	base     string
	tokens   TokenSource
	hc       *http.Client
	cache    cache.Store
	log      logging.Logger
	pageSize int

	mu     sync.Mutex
	scopes map[string]string // workspace id -> scope
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }
func WithLogger(l logging.Logger) Option    { return func(c *Client) { c.log = l } }
func WithPageSize(n int) Option             { return func(c *Client) { c.pageSize = n } }

// New returns a client for the platform API at base.
func New(base string, tokens TokenSource, kv cache.Store, opts ...Option) *Client {
	c := &Client{
		base:     base,
		tokens:   tokens,
		hc:       &http.Client{Timeout: 30 * time.Second},
		cache:    kv,
		log:      logging.NewDefault(logging.DefaultLevel),
		pageSize: defaultPageSize,
		scopes:   make(map[string]string),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// get performs an authorized GET and decodes the platform envelope.
func get[T any](ctx context.Context, c *Client, scope, path string, q url.Values) (T, error) {
	var zero T
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := httpx.NewJSONRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return zero, err
	}
	return doEnvelope[T](ctx, c, scope, req)
}

// post performs an authorized JSON POST and decodes the platform envelope.
func post[T any](ctx context.Context, c *Client, scope, path string, body any) (T, error) {
	var zero T
	req, err := httpx.NewJSONRequest(ctx, http.MethodPost, c.base+path, body)
	if err != nil {
		return zero, err
	}
	return doEnvelope[T](ctx, c, scope, req)
}

func doEnvelope[T any](ctx context.Context, c *Client, scope string, req *http.Request) (T, error) {
	var env envelope[T]
	token, err := c.tokens.Authorize(ctx, scope)
	if err != nil {
		return env.Data, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	if err := httpx.DoJSON(c.hc, req, &env); err != nil {
		if httpx.IsAuthError(err) {
			c.forgetScope(ctx, scope)
		}
		return env.Data, err
	}
	if env.Code != 0 {
		apiErr := &httpx.APIError{Status: http.StatusOK, Code: fmt.Sprint(env.Code), Message: env.Msg}
		if authDeniedCode(env.Code) {
			c.forgetScope(ctx, scope)
			return env.Data, fmt.Errorf("%s: %w", apiErr.Message, common.ErrUnauthorized)
		}
		return env.Data, apiErr
	}
	return env.Data, nil
}

// authDeniedCode reports whether an application-level code means the
// token is no longer accepted.
func authDeniedCode(code int) bool {
	switch code {
	case 700012, 4100, 4101:
		return true
	}
	return false
}

func (c *Client) forgetScope(ctx context.Context, scope string) {
	if err := c.tokens.Clear(ctx, scope); err != nil {
		c.log.Warn(ctx, "clearing rejected tokens", "scope", scope, "error", err)
	}
}

// ListWorkspaces returns the caller-owned workspaces, personal
// workspace first, and records each workspace's scope in the directory.
func (c *Client) ListWorkspaces(ctx context.Context) ([]Workspace, error) {
	all, err := pager.FetchAll(ctx, c.pageSize, func(ctx context.Context, page, size int) (pager.Page[Workspace], error) {
		q := url.Values{}
		q.Set("page_num", fmt.Sprint(page))
		q.Set("page_size", fmt.Sprint(size))
		data, err := get[workspacePage](ctx, c, OwnerScope, "/v1/workspaces", q)
		if err != nil {
			return pager.Page[Workspace]{}, err
		}
		return pager.Page[Workspace]{Items: data.Workspaces, HasMore: data.HasMore}, nil
	})
	if err != nil {
		return nil, err
	}

	owned := make([]Workspace, 0, len(all))
	for _, w := range all {
		if w.Owned() {
			owned = append(owned, w)
		}
	}
	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].Personal() && !owned[j].Personal()
	})

	c.recordScopes(ctx, owned)
	if err := cache.SetJSON(ctx, c.cache, cacheKeyWorkspaces, owned); err != nil {
		c.log.Warn(ctx, "caching workspaces", "error", err)
	}
	return owned, nil
}

// CachedWorkspaces returns the last cached workspace listing, falling
// back to a live fetch when the cache is empty or unreadable.
func (c *Client) CachedWorkspaces(ctx context.Context) ([]Workspace, error) {
	var ws []Workspace
	ok, err := cache.GetJSON(ctx, c.cache, cacheKeyWorkspaces, &ws)
	if err != nil {
		c.log.Warn(ctx, "reading cached workspaces", "error", err)
	}
	if ok && err == nil {
		return ws, nil
	}
	return c.ListWorkspaces(ctx)
}

// recordScopes updates the in-memory and persisted workspace scope
// directory. Team workspaces authorize under their own id.
func (c *Client) recordScopes(ctx context.Context, ws []Workspace) {
	c.mu.Lock()
	for _, w := range ws {
		if w.Personal() {
			c.scopes[w.ID] = OwnerScope
		} else {
			c.scopes[w.ID] = w.ID
		}
	}
	snapshot := make(map[string]string, len(c.scopes))
	for k, v := range c.scopes {
		snapshot[k] = v
	}
	c.mu.Unlock()

	if err := cache.SetJSON(ctx, c.cache, cacheKeyScopes, snapshot); err != nil {
		c.log.Warn(ctx, "persisting workspace scope directory", "error", err)
	}
}

// ScopeFor resolves the authorization scope for a workspace, consulting
// the in-memory directory, the persisted directory, and finally a live
// workspace listing. An unknown workspace is an error rather than a
// silent fallback to the owner scope.
func (c *Client) ScopeFor(ctx context.Context, workspaceID string) (string, error) {
	c.mu.Lock()
	scope, ok := c.scopes[workspaceID]
	c.mu.Unlock()
	if ok {
		return scope, nil
	}

	var persisted map[string]string
	if ok, err := cache.GetJSON(ctx, c.cache, cacheKeyScopes, &persisted); ok && err == nil {
		c.mu.Lock()
		for k, v := range persisted {
			if _, exists := c.scopes[k]; !exists {
				c.scopes[k] = v
			}
		}
		scope, ok = c.scopes[workspaceID]
		c.mu.Unlock()
		if ok {
			return scope, nil
		}
	}

	if _, err := c.ListWorkspaces(ctx); err != nil {
		return "", fmt.Errorf("resolving workspace scope: %w", err)
	}
	c.mu.Lock()
	scope, ok = c.scopes[workspaceID]
	c.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("workspace %s: %w", workspaceID, common.ErrNotFound)
	}
	return scope, nil
}

// ListBots returns the published bots of a workspace.
func (c *Client) ListBots(ctx context.Context, workspaceID string) ([]Bot, error) {
	scope, err := c.ScopeFor(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	bots, err := pager.FetchAll(ctx, c.pageSize, func(ctx context.Context, page, size int) (pager.Page[Bot], error) {
		q := url.Values{}
		q.Set("space_id", workspaceID)
		q.Set("page_num", fmt.Sprint(page))
		q.Set("page_size", fmt.Sprint(size))
		data, err := get[botPage](ctx, c, scope, "/v1/bots", q)
		if err != nil {
			return pager.Page[Bot]{}, err
		}
		return pager.Page[Bot]{Items: data.Items, HasMore: data.HasMore}, nil
	})
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, c.cache, "botchat:bots:"+workspaceID, bots); err != nil {
		c.log.Warn(ctx, "caching bots", "workspace", workspaceID, "error", err)
	}
	return bots, nil
}

// CreateConversation opens a new server-side conversation for a bot.
func (c *Client) CreateConversation(ctx context.Context, workspaceID, botID string) (*Conversation, error) {
	if botID == "" {
		return nil, fmt.Errorf("bot id is required: %w", common.ErrValidation)
	}
	scope, err := c.ScopeFor(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	conv, err := post[Conversation](ctx, c, scope, "/v1/conversation/create", map[string]string{"bot_id": botID})
	if err != nil {
		return nil, err
	}
	if conv.ID == "" {
		return nil, fmt.Errorf("conversation id missing: %w", httpx.ErrUnexpectedShape)
	}
	return &conv, nil
}
