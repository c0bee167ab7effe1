// Package deploy is a typed client for the deployment platform API.
// Listings paginate on a millisecond timestamp cursor carried in the
// "until" query parameter.
package deploy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrijs2005/launchdeck/internal/common"
	"github.com/dmitrijs2005/launchdeck/internal/httpx"
	"github.com/dmitrijs2005/launchdeck/internal/logging"
	"github.com/dmitrijs2005/launchdeck/internal/pager"
)

// Scope is the authorization scope of the deployment platform.
const Scope = "deploy"

const defaultPageSize = 20

// TokenSource yields bearer tokens and forgets rejected ones.
type TokenSource interface {
	Authorize(ctx context.Context, scope string) (string, error)
	Clear(ctx context.Context, scope string) error
}

// Project is a deployable project on the platform.
type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Framework string `json:"framework"`
	UpdatedAt int64  `json:"updatedAt"`
}

// Deployment is one build of a project.
type Deployment struct {
	UID       string `json:"uid"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	State     string `json:"state"` // READY, ERROR, BUILDING, QUEUED, CANCELED
	CreatedAt int64  `json:"created"`
	Creator   struct {
		Username string `json:"username"`
	} `json:"creator"`
	Meta map[string]string `json:"meta"`
}

// Created returns the deployment's creation time.
func (d Deployment) Created() time.Time { return time.UnixMilli(d.CreatedAt) }

type pagination struct {
	Next int64 `json:"next"`
}

type Client struct {
	base     string
	tokens   TokenSource
	hc       *http.Client
	log      logging.Logger
	pageSize int
	teamID   string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }
func WithLogger(l logging.Logger) Option    { return func(c *Client) { c.log = l } }
func WithPageSize(n int) Option             { return func(c *Client) { c.pageSize = n } }

// WithTeam scopes every call to a team instead of the personal account.
func WithTeam(teamID string) Option { return func(c *Client) { c.teamID = teamID } }

func New(base string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		base:     base,
		tokens:   tokens,
		hc:       &http.Client{Timeout: 30 * time.Second},
		log:      logging.NewDefault(logging.DefaultLevel),
		pageSize: defaultPageSize,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	token, err := c.tokens.Authorize(ctx, Scope)
	if err != nil {
		return err
	}
	if q == nil {
		q = url.Values{}
	}
	if c.teamID != "" {
		q.Set("teamId", c.teamID)
	}
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := httpx.NewJSONRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	if err := httpx.DoJSON(c.hc, req, out); err != nil {
		if httpx.IsAuthError(err) {
			if cerr := c.tokens.Clear(ctx, Scope); cerr != nil {
				c.log.Warn(ctx, "clearing rejected tokens", "error", cerr)
			}
		}
		return err
	}
	return nil
}

// ListProjects returns every project visible to the token.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	until := int64(0)
	return pager.FetchAll(ctx, c.pageSize, func(ctx context.Context, _, size int) (pager.Page[Project], error) {
		q := url.Values{}
		q.Set("limit", fmt.Sprint(size))
		if until > 0 {
			q.Set("until", fmt.Sprint(until))
		}
		var out struct {
			Projects   []Project  `json:"projects"`
			Pagination pagination `json:"pagination"`
		}
		if err := c.get(ctx, "/v9/projects", q, &out); err != nil {
			return pager.Page[Project]{}, err
		}
		until = out.Pagination.Next
		return pager.Page[Project]{Items: out.Projects, HasMore: out.Pagination.Next > 0}, nil
	})
}

// ListDeployments returns the deployments of a project, newest first.
func (c *Client) ListDeployments(ctx context.Context, projectID string) ([]Deployment, error) {
	if projectID == "" {
		return nil, fmt.Errorf("project id is required: %w", common.ErrValidation)
	}
	until := int64(0)
	return pager.FetchAll(ctx, c.pageSize, func(ctx context.Context, _, size int) (pager.Page[Deployment], error) {
		q := url.Values{}
		q.Set("projectId", projectID)
		q.Set("limit", fmt.Sprint(size))
		if until > 0 {
			q.Set("until", fmt.Sprint(until))
		}
		var out struct {
			Deployments []Deployment `json:"deployments"`
			Pagination  pagination   `json:"pagination"`
		}
		if err := c.get(ctx, "/v6/deployments", q, &out); err != nil {
			return pager.Page[Deployment]{}, err
		}
		until = out.Pagination.Next
		return pager.Page[Deployment]{Items: out.Deployments, HasMore: out.Pagination.Next > 0}, nil
	})
}

// Deployment returns one deployment by id.
func (c *Client) Deployment(ctx context.Context, uid string) (*Deployment, error) {
	if uid == "" {
		return nil, fmt.Errorf("deployment id is required: %w", common.ErrValidation)
	}
	var out Deployment
	if err := c.get(ctx, "/v13/deployments/"+uid, nil, &out); err != nil {
		return nil, err
	}
	if out.UID == "" {
		return nil, fmt.Errorf("deployment id missing in response: %w", httpx.ErrUnexpectedShape)
	}
	return &out, nil
}
