// Package tracker is a typed client for the issue tracker's GraphQL
// API. Queries and mutations go through a single endpoint; list
// queries page on relay-style cursors.
package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/launchdeck/internal/common"
	"github.com/dmitrijs2005/launchdeck/internal/httpx"
	"github.com/dmitrijs2005/launchdeck/internal/logging"
	"github.com/dmitrijs2005/launchdeck/internal/pager"
)

// Scope is the authorization scope of the issue tracker.
const Scope = "tracker"

const defaultPageSize = 50

// TokenSource yields bearer tokens and forgets rejected ones.
type TokenSource interface {
	Authorize(ctx context.Context, scope string) (string, error)
	Clear(ctx context.Context, scope string) error
}

// Viewer is the authenticated user.
type Viewer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Issue is a tracker issue.
type Issue struct {
	ID         string `json:"id"`
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	State      struct {
		Name string `json:"name"`
	} `json:"state"`
}

// NewIssue is the input for CreateIssue. TeamID and Title are required.
type NewIssue struct {
	TeamID      string
	Title       string
	Description string
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

type Client struct {
	endpoint string
	tokens   TokenSource
	hc       *http.Client
	log      logging.Logger
	pageSize int
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }
func WithLogger(l logging.Logger) Option    { return func(c *Client) { c.log = l } }
func WithPageSize(n int) Option             { return func(c *Client) { c.pageSize = n } }

func New(endpoint string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
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

// query runs one GraphQL request and unmarshals the data payload into
// out. GraphQL-level errors are mapped the same way HTTP errors are:
// an authentication error clears the stored tokens.
func (c *Client) query(ctx context.Context, q string, vars map[string]any, out any) error {
	token, err := c.tokens.Authorize(ctx, Scope)
	if err != nil {
		return err
	}
	req, err := httpx.NewJSONRequest(ctx, http.MethodPost, c.endpoint, gqlRequest{Query: q, Variables: vars})
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var resp gqlResponse
	if err := httpx.DoJSON(c.hc, req, &resp); err != nil {
		if httpx.IsAuthError(err) {
			c.forget(ctx)
		}
		return err
	}
	if len(resp.Errors) > 0 {
		first := resp.Errors[0]
		if first.Extensions.Code == "AUTHENTICATION_ERROR" || first.Extensions.Code == "UNAUTHENTICATED" {
			c.forget(ctx)
			return fmt.Errorf("%s: %w", first.Message, common.ErrUnauthorized)
		}
		return &httpx.APIError{Status: http.StatusOK, Code: first.Extensions.Code, Message: first.Message}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("%w: %v", httpx.ErrUnexpectedShape, err)
	}
	return nil
}

func (c *Client) forget(ctx context.Context) {
	if err := c.tokens.Clear(ctx, Scope); err != nil {
		c.log.Warn(ctx, "clearing rejected tokens", "error", err)
	}
}

// Viewer returns the authenticated user.
func (c *Client) Viewer(ctx context.Context) (*Viewer, error) {
	var out struct {
		Viewer Viewer `json:"viewer"`
	}
	err := c.query(ctx, `query { viewer { id name email } }`, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out.Viewer, nil
}

const issuesQuery = `query Issues($first: Int!, $after: String, $filter: IssueFilter) {
  issues(first: $first, after: $after, filter: $filter, orderBy: updatedAt) {
    nodes { id identifier title url state { name } }
    pageInfo { hasNextPage endCursor }
  }
}`

// ListIssues returns issues, most recently updated first. A non-empty
// teamID narrows them to one team.
func (c *Client) ListIssues(ctx context.Context, teamID string) ([]Issue, error) {
	cursor := ""
	return pager.FetchAll(ctx, c.pageSize, func(ctx context.Context, _, size int) (pager.Page[Issue], error) {
		vars := map[string]any{"first": size}
		if teamID != "" {
			vars["filter"] = map[string]any{
				"team": map[string]any{"id": map[string]string{"eq": teamID}},
			}
		}
		if cursor != "" {
			vars["after"] = cursor
		}
		var out struct {
			Issues struct {
				Nodes    []Issue `json:"nodes"`
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
			} `json:"issues"`
		}
		if err := c.query(ctx, issuesQuery, vars, &out); err != nil {
			return pager.Page[Issue]{}, err
		}
		cursor = out.Issues.PageInfo.EndCursor
		return pager.Page[Issue]{Items: out.Issues.Nodes, HasMore: out.Issues.PageInfo.HasNextPage}, nil
	})
}

const createIssueMutation = `mutation CreateIssue($input: IssueCreateInput!) {
  issueCreate(input: $input) {
    success
    issue { id identifier title url state { name } }
  }
}`

// CreateIssue files a new issue and returns it.
func (c *Client) CreateIssue(ctx context.Context, in NewIssue) (*Issue, error) {
	if in.TeamID == "" || in.Title == "" {
		return nil, fmt.Errorf("team id and title are required: %w", common.ErrValidation)
	}
	input := map[string]any{"teamId": in.TeamID, "title": in.Title}
	if in.Description != "" {
		input["description"] = in.Description
	}
	var out struct {
		IssueCreate struct {
			Success bool  `json:"success"`
			Issue   Issue `json:"issue"`
		} `json:"issueCreate"`
	}
	if err := c.query(ctx, createIssueMutation, map[string]any{"input": input}, &out); err != nil {
		return nil, err
	}
	if !out.IssueCreate.Success {
		return nil, fmt.Errorf("issue was not created: %w", common.ErrInternal)
	}
	return &out.IssueCreate.Issue, nil
}
