// Package tasks is a typed client for the document-database task
// backend. It works with either an OAuth token source or a static
// integration token; list endpoints page on opaque cursors.
package tasks

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/launchdeck/internal/common"
	"github.com/dmitrijs2005/launchdeck/internal/httpx"
	"github.com/dmitrijs2005/launchdeck/internal/logging"
	"github.com/dmitrijs2005/launchdeck/internal/pager"
)

// Scope is the single authorization scope of the task backend.
const Scope = "tasks"

const (
	apiVersion      = "2022-06-28"
	defaultPageSize = 20
)

// TokenSource yields bearer tokens and forgets rejected ones. Both the
// OAuth authorizer and a static integration token satisfy it.
type TokenSource interface {
	Authorize(ctx context.Context, scope string) (string, error)
	Clear(ctx context.Context, scope string) error
}

type Client struct {
	base     string
	tokens   TokenSource
	hc       *http.Client
	log      logging.Logger
	pageSize int
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }
func WithLogger(l logging.Logger) Option    { return func(c *Client) { c.log = l } }
func WithPageSize(n int) Option             { return func(c *Client) { c.pageSize = n } }

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

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	token, err := c.tokens.Authorize(ctx, Scope)
	if err != nil {
		return err
	}
	req, err := httpx.NewJSONRequest(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Notion-Version", apiVersion)

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

// SearchDatabases returns the task databases matching query, every
// page of them. An empty query lists all databases the token can see.
func (c *Client) SearchDatabases(ctx context.Context, query string) ([]Database, error) {
	cursor := ""
	return pager.FetchAll(ctx, c.pageSize, func(ctx context.Context, _, size int) (pager.Page[Database], error) {
		body := map[string]any{
			"page_size": size,
			"filter":    map[string]string{"property": "object", "value": "database"},
		}
		if query != "" {
			body["query"] = query
		}
		if cursor != "" {
			body["start_cursor"] = cursor
		}
		var out cursorList
		if err := c.do(ctx, http.MethodPost, "/v1/search", body, &out); err != nil {
			return pager.Page[Database]{}, err
		}
		cursor = out.NextCursor

		dbs := make([]Database, 0, len(out.Results))
		for _, r := range out.Results {
			dbs = append(dbs, Database{ID: r.ID, Title: r.titleOf(), URL: r.URL})
		}
		return pager.Page[Database]{Items: dbs, HasMore: out.HasMore}, nil
	})
}

// QueryDatabase returns the tasks in a database, newest first. A
// non-empty query narrows results to tasks whose title contains it.
func (c *Client) QueryDatabase(ctx context.Context, databaseID, query string) ([]Task, error) {
	if databaseID == "" {
		return nil, fmt.Errorf("database id is required: %w", common.ErrValidation)
	}
	cursor := ""
	return pager.FetchAll(ctx, c.pageSize, func(ctx context.Context, _, size int) (pager.Page[Task], error) {
		body := map[string]any{
			"page_size": size,
			"sorts": []map[string]string{
				{"timestamp": "created_time", "direction": "descending"},
			},
		}
		if query != "" {
			body["filter"] = map[string]any{
				"property": "title",
				"rich_text": map[string]string{"contains": query},
			}
		}
		if cursor != "" {
			body["start_cursor"] = cursor
		}
		var out cursorList
		if err := c.do(ctx, http.MethodPost, "/v1/databases/"+databaseID+"/query", body, &out); err != nil {
			return pager.Page[Task]{}, err
		}
		cursor = out.NextCursor

		ts := make([]Task, 0, len(out.Results))
		for _, r := range out.Results {
			ts = append(ts, Task{ID: r.ID, Title: r.titleOf(), URL: r.URL, CreatedAt: r.CreatedTime})
		}
		return pager.Page[Task]{Items: ts, HasMore: out.HasMore}, nil
	})
}

// CreateTask adds a row to a task database and returns the created task.
func (c *Client) CreateTask(ctx context.Context, in NewTask) (*Task, error) {
	if in.DatabaseID == "" || in.Title == "" {
		return nil, fmt.Errorf("database id and title are required: %w", common.ErrValidation)
	}
	props := map[string]any{
		"title": map[string]any{
			"title": []map[string]any{
				{"text": map[string]string{"content": in.Title}},
			},
		},
	}
	if in.DueDate != "" {
		props["Due date"] = map[string]any{"date": map[string]string{"start": in.DueDate}}
	}
	if in.AssigneeID != "" {
		props["Assignee"] = map[string]any{"people": []map[string]string{{"id": in.AssigneeID}}}
	}
	body := map[string]any{
		"parent":     map[string]string{"database_id": in.DatabaseID},
		"properties": props,
	}
	var out pageObject
	if err := c.do(ctx, http.MethodPost, "/v1/pages", body, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, fmt.Errorf("created task id missing: %w", httpx.ErrUnexpectedShape)
	}
	return &Task{ID: out.ID, Title: in.Title, URL: out.URL, CreatedAt: out.CreatedTime}, nil
}

// ListUsers returns the workspace members, bots excluded.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	cursor := ""
	all, err := pager.FetchAll(ctx, c.pageSize, func(ctx context.Context, _, size int) (pager.Page[User], error) {
		q := url.Values{}
		q.Set("page_size", fmt.Sprint(size))
		if cursor != "" {
			q.Set("start_cursor", cursor)
		}
		var out userList
		if err := c.do(ctx, http.MethodGet, "/v1/users?"+q.Encode(), nil, &out); err != nil {
			return pager.Page[User]{}, err
		}
		cursor = out.NextCursor
		return pager.Page[User]{Items: out.Results, HasMore: out.HasMore}, nil
	})
	if err != nil {
		return nil, err
	}
	people := make([]User, 0, len(all))
	for _, u := range all {
		if u.Type != "bot" {
			people = append(people, u)
		}
	}
	return people, nil
}

// AppendContent appends text to a task page, one paragraph block per
// line. Markdown markup is not interpreted; it goes in as plain text.
func (c *Client) AppendContent(ctx context.Context, pageID, text string) error {
	if pageID == "" || strings.TrimSpace(text) == "" {
		return fmt.Errorf("page id and text are required: %w", common.ErrValidation)
	}
	var children []map[string]any
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		children = append(children, map[string]any{
			"object": "block",
			"type":   "paragraph",
			"paragraph": map[string]any{
				"rich_text": []map[string]any{
					{"text": map[string]string{"content": line}},
				},
			},
		})
	}
	body := map[string]any{"children": children}
	return c.do(ctx, http.MethodPatch, "/v1/blocks/"+pageID+"/children", body, nil)
}
