// Package notes is a typed client for the local note-graph backend.
// The backend runs on the user's machine and paginates search results
// by offset and limit with an explicit total.
package notes

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/launchdeck/internal/common"
	"github.com/dmitrijs2005/launchdeck/internal/httpx"
	"github.com/dmitrijs2005/launchdeck/internal/logging"
	"github.com/dmitrijs2005/launchdeck/internal/pager"
)

// Scope is the authorization scope of the note backend.
const Scope = "notes"

const defaultPageSize = 50

// TokenSource yields bearer tokens and forgets rejected ones.
type TokenSource interface {
	Authorize(ctx context.Context, scope string) (string, error)
	Clear(ctx context.Context, scope string) error
}

// Space is a workspace in the note graph.
type Space struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Note is a note object in a space.
type Note struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Snippet string `json:"snippet"`
	Type    struct {
		Key  string `json:"key"`
		Name string `json:"name"`
	} `json:"type"`
}

// NewNote is the input for CreateNote.
type NewNote struct {
	SpaceID string
	Title   string
	Body    string // markdown
}

type offsetList[T any] struct {
	Data       []T `json:"data"`
	Pagination struct {
		Total   int  `json:"total"`
		Offset  int  `json:"offset"`
		Limit   int  `json:"limit"`
		HasMore bool `json:"has_more"`
	} `json:"pagination"`
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
		hc:       &http.Client{Timeout: 15 * time.Second},
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

	if err := httpx.DoJSON(c.hc, req, out); err != nil {
		if httpx.IsAuthError(err) {
			if cerr := c.tokens.Clear(ctx, Scope); cerr != nil {
				c.log.Warn(ctx, "clearing rejected app key", "error", cerr)
			}
		}
		return err
	}
	return nil
}

// ListSpaces returns the spaces of the local account.
func (c *Client) ListSpaces(ctx context.Context) ([]Space, error) {
	return pager.FetchAll(ctx, c.pageSize, func(ctx context.Context, page, size int) (pager.Page[Space], error) {
		var out offsetList[Space]
		path := fmt.Sprintf("/v1/spaces?offset=%d&limit=%d", (page-1)*size, size)
		if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
			return pager.Page[Space]{}, err
		}
		return pager.Page[Space]{Items: out.Data, HasMore: hasMore(out.Pagination.HasMore, out.Pagination.Offset, len(out.Data), out.Pagination.Total)}, nil
	})
}

// Search returns the notes in a space matching query, every page.
func (c *Client) Search(ctx context.Context, spaceID, query string) ([]Note, error) {
	if spaceID == "" {
		return nil, fmt.Errorf("space id is required: %w", common.ErrValidation)
	}
	return pager.FetchAll(ctx, c.pageSize, func(ctx context.Context, page, size int) (pager.Page[Note], error) {
		body := map[string]any{
			"query": query,
			"types": []string{"note", "page"},
			"sort":  map[string]string{"property_key": "last_modified_date", "direction": "desc"},
		}
		var out offsetList[Note]
		path := fmt.Sprintf("/v1/spaces/%s/search?offset=%d&limit=%d", spaceID, (page-1)*size, size)
		if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
			return pager.Page[Note]{}, err
		}
		return pager.Page[Note]{Items: out.Data, HasMore: hasMore(out.Pagination.HasMore, out.Pagination.Offset, len(out.Data), out.Pagination.Total)}, nil
	})
}

// hasMore trusts the backend's flag but falls back to offset arithmetic
// for older backends that only report a total.
func hasMore(flag bool, offset, count, total int) bool {
	if flag {
		return true
	}
	return total > 0 && offset+count < total
}

// CreateNote creates a note object and returns it.
func (c *Client) CreateNote(ctx context.Context, in NewNote) (*Note, error) {
	if in.SpaceID == "" || in.Title == "" {
		return nil, fmt.Errorf("space id and title are required: %w", common.ErrValidation)
	}
	body := map[string]any{
		"name":     in.Title,
		"body":     in.Body,
		"type_key": "note",
	}
	var out struct {
		Object Note `json:"object"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/spaces/"+in.SpaceID+"/objects", body, &out); err != nil {
		return nil, err
	}
	if out.Object.ID == "" {
		return nil, fmt.Errorf("created note id missing: %w", httpx.ErrUnexpectedShape)
	}
	return &out.Object, nil
}
