// Package pager flattens paginated backend listings into a single ordered
// slice. All the launchdeck API clients paginate through it, whether the
// backend counts pages, offsets, or opaque cursors (cursor state lives in
// the fetch closure in that case).
package pager

import (
	"context"
	"errors"
	"fmt"
)

// ErrPageLimit is returned when a backend keeps reporting more pages past
// the configured cap. It guards against listings that never set HasMore to
// false.
var ErrPageLimit = errors.New("page limit exceeded")

// DefaultMaxPages bounds a single FetchAll call unless overridden with
// WithMaxPages.
const DefaultMaxPages = 1000

// Page is one page of a paginated listing plus a continuation flag.
type Page[T any] struct {
	Items   []T
	HasMore bool
}

// FetchFunc loads one page. Pages are 1-indexed, matching the backends.
type FetchFunc[T any] func(ctx context.Context, page, pageSize int) (Page[T], error)

type options struct {
	maxPages int
}

type Option func(*options)

// WithMaxPages overrides the iteration cap. Values below 1 are
// ignored.
func WithMaxPages(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.maxPages = n
		}
	}
}

// FetchAll repeatedly calls fetch, appending each page's items in order,
// until a page reports HasMore false. Pages are requested strictly
// sequentially starting from page 1; the full result is materialized before
// returning. A fetch error aborts the loop and is returned wrapped with the
// failing page number.
func FetchAll[T any](ctx context.Context, pageSize int, fetch FetchFunc[T], opts ...Option) ([]T, error) {
	o := options{maxPages: DefaultMaxPages}
	for _, opt := range opts {
		opt(&o)
	}

	var items []T
	for page := 1; ; page++ {
		if page > o.maxPages {
			return nil, fmt.Errorf("page %d: %w", page, ErrPageLimit)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p, err := fetch(ctx, page, pageSize)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		items = append(items, p.Items...)

		if !p.HasMore {
			return items, nil
		}
	}
}
