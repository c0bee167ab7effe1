package oauth

import (
	"context"

	"github.com/dmitrijs2005/launchdeck/internal/common"
)

// Static is a fixed-token source for backends authenticated by a
// user-provided integration token instead of an authorization flow.
// Clear is a no-op: there is nothing stored to forget.
type Static string

func (s Static) Authorize(_ context.Context, _ string) (string, error) {
	if s == "" {
		return "", common.ErrAuthorizationRequired
	}
	return string(s), nil
}

func (s Static) Clear(context.Context, string) error { return nil }
