package cli

import (
	"context"
	"fmt"
)

// clearCache drops every cached backend record and the chat history.
// Stored tokens are kept; 'login' is the only thing that touches them.
func (a *App) clearCache(ctx context.Context) {
	if err := a.kv.Clear(ctx); err != nil {
		a.fail(err)
		return
	}
	if err := a.history.Clear(ctx); err != nil {
		a.fail(err)
		return
	}
	fmt.Fprintln(a.out, "Cache cleared.")
}
