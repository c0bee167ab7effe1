package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/launchdeck/internal/botchat"
	"github.com/dmitrijs2005/launchdeck/internal/tasks"
	"github.com/dmitrijs2005/launchdeck/internal/tracker"
)

// defaultScope maps a provider name to the scope an interactive login
// targets by default. Team chat workspaces pass their workspace id as
// an explicit second argument instead.
func defaultScope(provider string) string {
	switch provider {
	case "botchat":
		return botchat.OwnerScope
	case "tasks":
		return tasks.Scope
	case "tracker":
		return tracker.Scope
	}
	return provider
}

func (a *App) login(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: login <provider> [scope]")
		fmt.Fprintln(a.out, "Providers:", strings.Join(a.auth.Names(), ", "))
		return
	}
	auth, err := a.auth.Get(args[0])
	if err != nil {
		a.fail(err)
		return
	}
	scope := defaultScope(args[0])
	if len(args) > 1 {
		scope = args[1]
	}
	if _, err := auth.Login(ctx, scope); err != nil {
		a.fail(err)
		return
	}
	fmt.Fprintf(a.out, "Authorized %s (%s)\n", args[0], scope)
}
