package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/launchdeck/internal/oauth"
)

// openURL is a test seam for launching the browser.
var openURL = oauth.OpenBrowser

func (a *App) resolveShortcut(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: go <keyword> [args, comma-separated]")
		return
	}
	target, sc, err := a.shortcuts.Resolve(ctx, strings.Join(args, " "))
	if err != nil {
		a.fail(err)
		return
	}
	if sc.Title != "" {
		fmt.Fprintf(a.out, "%s (%s)\n", sc.Title, sc.Namespace)
	}
	fmt.Fprintln(a.out, target)
	if err := openURL(target); err != nil {
		a.log.Warn(ctx, "opening browser", "error", err)
	}
}
