package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/launchdeck/internal/tracker"
)

func (a *App) whoami(ctx context.Context) {
	v, err := a.tracker.Viewer(ctx)
	if err != nil {
		a.authHint(err)
		return
	}
	fmt.Fprintf(a.out, "%s <%s>\n", v.Name, v.Email)
}

func (a *App) listIssues(ctx context.Context, args []string) {
	teamID := ""
	if len(args) > 0 {
		teamID = args[0]
	}
	issues, err := a.tracker.ListIssues(ctx, teamID)
	if err != nil {
		a.authHint(err)
		return
	}
	for _, i := range issues {
		fmt.Fprintf(a.out, "%-10s %-12s %s\n", i.Identifier, i.State.Name, i.Title)
	}
}

func (a *App) newIssue(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: newissue <team>")
		return
	}
	title, err := GetSimpleText(a.reader, "Issue title", a.out)
	if err != nil {
		a.fail(err)
		return
	}
	desc, err := GetMultiline(a.reader, "Description", a.out)
	if err != nil {
		a.fail(err)
		return
	}
	issue, err := a.tracker.CreateIssue(ctx, tracker.NewIssue{
		TeamID:      args[0],
		Title:       title,
		Description: desc,
	})
	if err != nil {
		a.authHint(err)
		return
	}
	fmt.Fprintf(a.out, "Filed %s %s\n", issue.Identifier, issue.URL)
}
