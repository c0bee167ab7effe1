package cli

import (
	"context"
	"fmt"
)

func (a *App) listProjects(ctx context.Context) {
	projects, err := a.deploy.ListProjects(ctx)
	if err != nil {
		a.authHint(err)
		return
	}
	for _, p := range projects {
		fmt.Fprintf(a.out, "%-28s %-12s %s\n", p.ID, p.Framework, p.Name)
	}
}

func (a *App) listDeployments(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: deploys <project>")
		return
	}
	ds, err := a.deploy.ListDeployments(ctx, args[0])
	if err != nil {
		a.authHint(err)
		return
	}
	for _, d := range ds {
		fmt.Fprintf(a.out, "%-28s %-10s %-20s %s\n",
			d.UID, d.State, d.Created().Format("2006-01-02 15:04"), d.URL)
	}
}
