package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/launchdeck/internal/tasks"
)

func (a *App) searchDatabases(ctx context.Context, args []string) {
	dbs, err := a.tasks.SearchDatabases(ctx, strings.Join(args, " "))
	if err != nil {
		a.authHint(err)
		return
	}
	if len(dbs) == 0 {
		fmt.Fprintln(a.out, "No task databases found.")
		return
	}
	for _, db := range dbs {
		fmt.Fprintf(a.out, "%-36s %s\n", db.ID, db.Title)
	}
}

func (a *App) listTasks(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: tasks <database> [query]")
		return
	}
	ts, err := a.tasks.QueryDatabase(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		a.authHint(err)
		return
	}
	for _, task := range ts {
		fmt.Fprintf(a.out, "%-36s %s\n", task.ID, task.Title)
	}
}

func (a *App) addTask(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: addtask <database>")
		return
	}
	title, err := GetSimpleText(a.reader, "Task title", a.out)
	if err != nil {
		a.fail(err)
		return
	}
	due, err := GetSimpleText(a.reader, "Due date (YYYY-MM-DD, empty for none)", a.out)
	if err != nil {
		a.fail(err)
		return
	}
	task, err := a.tasks.CreateTask(ctx, tasks.NewTask{
		DatabaseID: args[0],
		Title:      title,
		DueDate:    due,
	})
	if err != nil {
		a.authHint(err)
		return
	}
	fmt.Fprintf(a.out, "Created %s %s\n", task.ID, task.URL)
}

func (a *App) listUsers(ctx context.Context) {
	users, err := a.tasks.ListUsers(ctx)
	if err != nil {
		a.authHint(err)
		return
	}
	for _, u := range users {
		fmt.Fprintf(a.out, "%-36s %-20s %s\n", u.ID, u.Name, u.Email)
	}
}
