package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/launchdeck/internal/notes"
)

func (a *App) listSpaces(ctx context.Context) {
	spaces, err := a.notes.ListSpaces(ctx)
	if err != nil {
		a.authHint(err)
		return
	}
	for _, s := range spaces {
		fmt.Fprintf(a.out, "%-36s %s\n", s.ID, s.Name)
	}
}

func (a *App) searchNotes(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: notes <space> [query]")
		return
	}
	found, err := a.notes.Search(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		a.authHint(err)
		return
	}
	for _, n := range found {
		fmt.Fprintf(a.out, "%-36s %s\n", n.ID, n.Name)
		if n.Snippet != "" {
			fmt.Fprintf(a.out, "  %s\n", trim(n.Snippet, 120))
		}
	}
}

func (a *App) newNote(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: newnote <space>")
		return
	}
	title, err := GetSimpleText(a.reader, "Note title", a.out)
	if err != nil {
		a.fail(err)
		return
	}
	body, err := GetMultiline(a.reader, "Body (markdown)", a.out)
	if err != nil {
		a.fail(err)
		return
	}
	n, err := a.notes.CreateNote(ctx, notes.NewNote{SpaceID: args[0], Title: title, Body: body})
	if err != nil {
		a.authHint(err)
		return
	}
	fmt.Fprintln(a.out, "Created note", n.ID)
}
