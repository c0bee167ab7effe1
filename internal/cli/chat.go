package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/launchdeck/internal/botchat"
	"github.com/dmitrijs2005/launchdeck/internal/common"
	"github.com/dmitrijs2005/launchdeck/internal/storage/history"
)

func (a *App) listWorkspaces(ctx context.Context) {
	ws, err := a.bots.ListWorkspaces(ctx)
	if err != nil {
		a.authHint(err)
		return
	}
	for _, w := range ws {
		marker := " "
		if w.ID == a.workspaceID {
			marker = "*"
		}
		fmt.Fprintf(a.out, "%s %-24s %-10s %s\n", marker, w.ID, w.WorkspaceType, w.Name)
	}
}

func (a *App) useWorkspace(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: use <workspace>")
		return
	}
	if _, err := a.bots.ScopeFor(ctx, args[0]); err != nil {
		a.authHint(err)
		return
	}
	a.workspaceID = args[0]
	a.botID = ""
	a.conversationID = ""
}

// currentWorkspace falls back to the personal workspace when the user
// never ran 'use'.
func (a *App) currentWorkspace(ctx context.Context) (string, error) {
	if a.workspaceID != "" {
		return a.workspaceID, nil
	}
	ws, err := a.bots.CachedWorkspaces(ctx)
	if err != nil {
		return "", err
	}
	if len(ws) == 0 {
		return "", errors.New("no workspaces available, run 'login botchat' first")
	}
	a.workspaceID = ws[0].ID
	return a.workspaceID, nil
}

func (a *App) listBots(ctx context.Context, args []string) {
	wsID := ""
	if len(args) > 0 {
		wsID = args[0]
	} else {
		var err error
		if wsID, err = a.currentWorkspace(ctx); err != nil {
			a.authHint(err)
			return
		}
	}
	bots, err := a.bots.ListBots(ctx, wsID)
	if err != nil {
		a.authHint(err)
		return
	}
	for _, b := range bots {
		fmt.Fprintf(a.out, "%-24s %s\n", b.ID, b.Name)
	}
}

// chat starts an interactive session with a bot. Every line is sent to
// the bot; replies stream in as they arrive. An empty line ends the
// session.
func (a *App) chat(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: chat <bot>")
		return
	}
	botID := args[0]
	wsID, err := a.currentWorkspace(ctx)
	if err != nil {
		a.authHint(err)
		return
	}

	if a.botID != botID || a.conversationID == "" {
		conv, err := a.bots.CreateConversation(ctx, wsID, botID)
		if err != nil {
			a.authHint(err)
			return
		}
		a.botID = botID
		a.conversationID = conv.ID
	}

	fmt.Fprintln(a.out, "Chatting with", botID, "(empty line to stop)")
	for {
		question, err := GetSimpleText(a.reader, "", a.out)
		if err != nil || question == "" {
			return
		}
		var answer strings.Builder
		err = a.bots.StreamChat(ctx, wsID, botID, a.conversationID, question, func(ev botchat.ChatEvent) error {
			if ev.Type == botchat.EventDelta {
				fmt.Fprint(a.out, ev.Content)
				answer.WriteString(ev.Content)
			}
			return nil
		})
		fmt.Fprintln(a.out)
		if err != nil {
			a.authHint(err)
			continue
		}
		rec := history.Exchange{
			ID:             uuid.NewString(),
			BotID:          botID,
			ConversationID: a.conversationID,
			Question:       question,
			Answer:         answer.String(),
		}
		if err := a.history.Append(ctx, rec); err != nil {
			a.log.Warn(ctx, "saving chat history", "error", err)
		}
	}
}

func (a *App) showHistory(ctx context.Context, args []string) {
	if len(args) == 2 && args[0] == "forget" {
		if err := a.history.DeleteConversation(ctx, args[1]); err != nil {
			a.fail(err)
		}
		if a.conversationID == args[1] {
			a.conversationID = ""
		}
		return
	}
	items, err := a.history.List(ctx, 20)
	if err != nil {
		a.fail(err)
		return
	}
	for _, e := range items {
		fmt.Fprintf(a.out, "[%s] %s (%s)\n  Q: %s\n  A: %s\n",
			e.CreatedAt.Format("2006-01-02 15:04"), e.BotID, e.ConversationID,
			e.Question, trim(e.Answer, 200))
	}
}

func trim(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// authHint prints the error, pointing at 'login' when authorization is
// what is missing.
func (a *App) authHint(err error) {
	if errors.Is(err, common.ErrAuthorizationRequired) || errors.Is(err, common.ErrUnauthorized) {
		fmt.Fprintln(a.out, "Error:", err)
		fmt.Fprintln(a.out, "Run 'login <provider>' to authorize.")
		return
	}
	a.fail(err)
}
