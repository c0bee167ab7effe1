package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

const helpText = `Commands:
  login <provider>      authorize a backend (see 'login' for the list)
  workspaces            list chat workspaces
  bots [workspace]      list bots in a workspace
  use <workspace>       select the active chat workspace
  chat <bot>            start a chat session with a bot
  history               show recent chat exchanges
  history forget <conv> drop one conversation from history
  databases [query]     find task databases
  tasks <database> [q]  list tasks in a database
  addtask <database>    create a task
  users                 list task workspace members
  domains               list registered domains
  check <domain>...     check domain availability
  domain <name>         show nameservers and forwards
  whoami                show the issue tracker account
  issues [team]         list issues
  newissue <team>       file an issue
  projects              list deployable projects
  deploys <project>     list deployments of a project
  spaces                list note spaces
  notes <space> [query] search notes in a space
  newnote <space>       create a note
  go <query>            resolve a URL shortcut
  status                probe every configured backend
  clearcache            drop all cached backend data
  exit | quit           leave`

// Root runs the interactive command loop until EOF or exit.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "launchdeck (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Fprintf(a.out, "ld %s> ", a.prompt())
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		if a.dispatch(ctx, parts[0], parts[1:]) {
			fmt.Fprintln(a.out, "Bye!")
			return
		}
	}
}

// prompt shows the active chat workspace, if any.
func (a *App) prompt() string {
	if a.workspaceID == "" {
		return ""
	}
	return "(" + a.workspaceID + ") "
}

// dispatch runs one command. It returns true when the loop should end.
// Command handlers print their own errors; dispatch keeps the loop
// alive no matter what a backend did.
func (a *App) dispatch(ctx context.Context, cmd string, args []string) bool {
	switch cmd {
	case "help":
		fmt.Fprintln(a.out, helpText)
	case "login":
		a.login(ctx, args)
	case "workspaces":
		a.listWorkspaces(ctx)
	case "bots":
		a.listBots(ctx, args)
	case "use":
		a.useWorkspace(ctx, args)
	case "chat":
		a.chat(ctx, args)
	case "history":
		a.showHistory(ctx, args)
	case "databases":
		a.searchDatabases(ctx, args)
	case "tasks":
		a.listTasks(ctx, args)
	case "addtask":
		a.addTask(ctx, args)
	case "users":
		a.listUsers(ctx)
	case "domains":
		a.listDomains(ctx)
	case "check":
		a.checkDomain(ctx, args)
	case "domain":
		a.domainDetails(ctx, args)
	case "whoami":
		a.whoami(ctx)
	case "issues":
		a.listIssues(ctx, args)
	case "newissue":
		a.newIssue(ctx, args)
	case "projects":
		a.listProjects(ctx)
	case "deploys":
		a.listDeployments(ctx, args)
	case "spaces":
		a.listSpaces(ctx)
	case "notes":
		a.searchNotes(ctx, args)
	case "newnote":
		a.newNote(ctx, args)
	case "go":
		a.resolveShortcut(ctx, args)
	case "status":
		a.status(ctx)
	case "clearcache":
		a.clearCache(ctx)
	case "exit", "quit":
		return true
	default:
		fmt.Fprintln(a.out, "Unknown command:", cmd)
	}
	return false
}

// fail prints a command error in a uniform way.
func (a *App) fail(err error) {
	fmt.Fprintln(a.out, "Error:", err)
}
