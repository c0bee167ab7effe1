package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/launchdeck/internal/botchat"
	"github.com/dmitrijs2005/launchdeck/internal/deploy"
	"github.com/dmitrijs2005/launchdeck/internal/logging"
	"github.com/dmitrijs2005/launchdeck/internal/notes"
	"github.com/dmitrijs2005/launchdeck/internal/oauth"
	"github.com/dmitrijs2005/launchdeck/internal/registrar"
	"github.com/dmitrijs2005/launchdeck/internal/shortcuts"
	"github.com/dmitrijs2005/launchdeck/internal/storage/history"
	"github.com/dmitrijs2005/launchdeck/internal/tasks"
	"github.com/dmitrijs2005/launchdeck/internal/tracker"
)

type memStore struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMemStore() *memStore { return &memStore{m: make(map[string][]byte)} }

func (c *memStore) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m[key], nil
}

func (c *memStore) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = value
	return nil
}

func (c *memStore) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, key)
	return nil
}

func (c *memStore) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m = make(map[string][]byte)
	return nil
}

func testApp(out *bytes.Buffer) *App {
	return &App{
		log:    logging.NewDefault(logging.DefaultLevel),
		out:    out,
		reader: bufio.NewReader(strings.NewReader("")),
	}
}

func TestDispatch_UnknownCommand(t *testing.T) {
	var out bytes.Buffer
	a := testApp(&out)

	exit := a.dispatch(context.Background(), "frobnicate", nil)
	assert.False(t, exit)
	assert.Contains(t, out.String(), "Unknown command: frobnicate")
}

func TestDispatch_HelpAndExit(t *testing.T) {
	var out bytes.Buffer
	a := testApp(&out)

	assert.False(t, a.dispatch(context.Background(), "help", nil))
	assert.Contains(t, out.String(), "login <provider>")
	assert.True(t, a.dispatch(context.Background(), "exit", nil))
	assert.True(t, a.dispatch(context.Background(), "quit", nil))
}

func TestCheckDomainCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"SUCCESS","response":{"avail":"yes","price":"9.99","additional":{"renewal":{"price":"12.00"}}}}`)
	}))
	defer srv.Close()

	var out bytes.Buffer
	a := testApp(&out)
	a.registrar = registrar.New(srv.URL, registrar.Credentials{APIKey: "k", SecretAPIKey: "s"})

	a.dispatch(context.Background(), "check", []string{"example.dev"})
	assert.Contains(t, out.String(), "example.dev is available")
	assert.Contains(t, out.String(), "9.99")
}

func TestCheckDomainCommand_Usage(t *testing.T) {
	var out bytes.Buffer
	a := testApp(&out)
	a.dispatch(context.Background(), "check", nil)
	assert.Contains(t, out.String(), "Usage: check <domain>")
}

func TestResolveShortcutCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "g 1:\n  url: https://example.org/?q=<q>\n  title: Example search\n")
	}))
	defer srv.Close()

	oldOpen := openURL
	defer func() { openURL = oldOpen }()
	var opened string
	openURL = func(u string) error { opened = u; return nil }

	var out bytes.Buffer
	a := testApp(&out)
	a.shortcuts = shortcuts.New(srv.URL, []string{"o"}, newMemStore())

	a.dispatch(context.Background(), "go", []string{"g", "golang"})
	assert.Contains(t, out.String(), "https://example.org/?q=golang")
	assert.Equal(t, "https://example.org/?q=golang", opened)
}

func TestStatusCommand_ReportsPerBackend(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/json/v3/ping":
			fmt.Fprint(w, `{"status":"SUCCESS","yourIp":"1.2.3.4"}`)
		case "/v1/workspaces":
			fmt.Fprint(w, `{"code":0,"data":{"workspaces":[],"has_more":false}}`)
		case "/v1/users":
			fmt.Fprint(w, `{"results":[],"has_more":false}`)
		case "/v9/projects":
			fmt.Fprint(w, `{"projects":[],"pagination":{"next":0}}`)
		case "/v1/spaces":
			fmt.Fprint(w, `{"data":[],"pagination":{"total":0,"offset":0,"limit":50,"has_more":false}}`)
		default:
			fmt.Fprint(w, `{"data":{"viewer":{"id":"u","name":"n","email":"e"}}}`)
		}
	}))
	defer up.Close()

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"out to lunch"}`, http.StatusBadGateway)
	}))
	defer down.Close()

	var out bytes.Buffer
	a := testApp(&out)
	a.bots = botchat.New(up.URL, oauth.Static("t"), newMemStore())
	a.tasks = tasks.New(up.URL, oauth.Static("t"))
	a.registrar = registrar.New(up.URL, registrar.Credentials{APIKey: "k", SecretAPIKey: "s"})
	a.tracker = tracker.New(up.URL+"/graphql", oauth.Static("t"))
	a.deploy = deploy.New(down.URL, oauth.Static("t"))
	a.notes = notes.New(up.URL, oauth.Static("t"))

	a.dispatch(context.Background(), "status", nil)

	text := out.String()
	require.Contains(t, text, "registrar  ok")
	assert.Contains(t, text, "tracker    ok")
	assert.Contains(t, text, "deploy     down")
}

type fakeHistory struct {
	exchanges []history.Exchange
	deleted   []string
}

func (f *fakeHistory) Append(_ context.Context, e history.Exchange) error {
	f.exchanges = append(f.exchanges, e)
	return nil
}

func (f *fakeHistory) List(_ context.Context, limit int) ([]history.Exchange, error) {
	if limit > len(f.exchanges) {
		limit = len(f.exchanges)
	}
	return f.exchanges[:limit], nil
}

func (f *fakeHistory) DeleteConversation(_ context.Context, conversationID string) error {
	f.deleted = append(f.deleted, conversationID)
	return nil
}

func (f *fakeHistory) Clear(_ context.Context) error {
	f.exchanges = nil
	return nil
}

func TestHistoryForgetCommand(t *testing.T) {
	var out bytes.Buffer
	a := testApp(&out)
	fh := &fakeHistory{}
	a.history = fh
	a.conversationID = "conv-1"

	a.dispatch(context.Background(), "history", []string{"forget", "conv-1"})

	assert.Equal(t, []string{"conv-1"}, fh.deleted)
	assert.Empty(t, a.conversationID, "forgetting the active conversation resets it")
}
