package botchat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, events []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/workspaces" {
			writeEnvelope(w, workspacePage{Workspaces: []Workspace{
				{ID: "ws-p", WorkspaceType: "personal", RoleType: "owner"},
			}})
			return
		}
		require.Equal(t, "/v3/chat", r.URL.Path)
		assert.Equal(t, "conv-1", r.URL.Query().Get("conversation_id"))

		w.Header().Set("Content-Type", "text/event-stream")
		for _, ev := range events {
			fmt.Fprint(w, ev)
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}))
}

func TestStreamChat_DeliversEventsInOrder(t *testing.T) {
	srv := chatServer(t, []string{
		"event: conversation.message.delta\ndata: {\"role\":\"assistant\",\"type\":\"answer\",\"content\":\"Hel\"}\n\n",
		"event: conversation.message.delta\ndata: {\"role\":\"assistant\",\"type\":\"answer\",\"content\":\"lo\"}\n\n",
		"event: conversation.message.completed\ndata: {\"role\":\"assistant\",\"type\":\"answer\",\"content\":\"Hello\"}\n\n",
		"event: conversation.chat.completed\ndata: {}\n\n",
		"event: conversation.message.delta\ndata: {\"content\":\"after the end\"}\n\n",
	})
	defer srv.Close()

	c := New(srv.URL, &fakeTokens{}, newMemCache())

	var got []ChatEvent
	err := c.StreamChat(context.Background(), "ws-p", "bot-1", "conv-1", "hi", func(ev ChatEvent) error {
		got = append(got, ev)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, got, 4, "events after the terminal one must not be delivered")
	assert.Equal(t, "Hel", got[0].Content)
	assert.Equal(t, "lo", got[1].Content)
	assert.Equal(t, EventCompleted, got[2].Type)
	assert.Equal(t, EventChatDone, got[3].Type)
}

func TestStreamChat_SkipsNonAnswerMessages(t *testing.T) {
	srv := chatServer(t, []string{
		"event: conversation.message.delta\ndata: {\"type\":\"verbose\",\"content\":\"{}\"}\n\n",
		"event: conversation.message.delta\ndata: {\"type\":\"answer\",\"content\":\"hi\"}\n\n",
		"event: conversation.chat.completed\ndata: {}\n\n",
	})
	defer srv.Close()

	c := New(srv.URL, &fakeTokens{}, newMemCache())

	var texts []string
	err := c.StreamChat(context.Background(), "ws-p", "b", "conv-1", "q", func(ev ChatEvent) error {
		if ev.Content != "" {
			texts = append(texts, ev.Content)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"hi"}, texts)
}

func TestStreamChat_FailureEventReturnsError(t *testing.T) {
	srv := chatServer(t, []string{
		"event: conversation.chat.failed\ndata: {\"last_error\":{\"code\":5000,\"msg\":\"bot is busy\"}}\n\n",
	})
	defer srv.Close()

	c := New(srv.URL, &fakeTokens{}, newMemCache())
	err := c.StreamChat(context.Background(), "ws-p", "b", "conv-1", "q", func(ChatEvent) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot is busy")
}

func TestStreamChat_CallbackErrorAborts(t *testing.T) {
	srv := chatServer(t, []string{
		"event: conversation.message.delta\ndata: {\"content\":\"x\"}\n\n",
		"event: conversation.message.delta\ndata: {\"content\":\"y\"}\n\n",
	})
	defer srv.Close()

	c := New(srv.URL, &fakeTokens{}, newMemCache())
	boom := errors.New("enough")
	calls := 0
	err := c.StreamChat(context.Background(), "ws-p", "b", "conv-1", "q", func(ChatEvent) error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestStreamChat_ContextCancellation(t *testing.T) {
	srv := chatServer(t, []string{
		"event: conversation.message.delta\ndata: {\"content\":\"x\"}\n\n",
	})
	defer srv.Close()

	c := New(srv.URL, &fakeTokens{}, newMemCache())
	ctx, cancel := context.WithCancel(context.Background())

	err := c.StreamChat(ctx, "ws-p", "b", "conv-1", "q", func(ChatEvent) error {
		cancel()
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestStreamChat_AuthDeniedClearsScope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/workspaces" {
			writeEnvelope(w, workspacePage{Workspaces: []Workspace{
				{ID: "ws-p", WorkspaceType: "personal", RoleType: "owner"},
			}})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"code":4100,"msg":"revoked"}`)
	}))
	defer srv.Close()

	tokens := &fakeTokens{}
	c := New(srv.URL, tokens, newMemCache())
	err := c.StreamChat(context.Background(), "ws-p", "b", "conv-1", "q", func(ChatEvent) error { return nil })
	require.Error(t, err)
	assert.Contains(t, tokens.cleared, OwnerScope)
}
