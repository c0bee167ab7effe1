package botchat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/launchdeck/internal/httpx"
)

// Chat event types as sent by the platform's streaming endpoint.
const (
	EventDelta     = "conversation.message.delta"
	EventCompleted = "conversation.message.completed"
	EventChatDone  = "conversation.chat.completed"
	EventFailed    = "conversation.chat.failed"
	EventDone      = "done"
)

// ChatEvent is one streamed chat event. Content carries the text of
// delta and completed message events, empty otherwise.
type ChatEvent struct {
	Type    string
	Content string
}

type chatMessage struct {
	Role    string `json:"role"`
	Type    string `json:"type"` // "answer", "follow_up", "verbose"
	Content string `json:"content"`
}

type chatFailure struct {
	LastError struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	} `json:"last_error"`
}

type chatRequest struct {
	BotID              string        `json:"bot_id"`
	Stream             bool          `json:"stream"`
	AutoSaveHistory    bool          `json:"auto_save_history"`
	AdditionalMessages []chatMessage `json:"additional_messages"`
}

// StreamChat sends a user message into a conversation and invokes
// onEvent once per streamed event, in arrival order, until the platform
// signals completion. A non-nil onEvent error or ctx cancellation stops
// the stream. Returns the error the platform reported, if any.
func (c *Client) StreamChat(ctx context.Context, workspaceID, botID, conversationID, message string, onEvent func(ChatEvent) error) error {
	scope, err := c.ScopeFor(ctx, workspaceID)
	if err != nil {
		return err
	}
	token, err := c.tokens.Authorize(ctx, scope)
	if err != nil {
		return err
	}

	body := chatRequest{
		BotID:           botID,
		Stream:          true,
		AutoSaveHistory: true,
		AdditionalMessages: []chatMessage{
			{Role: "user", Type: "question", Content: message},
		},
	}
	req, err := httpx.NewJSONRequest(ctx, http.MethodPost, c.base+"/v3/chat?conversation_id="+conversationID, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("starting chat stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := httpx.ReadAPIError(resp)
		if httpx.IsAuthError(apiErr) {
			c.forgetScope(ctx, scope)
		}
		return apiErr
	}

	r := httpx.NewEventReader(resp.Body)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading chat stream: %w", err)
		}

		out, done, err := c.decodeChatEvent(ctx, ev)
		if err != nil {
			return err
		}
		if out != nil {
			if err := onEvent(*out); err != nil {
				return err
			}
		}
		if done {
			return nil
		}
	}
}

// decodeChatEvent maps a raw SSE event to a ChatEvent. Returns done on
// terminal events and an error when the platform reports a failure.
func (c *Client) decodeChatEvent(ctx context.Context, ev httpx.Event) (*ChatEvent, bool, error) {
	switch ev.Name {
	case EventDelta, EventCompleted:
		var msg chatMessage
		if err := json.Unmarshal([]byte(ev.Data), &msg); err != nil {
			c.log.Warn(ctx, "skipping malformed chat event", "event", ev.Name, "error", err)
			return nil, false, nil
		}
		if msg.Type != "" && msg.Type != "answer" {
			return nil, false, nil
		}
		return &ChatEvent{Type: ev.Name, Content: msg.Content}, false, nil
	case EventFailed:
		var f chatFailure
		if err := json.Unmarshal([]byte(ev.Data), &f); err != nil {
			return nil, true, fmt.Errorf("chat failed: %w", httpx.ErrUnexpectedShape)
		}
		return nil, true, &httpx.APIError{Status: http.StatusOK, Code: fmt.Sprint(f.LastError.Code), Message: f.LastError.Msg}
	case EventChatDone, EventDone:
		return &ChatEvent{Type: EventChatDone}, true, nil
	default:
		// Verbose and bookkeeping events pass through untyped so the
		// caller can surface progress if it wants to.
		return &ChatEvent{Type: ev.Name}, false, nil
	}
}
