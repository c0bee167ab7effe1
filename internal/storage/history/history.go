// Package history records recent chat exchanges so the user can revisit or
// resume a conversation. It mirrors the launcher host's "recent items" list
// store: newest first, explicit deletes only.
package history

import (
	"context"
	"time"
)

// Exchange is one question/answer pair within a conversation.
type Exchange struct {
	ID             string
	BotID          string
	ConversationID string
	Question       string
	Answer         string
	CreatedAt      time.Time
}

type Store interface {
	Append(ctx context.Context, e Exchange) error
	// List returns the most recent exchanges, newest first, at most limit
	// (limit <= 0 means no bound).
	List(ctx context.Context, limit int) ([]Exchange, error)
	DeleteConversation(ctx context.Context, conversationID string) error
	Clear(ctx context.Context) error
}
