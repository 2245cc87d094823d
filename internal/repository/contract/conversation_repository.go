package contract

import (
	"context"
	"errors"

	"portfolio-chat-be/internal/entity"

	"github.com/google/uuid"
)

var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository is the only writer of the per-day usage counter.
type ConversationRepository interface {
	// GetOrCreate returns the active conversation for the key, creating it when none exists.
	GetOrCreate(ctx context.Context, identity, scope, date string) (*entity.Conversation, error)
	// FindActive returns nil, nil when the key has no active conversation.
	FindActive(ctx context.Context, identity, scope, date string) (*entity.Conversation, error)
	AppendMessage(ctx context.Context, conversationId uuid.UUID, role entity.MessageRole, content string) (*entity.ConversationMessage, error)
	// IncrementUsage atomically adds one to the counter and returns the new value.
	IncrementUsage(ctx context.Context, conversationId uuid.UUID) (int, error)
	// SoftDelete marks the active conversation deleted. The counter is left untouched.
	SoftDelete(ctx context.Context, identity, scope, date string) (bool, error)
	ActiveMessages(ctx context.Context, identity, scope, date string) ([]*entity.ConversationMessage, error)
	// TotalUsage sums the counter over active and deleted conversations of the key.
	TotalUsage(ctx context.Context, identity, scope, date string) (int, error)
	// SoftDeleteBefore soft deletes every active conversation dated before date.
	SoftDeleteBefore(ctx context.Context, date string) (int64, error)
	Ping(ctx context.Context) error
}
