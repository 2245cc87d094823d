package entity

import (
	"time"

	"github.com/google/uuid"
)

type ConversationStatus string

const (
	ConversationActive  ConversationStatus = "active"
	ConversationDeleted ConversationStatus = "deleted"
)

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

func (r MessageRole) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Conversation is one (identity, scope, date) thread. MessagesUsed only ever grows,
// including after the conversation is soft deleted.
type Conversation struct {
	Id           uuid.UUID
	Identity     string
	Scope        string
	Date         string
	MessagesUsed int
	Status       ConversationStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

func (c *Conversation) IsActive() bool {
	return c.Status == ConversationActive
}

type ConversationMessage struct {
	Id             int64
	ConversationId uuid.UUID
	Role           MessageRole
	Content        string
	CreatedAt      time.Time
}
