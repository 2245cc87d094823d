package model

import (
	"time"

	"github.com/google/uuid"
)

// Conversation rows are never removed. At most one row per (identity, scope, date)
// may be active, enforced by the partial unique index.
type Conversation struct {
	Id           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Identity     string     `gorm:"type:varchar(64);not null;index:idx_conversations_lookup,priority:1;uniqueIndex:idx_conversations_active,priority:1,where:status = 'active'"`
	Scope        string     `gorm:"type:varchar(64);not null;index:idx_conversations_lookup,priority:2;uniqueIndex:idx_conversations_active,priority:2,where:status = 'active'"`
	Date         string     `gorm:"type:char(10);not null;index:idx_conversations_lookup,priority:3;uniqueIndex:idx_conversations_active,priority:3,where:status = 'active'"`
	MessagesUsed int        `gorm:"not null;default:0"`
	Status       string     `gorm:"type:varchar(16);not null;default:'active';index"`
	CreatedAt    time.Time  `gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime"`
	DeletedAt    *time.Time `gorm:"index"`
}

func (Conversation) TableName() string {
	return "conversations"
}

type ConversationMessage struct {
	Id             int64     `gorm:"primaryKey;autoIncrement"`
	ConversationId uuid.UUID `gorm:"type:uuid;not null;index"`
	Role           string    `gorm:"type:varchar(16);not null"`
	Content        string    `gorm:"type:text;not null"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (ConversationMessage) TableName() string {
	return "conversation_messages"
}
