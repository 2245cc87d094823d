package events

import (
	"context"
	"time"
)

const (
	TypeChatCompleted = "chat.completed"
	TypeContactQueued = "contact.queued"
)

// Event defines the contract for everything published on the bus.
type Event interface {
	// EventType doubles as the subject the event is published on.
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event. Used when no bus is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// ChatCompleted describes a finished turn. The identity is expected to be hashed already.
type ChatCompleted struct {
	ConversationID string
	IdentityHash   string
	Scope          string
	Label          string
	Language       string
	Path           []string
	ResponseChars  int
	Failed         bool
	OccurredAt     time.Time
}

func (e ChatCompleted) EventType() string { return TypeChatCompleted }

func (e ChatCompleted) Payload() map[string]interface{} {
	return map[string]interface{}{
		"conversation_id": e.ConversationID,
		"identity_hash":   e.IdentityHash,
		"scope":           e.Scope,
		"label":           e.Label,
		"language":        e.Language,
		"path":            e.Path,
		"response_chars":  e.ResponseChars,
		"failed":          e.Failed,
		"occurred_at":     e.OccurredAt.Format(time.RFC3339),
	}
}

func (e ChatCompleted) Timestamp() time.Time { return e.OccurredAt }

type ContactQueued struct {
	LeadID       string
	IdentityHash string
	Country      string
	OccurredAt   time.Time
}

func (e ContactQueued) EventType() string { return TypeContactQueued }

func (e ContactQueued) Payload() map[string]interface{} {
	return map[string]interface{}{
		"lead_id":       e.LeadID,
		"identity_hash": e.IdentityHash,
		"country":       e.Country,
		"occurred_at":   e.OccurredAt.Format(time.RFC3339),
	}
}

func (e ContactQueued) Timestamp() time.Time { return e.OccurredAt }
