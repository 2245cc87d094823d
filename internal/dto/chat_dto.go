package dto

import (
	"time"
)

type ChatRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
	Scope   string `json:"scope" validate:"required"`
}

const (
	StreamEventToken = "token"
	StreamEventDone  = "done"
	StreamEventError = "error"
)

// StreamEvent is one NDJSON line of the chat stream.
type StreamEvent struct {
	Type string `json:"type"`
	Data string `json:"data,omitempty"`
}

// LimitExceededError carries the quota state of a refused request.
type LimitExceededError struct {
	Kind    string    `json:"-"`
	Limit   int       `json:"limit"`
	Used    int       `json:"used"`
	ResetAt time.Time `json:"reset_at"`
}

func (e *LimitExceededError) Error() string {
	if e.Kind == "contact" {
		return "daily contact limit exceeded"
	}
	return "daily message limit exceeded"
}

// LimitExceededResponse is the 429 body.
type LimitExceededResponse struct {
	Type    string `json:"type"`
	Limit   int    `json:"limit"`
	Used    int    `json:"used"`
	ResetAt string `json:"reset_at"`
}

type ConversationMessageResponse struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type ConversationResponse struct {
	Scope        string                        `json:"scope"`
	Date         string                        `json:"date"`
	MessagesUsed int                           `json:"messages_used"`
	Limit        int                           `json:"limit"`
	Messages     []ConversationMessageResponse `json:"messages"`
}

type DeleteConversationResponse struct {
	Scope string `json:"scope"`
	Date  string `json:"date"`
	Note  string `json:"note"`
}
