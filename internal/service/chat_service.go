package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portfolio-chat-be/internal/dto"
	"portfolio-chat-be/internal/entity"
	"portfolio-chat-be/internal/pkg/logger"
	"portfolio-chat-be/internal/pkg/serverutils"
	"portfolio-chat-be/internal/repository/unitofwork"
	"portfolio-chat-be/pkg/agent"
	"portfolio-chat-be/pkg/agent/generator"
	"portfolio-chat-be/pkg/credential"
	"portfolio-chat-be/pkg/events"
	"portfolio-chat-be/pkg/knowledge"
	"portfolio-chat-be/pkg/llm"
	"portfolio-chat-be/pkg/metrics"
	"portfolio-chat-be/pkg/ratelimit"

	"github.com/google/uuid"
)

type TurnRunner interface {
	Run(ctx context.Context, req agent.Request, emit generator.Emit) (agent.Outcome, error)
}

// PreparedChat is everything decided before the first byte of the stream is
// written: the session, the refreshed credential and the quota headers.
type PreparedChat struct {
	ConversationId uuid.UUID
	Identity       string
	Scope          string
	Date           string
	Message        string

	Token     string
	ExpiresAt time.Time

	Used    int
	Limit   int
	ResetAt time.Time

	charged bool
}

type IChatService interface {
	Prepare(ctx context.Context, identity string, req *dto.ChatRequest, token string) (*PreparedChat, error)
	Stream(ctx context.Context, prepared *PreparedChat, emit generator.Emit) error
}

type chatService struct {
	uowFactory  unitofwork.RepositoryFactory
	runner      TurnRunner
	limiter     *ratelimit.Limiter
	credentials *credential.Manager
	publisher   events.Publisher
	scopes      map[string]struct{}
	logger      logger.ILogger
}

// NewChatService accepts knowledge.GlobalScope plus the named scopes.
func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	runner TurnRunner,
	limiter *ratelimit.Limiter,
	credentials *credential.Manager,
	publisher events.Publisher,
	scopes []string,
	log logger.ILogger,
) IChatService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	valid := map[string]struct{}{knowledge.GlobalScope: {}}
	for _, s := range scopes {
		valid[s] = struct{}{}
	}
	return &chatService{
		uowFactory:  uowFactory,
		runner:      runner,
		limiter:     limiter,
		credentials: credentials,
		publisher:   publisher,
		scopes:      valid,
		logger:      log,
	}
}

func (s *chatService) validScope(scope string) bool {
	_, ok := s.scopes[scope]
	return ok
}

func (s *chatService) Prepare(ctx context.Context, identity string, req *dto.ChatRequest, token string) (*PreparedChat, error) {
	message := SanitizeMessage(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if !s.validScope(req.Scope) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidScope, req.Scope)
	}

	date := s.limiter.Today()
	decision, err := s.limiter.Check(ctx, identity, req.Scope, date, s.credentials.Verify(token))
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		metrics.RateLimited("chat")
		s.logger.Info("CHAT", "Daily limit reached", map[string]interface{}{
			"ip_hash": serverutils.HashIP(identity),
			"scope":   req.Scope,
			"used":    decision.Used,
		})
		return nil, &dto.LimitExceededError{Kind: "chat", Limit: decision.Limit, Used: decision.Used, ResetAt: decision.ResetAt}
	}

	conv, err := s.uowFactory.NewUnitOfWork(ctx).ConversationRepository().GetOrCreate(ctx, identity, req.Scope, date)
	if err != nil {
		return nil, fmt.Errorf("open conversation: %w", err)
	}

	prepared := &PreparedChat{
		ConversationId: conv.Id,
		Identity:       identity,
		Scope:          req.Scope,
		Date:           date,
		Message:        message,
		Used:           decision.Used,
		Limit:          decision.Limit,
		ResetAt:        decision.ResetAt,
	}

	if s.limiter.Policy() == ratelimit.PolicyUpfront {
		if _, err := s.limiter.Charge(ctx, conv.Id); err != nil {
			return nil, err
		}
		prepared.Used = decision.Used + 1
		prepared.charged = true
	}

	prepared.Token, prepared.ExpiresAt, err = s.credentials.Issue(identity, req.Scope, prepared.Used, date)
	if err != nil {
		return nil, fmt.Errorf("issue credential: %w", err)
	}
	return prepared, nil
}

// Stream runs the turn and persists it. Persistence and bookkeeping run on a
// context detached from the request so a client disconnect still stores the
// partial answer.
func (s *chatService) Stream(ctx context.Context, p *PreparedChat, emit generator.Emit) error {
	start := time.Now()
	repo := s.uowFactory.NewUnitOfWork(ctx).ConversationRepository()

	stored, err := repo.ActiveMessages(ctx, p.Identity, p.Scope, p.Date)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	history := make([]llm.Message, 0, len(stored))
	for _, m := range stored {
		history = append(history, llm.Message{Role: string(m.Role), Content: m.Content})
	}

	outcome, runErr := s.runner.Run(ctx, agent.Request{Message: p.Message, Scope: p.Scope, History: history}, emit)

	bg := context.WithoutCancel(ctx)
	if _, err := repo.AppendMessage(bg, p.ConversationId, entity.RoleUser, p.Message); err != nil {
		s.logger.Error("CHAT", "Failed to persist user message", map[string]interface{}{"conversation_id": p.ConversationId, "error": err})
	}
	if outcome.Text != "" {
		if _, err := repo.AppendMessage(bg, p.ConversationId, entity.RoleAssistant, outcome.Text); err != nil {
			s.logger.Error("CHAT", "Failed to persist assistant message", map[string]interface{}{"conversation_id": p.ConversationId, "error": err})
		}
	}

	if runErr == nil && !p.charged {
		if _, err := s.limiter.Charge(bg, p.ConversationId); err != nil {
			s.logger.Error("CHAT", "Failed to charge completed turn", map[string]interface{}{"conversation_id": p.ConversationId, "error": err})
		}
	}

	result := "ok"
	switch {
	case runErr != nil && errors.Is(ctx.Err(), context.Canceled):
		result = "cancelled"
	case runErr != nil:
		result = "error"
	}
	metrics.ObserveTurn(outcome.Label.String(), result, time.Since(start))

	path := make([]string, len(outcome.Path))
	for i, st := range outcome.Path {
		path[i] = string(st)
	}
	ipHash := serverutils.HashIP(p.Identity)
	if err := s.publisher.Publish(bg, events.ChatCompleted{
		ConversationID: p.ConversationId.String(),
		IdentityHash:   ipHash,
		Scope:          p.Scope,
		Label:          outcome.Label.String(),
		Language:       outcome.Language,
		Path:           path,
		ResponseChars:  len(outcome.Text),
		Failed:         runErr != nil,
		OccurredAt:     time.Now().UTC(),
	}); err != nil {
		s.logger.Warn("CHAT", "Failed to publish chat.completed", map[string]interface{}{"error": err})
	}

	details := map[string]interface{}{
		"ip_hash":    ipHash,
		"scope":      p.Scope,
		"label":      outcome.Label.String(),
		"path":       path,
		"result":     result,
		"latency_ms": time.Since(start).Milliseconds(),
	}
	if runErr != nil {
		details["error"] = runErr.Error()
		s.logger.Warn("CHAT", "Turn ended with error", details)
		return runErr
	}
	s.logger.Info("CHAT", "Turn completed", details)
	return nil
}
