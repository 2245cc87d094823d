package service

import (
	"context"
	"fmt"

	"portfolio-chat-be/internal/dto"
	"portfolio-chat-be/internal/pkg/logger"
	"portfolio-chat-be/internal/pkg/serverutils"
	"portfolio-chat-be/internal/repository/contract"
	"portfolio-chat-be/internal/repository/unitofwork"
	"portfolio-chat-be/pkg/credential"
	"portfolio-chat-be/pkg/ratelimit"
)

type IConversationService interface {
	History(ctx context.Context, identity, scope, token string) (*dto.ConversationResponse, error)
	Delete(ctx context.Context, identity, token string) (*dto.DeleteConversationResponse, error)
	// SoftDeleteBefore closes every active conversation dated before date.
	SoftDeleteBefore(ctx context.Context, date string) (int64, error)
}

type conversationService struct {
	uowFactory  unitofwork.RepositoryFactory
	limiter     *ratelimit.Limiter
	credentials *credential.Manager
	logger      logger.ILogger
}

func NewConversationService(uowFactory unitofwork.RepositoryFactory, limiter *ratelimit.Limiter, credentials *credential.Manager, log logger.ILogger) IConversationService {
	return &conversationService{uowFactory: uowFactory, limiter: limiter, credentials: credentials, logger: log}
}

// History returns today's active messages for the caller in scope.
func (s *conversationService) History(ctx context.Context, identity, scope, token string) (*dto.ConversationResponse, error) {
	date := s.limiter.Today()
	repo := s.uowFactory.NewUnitOfWork(ctx).ConversationRepository()

	msgs, err := repo.ActiveMessages(ctx, identity, scope, date)
	if err != nil {
		return nil, err
	}
	decision, err := s.limiter.Check(ctx, identity, scope, date, s.credentials.Verify(token))
	if err != nil {
		return nil, err
	}

	res := &dto.ConversationResponse{
		Scope:        scope,
		Date:         date,
		MessagesUsed: decision.Used,
		Limit:        decision.Limit,
		Messages:     make([]dto.ConversationMessageResponse, 0, len(msgs)),
	}
	for _, m := range msgs {
		res.Messages = append(res.Messages, dto.ConversationMessageResponse{
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	return res, nil
}

// Delete soft deletes the conversation named by the credential. The usage
// counter and the credential itself are left as they are.
func (s *conversationService) Delete(ctx context.Context, identity, token string) (*dto.DeleteConversationResponse, error) {
	claims := s.credentials.Verify(token)
	if claims == nil || claims.IP == "" || claims.Scope == "" || claims.Date == "" {
		return nil, ErrNoSession
	}
	if claims.IP != identity {
		return nil, ErrIdentityMismatch
	}

	deleted, err := s.uowFactory.NewUnitOfWork(ctx).ConversationRepository().SoftDelete(ctx, claims.IP, claims.Scope, claims.Date)
	if err != nil {
		return nil, fmt.Errorf("soft delete conversation: %w", err)
	}
	if !deleted {
		return nil, contract.ErrConversationNotFound
	}

	s.logger.Info("CONVERSATION", "Conversation soft deleted", map[string]interface{}{
		"ip_hash": serverutils.HashIP(identity),
		"scope":   claims.Scope,
		"date":    claims.Date,
	})
	return &dto.DeleteConversationResponse{
		Scope: claims.Scope,
		Date:  claims.Date,
		Note:  "message counter preserved",
	}, nil
}

func (s *conversationService) SoftDeleteBefore(ctx context.Context, date string) (int64, error) {
	n, err := s.uowFactory.NewUnitOfWork(ctx).ConversationRepository().SoftDeleteBefore(ctx, date)
	if err != nil {
		return 0, err
	}
	s.logger.Info("CONVERSATION", "Closed stale conversations", map[string]interface{}{"before": date, "count": n})
	return n, nil
}
