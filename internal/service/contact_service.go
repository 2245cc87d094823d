package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"portfolio-chat-be/internal/dto"
	"portfolio-chat-be/internal/entity"
	"portfolio-chat-be/internal/pkg/logger"
	"portfolio-chat-be/internal/pkg/serverutils"
	"portfolio-chat-be/internal/repository/unitofwork"
	"portfolio-chat-be/pkg/events"
	"portfolio-chat-be/pkg/metrics"
	"portfolio-chat-be/pkg/ratelimit"

	"github.com/google/uuid"
)

// ContactJob is the queue payload handed to the contact consumer.
type ContactJob struct {
	LeadId uuid.UUID `json:"lead_id"`
}

type IContactService interface {
	Submit(ctx context.Context, identity string, req *dto.ContactRequest) (*dto.ContactResponse, error)
}

type contactService struct {
	uowFactory unitofwork.RepositoryFactory
	quota      *ratelimit.ContactQuota
	queue      IPublisherService
	publisher  events.Publisher
	logger     logger.ILogger
}

func NewContactService(uowFactory unitofwork.RepositoryFactory, quota *ratelimit.ContactQuota, queue IPublisherService, publisher events.Publisher, log logger.ILogger) IContactService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &contactService{uowFactory: uowFactory, quota: quota, queue: queue, publisher: publisher, logger: log}
}

// Submit stores the lead as queued and hands it to the mail consumer.
func (s *contactService) Submit(ctx context.Context, identity string, req *dto.ContactRequest) (*dto.ContactResponse, error) {
	decision, err := s.quota.Check(ctx, identity)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		metrics.RateLimited("contact")
		return nil, &dto.LimitExceededError{Kind: "contact", Limit: decision.Limit, Used: decision.Used, ResetAt: decision.ResetAt}
	}

	lead := &entity.ContactLead{
		Identity: identity,
		Date:     s.quota.Today(),
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
		Country:  strings.TrimSpace(req.Country),
		Subject:  strings.TrimSpace(req.Subject),
		Message:  strings.TrimSpace(req.Message),
		Status:   entity.LeadQueued,
	}
	repo := s.uowFactory.NewUnitOfWork(ctx).ContactLeadRepository()
	if err := repo.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("store contact lead: %w", err)
	}

	payload, err := json.Marshal(ContactJob{LeadId: lead.Id})
	if err != nil {
		return nil, err
	}
	if err := s.queue.Publish(ctx, payload); err != nil {
		_ = repo.UpdateDelivery(context.WithoutCancel(ctx), lead.Id, entity.LeadFailed, 0, err.Error())
		return nil, fmt.Errorf("queue contact email: %w", err)
	}

	ipHash := serverutils.HashIP(identity)
	if err := s.publisher.Publish(ctx, events.ContactQueued{
		LeadID:       lead.Id.String(),
		IdentityHash: ipHash,
		Country:      lead.Country,
		OccurredAt:   time.Now().UTC(),
	}); err != nil {
		s.logger.Warn("CONTACT", "Failed to publish contact.queued", map[string]interface{}{"error": err})
	}

	s.logger.Info("CONTACT", "Contact lead queued", map[string]interface{}{"lead_id": lead.Id, "ip_hash": ipHash})
	return &dto.ContactResponse{Id: lead.Id, Status: string(entity.LeadQueued)}, nil
}
