package service

import (
	"context"
	"encoding/json"

	"portfolio-chat-be/internal/entity"
	"portfolio-chat-be/internal/pkg/logger"
	"portfolio-chat-be/internal/pkg/mailer"
	"portfolio-chat-be/internal/repository/unitofwork"
	"portfolio-chat-be/pkg/metrics"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService delivers queued contact leads by email.
type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	mailer     mailer.IEmailService
	logger     logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		mailer:     emailService,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage acks once the lead reached a final status. Retrying the
// SMTP call is the mailer's job; only storage failures are nacked.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var job ContactJob
	if err := json.Unmarshal(msg.Payload, &job); err != nil {
		cs.logger.Error("CONTACT_WORKER", "Undecodable job, dropping", map[string]interface{}{"message_id": msg.UUID, "error": err})
		msg.Ack()
		return
	}

	repo := cs.uowFactory.NewUnitOfWork(ctx).ContactLeadRepository()
	lead, err := repo.FindById(ctx, job.LeadId)
	if err != nil {
		cs.logger.Error("CONTACT_WORKER", "Failed to load lead", map[string]interface{}{"lead_id": job.LeadId, "error": err})
		msg.Nack()
		return
	}
	if lead == nil {
		cs.logger.Warn("CONTACT_WORKER", "Lead not found, dropping job", map[string]interface{}{"lead_id": job.LeadId})
		msg.Ack()
		return
	}
	if lead.Status != entity.LeadQueued {
		msg.Ack()
		return
	}

	attempts, sendErr := cs.mailer.SendContact(ctx, lead)
	status, lastError := entity.LeadSent, ""
	if sendErr != nil {
		status, lastError = entity.LeadFailed, sendErr.Error()
	}

	if err := repo.UpdateDelivery(context.WithoutCancel(ctx), lead.Id, status, attempts, lastError); err != nil {
		cs.logger.Error("CONTACT_WORKER", "Failed to record delivery", map[string]interface{}{"lead_id": lead.Id, "error": err})
	}
	metrics.ContactDelivered(string(status))

	details := map[string]interface{}{"lead_id": lead.Id, "attempts": attempts, "status": status}
	if sendErr != nil {
		details["error"] = lastError
		cs.logger.Error("CONTACT_WORKER", "Contact email not delivered", details)
	} else {
		cs.logger.Info("CONTACT_WORKER", "Contact email delivered", details)
	}
	msg.Ack()
}
