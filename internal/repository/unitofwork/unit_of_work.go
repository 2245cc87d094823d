package unitofwork

import (
	"context"

	"portfolio-chat-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ConversationRepository() contract.ConversationRepository
	KnowledgeRepository() contract.KnowledgeRepository
	PromptRepository() contract.PromptRepository
	ContactLeadRepository() contract.ContactLeadRepository
}
