package memory

import (
	"context"

	"portfolio-chat-be/internal/repository/contract"
	"portfolio-chat-be/internal/repository/unitofwork"
)

// Store bundles the in-memory repositories used when STORAGE_DRIVER=memory.
type Store struct {
	Conversations *ConversationRepository
	Knowledge     *KnowledgeRepository
	Prompts       *PromptRepository
	Leads         *ContactLeadRepository
}

func NewStore(prompts map[string]string) *Store {
	return &Store{
		Conversations: NewConversationRepository(),
		Knowledge:     NewKnowledgeRepository(),
		Prompts:       NewPromptRepository(prompts),
		Leads:         NewContactLeadRepository(),
	}
}

type repositoryFactory struct {
	store *Store
}

func NewRepositoryFactory(store *Store) unitofwork.RepositoryFactory {
	return &repositoryFactory{store: store}
}

func (f *repositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{store: f.store}
}

// unitOfWork has no transactions; every repository call is applied immediately.
type unitOfWork struct {
	store *Store
}

func (u *unitOfWork) Begin(ctx context.Context) error { return nil }
func (u *unitOfWork) Commit() error                   { return nil }
func (u *unitOfWork) Rollback() error                 { return nil }

func (u *unitOfWork) ConversationRepository() contract.ConversationRepository {
	return u.store.Conversations
}

func (u *unitOfWork) KnowledgeRepository() contract.KnowledgeRepository {
	return u.store.Knowledge
}

func (u *unitOfWork) PromptRepository() contract.PromptRepository {
	return u.store.Prompts
}

func (u *unitOfWork) ContactLeadRepository() contract.ContactLeadRepository {
	return u.store.Leads
}
