package service

import (
	"context"
	"fmt"

	"portfolio-chat-be/internal/entity"
	"portfolio-chat-be/internal/pkg/logger"
	"portfolio-chat-be/internal/repository/specification"
	"portfolio-chat-be/internal/repository/unitofwork"
	"portfolio-chat-be/pkg/embedding"
	"portfolio-chat-be/pkg/knowledge"
)

// IKnowledgeService writes the corpus and prompts to storage. Readers go
// through knowledge.Index and prompt.Store, fed by the sources below.
type IKnowledgeService interface {
	SeedEntries(ctx context.Context, entries []knowledge.Entry) (int, error)
	SeedPrompts(ctx context.Context, prompts map[string]string) (int, error)
}

type knowledgeService struct {
	uowFactory unitofwork.RepositoryFactory
	embedder   embedding.EmbeddingProvider
	logger     logger.ILogger
}

func NewKnowledgeService(uowFactory unitofwork.RepositoryFactory, embedder embedding.EmbeddingProvider, log logger.ILogger) IKnowledgeService {
	return &knowledgeService{uowFactory: uowFactory, embedder: embedder, logger: log}
}

// SeedEntries embeds entries that carry no vector and upserts all of them by
// source id inside one transaction.
func (s *knowledgeService) SeedEntries(ctx context.Context, entries []knowledge.Entry) (int, error) {
	prepared := make([]*entity.KnowledgeEntry, 0, len(entries))
	for _, e := range entries {
		if len(e.Embedding) == 0 {
			vec, err := knowledge.EmbedEntry(ctx, s.embedder, e)
			if err != nil {
				return 0, err
			}
			e.Embedding = vec
		}
		prepared = append(prepared, &entity.KnowledgeEntry{
			SourceId:  e.SourceID,
			Scope:     e.Scope,
			Sections:  e.Sections,
			Embedding: e.Embedding,
		})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer uow.Rollback()

	for _, e := range prepared {
		if err := uow.KnowledgeRepository().Upsert(ctx, e); err != nil {
			return 0, fmt.Errorf("upsert %s: %w", e.SourceId, err)
		}
	}
	if err := uow.Commit(); err != nil {
		return 0, err
	}

	s.logger.Info("KNOWLEDGE", "Seeded knowledge entries", map[string]interface{}{"count": len(prepared)})
	return len(prepared), nil
}

func (s *knowledgeService) SeedPrompts(ctx context.Context, prompts map[string]string) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	n := 0
	for name, content := range prompts {
		if err := uow.PromptRepository().Upsert(ctx, &entity.Prompt{Name: name, Content: content}); err != nil {
			return n, fmt.Errorf("upsert prompt %s: %w", name, err)
		}
		n++
	}
	s.logger.Info("KNOWLEDGE", "Seeded prompts", map[string]interface{}{"count": n})
	return n, nil
}

// RepositoryKnowledgeSource loads the corpus from the knowledge repository.
type RepositoryKnowledgeSource struct {
	uowFactory unitofwork.RepositoryFactory
	scopes     []string
}

// NewRepositoryKnowledgeSource restricts the corpus to scopes when any are given.
func NewRepositoryKnowledgeSource(uowFactory unitofwork.RepositoryFactory, scopes ...string) *RepositoryKnowledgeSource {
	return &RepositoryKnowledgeSource{uowFactory: uowFactory, scopes: scopes}
}

func (s *RepositoryKnowledgeSource) LoadEntries(ctx context.Context) ([]knowledge.Entry, error) {
	repo := s.uowFactory.NewUnitOfWork(ctx).KnowledgeRepository()

	var rows []*entity.KnowledgeEntry
	if len(s.scopes) == 0 {
		all, err := repo.FindAll(ctx, specification.OrderBy{Field: "created_at"})
		if err != nil {
			return nil, err
		}
		rows = all
	}
	for _, scope := range s.scopes {
		scoped, err := repo.FindAll(ctx, specification.ByScope{Scope: scope}, specification.OrderBy{Field: "created_at"})
		if err != nil {
			return nil, err
		}
		rows = append(rows, scoped...)
	}

	out := make([]knowledge.Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, knowledge.Entry{
			SourceID:  r.SourceId,
			Scope:     r.Scope,
			Sections:  r.Sections,
			Embedding: r.Embedding,
		})
	}
	return out, nil
}

// RepositoryPromptSource loads stored prompt overrides.
type RepositoryPromptSource struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewRepositoryPromptSource(uowFactory unitofwork.RepositoryFactory) *RepositoryPromptSource {
	return &RepositoryPromptSource{uowFactory: uowFactory}
}

func (s *RepositoryPromptSource) LoadPrompts(ctx context.Context) (map[string]string, error) {
	rows, err := s.uowFactory.NewUnitOfWork(ctx).PromptRepository().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, p := range rows {
		out[p.Name] = p.Content
	}
	return out, nil
}
