package mapper

import (
	"portfolio-chat-be/internal/entity"
	"portfolio-chat-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type KnowledgeMapper struct{}

func NewKnowledgeMapper() *KnowledgeMapper {
	return &KnowledgeMapper{}
}

func (m *KnowledgeMapper) EntryToEntity(k *model.KnowledgeEntry) *entity.KnowledgeEntry {
	if k == nil {
		return nil
	}
	sections := make([]string, len(k.Sections))
	copy(sections, k.Sections)
	return &entity.KnowledgeEntry{
		SourceId:  k.SourceId,
		Scope:     k.Scope,
		Sections:  sections,
		Embedding: k.Embedding.Slice(),
		CreatedAt: k.CreatedAt,
		UpdatedAt: k.UpdatedAt,
	}
}

func (m *KnowledgeMapper) EntryToModel(k *entity.KnowledgeEntry) *model.KnowledgeEntry {
	if k == nil {
		return nil
	}
	return &model.KnowledgeEntry{
		SourceId:  k.SourceId,
		Scope:     k.Scope,
		Sections:  datatypes.JSONSlice[string](k.Sections),
		Embedding: pgvector.NewVector(k.Embedding),
		CreatedAt: k.CreatedAt,
		UpdatedAt: k.UpdatedAt,
	}
}

func (m *KnowledgeMapper) EntriesToEntities(models []*model.KnowledgeEntry) []*entity.KnowledgeEntry {
	out := make([]*entity.KnowledgeEntry, len(models))
	for i, k := range models {
		out[i] = m.EntryToEntity(k)
	}
	return out
}

func (m *KnowledgeMapper) PromptToEntity(p *model.Prompt) *entity.Prompt {
	if p == nil {
		return nil
	}
	return &entity.Prompt{Name: p.Name, Content: p.Content, UpdatedAt: p.UpdatedAt}
}

func (m *KnowledgeMapper) PromptToModel(p *entity.Prompt) *model.Prompt {
	if p == nil {
		return nil
	}
	return &model.Prompt{Name: p.Name, Content: p.Content, UpdatedAt: p.UpdatedAt}
}
