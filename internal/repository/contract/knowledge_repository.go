package contract

import (
	"context"

	"portfolio-chat-be/internal/entity"
	"portfolio-chat-be/internal/repository/specification"
)

type KnowledgeRepository interface {
	Upsert(ctx context.Context, entry *entity.KnowledgeEntry) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeEntry, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type PromptRepository interface {
	Upsert(ctx context.Context, prompt *entity.Prompt) error
	FindAll(ctx context.Context) ([]*entity.Prompt, error)
}
