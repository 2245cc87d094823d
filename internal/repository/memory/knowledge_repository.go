package memory

import (
	"context"
	"sync"
	"time"

	"portfolio-chat-be/internal/entity"
	"portfolio-chat-be/internal/repository/contract"
	"portfolio-chat-be/internal/repository/specification"
)

// KnowledgeRepository keeps entries in insertion order. Only ByScope is
// understood among specifications; any other is ignored.
type KnowledgeRepository struct {
	mu      sync.RWMutex
	entries map[string]*entity.KnowledgeEntry
	order   []string
}

var _ contract.KnowledgeRepository = (*KnowledgeRepository)(nil)

func NewKnowledgeRepository() *KnowledgeRepository {
	return &KnowledgeRepository{entries: make(map[string]*entity.KnowledgeEntry)}
}

func (r *KnowledgeRepository) Upsert(ctx context.Context, entry *entity.KnowledgeEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	e := cloneKnowledge(entry)
	if existing, ok := r.entries[e.SourceId]; ok {
		e.CreatedAt = existing.CreatedAt
	} else {
		e.CreatedAt = now
		r.order = append(r.order, e.SourceId)
	}
	e.UpdatedAt = now
	r.entries[e.SourceId] = e
	return nil
}

func (r *KnowledgeRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scope := ""
	for _, s := range specs {
		if byScope, ok := s.(specification.ByScope); ok {
			scope = byScope.Scope
		}
	}

	out := make([]*entity.KnowledgeEntry, 0, len(r.order))
	for _, id := range r.order {
		e := r.entries[id]
		if scope != "" && e.Scope != scope {
			continue
		}
		out = append(out, cloneKnowledge(e))
	}
	return out, nil
}

func (r *KnowledgeRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

func cloneKnowledge(e *entity.KnowledgeEntry) *entity.KnowledgeEntry {
	c := *e
	c.Sections = append([]string(nil), e.Sections...)
	c.Embedding = append([]float32(nil), e.Embedding...)
	return &c
}
