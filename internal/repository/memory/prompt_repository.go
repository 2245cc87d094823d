package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"portfolio-chat-be/internal/entity"
	"portfolio-chat-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

type PromptRepository struct {
	cache *cache.Cache
}

var _ contract.PromptRepository = (*PromptRepository)(nil)

func NewPromptRepository(seed map[string]string) *PromptRepository {
	r := &PromptRepository{cache: cache.New(cache.NoExpiration, 0)}
	for name, content := range seed {
		r.cache.Set("prompt|"+name, &entity.Prompt{Name: name, Content: content, UpdatedAt: time.Now().UTC()}, cache.NoExpiration)
	}
	return r
}

func (r *PromptRepository) Upsert(ctx context.Context, prompt *entity.Prompt) error {
	p := *prompt
	p.UpdatedAt = time.Now().UTC()
	r.cache.Set("prompt|"+p.Name, &p, cache.NoExpiration)
	return nil
}

func (r *PromptRepository) FindAll(ctx context.Context) ([]*entity.Prompt, error) {
	var out []*entity.Prompt
	for key, item := range r.cache.Items() {
		if !strings.HasPrefix(key, "prompt|") {
			continue
		}
		p := *item.Object.(*entity.Prompt)
		out = append(out, &p)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out, nil
}
