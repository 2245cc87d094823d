package service

import (
	"context"
	"errors"
	"testing"

	"portfolio-chat-be/internal/constant"
	"portfolio-chat-be/internal/entity"
	"portfolio-chat-be/internal/pkg/logger"
	"portfolio-chat-be/internal/repository/memory"
	"portfolio-chat-be/pkg/embedding/embeddingtest"
	"portfolio-chat-be/pkg/knowledge"
	"portfolio-chat-be/pkg/prompt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSource struct{}

func (failingSource) LoadEntries(context.Context) ([]knowledge.Entry, error) {
	return nil, errors.New("database unavailable")
}

func TestReloadPicksUpSeededKnowledgeAndPrompts(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(nil)
	factory := memory.NewRepositoryFactory(store)
	log := logger.NewNopLogger()

	index := knowledge.NewIndex(NewRepositoryKnowledgeSource(factory), 5)
	prompts := prompt.NewStore(NewRepositoryPromptSource(factory), constant.DefaultPrompts())
	reload := NewReloadService(index, index, prompts, prompts, nil, log)

	seeder := NewKnowledgeService(factory, embeddingtest.NewBagOfWords(64), log)
	n, err := seeder.SeedEntries(ctx, []knowledge.Entry{
		{SourceID: "j1", Scope: "jonathan", Sections: []string{"Go", "Python"}},
		{SourceID: "p1", Scope: "pablo", Sections: []string{"Design"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, store.Prompts.Upsert(ctx, &entity.Prompt{Name: prompt.SystemPrompt, Content: "Be brief."}))

	res, err := reload.ReloadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.KnowledgeEntries)
	assert.False(t, res.Broadcast)
	assert.Equal(t, "Be brief.", prompts.Get(prompt.SystemPrompt))
	assert.Equal(t, constant.DefaultContactConfirmation, prompts.Get(prompt.ContactConfirmation))
	assert.Equal(t, []string{"jonathan", "pablo"}, index.Scopes())

	// seeding again updates in place
	_, err = seeder.SeedEntries(ctx, []knowledge.Entry{{SourceID: "j1", Scope: "jonathan", Sections: []string{"Rust"}}})
	require.NoError(t, err)
	res, err = reload.ReloadLocal(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.KnowledgeEntries)
}

func TestFailedReloadKeepsPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	embedder := embeddingtest.NewBagOfWords(16)
	good := knowledge.NewIndex(sliceOf(knowledge.Entry{SourceID: "a", Scope: "jonathan", Sections: []string{"x"}, Embedding: embedder.Vector("x")}), 5)
	require.NoError(t, good.Load(ctx))

	prompts := prompt.NewStore(nil, constant.DefaultPrompts())
	index := &swappableIndex{Index: good, fail: true}
	reload := NewReloadService(index, good, prompts, prompts, nil, logger.NewNopLogger())

	res, err := reload.ReloadAll(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, res.KnowledgeEntries)
	assert.Equal(t, 1, good.Size())
}

type sliceOfEntries []knowledge.Entry

func (s sliceOfEntries) LoadEntries(context.Context) ([]knowledge.Entry, error) { return s, nil }

func sliceOf(entries ...knowledge.Entry) sliceOfEntries { return entries }

// swappableIndex fails its reload through a broken source while the wrapped index stays loaded.
type swappableIndex struct {
	*knowledge.Index
	fail bool
}

func (s *swappableIndex) Reload(ctx context.Context) error {
	if s.fail {
		return knowledge.NewIndex(failingSource{}, 5).Reload(ctx)
	}
	return s.Index.Reload(ctx)
}
