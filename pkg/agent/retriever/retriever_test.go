package retriever

import (
	"context"
	"errors"
	"strings"
	"testing"

	"portfolio-chat-be/pkg/embedding/embeddingtest"
	"portfolio-chat-be/pkg/knowledge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entriesSource []knowledge.Entry

func (s entriesSource) LoadEntries(context.Context) ([]knowledge.Entry, error) { return s, nil }

func buildIndex(t *testing.T, embedder *embeddingtest.BagOfWords) *knowledge.Index {
	t.Helper()
	raw := []knowledge.Entry{
		{SourceID: "jonathan-skills", Scope: "jonathan", Sections: []string{"Jonathan uses Python, FastAPI and React."}},
		{SourceID: "pablo-skills", Scope: "pablo", Sections: []string{"Pablo builds LangChain pipelines with MongoDB."}},
	}
	for i := range raw {
		raw[i].Embedding = embedder.Vector(knowledge.EmbedText(raw[i]))
	}
	idx := knowledge.NewIndex(entriesSource(raw), 5)
	require.NoError(t, idx.Load(context.Background()))
	return idx
}

func TestRetrieveFormatsScopedHits(t *testing.T) {
	embedder := embeddingtest.NewBagOfWords(256)
	r := New(embedder, buildIndex(t, embedder), 3)

	res, err := r.Retrieve(context.Background(), "What languages does Jonathan use?", "jonathan")
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.True(t, strings.HasPrefix(res.Context, "--- Document 1 (scope: jonathan) ---\n"))
	assert.Contains(t, res.Context, "Python, FastAPI")
	assert.NotContains(t, res.Context, "LangChain")
}

func TestRetrieveGlobalRanksAcrossScopes(t *testing.T) {
	embedder := embeddingtest.NewBagOfWords(256)
	r := New(embedder, buildIndex(t, embedder), 3)

	res, err := r.Retrieve(context.Background(), "LangChain MongoDB", knowledge.GlobalScope)
	require.NoError(t, err)
	require.Len(t, res.Hits, 2)
	assert.Equal(t, "pablo-skills", res.Hits[0].SourceID)
}

func TestRetrieveEmptyScopeYieldsSentinel(t *testing.T) {
	embedder := embeddingtest.NewBagOfWords(256)
	r := New(embedder, buildIndex(t, embedder), 3)

	res, err := r.Retrieve(context.Background(), "anything", "nobody")
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
	assert.Equal(t, knowledge.NoContextSentinel, res.Context)
}

func TestRetrieveEmbeddingFailure(t *testing.T) {
	embedder := embeddingtest.NewBagOfWords(256)
	idx := buildIndex(t, embedder)
	embedder.Err = errors.New("rate limited")

	_, err := New(embedder, idx, 3).Retrieve(context.Background(), "x", "jonathan")
	assert.Error(t, err)
}
