package retriever

import (
	"context"
	"fmt"

	"portfolio-chat-be/pkg/embedding"
	"portfolio-chat-be/pkg/knowledge"
)

// Searcher is the read side of knowledge.Index.
type Searcher interface {
	Search(vector []float32, scope string, k int) []knowledge.Scored
}

type Retriever struct {
	embedder embedding.EmbeddingProvider
	index    Searcher
	topK     int
}

func New(embedder embedding.EmbeddingProvider, index Searcher, topK int) *Retriever {
	return &Retriever{embedder: embedder, index: index, topK: topK}
}

type Result struct {
	Context string
	Hits    []knowledge.Scored
}

// Retrieve embeds the message, searches scope and formats the hits. An empty
// hit list is not an error; its context is knowledge.NoContextSentinel.
func (r *Retriever) Retrieve(ctx context.Context, message, scope string) (Result, error) {
	resp, err := r.embedder.Generate(ctx, message, embedding.TaskRetrievalQuery)
	if err != nil {
		return Result{}, fmt.Errorf("embed query: %w", err)
	}

	hits := r.index.Search(resp.Embedding.Values, scope, r.topK)
	return Result{
		Context: knowledge.FormatContext(knowledge.Entries(hits)),
		Hits:    hits,
	}, nil
}
