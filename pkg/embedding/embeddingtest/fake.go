// Package embeddingtest provides deterministic embedding providers for tests.
package embeddingtest

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"unicode"

	"portfolio-chat-be/pkg/embedding"
)

// BagOfWords hashes each lower-cased word into one of Dim buckets. Texts that
// share words end up with a positive cosine similarity.
type BagOfWords struct {
	Dim int
	Err error

	mu    sync.Mutex
	texts []string
}

var _ embedding.EmbeddingProvider = (*BagOfWords)(nil)

func NewBagOfWords(dim int) *BagOfWords {
	return &BagOfWords{Dim: dim}
}

func (b *BagOfWords) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	b.mu.Lock()
	b.texts = append(b.texts, text)
	b.mu.Unlock()

	if b.Err != nil {
		return nil, b.Err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: b.Vector(text)},
	}, nil
}

func (b *BagOfWords) Vector(text string) []float32 {
	vec := make([]float32, b.Dim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[int(h.Sum32())%b.Dim]++
	}
	return vec
}

// Texts returns every text embedded so far.
func (b *BagOfWords) Texts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.texts))
	copy(out, b.texts)
	return out
}
