package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"portfolio-chat-be/pkg/embedding"
)

// FileSource reads the corpus from a JSON array of entries. Entries stored
// without an embedding are embedded on load when an Embedder is configured.
type FileSource struct {
	Path     string
	Embedder embedding.EmbeddingProvider
}

func NewFileSource(path string, embedder embedding.EmbeddingProvider) *FileSource {
	return &FileSource{Path: path, Embedder: embedder}
}

// ReadEntries parses the file without embedding anything.
func (s *FileSource) ReadEntries() ([]Entry, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge file %s: %w", s.Path, err)
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode knowledge file %s: %w", s.Path, err)
	}
	return entries, nil
}

func (s *FileSource) LoadEntries(ctx context.Context) ([]Entry, error) {
	entries, err := s.ReadEntries()
	if err != nil {
		return nil, err
	}

	for i := range entries {
		if len(entries[i].Embedding) > 0 {
			continue
		}
		if s.Embedder == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingEmbedding, entries[i].SourceID)
		}
		vec, err := EmbedEntry(ctx, s.Embedder, entries[i])
		if err != nil {
			return nil, err
		}
		entries[i].Embedding = vec
	}
	return entries, nil
}

// EmbedText is the text an entry is embedded from: its sections joined by a space.
func EmbedText(e Entry) string {
	return strings.Join(e.Sections, " ")
}

func EmbedEntry(ctx context.Context, embedder embedding.EmbeddingProvider, e Entry) ([]float32, error) {
	resp, err := embedder.Generate(ctx, EmbedText(e), embedding.TaskRetrievalDocument)
	if err != nil {
		return nil, fmt.Errorf("embed %s: %w", e.SourceID, err)
	}
	return resp.Embedding.Values, nil
}
