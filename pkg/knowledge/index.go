package knowledge

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync/atomic"
)

const (
	// GlobalScope is a query-time union of every named scope. No entry is ever stored with it.
	GlobalScope = "global"
	DefaultTopK = 5
)

var (
	ErrEmptySourceID     = errors.New("knowledge: entry without source id")
	ErrDuplicateSourceID = errors.New("knowledge: duplicate source id")
	ErrGlobalScopeEntry  = errors.New("knowledge: entries cannot be tagged with the global scope")
	ErrEmptyScope        = errors.New("knowledge: entry without scope")
	ErrDimensionMismatch = errors.New("knowledge: embedding dimensionality differs across corpus")
	ErrMissingEmbedding  = errors.New("knowledge: entry without embedding")
	ErrIndexNotLoaded    = errors.New("knowledge: index not loaded")
)

// Entry is one retrievable fragment of the corpus.
type Entry struct {
	SourceID  string    `json:"source_id"`
	Scope     string    `json:"scope"`
	Sections  []string  `json:"sections"`
	Embedding []float32 `json:"embedding,omitempty"`
}

type Scored struct {
	Entry
	Score float64
}

// Source supplies the full corpus on every (re)load.
type Source interface {
	LoadEntries(ctx context.Context) ([]Entry, error)
}

type snapshot struct {
	entries   []Entry
	dimension int
	scopes    []string
}

// Index keeps an immutable snapshot of the corpus in memory. Reload swaps the
// snapshot atomically so concurrent searches never take a lock.
type Index struct {
	source   Source
	defaultK int
	current  atomic.Pointer[snapshot]
}

func NewIndex(source Source, defaultK int) *Index {
	if defaultK <= 0 {
		defaultK = DefaultTopK
	}
	return &Index{source: source, defaultK: defaultK}
}

// Load reads the corpus for the first time.
func (i *Index) Load(ctx context.Context) error {
	return i.Reload(ctx)
}

// Reload replaces the snapshot. On any error the previous snapshot stays in place.
func (i *Index) Reload(ctx context.Context) error {
	entries, err := i.source.LoadEntries(ctx)
	if err != nil {
		return fmt.Errorf("load knowledge entries: %w", err)
	}

	snap, err := buildSnapshot(entries)
	if err != nil {
		return err
	}

	i.current.Store(snap)
	return nil
}

// Loaded reports whether a snapshot is available.
func (i *Index) Loaded() bool {
	return i.current.Load() != nil
}

func (i *Index) Size() int {
	snap := i.current.Load()
	if snap == nil {
		return 0
	}
	return len(snap.entries)
}

func (i *Index) Dimension() int {
	snap := i.current.Load()
	if snap == nil {
		return 0
	}
	return snap.dimension
}

// Scopes lists the named scopes present in the corpus, in first-seen order.
func (i *Index) Scopes() []string {
	snap := i.current.Load()
	if snap == nil {
		return nil
	}
	out := make([]string, len(snap.scopes))
	copy(out, snap.scopes)
	return out
}

// Search ranks the candidates of scope by cosine similarity to vector and
// returns at most k of them. Equal scores keep corpus order.
func (i *Index) Search(vector []float32, scope string, k int) []Scored {
	snap := i.current.Load()
	if snap == nil {
		return []Scored{}
	}
	if k <= 0 {
		k = i.defaultK
	}

	candidates := make([]Scored, 0, len(snap.entries))
	for _, e := range snap.entries {
		if scope != GlobalScope && e.Scope != scope {
			continue
		}
		candidates = append(candidates, Scored{Entry: e, Score: CosineSimilarity(vector, e.Embedding)})
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].Score > candidates[b].Score
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}

// CosineSimilarity returns dot(a,b)/(|a|*|b|) clamped to [-1, 1].
// Zero-norm or differently sized vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for idx := range a {
		x, y := float64(a[idx]), float64(b[idx])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(score) {
		return 0
	}
	return math.Max(-1, math.Min(1, score))
}

func buildSnapshot(entries []Entry) (*snapshot, error) {
	snap := &snapshot{entries: make([]Entry, 0, len(entries))}
	seenIDs := make(map[string]struct{}, len(entries))
	seenScopes := make(map[string]struct{})

	for _, e := range entries {
		switch {
		case e.SourceID == "":
			return nil, ErrEmptySourceID
		case e.Scope == "":
			return nil, fmt.Errorf("%w: %s", ErrEmptyScope, e.SourceID)
		case e.Scope == GlobalScope:
			return nil, fmt.Errorf("%w: %s", ErrGlobalScopeEntry, e.SourceID)
		case len(e.Embedding) == 0:
			return nil, fmt.Errorf("%w: %s", ErrMissingEmbedding, e.SourceID)
		}
		if _, dup := seenIDs[e.SourceID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSourceID, e.SourceID)
		}
		seenIDs[e.SourceID] = struct{}{}

		if snap.dimension == 0 {
			snap.dimension = len(e.Embedding)
		} else if len(e.Embedding) != snap.dimension {
			return nil, fmt.Errorf("%w: %s has %d, expected %d", ErrDimensionMismatch, e.SourceID, len(e.Embedding), snap.dimension)
		}

		if _, ok := seenScopes[e.Scope]; !ok {
			seenScopes[e.Scope] = struct{}{}
			snap.scopes = append(snap.scopes, e.Scope)
		}

		snap.entries = append(snap.entries, cloneEntry(e))
	}
	return snap, nil
}

func cloneEntry(e Entry) Entry {
	sections := make([]string, len(e.Sections))
	copy(sections, e.Sections)
	vec := make([]float32, len(e.Embedding))
	copy(vec, e.Embedding)
	return Entry{SourceID: e.SourceID, Scope: e.Scope, Sections: sections, Embedding: vec}
}
