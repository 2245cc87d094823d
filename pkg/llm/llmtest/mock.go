// Package llmtest provides an in-memory LLMProvider for tests.
package llmtest

import (
	"context"
	"sync"

	"portfolio-chat-be/pkg/llm"
)

// MockProvider answers every call through Respond and records what it was asked.
// Streaming splits the answer into chunks of ChunkSize runes.
type MockProvider struct {
	Respond   func(history []llm.Message, opts *llm.Options) (string, error)
	ChunkSize int

	// StreamErr, when set, is returned after StreamErrAfter chunks have been delivered.
	StreamErr      error
	StreamErrAfter int

	mu    sync.Mutex
	calls [][]llm.Message
	opts  []*llm.Options
}

var _ llm.LLMProvider = (*MockProvider)(nil)

// NewMockProvider returns a provider that always answers with reply.
func NewMockProvider(reply string) *MockProvider {
	return &MockProvider{
		Respond: func([]llm.Message, *llm.Options) (string, error) {
			return reply, nil
		},
		ChunkSize: 4,
	}
}

func (m *MockProvider) record(history []llm.Message, opts []llm.Option) *llm.Options {
	resolved := llm.ApplyOptions(opts...)
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]llm.Message, len(history))
	copy(cp, history)
	m.calls = append(m.calls, cp)
	m.opts = append(m.opts, resolved)
	return resolved
}

func (m *MockProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	resolved := m.record(history, opts)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return m.Respond(history, resolved)
}

func (m *MockProvider) ChatStream(ctx context.Context, history []llm.Message, onToken llm.TokenHandler, opts ...llm.Option) error {
	resolved := m.record(history, opts)
	reply, err := m.Respond(history, resolved)
	if err != nil {
		return err
	}

	for i, chunk := range Split(reply, m.ChunkSize) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if m.StreamErr != nil && i == m.StreamErrAfter {
			return m.StreamErr
		}
		if err := onToken(chunk); err != nil {
			return err
		}
	}
	if m.StreamErr != nil {
		return m.StreamErr
	}
	return nil
}

func (m *MockProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return m.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

// Calls returns a copy of every history the provider received.
func (m *MockProvider) Calls() [][]llm.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]llm.Message, len(m.calls))
	copy(out, m.calls)
	return out
}

// Options returns the resolved options of every call.
func (m *MockProvider) Options() []*llm.Options {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*llm.Options, len(m.opts))
	copy(out, m.opts)
	return out
}

// Split cuts s into pieces of at most size runes.
func Split(s string, size int) []string {
	if size <= 0 {
		size = 4
	}
	runes := []rune(s)
	var chunks []string
	for i := 0; i < len(runes); i += size {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}
