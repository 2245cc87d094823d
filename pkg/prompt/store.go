package prompt

import (
	"context"
	"fmt"
	"sync/atomic"
)

const (
	SystemPrompt            = "system_prompt"
	ClassifierPrompt        = "classifier_prompt"
	OutOfDomainResponse     = "out_of_domain_response"
	PromptInjectionResponse = "prompt_injection_response"
	ContactConfirmation     = "contact_confirmation"
)

// Source supplies stored prompt overrides keyed by name.
type Source interface {
	LoadPrompts(ctx context.Context) (map[string]string, error)
}

// Store holds the current prompt set. Stored prompts override the defaults;
// names missing from the source keep their default text.
type Store struct {
	source   Source
	defaults map[string]string
	current  atomic.Pointer[map[string]string]
}

func NewStore(source Source, defaults map[string]string) *Store {
	s := &Store{source: source, defaults: copyMap(defaults)}
	initial := copyMap(defaults)
	s.current.Store(&initial)
	return s
}

func (s *Store) Load(ctx context.Context) error {
	return s.Reload(ctx)
}

// Reload swaps in a fresh set. The previous set survives a failed load.
func (s *Store) Reload(ctx context.Context) error {
	if s.source == nil {
		return nil
	}
	stored, err := s.source.LoadPrompts(ctx)
	if err != nil {
		return fmt.Errorf("load prompts: %w", err)
	}

	merged := copyMap(s.defaults)
	for name, content := range stored {
		if content != "" {
			merged[name] = content
		}
	}
	s.current.Store(&merged)
	return nil
}

// Get returns the prompt text, or "" for an unknown name.
func (s *Store) Get(name string) string {
	return (*s.current.Load())[name]
}

func (s *Store) Len() int {
	return len(*s.current.Load())
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
