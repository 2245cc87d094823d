package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	prompts map[string]string
	err     error
}

func (f *fakeSource) LoadPrompts(context.Context) (map[string]string, error) {
	return f.prompts, f.err
}

func TestStoreOverridesDefaults(t *testing.T) {
	src := &fakeSource{prompts: map[string]string{SystemPrompt: "custom", ContactConfirmation: ""}}
	store := NewStore(src, map[string]string{SystemPrompt: "default", ContactConfirmation: "thanks"})

	assert.Equal(t, "default", store.Get(SystemPrompt))
	require.NoError(t, store.Load(context.Background()))

	assert.Equal(t, "custom", store.Get(SystemPrompt))
	assert.Equal(t, "thanks", store.Get(ContactConfirmation))
	assert.Equal(t, "", store.Get("unknown"))
}

func TestStoreReloadFailureKeepsCurrent(t *testing.T) {
	src := &fakeSource{prompts: map[string]string{SystemPrompt: "v1"}}
	store := NewStore(src, map[string]string{SystemPrompt: "default"})
	require.NoError(t, store.Load(context.Background()))

	src.err = errors.New("boom")
	assert.Error(t, store.Reload(context.Background()))
	assert.Equal(t, "v1", store.Get(SystemPrompt))

	src.err = nil
	src.prompts = map[string]string{SystemPrompt: "v2"}
	require.NoError(t, store.Reload(context.Background()))
	assert.Equal(t, "v2", store.Get(SystemPrompt))
}

func TestStoreWithoutSource(t *testing.T) {
	store := NewStore(nil, map[string]string{ClassifierPrompt: "c"})
	require.NoError(t, store.Reload(context.Background()))
	assert.Equal(t, "c", store.Get(ClassifierPrompt))
	assert.Equal(t, 1, store.Len())
}
