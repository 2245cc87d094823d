package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeIndex struct {
	loaded bool
	size   int
}

func (f fakeIndex) Size() int      { return f.size }
func (f fakeIndex) Loaded() bool   { return f.loaded }
func (f fakeIndex) Dimension() int { return 3 }

type fakePrompts int

func (f fakePrompts) Len() int { return int(f) }

func TestHealthCheck(t *testing.T) {
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := map[string]struct {
		ping   Pinger
		index  fakeIndex
		status string
	}{
		"memory without ping": {nil, fakeIndex{loaded: true, size: 4}, "ok"},
		"storage down":        {down, fakeIndex{loaded: true, size: 4}, "degraded"},
		"index never loaded":  {nil, fakeIndex{}, "degraded"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			res := NewHealthService("memory", tc.ping, tc.index, fakePrompts(5)).Check(context.Background())
			assert.Equal(t, tc.status, res.Status)
			assert.Equal(t, tc.index.size, res.KnowledgeSize)
			assert.Equal(t, 5, res.PromptsLoaded)
		})
	}
}
