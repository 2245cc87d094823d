package service

import (
	"context"

	"portfolio-chat-be/internal/dto"
)

// Pinger reports whether the backing storage answers.
type Pinger func(ctx context.Context) error

type IndexHealth interface {
	IndexStats
	Loaded() bool
	Dimension() int
}

type IHealthService interface {
	Check(ctx context.Context) *dto.HealthResponse
}

type healthService struct {
	storage string
	ping    Pinger
	index   IndexHealth
	prompts PromptStats
}

// NewHealthService accepts a nil ping for in-memory storage.
func NewHealthService(storage string, ping Pinger, index IndexHealth, prompts PromptStats) IHealthService {
	return &healthService{storage: storage, ping: ping, index: index, prompts: prompts}
}

func (s *healthService) Check(ctx context.Context) *dto.HealthResponse {
	res := &dto.HealthResponse{
		Status:         "ok",
		Storage:        s.storage,
		KnowledgeSize:  s.index.Size(),
		PromptsLoaded:  s.prompts.Len(),
		IndexDimension: s.index.Dimension(),
	}
	if s.ping != nil {
		if err := s.ping(ctx); err != nil {
			res.Status = "degraded"
		}
	}
	if !s.index.Loaded() {
		res.Status = "degraded"
	}
	return res
}
