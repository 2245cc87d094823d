package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"portfolio-chat-be/internal/dto"
	"portfolio-chat-be/internal/pkg/logger"
	"portfolio-chat-be/pkg/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const ReloadChannel = "portfolio_chat:reload"

type Reloader interface {
	Reload(ctx context.Context) error
}

type IndexStats interface {
	Size() int
}

type PromptStats interface {
	Len() int
}

// IReloadService refreshes the knowledge snapshot and prompt set on every instance.
type IReloadService interface {
	// ReloadLocal refreshes only this process.
	ReloadLocal(ctx context.Context) (*dto.ReloadResponse, error)
	// ReloadAll refreshes this process and asks every other instance to do the same.
	ReloadAll(ctx context.Context) (*dto.ReloadResponse, error)
	// Listen follows reload requests from other instances until ctx is done.
	Listen(ctx context.Context)
}

type reloadMessage struct {
	Origin      string    `json:"origin"`
	RequestedAt time.Time `json:"requested_at"`
}

type reloadService struct {
	index      Reloader
	prompts    Reloader
	indexStats IndexStats
	promptStat PromptStats
	rdb        *redis.Client
	instanceId string
	logger     logger.ILogger
}

// NewReloadService works without Redis; rdb may be nil, in which case reloads stay local.
func NewReloadService(index Reloader, indexStats IndexStats, prompts Reloader, promptStats PromptStats, rdb *redis.Client, log logger.ILogger) IReloadService {
	return &reloadService{
		index:      index,
		prompts:    prompts,
		indexStats: indexStats,
		promptStat: promptStats,
		rdb:        rdb,
		instanceId: uuid.NewString(),
		logger:     log,
	}
}

func (s *reloadService) ReloadLocal(ctx context.Context) (*dto.ReloadResponse, error) {
	// Prompts first: a failed corpus reload must not block new prompt text.
	promptErr := s.prompts.Reload(ctx)
	indexErr := s.index.Reload(ctx)

	err := errors.Join(promptErr, indexErr)
	metrics.Reloaded(err == nil)
	metrics.SetKnowledgeEntries(s.indexStats.Size())

	res := &dto.ReloadResponse{KnowledgeEntries: s.indexStats.Size(), Prompts: s.promptStat.Len()}
	if err != nil {
		s.logger.Error("RELOAD", "Reload failed, previous snapshot kept", map[string]interface{}{"error": err})
		return res, fmt.Errorf("reload: %w", err)
	}
	s.logger.Info("RELOAD", "Knowledge and prompts reloaded", map[string]interface{}{
		"knowledge_entries": res.KnowledgeEntries,
		"prompts":           res.Prompts,
	})
	return res, nil
}

func (s *reloadService) ReloadAll(ctx context.Context) (*dto.ReloadResponse, error) {
	res, err := s.ReloadLocal(ctx)
	if err != nil {
		return res, err
	}
	if s.rdb == nil {
		return res, nil
	}

	payload, _ := json.Marshal(reloadMessage{Origin: s.instanceId, RequestedAt: time.Now().UTC()})
	if pubErr := s.rdb.Publish(ctx, ReloadChannel, payload).Err(); pubErr != nil {
		s.logger.Warn("RELOAD", "Failed to broadcast reload", map[string]interface{}{"error": pubErr})
		return res, nil
	}
	res.Broadcast = true
	return res, nil
}

func (s *reloadService) Listen(ctx context.Context) {
	if s.rdb == nil {
		return
	}

	pubsub := s.rdb.Subscribe(ctx, ReloadChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var payload reloadMessage
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				s.logger.Warn("RELOAD", "Unparsable reload message", map[string]interface{}{"error": err})
				continue
			}
			if payload.Origin == s.instanceId {
				continue
			}
			_, _ = s.ReloadLocal(ctx)
		}
	}
}
