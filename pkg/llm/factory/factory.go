package factory

import (
	"fmt"
	"time"

	"portfolio-chat-be/pkg/llm"
	"portfolio-chat-be/pkg/llm/ollama"
	"portfolio-chat-be/pkg/llm/openrouter"
)

type ProviderConfig struct {
	Type      string
	ModelName string
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
}

func NewLLMProvider(cfg ProviderConfig) (llm.LLMProvider, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}

	switch cfg.Type {
	case "ollama":
		return ollama.NewOllamaProvider(cfg.BaseURL, cfg.ModelName, cfg.Timeout), nil
	case "openrouter", "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%s provider requires an API key", cfg.Type)
		}
		return openrouter.NewProvider(cfg.BaseURL, cfg.APIKey, cfg.ModelName, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Type)
	}
}
