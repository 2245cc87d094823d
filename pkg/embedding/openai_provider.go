package embedding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// OpenAIProvider calls an OpenAI-compatible /embeddings endpoint (OpenRouter, OpenAI).
type OpenAIProvider struct {
	Model  string
	client *resty.Client
}

func NewOpenAIProvider(baseURL, apiKey, model string, timeout time.Duration) EmbeddingProvider {
	if model == "" {
		model = "openai/text-embedding-3-small"
	}
	return &OpenAIProvider{
		Model: model,
		client: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetHeader("Content-Type", "application/json").
			SetAuthToken(apiKey).
			SetTimeout(timeout),
	}
}

type openAIEmbeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type openAIEmbeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (p *OpenAIProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	var out openAIEmbeddingResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(openAIEmbeddingRequest{Model: p.Model, Input: text}).
		SetResult(&out).
		Post("/embeddings")
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("embedding error: status %d, body: %s", resp.StatusCode(), resp.String())
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("embedding error: empty vector")
	}

	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{Values: out.Data[0].Embedding},
	}, nil
}
