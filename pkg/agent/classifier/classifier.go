package classifier

import (
	"context"
	"encoding/json"
	"strings"

	"portfolio-chat-be/internal/pkg/logger"
	"portfolio-chat-be/pkg/llm"
)

const (
	DefaultLanguage     = "en"
	userMessageTemplate = "{user_message}"
)

type Result struct {
	Label    Label
	Language string
}

// Failed is the fail-closed result used whenever the model output cannot be trusted.
var Failed = Result{Label: OutOfDomain, Language: DefaultLanguage}

type PromptLookup interface {
	Get(name string) string
}

type Classifier struct {
	provider   llm.LLMProvider
	prompts    PromptLookup
	promptName string
	model      string
	logger     logger.ILogger
}

func New(provider llm.LLMProvider, prompts PromptLookup, promptName, model string, log logger.ILogger) *Classifier {
	return &Classifier{
		provider:   provider,
		prompts:    prompts,
		promptName: promptName,
		model:      model,
		logger:     log,
	}
}

// Classify never returns an error: upstream failures and unparsable answers
// both degrade to OUT_OF_DOMAIN in English.
func (c *Classifier) Classify(ctx context.Context, message string) Result {
	template := c.prompts.Get(c.promptName)
	promptText := strings.ReplaceAll(template, userMessageTemplate, message)

	opts := []llm.Option{llm.WithTemperature(0)}
	if c.model != "" {
		opts = append(opts, llm.WithModel(c.model))
	}

	raw, err := c.provider.Generate(ctx, promptText, opts...)
	if err != nil {
		c.logger.Warn("CLASSIFIER", "Classification call failed, failing closed", map[string]interface{}{"error": err})
		return Failed
	}

	result, ok := Parse(raw)
	if !ok {
		c.logger.Warn("CLASSIFIER", "Unparsable classification, failing closed", map[string]interface{}{"raw_length": len(raw)})
	}
	return result
}

type wireResult struct {
	Classification *string `json:"classification"`
	Language       *string `json:"language"`
}

// Parse decodes {"classification": ..., "language": ...}, tolerating a markdown
// code fence around it. The second value is false when the output was rejected.
func Parse(raw string) (Result, bool) {
	var wire wireResult
	if err := json.Unmarshal([]byte(stripFence(raw)), &wire); err != nil {
		return Failed, false
	}
	if wire.Classification == nil {
		return Failed, false
	}

	label, ok := ParseLabel(strings.TrimSpace(*wire.Classification))
	if !ok {
		return Failed, false
	}

	language := DefaultLanguage
	if wire.Language != nil && strings.TrimSpace(*wire.Language) != "" {
		language = strings.TrimSpace(*wire.Language)
	}
	return Result{Label: label, Language: language}, true
}

func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
