package responder

import (
	"context"
	"fmt"
	"strings"

	"portfolio-chat-be/internal/pkg/logger"
	"portfolio-chat-be/pkg/agent/classifier"
	"portfolio-chat-be/pkg/llm"
	"portfolio-chat-be/pkg/prompt"
)

const translationTemperature = 0.3

type PromptLookup interface {
	Get(name string) string
}

// Responder produces the fixed replies of the REJECT and CONTACT states,
// translated when the caller does not write in English.
type Responder struct {
	provider    llm.LLMProvider
	prompts     PromptLookup
	model       string
	instruction string
	logger      logger.ILogger
}

// New takes the translation instruction as a format string with one %s for the language.
func New(provider llm.LLMProvider, prompts PromptLookup, model, instruction string, log logger.ILogger) *Responder {
	return &Responder{provider: provider, prompts: prompts, model: model, instruction: instruction, logger: log}
}

// Reject answers OUT_OF_DOMAIN and PROMPT_INJECTION messages.
func (r *Responder) Reject(ctx context.Context, label classifier.Label, language string) string {
	name := prompt.OutOfDomainResponse
	if label == classifier.PromptInjection {
		name = prompt.PromptInjectionResponse
	}
	return r.localize(ctx, r.prompts.Get(name), language)
}

func (r *Responder) Contact(ctx context.Context, language string) string {
	return r.localize(ctx, r.prompts.Get(prompt.ContactConfirmation), language)
}

func IsEnglish(language string) bool {
	l := strings.ToLower(strings.TrimSpace(language))
	return l == "" || l == "en" || l == "english"
}

// localize never fails: a translation error or an empty translation returns the English template.
func (r *Responder) localize(ctx context.Context, template, language string) string {
	if IsEnglish(language) || template == "" {
		return template
	}

	opts := []llm.Option{llm.WithTemperature(translationTemperature)}
	if r.model != "" {
		opts = append(opts, llm.WithModel(r.model))
	}

	translated, err := r.provider.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: fmt.Sprintf(r.instruction, language)},
		{Role: llm.RoleUser, Content: template},
	}, opts...)
	if err != nil {
		r.logger.Warn("RESPONDER", "Translation failed, using English template", map[string]interface{}{
			"language": language,
			"error":    err,
		})
		return template
	}

	translated = strings.TrimSpace(translated)
	if translated == "" {
		r.logger.Warn("RESPONDER", "Empty translation, using English template", map[string]interface{}{"language": language})
		return template
	}
	return translated
}
