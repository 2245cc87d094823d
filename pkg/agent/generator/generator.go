package generator

import (
	"context"
	"strings"

	"portfolio-chat-be/pkg/llm"
)

const contextDelimiter = "\n\n--- Context ---\n"

// perMessageOverhead covers role and separator tokens.
const perMessageOverhead = 4

type Input struct {
	SystemPrompt string
	Context      string
	History      []llm.Message
	UserMessage  string
}

// Emit forwards one token to the caller. A non-nil error stops generation.
type Emit func(token string) error

type Generator struct {
	provider      llm.LLMProvider
	model         string
	historyBudget int
	count         TokenCounter
}

func New(provider llm.LLMProvider, model string, historyBudget int, count TokenCounter) *Generator {
	if count == nil {
		count = ApproxCounter
	}
	return &Generator{provider: provider, model: model, historyBudget: historyBudget, count: count}
}

// BuildMessages lays out the system message (prompt plus context), the
// trimmed history in order, then the user message.
func (g *Generator) BuildMessages(in Input) []llm.Message {
	history := g.TrimHistory(in.History)

	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: in.SystemPrompt + contextDelimiter + in.Context})
	msgs = append(msgs, history...)
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: in.UserMessage})
	return msgs
}

// TrimHistory drops the oldest turns until the rest fits the budget. A
// non-positive budget keeps everything.
func (g *Generator) TrimHistory(history []llm.Message) []llm.Message {
	if g.historyBudget <= 0 {
		return history
	}

	used := 0
	start := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		cost := g.count(history[i].Content) + perMessageOverhead
		if used+cost > g.historyBudget {
			break
		}
		used += cost
		start = i
	}
	return history[start:]
}

// Generate streams the completion through emit and returns the accumulated
// text. A token is appended only after emit accepted it, so the returned text
// is exactly what the caller received, also when err is non-nil.
func (g *Generator) Generate(ctx context.Context, in Input, emit Emit) (string, error) {
	var acc strings.Builder

	opts := []llm.Option{}
	if g.model != "" {
		opts = append(opts, llm.WithModel(g.model))
	}

	err := g.provider.ChatStream(ctx, g.BuildMessages(in), func(token string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(token); err != nil {
			return err
		}
		acc.WriteString(token)
		return nil
	}, opts...)

	return acc.String(), err
}
