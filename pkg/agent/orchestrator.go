// Package agent runs one chat turn through the classify, retrieve, generate,
// reject and contact states.
package agent

import (
	"context"
	"fmt"
	"strings"

	"portfolio-chat-be/pkg/agent/classifier"
	"portfolio-chat-be/pkg/agent/generator"
	"portfolio-chat-be/pkg/agent/retriever"
	"portfolio-chat-be/pkg/llm"
	"portfolio-chat-be/pkg/prompt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "portfolio-chat-be/agent"

type State string

const (
	StateClassify State = "CLASSIFY"
	StateRetrieve State = "RETRIEVE"
	StateGenerate State = "GENERATE"
	StateReject   State = "REJECT"
	StateContact  State = "CONTACT"
)

type Classifier interface {
	Classify(ctx context.Context, message string) classifier.Result
}

type Retriever interface {
	Retrieve(ctx context.Context, message, scope string) (retriever.Result, error)
}

type Generator interface {
	Generate(ctx context.Context, in generator.Input, emit generator.Emit) (string, error)
}

type Responder interface {
	Reject(ctx context.Context, label classifier.Label, language string) string
	Contact(ctx context.Context, language string) string
}

type PromptLookup interface {
	Get(name string) string
}

type Request struct {
	Message string
	Scope   string
	History []llm.Message
}

// Outcome describes what happened during a turn. Text holds whatever reached
// the caller, which is partial when Run returns an error mid-generation.
type Outcome struct {
	Label    classifier.Label
	Language string
	Path     []State
	Text     string
	Context  string
}

type Orchestrator struct {
	classifier Classifier
	retriever  Retriever
	generator  Generator
	responder  Responder
	prompts    PromptLookup
	tracer     trace.Tracer
}

func NewOrchestrator(c Classifier, r Retriever, g Generator, resp Responder, prompts PromptLookup) *Orchestrator {
	return &Orchestrator{
		classifier: c,
		retriever:  r,
		generator:  g,
		responder:  resp,
		prompts:    prompts,
		tracer:     otel.Tracer(tracerName),
	}
}

// Run classifies the message and walks exactly one branch. Every piece of
// text reaching the caller goes through emit.
func (o *Orchestrator) Run(ctx context.Context, req Request, emit generator.Emit) (Outcome, error) {
	ctx, span := o.tracer.Start(ctx, "agent.run", trace.WithAttributes(attribute.String("chat.scope", req.Scope)))
	defer span.End()

	out := Outcome{}
	result := o.classify(ctx, req.Message)
	out.Label = result.Label
	out.Language = result.Language
	out.Path = append(out.Path, StateClassify)
	span.SetAttributes(attribute.String("chat.label", result.Label.String()))

	var err error
	switch result.Label {
	case classifier.InDomain:
		err = o.answer(ctx, req, &out, emit)
	case classifier.OutOfDomain, classifier.PromptInjection:
		out.Path = append(out.Path, StateReject)
		err = o.reply(ctx, StateReject, &out, emit, func(ctx context.Context) string {
			return o.responder.Reject(ctx, result.Label, result.Language)
		})
	case classifier.Contact:
		out.Path = append(out.Path, StateContact)
		err = o.reply(ctx, StateContact, &out, emit, func(ctx context.Context) string {
			return o.responder.Contact(ctx, result.Language)
		})
	default:
		err = fmt.Errorf("agent: no transition for label %s", result.Label)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return out, err
}

func (o *Orchestrator) classify(ctx context.Context, message string) classifier.Result {
	ctx, span := o.tracer.Start(ctx, "agent.classify")
	defer span.End()

	result := o.classifier.Classify(ctx, message)
	span.SetAttributes(
		attribute.String("chat.label", result.Label.String()),
		attribute.String("chat.language", result.Language),
	)
	return result
}

func (o *Orchestrator) answer(ctx context.Context, req Request, out *Outcome, emit generator.Emit) error {
	out.Path = append(out.Path, StateRetrieve)
	rctx, rspan := o.tracer.Start(ctx, "agent.retrieve")
	retrieved, err := o.retriever.Retrieve(rctx, req.Message, req.Scope)
	rspan.SetAttributes(attribute.Int("knowledge.hits", len(retrieved.Hits)))
	if err != nil {
		rspan.RecordError(err)
		rspan.SetStatus(codes.Error, err.Error())
		rspan.End()
		return fmt.Errorf("retrieve: %w", err)
	}
	rspan.End()
	out.Context = retrieved.Context

	out.Path = append(out.Path, StateGenerate)
	gctx, gspan := o.tracer.Start(ctx, "agent.generate")
	defer gspan.End()

	text, err := o.generator.Generate(gctx, generator.Input{
		SystemPrompt: o.prompts.Get(prompt.SystemPrompt),
		Context:      retrieved.Context,
		History:      req.History,
		UserMessage:  req.Message,
	}, emit)
	out.Text = text
	gspan.SetAttributes(attribute.Int("chat.response_chars", len(text)))
	if err != nil {
		gspan.RecordError(err)
		gspan.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("generate: %w", err)
	}
	return nil
}

// reply sends a canned answer as a single token.
func (o *Orchestrator) reply(ctx context.Context, state State, out *Outcome, emit generator.Emit, produce func(context.Context) string) error {
	ctx, span := o.tracer.Start(ctx, "agent."+strings.ToLower(string(state)))
	defer span.End()

	text := produce(ctx)
	if err := emit(text); err != nil {
		span.RecordError(err)
		return err
	}
	out.Text = text
	return nil
}
