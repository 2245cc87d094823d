package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"

	"portfolio-chat-be/internal/constant"
	"portfolio-chat-be/internal/dto"
	"portfolio-chat-be/internal/pkg/logger"
	"portfolio-chat-be/internal/pkg/serverutils"
	"portfolio-chat-be/internal/service"
	"portfolio-chat-be/pkg/credential"

	"github.com/gofiber/fiber/v2"
)

const ndjsonContentType = "application/x-ndjson"

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
}

type chatController struct {
	service      service.IChatService
	secureCookie bool
	logger       logger.ILogger
}

func NewChatController(service service.IChatService, secureCookie bool, log logger.ILogger) IChatController {
	return &chatController{service: service, secureCookie: secureCookie, logger: log}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	r.Post("/chat", c.Chat)
}

// Chat answers with an NDJSON stream. Validation and quota problems are
// reported as regular JSON errors before the stream starts.
func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	prepared, err := c.service.Prepare(ctx.UserContext(), serverutils.ClientIP(ctx), &req, ctx.Cookies(credential.CookieName))
	if err != nil {
		return httpError(err)
	}

	serverutils.SetCredentialCookie(ctx, prepared.Token, prepared.ExpiresAt, c.secureCookie)
	serverutils.SetQuotaHeaders(ctx, prepared.Limit, prepared.Used, prepared.ResetAt)
	ctx.Set(fiber.HeaderContentType, ndjsonContentType)
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set("X-Accel-Buffering", "no")

	// The writer runs after the handler returned, so nothing from ctx may be used inside it.
	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx.UserContext()))
	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()

		emit := func(token string) error {
			if err := writeEvent(w, dto.StreamEvent{Type: dto.StreamEventToken, Data: token}); err != nil {
				cancel()
				return err
			}
			return nil
		}

		err := c.service.Stream(streamCtx, prepared, emit)
		switch {
		case err == nil:
			_ = writeEvent(w, dto.StreamEvent{Type: dto.StreamEventDone})
		case errors.Is(streamCtx.Err(), context.Canceled):
			c.logger.Info("CHAT", "Client went away mid-stream", map[string]interface{}{"conversation_id": prepared.ConversationId})
		default:
			_ = writeEvent(w, dto.StreamEvent{Type: dto.StreamEventError, Data: constant.GenericStreamError})
		}
	})
	return nil
}

func writeEvent(w *bufio.Writer, event dto.StreamEvent) error {
	line, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(line, '\n')); err != nil {
		return err
	}
	return w.Flush()
}
