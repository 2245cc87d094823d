package controller

import (
	"portfolio-chat-be/internal/pkg/serverutils"
	"portfolio-chat-be/internal/service"
	"portfolio-chat-be/pkg/credential"
	"portfolio-chat-be/pkg/knowledge"

	"github.com/gofiber/fiber/v2"
)

type IConversationController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type conversationController struct {
	service service.IConversationService
}

func NewConversationController(service service.IConversationService) IConversationController {
	return &conversationController{service: service}
}

func (c *conversationController) RegisterRoutes(r fiber.Router) {
	r.Get("/conversation", c.Show)
	r.Delete("/conversation", c.Delete)
}

func (c *conversationController) Show(ctx *fiber.Ctx) error {
	scope := ctx.Query("scope", knowledge.GlobalScope)

	res, err := c.service.History(ctx.UserContext(), serverutils.ClientIP(ctx), scope, ctx.Cookies(credential.CookieName))
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Conversation", res))
}

// Delete keeps the credential cookie: the quota it carries still applies.
func (c *conversationController) Delete(ctx *fiber.Ctx) error {
	res, err := c.service.Delete(ctx.UserContext(), serverutils.ClientIP(ctx), ctx.Cookies(credential.CookieName))
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Conversation deleted", res))
}
