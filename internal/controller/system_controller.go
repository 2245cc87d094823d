package controller

import (
	"portfolio-chat-be/internal/dto"
	"portfolio-chat-be/internal/pkg/serverutils"
	"portfolio-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ISystemController interface {
	RegisterRoutes(app fiber.Router, api fiber.Router)
	Health(ctx *fiber.Ctx) error
	Reload(ctx *fiber.Ctx) error
}

type systemController struct {
	health      service.IHealthService
	reload      service.IReloadService
	adminSecret string
}

func NewSystemController(health service.IHealthService, reload service.IReloadService, adminSecret string) ISystemController {
	return &systemController{health: health, reload: reload, adminSecret: adminSecret}
}

func (c *systemController) RegisterRoutes(app fiber.Router, api fiber.Router) {
	app.Get("/health", c.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	admin := api.Group("/admin")
	admin.Use(serverutils.AdminJwtMiddleware(c.adminSecret))
	admin.Post("/reload", c.Reload)
}

func (c *systemController) Health(ctx *fiber.Ctx) error {
	res := c.health.Check(ctx.UserContext())
	if res.Status != "ok" {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(res)
	}
	return ctx.JSON(res)
}

func (c *systemController) Reload(ctx *fiber.Ctx) error {
	res, err := c.reload.ReloadAll(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.BaseResponse[*dto.ReloadResponse]{
			Code:    fiber.StatusInternalServerError,
			Message: "Reload failed, previous data kept",
			Data:    res,
		})
	}
	return ctx.JSON(serverutils.SuccessResponse("Reloaded", res))
}
