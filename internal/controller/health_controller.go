package controller

import (
	"pushpilot-be/internal/dto"
	"pushpilot-be/internal/pkg/metrics"
	"pushpilot-be/internal/pkg/serverutils"
	"pushpilot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Root(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
}

type healthController struct {
	health       service.IHealthService
	housekeeping service.IHousekeepingService
	version      string
}

func NewHealthController(health service.IHealthService, housekeeping service.IHousekeepingService, version string) IHealthController {
	return &healthController{health: health, housekeeping: housekeeping, version: version}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/", c.Root)
	r.Get("/health", c.Health)
	r.Get("/metrics", metrics.Handler())
	r.Get("/api/stats", c.Stats)
}

func (c *healthController) Root(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.RootResponse{
		Service: "PushPilot Backend",
		Version: c.version,
		Docs:    "/health",
	})
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	res := c.health.Check(ctx.Context())
	if !res.Healthy() {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(res)
	}
	return ctx.JSON(res)
}

func (c *healthController) Stats(ctx *fiber.Ctx) error {
	res, err := c.housekeeping.Stats(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get stats", res))
}
