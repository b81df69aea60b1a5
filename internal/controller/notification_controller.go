package controller

import (
	"pushpilot-be/internal/dto"
	"pushpilot-be/internal/pkg/apperror"
	"pushpilot-be/internal/pkg/serverutils"
	"pushpilot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type INotificationController interface {
	RegisterRoutes(r fiber.Router)
	SendAll(ctx *fiber.Ctx) error
	SendTest(ctx *fiber.Ctx) error
	SendToUser(ctx *fiber.Ctx) error
}

type notificationController struct {
	service service.IPushService
}

func NewNotificationController(service service.IPushService) INotificationController {
	return &notificationController{service: service}
}

func (c *notificationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/notifications")
	h.Post("/send-all", c.SendAll)
	h.Post("/send-test", c.SendTest)
	h.Post("/send-to-user/:user_id", c.SendToUser)
}

func (c *notificationController) SendAll(ctx *fiber.Ctx) error {
	req, err := parseOptionalNotification(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.SendAll(ctx.Context(), req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *notificationController) SendTest(ctx *fiber.Ctx) error {
	res, err := c.service.SendTest(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *notificationController) SendToUser(ctx *fiber.Ctx) error {
	req, err := parseOptionalNotification(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.SendToUser(ctx.Context(), ctx.Params("user_id"), req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

// parseOptionalNotification returns nil for an empty body so defaults apply.
func parseOptionalNotification(ctx *fiber.Ctx) (*dto.SendNotificationRequest, error) {
	if len(ctx.Body()) == 0 {
		return nil, nil
	}

	var req dto.SendNotificationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return nil, apperror.Validation("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}
	return &req, nil
}
