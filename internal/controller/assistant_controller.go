package controller

import (
	"pushpilot-be/internal/dto"
	"pushpilot-be/internal/pkg/apperror"
	"pushpilot-be/internal/pkg/serverutils"
	"pushpilot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAssistantController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	Confirm(ctx *fiber.Ctx) error
	RateLimitStatus(ctx *fiber.Ctx) error
	GetConversation(ctx *fiber.Ctx) error
}

type assistantController struct {
	service     service.IAssistantService
	rateLimiter service.IRateLimiterService
}

func NewAssistantController(service service.IAssistantService, rateLimiter service.IRateLimiterService) IAssistantController {
	return &assistantController{service: service, rateLimiter: rateLimiter}
}

func (c *assistantController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ai")
	h.Use(serverutils.CredentialMiddleware)
	h.Post("/chat", c.Chat)
	h.Post("/chat/confirm", c.Confirm)
	h.Get("/rate-limit/:user_id", c.RateLimitStatus)
	h.Get("/conversations/:session_id", c.GetConversation)
}

func (c *assistantController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Chat(ctx.Context(), &req, serverutils.Credential(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

// Confirm accepts query parameters or a JSON body; body fields win.
func (c *assistantController) Confirm(ctx *fiber.Ctx) error {
	var req dto.ConfirmRequest
	if err := ctx.QueryParser(&req); err != nil {
		return apperror.Validation("Invalid query parameters")
	}
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return apperror.Validation("Invalid request body")
		}
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Confirm(ctx.Context(), &req, serverutils.Credential(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *assistantController) RateLimitStatus(ctx *fiber.Ctx) error {
	res, err := c.rateLimiter.Status(ctx.Context(), ctx.Params("user_id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get rate limit status", res))
}

func (c *assistantController) GetConversation(ctx *fiber.Ctx) error {
	userId := ctx.Query("user_id")
	if userId == "" {
		return apperror.Validation("user_id is required")
	}

	res, err := c.service.GetConversation(ctx.Context(), ctx.Params("session_id"), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get conversation", res))
}
