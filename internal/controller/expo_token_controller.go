package controller

import (
	"fmt"

	"pushpilot-be/internal/dto"
	"pushpilot-be/internal/pkg/apperror"
	"pushpilot-be/internal/pkg/serverutils"
	"pushpilot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IExpoTokenController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	ShowByUser(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	DeleteByUser(ctx *fiber.Ctx) error
}

type expoTokenController struct {
	service service.IExpoTokenService
}

func NewExpoTokenController(service service.IExpoTokenService) IExpoTokenController {
	return &expoTokenController{service: service}
}

func (c *expoTokenController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/expo-tokens")
	h.Post("/", c.Create)
	h.Get("/", c.GetAll)
	h.Get("/user/:user_id", c.ShowByUser)
	h.Delete("/user/:user_id", c.DeleteByUser)
	h.Get("/:id", c.Show)
	h.Put("/:id", c.Update)
	h.Delete("/:id", c.Delete)
}

func (c *expoTokenController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateExpoTokenRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, created, err := c.service.Upsert(ctx.Context(), &req)
	if err != nil {
		return err
	}

	if created {
		body := serverutils.SuccessResponse("Expo token created", res)
		body.Code = fiber.StatusCreated
		return ctx.Status(fiber.StatusCreated).JSON(body)
	}
	return ctx.JSON(serverutils.SuccessResponse("Expo token updated", res))
}

func (c *expoTokenController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.service.GetAll(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all expo tokens", res))
}

func (c *expoTokenController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.Show(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show expo token", res))
}

func (c *expoTokenController) ShowByUser(ctx *fiber.Ctx) error {
	res, err := c.service.ShowByUser(ctx.Context(), ctx.Params("user_id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show expo token", res))
}

func (c *expoTokenController) Update(ctx *fiber.Ctx) error {
	var req dto.UpdateExpoTokenRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Update(ctx.Context(), ctx.Params("id"), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Expo token updated", res))
}

func (c *expoTokenController) Delete(ctx *fiber.Ctx) error {
	if err := c.service.Delete(ctx.Context(), ctx.Params("id")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Expo token deleted successfully", nil))
}

func (c *expoTokenController) DeleteByUser(ctx *fiber.Ctx) error {
	userId := ctx.Params("user_id")
	if err := c.service.DeleteByUser(ctx.Context(), userId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any](fmt.Sprintf("Expo token for user %s deleted successfully", userId), nil))
}
