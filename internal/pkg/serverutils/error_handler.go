package serverutils

import (
	"errors"

	"pushpilot-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware renders errors returned by handlers further down the chain.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return WriteError(ctx, err)
	}
}

func WriteError(ctx *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
	}

	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
	}

	status := apperror.HTTPStatus(appErr.Kind)
	message := appErr.Message
	if appErr.Kind == apperror.KindInternal && message == "" {
		message = "Internal server error"
	}

	res := ErrorResponse(status, message)
	res.Details = appErr.Details
	return ctx.Status(status).JSON(res)
}
