package serverutils

import (
	"errors"

	"course-marketplace-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// StatusOf maps an error kind to its HTTP status.
func StatusOf(err error) int {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}

	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindGateway:
		return fiber.StatusBadGateway
	case apperror.KindConflict:
		return fiber.StatusConflict
	case apperror.KindIneligible:
		return fiber.StatusUnprocessableEntity
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindForbidden:
		return fiber.StatusForbidden
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler renders any error returned by a handler in the BaseResponse envelope.
// Internal errors are not echoed to the client.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	status := StatusOf(err)

	var appErr *apperror.AppError
	switch {
	case errors.As(err, &appErr) && appErr.Kind != apperror.KindInternal:
		return ctx.Status(status).JSON(ErrorResponseWithData(status, appErr.Message, fiber.Map{"error_code": appErr.Code}))
	case status != fiber.StatusInternalServerError:
		return ctx.Status(status).JSON(ErrorResponse(status, err.Error()))
	}
	return ctx.Status(status).JSON(ErrorResponse(status, "Internal server error"))
}

func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if err := ctx.Next(); err != nil {
			return ErrorHandler(ctx, err)
		}
		return nil
	}
}
