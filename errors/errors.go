package errors

import (
	stderrors "errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

func RaiseError(context *fiber.Ctx, status int, message string, data string) error {
	return context.Status(status).JSON(fiber.Map{
		"status":  "error",
		"message": message,
		"data":    data})
}

func RaisePermissionsError(context *fiber.Ctx, data string) error {
	return RaiseError(context, fiber.StatusUnauthorized, "lack of permissions", data)
}

func RaiseForbiddenError(context *fiber.Ctx, data string) error {
	return RaiseError(context, fiber.StatusForbidden, "forbidden", data)
}

func RaiseInternalServerError(context *fiber.Ctx, data string) error {
	return RaiseError(context, fiber.StatusInternalServerError, "internal error", data)
}

func RaiseBadRequestError(context *fiber.Ctx, data string) error {
	return RaiseError(context, fiber.StatusBadRequest, "bad request", data)
}

func RaiseNotFoundError(context *fiber.Ctx, data string) error {
	return RaiseError(context, fiber.StatusNotFound, "resource not found", data)
}

// RaiseConflictError reports a business-rule rejection; message is shown to
// the user as is.
func RaiseConflictError(context *fiber.Ctx, message string, data string) error {
	return RaiseError(context, fiber.StatusConflict, message, data)
}

func RaiseUnavailableError(context *fiber.Ctx, data string) error {
	return RaiseError(context, fiber.StatusServiceUnavailable, "service unavailable", data)
}

// Handler is the fiber error handler for errors returned rather than raised.
// Only *fiber.Error messages reach the client; anything else, recovered
// panics included, is logged and answered with a generic 500.
func Handler(context *fiber.Ctx, err error) error {
	var e *fiber.Error
	if stderrors.As(err, &e) {
		return RaiseError(context, e.Code, "request failed", e.Message)
	}
	slog.Error("unhandled request error",
		"method", context.Method(), "path", context.Path(),
		"requestid", context.Locals("requestid"), "err", err)
	return RaiseError(context, fiber.StatusInternalServerError, "request failed", "internal error")
}
