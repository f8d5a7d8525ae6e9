package handlers

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"eventease/database"
	"eventease/errors"
	"eventease/export"
	"eventease/model"
	"eventease/notify"
	"eventease/payments"
)

// Handler carries the dependencies of every route. Exporter may be nil.
type Handler struct {
	Store      database.Store
	Payments   payments.Provider
	Notifier   notify.Notifier
	Exporter   export.Exporter
	Logger     *slog.Logger
	SigningKey string
	TokenTTL   time.Duration
	Timeout    time.Duration
}

// requestContext bounds the store and payment calls of one request.
func (h *Handler) requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	if h.Timeout <= 0 {
		return context.WithCancel(c.UserContext())
	}
	return context.WithTimeout(c.UserContext(), h.Timeout)
}

func (h *Handler) log() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

// storeError maps store sentinels onto responses; what names the missing
// resource.
func (h *Handler) storeError(c *fiber.Ctx, err error, what string) error {
	switch {
	case stderrors.Is(err, database.ErrNotFound):
		return errors.RaiseNotFoundError(c, what+" not found")
	case stderrors.Is(err, database.ErrAlreadyRegistered):
		return errors.RaiseConflictError(c, database.ErrAlreadyRegistered.Error(), "")
	case stderrors.Is(err, database.ErrSoldOut):
		return errors.RaiseConflictError(c, database.ErrSoldOut.Error(), "")
	case stderrors.Is(err, database.ErrDuplicateEmail):
		return errors.RaiseConflictError(c, database.ErrDuplicateEmail.Error(), "")
	case stderrors.Is(err, database.ErrCapacityTooLow):
		return errors.RaiseConflictError(c, database.ErrCapacityTooLow.Error(), "")
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.RaiseUnavailableError(c, "database call timed out")
	}
	h.log().Error("database call failed", "path", c.Path(), "err", err)
	return errors.RaiseInternalServerError(c, "server side problem occured while database call")
}

func respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(model.Envelope[interface{}]{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

func respondList[T any](c *fiber.Ctx, message string, items []T, total int) error {
	if items == nil {
		items = []T{}
	}
	return c.JSON(model.Envelope[[]T]{
		Status:  "success",
		Message: message,
		Data:    items,
		Total:   &total,
	})
}

func Health(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, "ok", fiber.Map{"time": time.Now().UTC()})
}
