package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"eventease/errors"
	"eventease/middleware"
	"eventease/model"
)

func (h *Handler) GetUsers(c *fiber.Ctx) error {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	users, err := h.Store.ListUsers(ctx)
	if err != nil {
		return h.storeError(c, err, "users")
	}
	return respondList(c, "users", users, len(users))
}

func (h *Handler) GetUser(c *fiber.Ctx) error {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	user, err := h.Store.GetUser(ctx, c.Params("id"))
	if err != nil {
		return h.storeError(c, err, "user")
	}
	return respond(c, fiber.StatusOK, "user", user)
}

func (h *Handler) UpdateUserRole(c *fiber.Ctx) error {
	var body struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&body); err != nil {
		return errors.RaiseBadRequestError(c, "could not parse role")
	}
	body.Role = strings.ToLower(strings.TrimSpace(body.Role))
	if !model.IsValidRole(body.Role) {
		return errors.RaiseBadRequestError(c, "role must be one of user, organizer, admin")
	}

	id, _ := middleware.CurrentIdentity(c)
	if c.Params("id") == id.UserId && body.Role != model.RoleAdmin {
		return errors.RaiseBadRequestError(c, "admins cannot demote themselves")
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	user, err := h.Store.UpdateUserRole(ctx, c.Params("id"), body.Role)
	if err != nil {
		return h.storeError(c, err, "user")
	}
	return respond(c, fiber.StatusOK, "role updated", user)
}

func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	if c.Params("id") == id.UserId {
		return errors.RaiseBadRequestError(c, "admins cannot delete themselves")
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.Store.DeleteUser(ctx, c.Params("id")); err != nil {
		return h.storeError(c, err, "user")
	}
	return respond(c, fiber.StatusOK, "user deleted", nil)
}

func (h *Handler) GetStats(c *fiber.Ctx) error {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	stats, err := h.Store.Stats(ctx)
	if err != nil {
		return h.storeError(c, err, "stats")
	}
	return respond(c, fiber.StatusOK, "stats", stats)
}

func (h *Handler) ExportRegistrations(c *fiber.Ctx) error {
	if h.Exporter == nil {
		return errors.RaiseUnavailableError(c, "no spreadsheet export is configured")
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	event, err := h.Store.GetEvent(ctx, c.Params("id"))
	if err != nil {
		return h.storeError(c, err, "event")
	}
	regs, err := h.Store.ListRegistrationsByEvent(ctx, event.Id)
	if err != nil {
		return h.storeError(c, err, "registrations")
	}

	n, err := h.Exporter.ExportRegistrations(ctx, event, regs)
	if err != nil {
		h.log().Error("export registrations", "event", event.Id, "err", err)
		return errors.RaiseError(c, fiber.StatusBadGateway, "export failed", err.Error())
	}
	return respond(c, fiber.StatusOK, "registrations exported", fiber.Map{"exported": n})
}
