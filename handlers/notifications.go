package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"eventease/errors"
	"eventease/middleware"
	"eventease/model"
)

func (h *Handler) GetNotifications(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)

	ctx, cancel := h.requestContext(c)
	defer cancel()

	notes, err := h.Store.ListNotifications(ctx, id.UserId)
	if err != nil {
		return h.storeError(c, err, "notifications")
	}
	return respondList(c, "notifications", notes, len(notes))
}

func (h *Handler) MarkNotificationRead(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)

	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.Store.MarkNotificationRead(ctx, id.UserId, c.Params("id")); err != nil {
		return h.storeError(c, err, "notification")
	}
	return respond(c, fiber.StatusOK, "notification marked as read", nil)
}

func (h *Handler) MarkAllNotificationsRead(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)

	ctx, cancel := h.requestContext(c)
	defer cancel()

	n, err := h.Store.MarkAllNotificationsRead(ctx, id.UserId)
	if err != nil {
		return h.storeError(c, err, "notifications")
	}
	return respond(c, fiber.StatusOK, "notifications marked as read", fiber.Map{"updated": n})
}

func (h *Handler) DeleteNotification(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)

	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.Store.DeleteNotification(ctx, id.UserId, c.Params("id")); err != nil {
		return h.storeError(c, err, "notification")
	}
	return respond(c, fiber.StatusOK, "notification deleted", nil)
}

// SendNotification lets an admin notify one user, or every user when userId
// is empty.
func (h *Handler) SendNotification(c *fiber.Ctx) error {
	var body struct {
		UserId  string `json:"userId"`
		Subject string `json:"subject"`
		Message string `json:"message"`
		Type    string `json:"type"`
	}
	if err := c.BodyParser(&body); err != nil {
		return errors.RaiseBadRequestError(c, "could not parse notification")
	}
	if strings.TrimSpace(body.Subject) == "" || strings.TrimSpace(body.Message) == "" {
		return errors.RaiseBadRequestError(c, "subject and message are required")
	}
	if body.Type == "" {
		body.Type = "announcement"
	}

	sender, _ := middleware.CurrentIdentity(c)

	ctx, cancel := h.requestContext(c)
	defer cancel()

	var recipients []string
	if body.UserId != "" {
		user, err := h.Store.GetUser(ctx, body.UserId)
		if err != nil {
			return h.storeError(c, err, "user")
		}
		recipients = []string{user.Id}
	} else {
		users, err := h.Store.ListUsers(ctx)
		if err != nil {
			return h.storeError(c, err, "users")
		}
		for _, u := range users {
			recipients = append(recipients, u.Id)
		}
	}

	for _, userId := range recipients {
		note := model.Notification{
			UserId:  userId,
			Subject: body.Subject,
			Message: body.Message,
			Type:    body.Type,
			Sender:  sender.Name,
		}
		if err := h.Store.CreateNotification(ctx, &note); err != nil {
			return h.storeError(c, err, "notification")
		}
	}
	return respond(c, fiber.StatusCreated, "notification sent", fiber.Map{"sent": len(recipients)})
}
