package handlers

import (
	stderrors "errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"eventease/database"
	"eventease/errors"
	"eventease/model"
	"eventease/registration"
)

type subscriptionRequest struct {
	Email       string             `json:"email"`
	IsActive    *bool              `json:"isActive"`
	Preferences *model.Preferences `json:"preferences"`
}

// Subscribe signs an email up for the newsletter. A previously unsubscribed
// email is reactivated.
func (h *Handler) Subscribe(c *fiber.Ctx) error {
	var req subscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.RaiseBadRequestError(c, "could not parse subscription")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !registration.ValidEmail(req.Email) {
		return errors.RaiseBadRequestError(c, "email is not valid")
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	sub, err := h.Store.GetSubscriberByEmail(ctx, req.Email)
	switch {
	case err == nil:
		if sub.IsActive {
			return errors.RaiseConflictError(c, "email already subscribed", "")
		}
		sub.IsActive = true
		if req.Preferences != nil {
			sub.Preferences = *req.Preferences
		}
		if err := h.Store.UpdateSubscriber(ctx, sub); err != nil {
			return h.storeError(c, err, "subscriber")
		}
		return respond(c, fiber.StatusOK, "subscription reactivated", sub)
	case !stderrors.Is(err, database.ErrNotFound):
		return h.storeError(c, err, "subscriber")
	}

	sub = model.Subscriber{
		Email:       req.Email,
		IsActive:    true,
		Preferences: model.Preferences{EventUpdates: true, NewEvents: true, Promotions: true},
	}
	if req.Preferences != nil {
		sub.Preferences = *req.Preferences
	}
	if err := h.Store.CreateSubscriber(ctx, &sub); err != nil {
		if stderrors.Is(err, database.ErrDuplicateEmail) {
			return errors.RaiseConflictError(c, "email already subscribed", "")
		}
		return h.storeError(c, err, "subscriber")
	}
	return respond(c, fiber.StatusCreated, "subscribed", sub)
}

func (h *Handler) Unsubscribe(c *fiber.Ctx) error {
	var req subscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.RaiseBadRequestError(c, "could not parse subscription")
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	sub, err := h.Store.GetSubscriberByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return h.storeError(c, err, "subscriber")
	}
	if sub.IsActive {
		sub.IsActive = false
		if err := h.Store.UpdateSubscriber(ctx, sub); err != nil {
			return h.storeError(c, err, "subscriber")
		}
	}
	return respond(c, fiber.StatusOK, "unsubscribed", sub)
}

func (h *Handler) GetSubscribers(c *fiber.Ctx) error {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	subs, err := h.Store.ListSubscribers(ctx)
	if err != nil {
		return h.storeError(c, err, "subscribers")
	}
	return respondList(c, "subscribers", subs, len(subs))
}

func (h *Handler) UpdateSubscriber(c *fiber.Ctx) error {
	var req subscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.RaiseBadRequestError(c, "could not parse subscription")
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	sub, err := h.Store.GetSubscriber(ctx, c.Params("id"))
	if err != nil {
		return h.storeError(c, err, "subscriber")
	}
	if req.IsActive != nil {
		sub.IsActive = *req.IsActive
	}
	if req.Preferences != nil {
		sub.Preferences = *req.Preferences
	}
	if err := h.Store.UpdateSubscriber(ctx, sub); err != nil {
		return h.storeError(c, err, "subscriber")
	}
	return respond(c, fiber.StatusOK, "subscriber updated", sub)
}

func (h *Handler) DeleteSubscriber(c *fiber.Ctx) error {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.Store.DeleteSubscriber(ctx, c.Params("id")); err != nil {
		return h.storeError(c, err, "subscriber")
	}
	return respond(c, fiber.StatusOK, "subscriber deleted", nil)
}
