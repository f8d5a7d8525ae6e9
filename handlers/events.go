package handlers

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"eventease/errors"
	"eventease/middleware"
	"eventease/model"
)

const maxPageSize = 100

func (h *Handler) GetEvents(c *fiber.Ctx) error {
	page, pageErr := queryInt(c, "page", 1)
	limit, limitErr := queryInt(c, "limit", 0)
	if pageErr != nil || limitErr != nil || page < 1 || limit < 0 {
		return errors.RaiseBadRequestError(c, "page must be positive and limit not negative")
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if limit > 0 && page-1 > math.MaxInt/limit {
		return errors.RaiseBadRequestError(c, "page is out of range")
	}
	query := model.EventQuery{
		Search:   strings.TrimSpace(c.Query("search")),
		Category: strings.TrimSpace(c.Query("category")),
		Type:     strings.TrimSpace(c.Query("type")),
		Page:     page,
		Limit:    limit,
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	events, total, err := h.Store.ListEvents(ctx, query)
	if err != nil {
		return h.storeError(c, err, "events")
	}
	return respondList(c, "events", events, total)
}

func (h *Handler) GetEvent(c *fiber.Ctx) error {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	event, err := h.Store.GetEvent(ctx, c.Params("id"))
	if err != nil {
		return h.storeError(c, err, "event")
	}
	return respond(c, fiber.StatusOK, "event", event)
}

func queryInt(c *fiber.Ctx, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func validateEvent(e model.Event) error {
	switch {
	case strings.TrimSpace(e.Title) == "":
		return fmt.Errorf("title is required")
	case strings.TrimSpace(e.Date) == "":
		return fmt.Errorf("date is required")
	case e.Capacity < 1:
		return fmt.Errorf("capacity must be at least 1")
	case e.Price < 0:
		return fmt.Errorf("price must not be negative")
	case e.Attendees > e.Capacity:
		return fmt.Errorf("capacity is below the %d tickets already booked", e.Attendees)
	}
	return nil
}

func (h *Handler) CreateEvent(c *fiber.Ctx) error {
	var event model.Event
	if err := c.BodyParser(&event); err != nil {
		return errors.RaiseBadRequestError(c, "could not parse event")
	}
	event.Title = strings.TrimSpace(event.Title)
	event.Attendees = 0
	if err := validateEvent(event); err != nil {
		return errors.RaiseBadRequestError(c, err.Error())
	}

	id, _ := middleware.CurrentIdentity(c)
	event.OrganizerId = id.UserId
	if event.Organizer.Name == "" {
		event.Organizer = model.Organizer{Name: id.Name, Email: id.Email}
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.Store.CreateEvent(ctx, &event); err != nil {
		return h.storeError(c, err, "event")
	}

	if err := h.Notifier.Notify(ctx, fmt.Sprintf("New event %q on %s in %s by %s", event.Title, event.Date, event.Location, event.Organizer.Name)); err != nil {
		h.log().Warn("notify new event", "event", event.Id, "err", err)
	}

	return respond(c, fiber.StatusCreated, "event created", event)
}

// UpdateEvent applies the fields present in the body over the stored event.
// Only admins and the organizer who created the event may update it.
func (h *Handler) UpdateEvent(c *fiber.Ctx) error {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	current, err := h.Store.GetEvent(ctx, c.Params("id"))
	if err != nil {
		return h.storeError(c, err, "event")
	}

	id, _ := middleware.CurrentIdentity(c)
	if id.Role != model.RoleAdmin && current.OrganizerId != id.UserId {
		return errors.RaiseForbiddenError(c, "only the organizer of this event can update it")
	}

	updated := current
	if err := c.BodyParser(&updated); err != nil {
		return errors.RaiseBadRequestError(c, "could not parse event")
	}
	updated.Id = current.Id
	updated.OrganizerId = current.OrganizerId
	updated.Attendees = current.Attendees
	updated.CreatedAt = current.CreatedAt
	if err := validateEvent(updated); err != nil {
		return errors.RaiseBadRequestError(c, err.Error())
	}

	if err := h.Store.UpdateEvent(ctx, updated); err != nil {
		return h.storeError(c, err, "event")
	}

	event, err := h.Store.GetEvent(ctx, current.Id)
	if err != nil {
		return h.storeError(c, err, "event")
	}
	return respond(c, fiber.StatusOK, "event updated", event)
}

func (h *Handler) DeleteEvent(c *fiber.Ctx) error {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.Store.DeleteEvent(ctx, c.Params("id")); err != nil {
		return h.storeError(c, err, "event")
	}
	return respond(c, fiber.StatusOK, "event deleted", nil)
}
