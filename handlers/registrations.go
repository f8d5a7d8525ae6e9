package handlers

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"eventease/database"
	"eventease/errors"
	"eventease/middleware"
	"eventease/model"
	"eventease/notify"
	"eventease/payments"
	"eventease/registration"
)

const (
	defaultTicketType = "general"
	freePayment       = "free"
	missingEventTitle = "Event no longer available"
)

// Register books tickets for the caller. The store decides duplicates and
// capacity; the lookups before the charge only avoid charging for a
// registration that is bound to fail.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req model.RegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.RaiseBadRequestError(c, "could not parse registration")
	}
	req.EventId = strings.TrimSpace(req.EventId)
	if req.EventId == "" {
		return errors.RaiseBadRequestError(c, "eventId is required")
	}
	req.Attendee = registration.NormalizeAttendee(req.Attendee)
	if err := registration.ValidateAttendee(req.Attendee, req.NumberOfTickets); err != nil {
		return errors.RaiseBadRequestError(c, err.Error())
	}
	if req.TicketType = strings.TrimSpace(req.TicketType); req.TicketType == "" {
		req.TicketType = defaultTicketType
	}
	req.PaymentMethod = strings.ToLower(strings.TrimSpace(req.PaymentMethod))

	id, _ := middleware.CurrentIdentity(c)

	ctx, cancel := h.requestContext(c)
	defer cancel()

	event, err := h.Store.GetEvent(ctx, req.EventId)
	if err != nil {
		return h.storeError(c, err, "event")
	}

	_, err = h.Store.FindRegistration(ctx, id.UserId, event.Id)
	switch {
	case err == nil:
		return h.storeError(c, database.ErrAlreadyRegistered, "registration")
	case !stderrors.Is(err, database.ErrNotFound):
		return h.storeError(c, err, "registration")
	}
	if event.Remaining() < req.NumberOfTickets {
		return h.storeError(c, database.ErrSoldOut, "event")
	}

	reg := model.Registration{
		EventId:         event.Id,
		UserId:          id.UserId,
		Attendee:        req.Attendee,
		NumberOfTickets: req.NumberOfTickets,
		TotalPrice:      event.Price * float64(req.NumberOfTickets),
		TicketType:      req.TicketType,
		PaymentMethod:   req.PaymentMethod,
		Status:          model.RegistrationConfirmed,
	}

	if reg.TotalPrice > 0 {
		if reg.PaymentMethod == "" {
			return errors.RaiseBadRequestError(c, "paymentMethod is required")
		}
		receipt, err := h.Payments.Charge(ctx, payments.Charge{
			Reference: event.Id + ":" + id.UserId,
			Amount:    reg.TotalPrice,
			Method:    reg.PaymentMethod,
		})
		switch {
		case stderrors.Is(err, payments.ErrUnsupportedMethod):
			return errors.RaiseBadRequestError(c, err.Error())
		case stderrors.Is(err, payments.ErrDeclined):
			return errors.RaiseError(c, fiber.StatusPaymentRequired, "payment declined", "")
		case err != nil:
			h.log().Error("payment failed", "provider", h.Payments.Name(), "event", event.Id, "err", err)
			return errors.RaiseError(c, fiber.StatusBadGateway, "payment failed", err.Error())
		}
		if !h.Payments.Verify(receipt) {
			h.log().Error("payment receipt signature mismatch",
				"provider", h.Payments.Name(), "transaction", receipt.TransactionId, "event", event.Id)
			return errors.RaiseError(c, fiber.StatusBadGateway, "payment failed", "receipt could not be verified")
		}
		reg.PaymentReference = receipt.TransactionId
		reg.PaymentSignature = receipt.Signature
	} else if reg.PaymentMethod == "" {
		reg.PaymentMethod = freePayment
	}

	if err := h.Store.CreateRegistration(ctx, &reg); err != nil {
		if reg.PaymentReference != "" {
			h.log().Warn("registration rejected after payment",
				"transaction", reg.PaymentReference, "event", event.Id, "user", id.UserId, "err", err)
		}
		return h.storeError(c, err, "event")
	}

	h.log().Info("registration created", "registration", reg.Id, "event", event.Id, "tickets", reg.NumberOfTickets)

	note := model.Notification{
		UserId:  id.UserId,
		Subject: "Registration confirmed",
		Message: fmt.Sprintf("You are registered for %s on %s with %d ticket(s).", event.Title, event.Date, reg.NumberOfTickets),
		Type:    "registration",
		Sender:  "system",
	}
	if err := h.Store.CreateNotification(ctx, &note); err != nil {
		h.log().Warn("create notification", "user", id.UserId, "err", err)
	}
	if err := h.Notifier.Notify(ctx, notify.RegistrationMessage(event, reg)); err != nil {
		h.log().Warn("notify registration", "registration", reg.Id, "err", err)
	}

	return respond(c, fiber.StatusCreated, "registration successful", reg)
}

func (h *Handler) CheckRegistration(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)

	ctx, cancel := h.requestContext(c)
	defer cancel()

	reg, err := h.Store.FindRegistration(ctx, id.UserId, c.Params("eventId"))
	if stderrors.Is(err, database.ErrNotFound) {
		return respond(c, fiber.StatusOK, "not registered", model.RegistrationCheck{})
	}
	if err != nil {
		return h.storeError(c, err, "registration")
	}
	return respond(c, fiber.StatusOK, "registered", model.RegistrationCheck{IsRegistered: true, Registration: &reg})
}

func (h *Handler) MyRegistrations(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)

	ctx, cancel := h.requestContext(c)
	defer cancel()

	regs, err := h.Store.ListRegistrationsByUser(ctx, id.UserId)
	if err != nil {
		return h.storeError(c, err, "registrations")
	}

	out := make([]model.RegistrationWithEvent, 0, len(regs))
	for _, reg := range regs {
		item := model.RegistrationWithEvent{Registration: reg, EventTitle: missingEventTitle}
		event, err := h.Store.GetEvent(ctx, reg.EventId)
		switch {
		case err == nil:
			item.Event = &event
			item.EventTitle = event.Title
		case !stderrors.Is(err, database.ErrNotFound):
			return h.storeError(c, err, "event")
		}
		out = append(out, item)
	}
	return respondList(c, "registrations", out, len(out))
}

// CancelRegistration deletes a registration of the caller, or any
// registration when the caller is an admin, and releases its tickets.
func (h *Handler) CancelRegistration(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)

	ctx, cancel := h.requestContext(c)
	defer cancel()

	reg, err := h.Store.GetRegistration(ctx, c.Params("id"))
	if err != nil {
		return h.storeError(c, err, "registration")
	}
	if reg.UserId != id.UserId && id.Role != model.RoleAdmin {
		return errors.RaiseForbiddenError(c, "registration belongs to another user")
	}

	if err := h.Store.DeleteRegistration(ctx, reg.Id); err != nil {
		return h.storeError(c, err, "registration")
	}

	note := model.Notification{
		UserId:  reg.UserId,
		Subject: "Registration cancelled",
		Message: fmt.Sprintf("Your registration %s was cancelled.", reg.Id),
		Type:    "registration",
		Sender:  "system",
	}
	if err := h.Store.CreateNotification(ctx, &note); err != nil {
		h.log().Warn("create notification", "user", reg.UserId, "err", err)
	}

	return respond(c, fiber.StatusOK, "registration cancelled", nil)
}

// EventRegistrations lists the registrations of an event for admins and for
// the organizer who owns it.
func (h *Handler) EventRegistrations(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)

	ctx, cancel := h.requestContext(c)
	defer cancel()

	event, err := h.Store.GetEvent(ctx, c.Params("eventId"))
	if err != nil {
		return h.storeError(c, err, "event")
	}
	if id.Role != model.RoleAdmin && event.OrganizerId != id.UserId {
		return errors.RaiseForbiddenError(c, "only the organizer of this event can list its registrations")
	}

	regs, err := h.Store.ListRegistrationsByEvent(ctx, event.Id)
	if err != nil {
		return h.storeError(c, err, "registrations")
	}
	return respondList(c, "registrations", regs, len(regs))
}
