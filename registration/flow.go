// Package registration holds the ticket registration flow shared by the API
// and its clients: attendee validation, the duplicate-registration guard and
// the booking state machine.
package registration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventease/model"
)

type State int

const (
	CollectingDetails State = iota
	AwaitingPayment
	Submitting
	Success
	AlreadyRegistered
	Failed
)

func (s State) String() string {
	switch s {
	case CollectingDetails:
		return "collecting-details"
	case AwaitingPayment:
		return "awaiting-payment"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case AlreadyRegistered:
		return "already-registered"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

const SuccessRedirectDelay = 2 * time.Second

var (
	ErrDuplicateRegistration = errors.New("already registered for this event")
	ErrInvalidTransition     = errors.New("invalid registration flow transition")
)

// Backend is what the flow needs from the API.
type Backend interface {
	CheckRegistration(ctx context.Context, eventId string) (bool, error)
	Register(ctx context.Context, req model.RegistrationRequest) (model.Registration, error)
}

type Details struct {
	Attendee        model.Attendee
	NumberOfTickets int
	TicketType      string
}

// IsDuplicate reports whether err is the backend rejecting a second
// registration for the same event.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrDuplicateRegistration) ||
		strings.Contains(strings.ToLower(err.Error()), "already registered")
}

// Flow walks one user through registering for one event. The pre-checks are
// advisory; the API's own uniqueness check is what ends a racing second
// attempt in AlreadyRegistered. A Flow is not safe for concurrent use.
type Flow struct {
	eventId      string
	backend      Backend
	state        State
	details      Details
	registration *model.Registration
	lastErr      error
}

func NewFlow(eventId string, backend Backend) *Flow {
	return &Flow{eventId: eventId, backend: backend, state: CollectingDetails}
}

func (f *Flow) State() State                       { return f.state }
func (f *Flow) Details() Details                   { return f.details }
func (f *Flow) Registration() *model.Registration { return f.registration }

// LastError is the inline error of the most recent failed step, if any.
func (f *Flow) LastError() error { return f.lastErr }

func (f *Flow) Terminal() bool {
	return f.state == Success || f.state == AlreadyRegistered
}

// RedirectAfter is how long to show the terminal screen before moving to the
// registrations list.
func (f *Flow) RedirectAfter() time.Duration {
	if f.state == Success {
		return SuccessRedirectDelay
	}
	return 0
}

// Start runs the entry guard. A failed check is reported but leaves the flow
// usable in CollectingDetails.
func (f *Flow) Start(ctx context.Context) (State, error) {
	if f.state != CollectingDetails {
		return f.state, ErrInvalidTransition
	}
	registered, err := f.backend.CheckRegistration(ctx, f.eventId)
	if err != nil {
		f.lastErr = err
		return f.state, fmt.Errorf("check registration: %w", err)
	}
	if registered {
		f.state = AlreadyRegistered
	}
	return f.state, nil
}

// SubmitDetails validates the attendee form and moves on to payment.
func (f *Flow) SubmitDetails(d Details) error {
	if f.state != CollectingDetails {
		return ErrInvalidTransition
	}
	if err := ValidateAttendee(d.Attendee, d.NumberOfTickets); err != nil {
		f.lastErr = err
		return err
	}

	d.Attendee = NormalizeAttendee(d.Attendee)
	if d.TicketType == "" {
		d.TicketType = "general"
	}
	f.details = d
	f.lastErr = nil
	f.state = AwaitingPayment
	return nil
}

// Back returns from the payment step to edit the details.
func (f *Flow) Back() error {
	if f.state != AwaitingPayment {
		return ErrInvalidTransition
	}
	f.state = CollectingDetails
	return nil
}

// ConfirmPayment re-runs the guard and submits the registration. It returns
// the outcome: Success, AlreadyRegistered, or Failed. After Failed the flow is
// back in AwaitingPayment and may be confirmed again.
func (f *Flow) ConfirmPayment(ctx context.Context, method string) (State, error) {
	if f.state != AwaitingPayment {
		return f.state, ErrInvalidTransition
	}
	if strings.TrimSpace(method) == "" {
		err := &ValidationError{Fields: map[string]string{"paymentMethod": "choose a payment method"}}
		f.lastErr = err
		return f.state, err
	}
	f.state = Submitting

	// A failing re-check does not block submission; the API decides.
	if registered, err := f.backend.CheckRegistration(ctx, f.eventId); err == nil && registered {
		f.state = AlreadyRegistered
		return f.state, nil
	}

	reg, err := f.backend.Register(ctx, model.RegistrationRequest{
		EventId:         f.eventId,
		Attendee:        f.details.Attendee,
		NumberOfTickets: f.details.NumberOfTickets,
		TicketType:      f.details.TicketType,
		PaymentMethod:   method,
	})
	switch {
	case err == nil:
		f.registration = &reg
		f.lastErr = nil
		f.state = Success
		return f.state, nil
	case IsDuplicate(err):
		f.lastErr = nil
		f.state = AlreadyRegistered
		return f.state, nil
	default:
		f.lastErr = err
		f.state = AwaitingPayment
		return Failed, err
	}
}
