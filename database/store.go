package database

import (
	"context"
	"errors"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"eventease/model"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyRegistered = errors.New("already registered for this event")
	ErrSoldOut           = errors.New("not enough tickets left for this event")
	ErrDuplicateEmail    = errors.New("email already in use")
	ErrCapacityTooLow    = errors.New("capacity is below the tickets already booked")
)

// Store is the persistence boundary of the API. Implementations enforce the
// one-registration-per-user-per-event rule themselves; callers must not rely
// on a prior FindRegistration.
type Store interface {
	CreateUser(ctx context.Context, user *model.UserData) error
	GetUser(ctx context.Context, id string) (model.UserData, error)
	GetUserByEmail(ctx context.Context, email string) (model.UserData, error)
	ListUsers(ctx context.Context) ([]model.UserData, error)
	UpdateUserRole(ctx context.Context, id, role string) (model.UserData, error)
	DeleteUser(ctx context.Context, id string) error

	CreateEvent(ctx context.Context, event *model.Event) error
	GetEvent(ctx context.Context, id string) (model.Event, error)
	ListEvents(ctx context.Context, query model.EventQuery) ([]model.Event, int, error)
	// UpdateEvent returns ErrCapacityTooLow when event.Capacity is below the
	// attendees stored at the time of the write.
	UpdateEvent(ctx context.Context, event model.Event) error
	DeleteEvent(ctx context.Context, id string) error

	// CreateRegistration reserves reg.NumberOfTickets on the event and stores
	// the registration atomically. It returns ErrAlreadyRegistered when the
	// user already holds a registration for the event, ErrSoldOut when
	// capacity would be exceeded and ErrNotFound for an unknown event.
	CreateRegistration(ctx context.Context, reg *model.Registration) error
	GetRegistration(ctx context.Context, id string) (model.Registration, error)
	FindRegistration(ctx context.Context, userId, eventId string) (model.Registration, error)
	ListRegistrationsByUser(ctx context.Context, userId string) ([]model.Registration, error)
	ListRegistrationsByEvent(ctx context.Context, eventId string) ([]model.Registration, error)
	// DeleteRegistration removes the registration and releases its tickets.
	DeleteRegistration(ctx context.Context, id string) error

	CreateNotification(ctx context.Context, n *model.Notification) error
	ListNotifications(ctx context.Context, userId string) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, userId, id string) error
	MarkAllNotificationsRead(ctx context.Context, userId string) (int64, error)
	DeleteNotification(ctx context.Context, userId, id string) error

	CreateSubscriber(ctx context.Context, sub *model.Subscriber) error
	GetSubscriber(ctx context.Context, id string) (model.Subscriber, error)
	GetSubscriberByEmail(ctx context.Context, email string) (model.Subscriber, error)
	ListSubscribers(ctx context.Context) ([]model.Subscriber, error)
	UpdateSubscriber(ctx context.Context, sub model.Subscriber) error
	DeleteSubscriber(ctx context.Context, id string) error

	Stats(ctx context.Context) (model.Stats, error)
	Close(ctx context.Context) error
}

// NewId returns a fresh document id. Every store uses ObjectID hex strings so
// ids stay interchangeable between backends.
func NewId() string {
	return primitive.NewObjectID().Hex()
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// pageOffset returns the number of items before a 1-based page. ok is false
// when the offset does not fit in an int.
func pageOffset(page, limit int) (offset int, ok bool) {
	if page < 1 {
		page = 1
	}
	if limit > 0 && page-1 > math.MaxInt/limit {
		return 0, false
	}
	return (page - 1) * limit, true
}

// paginate applies 1-based page/limit to an already filtered slice.
func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	start, ok := pageOffset(page, limit)
	if !ok || start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
