package database

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventease/model"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := NewSQLStore(context.Background(), DialectSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(context.Background()) })
	return store
}

func createEvent(t *testing.T, store Store, title string, capacity int) model.Event {
	t.Helper()
	event := model.Event{Title: title, Category: "Tech", Location: "Pune", Price: 250, Capacity: capacity}
	require.NoError(t, store.CreateEvent(context.Background(), &event))
	return event
}

func registration(eventId, userId string, tickets int) *model.Registration {
	return &model.Registration{
		EventId:          eventId,
		UserId:           userId,
		Attendee:         model.Attendee{Name: "Asha Rao", Email: "asha@example.com", Phone: "9876543210"},
		NumberOfTickets:  tickets,
		TotalPrice:       float64(tickets) * 250,
		TicketType:       "general",
		PaymentMethod:    "card",
		PaymentReference: "tx-" + userId,
		PaymentSignature: "sig-" + userId,
	}
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := model.UserData{Name: "Asha", Email: "Asha@Example.com", HashedPassword: "hash", Role: model.RoleUser}
	require.NoError(t, store.CreateUser(ctx, &user))
	assert.NotEmpty(t, user.Id)

	dup := model.UserData{Name: "Other", Email: "asha@example.com", HashedPassword: "hash", Role: model.RoleUser}
	assert.ErrorIs(t, store.CreateUser(ctx, &dup), ErrDuplicateEmail)

	got, err := store.GetUserByEmail(ctx, "ASHA@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.Id, got.Id)
	assert.Equal(t, "hash", got.HashedPassword)

	updated, err := store.UpdateUserRole(ctx, user.Id, model.RoleOrganizer)
	require.NoError(t, err)
	assert.Equal(t, model.RoleOrganizer, updated.Role)

	_, err = store.UpdateUserRole(ctx, "missing", model.RoleAdmin)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.DeleteUser(ctx, user.Id))
	_, err = store.GetUser(ctx, user.Id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListEvents(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	titles := []string{"Go Workshop", "Jazz Night", "Rust workshop", "Food Fest"}
	for _, title := range titles {
		createEvent(t, store, title, 10)
	}

	events, total, err := store.ListEvents(ctx, model.EventQuery{})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Equal(t, "Food Fest", events[0].Title, "newest first")

	events, total, err = store.ListEvents(ctx, model.EventQuery{Search: "WORKSHOP"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "Rust workshop", events[0].Title)
	assert.Equal(t, "Go Workshop", events[1].Title)

	events, total, err = store.ListEvents(ctx, model.EventQuery{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, events, 1)
	assert.Equal(t, "Go Workshop", events[0].Title)

	_, total, err = store.ListEvents(ctx, model.EventQuery{Category: "tech"})
	require.NoError(t, err)
	assert.Equal(t, 4, total)

	events, _, err = store.ListEvents(ctx, model.EventQuery{Search: "opera"})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestUpdateEventKeepsAttendees(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	event := createEvent(t, store, "Go Workshop", 10)
	require.NoError(t, store.CreateRegistration(ctx, registration(event.Id, "u1", 3)))

	event.Title = "Advanced Go Workshop"
	event.Tags = []string{"golang", "backend"}
	require.NoError(t, store.UpdateEvent(ctx, event))

	got, err := store.GetEvent(ctx, event.Id)
	require.NoError(t, err)
	assert.Equal(t, "Advanced Go Workshop", got.Title)
	assert.Equal(t, []string{"golang", "backend"}, got.Tags)
	assert.Equal(t, 3, got.Attendees)

	assert.ErrorIs(t, store.UpdateEvent(ctx, model.Event{Id: "missing"}), ErrNotFound)
}

func TestUpdateEventCapacityGuard(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	event := createEvent(t, store, "Go Workshop", 10)
	snapshot, err := store.GetEvent(ctx, event.Id)
	require.NoError(t, err)

	require.NoError(t, store.CreateRegistration(ctx, registration(event.Id, "u1", 3)))
	require.NoError(t, store.CreateRegistration(ctx, registration(event.Id, "u2", 4)))

	snapshot.Capacity = 5
	assert.ErrorIs(t, store.UpdateEvent(ctx, snapshot), ErrCapacityTooLow)

	got, err := store.GetEvent(ctx, event.Id)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Capacity)
	assert.Equal(t, 7, got.Attendees)

	snapshot.Capacity = 7
	require.NoError(t, store.UpdateEvent(ctx, snapshot))
	assert.ErrorIs(t, store.CreateRegistration(ctx, registration(event.Id, "u3", 1)), ErrSoldOut)
}

func TestCreateRegistration(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	event := createEvent(t, store, "Go Workshop", 5)

	reg := registration(event.Id, "u1", 2)
	require.NoError(t, store.CreateRegistration(ctx, reg))
	assert.Equal(t, model.RegistrationConfirmed, reg.Status)

	stored, err := store.GetRegistration(ctx, reg.Id)
	require.NoError(t, err)
	assert.Equal(t, "tx-u1", stored.PaymentReference)
	assert.Equal(t, "sig-u1", stored.PaymentSignature)

	assert.ErrorIs(t, store.CreateRegistration(ctx, registration(event.Id, "u1", 1)), ErrAlreadyRegistered)
	assert.ErrorIs(t, store.CreateRegistration(ctx, registration(event.Id, "u2", 4)), ErrSoldOut)
	assert.ErrorIs(t, store.CreateRegistration(ctx, registration("missing", "u2", 1)), ErrNotFound)

	got, err := store.GetEvent(ctx, event.Id)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Attendees)

	found, err := store.FindRegistration(ctx, "u1", event.Id)
	require.NoError(t, err)
	assert.Equal(t, reg.Id, found.Id)
	assert.Equal(t, "9876543210", found.Attendee.Phone)

	_, err = store.FindRegistration(ctx, "u2", event.Id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDuplicateWinsOverSoldOut(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	event := createEvent(t, store, "Tiny Meetup", 1)

	require.NoError(t, store.CreateRegistration(ctx, registration(event.Id, "u1", 1)))
	assert.ErrorIs(t, store.CreateRegistration(ctx, registration(event.Id, "u1", 1)), ErrAlreadyRegistered)
}

// Both callers passed their own "not registered yet" check; the store must
// still let exactly one of them through.
func TestConcurrentDuplicateRegistration(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	event := createEvent(t, store, "Go Workshop", 100)

	const attempts = 20
	var success, duplicate, other int32
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			err := store.CreateRegistration(ctx, registration(event.Id, "same-user", 1))
			switch {
			case err == nil:
				atomic.AddInt32(&success, 1)
			case errors.Is(err, ErrAlreadyRegistered):
				atomic.AddInt32(&duplicate, 1)
			default:
				t.Logf("unexpected error: %v", err)
				atomic.AddInt32(&other, 1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, success)
	assert.EqualValues(t, attempts-1, duplicate)
	assert.EqualValues(t, 0, other)

	got, err := store.GetEvent(ctx, event.Id)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Attendees)
}

func TestConcurrentCapacity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	event := createEvent(t, store, "Big GopherCon", 5)

	const attempts = 50
	var success, soldOut int32
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func(i int) {
			defer wg.Done()
			err := store.CreateRegistration(ctx, registration(event.Id, fmt.Sprintf("user-%d", i), 1))
			if err == nil {
				atomic.AddInt32(&success, 1)
			} else if errors.Is(err, ErrSoldOut) {
				atomic.AddInt32(&soldOut, 1)
			}
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 5, success)
	assert.EqualValues(t, attempts-5, soldOut)

	regs, err := store.ListRegistrationsByEvent(ctx, event.Id)
	require.NoError(t, err)
	assert.Len(t, regs, 5)
}

func TestDeleteRegistrationReleasesTickets(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	event := createEvent(t, store, "Go Workshop", 5)

	reg := registration(event.Id, "u1", 3)
	require.NoError(t, store.CreateRegistration(ctx, reg))
	require.NoError(t, store.DeleteRegistration(ctx, reg.Id))
	assert.ErrorIs(t, store.DeleteRegistration(ctx, reg.Id), ErrNotFound)

	got, err := store.GetEvent(ctx, event.Id)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Attendees)

	// the same user may register again once the old registration is gone
	require.NoError(t, store.CreateRegistration(ctx, registration(event.Id, "u1", 1)))
}

func TestNotifications(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		n := model.Notification{UserId: "u1", Subject: fmt.Sprintf("s%d", i), Message: "m", Type: "info", Sender: "system"}
		require.NoError(t, store.CreateNotification(ctx, &n))
	}
	other := model.Notification{UserId: "u2", Subject: "private", Type: "info", Sender: "system"}
	require.NoError(t, store.CreateNotification(ctx, &other))

	list, err := store.ListNotifications(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "s2", list[0].Subject)

	require.NoError(t, store.MarkNotificationRead(ctx, "u1", list[0].Id))
	assert.ErrorIs(t, store.MarkNotificationRead(ctx, "u1", other.Id), ErrNotFound, "cannot touch another user's notification")

	n, err := store.MarkAllNotificationsRead(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	list, err = store.ListNotifications(ctx, "u1")
	require.NoError(t, err)
	for _, item := range list {
		assert.True(t, item.Read)
	}

	assert.ErrorIs(t, store.DeleteNotification(ctx, "u1", other.Id), ErrNotFound)
	require.NoError(t, store.DeleteNotification(ctx, "u2", other.Id))
}

func TestSubscribersAndStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sub := model.Subscriber{Email: "News@Example.com", IsActive: true, Preferences: model.Preferences{NewEvents: true}}
	require.NoError(t, store.CreateSubscriber(ctx, &sub))
	assert.ErrorIs(t, store.CreateSubscriber(ctx, &model.Subscriber{Email: "news@example.com"}), ErrDuplicateEmail)

	sub.IsActive = false
	sub.Preferences.Promotions = true
	require.NoError(t, store.UpdateSubscriber(ctx, sub))
	got, err := store.GetSubscriberByEmail(ctx, "news@example.com")
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.True(t, got.Preferences.Promotions)
	assert.True(t, got.Preferences.NewEvents)

	event := createEvent(t, store, "Go Workshop", 10)
	require.NoError(t, store.CreateRegistration(ctx, registration(event.Id, "u1", 2)))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Events)
	assert.EqualValues(t, 1, stats.Subscribers)
	assert.EqualValues(t, 1, stats.Registrations)
	assert.EqualValues(t, 2, stats.TicketsSold)
	assert.InDelta(t, 500.0, stats.Revenue, 0.001)

	require.NoError(t, store.DeleteSubscriber(ctx, sub.Id))
	assert.ErrorIs(t, store.DeleteSubscriber(ctx, sub.Id), ErrNotFound)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, items, paginate(items, 0, 0))
	assert.Equal(t, []int{1, 2}, paginate(items, 1, 2))
	assert.Equal(t, []int{5}, paginate(items, 3, 2))
	assert.Equal(t, []int{}, paginate(items, 4, 2))
	assert.Equal(t, []int{}, paginate(items, math.MaxInt, 2))
	assert.Equal(t, []int{}, paginate(items, math.MaxInt/4+1, 4))

	_, ok := pageOffset(math.MaxInt, 1)
	assert.True(t, ok)
	_, ok = pageOffset(math.MaxInt/4+1, 4)
	assert.False(t, ok)
}

func TestRebind(t *testing.T) {
	pg := &SQLStore{dialect: DialectPostgres}
	assert.Equal(t, "SELECT 1 WHERE a = $1 AND b = $2", pg.rebind("SELECT 1 WHERE a = ? AND b = ?"))
	lite := &SQLStore{dialect: DialectSQLite}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}
