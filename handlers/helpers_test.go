package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"eventease/database"
	"eventease/errors"
	"eventease/export"
	"eventease/handlers"
	"eventease/middleware"
	"eventease/model"
	"eventease/notify"
	"eventease/payments"
	"eventease/router"
)

const testSigningKey = "test-signing-key"

type response = model.Envelope[json.RawMessage]

type testServer struct {
	t       *testing.T
	app     *fiber.App
	store   database.Store
	handler *handlers.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := database.NewSQLStore(context.Background(), database.DialectSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	pay, err := payments.NewProvider("stub", "secret", 0)
	require.NoError(t, err)

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	h := &handlers.Handler{
		Store:      store,
		Payments:   pay,
		Notifier:   notify.Log{Logger: logger},
		Logger:     logger,
		SigningKey: testSigningKey,
		TokenTTL:   time.Hour,
		Timeout:    5 * time.Second,
	}

	app := fiber.New(fiber.Config{ErrorHandler: errors.Handler})
	router.SetupRoutes(app, h)

	return &testServer{t: t, app: app, store: store, handler: h}
}

func (s *testServer) call(method, route, token string, body interface{}) (int, response) {
	s.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, route, reader)
	require.NoError(s.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer res.Body.Close()

	var out response
	raw, err := io.ReadAll(res.Body)
	require.NoError(s.t, err)
	if len(raw) > 0 {
		require.NoError(s.t, json.Unmarshal(raw, &out), string(raw))
	}
	return res.StatusCode, out
}

// userWithRole stores a user directly and returns a token for it.
func (s *testServer) userWithRole(name, role string) (string, model.UserData) {
	s.t.Helper()

	user := model.UserData{Name: name, Email: name + "@example.com", HashedPassword: "x", Role: role}
	require.NoError(s.t, s.store.CreateUser(context.Background(), &user))
	token, err := middleware.IssueToken(user, testSigningKey, time.Hour)
	require.NoError(s.t, err)
	return token, user
}

func (s *testServer) event(organizer model.UserData, title string, price float64, capacity int) model.Event {
	s.t.Helper()

	event := model.Event{
		Title:       title,
		Category:    "Technology",
		Date:        "2030-01-15",
		Location:    "Pune",
		Price:       price,
		Capacity:    capacity,
		OrganizerId: organizer.Id,
	}
	require.NoError(s.t, s.store.CreateEvent(context.Background(), &event))
	return event
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func attendeeRequest(eventId string, tickets int) model.RegistrationRequest {
	return model.RegistrationRequest{
		EventId:         eventId,
		Attendee:        model.Attendee{Name: "Asha Rao", Email: "asha@example.com", Phone: "(987) 654-3210"},
		NumberOfTickets: tickets,
		PaymentMethod:   "upi",
	}
}

type fakeExporter struct {
	regs []model.Registration
}

func (f *fakeExporter) ExportRegistrations(_ context.Context, _ model.Event, regs []model.Registration) (int, error) {
	f.regs = regs
	return len(regs), nil
}

var _ export.Exporter = (*fakeExporter)(nil)
