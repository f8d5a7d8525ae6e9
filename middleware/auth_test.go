package middleware

import (
	"context"
	stderrors "errors"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventease/database"
	"eventease/model"
)

const signingKey = "middleware-test-key"

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]model.UserData
	err   error
}

func (m *memoryUsers) GetUser(_ context.Context, id string) (model.UserData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.UserData{}, m.err
	}
	user, ok := m.users[id]
	if !ok {
		return model.UserData{}, database.ErrNotFound
	}
	return user, nil
}

func (m *memoryUsers) set(user model.UserData) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.Id] = user
}

func (m *memoryUsers) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

func newApp(users Users) *fiber.App {
	app := fiber.New()
	app.Get("/me", Authorize(signingKey, users), func(c *fiber.Ctx) error {
		id, _ := CurrentIdentity(c)
		return c.SendString(id.Role + ":" + id.Name)
	})
	app.Get("/admin", Authorize(signingKey, users), RequireRole(model.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func get(t *testing.T, app *fiber.App, route, token string) int {
	t.Helper()
	req := httptest.NewRequest("GET", route, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuthorizeUsesStoredAccount(t *testing.T) {
	admin := model.UserData{Id: "u1", Name: "Meera", Email: "meera@example.com", Role: model.RoleAdmin}
	users := &memoryUsers{users: map[string]model.UserData{admin.Id: admin}}
	app := newApp(users)

	token, err := IssueToken(admin, signingKey, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 200, get(t, app, "/admin", token))
	assert.Equal(t, 400, get(t, app, "/admin", ""))
	assert.Equal(t, 401, get(t, app, "/admin", token+"x"))

	demoted := admin
	demoted.Role = model.RoleUser
	demoted.Name = "Meera R"
	users.set(demoted)
	assert.Equal(t, 403, get(t, app, "/admin", token))

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "user:Meera R", string(body))

	users.remove(admin.Id)
	assert.Equal(t, 401, get(t, app, "/me", token))
	assert.Equal(t, 401, get(t, app, "/admin", token))
}

func TestAuthorizeStoreFailure(t *testing.T) {
	user := model.UserData{Id: "u2", Name: "Ravi", Email: "ravi@example.com", Role: model.RoleUser}
	users := &memoryUsers{users: map[string]model.UserData{}, err: stderrors.New("connection reset")}
	app := newApp(users)

	token, err := IssueToken(user, signingKey, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 503, get(t, app, "/me", token))
}

func TestAuthorizeRejectsTokenWithoutSubject(t *testing.T) {
	users := &memoryUsers{users: map[string]model.UserData{}}
	app := newApp(users)

	token, err := IssueToken(model.UserData{Name: "ghost", Role: model.RoleAdmin}, signingKey, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 401, get(t, app, "/admin", token))
}
