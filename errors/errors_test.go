package errors

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: Handler})
	app.Use(recover.New())
	app.Get("/panic", func(c *fiber.Ctx) error {
		var items []int
		return c.JSON(items[len(items)-4:])
	})
	app.Get("/teapot", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return io.ErrUnexpectedEOF
	})

	tests := []struct {
		description  string
		route        string
		expectedCode int
		expectedData string
	}{
		{"recovered panic is hidden", "/panic", 500, "internal error"},
		{"fiber error keeps its message", "/teapot", 418, "short and stout"},
		{"unknown route", "/missing", 404, "Cannot GET /missing"},
		{"plain error is hidden", "/plain", 500, "internal error"},
	}

	for _, test := range tests {
		resp, err := app.Test(httptest.NewRequest("GET", test.route, nil), -1)
		require.NoErrorf(t, err, test.description)

		var body struct {
			Status  string `json:"status"`
			Message string `json:"message"`
			Data    string `json:"data"`
		}
		require.NoErrorf(t, json.NewDecoder(resp.Body).Decode(&body), test.description)
		assert.Equalf(t, test.expectedCode, resp.StatusCode, test.description)
		assert.Equalf(t, "error", body.Status, test.description)
		assert.Equalf(t, test.expectedData, body.Data, test.description)
		assert.NotContainsf(t, body.Data, "runtime error", test.description)
	}
}
