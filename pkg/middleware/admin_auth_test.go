package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/nestline/nestline/pkg/middleware"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminApp(token string) *fiber.App {
	app := fiber.New()
	mw := middleware.NewAdminAuthMiddleware(logrus.New(), token)
	app.Get("/api/admin/blacklist", mw.Middleware(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func adminRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, "/api/admin/blacklist", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestAdminAuthMiddleware_DisabledWithoutSecret(t *testing.T) {
	app := newAdminApp("")
	resp := adminRequest(t, app, "Bearer anything")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAdminAuthMiddleware_MissingToken(t *testing.T) {
	app := newAdminApp("s3cret")
	resp := adminRequest(t, app, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminAuthMiddleware_MalformedHeader(t *testing.T) {
	app := newAdminApp("s3cret")
	resp := adminRequest(t, app, "Token s3cret")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminAuthMiddleware_WrongToken(t *testing.T) {
	app := newAdminApp("s3cret")
	resp := adminRequest(t, app, "Bearer nope")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminAuthMiddleware_ValidToken(t *testing.T) {
	app := newAdminApp("s3cret")
	resp := adminRequest(t, app, "Bearer s3cret")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
