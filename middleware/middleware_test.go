package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"devlaunch/logger"
	"devlaunch/models"
	"devlaunch/services/learning"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memBlacklist map[string]bool

func (m memBlacklist) Revoke(_ context.Context, token string, _ time.Time) error {
	m[token] = true
	return nil
}

func (m memBlacklist) IsRevoked(_ context.Context, token string) (bool, error) {
	return m[token], nil
}

func newApp(revoked memBlacklist) *fiber.App {
	app := fiber.New()
	auth := JWTMiddleware("secret", revoked, logger.Nop())
	app.Get("/me", auth, func(c *fiber.Ctx) error {
		return c.SendString(fmt.Sprintf("%d:%s", UserID(c), Role(c)))
	})
	app.Get("/admin", auth, AdminOnly(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func get(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestJWTMiddleware(t *testing.T) {
	revoked := memBlacklist{}
	app := newApp(revoked)

	userToken, exp, err := GenerateJWT("secret", 7, models.RoleUser, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)
	adminToken, _, err := GenerateJWT("secret", 1, models.RoleAdmin, time.Hour)
	require.NoError(t, err)
	expired, _, err := GenerateJWT("secret", 7, models.RoleUser, -time.Minute)
	require.NoError(t, err)
	forged, _, err := GenerateJWT("other", 7, models.RoleAdmin, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/me", ""))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/me", expired))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/me", forged))
	assert.Equal(t, fiber.StatusOK, get(t, app, "/me", userToken))
	assert.Equal(t, fiber.StatusForbidden, get(t, app, "/admin", userToken))
	assert.Equal(t, fiber.StatusNoContent, get(t, app, "/admin", adminToken))

	revoked[userToken] = true
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/me", userToken))
}

func TestErrorResponseStatus(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{fmt.Errorf("%w: course not found", learning.ErrNotFound), fiber.StatusNotFound},
		{fmt.Errorf("%w: course is not published yet", learning.ErrForbidden), fiber.StatusForbidden},
		{fmt.Errorf("%w: already enrolled", learning.ErrConflict), fiber.StatusConflict},
		{fmt.Errorf("%w: course has no videos", learning.ErrInvalidState), fiber.StatusUnprocessableEntity},
		{fmt.Errorf("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		app := fiber.New()
		app.Get("/", func(c *fiber.Ctx) error { return ErrorResponse(c, logger.Nop(), tt.err) })
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, tt.wantStatus, resp.StatusCode, tt.err.Error())
	}
	assert.Equal(t, "Course not found", clientMessage(fmt.Errorf("%w: course not found", learning.ErrNotFound)))
}

func TestValidationErrorsUseJSONNames(t *testing.T) {
	req := struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
	}{Email: "nope", Password: "short"}
	errs := ValidationErrors(Validate.Struct(req))
	assert.Equal(t, "Invalid email!", errs["email"])
	assert.Equal(t, "password must be at least 8 characters long!", errs["password"])
}
