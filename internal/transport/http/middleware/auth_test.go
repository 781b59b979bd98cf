package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"project-tracker/internal/entities"
	"project-tracker/internal/transport/http/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

type staticVerifier map[string]entities.Identity

func (s staticVerifier) Verify(token string) (entities.Identity, error) {
	id, ok := s[token]
	if !ok {
		return entities.Identity{}, entities.ErrInvalidToken
	}
	return id, nil
}

func newApp() *fiber.App {
	v := staticVerifier{
		"mgr":    {ID: "m1", Role: entities.RoleManager, EmailDomain: "manager.com"},
		"member": {ID: "u1", Role: entities.RoleTeamMember, EmailDomain: "corp.io"},
	}
	app := fiber.New()
	app.Get("/any", RequireAuthenticated(v), func(c *fiber.Ctx) error {
		id, ok := Identity(c)
		if !ok {
			return c.SendStatus(http.StatusInternalServerError)
		}
		return c.SendString(id.ID)
	})
	app.Get("/managers", RequireAuthenticated(v), RequireRole(entities.RoleManager), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, path, header string) (*http.Response, dto.ErrorResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set(fiber.HeaderAuthorization, header)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var body dto.ErrorResponse
	if resp.StatusCode >= 400 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp, body
}

func TestRequireAuthenticated(t *testing.T) {
	app := newApp()

	resp, body := doRequest(t, app, "/any", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, dto.CodeUnauthenticated, body.Error.Code)
	require.Equal(t, entities.ErrMissingToken.Error(), body.Error.Message)

	resp, body = doRequest(t, app, "/any", "Token mgr")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, entities.ErrInvalidToken.Error(), body.Error.Message)

	resp, _ = doRequest(t, app, "/any", "Bearer nope")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doRequest(t, app, "/any", "Bearer member")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole(t *testing.T) {
	app := newApp()

	resp, body := doRequest(t, app, "/managers", "Bearer member")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, dto.CodeForbidden, body.Error.Code)

	resp, _ = doRequest(t, app, "/managers", "Bearer mgr")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestIdentityWithoutAuthentication(t *testing.T) {
	app := fiber.New()
	app.Get("/", RequireRole(entities.RoleManager), func(c *fiber.Ctx) error { return nil })

	resp, body := doRequest(t, app, "/", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, dto.CodeUnauthenticated, body.Error.Code)
}
