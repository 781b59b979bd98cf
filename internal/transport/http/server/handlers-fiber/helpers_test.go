package handlers_fiber

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"project-tracker/internal/entities"
	"project-tracker/internal/transport/http/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorActiveTaskExists(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return writeError(c, entities.ErrActiveTaskExists)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, dto.CodeActiveTaskExists, body.Error.Code)
	require.Equal(t, "team member is already assigned to an active task", body.Error.Message)
}

func TestWriteErrorStoreFailureHidesDetails(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return writeError(c, fmt.Errorf("%w: dial tcp 10.0.0.1:5432: refused", entities.ErrStore))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, dto.CodeInternal, body.Error.Code)
	require.Equal(t, "internal error", body.Error.Message)
}

func TestWriteErrorCategories(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
	}{
		{name: "authentication", err: entities.ErrInvalidCredentials, status: http.StatusUnauthorized, code: dto.CodeUnauthenticated},
		{name: "forbidden", err: entities.ErrNotOwner, status: http.StatusForbidden, code: dto.CodeForbidden},
		{name: "not_found", err: fmt.Errorf("%w: t1", entities.ErrTaskNotFound), status: http.StatusNotFound, code: dto.CodeNotFound},
		{name: "validation", err: entities.ErrDomainRoleMismatch, status: http.StatusBadRequest, code: dto.CodeValidation},
		{name: "already_in_team", err: entities.ErrAlreadyInTeam, status: http.StatusConflict, code: dto.CodeAlreadyInTeam},
		{name: "email_taken", err: entities.ErrEmailTaken, status: http.StatusConflict, code: dto.CodeEmailTaken},
		{name: "conflict", err: fmt.Errorf("%w: duplicate", entities.ErrConflict), status: http.StatusConflict, code: dto.CodeConflict},
		{name: "unknown", err: errors.New("boom"), status: http.StatusInternalServerError, code: dto.CodeInternal},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return writeError(c, tt.err)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			require.Equal(t, tt.status, resp.StatusCode)

			var body dto.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			require.Equal(t, tt.code, body.Error.Code)
			require.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestIsClientError(t *testing.T) {
	require.True(t, isClientError(entities.ErrNotOwner))
	require.False(t, isClientError(fmt.Errorf("%w: timeout", entities.ErrStore)))
	require.False(t, isClientError(errors.New("boom")))
}
