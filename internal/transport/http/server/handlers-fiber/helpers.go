package handlers_fiber

import (
	"errors"
	"net/http"

	"project-tracker/internal/entities"
	"project-tracker/internal/transport/http/dto"
	"project-tracker/internal/transport/http/middleware"

	"github.com/gofiber/fiber/v2"
)

func writeError(c *fiber.Ctx, err error) error {
	status := http.StatusInternalServerError
	code := dto.CodeInternal
	msg := "internal error"

	switch {
	case errors.Is(err, entities.ErrActiveTaskExists):
		status = http.StatusConflict
		code = dto.CodeActiveTaskExists
		msg = "team member is already assigned to an active task"
	case errors.Is(err, entities.ErrAlreadyInTeam):
		status = http.StatusConflict
		code = dto.CodeAlreadyInTeam
		msg = "user is already a member of a team"
	case errors.Is(err, entities.ErrEmailTaken):
		status = http.StatusConflict
		code = dto.CodeEmailTaken
		msg = "email already registered"
	case errors.Is(err, entities.ErrStore):
	case errors.Is(err, entities.ErrAuthentication):
		status = http.StatusUnauthorized
		code = dto.CodeUnauthenticated
		msg = err.Error()
	case errors.Is(err, entities.ErrForbidden):
		status = http.StatusForbidden
		code = dto.CodeForbidden
		msg = err.Error()
	case errors.Is(err, entities.ErrNotFound):
		status = http.StatusNotFound
		code = dto.CodeNotFound
		msg = err.Error()
	case errors.Is(err, entities.ErrValidation):
		status = http.StatusBadRequest
		code = dto.CodeValidation
		msg = err.Error()
	case errors.Is(err, entities.ErrConflict):
		status = http.StatusConflict
		code = dto.CodeConflict
		msg = err.Error()
	}

	return c.Status(status).JSON(dto.NewError(code, msg))
}

// fail logs server-side failures and writes the error response.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	if !isClientError(err) {
		h.log.Errorw("request failed", "error", err, "method", c.Method(), "path", c.Path())
	} else {
		h.log.Infow(err.Error())
	}
	return writeError(c, err)
}

func isClientError(err error) bool {
	if errors.Is(err, entities.ErrStore) {
		return false
	}
	for _, category := range []error{
		entities.ErrAuthentication,
		entities.ErrForbidden,
		entities.ErrNotFound,
		entities.ErrValidation,
		entities.ErrConflict,
	} {
		if errors.Is(err, category) {
			return true
		}
	}
	return false
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(http.StatusBadRequest).JSON(dto.NewError(dto.CodeValidation, "invalid body"))
}

// caller returns the authenticated user id. Routes always install the auth middleware first.
func caller(c *fiber.Ctx) string {
	id, _ := middleware.Identity(c)
	return id.ID
}
