package middleware

import (
	"errors"

	"project-tracker/internal/auth"
	"project-tracker/internal/entities"
	"project-tracker/internal/transport/http/dto"

	"github.com/gofiber/fiber/v2"
)

const identityKey = "identity"

// RequireAuthenticated verifies the bearer token and stores the caller identity in the request locals.
func RequireAuthenticated(v auth.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := auth.Authenticate(v, c.Get(fiber.HeaderAuthorization))
		if err != nil {
			msg := entities.ErrInvalidToken.Error()
			if errors.Is(err, entities.ErrMissingToken) {
				msg = err.Error()
			}
			return c.Status(fiber.StatusUnauthorized).JSON(dto.NewError(dto.CodeUnauthenticated, msg))
		}
		c.Locals(identityKey, id)
		return c.Next()
	}
}

// RequireRole rejects callers whose role is not among roles. It must run after RequireAuthenticated.
func RequireRole(roles ...entities.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := Identity(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.NewError(dto.CodeUnauthenticated, entities.ErrMissingToken.Error()))
		}
		if err := auth.RequireAnyRole(id, roles...); err != nil {
			return c.Status(fiber.StatusForbidden).JSON(dto.NewError(dto.CodeForbidden, err.Error()))
		}
		return c.Next()
	}
}

// Identity returns the authenticated caller of the request.
func Identity(c *fiber.Ctx) (entities.Identity, bool) {
	id, ok := c.Locals(identityKey).(entities.Identity)
	return id, ok
}
