package handlers_fiber

import (
	"net/http"

	"project-tracker/internal/entities"
	"project-tracker/internal/mapper"
	"project-tracker/internal/transport/http/dto"

	"github.com/gofiber/fiber/v2"
)

// Register creates an account with the role given in the body.
func (h *Handler) Register(c *fiber.Ctx) error {
	return h.register(c, "")
}

// RegisterManager creates a manager account.
func (h *Handler) RegisterManager(c *fiber.Ctx) error {
	return h.register(c, entities.RoleManager)
}

// RegisterTeamMember creates a team member account.
func (h *Handler) RegisterTeamMember(c *fiber.Ctx) error {
	return h.register(c, entities.RoleTeamMember)
}

func (h *Handler) register(c *fiber.Ctx, role entities.Role) error {
	var body dto.RegisterRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	in := mapper.FromRegisterRequest(body)

	var (
		user *entities.User
		err  error
	)
	switch role {
	case entities.RoleManager:
		user, err = h.uc.RegisterManager(c.Context(), in)
	case entities.RoleTeamMember:
		user, err = h.uc.RegisterTeamMember(c.Context(), in)
	default:
		user, err = h.uc.RegisterUser(c.Context(), in)
	}
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(mapper.ToUserResponse(*user))
}

// Login issues a session token for any role.
func (h *Handler) Login(c *fiber.Ctx) error {
	return h.login(c, "")
}

// LoginManager issues a session token for managers only.
func (h *Handler) LoginManager(c *fiber.Ctx) error {
	return h.login(c, entities.RoleManager)
}

// LoginTeamMember issues a session token for team members only.
func (h *Handler) LoginTeamMember(c *fiber.Ctx) error {
	return h.login(c, entities.RoleTeamMember)
}

func (h *Handler) login(c *fiber.Ctx, role entities.Role) error {
	var body dto.LoginRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	session, err := h.uc.Login(c.Context(), body.Email, body.Password, role)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToSessionResponse(*session))
}

// GetProfile returns the caller's account.
func (h *Handler) GetProfile(c *fiber.Ctx) error {
	user, err := h.uc.Profile(c.Context(), caller(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToUserResponse(*user))
}

// UpdateProfile edits the caller's own account.
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	return h.updateUser(c, caller(c))
}

// UpdateUser edits another account. Managers only.
func (h *Handler) UpdateUser(c *fiber.Ctx) error {
	return h.updateUser(c, c.Params("id"))
}

func (h *Handler) updateUser(c *fiber.Ctx, targetID string) error {
	var body dto.UpdateProfileRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	user, err := h.uc.UpdateProfile(c.Context(), caller(c), targetID, mapper.FromUpdateProfileRequest(body))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToUserResponse(*user))
}

// ListUsers returns accounts, optionally filtered by ?role=.
func (h *Handler) ListUsers(c *fiber.Ctx) error {
	users, err := h.uc.ListUsers(c.Context(), caller(c), entities.Role(c.Query("role")))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToUserResponses(users))
}

// DeleteUser removes an account and its references.
func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	if err := h.uc.DeleteUser(c.Context(), caller(c), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}
