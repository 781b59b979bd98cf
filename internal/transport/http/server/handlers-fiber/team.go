package handlers_fiber

import (
	"net/http"

	"project-tracker/internal/mapper"
	"project-tracker/internal/transport/http/dto"

	"github.com/gofiber/fiber/v2"
)

// CreateTeam creates a team owned by the caller.
func (h *Handler) CreateTeam(c *fiber.Ctx) error {
	var body dto.TeamRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}

	team, err := h.uc.CreateTeam(c.Context(), caller(c), mapper.FromTeamRequest(body))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(team)
}

// GetTeam returns a team by id.
func (h *Handler) GetTeam(c *fiber.Ctx) error {
	team, err := h.uc.GetTeam(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(team)
}

// ListTeams returns every team.
func (h *Handler) ListTeams(c *fiber.Ctx) error {
	teams, err := h.uc.ListTeams(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(teams)
}

// UpdateTeam renames or redescribes a team.
func (h *Handler) UpdateTeam(c *fiber.Ctx) error {
	var body dto.TeamPatchRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	team, err := h.uc.UpdateTeam(c.Context(), caller(c), c.Params("id"), mapper.FromTeamPatchRequest(body))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(team)
}

// DeleteTeam removes a team and releases its members.
func (h *Handler) DeleteTeam(c *fiber.Ctx) error {
	if err := h.uc.DeleteTeam(c.Context(), caller(c), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// AddTeamMember adds a user to a team.
func (h *Handler) AddTeamMember(c *fiber.Ctx) error {
	var body dto.MemberRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	team, err := h.uc.AddTeamMember(c.Context(), caller(c), c.Params("id"), body.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(team)
}

// RemoveTeamMember removes a user from a team.
func (h *Handler) RemoveTeamMember(c *fiber.Ctx) error {
	team, err := h.uc.RemoveTeamMember(c.Context(), caller(c), c.Params("id"), c.Params("userId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(team)
}
