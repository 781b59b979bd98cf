package handlers_fiber

import (
	"net/http"

	"project-tracker/internal/mapper"
	"project-tracker/internal/transport/http/dto"

	"github.com/gofiber/fiber/v2"
)

// CreateProject creates a project owned by the caller.
func (h *Handler) CreateProject(c *fiber.Ctx) error {
	var body dto.ProjectRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	project, err := h.uc.CreateProject(c.Context(), caller(c), mapper.FromProjectRequest(body))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(project)
}

// UpdateProject patches a project owned by the caller.
func (h *Handler) UpdateProject(c *fiber.Ctx) error {
	var body dto.ProjectPatchRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	project, err := h.uc.UpdateProject(c.Context(), caller(c), c.Params("id"), mapper.FromProjectPatchRequest(body))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(project)
}

// DeleteProject removes a project owned by the caller.
func (h *Handler) DeleteProject(c *fiber.Ctx) error {
	if err := h.uc.DeleteProject(c.Context(), caller(c), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// GetProject returns a project by id.
func (h *Handler) GetProject(c *fiber.Ctx) error {
	project, err := h.uc.GetProject(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(project)
}

// ListProjects returns projects, optionally filtered by ?manager=.
func (h *Handler) ListProjects(c *fiber.Ctx) error {
	projects, err := h.uc.ListProjects(c.Context(), c.Query("manager"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(projects)
}

// AddProjectMember adds a team member to the project roster.
func (h *Handler) AddProjectMember(c *fiber.Ctx) error {
	var body dto.MemberRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	project, err := h.uc.AddProjectMember(c.Context(), caller(c), c.Params("id"), body.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(project)
}

// RemoveProjectMember drops a user from the project roster.
func (h *Handler) RemoveProjectMember(c *fiber.Ctx) error {
	project, err := h.uc.RemoveProjectMember(c.Context(), caller(c), c.Params("id"), c.Params("userId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(project)
}
