package handlers_fiber

import (
	"net/http"

	"project-tracker/internal/entities"
	"project-tracker/internal/mapper"
	"project-tracker/internal/transport/http/dto"

	"github.com/gofiber/fiber/v2"
)

// CreateTask creates a task, optionally assigned.
func (h *Handler) CreateTask(c *fiber.Ctx) error {
	var body dto.TaskRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	task, err := h.uc.CreateTask(c.Context(), caller(c), mapper.FromTaskRequest(body))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(task)
}

// AssignTask assigns a task to a team member.
func (h *Handler) AssignTask(c *fiber.Ctx) error {
	var body dto.AssignRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	task, err := h.uc.AssignTask(c.Context(), caller(c), body.TaskID, body.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(task)
}

// UpdateTask patches a task.
func (h *Handler) UpdateTask(c *fiber.Ctx) error {
	var body dto.TaskPatchRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	task, err := h.uc.UpdateTask(c.Context(), caller(c), c.Params("id"), mapper.FromTaskPatchRequest(body))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(task)
}

// UpdateTaskStatus changes the status of a task.
func (h *Handler) UpdateTaskStatus(c *fiber.Ctx) error {
	var body dto.StatusRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	task, err := h.uc.UpdateTaskStatus(c.Context(), caller(c), c.Params("id"), entities.TaskStatus(body.Status))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(task)
}

// DeleteTask removes a task.
func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	if err := h.uc.DeleteTask(c.Context(), caller(c), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// GetTask returns a task by id.
func (h *Handler) GetTask(c *fiber.Ctx) error {
	task, err := h.uc.GetTask(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(task)
}

// ListTasks returns tasks, optionally filtered by ?project= and ?assignee=.
func (h *Handler) ListTasks(c *fiber.Ctx) error {
	tasks, err := h.uc.ListTasks(c.Context(), c.Query("project"), c.Query("assignee"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(tasks)
}
