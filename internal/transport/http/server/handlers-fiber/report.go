package handlers_fiber

import (
	"context"
	"net/http"

	"project-tracker/internal/entities"
	"project-tracker/internal/mapper"
	"project-tracker/internal/transport/http/dto"

	"github.com/gofiber/fiber/v2"
)

type generator func(ctx context.Context, callerID, id string) (*entities.Report, error)

func (h *Handler) generate(c *fiber.Ctx, gen generator, param string) error {
	report, err := gen(c.Context(), caller(c), c.Params(param))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(report)
}

// ProjectProgressReport generates a progress report for a project.
func (h *Handler) ProjectProgressReport(c *fiber.Ctx) error {
	return h.generate(c, h.uc.GenerateProgressReport, "projectId")
}

// TaskCompletionReport generates a task completion report for a project.
func (h *Handler) TaskCompletionReport(c *fiber.Ctx) error {
	return h.generate(c, h.uc.GenerateTaskCompletionReport, "projectId")
}

// TimelineReport generates a timeline report for a project.
func (h *Handler) TimelineReport(c *fiber.Ctx) error {
	return h.generate(c, h.uc.GenerateTimelineReport, "projectId")
}

// BudgetUtilizationReport generates a budget report for a project.
func (h *Handler) BudgetUtilizationReport(c *fiber.Ctx) error {
	return h.generate(c, h.uc.GenerateBudgetUtilizationReport, "projectId")
}

// TaskUpdateReport generates a report of the updates submitted for a task.
func (h *Handler) TaskUpdateReport(c *fiber.Ctx) error {
	return h.generate(c, h.uc.GenerateTaskUpdateReport, "taskId")
}

// CreateReport stores a custom report.
func (h *Handler) CreateReport(c *fiber.Ctx) error {
	var body dto.ReportRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	report, err := h.uc.CreateReport(c.Context(), caller(c), mapper.FromReportRequest(body))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(report)
}

// GetReport returns a report by id.
func (h *Handler) GetReport(c *fiber.Ctx) error {
	report, err := h.uc.GetReport(c.Context(), c.Params("reportId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(report)
}

// ListReports returns reports, optionally filtered by ?project=.
func (h *Handler) ListReports(c *fiber.Ctx) error {
	reports, err := h.uc.ListReports(c.Context(), c.Query("project"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(reports)
}

// UpdateReport replaces the payload of a report.
func (h *Handler) UpdateReport(c *fiber.Ctx) error {
	var body dto.ReportDataRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	report, err := h.uc.UpdateReportData(c.Context(), caller(c), c.Params("reportId"), body.Data)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(report)
}

// DeleteReport removes a report.
func (h *Handler) DeleteReport(c *fiber.Ctx) error {
	if err := h.uc.DeleteReport(c.Context(), caller(c), c.Params("reportId")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// CreateTaskUpdate records a progress note from the task assignee.
func (h *Handler) CreateTaskUpdate(c *fiber.Ctx) error {
	var body dto.TaskUpdateRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	update, err := h.uc.CreateTaskUpdate(c.Context(), caller(c), body.Task, body.Content, body.Attachment)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(update)
}

// ListTaskUpdates returns the updates recorded for a task.
func (h *Handler) ListTaskUpdates(c *fiber.Ctx) error {
	updates, err := h.uc.ListTaskUpdates(c.Context(), c.Params("taskId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(updates)
}

// DeleteTaskUpdate removes an update written by the caller.
func (h *Handler) DeleteTaskUpdate(c *fiber.Ctx) error {
	if err := h.uc.DeleteTaskUpdate(c.Context(), caller(c), c.Params("updateId")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}
