package handlers_fiber

import (
	"project-tracker/internal/auth"
	"project-tracker/internal/entities"
	"project-tracker/internal/transport/http/middleware"

	"github.com/gofiber/fiber/v2"
)

// RegisterHandlers mounts the REST API under /api.
func RegisterHandlers(router fiber.Router, h *Handler, v auth.Verifier) {
	authn := middleware.RequireAuthenticated(v)
	manager := middleware.RequireRole(entities.RoleManager)
	member := middleware.RequireRole(entities.RoleTeamMember)

	api := router.Group("/api")

	sessions := api.Group("/auth")
	sessions.Post("/register", h.Register)
	sessions.Post("/register/manager", h.RegisterManager)
	sessions.Post("/register/team-member", h.RegisterTeamMember)
	sessions.Post("/login", h.Login)
	sessions.Post("/login/manager", h.LoginManager)
	sessions.Post("/login/team-member", h.LoginTeamMember)

	users := api.Group("/users", authn)
	users.Get("/profile", h.GetProfile)
	users.Put("/profile", h.UpdateProfile)
	users.Get("/", manager, h.ListUsers)
	users.Put("/:id", manager, h.UpdateUser)
	users.Delete("/:id", manager, h.DeleteUser)

	projects := api.Group("/projects", authn)
	projects.Post("/", manager, h.CreateProject)
	projects.Get("/", h.ListProjects)
	projects.Get("/:id", h.GetProject)
	projects.Put("/:id", manager, h.UpdateProject)
	projects.Delete("/:id", manager, h.DeleteProject)
	projects.Post("/:id/members", manager, h.AddProjectMember)
	projects.Delete("/:id/members/:userId", manager, h.RemoveProjectMember)

	tasks := api.Group("/tasks", authn)
	tasks.Post("/", manager, h.CreateTask)
	tasks.Post("/assign", manager, h.AssignTask)
	tasks.Get("/", h.ListTasks)
	tasks.Get("/:id", h.GetTask)
	tasks.Put("/:id", manager, h.UpdateTask)
	tasks.Patch("/:id/status", h.UpdateTaskStatus)
	tasks.Delete("/:id", manager, h.DeleteTask)

	teams := api.Group("/teams", authn)
	teams.Post("/", manager, h.CreateTeam)
	teams.Get("/", h.ListTeams)
	teams.Get("/:id", h.GetTeam)
	teams.Put("/:id", manager, h.UpdateTeam)
	teams.Delete("/:id", manager, h.DeleteTeam)
	teams.Post("/:id/members", manager, h.AddTeamMember)
	teams.Delete("/:id/members/:userId", manager, h.RemoveTeamMember)

	reports := api.Group("/reports", authn)
	reports.Post("/", manager, h.CreateReport)
	reports.Get("/", h.ListReports)
	reports.Post("/project-progress/:projectId", h.ProjectProgressReport)
	reports.Post("/task-completion/:projectId", h.TaskCompletionReport)
	reports.Post("/timeline/:projectId", h.TimelineReport)
	reports.Post("/budget-utilization/:projectId", h.BudgetUtilizationReport)
	reports.Post("/task-update", member, h.CreateTaskUpdate)
	reports.Get("/task-update/:taskId", h.ListTaskUpdates)
	reports.Post("/task-update/:taskId/report", member, h.TaskUpdateReport)
	reports.Delete("/task-update/entry/:updateId", member, h.DeleteTaskUpdate)
	reports.Get("/:reportId", h.GetReport)
	reports.Put("/:reportId", manager, h.UpdateReport)
	reports.Delete("/:reportId", manager, h.DeleteReport)
}
