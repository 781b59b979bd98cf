package usecase

import (
	"context"

	"project-tracker/internal/entities"
)

// UserUsecaseInterface abstracts account and session operations for delivery layer.
type UserUsecaseInterface interface {
	RegisterUser(ctx context.Context, in entities.Registration) (*entities.User, error)
	RegisterManager(ctx context.Context, in entities.Registration) (*entities.User, error)
	RegisterTeamMember(ctx context.Context, in entities.Registration) (*entities.User, error)
	Login(ctx context.Context, email, password string, role entities.Role) (*entities.Session, error)
	Profile(ctx context.Context, callerID string) (*entities.User, error)
	ListUsers(ctx context.Context, callerID string, role entities.Role) ([]entities.User, error)
	UpdateProfile(ctx context.Context, callerID, targetID string, patch entities.UserPatch) (*entities.User, error)
	DeleteUser(ctx context.Context, callerID, targetID string) error
}

// ProjectUsecaseInterface abstracts project operations.
type ProjectUsecaseInterface interface {
	CreateProject(ctx context.Context, callerID string, p entities.Project) (*entities.Project, error)
	UpdateProject(ctx context.Context, callerID, projectID string, patch entities.ProjectPatch) (*entities.Project, error)
	DeleteProject(ctx context.Context, callerID, projectID string) error
	GetProject(ctx context.Context, projectID string) (*entities.Project, error)
	ListProjects(ctx context.Context, managerID string) ([]entities.Project, error)
	AddProjectMember(ctx context.Context, callerID, projectID, userID string) (*entities.Project, error)
	RemoveProjectMember(ctx context.Context, callerID, projectID, userID string) (*entities.Project, error)
}

// TaskUsecaseInterface abstracts task lifecycle and assignment operations.
type TaskUsecaseInterface interface {
	CreateTask(ctx context.Context, callerID string, t entities.Task) (*entities.Task, error)
	AssignTask(ctx context.Context, callerID, taskID, targetID string) (*entities.Task, error)
	UpdateTask(ctx context.Context, callerID, taskID string, patch entities.TaskPatch) (*entities.Task, error)
	UpdateTaskStatus(ctx context.Context, callerID, taskID string, status entities.TaskStatus) (*entities.Task, error)
	DeleteTask(ctx context.Context, callerID, taskID string) error
	GetTask(ctx context.Context, taskID string) (*entities.Task, error)
	ListTasks(ctx context.Context, projectID, assigneeID string) ([]entities.Task, error)
}

// TeamUsecaseInterface abstracts team-related operations.
type TeamUsecaseInterface interface {
	CreateTeam(ctx context.Context, callerID string, team entities.Team) (*entities.Team, error)
	UpdateTeam(ctx context.Context, callerID, teamID string, patch entities.TeamPatch) (*entities.Team, error)
	DeleteTeam(ctx context.Context, callerID, teamID string) error
	AddTeamMember(ctx context.Context, callerID, teamID, userID string) (*entities.Team, error)
	RemoveTeamMember(ctx context.Context, callerID, teamID, userID string) (*entities.Team, error)
	GetTeam(ctx context.Context, teamID string) (*entities.Team, error)
	ListTeams(ctx context.Context) ([]entities.Team, error)
}

// ReportUsecaseInterface abstracts report generation and task update operations.
type ReportUsecaseInterface interface {
	GenerateProgressReport(ctx context.Context, callerID, projectID string) (*entities.Report, error)
	GenerateTaskCompletionReport(ctx context.Context, callerID, projectID string) (*entities.Report, error)
	GenerateTimelineReport(ctx context.Context, callerID, projectID string) (*entities.Report, error)
	GenerateBudgetUtilizationReport(ctx context.Context, callerID, projectID string) (*entities.Report, error)
	GenerateTaskUpdateReport(ctx context.Context, callerID, taskID string) (*entities.Report, error)
	CreateReport(ctx context.Context, callerID string, r entities.Report) (*entities.Report, error)
	GetReport(ctx context.Context, reportID string) (*entities.Report, error)
	ListReports(ctx context.Context, projectID string) ([]entities.Report, error)
	UpdateReportData(ctx context.Context, callerID, reportID string, data entities.ReportData) (*entities.Report, error)
	DeleteReport(ctx context.Context, callerID, reportID string) error

	CreateTaskUpdate(ctx context.Context, callerID, taskID, content, attachment string) (*entities.TaskUpdate, error)
	ListTaskUpdates(ctx context.Context, taskID string) ([]entities.TaskUpdate, error)
	DeleteTaskUpdate(ctx context.Context, callerID, updateID string) error
}
