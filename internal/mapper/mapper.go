// Package mapper converts between domain models and transport DTOs.
package mapper

import (
	"project-tracker/internal/entities"
	"project-tracker/internal/transport/http/dto"
)

// ToUserResponse maps a user without its credential.
func ToUserResponse(u entities.User) dto.UserResponse {
	tasks := u.Tasks
	if tasks == nil {
		tasks = []string{}
	}
	return dto.UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		EmailDomain: u.EmailDomain,
		Role:        u.Role,
		Team:        u.TeamID,
		Manager:     u.ManagerID,
		Tasks:       tasks,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// ToUserResponses maps a list of users.
func ToUserResponses(users []entities.User) []dto.UserResponse {
	res := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		res = append(res, ToUserResponse(u))
	}
	return res
}

// ToSessionResponse maps a login result.
func ToSessionResponse(s entities.Session) dto.SessionResponse {
	return dto.SessionResponse{Token: s.Token, ExpiresAt: s.ExpiresAt, User: ToUserResponse(s.User)}
}

// FromRegisterRequest builds a registration.
func FromRegisterRequest(src dto.RegisterRequest) entities.Registration {
	return entities.Registration{
		Name:     src.Name,
		Email:    src.Email,
		Password: src.Password,
		Role:     entities.Role(src.Role),
	}
}

// FromUpdateProfileRequest builds a user patch.
func FromUpdateProfileRequest(src dto.UpdateProfileRequest) entities.UserPatch {
	return entities.UserPatch{Name: src.Name, Email: src.Email}
}

// FromProjectRequest builds a new project.
func FromProjectRequest(src dto.ProjectRequest) entities.Project {
	p := entities.Project{
		Name:           src.Name,
		Description:    src.Description,
		EndDate:        src.EndDate,
		Status:         entities.ProjectStatus(src.Status),
		PriorityLevel:  entities.PriorityLevel(src.PriorityLevel),
		Budget:         src.Budget,
		Expenses:       src.Expenses,
		RiskAssessment: src.RiskAssessment,
		Attachment:     src.Attachment,
		TeamMembers:    src.TeamMembers,
	}
	if src.StartDate != nil {
		p.StartDate = *src.StartDate
	}
	return p
}

// FromProjectPatchRequest builds a project patch.
func FromProjectPatchRequest(src dto.ProjectPatchRequest) entities.ProjectPatch {
	patch := entities.ProjectPatch{
		Name:           src.Name,
		Description:    src.Description,
		StartDate:      src.StartDate,
		EndDate:        src.EndDate,
		Budget:         src.Budget,
		Expenses:       src.Expenses,
		RiskAssessment: src.RiskAssessment,
		Attachment:     src.Attachment,
		TeamMembers:    src.TeamMembers,
	}
	if src.Status != nil {
		s := entities.ProjectStatus(*src.Status)
		patch.Status = &s
	}
	if src.PriorityLevel != nil {
		p := entities.PriorityLevel(*src.PriorityLevel)
		patch.PriorityLevel = &p
	}
	return patch
}

// FromTaskRequest builds a new task.
func FromTaskRequest(src dto.TaskRequest) entities.Task {
	return entities.Task{
		Title:       src.Title,
		Description: src.Description,
		Status:      entities.TaskStatus(src.Status),
		Priority:    src.Priority,
		DueDate:     src.DueDate,
		ProjectID:   src.Project,
		AssignedTo:  src.AssignedTo,
	}
}

// FromTaskPatchRequest builds a task patch.
func FromTaskPatchRequest(src dto.TaskPatchRequest) entities.TaskPatch {
	patch := entities.TaskPatch{
		Title:       src.Title,
		Description: src.Description,
		Priority:    src.Priority,
		DueDate:     src.DueDate,
		ProjectID:   src.Project,
		AssignedTo:  src.AssignedTo,
	}
	if src.Status != nil {
		s := entities.TaskStatus(*src.Status)
		patch.Status = &s
	}
	return patch
}

// FromTeamRequest builds a new team.
func FromTeamRequest(src dto.TeamRequest) entities.Team {
	return entities.Team{Name: src.Name, Description: src.Description, Members: src.Members}
}

// FromTeamPatchRequest builds a team patch.
func FromTeamPatchRequest(src dto.TeamPatchRequest) entities.TeamPatch {
	return entities.TeamPatch{Name: src.Name, Description: src.Description}
}

// FromReportRequest builds a custom report.
func FromReportRequest(src dto.ReportRequest) entities.Report {
	return entities.Report{ProjectID: src.Project, Type: entities.ReportType(src.Type), Data: src.Data}
}
