package domain

import (
	"context"
	"fmt"
	"strings"

	"project-tracker/internal/entities"
	"project-tracker/internal/notify"
	"project-tracker/internal/repository"
)

// CreateProject creates a project owned by the calling manager.
func (u *Usecase) CreateProject(ctx context.Context, callerID string, p entities.Project) (*entities.Project, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	caller, err := u.loadManager(ctx, callerID)
	if err != nil {
		return nil, err
	}

	p.Name = strings.TrimSpace(p.Name)
	if p.Status == "" {
		p.Status = entities.ProjectNotStarted
	}
	if p.PriorityLevel == "" {
		p.PriorityLevel = entities.PriorityMedium
	}
	if err := validateProject(p); err != nil {
		return nil, err
	}

	members, err := u.teamMembers(ctx, p.TeamMembers)
	if err != nil {
		return nil, err
	}

	now := u.now().UTC()
	if p.StartDate.IsZero() {
		p.StartDate = now
	}
	p.ID = u.newID()
	p.ManagerID = caller.ID
	p.TeamMembers = idsOf(members)
	p.Tasks = []string{}
	p.Reports = []string{}
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := u.repo.Save(ctx, p); err != nil {
		return nil, err
	}

	u.log.Infow("project created", "project_id", p.ID, "manager_id", caller.ID)
	u.notifyAsync(emailsOf(members), notify.TemplateProjectCreated, map[string]string{"project": p.Name})
	return &p, nil
}

// UpdateProject applies patch to a project owned by the caller.
func (u *Usecase) UpdateProject(ctx context.Context, callerID, projectID string, patch entities.ProjectPatch) (*entities.Project, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if _, err := u.loadManager(ctx, callerID); err != nil {
		return nil, err
	}
	p, err := u.loadOwnedProject(ctx, callerID, projectID)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]any)
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
		fields["name"] = p.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
		fields["description"] = p.Description
	}
	if patch.StartDate != nil {
		p.StartDate = *patch.StartDate
		fields["start_date"] = p.StartDate
	}
	if patch.EndDate != nil {
		end := *patch.EndDate
		p.EndDate = &end
		fields["end_date"] = end
	}
	if patch.Status != nil {
		p.Status = *patch.Status
		fields["status"] = p.Status
	}
	if patch.PriorityLevel != nil {
		p.PriorityLevel = *patch.PriorityLevel
		fields["priority_level"] = p.PriorityLevel
	}
	if patch.Budget != nil {
		p.Budget = *patch.Budget
		fields["budget"] = p.Budget
	}
	if patch.Expenses != nil {
		p.Expenses = *patch.Expenses
		fields["expenses"] = p.Expenses
	}
	if patch.RiskAssessment != nil {
		p.RiskAssessment = *patch.RiskAssessment
		fields["risk_assessment"] = p.RiskAssessment
	}
	if patch.Attachment != nil {
		p.Attachment = *patch.Attachment
		fields["attachment"] = p.Attachment
	}
	if patch.TeamMembers != nil {
		members, err := u.teamMembers(ctx, patch.TeamMembers)
		if err != nil {
			return nil, err
		}
		p.TeamMembers = idsOf(members)
		fields[entities.FieldTeamMembers] = p.TeamMembers
	}
	if err := validateProject(p); err != nil {
		return nil, err
	}

	// tasks and reports are maintained by PushRef/PullRef and never written here
	p.UpdatedAt = u.now().UTC()
	fields[entities.FieldUpdatedAt] = p.UpdatedAt
	if err := u.repo.SetFields(ctx, entities.CollectionProjects, p.ID, fields); err != nil {
		return nil, notFound(err, entities.ErrProjectNotFound, p.ID)
	}
	updated, err := u.loadProject(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProject removes a project owned by the caller. Its tasks are left in place.
func (u *Usecase) DeleteProject(ctx context.Context, callerID, projectID string) error {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if _, err := u.loadManager(ctx, callerID); err != nil {
		return err
	}
	p, err := u.loadOwnedProject(ctx, callerID, projectID)
	if err != nil {
		return err
	}
	if err := u.repo.Delete(ctx, entities.CollectionProjects, p.ID); err != nil {
		return notFound(err, entities.ErrProjectNotFound, p.ID)
	}
	u.log.Infow("project deleted", "project_id", p.ID, "orphaned_tasks", len(p.Tasks))
	return nil
}

// GetProject returns a project by id.
func (u *Usecase) GetProject(ctx context.Context, projectID string) (*entities.Project, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	p, err := u.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProjects returns all projects, optionally only those managed by managerID.
func (u *Usecase) ListProjects(ctx context.Context, managerID string) ([]entities.Project, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	var filter repository.Filter
	if managerID != "" {
		filter = append(filter, repository.Eq("manager", managerID))
	}
	projects := []entities.Project{}
	if err := u.repo.Find(ctx, entities.CollectionProjects, filter, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// AddProjectMember adds a team member to the project's team.
func (u *Usecase) AddProjectMember(ctx context.Context, callerID, projectID, userID string) (*entities.Project, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if _, err := u.loadManager(ctx, callerID); err != nil {
		return nil, err
	}
	p, err := u.loadOwnedProject(ctx, callerID, projectID)
	if err != nil {
		return nil, err
	}
	if _, err := u.teamMembers(ctx, []string{userID}); err != nil {
		return nil, err
	}
	if err := u.repo.PushRef(ctx, entities.CollectionProjects, p.ID, entities.FieldTeamMembers, userID); err != nil {
		return nil, notFound(err, entities.ErrProjectNotFound, p.ID)
	}
	p, err = u.loadProject(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// RemoveProjectMember removes a user from the project's team.
func (u *Usecase) RemoveProjectMember(ctx context.Context, callerID, projectID, userID string) (*entities.Project, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if _, err := u.loadManager(ctx, callerID); err != nil {
		return nil, err
	}
	p, err := u.loadOwnedProject(ctx, callerID, projectID)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", entities.ErrInvalidArgument)
	}
	if err := u.repo.PullRef(ctx, entities.CollectionProjects, p.ID, entities.FieldTeamMembers, userID); err != nil {
		return nil, notFound(err, entities.ErrProjectNotFound, p.ID)
	}
	p, err = u.loadProject(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func validateProject(p entities.Project) error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: project name is required", entities.ErrInvalidArgument)
	case !p.Status.Valid():
		return fmt.Errorf("%w: unknown project status %q", entities.ErrInvalidArgument, p.Status)
	case !p.PriorityLevel.Valid():
		return fmt.Errorf("%w: unknown priority level %q", entities.ErrInvalidArgument, p.PriorityLevel)
	case p.Budget < 0:
		return fmt.Errorf("%w: budget must not be negative", entities.ErrInvalidArgument)
	case p.Expenses < 0:
		return fmt.Errorf("%w: expenses must not be negative", entities.ErrInvalidArgument)
	case p.EndDate != nil && !p.StartDate.IsZero() && p.EndDate.Before(p.StartDate):
		return fmt.Errorf("%w: end date precedes start date", entities.ErrInvalidArgument)
	}
	return nil
}

// teamMembers loads ids, dropping duplicates, and requires each to have the team member role.
func (u *Usecase) teamMembers(ctx context.Context, ids []string) ([]entities.User, error) {
	seen := make(map[string]struct{}, len(ids))
	users := make([]entities.User, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		user, err := u.loadUser(ctx, id)
		if err != nil {
			return nil, err
		}
		if user.Role != entities.RoleTeamMember {
			return nil, fmt.Errorf("%w: %s", entities.ErrNotTeamMember, id)
		}
		users = append(users, user)
	}
	return users, nil
}

func idsOf(users []entities.User) []string {
	ids := make([]string, 0, len(users))
	for _, user := range users {
		ids = append(ids, user.ID)
	}
	return ids
}

func emailsOf(users []entities.User) []string {
	emails := make([]string, 0, len(users))
	for _, user := range users {
		emails = append(emails, user.Email)
	}
	return emails
}
