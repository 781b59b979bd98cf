package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"project-tracker/internal/entities"
	"project-tracker/internal/notify"
	"project-tracker/internal/repository"
)

// CreateTask creates a task inside an existing project, optionally assigned.
func (u *Usecase) CreateTask(ctx context.Context, callerID string, t entities.Task) (*entities.Task, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	caller, err := u.loadManager(ctx, callerID)
	if err != nil {
		return nil, err
	}
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return nil, fmt.Errorf("%w: task title is required", entities.ErrInvalidArgument)
	}
	if t.DueDate.IsZero() {
		return nil, fmt.Errorf("%w: due date is required", entities.ErrInvalidArgument)
	}
	if t.Status == "" {
		t.Status = entities.TaskToDo
	}
	project, err := u.loadProject(ctx, t.ProjectID)
	if err != nil {
		return nil, err
	}

	now := u.now().UTC()
	t.ID = u.newID()
	t.CreatedBy = caller.ID
	t.CreatedAt = now
	t.UpdatedAt = now

	var assignee entities.User
	if t.AssignedTo != "" {
		var release func()
		assignee, release, err = u.reserveAssignee(ctx, t.ID, t.AssignedTo)
		if err != nil {
			return nil, err
		}
		defer release()
		t.Assign(assignee)
	} else {
		t.Unassign()
	}

	if err := u.repo.Save(ctx, t); err != nil {
		return nil, err
	}
	if err := u.repo.PushRef(ctx, entities.CollectionProjects, project.ID, entities.FieldTasks, t.ID); err != nil {
		u.log.Errorw("task saved but project task list not updated", "error", err, "task_id", t.ID, "project_id", project.ID)
		return nil, fmt.Errorf("link task to project: %w", err)
	}
	if assignee.ID != "" {
		if err := u.repo.PushRef(ctx, entities.CollectionUsers, assignee.ID, entities.FieldTasks, t.ID); err != nil {
			u.log.Errorw("task saved but user task list not updated", "error", err, "task_id", t.ID, "user_id", assignee.ID)
			return nil, fmt.Errorf("link task to assignee: %w", err)
		}
		u.notifyAsync([]string{assignee.Email}, notify.TemplateTaskCreated, taskNotification(t, assignee, project.Name))
	}

	u.log.Infow("task created", "task_id", t.ID, "project_id", project.ID)
	return &t, nil
}

// UpdateTask applies patch to a task of a project managed by the caller.
// Moving to another project requires managing the destination too.
func (u *Usecase) UpdateTask(ctx context.Context, callerID, taskID string, patch entities.TaskPatch) (*entities.Task, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if _, err := u.loadManager(ctx, callerID); err != nil {
		return nil, err
	}
	t, err := u.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := u.loadOwnedProject(ctx, callerID, t.ProjectID); err != nil && !isMissingProject(err) {
		return nil, err
	}

	now := u.now().UTC()
	wasActive := t.IsActive(now)
	oldProject := t.ProjectID
	if patch.ProjectID != nil && *patch.ProjectID != t.ProjectID {
		dest, err := u.loadOwnedProject(ctx, callerID, *patch.ProjectID)
		if err != nil {
			return nil, err
		}
		t.ProjectID = dest.ID
	}
	if patch.Title != nil {
		t.Title = strings.TrimSpace(*patch.Title)
		if t.Title == "" {
			return nil, fmt.Errorf("%w: task title must not be empty", entities.ErrInvalidArgument)
		}
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		if *patch.Status == "" {
			return nil, fmt.Errorf("%w: task status must not be empty", entities.ErrInvalidArgument)
		}
		t.Status = *patch.Status
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		if patch.DueDate.IsZero() {
			return nil, fmt.Errorf("%w: due date must not be empty", entities.ErrInvalidArgument)
		}
		t.DueDate = *patch.DueDate
	}

	oldAssignee := t.AssignedTo
	if patch.AssignedTo != nil && *patch.AssignedTo != t.AssignedTo {
		if *patch.AssignedTo == "" {
			t.Unassign()
		} else {
			target, release, err := u.reserveAssignee(ctx, t.ID, *patch.AssignedTo)
			if err != nil {
				return nil, err
			}
			defer release()
			t.Assign(target)
		}
	} else {
		release, err := u.reserveReactivated(ctx, &t, wasActive, now)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	t.UpdatedAt = now
	if err := u.repo.Save(ctx, t); err != nil {
		return nil, err
	}

	if t.ProjectID != oldProject {
		if err := u.pullStale(ctx, entities.CollectionProjects, oldProject, entities.FieldTasks, t.ID); err != nil {
			return nil, fmt.Errorf("unlink task from project %s: %w", oldProject, err)
		}
		if err := u.repo.PushRef(ctx, entities.CollectionProjects, t.ProjectID, entities.FieldTasks, t.ID); err != nil {
			u.log.Errorw("task moved but destination task list not updated", "error", err, "task_id", t.ID, "project_id", t.ProjectID)
			return nil, fmt.Errorf("link task to project %s: %w", t.ProjectID, err)
		}
	}
	if t.AssignedTo != oldAssignee {
		if t.AssignedTo != "" {
			if err := u.repo.PushRef(ctx, entities.CollectionUsers, t.AssignedTo, entities.FieldTasks, t.ID); err != nil {
				return nil, fmt.Errorf("link task to assignee: %w", err)
			}
		}
		if err := u.pullStale(ctx, entities.CollectionUsers, oldAssignee, entities.FieldTasks, t.ID); err != nil {
			u.log.Warnw("failed to unlink task from previous assignee", "error", err, "task_id", t.ID, "user_id", oldAssignee)
		}
		if t.AssignedTo != "" {
			u.notifyAsync([]string{t.AssignedToEmail}, notify.TemplateTaskAssigned,
				map[string]string{"name": t.AssignedToName, "task": t.Title, "due_date": t.DueDate.Format("2006-01-02")})
		}
	}
	return &t, nil
}

// DeleteTask removes a task of a project managed by the caller and unlinks it from the project and assignee.
func (u *Usecase) DeleteTask(ctx context.Context, callerID, taskID string) error {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if _, err := u.loadManager(ctx, callerID); err != nil {
		return err
	}
	t, err := u.loadTask(ctx, taskID)
	if err != nil {
		return err
	}
	if _, err := u.loadOwnedProject(ctx, callerID, t.ProjectID); err != nil && !isMissingProject(err) {
		return err
	}

	if err := u.pullStale(ctx, entities.CollectionProjects, t.ProjectID, entities.FieldTasks, t.ID); err != nil {
		return fmt.Errorf("unlink task from project: %w", err)
	}
	if err := u.repo.Delete(ctx, entities.CollectionTasks, t.ID); err != nil {
		return notFound(err, entities.ErrTaskNotFound, t.ID)
	}
	if err := u.pullStale(ctx, entities.CollectionUsers, t.AssignedTo, entities.FieldTasks, t.ID); err != nil {
		u.log.Warnw("failed to unlink deleted task from assignee", "error", err, "task_id", t.ID, "user_id", t.AssignedTo)
	}

	u.log.Infow("task deleted", "task_id", t.ID, "project_id", t.ProjectID, "by", callerID)
	return nil
}

// UpdateTaskStatus moves a task through its lifecycle. Allowed for the assignee and the project manager.
func (u *Usecase) UpdateTaskStatus(ctx context.Context, callerID, taskID string, status entities.TaskStatus) (*entities.Task, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if strings.TrimSpace(string(status)) == "" {
		return nil, fmt.Errorf("%w: task status is required", entities.ErrInvalidArgument)
	}
	caller, err := u.loadUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	t, err := u.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.AssignedTo != caller.ID {
		if caller.Role != entities.RoleManager {
			return nil, entities.ErrNotAssignee
		}
		if _, err := u.loadOwnedProject(ctx, caller.ID, t.ProjectID); err != nil {
			return nil, err
		}
	}

	now := u.now().UTC()
	wasActive := t.IsActive(now)
	t.Status = status
	release, err := u.reserveReactivated(ctx, &t, wasActive, now)
	if err != nil {
		return nil, err
	}
	defer release()

	t.UpdatedAt = now
	if err := u.repo.Save(ctx, t); err != nil {
		return nil, err
	}
	return &t, nil
}

// reserveReactivated runs the assignment checks for the current assignee when a
// patch turns an inactive task active again. The returned release is never nil.
func (u *Usecase) reserveReactivated(ctx context.Context, t *entities.Task, wasActive bool, now time.Time) (func(), error) {
	if wasActive || t.AssignedTo == "" || !t.IsActive(now) {
		return func() {}, nil
	}
	target, release, err := u.reserveAssignee(ctx, t.ID, t.AssignedTo)
	if err != nil {
		return nil, err
	}
	t.Assign(target)
	return release, nil
}

// GetTask returns a task by id.
func (u *Usecase) GetTask(ctx context.Context, taskID string) (*entities.Task, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	t, err := u.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTasks returns tasks, optionally restricted to a project and an assignee.
func (u *Usecase) ListTasks(ctx context.Context, projectID, assigneeID string) ([]entities.Task, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	var filter repository.Filter
	if projectID != "" {
		filter = append(filter, repository.Eq("project", projectID))
	}
	if assigneeID != "" {
		filter = append(filter, repository.Eq("assigned_to", assigneeID))
	}
	tasks := []entities.Task{}
	if err := u.repo.Find(ctx, entities.CollectionTasks, filter, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// isMissingProject reports a task whose project was deleted; any manager may then tidy it up.
func isMissingProject(err error) bool {
	return errors.Is(err, entities.ErrProjectNotFound)
}
