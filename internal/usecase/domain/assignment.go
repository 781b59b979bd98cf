package domain

import (
	"context"
	"fmt"

	"project-tracker/internal/entities"
	"project-tracker/internal/notify"
	"project-tracker/internal/repository"
)

func assignLockKey(userID string) string { return "assign:" + userID }

// reserveAssignee takes the per-user assignment lock and checks that target can take taskID.
// On success the caller must persist the assignment and then call release.
func (u *Usecase) reserveAssignee(ctx context.Context, taskID, targetID string) (target entities.User, release func(), err error) {
	if targetID == "" {
		return target, nil, fmt.Errorf("%w: assignee id is required", entities.ErrInvalidArgument)
	}
	release, err = u.repo.Lock(ctx, assignLockKey(targetID))
	if err != nil {
		return target, nil, fmt.Errorf("%w: acquire assignment lock: %w", entities.ErrStore, err)
	}

	target, err = u.checkAssignee(ctx, taskID, targetID)
	if err != nil {
		release()
		return target, nil, err
	}
	return target, release, nil
}

func (u *Usecase) checkAssignee(ctx context.Context, taskID, targetID string) (entities.User, error) {
	target, err := u.loadUser(ctx, targetID)
	if err != nil {
		return target, err
	}
	if target.Role != entities.RoleTeamMember {
		return target, fmt.Errorf("%w: %s", entities.ErrNotTeamMember, target.ID)
	}

	var active []entities.Task
	err = u.repo.Find(ctx, entities.CollectionTasks, repository.Filter{
		repository.Eq("assigned_to", target.ID),
		repository.In("status", entities.ActiveTaskStatuses),
		repository.Gt("due_date", u.now().UTC()),
	}, &active)
	if err != nil {
		return target, err
	}
	for _, t := range active {
		if t.ID != taskID {
			return target, entities.ErrActiveTaskExists
		}
	}
	return target, nil
}

// AssignTask assigns taskID to a team member with no other active task and moves it to In Progress.
// The caller must manage the task's project.
func (u *Usecase) AssignTask(ctx context.Context, callerID, taskID, targetID string) (*entities.Task, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if _, err := u.loadManager(ctx, callerID); err != nil {
		return nil, err
	}
	task, err := u.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	project, err := u.loadOwnedProject(ctx, callerID, task.ProjectID)
	if err != nil {
		return nil, err
	}

	target, release, err := u.reserveAssignee(ctx, task.ID, targetID)
	if err != nil {
		return nil, err
	}
	defer release()

	previous := task.AssignedTo
	task.Assign(target)
	task.Status = entities.TaskInProgress
	task.UpdatedAt = u.now().UTC()
	if err := u.repo.Save(ctx, task); err != nil {
		return nil, err
	}
	if err := u.repo.PushRef(ctx, entities.CollectionUsers, target.ID, entities.FieldTasks, task.ID); err != nil {
		u.log.Errorw("task assigned but user task list not updated", "error", err, "task_id", task.ID, "user_id", target.ID)
		return nil, fmt.Errorf("link task to assignee: %w", err)
	}
	if previous != "" && previous != target.ID {
		if err := u.pullStale(ctx, entities.CollectionUsers, previous, entities.FieldTasks, task.ID); err != nil {
			u.log.Warnw("failed to unlink task from previous assignee", "error", err, "task_id", task.ID, "user_id", previous)
		}
	}

	u.log.Infow("task assigned", "task_id", task.ID, "user_id", target.ID, "by", callerID)
	u.notifyAsync([]string{target.Email}, notify.TemplateTaskAssigned, taskNotification(task, target, project.Name))
	return &task, nil
}

func taskNotification(t entities.Task, assignee entities.User, projectName string) map[string]string {
	data := map[string]string{
		"name": assignee.Name,
		"task": t.Title,
	}
	if !t.DueDate.IsZero() {
		data["due_date"] = t.DueDate.Format("2006-01-02")
	}
	if projectName != "" {
		data["project"] = projectName
	}
	return data
}
