package domain

import (
	"context"
	"fmt"
	"strings"

	"project-tracker/internal/entities"
	"project-tracker/internal/repository"
)

// CreateTaskUpdate appends a progress note to a task. Only its assigned team member may write one.
func (u *Usecase) CreateTaskUpdate(ctx context.Context, callerID, taskID, content, attachment string) (*entities.TaskUpdate, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", entities.ErrInvalidArgument)
	}
	caller, err := u.loadUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if caller.Role != entities.RoleTeamMember {
		return nil, fmt.Errorf("%w: role %s required", entities.ErrForbidden, entities.RoleTeamMember)
	}
	task, err := u.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.AssignedTo != caller.ID {
		return nil, entities.ErrNotAssignee
	}

	upd := entities.TaskUpdate{
		ID:         u.newID(),
		TaskID:     task.ID,
		UserID:     caller.ID,
		Content:    content,
		Date:       u.now().UTC(),
		Attachment: attachment,
	}
	if err := u.repo.Save(ctx, upd); err != nil {
		return nil, err
	}
	return &upd, nil
}

// ListTaskUpdates returns the updates of a task.
func (u *Usecase) ListTaskUpdates(ctx context.Context, taskID string) ([]entities.TaskUpdate, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if _, err := u.loadTask(ctx, taskID); err != nil {
		return nil, err
	}
	updates := []entities.TaskUpdate{}
	if err := u.repo.Find(ctx, entities.CollectionTaskUpdates, repository.Filter{repository.Eq("task", taskID)}, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// DeleteTaskUpdate removes an update. Only its author may delete it.
func (u *Usecase) DeleteTaskUpdate(ctx context.Context, callerID, updateID string) error {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	upd, err := u.loadTaskUpdate(ctx, updateID)
	if err != nil {
		return err
	}
	if upd.UserID != callerID {
		return entities.ErrNotOwner
	}
	if err := u.repo.Delete(ctx, entities.CollectionTaskUpdates, upd.ID); err != nil {
		return notFound(err, entities.ErrTaskUpdateNotFound, upd.ID)
	}
	return nil
}
