package domain

import (
	"context"
	"errors"
	"fmt"

	"project-tracker/internal/entities"
)

func notFound(err, specific error, id string) error {
	if errors.Is(err, entities.ErrNotFound) {
		return fmt.Errorf("%w: %s", specific, id)
	}
	return err
}

func (u *Usecase) loadUser(ctx context.Context, id string) (entities.User, error) {
	var user entities.User
	if id == "" {
		return user, fmt.Errorf("%w: user id is required", entities.ErrInvalidArgument)
	}
	if err := u.repo.FindByID(ctx, entities.CollectionUsers, id, &user); err != nil {
		return user, notFound(err, entities.ErrUserNotFound, id)
	}
	return user, nil
}

// loadManager loads the caller and requires the manager role.
func (u *Usecase) loadManager(ctx context.Context, callerID string) (entities.User, error) {
	caller, err := u.loadUser(ctx, callerID)
	if err != nil {
		return caller, err
	}
	if caller.Role != entities.RoleManager {
		return caller, entities.ErrManagerRequired
	}
	return caller, nil
}

func (u *Usecase) loadProject(ctx context.Context, id string) (entities.Project, error) {
	var project entities.Project
	if id == "" {
		return project, fmt.Errorf("%w: project id is required", entities.ErrInvalidArgument)
	}
	if err := u.repo.FindByID(ctx, entities.CollectionProjects, id, &project); err != nil {
		return project, notFound(err, entities.ErrProjectNotFound, id)
	}
	return project, nil
}

// loadOwnedProject loads a project and requires callerID to be its manager.
func (u *Usecase) loadOwnedProject(ctx context.Context, callerID, id string) (entities.Project, error) {
	project, err := u.loadProject(ctx, id)
	if err != nil {
		return project, err
	}
	if project.ManagerID != callerID {
		return project, entities.ErrNotOwner
	}
	return project, nil
}

func (u *Usecase) loadTask(ctx context.Context, id string) (entities.Task, error) {
	var task entities.Task
	if id == "" {
		return task, fmt.Errorf("%w: task id is required", entities.ErrInvalidArgument)
	}
	if err := u.repo.FindByID(ctx, entities.CollectionTasks, id, &task); err != nil {
		return task, notFound(err, entities.ErrTaskNotFound, id)
	}
	return task, nil
}

func (u *Usecase) loadTeam(ctx context.Context, id string) (entities.Team, error) {
	var team entities.Team
	if id == "" {
		return team, fmt.Errorf("%w: team id is required", entities.ErrInvalidArgument)
	}
	if err := u.repo.FindByID(ctx, entities.CollectionTeams, id, &team); err != nil {
		return team, notFound(err, entities.ErrTeamNotFound, id)
	}
	return team, nil
}

func (u *Usecase) loadReport(ctx context.Context, id string) (entities.Report, error) {
	var report entities.Report
	if id == "" {
		return report, fmt.Errorf("%w: report id is required", entities.ErrInvalidArgument)
	}
	if err := u.repo.FindByID(ctx, entities.CollectionReports, id, &report); err != nil {
		return report, notFound(err, entities.ErrReportNotFound, id)
	}
	return report, nil
}

func (u *Usecase) loadTaskUpdate(ctx context.Context, id string) (entities.TaskUpdate, error) {
	var upd entities.TaskUpdate
	if id == "" {
		return upd, fmt.Errorf("%w: task update id is required", entities.ErrInvalidArgument)
	}
	if err := u.repo.FindByID(ctx, entities.CollectionTaskUpdates, id, &upd); err != nil {
		return upd, notFound(err, entities.ErrTaskUpdateNotFound, id)
	}
	return upd, nil
}

// pullStale removes a stale back-reference. An absent parent counts as already clean.
func (u *Usecase) pullStale(ctx context.Context, coll entities.Collection, id, field, ref string) error {
	if id == "" {
		return nil
	}
	err := u.repo.PullRef(ctx, coll, id, field, ref)
	if err != nil && errors.Is(err, entities.ErrNotFound) {
		return nil
	}
	return err
}
