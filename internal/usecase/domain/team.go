package domain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"project-tracker/internal/entities"
	"project-tracker/internal/repository"

	"go.uber.org/multierr"
)

func teamLockKey(userID string) string { return "team:" + userID }

// CreateTeam creates a team owned by the calling manager. Initial members must not belong to another team.
func (u *Usecase) CreateTeam(ctx context.Context, callerID string, team entities.Team) (*entities.Team, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	caller, err := u.loadManager(ctx, callerID)
	if err != nil {
		return nil, err
	}
	team.Name = strings.TrimSpace(team.Name)
	if team.Name == "" {
		u.log.Errorw("failed to create team: missing name")
		return nil, fmt.Errorf("%w: team name is required", entities.ErrInvalidArgument)
	}

	now := u.now().UTC()
	team.ID = u.newID()
	team.ManagerID = caller.ID
	team.CreatedAt = now
	team.UpdatedAt = now

	candidates := uniqueSorted(team.Members)
	keys := make([]string, 0, len(candidates))
	for _, id := range candidates {
		keys = append(keys, teamLockKey(id))
	}
	if len(keys) > 0 {
		release, err := u.repo.Lock(ctx, keys...)
		if err != nil {
			return nil, fmt.Errorf("%w: acquire membership lock: %w", entities.ErrStore, err)
		}
		defer release()
	}

	team.Members = []string{}
	var members []entities.User
	for _, id := range candidates {
		user, err := u.checkTeamCandidate(ctx, team.ID, id)
		if err != nil {
			return nil, err
		}
		team.Members = append(team.Members, user.ID)
		members = append(members, user)
	}

	if err := u.repo.Save(ctx, team); err != nil {
		return nil, err
	}
	for _, user := range members {
		if err := u.setUserTeam(ctx, user, team.ID); err != nil {
			u.log.Errorw("team created but member not linked", "error", err, "team_id", team.ID, "user_id", user.ID)
			return nil, fmt.Errorf("link member %s: %w", user.ID, err)
		}
	}

	u.log.Infow("team created", "team_id", team.ID, "members", len(team.Members))
	return &team, nil
}

// checkTeamCandidate loads userID and rejects it when it belongs to a team other than teamID.
func (u *Usecase) checkTeamCandidate(ctx context.Context, teamID, userID string) (entities.User, error) {
	user, err := u.loadUser(ctx, userID)
	if err != nil {
		return user, err
	}

	var teams []entities.Team
	if err := u.repo.Find(ctx, entities.CollectionTeams, repository.Filter{repository.Has(entities.FieldMembers, user.ID)}, &teams); err != nil {
		return user, err
	}
	for _, t := range teams {
		if t.ID != teamID {
			return user, fmt.Errorf("%w: %s is in team %s", entities.ErrAlreadyInTeam, user.ID, t.ID)
		}
	}
	return user, nil
}

func (u *Usecase) setUserTeam(ctx context.Context, user entities.User, teamID string) error {
	if user.TeamID == teamID {
		return nil
	}
	return u.setTeamField(ctx, user.ID, teamID)
}

func (u *Usecase) setTeamField(ctx context.Context, userID, teamID string) error {
	return u.repo.SetFields(ctx, entities.CollectionUsers, userID, map[string]any{
		entities.FieldTeam:      teamID,
		entities.FieldUpdatedAt: u.now().UTC(),
	})
}

// UpdateTeam changes name or description of a team owned by the caller.
func (u *Usecase) UpdateTeam(ctx context.Context, callerID, teamID string, patch entities.TeamPatch) (*entities.Team, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	team, err := u.loadOwnedTeam(ctx, callerID, teamID)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{entities.FieldUpdatedAt: u.now().UTC()}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: team name must not be empty", entities.ErrInvalidArgument)
		}
		fields["name"] = name
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if err := u.repo.SetFields(ctx, entities.CollectionTeams, team.ID, fields); err != nil {
		return nil, notFound(err, entities.ErrTeamNotFound, team.ID)
	}
	team, err = u.loadTeam(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// DeleteTeam removes a team owned by the caller and clears its members' team reference best effort.
func (u *Usecase) DeleteTeam(ctx context.Context, callerID, teamID string) error {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	team, err := u.loadOwnedTeam(ctx, callerID, teamID)
	if err != nil {
		return err
	}
	if err := u.repo.Delete(ctx, entities.CollectionTeams, team.ID); err != nil {
		return notFound(err, entities.ErrTeamNotFound, team.ID)
	}

	var errs error
	for _, id := range team.Members {
		errs = multierr.Append(errs, u.clearUserTeam(ctx, id, team.ID))
	}
	if errs != nil {
		u.log.Warnw("team deleted with stale member references", "error", errs, "team_id", team.ID)
	}
	return nil
}

// AddTeamMember adds userID to a team owned by the caller. Membership in another team is a conflict.
func (u *Usecase) AddTeamMember(ctx context.Context, callerID, teamID, userID string) (*entities.Team, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	team, err := u.loadOwnedTeam(ctx, callerID, teamID)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", entities.ErrInvalidArgument)
	}

	release, err := u.repo.Lock(ctx, teamLockKey(userID))
	if err != nil {
		return nil, fmt.Errorf("%w: acquire membership lock: %w", entities.ErrStore, err)
	}
	defer release()

	user, err := u.checkTeamCandidate(ctx, team.ID, userID)
	if err != nil {
		return nil, err
	}
	if err := u.repo.PushRef(ctx, entities.CollectionTeams, team.ID, entities.FieldMembers, user.ID); err != nil {
		return nil, notFound(err, entities.ErrTeamNotFound, team.ID)
	}
	if err := u.setUserTeam(ctx, user, team.ID); err != nil {
		u.log.Errorw("member added but user not linked", "error", err, "team_id", team.ID, "user_id", user.ID)
		return nil, fmt.Errorf("link member %s: %w", user.ID, err)
	}

	team, err = u.loadTeam(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// RemoveTeamMember removes userID from a team owned by the caller.
func (u *Usecase) RemoveTeamMember(ctx context.Context, callerID, teamID, userID string) (*entities.Team, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	team, err := u.loadOwnedTeam(ctx, callerID, teamID)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", entities.ErrInvalidArgument)
	}
	if err := u.repo.PullRef(ctx, entities.CollectionTeams, team.ID, entities.FieldMembers, userID); err != nil {
		return nil, notFound(err, entities.ErrTeamNotFound, team.ID)
	}
	if err := u.clearUserTeam(ctx, userID, team.ID); err != nil {
		u.log.Warnw("member removed but user still references team", "error", err, "team_id", team.ID, "user_id", userID)
	}

	team, err = u.loadTeam(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// GetTeam returns a team by id.
func (u *Usecase) GetTeam(ctx context.Context, teamID string) (*entities.Team, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	team, err := u.loadTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// ListTeams returns all teams.
func (u *Usecase) ListTeams(ctx context.Context) ([]entities.Team, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	teams := []entities.Team{}
	if err := u.repo.Find(ctx, entities.CollectionTeams, nil, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (u *Usecase) loadOwnedTeam(ctx context.Context, callerID, teamID string) (entities.Team, error) {
	if _, err := u.loadManager(ctx, callerID); err != nil {
		return entities.Team{}, err
	}
	team, err := u.loadTeam(ctx, teamID)
	if err != nil {
		return team, err
	}
	if team.ManagerID != callerID {
		return team, entities.ErrNotOwner
	}
	return team, nil
}

// clearUserTeam drops the team reference of userID if it still points at teamID.
func (u *Usecase) clearUserTeam(ctx context.Context, userID, teamID string) error {
	user, err := u.loadUser(ctx, userID)
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return nil
		}
		return err
	}
	if user.TeamID != teamID {
		return nil
	}
	return u.setTeamField(ctx, user.ID, "")
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	res := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		res = append(res, id)
	}
	sort.Strings(res)
	return res
}
