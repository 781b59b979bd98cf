// Package domain contains application Usecases orchestrating domain logic.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"project-tracker/internal/entities"
	"project-tracker/internal/repository"

	"go.uber.org/multierr"
)

const minPasswordLen = 6

// RegisterUser creates an account whose role must match the email domain policy.
func (u *Usecase) RegisterUser(ctx context.Context, in entities.Registration) (*entities.User, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	name := strings.TrimSpace(in.Name)
	email := entities.NormalizeEmail(in.Email)
	domain := entities.EmailDomain(email)
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: name is required", entities.ErrInvalidArgument)
	case domain == "":
		return nil, fmt.Errorf("%w: a valid email is required", entities.ErrInvalidArgument)
	case len(in.Password) < minPasswordLen:
		return nil, fmt.Errorf("%w: password must be at least %d characters", entities.ErrInvalidArgument, minPasswordLen)
	case !in.Role.Valid():
		return nil, fmt.Errorf("%w: unknown role %q", entities.ErrInvalidArgument, in.Role)
	case !u.policy.Allows(domain, in.Role):
		return nil, entities.ErrDomainRoleMismatch
	}

	var existing entities.User
	err := u.repo.FindOne(ctx, entities.CollectionUsers, repository.Filter{repository.Eq("email", email)}, &existing)
	switch {
	case err == nil:
		return nil, entities.ErrEmailTaken
	case !errors.Is(err, entities.ErrNotFound):
		return nil, err
	}

	digest, err := u.hasher.Hash(in.Password)
	if err != nil {
		u.log.Errorw("failed to hash password", "error", err)
		return nil, fmt.Errorf("%w: %w", entities.ErrStore, err)
	}

	now := u.now().UTC()
	user := entities.User{
		ID:           u.newID(),
		Name:         name,
		Email:        email,
		EmailDomain:  domain,
		Role:         in.Role,
		PasswordHash: digest,
		Tasks:        []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.repo.Save(ctx, user); err != nil {
		if errors.Is(err, entities.ErrConflict) {
			return nil, entities.ErrEmailTaken
		}
		return nil, err
	}

	u.log.Infow("user registered", "user_id", user.ID, "role", user.Role)
	return &user, nil
}

// RegisterManager registers an account with the manager role.
func (u *Usecase) RegisterManager(ctx context.Context, in entities.Registration) (*entities.User, error) {
	in.Role = entities.RoleManager
	return u.RegisterUser(ctx, in)
}

// RegisterTeamMember registers an account with the team member role.
func (u *Usecase) RegisterTeamMember(ctx context.Context, in entities.Registration) (*entities.User, error) {
	in.Role = entities.RoleTeamMember
	return u.RegisterUser(ctx, in)
}

// Login verifies credentials and issues a session token. An empty role accepts any role.
func (u *Usecase) Login(ctx context.Context, email, password string, role entities.Role) (*entities.Session, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if u.tokens == nil {
		return nil, fmt.Errorf("%w: token issuer is not configured", entities.ErrStore)
	}
	email = entities.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", entities.ErrInvalidArgument)
	}

	var user entities.User
	if err := u.repo.FindOne(ctx, entities.CollectionUsers, repository.Filter{repository.Eq("email", email)}, &user); err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return nil, entities.ErrInvalidCredentials
		}
		return nil, err
	}
	if role != "" && user.Role != role {
		return nil, entities.ErrInvalidCredentials
	}
	if !u.hasher.Verify(password, user.PasswordHash) {
		return nil, entities.ErrInvalidCredentials
	}

	token, err := u.tokens.Issue(entities.Identity{ID: user.ID, Role: user.Role, EmailDomain: user.EmailDomain}, u.tokenTTL)
	if err != nil {
		u.log.Errorw("failed to issue token", "error", err, "user_id", user.ID)
		return nil, fmt.Errorf("%w: %w", entities.ErrStore, err)
	}

	return &entities.Session{Token: token, ExpiresAt: u.now().UTC().Add(u.tokenTTL), User: user}, nil
}

// Profile returns the caller's own account.
func (u *Usecase) Profile(ctx context.Context, callerID string) (*entities.User, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	user, err := u.loadUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns every account, optionally restricted to role. Managers only.
func (u *Usecase) ListUsers(ctx context.Context, callerID string, role entities.Role) ([]entities.User, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if _, err := u.loadManager(ctx, callerID); err != nil {
		return nil, err
	}
	var filter repository.Filter
	if role != "" {
		if !role.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", entities.ErrInvalidArgument, role)
		}
		filter = append(filter, repository.Eq("role", string(role)))
	}

	users := []entities.User{}
	if err := u.repo.Find(ctx, entities.CollectionUsers, filter, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateProfile changes name or email of targetID. Allowed for the user themself or any manager.
// Tasks assigned to the user get their assignee snapshot refreshed.
func (u *Usecase) UpdateProfile(ctx context.Context, callerID, targetID string, patch entities.UserPatch) (*entities.User, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	caller, err := u.loadUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if targetID == "" {
		targetID = callerID
	}
	if caller.ID != targetID && caller.Role != entities.RoleManager {
		return nil, entities.ErrNotOwner
	}
	user, err := u.loadUser(ctx, targetID)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]any)
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", entities.ErrInvalidArgument)
		}
		if name != user.Name {
			fields["name"] = name
		}
		user.Name = name
	}
	if patch.Email != nil {
		email := entities.NormalizeEmail(*patch.Email)
		domain := entities.EmailDomain(email)
		if domain == "" {
			return nil, fmt.Errorf("%w: a valid email is required", entities.ErrInvalidArgument)
		}
		if !u.policy.Allows(domain, user.Role) {
			return nil, entities.ErrDomainRoleMismatch
		}
		if email != user.Email {
			fields["email"] = email
			fields["email_domain"] = domain
		}
		user.Email = email
		user.EmailDomain = domain
	}
	if len(fields) == 0 {
		return &user, nil
	}

	user.UpdatedAt = u.now().UTC()
	fields[entities.FieldUpdatedAt] = user.UpdatedAt
	if err := u.repo.SetFields(ctx, entities.CollectionUsers, user.ID, fields); err != nil {
		if errors.Is(err, entities.ErrConflict) {
			return nil, entities.ErrEmailTaken
		}
		return nil, err
	}

	if err := u.resyncAssignee(ctx, user); err != nil {
		u.log.Errorw("failed to resync assignee snapshot", "error", err, "user_id", user.ID)
	}
	return &user, nil
}

// resyncAssignee rewrites the denormalised name and email on every task assigned to user.
func (u *Usecase) resyncAssignee(ctx context.Context, user entities.User) error {
	var tasks []entities.Task
	if err := u.repo.Find(ctx, entities.CollectionTasks, repository.Filter{repository.Eq("assigned_to", user.ID)}, &tasks); err != nil {
		return err
	}
	var errs error
	for _, t := range tasks {
		if t.AssignedToName == user.Name && t.AssignedToEmail == user.Email {
			continue
		}
		t.Assign(user)
		errs = multierr.Append(errs, u.repo.Save(ctx, t))
	}
	return errs
}

// DeleteUser removes an account. Managers only. Team, project and task references are cleared best effort.
func (u *Usecase) DeleteUser(ctx context.Context, callerID, targetID string) error {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if _, err := u.loadManager(ctx, callerID); err != nil {
		return err
	}
	user, err := u.loadUser(ctx, targetID)
	if err != nil {
		return err
	}
	if err := u.repo.Delete(ctx, entities.CollectionUsers, user.ID); err != nil {
		return notFound(err, entities.ErrUserNotFound, user.ID)
	}

	errs := u.pullStale(ctx, entities.CollectionTeams, user.TeamID, entities.FieldMembers, user.ID)

	var projects []entities.Project
	if err := u.repo.Find(ctx, entities.CollectionProjects, repository.Filter{repository.Has(entities.FieldTeamMembers, user.ID)}, &projects); err != nil {
		errs = multierr.Append(errs, err)
	}
	for _, p := range projects {
		errs = multierr.Append(errs, u.pullStale(ctx, entities.CollectionProjects, p.ID, entities.FieldTeamMembers, user.ID))
	}

	var tasks []entities.Task
	if err := u.repo.Find(ctx, entities.CollectionTasks, repository.Filter{repository.Eq("assigned_to", user.ID)}, &tasks); err != nil {
		errs = multierr.Append(errs, err)
	}
	for _, t := range tasks {
		t.Unassign()
		t.UpdatedAt = u.now().UTC()
		errs = multierr.Append(errs, u.repo.Save(ctx, t))
	}

	if errs != nil {
		u.log.Warnw("user deleted with dangling references", "error", errs, "user_id", user.ID)
	}
	u.log.Infow("user deleted", "user_id", user.ID, "by", callerID)
	return nil
}
