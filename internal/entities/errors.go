// Package entities contains core business entities and errors.
package entities

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by the usecase layer wraps exactly one of them.
var (
	// ErrAuthentication signals a missing, malformed or expired session token or bad credentials.
	ErrAuthentication = errors.New("authentication failed")
	// ErrForbidden signals a role or ownership mismatch.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound signals that a referenced entity is absent.
	ErrNotFound = errors.New("not found")
	// ErrValidation signals malformed input or a domain rule violation.
	ErrValidation = errors.New("validation failed")
	// ErrConflict signals a uniqueness rule violation.
	ErrConflict = errors.New("conflict")
	// ErrStore signals an underlying persistence failure.
	ErrStore = errors.New("store failure")
)

var (
	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
	// ErrProjectNotFound is returned when a project does not exist.
	ErrProjectNotFound = fmt.Errorf("project %w", ErrNotFound)
	// ErrTaskNotFound is returned when a task does not exist.
	ErrTaskNotFound = fmt.Errorf("task %w", ErrNotFound)
	// ErrTeamNotFound is returned when a team does not exist.
	ErrTeamNotFound = fmt.Errorf("team %w", ErrNotFound)
	// ErrReportNotFound is returned when a report does not exist.
	ErrReportNotFound = fmt.Errorf("report %w", ErrNotFound)
	// ErrTaskUpdateNotFound is returned when a task update does not exist.
	ErrTaskUpdateNotFound = fmt.Errorf("task update %w", ErrNotFound)

	// ErrManagerRequired signals that the caller must be a manager.
	ErrManagerRequired = fmt.Errorf("%w: manager role required", ErrForbidden)
	// ErrNotOwner signals that the caller does not own the entity.
	ErrNotOwner = fmt.Errorf("%w: caller is not the owner", ErrForbidden)
	// ErrNotAssignee signals that the caller is not assigned to the task.
	ErrNotAssignee = fmt.Errorf("%w: caller is not assigned to this task", ErrForbidden)

	// ErrInvalidArgument signals failed input validation.
	ErrInvalidArgument = fmt.Errorf("%w: invalid argument", ErrValidation)
	// ErrDomainRoleMismatch signals that the email domain does not match the requested role.
	ErrDomainRoleMismatch = fmt.Errorf("%w: email domain does not match the selected role", ErrValidation)
	// ErrNotTeamMember signals that only team members can take the requested part.
	ErrNotTeamMember = fmt.Errorf("%w: user is not a team member", ErrValidation)

	// ErrActiveTaskExists signals that the team member already holds an active task.
	ErrActiveTaskExists = fmt.Errorf("%w: team member is already assigned to an active task", ErrConflict)
	// ErrAlreadyInTeam signals that the user already belongs to a team.
	ErrAlreadyInTeam = fmt.Errorf("%w: user is already a member of a team", ErrConflict)
	// ErrEmailTaken signals duplicate email registration.
	ErrEmailTaken = fmt.Errorf("%w: email already registered", ErrConflict)

	// ErrInvalidCredentials signals a failed login.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrAuthentication)
	// ErrInvalidToken signals an unusable session token.
	ErrInvalidToken = fmt.Errorf("%w: invalid or expired token", ErrAuthentication)
	// ErrMissingToken signals an absent session token.
	ErrMissingToken = fmt.Errorf("%w: authorization token is required", ErrAuthentication)
)
