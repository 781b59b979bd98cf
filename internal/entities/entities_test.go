package entities

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDomainPolicy(t *testing.T) {
	p := NewDomainPolicy([]string{" Manager.com ", "admin.com", ""})

	require.Equal(t, RoleManager, p.RoleFor("manager.com"))
	require.Equal(t, RoleManager, p.RoleFor("ADMIN.com"))
	require.Equal(t, RoleTeamMember, p.RoleFor("corp.io"))
	require.True(t, p.Allows("corp.io", RoleTeamMember))
	require.False(t, p.Allows("corp.io", RoleManager))
	require.False(t, p.Allows("manager.com", RoleTeamMember))

	empty := NewDomainPolicy(nil)
	require.Equal(t, RoleTeamMember, empty.RoleFor("manager.com"))
}

func TestEmailHelpers(t *testing.T) {
	require.Equal(t, "ann@corp.io", NormalizeEmail("  Ann@Corp.IO "))
	require.Equal(t, "corp.io", EmailDomain("ann@corp.io"))
	require.Equal(t, "", EmailDomain("ann"))
	require.Equal(t, "", EmailDomain("@corp.io"))
	require.Equal(t, "", EmailDomain("ann@"))
}

func TestTaskIsActive(t *testing.T) {
	now := time.Now()
	tomorrow := now.Add(24 * time.Hour)

	require.True(t, Task{Status: TaskToDo, DueDate: tomorrow}.IsActive(now))
	require.True(t, Task{Status: TaskInProgress, DueDate: tomorrow}.IsActive(now))
	require.False(t, Task{Status: TaskDone, DueDate: tomorrow}.IsActive(now))
	require.False(t, Task{Status: TaskInProgress, DueDate: now.Add(-time.Minute)}.IsActive(now))
	require.False(t, Task{Status: "Blocked", DueDate: tomorrow}.IsActive(now))
}

func TestTaskAssign(t *testing.T) {
	var task Task
	task.Assign(User{ID: "u1", Name: "Ann", Email: "ann@corp.io"})
	require.Equal(t, "u1", task.AssignedTo)
	require.Equal(t, "Ann", task.AssignedToName)
	require.Equal(t, "ann@corp.io", task.AssignedToEmail)

	task.Unassign()
	require.Empty(t, task.AssignedTo)
	require.Empty(t, task.AssignedToName)
}

func TestErrorCategories(t *testing.T) {
	cases := map[error]error{
		ErrTaskNotFound:       ErrNotFound,
		ErrManagerRequired:    ErrForbidden,
		ErrDomainRoleMismatch: ErrValidation,
		ErrActiveTaskExists:   ErrConflict,
		ErrAlreadyInTeam:      ErrConflict,
		ErrInvalidToken:       ErrAuthentication,
	}
	for err, category := range cases {
		require.True(t, errors.Is(err, category), err.Error())
	}
}

func TestEnums(t *testing.T) {
	require.True(t, RoleManager.Valid())
	require.False(t, Role("admin").Valid())
	require.True(t, ProjectInProgress.Valid())
	require.False(t, ProjectStatus("Paused").Valid())
	require.True(t, PriorityCritical.Valid())
	require.False(t, PriorityLevel("Urgent").Valid())
	require.True(t, ReportTimeline.Valid())
	require.False(t, ReportType("Gantt").Valid())
}
