package domain

import (
	"errors"
	"testing"
	"time"

	"project-tracker/internal/entities"
	"project-tracker/internal/notify"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateProject(t *testing.T) {
	n := &notifierMock{}
	f := newFixture(t, WithNotifier(n, time.Second))
	f.user("m", entities.RoleManager)
	member := f.user("u", entities.RoleTeamMember)

	_, err := f.uc.CreateProject(f.ctx, "u", entities.Project{Name: "Apollo"})
	require.ErrorIs(t, err, entities.ErrManagerRequired)

	for name, p := range map[string]entities.Project{
		"no name":         {},
		"negative budget": {Name: "A", Budget: -1},
		"negative spend":  {Name: "A", Expenses: -1},
		"bad status":      {Name: "A", Status: "Paused"},
		"bad priority":    {Name: "A", PriorityLevel: "Urgent"},
	} {
		_, err := f.uc.CreateProject(f.ctx, "m", p)
		require.ErrorIs(t, err, entities.ErrValidation, name)
	}

	_, err = f.uc.CreateProject(f.ctx, "m", entities.Project{Name: "A", TeamMembers: []string{"m"}})
	require.ErrorIs(t, err, entities.ErrNotTeamMember)

	n.On("Notify", mock.Anything, []string{member.Email}, notify.TemplateProjectCreated, map[string]string{"project": "Apollo"}).
		Return(errors.New("relay down")).Once()

	p, err := f.uc.CreateProject(f.ctx, "m", entities.Project{Name: "Apollo", Budget: 1000, TeamMembers: []string{"u", "u"}})
	require.NoError(t, err)
	require.Equal(t, entities.ProjectNotStarted, p.Status)
	require.Equal(t, entities.PriorityMedium, p.PriorityLevel)
	require.Equal(t, "m", p.ManagerID)
	require.Equal(t, []string{"u"}, p.TeamMembers)
	require.Empty(t, p.Tasks)
	require.True(t, f.now.Equal(p.StartDate))

	f.uc.Wait()
	n.AssertExpectations(t)
}

func TestUpdateAndDeleteProjectOwnership(t *testing.T) {
	f := newFixture(t)
	f.user("m", entities.RoleManager)
	f.user("other", entities.RoleManager)
	f.project("p", "m")
	f.task("t", "p", entities.TaskToDo, f.tomorrow())

	_, err := f.uc.UpdateProject(f.ctx, "other", "p", entities.ProjectPatch{Name: ptr("Mine")})
	require.ErrorIs(t, err, entities.ErrNotOwner)
	_, err = f.uc.UpdateProject(f.ctx, "m", "p", entities.ProjectPatch{Budget: ptr(-5.0)})
	require.ErrorIs(t, err, entities.ErrValidation)

	status := entities.ProjectCompleted
	p, err := f.uc.UpdateProject(f.ctx, "m", "p", entities.ProjectPatch{Name: ptr("Apollo 2"), Status: &status, Expenses: ptr(10.0)})
	require.NoError(t, err)
	require.Equal(t, "Apollo 2", p.Name)
	require.Equal(t, entities.ProjectCompleted, p.Status)
	require.Equal(t, []string{"t"}, p.Tasks)

	require.ErrorIs(t, f.uc.DeleteProject(f.ctx, "other", "p"), entities.ErrNotOwner)
	require.NoError(t, f.uc.DeleteProject(f.ctx, "m", "p"))
	_, err = f.uc.GetProject(f.ctx, "p")
	require.ErrorIs(t, err, entities.ErrProjectNotFound)
	require.Equal(t, "p", f.getTask("t").ProjectID)
}

func TestProjectMembers(t *testing.T) {
	f := newFixture(t)
	f.user("m", entities.RoleManager)
	f.user("u", entities.RoleTeamMember)
	f.project("p", "m")
	f.project("q", "m")

	_, err := f.uc.AddProjectMember(f.ctx, "m", "p", "m")
	require.ErrorIs(t, err, entities.ErrNotTeamMember)
	_, err = f.uc.AddProjectMember(f.ctx, "m", "p", "ghost")
	require.ErrorIs(t, err, entities.ErrUserNotFound)

	p, err := f.uc.AddProjectMember(f.ctx, "m", "p", "u")
	require.NoError(t, err)
	require.Equal(t, []string{"u"}, p.TeamMembers)
	p, err = f.uc.AddProjectMember(f.ctx, "m", "p", "u")
	require.NoError(t, err)
	require.Equal(t, []string{"u"}, p.TeamMembers)

	mine, err := f.uc.ListProjects(f.ctx, "m")
	require.NoError(t, err)
	require.Len(t, mine, 2)

	p, err = f.uc.RemoveProjectMember(f.ctx, "m", "p", "u")
	require.NoError(t, err)
	require.Empty(t, p.TeamMembers)
}

func TestUpdateProjectKeepsConcurrentRefs(t *testing.T) {
	f := newFixture(t)
	f.user("m", entities.RoleManager)
	f.project("p", "m")
	f.task("t1", "p", entities.TaskToDo, f.tomorrow())

	store := &pushAfterRead{Memory: f.repo, coll: entities.CollectionProjects, id: "p", field: entities.FieldTasks, ref: "t2"}
	uc := f.withStore(store)

	p, err := uc.UpdateProject(f.ctx, "m", "p", entities.ProjectPatch{Name: ptr("Renamed"), Budget: ptr(50.0)})
	require.NoError(t, err)
	require.Equal(t, "Renamed", p.Name)
	require.Equal(t, []string{"t1", "t2"}, p.Tasks)

	stored := f.getProject("p")
	require.Equal(t, "Renamed", stored.Name)
	require.Equal(t, 50.0, stored.Budget)
	require.Equal(t, []string{"t1", "t2"}, stored.Tasks)
	require.True(t, f.now.Equal(stored.UpdatedAt))
}
