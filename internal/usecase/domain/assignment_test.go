package domain

import (
	"errors"
	"sync"
	"testing"
	"time"

	"project-tracker/internal/entities"
	"project-tracker/internal/notify"
	"project-tracker/internal/repository"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAssignTaskSuccess(t *testing.T) {
	f := newFixture(t)
	f.user("m", entities.RoleManager)
	member := f.user("u", entities.RoleTeamMember)
	f.project("p", "m")
	f.task("t", "p", entities.TaskToDo, f.tomorrow())

	task, err := f.uc.AssignTask(f.ctx, "m", "t", "u")
	require.NoError(t, err)
	require.Equal(t, entities.TaskInProgress, task.Status)
	require.Equal(t, "u", task.AssignedTo)
	require.Equal(t, member.Name, task.AssignedToName)
	require.Equal(t, member.Email, task.AssignedToEmail)

	stored := f.getTask("t")
	require.Equal(t, "u", stored.AssignedTo)
	require.Equal(t, entities.TaskInProgress, stored.Status)
	require.Equal(t, []string{"t"}, f.getUser("u").Tasks)
}

func TestAssignTaskActiveConflict(t *testing.T) {
	f := newFixture(t)
	f.user("m", entities.RoleManager)
	f.user("u", entities.RoleTeamMember)
	f.project("p", "m")
	f.task("t1", "p", entities.TaskInProgress, f.tomorrow())
	f.task("t2", "p", entities.TaskToDo, f.tomorrow())

	_, err := f.uc.AssignTask(f.ctx, "m", "t1", "u")
	require.NoError(t, err)

	_, err = f.uc.AssignTask(f.ctx, "m", "t2", "u")
	require.ErrorIs(t, err, entities.ErrActiveTaskExists)
	require.ErrorIs(t, err, entities.ErrConflict)

	t2 := f.getTask("t2")
	require.Empty(t, t2.AssignedTo)
	require.Equal(t, entities.TaskToDo, t2.Status)
	require.Equal(t, []string{"t1"}, f.getUser("u").Tasks)
}

func TestAssignTaskIgnoresInactiveTasks(t *testing.T) {
	f := newFixture(t)
	f.user("m", entities.RoleManager)
	f.user("u", entities.RoleTeamMember)
	f.project("p", "m")
	f.task("done", "p", entities.TaskToDo, f.tomorrow())
	f.task("overdue", "p", entities.TaskToDo, f.now.Add(-time.Hour))
	f.task("next", "p", entities.TaskToDo, f.tomorrow())

	_, err := f.uc.AssignTask(f.ctx, "m", "done", "u")
	require.NoError(t, err)
	_, err = f.uc.UpdateTaskStatus(f.ctx, "u", "done", entities.TaskDone)
	require.NoError(t, err)

	_, err = f.uc.AssignTask(f.ctx, "m", "overdue", "u")
	require.NoError(t, err)

	_, err = f.uc.AssignTask(f.ctx, "m", "next", "u")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"done", "overdue", "next"}, f.getUser("u").Tasks)
}

func TestAssignTaskSameTaskIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.user("m", entities.RoleManager)
	f.user("u", entities.RoleTeamMember)
	f.project("p", "m")
	f.task("t", "p", entities.TaskToDo, f.tomorrow())

	_, err := f.uc.AssignTask(f.ctx, "m", "t", "u")
	require.NoError(t, err)
	_, err = f.uc.AssignTask(f.ctx, "m", "t", "u")
	require.NoError(t, err)
	require.Equal(t, []string{"t"}, f.getUser("u").Tasks)
}

func TestAssignTaskReassignUnlinksPrevious(t *testing.T) {
	f := newFixture(t)
	f.user("m", entities.RoleManager)
	f.user("u1", entities.RoleTeamMember)
	f.user("u2", entities.RoleTeamMember)
	f.project("p", "m")
	f.task("t", "p", entities.TaskToDo, f.tomorrow())

	_, err := f.uc.AssignTask(f.ctx, "m", "t", "u1")
	require.NoError(t, err)
	_, err = f.uc.AssignTask(f.ctx, "m", "t", "u2")
	require.NoError(t, err)

	require.Empty(t, f.getUser("u1").Tasks)
	require.Equal(t, []string{"t"}, f.getUser("u2").Tasks)
	require.Equal(t, "u2", f.getTask("t").AssignedTo)
}

func TestAssignTaskGuards(t *testing.T) {
	f := newFixture(t)
	f.user("m", entities.RoleManager)
	f.user("m2", entities.RoleManager)
	f.user("u", entities.RoleTeamMember)
	f.project("p", "m")
	f.task("t", "p", entities.TaskToDo, f.tomorrow())
	f.project("gone", "m")
	f.task("orphan", "gone", entities.TaskToDo, f.tomorrow())
	require.NoError(t, f.repo.Delete(f.ctx, entities.CollectionProjects, "gone"))

	cases := []struct {
		name   string
		caller string
		task   string
		target string
		want   error
	}{
		{name: "unknown caller", caller: "ghost", task: "t", target: "u", want: entities.ErrUserNotFound},
		{name: "caller not manager", caller: "u", task: "t", target: "u", want: entities.ErrForbidden},
		{name: "unknown task", caller: "m", task: "nope", target: "u", want: entities.ErrTaskNotFound},
		{name: "manager of another project", caller: "m2", task: "t", target: "u", want: entities.ErrNotOwner},
		{name: "task of a deleted project", caller: "m", task: "orphan", target: "u", want: entities.ErrProjectNotFound},
		{name: "unknown target", caller: "m", task: "t", target: "ghost", want: entities.ErrUserNotFound},
		{name: "target is manager", caller: "m", task: "t", target: "m2", want: entities.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.AssignTask(f.ctx, tc.caller, tc.task, tc.target)
			require.ErrorIs(t, err, tc.want)
		})
	}
	require.Empty(t, f.getTask("t").AssignedTo)
}

func TestAssignTaskConcurrentSingleWinner(t *testing.T) {
	f := newFixture(t)
	f.user("m", entities.RoleManager)
	f.user("u", entities.RoleTeamMember)
	f.project("p", "m")

	const n = 8
	for i := 0; i < n; i++ {
		f.task(string(rune('a'+i)), "p", entities.TaskToDo, f.tomorrow())
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := f.uc.AssignTask(f.ctx, "m", id, "u")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, entities.ErrActiveTaskExists):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(string(rune('a' + i)))
	}
	wg.Wait()

	require.Equal(t, 1, successes)
	require.Equal(t, n-1, conflicts)

	var active []entities.Task
	require.NoError(t, f.repo.Find(f.ctx, entities.CollectionTasks, repository.Filter{
		repository.Eq("assigned_to", "u"),
		repository.In("status", entities.ActiveTaskStatuses),
		repository.Gt("due_date", f.now),
	}, &active))
	require.Len(t, active, 1)
	require.Len(t, f.getUser("u").Tasks, 1)
}

func TestAssignTaskNotificationFailureIsSwallowed(t *testing.T) {
	n := &notifierMock{}
	f := newFixture(t, WithNotifier(n, time.Second))
	f.user("m", entities.RoleManager)
	member := f.user("u", entities.RoleTeamMember)
	f.project("p", "m")
	f.task("t", "p", entities.TaskToDo, f.tomorrow())

	n.On("Notify", mock.Anything, []string{member.Email}, notify.TemplateTaskAssigned, mock.Anything).
		Return(errors.New("relay down")).Once()

	task, err := f.uc.AssignTask(f.ctx, "m", "t", "u")
	require.NoError(t, err)
	require.Equal(t, "u", task.AssignedTo)

	f.uc.Wait()
	n.AssertExpectations(t)
}

func TestAssignTaskStoreErrorPropagates(t *testing.T) {
	repo := &repoMock{}
	f := newFixture(t)
	uc := New(zap.NewNop().Sugar(), f.ctx, repo, time.Second, WithClock(func() time.Time { return f.now }))

	storeErr := errors.Join(entities.ErrStore, errors.New("connection reset"))
	repo.On("FindByID", mock.Anything, entities.CollectionUsers, "m", mock.Anything).
		Run(func(args mock.Arguments) {
			*args.Get(3).(*entities.User) = entities.User{ID: "m", Role: entities.RoleManager}
		}).
		Return(nil).Once()
	repo.On("FindByID", mock.Anything, entities.CollectionTasks, "t", mock.Anything).
		Return(storeErr).Once()

	_, err := uc.AssignTask(f.ctx, "m", "t", "u")
	require.ErrorIs(t, err, entities.ErrStore)
	require.NotErrorIs(t, err, entities.ErrNotFound)

	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "Lock", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAssignTaskLockFailure(t *testing.T) {
	repo := &repoMock{}
	f := newFixture(t)
	uc := New(zap.NewNop().Sugar(), f.ctx, repo, time.Second, WithClock(func() time.Time { return f.now }))

	repo.On("FindByID", mock.Anything, entities.CollectionUsers, "m", mock.Anything).
		Run(func(args mock.Arguments) {
			*args.Get(3).(*entities.User) = entities.User{ID: "m", Role: entities.RoleManager}
		}).
		Return(nil).Once()
	repo.On("FindByID", mock.Anything, entities.CollectionTasks, "t", mock.Anything).
		Run(func(args mock.Arguments) {
			*args.Get(3).(*entities.Task) = entities.Task{ID: "t", ProjectID: "p"}
		}).
		Return(nil).Once()
	repo.On("FindByID", mock.Anything, entities.CollectionProjects, "p", mock.Anything).
		Run(func(args mock.Arguments) {
			*args.Get(3).(*entities.Project) = entities.Project{ID: "p", ManagerID: "m"}
		}).
		Return(nil).Once()
	repo.On("Lock", mock.Anything, "assign:u").Return(nil, errors.New("deadline exceeded")).Once()

	_, err := uc.AssignTask(f.ctx, "m", "t", "u")
	require.ErrorIs(t, err, entities.ErrStore)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
