package domain

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"project-tracker/internal/entities"
	"project-tracker/internal/notify"
	"project-tracker/internal/repository"
	"project-tracker/internal/repository/memory"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	t    *testing.T
	ctx  context.Context
	uc   *Usecase
	repo *memory.Memory
	now  time.Time
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	log := zap.NewNop().Sugar()
	f := &fixture{
		t:    t,
		ctx:  context.Background(),
		repo: memory.New(log),
		now:  time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	var seq atomic.Int64
	base := []Option{
		WithClock(func() time.Time { return f.now }),
		WithIDGenerator(func() string { return fmt.Sprintf("id-%d", seq.Add(1)) }),
		WithDomainPolicy(entities.NewDomainPolicy([]string{"manager.com"})),
		WithNotifier(notify.NewLog(log), time.Second),
	}
	f.uc = New(log, f.ctx, f.repo, time.Second, append(base, opts...)...)
	t.Cleanup(f.uc.Wait)
	return f
}

func (f *fixture) user(id string, role entities.Role) entities.User {
	f.t.Helper()

	domain := "corp.io"
	if role == entities.RoleManager {
		domain = "manager.com"
	}
	u := entities.User{
		ID:          id,
		Name:        "User " + id,
		Email:       id + "@" + domain,
		EmailDomain: domain,
		Role:        role,
		Tasks:       []string{},
		CreatedAt:   f.now,
	}
	require.NoError(f.t, f.repo.Save(f.ctx, u))
	return u
}

func (f *fixture) project(id, managerID string) entities.Project {
	f.t.Helper()

	p := entities.Project{
		ID:            id,
		Name:          "Project " + id,
		Status:        entities.ProjectInProgress,
		PriorityLevel: entities.PriorityMedium,
		ManagerID:     managerID,
		TeamMembers:   []string{},
		Tasks:         []string{},
		Reports:       []string{},
		CreatedAt:     f.now,
	}
	require.NoError(f.t, f.repo.Save(f.ctx, p))
	return p
}

// task stores a task and links it into its project.
func (f *fixture) task(id, projectID string, status entities.TaskStatus, due time.Time) entities.Task {
	f.t.Helper()

	t := entities.Task{
		ID:        id,
		Title:     "Task " + id,
		Status:    status,
		ProjectID: projectID,
		DueDate:   due,
		CreatedAt: f.now,
		UpdatedAt: f.now,
	}
	require.NoError(f.t, f.repo.Save(f.ctx, t))
	require.NoError(f.t, f.repo.PushRef(f.ctx, entities.CollectionProjects, projectID, entities.FieldTasks, id))
	return t
}

func (f *fixture) tomorrow() time.Time { return f.now.Add(24 * time.Hour) }

func (f *fixture) getUser(id string) entities.User {
	f.t.Helper()
	var u entities.User
	require.NoError(f.t, f.repo.FindByID(f.ctx, entities.CollectionUsers, id, &u))
	return u
}

func (f *fixture) getProject(id string) entities.Project {
	f.t.Helper()
	var p entities.Project
	require.NoError(f.t, f.repo.FindByID(f.ctx, entities.CollectionProjects, id, &p))
	return p
}

func (f *fixture) getTask(id string) entities.Task {
	f.t.Helper()
	var t entities.Task
	require.NoError(f.t, f.repo.FindByID(f.ctx, entities.CollectionTasks, id, &t))
	return t
}

func (f *fixture) getTeam(id string) entities.Team {
	f.t.Helper()
	var t entities.Team
	require.NoError(f.t, f.repo.FindByID(f.ctx, entities.CollectionTeams, id, &t))
	return t
}

// withStore returns a usecase over repo sharing the fixture clock.
func (f *fixture) withStore(repo repository.Repository) *Usecase {
	return New(zap.NewNop().Sugar(), f.ctx, repo, time.Second,
		WithClock(func() time.Time { return f.now }),
		WithDomainPolicy(entities.NewDomainPolicy([]string{"manager.com"})),
	)
}

// pushAfterRead appends ref to field of one document right after it is first read,
// standing in for a concurrent writer.
type pushAfterRead struct {
	*memory.Memory

	coll  entities.Collection
	id    string
	field string
	ref   string
	once  sync.Once
}

func (s *pushAfterRead) FindByID(ctx context.Context, coll entities.Collection, id string, out any) error {
	err := s.Memory.FindByID(ctx, coll, id, out)
	if err == nil && coll == s.coll && id == s.id {
		s.once.Do(func() {
			_ = s.Memory.PushRef(ctx, s.coll, s.id, s.field, s.ref)
		})
	}
	return err
}

type notifierMock struct{ mock.Mock }

var _ notify.Notifier = (*notifierMock)(nil)

func (m *notifierMock) Notify(ctx context.Context, recipients []string, tmpl notify.Template, data map[string]string) error {
	args := m.Called(ctx, recipients, tmpl, data)
	return args.Error(0)
}

type repoMock struct{ mock.Mock }

var _ repository.Repository = (*repoMock)(nil)

func (m *repoMock) OnStart(_ context.Context) error { return nil }
func (m *repoMock) OnStop(_ context.Context) error  { return nil }

func (m *repoMock) FindByID(ctx context.Context, coll entities.Collection, id string, out any) error {
	args := m.Called(ctx, coll, id, out)
	return args.Error(0)
}

func (m *repoMock) FindOne(ctx context.Context, coll entities.Collection, filter repository.Filter, out any) error {
	args := m.Called(ctx, coll, filter, out)
	return args.Error(0)
}

func (m *repoMock) Find(ctx context.Context, coll entities.Collection, filter repository.Filter, out any) error {
	args := m.Called(ctx, coll, filter, out)
	return args.Error(0)
}

func (m *repoMock) Save(ctx context.Context, doc entities.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *repoMock) Delete(ctx context.Context, coll entities.Collection, id string) error {
	args := m.Called(ctx, coll, id)
	return args.Error(0)
}

func (m *repoMock) PushRef(ctx context.Context, coll entities.Collection, id, field, ref string) error {
	args := m.Called(ctx, coll, id, field, ref)
	return args.Error(0)
}

func (m *repoMock) PullRef(ctx context.Context, coll entities.Collection, id, field, ref string) error {
	args := m.Called(ctx, coll, id, field, ref)
	return args.Error(0)
}

func (m *repoMock) SetFields(ctx context.Context, coll entities.Collection, id string, fields map[string]any) error {
	args := m.Called(ctx, coll, id, fields)
	return args.Error(0)
}

func (m *repoMock) Lock(ctx context.Context, keys ...string) (func(), error) {
	callArgs := []any{ctx}
	for _, k := range keys {
		callArgs = append(callArgs, k)
	}
	args := m.Called(callArgs...)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}
