package postgres

import (
	"context"
	"database/sql"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"project-tracker/config"
	"project-tracker/internal/entities"
	"project-tracker/internal/repository"

	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRepositoryIntegration(t *testing.T) {
	ctx := context.Background()

	cfg, cleanup := setupPostgres(t)
	t.Cleanup(cleanup)

	repo := New(ctx, testLogger(t), cfg)
	require.NoError(t, repo.OnStart(ctx))
	t.Cleanup(func() { _ = repo.OnStop(ctx) })

	now := time.Now().UTC().Truncate(time.Millisecond)
	project := entities.Project{ID: "p1", Name: "Apollo", ManagerID: "m1", Budget: 1000, Tasks: []string{}, TeamMembers: []string{}, Reports: []string{}, CreatedAt: now}
	require.NoError(t, repo.Save(ctx, project))

	task := entities.Task{ID: "t1", Title: "Design", Status: entities.TaskInProgress, ProjectID: "p1", AssignedTo: "u1", DueDate: now.Add(24 * time.Hour), CreatedAt: now}
	require.NoError(t, repo.Save(ctx, task))

	var fetched entities.Task
	require.NoError(t, repo.FindByID(ctx, entities.CollectionTasks, "t1", &fetched))
	require.Equal(t, task.Title, fetched.Title)
	require.True(t, task.DueDate.Equal(fetched.DueDate))

	require.NoError(t, repo.PushRef(ctx, entities.CollectionProjects, "p1", entities.FieldTasks, "t1"))
	require.NoError(t, repo.PushRef(ctx, entities.CollectionProjects, "p1", entities.FieldTasks, "t1"))

	var p entities.Project
	require.NoError(t, repo.FindByID(ctx, entities.CollectionProjects, "p1", &p))
	require.Equal(t, []string{"t1"}, p.Tasks)

	var active []entities.Task
	require.NoError(t, repo.Find(ctx, entities.CollectionTasks, repository.Filter{
		repository.Eq("assigned_to", "u1"),
		repository.In("status", entities.ActiveTaskStatuses),
		repository.Gt("due_date", now),
	}, &active))
	require.Len(t, active, 1)

	require.NoError(t, repo.PullRef(ctx, entities.CollectionProjects, "p1", entities.FieldTasks, "t1"))
	require.NoError(t, repo.FindByID(ctx, entities.CollectionProjects, "p1", &p))
	require.Empty(t, p.Tasks)

	require.NoError(t, repo.PushRef(ctx, entities.CollectionProjects, "p1", entities.FieldTasks, "t9"))
	require.NoError(t, repo.SetFields(ctx, entities.CollectionProjects, "p1", map[string]any{"name": "Apollo 2", "budget": 2000.5}))
	require.NoError(t, repo.FindByID(ctx, entities.CollectionProjects, "p1", &p))
	require.Equal(t, "Apollo 2", p.Name)
	require.Equal(t, 2000.5, p.Budget)
	require.Equal(t, []string{"t9"}, p.Tasks)
	require.ErrorIs(t, repo.SetFields(ctx, entities.CollectionProjects, "nope", map[string]any{"name": "x"}), entities.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, entities.CollectionTasks, "t1"))
	require.ErrorIs(t, repo.FindByID(ctx, entities.CollectionTasks, "t1", &fetched), entities.ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, entities.CollectionTasks, "t1"), entities.ErrNotFound)
	require.ErrorIs(t, repo.PushRef(ctx, entities.CollectionProjects, "nope", entities.FieldTasks, "t1"), entities.ErrNotFound)
}

func TestUniqueEmailIntegration(t *testing.T) {
	ctx := context.Background()

	cfg, cleanup := setupPostgres(t)
	t.Cleanup(cleanup)

	repo := New(ctx, testLogger(t), cfg)
	require.NoError(t, repo.OnStart(ctx))
	t.Cleanup(func() { _ = repo.OnStop(ctx) })

	require.NoError(t, repo.Save(ctx, entities.User{ID: "u1", Email: "a@corp.io", Tasks: []string{}}))
	err := repo.Save(ctx, entities.User{ID: "u2", Email: "a@corp.io", Tasks: []string{}})
	require.ErrorIs(t, err, entities.ErrConflict)

	var team entities.Team
	require.NoError(t, repo.Save(ctx, entities.Team{ID: "team1", Members: []string{"u1"}}))
	require.NoError(t, repo.FindOne(ctx, entities.CollectionTeams, repository.Filter{repository.Has(entities.FieldMembers, "u1")}, &team))
	require.Equal(t, "team1", team.ID)
}

func TestAdvisoryLockIntegration(t *testing.T) {
	ctx := context.Background()

	cfg, cleanup := setupPostgres(t)
	t.Cleanup(cleanup)

	repo := New(ctx, testLogger(t), cfg)
	require.NoError(t, repo.OnStart(ctx))
	t.Cleanup(func() { _ = repo.OnStop(ctx) })

	unlock, err := repo.Lock(ctx, "assign:u1")
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	_, err = repo.Lock(waitCtx, "assign:u1")
	require.Error(t, err)

	unlock()
	unlock2, err := repo.Lock(ctx, "assign:u1")
	require.NoError(t, err)
	unlock2()
}

func TestMultiKeyLockUsesOneConnection(t *testing.T) {
	ctx := context.Background()

	cfg, cleanup := setupPostgres(t)
	t.Cleanup(cleanup)

	repo := New(ctx, testLogger(t), cfg)
	require.NoError(t, repo.OnStart(ctx))
	t.Cleanup(func() { _ = repo.OnStop(ctx) })

	keys := make([]string, 0, 3*cfg.Postgres.MaxConns)
	for i := 0; i < cap(keys); i++ {
		keys = append(keys, "team:u"+strconv.Itoa(i))
	}
	unlock, err := repo.Lock(ctx, keys...)
	require.NoError(t, err)

	// The pool must still serve queries while more keys than connections are held.
	queryCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, repo.Save(queryCtx, entities.User{ID: "u1", Email: "u1@corp.io", Tasks: []string{}}))
	var user entities.User
	require.NoError(t, repo.FindByID(queryCtx, entities.CollectionUsers, "u1", &user))

	waitCtx, cancelWait := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancelWait()
	_, err = repo.Lock(waitCtx, keys[len(keys)-1])
	require.Error(t, err)

	unlock()
	again, err := repo.Lock(ctx, keys[0], keys[len(keys)-1])
	require.NoError(t, err)
	again()
}

func setupPostgres(t *testing.T) (*config.Config, func()) {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_PASSWORD=postgres",
			"POSTGRES_USER=postgres",
			"POSTGRES_DB=project_tracker_db",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
	})
	require.NoError(t, err)

	hostPort := resource.GetPort("5432/tcp")

	port, err := strconv.Atoi(hostPort)
	require.NoError(t, err)
	migrationsDir, err := filepath.Abs(filepath.Join("..", "..", "..", "db", "migrations"))
	require.NoError(t, err)
	require.DirExists(t, migrationsDir)

	cfg := &config.Config{
		Server: config.ServerConfig{Host: "0.0.0.0", Port: 8080, ShutdownTimeout: 5 * time.Second},
		HTTP:   config.HTTPConfig{RequestTimeout: 5 * time.Second},
		Store:  config.StoreConfig{Backend: config.BackendPostgres},
		Postgres: config.PostgresConfig{
			Host:           "localhost",
			Port:           port,
			User:           "postgres",
			Password:       "postgres",
			DBName:         "project_tracker_db",
			SSLMode:        "disable",
			MigrationsDir:  migrationsDir,
			QueryTimeout:   10 * time.Second,
			MigrateTimeout: 20 * time.Second,
			MaxConns:       4,
			MinConns:       1,
		},
	}

	require.NoError(t, pool.Retry(func() error {
		db, err := sql.Open("postgres", "host=localhost port="+hostPort+" user=postgres password=postgres dbname=project_tracker_db sslmode=disable")
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		return db.Ping()
	}))

	cleanup := func() {
		_ = pool.Purge(resource)
	}

	return cfg, cleanup
}

func testLogger(t *testing.T) *zap.SugaredLogger {
	t.Helper()

	l, _ := zap.NewDevelopment()
	t.Cleanup(func() { _ = l.Sync() })
	return l.Sugar()
}
