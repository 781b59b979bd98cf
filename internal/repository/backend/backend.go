// Package backend provides the factory for repositories.
package backend

import (
	"context"
	"fmt"

	"project-tracker/config"
	"project-tracker/internal/repository"
	"project-tracker/internal/repository/memory"
	"project-tracker/internal/repository/mongo"
	"project-tracker/internal/repository/postgres"

	"go.uber.org/zap"
)

var (
	_ repository.Repository = (*postgres.Postgres)(nil)
	_ repository.Repository = (*mongo.Mongo)(nil)
	_ repository.Repository = (*memory.Memory)(nil)
)

// New constructs repository backend by name.
func New(ctx context.Context, name string, log *zap.SugaredLogger, cfg *config.Config) (repository.Repository, error) {
	switch name {
	case config.BackendPostgres:
		return postgres.New(ctx, log, cfg), nil
	case config.BackendMongo:
		return mongo.New(ctx, log, cfg), nil
	case config.BackendMemory:
		return memory.New(log), nil
	default:
		return nil, fmt.Errorf("unknown repo backend: %s", name)
	}
}
