// Package postgres implements the document store against PostgreSQL JSONB tables.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"project-tracker/config"
	"project-tracker/internal/entities"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

const tableExistsQuery = `SELECT to_regclass($1) IS NOT NULL`

// Postgres stores one JSONB table per collection behind a pgx pool.
type Postgres struct {
	baseCtx context.Context
	log     *zap.SugaredLogger
	db      *pgxpool.Pool
	cfg     config.PostgresConfig
}

// New creates a Postgres repository instance.
func New(ctx context.Context, log *zap.SugaredLogger, cfg *config.Config) *Postgres {
	return &Postgres{
		baseCtx: ctx,
		log:     log.Named("repo.postgres"),
		cfg:     cfg.Postgres,
	}
}

// OnStart migrates the schema, opens the pool and checks every collection table exists.
func (p *Postgres) OnStart(_ context.Context) error {
	version, err := p.migrate()
	if err != nil {
		return err
	}

	poolCfg, err := pgxpool.ParseConfig(p.cfg.DSN())
	if err != nil {
		return fmt.Errorf("parse pool config: %w", err)
	}
	poolCfg.MaxConns = p.cfg.MaxConns
	poolCfg.MinConns = p.cfg.MinConns

	connectCtx, cancel := context.WithTimeout(p.baseCtx, p.cfg.QueryTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return fmt.Errorf("ping pool: %w", err)
	}
	for _, coll := range entities.Collections {
		var ok bool
		if err := pool.QueryRow(connectCtx, tableExistsQuery, tables[coll]).Scan(&ok); err != nil {
			pool.Close()
			return fmt.Errorf("check table %s: %w", coll, err)
		}
		if !ok {
			pool.Close()
			return fmt.Errorf("table %s is missing after migration", coll)
		}
	}

	p.db = pool
	p.log.Infow("postgres ready", "host", p.cfg.Host, "port", p.cfg.Port, "schema_version", version)
	return nil
}

// migrate applies goose migrations over a short-lived database/sql handle.
func (p *Postgres) migrate() (int64, error) {
	sqlDB, err := sql.Open("postgres", p.cfg.DSN())
	if err != nil {
		return 0, fmt.Errorf("open sql: %w", err)
	}
	defer func() { _ = sqlDB.Close() }()

	ctx, cancel := context.WithTimeout(p.baseCtx, p.cfg.MigrateTimeout)
	defer cancel()

	if err := goose.SetDialect("postgres"); err != nil {
		return 0, fmt.Errorf("migrate dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, p.cfg.MigrationsDir); err != nil {
		return 0, fmt.Errorf("migrate: %w", err)
	}
	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return 0, fmt.Errorf("migrate version: %w", err)
	}
	return version, nil
}

// OnStop closes pool connections.
func (p *Postgres) OnStop(_ context.Context) error {
	if p.db != nil {
		p.db.Close()
		p.db = nil
	}
	return nil
}
