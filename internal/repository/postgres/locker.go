package postgres

import (
	"context"
	"fmt"
	"time"

	"project-tracker/internal/entities"
	"project-tracker/internal/repository/keylock"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	advisoryLockQuery   = `SELECT pg_advisory_lock(hashtext($1))`
	advisoryUnlockQuery = `SELECT pg_advisory_unlock(hashtext($1))`
)

// Lock takes session-level advisory locks on every key, in sorted order, over a
// single pooled connection held until unlock. One call pins one connection
// regardless of how many keys it locks. It serializes across every replica sharing the database.
func (p *Postgres) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = keylock.SortedKeys(keys)

	conn, err := p.db.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire lock conn: %w", entities.ErrStore, err)
	}

	held := make([]string, 0, len(keys))
	for _, key := range keys {
		if _, err := conn.Exec(ctx, advisoryLockQuery, key); err != nil {
			p.unlock(conn, held)
			return nil, fmt.Errorf("%w: advisory lock %s: %w", entities.ErrStore, key, err)
		}
		held = append(held, key)
	}

	return func() { p.unlock(conn, held) }, nil
}

func (p *Postgres) unlock(conn *pgxpool.Conn, keys []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for i := len(keys) - 1; i >= 0; i-- {
		if _, err := conn.Exec(ctx, advisoryUnlockQuery, keys[i]); err != nil {
			p.log.Errorw("failed to release advisory lock", "error", err, "key", keys[i])
			// Closing the session drops every advisory lock it holds.
			_ = conn.Conn().Close(ctx)
			break
		}
	}
	conn.Release()
}
