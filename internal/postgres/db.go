package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &DB{Pool: pool}, nil
}

func (d *DB) Close() {
	d.Pool.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS rooms (
		id               text PRIMARY KEY,
		name             text NOT NULL,
		description      text NOT NULL DEFAULT '',
		owner_id         text NOT NULL,
		room_type        text NOT NULL DEFAULT 'public',
		max_participants bigint NOT NULL DEFAULT 50,
		features         jsonb NOT NULL DEFAULT '{}',
		playlist         jsonb NOT NULL DEFAULT '[]',
		language         text NOT NULL DEFAULT 'javascript',
		is_active        boolean NOT NULL DEFAULT true,
		created_at       timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS rooms_active_created_idx ON rooms (created_at DESC, id DESC) WHERE is_active`,
	`CREATE TABLE IF NOT EXISTS room_participants (
		room_id   text NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
		user_id   text NOT NULL,
		role      text NOT NULL DEFAULT 'participant',
		joined_at timestamptz NOT NULL DEFAULT now(),
		PRIMARY KEY (room_id, user_id)
	)`,
}

// Migrate creates the tables if they do not exist.
func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := d.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
