package db

import (
	"context"
	"fmt"
)

// schema creates the session tables. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id                    UUID PRIMARY KEY,
		name                  TEXT NOT NULL DEFAULT '',
		category              TEXT NOT NULL DEFAULT '',
		fresh_injection_ratio DOUBLE PRECISION NOT NULL,
		strategy              TEXT NOT NULL,
		avoid_liked           BOOLEAN NOT NULL DEFAULT FALSE,
		created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS session_filters (
		session_id        UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		position          INTEGER NOT NULL,
		filter_id         INTEGER NOT NULL,
		application_index INTEGER NOT NULL,
		applied_at        TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (session_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS session_likes (
		session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		item_id    TEXT NOT NULL,
		liked_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (session_id, item_id)
	)`,
	`CREATE INDEX IF NOT EXISTS sessions_updated_at_idx ON sessions (updated_at DESC)`,
}

// Migrate creates the tables if they are absent.
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
