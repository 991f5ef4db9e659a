package sqlite

import (
	"context"
	"fmt"
	"time"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS goals (
		id         TEXT PRIMARY KEY,
		status     TEXT NOT NULL,
		data       TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS decisions (
		id         TEXT PRIMARY KEY,
		status     TEXT NOT NULL,
		data       TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS value_ratings (
		position INTEGER PRIMARY KEY,
		data     TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS history (
		kind     TEXT NOT NULL,
		position INTEGER NOT NULL,
		data     TEXT NOT NULL,
		PRIMARY KEY (kind, position)
	);

	CREATE INDEX IF NOT EXISTS idx_goals_status ON goals (status, created_at);
	CREATE INDEX IF NOT EXISTS idx_decisions_status ON decisions (status, created_at);
	`
	start := time.Now()
	_, err := c.db.ExecContext(ctx, ddl)
	observe("ensure_schema", start, err)
	if err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
