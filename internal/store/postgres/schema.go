package postgres

import (
	"context"
	"fmt"
	"time"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	// All statements run in one implicit transaction; IF NOT EXISTS keeps
	// repeated runs idempotent.
	ddl := `
CREATE TABLE IF NOT EXISTS goals (
    id         TEXT PRIMARY KEY,
    status     TEXT NOT NULL,
    data       JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS decisions (
    id         TEXT PRIMARY KEY,
    status     TEXT NOT NULL,
    data       JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS value_ratings (
    position INTEGER PRIMARY KEY,
    data     JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS history (
    kind     TEXT NOT NULL,
    position INTEGER NOT NULL,
    data     JSONB NOT NULL,
    CONSTRAINT pk_history PRIMARY KEY (kind, position)
);

CREATE INDEX IF NOT EXISTS idx_goals_status ON goals (status, created_at);
CREATE INDEX IF NOT EXISTS idx_decisions_status ON decisions (status, created_at);
`
	start := time.Now()
	_, err := c.pool.Exec(ctx, ddl)
	observe("ensure_schema", start, err)
	if err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
