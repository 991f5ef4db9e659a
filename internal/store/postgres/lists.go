package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"deepthink/internal/history"
	"deepthink/internal/store"
	"deepthink/internal/values"
)

func (c *Client) LoadValues(ctx context.Context) (_ []values.Value, err error) {
	start := time.Now()
	defer func() { observe("load_values", start, err) }()

	rows, err := c.pool.Query(ctx, `SELECT data FROM value_ratings ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("loading values: %w", err)
	}
	return scanJSONRows[values.Value](rows, "value")
}

func (c *Client) SaveValues(ctx context.Context, vals []values.Value) (err error) {
	start := time.Now()
	defer func() { observe("save_values", start, err) }()

	items := make([]any, len(vals))
	for i := range vals {
		items[i] = vals[i]
	}
	return c.replaceRows(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM value_ratings`)
		return err
	}, `INSERT INTO value_ratings (position, data) VALUES ($1, $2)`, nil, items)
}

func (c *Client) LoadHistory(ctx context.Context, kind store.HistoryKind) (_ []history.Entry, err error) {
	start := time.Now()
	defer func() { observe("load_history", start, err) }()

	rows, err := c.pool.Query(ctx, `SELECT data FROM history WHERE kind = $1 ORDER BY position`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("loading %s history: %w", kind, err)
	}
	return scanJSONRows[history.Entry](rows, "history")
}

func (c *Client) SaveHistory(ctx context.Context, kind store.HistoryKind, entries []history.Entry) (err error) {
	start := time.Now()
	defer func() { observe("save_history", start, err) }()

	items := make([]any, len(entries))
	for i := range entries {
		items[i] = entries[i]
	}
	return c.replaceRows(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM history WHERE kind = $1`, string(kind))
		return err
	}, `INSERT INTO history (kind, position, data) VALUES ($1, $2, $3)`, []any{string(kind)}, items)
}

// replaceRows clears a list and re-inserts it in order inside one transaction,
// batching the inserts into a single round trip.
func (c *Client) replaceRows(ctx context.Context, clear func(pgx.Tx) error, insertSQL string, prefix []any, items []any) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := clear(tx); err != nil {
		return fmt.Errorf("clearing rows: %w", err)
	}

	batch := &pgx.Batch{}
	for i, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshaling row %d: %w", i, err)
		}
		args := append(append([]any{}, prefix...), i, data)
		batch.Queue(insertSQL, args...)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inserting rows: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
