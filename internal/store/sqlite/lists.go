package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"deepthink/internal/history"
	"deepthink/internal/store"
	"deepthink/internal/values"
)

func (c *Client) LoadValues(ctx context.Context) (_ []values.Value, err error) {
	start := time.Now()
	defer func() { observe("load_values", start, err) }()

	rows, err := c.db.QueryContext(ctx, `SELECT data FROM value_ratings ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("loading values: %w", err)
	}
	return scanJSONRows[values.Value](rows, "value")
}

func (c *Client) SaveValues(ctx context.Context, vals []values.Value) (err error) {
	start := time.Now()
	defer func() { observe("save_values", start, err) }()

	return c.replaceRows(ctx, `DELETE FROM value_ratings`, nil,
		`INSERT INTO value_ratings (position, data) VALUES (?, ?)`, nil,
		len(vals), func(i int) any { return vals[i] })
}

func (c *Client) LoadHistory(ctx context.Context, kind store.HistoryKind) (_ []history.Entry, err error) {
	start := time.Now()
	defer func() { observe("load_history", start, err) }()

	rows, err := c.db.QueryContext(ctx, `SELECT data FROM history WHERE kind = ? ORDER BY position`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("loading %s history: %w", kind, err)
	}
	return scanJSONRows[history.Entry](rows, "history")
}

func (c *Client) SaveHistory(ctx context.Context, kind store.HistoryKind, entries []history.Entry) (err error) {
	start := time.Now()
	defer func() { observe("save_history", start, err) }()

	return c.replaceRows(ctx, `DELETE FROM history WHERE kind = ?`, []any{string(kind)},
		`INSERT INTO history (kind, position, data) VALUES (?, ?, ?)`, []any{string(kind)},
		len(entries), func(i int) any { return entries[i] })
}

// replaceRows deletes and re-inserts an ordered list inside one transaction.
func (c *Client) replaceRows(ctx context.Context, deleteSQL string, deleteArgs []any, insertSQL string, insertPrefix []any, n int, item func(int) any) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteSQL, deleteArgs...); err != nil {
		return fmt.Errorf("clearing rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		data, err := json.Marshal(item(i))
		if err != nil {
			return fmt.Errorf("marshaling row %d: %w", i, err)
		}
		args := append(append([]any{}, insertPrefix...), i, string(data))
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func scanJSONRows[T any](rows *sql.Rows, what string) ([]T, error) {
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", what, err)
		}
		var item T
		if err := json.Unmarshal([]byte(data), &item); err != nil {
			return nil, fmt.Errorf("unmarshaling %s row: %w", what, err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s rows: %w", what, err)
	}
	return out, nil
}
