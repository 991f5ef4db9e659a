package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"deepthink/internal/store"
)

const (
	tableGoals     = "goals"
	tableDecisions = "decisions"
)

func (c *Client) SaveGoal(ctx context.Context, g store.Goal) error {
	return c.saveRecord(ctx, tableGoals, g.ID, string(g.Status), g.CreatedAt, g.UpdatedAt, g)
}

func (c *Client) GetGoal(ctx context.Context, id string) (*store.Goal, error) {
	return getRecord[store.Goal](ctx, c, tableGoals, id)
}

func (c *Client) ListGoals(ctx context.Context, status store.GoalStatus) ([]store.Goal, error) {
	return listRecords[store.Goal](ctx, c, tableGoals, string(status))
}

func (c *Client) DeleteGoal(ctx context.Context, id string) error {
	return c.deleteRecord(ctx, tableGoals, id)
}

func (c *Client) SaveDecision(ctx context.Context, d store.Decision) error {
	return c.saveRecord(ctx, tableDecisions, d.ID, string(d.Status), d.CreatedAt, d.UpdatedAt, d)
}

func (c *Client) GetDecision(ctx context.Context, id string) (*store.Decision, error) {
	return getRecord[store.Decision](ctx, c, tableDecisions, id)
}

func (c *Client) ListDecisions(ctx context.Context, status store.DecisionStatus) ([]store.Decision, error) {
	return listRecords[store.Decision](ctx, c, tableDecisions, string(status))
}

func (c *Client) DeleteDecision(ctx context.Context, id string) error {
	return c.deleteRecord(ctx, tableDecisions, id)
}

func (c *Client) saveRecord(ctx context.Context, table, id, status string, createdAt, updatedAt time.Time, record any) (err error) {
	start := time.Now()
	defer func() { observe("save_"+table, start, err) }()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshaling %s record: %w", table, err)
	}

	query := fmt.Sprintf(`
INSERT INTO %s (id, status, data, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET
    status = EXCLUDED.status,
    data = EXCLUDED.data,
    updated_at = EXCLUDED.updated_at
`, table)

	_, err = c.pool.Exec(ctx, query, id, status, data, createdAt, updatedAt)
	if err != nil {
		return fmt.Errorf("saving %s record %s: %w", table, id, err)
	}
	return nil
}

func getRecord[T any](ctx context.Context, c *Client, table, id string) (_ *T, err error) {
	start := time.Now()
	defer func() { observe("get_"+table, start, err) }()

	var data []byte
	query := fmt.Sprintf(`SELECT data FROM %s WHERE id = $1`, table)
	err = c.pool.QueryRow(ctx, query, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s record %s: %w", table, id, err)
	}

	var record T
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("unmarshaling %s record %s: %w", table, id, err)
	}
	return &record, nil
}

func listRecords[T any](ctx context.Context, c *Client, table, status string) (_ []T, err error) {
	start := time.Now()
	defer func() { observe("list_"+table, start, err) }()

	query := fmt.Sprintf(`
SELECT data FROM %s
WHERE ($1 = '' OR status = $1)
ORDER BY created_at, id
`, table)

	rows, err := c.pool.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", table, err)
	}
	return scanJSONRows[T](rows, table)
}

func (c *Client) deleteRecord(ctx context.Context, table, id string) (err error) {
	start := time.Now()
	defer func() { observe("delete_"+table, start, err) }()

	_, err = c.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return fmt.Errorf("deleting %s record %s: %w", table, id, err)
	}
	return nil
}

func scanJSONRows[T any](rows pgx.Rows, what string) ([]T, error) {
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", what, err)
		}
		var item T
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, fmt.Errorf("unmarshaling %s row: %w", what, err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s rows: %w", what, err)
	}
	return out, nil
}
