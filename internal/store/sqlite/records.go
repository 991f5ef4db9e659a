package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"deepthink/internal/store"
)

const (
	tableGoals     = "goals"
	tableDecisions = "decisions"
)

// timeLayout is fixed width so created_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

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
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		status = excluded.status,
		data = excluded.data,
		updated_at = excluded.updated_at
	`, table)

	_, err = c.db.ExecContext(ctx, query,
		id,
		status,
		string(data),
		createdAt.UTC().Format(timeLayout),
		updatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("saving %s record %s: %w", table, id, err)
	}
	return nil
}

func getRecord[T any](ctx context.Context, c *Client, table, id string) (_ *T, err error) {
	start := time.Now()
	defer func() { observe("get_"+table, start, err) }()

	var data string
	query := fmt.Sprintf(`SELECT data FROM %s WHERE id = ?`, table)
	err = c.db.QueryRowContext(ctx, query, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s record %s: %w", table, id, err)
	}

	var record T
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("unmarshaling %s record %s: %w", table, id, err)
	}
	return &record, nil
}

func listRecords[T any](ctx context.Context, c *Client, table, status string) (_ []T, err error) {
	start := time.Now()
	defer func() { observe("list_"+table, start, err) }()

	query := fmt.Sprintf(`
	SELECT data FROM %s
	WHERE (? = '' OR status = ?)
	ORDER BY created_at, id
	`, table)

	rows, err := c.db.QueryContext(ctx, query, status, status)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", table, err)
	}
	defer rows.Close()

	records := make([]T, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", table, err)
		}
		var record T
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			return nil, fmt.Errorf("unmarshaling %s row: %w", table, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s rows: %w", table, err)
	}
	return records, nil
}

func (c *Client) deleteRecord(ctx context.Context, table, id string) (err error) {
	start := time.Now()
	defer func() { observe("delete_"+table, start, err) }()

	_, err = c.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id)
	if err != nil {
		return fmt.Errorf("deleting %s record %s: %w", table, id, err)
	}
	return nil
}
