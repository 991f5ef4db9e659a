package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"deepthink/internal/history"
	"deepthink/internal/store"
	"deepthink/internal/values"
)

func (c *Client) SaveGoal(ctx context.Context, g store.Goal) (err error) {
	start := time.Now()
	defer func() { observe("save_goals", start, err) }()

	return update(ctx, c, KeyGoals, func(goals []store.Goal) []store.Goal {
		return upsert(goals, g, func(x store.Goal) bool { return x.ID == g.ID })
	})
}

func (c *Client) GetGoal(ctx context.Context, id string) (_ *store.Goal, err error) {
	start := time.Now()
	defer func() { observe("get_goals", start, err) }()

	goals, err := load[store.Goal](ctx, c.rdb, KeyGoals)
	if err != nil {
		return nil, err
	}
	for i := range goals {
		if goals[i].ID == id {
			return &goals[i], nil
		}
	}
	return nil, nil
}

func (c *Client) ListGoals(ctx context.Context, status store.GoalStatus) (_ []store.Goal, err error) {
	start := time.Now()
	defer func() { observe("list_goals", start, err) }()

	goals, err := load[store.Goal](ctx, c.rdb, KeyGoals)
	if err != nil {
		return nil, err
	}
	out := make([]store.Goal, 0, len(goals))
	for _, g := range goals {
		if status == "" || g.Status == status {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (c *Client) DeleteGoal(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { observe("delete_goals", start, err) }()

	return update(ctx, c, KeyGoals, func(goals []store.Goal) []store.Goal {
		return remove(goals, func(g store.Goal) bool { return g.ID == id })
	})
}

func (c *Client) SaveDecision(ctx context.Context, d store.Decision) (err error) {
	start := time.Now()
	defer func() { observe("save_decisions", start, err) }()

	return update(ctx, c, KeyDecisions, func(ds []store.Decision) []store.Decision {
		return upsert(ds, d, func(x store.Decision) bool { return x.ID == d.ID })
	})
}

func (c *Client) GetDecision(ctx context.Context, id string) (_ *store.Decision, err error) {
	start := time.Now()
	defer func() { observe("get_decisions", start, err) }()

	ds, err := load[store.Decision](ctx, c.rdb, KeyDecisions)
	if err != nil {
		return nil, err
	}
	for i := range ds {
		if ds[i].ID == id {
			return &ds[i], nil
		}
	}
	return nil, nil
}

func (c *Client) ListDecisions(ctx context.Context, status store.DecisionStatus) (_ []store.Decision, err error) {
	start := time.Now()
	defer func() { observe("list_decisions", start, err) }()

	ds, err := load[store.Decision](ctx, c.rdb, KeyDecisions)
	if err != nil {
		return nil, err
	}
	out := make([]store.Decision, 0, len(ds))
	for _, d := range ds {
		if status == "" || d.Status == status {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (c *Client) DeleteDecision(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { observe("delete_decisions", start, err) }()

	return update(ctx, c, KeyDecisions, func(ds []store.Decision) []store.Decision {
		return remove(ds, func(d store.Decision) bool { return d.ID == id })
	})
}

func (c *Client) LoadValues(ctx context.Context) (_ []values.Value, err error) {
	start := time.Now()
	defer func() { observe("load_values", start, err) }()

	return load[values.Value](ctx, c.rdb, KeyValues)
}

func (c *Client) SaveValues(ctx context.Context, vals []values.Value) (err error) {
	start := time.Now()
	defer func() { observe("save_values", start, err) }()

	return c.set(ctx, KeyValues, vals)
}

func (c *Client) LoadHistory(ctx context.Context, kind store.HistoryKind) (_ []history.Entry, err error) {
	start := time.Now()
	defer func() { observe("load_history", start, err) }()

	key, err := historyKey(kind)
	if err != nil {
		return nil, err
	}
	return load[history.Entry](ctx, c.rdb, key)
}

func (c *Client) SaveHistory(ctx context.Context, kind store.HistoryKind, entries []history.Entry) (err error) {
	start := time.Now()
	defer func() { observe("save_history", start, err) }()

	key, err := historyKey(kind)
	if err != nil {
		return err
	}
	return c.set(ctx, key, entries)
}

func (c *Client) set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", key, err)
	}
	if err := c.rdb.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

type getter interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
}

// load reads the JSON array at key; a missing key is an empty collection.
func load[T any](ctx context.Context, cmd getter, key string) ([]T, error) {
	data, err := cmd.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// update applies fn to the collection at key under WATCH, retrying when
// another writer changed the key first.
func update[T any](ctx context.Context, c *Client, key string, fn func([]T) []T) error {
	txf := func(tx *goredis.Tx) error {
		items, err := load[T](ctx, tx, key)
		if err != nil {
			return err
		}
		data, err := json.Marshal(fn(items))
		if err != nil {
			return fmt.Errorf("marshaling %s: %w", key, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := c.rdb.Watch(ctx, txf, key)
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("updating %s: %w", key, err)
		}
		return nil
	}
	return fmt.Errorf("updating %s: too many concurrent writers", key)
}

func upsert[T any](items []T, item T, match func(T) bool) []T {
	for i := range items {
		if match(items[i]) {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}

func remove[T any](items []T, match func(T) bool) []T {
	out := items[:0]
	for _, it := range items {
		if !match(it) {
			out = append(out, it)
		}
	}
	return out
}
