package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"deepthink/internal/metrics"
	"deepthink/internal/store"
)

const backend = "redis"

const (
	KeyGoals           = "deepthink_goals"
	KeyDecisions       = "deepthink_decisions"
	KeyValues          = "deepthink_values"
	KeyGoalHistory     = "deepthink_goal_history"
	KeyDecisionHistory = "deepthink_decision_history"
)

// maxTxRetries bounds optimistic-lock retries when a watched key changes.
const maxTxRetries = 5

var _ store.Store = (*Client)(nil)

type Client struct {
	rdb *goredis.Client
}

func New(ctx context.Context, dsn string) (*Client, error) {
	opts, err := goredis.ParseURL(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing redis DSN: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.rdb.Close()
}

// EnsureSchema is a no-op: keys are created on first write.
func (c *Client) EnsureSchema(ctx context.Context) error {
	return nil
}

func historyKey(kind store.HistoryKind) (string, error) {
	switch kind {
	case store.GoalHistory:
		return KeyGoalHistory, nil
	case store.DecisionHistory:
		return KeyDecisionHistory, nil
	}
	return "", fmt.Errorf("unknown history kind: %q", kind)
}

func observe(op string, start time.Time, err error) {
	metrics.ObserveStore(backend, op, start, err)
}
