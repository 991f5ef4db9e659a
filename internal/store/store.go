package store

import (
	"context"
	"errors"

	"deepthink/internal/history"
	"deepthink/internal/values"
)

// ErrNotFound is wrapped by callers when a Get returns no record.
var ErrNotFound = errors.New("not found")

// Store persists goals, decisions, values and history logs. Get methods return
// (nil, nil) when the record does not exist.
type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	SaveGoal(ctx context.Context, g Goal) error
	GetGoal(ctx context.Context, id string) (*Goal, error)
	ListGoals(ctx context.Context, status GoalStatus) ([]Goal, error)
	DeleteGoal(ctx context.Context, id string) error

	SaveDecision(ctx context.Context, d Decision) error
	GetDecision(ctx context.Context, id string) (*Decision, error)
	ListDecisions(ctx context.Context, status DecisionStatus) ([]Decision, error)
	DeleteDecision(ctx context.Context, id string) error

	LoadValues(ctx context.Context) ([]values.Value, error)
	SaveValues(ctx context.Context, vals []values.Value) error

	// SaveHistory replaces the whole log for kind in one step, so a reader
	// never sees a partially truncated log.
	LoadHistory(ctx context.Context, kind HistoryKind) ([]history.Entry, error)
	SaveHistory(ctx context.Context, kind HistoryKind, entries []history.Entry) error
}
