package tracker

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"deepthink/internal/history"
	"deepthink/internal/logger"
	"deepthink/internal/metrics"
	"deepthink/internal/store"
	"deepthink/internal/values"
)

// ErrClosed is returned when changing a decision that is no longer open.
var ErrClosed = errors.New("decision is not open")

type Tracker struct {
	store    store.Store
	log      logger.Logger
	clock    history.Clock
	newID    func() string
	capacity int
	advice   values.AdviceSource
}

type Option func(*Tracker)

func WithLogger(l logger.Logger) Option {
	return func(t *Tracker) { t.log = l }
}

func WithClock(c history.Clock) Option {
	return func(t *Tracker) { t.clock = c }
}

func WithIDGenerator(fn func() string) Option {
	return func(t *Tracker) { t.newID = fn }
}

// WithHistoryCapacity sets how many entries each history log keeps.
func WithHistoryCapacity(n int) Option {
	return func(t *Tracker) { t.capacity = n }
}

func WithAdvice(a values.AdviceSource) Option {
	return func(t *Tracker) { t.advice = a }
}

func New(s store.Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:    s,
		log:      logger.NewNoOpLogger(),
		clock:    history.SystemClock,
		newID:    uuid.NewString,
		capacity: history.MaxEntries,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) recorder() history.Recorder {
	return history.Recorder{Clock: t.clock, NewID: t.newID, Capacity: t.capacity}
}

// record appends one entry to the kind's log, then runs write. If write
// fails the previous log is put back, so an entity change and its entry
// land together or not at all.
func (t *Tracker) record(ctx context.Context, kind store.HistoryKind, entry history.NewEntry, write func(context.Context) error) error {
	log, err := t.store.LoadHistory(ctx, kind)
	if err != nil {
		t.log.WithError(err).Error("loading history failed", map[string]interface{}{"kind": string(kind)})
		return fmt.Errorf("loading %s history: %w", kind, err)
	}
	if err := t.store.SaveHistory(ctx, kind, t.recorder().Append(log, entry)); err != nil {
		t.log.WithError(err).Error("saving history failed", map[string]interface{}{"kind": string(kind)})
		return fmt.Errorf("saving %s history: %w", kind, err)
	}
	if err := write(ctx); err != nil {
		if rerr := t.store.SaveHistory(ctx, kind, log); rerr != nil {
			t.log.WithError(rerr).Error("restoring history failed", map[string]interface{}{"kind": string(kind), "entity_id": entry.EntityID})
		}
		return err
	}
	metrics.HistoryEntries.WithLabelValues(string(kind), string(entry.Action)).Inc()
	return nil
}

func (t *Tracker) entityHistory(ctx context.Context, kind store.HistoryKind, entityID string) ([]history.Entry, error) {
	log, err := t.store.LoadHistory(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("loading %s history: %w", kind, err)
	}
	if entityID == "" {
		return log, nil
	}
	return history.ForEntity(log, entityID), nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// slug derives a short id from a display name, e.g. "Work/Life balance" -> "work-life-balance".
func slug(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
}
