// Package history keeps a bounded, newest-first audit trail.
package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxEntries is the default number of entries a log retains.
const MaxEntries = 100

type Action string

const (
	ActionCreated            Action = "created"
	ActionUpdated            Action = "updated"
	ActionCompleted          Action = "completed"
	ActionMilestoneCompleted Action = "milestone_completed"
	ActionDeleted            Action = "deleted"
	ActionArchived           Action = "archived"
)

var actions = []Action{
	ActionCreated,
	ActionUpdated,
	ActionCompleted,
	ActionMilestoneCompleted,
	ActionDeleted,
	ActionArchived,
}

func Actions() []Action {
	return append([]Action(nil), actions...)
}

func ParseAction(s string) (Action, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, a := range actions {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown history action: %q", s)
}

type Entry struct {
	ID          string    `json:"id"`
	EntityID    string    `json:"entityId"`
	Action      Action    `json:"action"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	OldValue    any       `json:"oldValue,omitempty"`
	NewValue    any       `json:"newValue,omitempty"`
}

// NewEntry is what callers supply; ID and Timestamp are filled in on append.
type NewEntry struct {
	EntityID    string
	Action      Action
	Description string
	OldValue    any
	NewValue    any
}

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reports wall-clock time in UTC.
var SystemClock Clock = ClockFunc(func() time.Time { return time.Now().UTC() })

// Recorder stamps and appends entries. The zero value uses SystemClock, uuid ids
// and MaxEntries.
type Recorder struct {
	Clock    Clock
	NewID    func() string
	Capacity int
}

// Append returns a new log with entry first and at most Capacity entries. The
// input slice is left untouched.
func (r Recorder) Append(log []Entry, entry NewEntry) []Entry {
	clock := r.Clock
	if clock == nil {
		clock = SystemClock
	}
	newID := r.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	l := LogFrom(log, r.Capacity)
	l.Add(Entry{
		ID:          newID(),
		EntityID:    entry.EntityID,
		Action:      entry.Action,
		Description: entry.Description,
		Timestamp:   clock.Now(),
		OldValue:    entry.OldValue,
		NewValue:    entry.NewValue,
	})
	return l.Entries()
}

// Append prepends entry to log using clock and the default capacity.
func Append(log []Entry, entry NewEntry, clock Clock) []Entry {
	return Recorder{Clock: clock}.Append(log, entry)
}

// ForEntity returns the entries about entityID, newest first.
func ForEntity(log []Entry, entityID string) []Entry {
	out := make([]Entry, 0)
	for _, e := range log {
		if e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out
}
