package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepClock struct {
	t time.Time
}

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("h%d", n)
	}
}

func TestAppend_PrependsAndStamps(t *testing.T) {
	clock := &stepClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	rec := Recorder{Clock: clock, NewID: sequentialIDs()}

	log := rec.Append(nil, NewEntry{EntityID: "g1", Action: ActionCreated, Description: "Goal created"})
	log = rec.Append(log, NewEntry{EntityID: "g1", Action: ActionUpdated, Description: "Progress 40%", OldValue: 0, NewValue: 40})

	require.Len(t, log, 2)
	assert.Equal(t, "h2", log[0].ID)
	assert.Equal(t, ActionUpdated, log[0].Action)
	assert.Equal(t, 40, log[0].NewValue)
	assert.Equal(t, "h1", log[1].ID)
	assert.True(t, log[0].Timestamp.After(log[1].Timestamp))
}

func TestAppend_CapsAtMaxEntries(t *testing.T) {
	rec := Recorder{Clock: &stepClock{}, NewID: sequentialIDs()}

	var log []Entry
	for i := 1; i <= 105; i++ {
		log = rec.Append(log, NewEntry{EntityID: "d1", Action: ActionUpdated, Description: fmt.Sprintf("change %d", i)})
	}

	require.Len(t, log, MaxEntries)
	assert.Equal(t, "h105", log[0].ID)
	assert.Equal(t, "h6", log[len(log)-1].ID)
	for i := 1; i < len(log); i++ {
		assert.True(t, log[i-1].Timestamp.After(log[i].Timestamp), "entries must stay newest first")
	}
}

func TestAppend_LeavesPriorEntriesIntact(t *testing.T) {
	rec := Recorder{Clock: &stepClock{}, NewID: sequentialIDs()}

	before := rec.Append(nil, NewEntry{EntityID: "g1", Action: ActionCreated, Description: "created"})
	before = rec.Append(before, NewEntry{EntityID: "g1", Action: ActionMilestoneCompleted, Description: "first milestone"})
	snapshot := append([]Entry(nil), before...)

	after := rec.Append(before, NewEntry{EntityID: "g1", Action: ActionCompleted, Description: "done"})

	assert.Equal(t, snapshot, before, "input slice must not change")
	assert.Equal(t, snapshot, after[1:])
}

func TestAppend_CustomCapacity(t *testing.T) {
	rec := Recorder{Clock: &stepClock{}, NewID: sequentialIDs(), Capacity: 3}
	var log []Entry
	for i := 0; i < 5; i++ {
		log = rec.Append(log, NewEntry{EntityID: "x", Action: ActionUpdated})
	}
	require.Len(t, log, 3)
	assert.Equal(t, []string{"h5", "h4", "h3"}, []string{log[0].ID, log[1].ID, log[2].ID})
}

func TestAppend_DefaultClockAndIDs(t *testing.T) {
	log := Append(nil, NewEntry{EntityID: "g1", Action: ActionDeleted}, nil)
	require.Len(t, log, 1)
	assert.NotEmpty(t, log[0].ID)
	assert.False(t, log[0].Timestamp.IsZero())
}

func TestLog_Ring(t *testing.T) {
	l := NewLog(2)
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, l.Entries())

	l.Add(Entry{ID: "a"})
	l.Add(Entry{ID: "b"})
	l.Add(Entry{ID: "c"})
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, 2, l.Cap())
	assert.Equal(t, []Entry{{ID: "c"}, {ID: "b"}}, l.Entries())
}

func TestLogFrom_TruncatesOldest(t *testing.T) {
	l := LogFrom([]Entry{{ID: "3"}, {ID: "2"}, {ID: "1"}}, 2)
	assert.Equal(t, []Entry{{ID: "3"}, {ID: "2"}}, l.Entries())

	assert.Equal(t, MaxEntries, NewLog(0).Cap())
}

func TestParseAction(t *testing.T) {
	for _, a := range Actions() {
		parsed, err := ParseAction(string(a))
		require.NoError(t, err)
		assert.Equal(t, a, parsed)
	}
	_, err := ParseAction("restored")
	assert.Error(t, err)
}

func TestForEntity(t *testing.T) {
	log := []Entry{
		{ID: "3", EntityID: "g2"},
		{ID: "2", EntityID: "g1"},
		{ID: "1", EntityID: "g1"},
	}
	got := ForEntity(log, "g1")
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ID)
	assert.Empty(t, ForEntity(log, "nope"))
}
