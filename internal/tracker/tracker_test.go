package tracker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepthink/internal/history"
	"deepthink/internal/logger"
	"deepthink/internal/scoring"
	"deepthink/internal/store"
	"deepthink/internal/store/sqlite"
	"deepthink/internal/validate"
	"deepthink/internal/values"
)

type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestTracker(t *testing.T, opts ...Option) *Tracker {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.New(ctx, "sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(ctx) })
	require.NoError(t, db.EnsureSchema(ctx))

	base := []Option{
		WithLogger(logger.NewTestLogger(t)),
		WithClock(&stepClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}),
		WithIDGenerator(sequentialIDs()),
	}
	return New(db, append(base, opts...)...)
}

func TestGoalLifecycle(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)

	goal, err := tr.CreateGoal(ctx, GoalInput{Title: "Become staff engineer", Category: "career", Milestones: []string{"Lead a project", "Mentor two people", "Write a design doc"}})
	require.NoError(t, err)
	assert.Equal(t, store.GoalActive, goal.Status)
	require.Len(t, goal.Milestones, 3)

	goal, err = tr.CompleteMilestone(ctx, goal.ID, goal.Milestones[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 33, goal.Progress)
	require.NotNil(t, goal.Milestones[0].CompletedAt)

	goal, err = tr.CompleteMilestone(ctx, goal.ID, goal.Milestones[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 67, goal.Progress)

	progress := 80
	title := "Become principal engineer"
	goal, err = tr.UpdateGoal(ctx, goal.ID, GoalUpdate{Title: &title, Progress: &progress})
	require.NoError(t, err)
	assert.Equal(t, title, goal.Title)

	goal, err = tr.CompleteGoal(ctx, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, goal.Progress)
	assert.Equal(t, store.GoalCompleted, goal.Status)

	entries, err := tr.GoalHistory(ctx, goal.ID)
	require.NoError(t, err)
	actions := make([]history.Action, 0, len(entries))
	for _, e := range entries {
		actions = append(actions, e.Action)
	}
	assert.Equal(t, []history.Action{
		history.ActionCompleted,
		history.ActionUpdated,
		history.ActionMilestoneCompleted,
		history.ActionMilestoneCompleted,
		history.ActionCreated,
	}, actions)
	assert.Equal(t, map[string]any{"title": "Become staff engineer", "progress": float64(67)}, entries[1].OldValue)
	assert.True(t, entries[0].Timestamp.After(entries[1].Timestamp))
}

func TestGoalValidation(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)

	_, err := tr.CreateGoal(ctx, GoalInput{Title: " ", Category: "hobby"})
	var errs validate.Errors
	require.ErrorAs(t, err, &errs)
	assert.True(t, errs.HasField("title"))
	assert.True(t, errs.HasField("category"))

	goal, err := tr.CreateGoal(ctx, GoalInput{Title: "Save"})
	require.NoError(t, err)
	assert.Equal(t, store.GoalCareer, goal.Category)

	bad := 120
	_, err = tr.UpdateGoal(ctx, goal.ID, GoalUpdate{Progress: &bad})
	assert.True(t, validate.IsValidation(err))

	_, err = tr.CompleteGoal(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = tr.CompleteMilestone(ctx, goal.ID, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateGoalWithoutChangesRecordsNothing(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)

	goal, err := tr.CreateGoal(ctx, GoalInput{Title: "Read more"})
	require.NoError(t, err)
	same := goal.Title
	_, err = tr.UpdateGoal(ctx, goal.ID, GoalUpdate{Title: &same})
	require.NoError(t, err)

	entries, err := tr.GoalHistory(ctx, goal.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestArchiveAndDeleteGoal(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)

	keep, err := tr.CreateGoal(ctx, GoalInput{Title: "Keep"})
	require.NoError(t, err)
	drop, err := tr.CreateGoal(ctx, GoalInput{Title: "Drop"})
	require.NoError(t, err)

	_, err = tr.ArchiveGoal(ctx, keep.ID)
	require.NoError(t, err)
	require.NoError(t, tr.DeleteGoal(ctx, drop.ID))

	archived, err := tr.ListGoals(ctx, store.GoalArchived)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, keep.ID, archived[0].ID)

	_, err = tr.GetGoal(ctx, drop.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	entries, err := tr.GoalHistory(ctx, drop.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, history.ActionDeleted, entries[0].Action)
}

func TestHistoryIsCapped(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t, WithHistoryCapacity(5))

	for i := 0; i < 8; i++ {
		_, err := tr.CreateGoal(ctx, GoalInput{Title: fmt.Sprintf("goal %d", i)})
		require.NoError(t, err)
	}
	entries, err := tr.GoalHistory(ctx, "")
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, `Created goal "goal 7"`, entries[0].Description)
	assert.Equal(t, `Created goal "goal 3"`, entries[4].Description)
}

func TestDecisionFlow(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)

	d, err := tr.CreateDecision(ctx, DecisionInput{Title: "Which job?"})
	require.NoError(t, err)

	d, err = tr.AddCriterion(ctx, d.ID, CriterionInput{Name: "Salary", Weight: 8, Category: "financial"})
	require.NoError(t, err)
	d, err = tr.AddCriterion(ctx, d.ID, CriterionInput{Name: "Growth", Weight: 5, Category: "growth"})
	require.NoError(t, err)
	assert.Equal(t, "salary", d.Criteria[0].ID)

	_, err = tr.AddCriterion(ctx, d.ID, CriterionInput{Name: "salary", Weight: 3})
	assert.True(t, validate.IsValidation(err), "duplicate criterion id")

	for _, name := range []string{"Option A", "Option B", "Option C"} {
		d, err = tr.AddOption(ctx, d.ID, OptionInput{Name: name})
		require.NoError(t, err)
	}
	ratings := []struct {
		option, criterion string
		score             float64
	}{
		{"option-a", "salary", 7}, {"option-a", "growth", 10},
		{"option-b", "salary", 10}, {"option-b", "growth", 10},
		{"option-c", "salary", 4}, {"option-c", "growth", 10},
	}
	for _, r := range ratings {
		d, err = tr.RateOption(ctx, d.ID, r.option, r.criterion, r.score)
		require.NoError(t, err)
	}

	_, err = tr.RateOption(ctx, d.ID, "option-a", "salary", 11)
	assert.True(t, validate.IsValidation(err))
	_, err = tr.RateOption(ctx, d.ID, "option-a", "commute", 5)
	assert.ErrorIs(t, err, store.ErrNotFound)

	ranked, err := tr.RankDecision(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, "option-b", ranked[0].ID)
	assert.Equal(t, 130.0, ranked[0].TotalScore)
	assert.Equal(t, 106.0, ranked[1].TotalScore)
	assert.Equal(t, 82.0, ranked[2].TotalScore)

	d, err = tr.DecideDecision(ctx, d.ID, "")
	require.NoError(t, err)
	assert.Equal(t, store.DecisionDecided, d.Status)
	assert.Equal(t, "option-b", d.ChosenOptionID)

	_, err = tr.AddOption(ctx, d.ID, OptionInput{Name: "Late option"})
	assert.ErrorIs(t, err, ErrClosed)

	entries, err := tr.DecisionHistory(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, history.ActionCompleted, entries[0].Action)
	assert.Equal(t, "option-b", entries[0].NewValue)
}

func TestDecideWithoutOptions(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)

	d, err := tr.CreateDecision(ctx, DecisionInput{Title: "Empty"})
	require.NoError(t, err)
	_, err = tr.DecideDecision(ctx, d.ID, "")
	assert.True(t, validate.IsValidation(err))

	_, err = tr.DecideDecision(ctx, d.ID, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestArchiveAndDeleteDecision(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)

	d, err := tr.CreateDecision(ctx, DecisionInput{Title: "Move city?"})
	require.NoError(t, err)
	d, err = tr.ArchiveDecision(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, store.DecisionArchived, d.Status)

	require.NoError(t, tr.DeleteDecision(ctx, d.ID))
	err = tr.DeleteDecision(ctx, d.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestImportDecision(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)

	doc := []byte(`{
		"title": "Which offer?",
		"criteria": [
			{"id": "pay", "name": "Pay", "weight": 8, "category": "financial"},
			{"name": "Team", "weight": 5}
		],
		"options": [
			{"id": "a", "name": "Acme", "scores": {"pay": 7, "team": 10}},
			{"id": "b", "name": "Beta", "scores": {"pay": 10, "team": 10}}
		]
	}`)
	d, err := tr.ImportDecision(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, store.DecisionOpen, d.Status)
	require.Len(t, d.Criteria, 2)
	assert.Equal(t, "team", d.Criteria[1].ID)
	assert.Equal(t, scoring.CategoryOther, d.Criteria[1].Category)

	ranked, err := tr.RankDecision(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "b", ranked[0].ID)
}

func TestImportDecisionRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not json", doc: `{`},
		{name: "missing title", doc: `{"criteria": [], "options": []}`},
		{name: "weight out of range", doc: `{"title": "x", "criteria": [{"name": "a", "weight": 11}], "options": []}`},
		{name: "score out of range", doc: `{"title": "x", "criteria": [{"id": "a", "name": "a", "weight": 1}], "options": [{"name": "o", "scores": {"a": 12}}]}`},
		{name: "unknown criterion", doc: `{"title": "x", "criteria": [{"id": "a", "name": "a", "weight": 1}], "options": [{"name": "o", "scores": {"b": 1}}]}`},
		{name: "duplicate criteria", doc: `{"title": "x", "criteria": [{"name": "a", "weight": 1}, {"name": "A", "weight": 2}], "options": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestTracker(t)
			_, err := tr.ImportDecision(context.Background(), []byte(tt.doc))
			require.Error(t, err)

			ds, err := tr.ListDecisions(context.Background(), "")
			require.NoError(t, err)
			assert.Empty(t, ds)
		})
	}
}

type fixedAdvice map[values.Bucket]string

func (f fixedAdvice) Advice(name string, bucket values.Bucket) (string, bool) {
	text, ok := f[bucket]
	return text, ok
}

func TestValuesReport(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t, WithAdvice(fixedAdvice{values.BucketHigh: "act now"}))

	err := tr.SaveValues(ctx, []values.Value{
		{ID: "security", Name: "Security", Importance: 9, Alignment: 8},
		{ID: "autonomy", Name: "Autonomy", Importance: 9, Alignment: 3},
		{ID: "balance", Name: "Balance", Importance: 4, Alignment: 4},
		{ID: "growth", Name: "Growth", Importance: 7, Alignment: 5},
	})
	require.NoError(t, err)

	report, err := tr.ValuesReport(ctx, 2)
	require.NoError(t, err)
	require.Len(t, report.ByGap, 4)
	assert.Equal(t, "autonomy", report.ByGap[0].ID)
	assert.Equal(t, 6, report.ByGap[0].Gap)
	assert.Equal(t, "act now", report.ByGap[0].Advice)
	assert.Empty(t, report.ByGap[1].Advice)

	require.Len(t, report.Top, 2)
	assert.Equal(t, "security", report.Top[0].ID)
	assert.Equal(t, "autonomy", report.Top[1].ID)
}

func TestSaveValuesValidation(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)

	err := tr.SaveValues(ctx, []values.Value{
		{ID: "a", Name: "A", Importance: 11, Alignment: 3},
		{ID: "a", Name: "A again", Importance: 5, Alignment: 5},
	})
	var errs validate.Errors
	require.ErrorAs(t, err, &errs)
	assert.True(t, errs.HasField("values[0].importance"))
	assert.True(t, errs.HasField("values[1].id"))

	vals, err := tr.SetValue(ctx, values.Value{ID: "a", Name: "A", Importance: 5, Alignment: 2})
	require.NoError(t, err)
	require.Len(t, vals, 1)
	vals, err = tr.SetValue(ctx, values.Value{ID: "a", Name: "A", Importance: 6, Alignment: 2})
	require.NoError(t, err)
	require.Len(t, vals, 1)
	assert.Equal(t, 6, vals[0].Importance)
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)

	_, err := tr.CreateGoal(ctx, GoalInput{Title: "Ship"})
	require.NoError(t, err)
	_, err = tr.CreateDecision(ctx, DecisionInput{Title: "Stay or go"})
	require.NoError(t, err)

	exp, err := tr.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExportVersion, exp.Version)
	assert.Len(t, exp.Goals, 1)
	assert.Len(t, exp.Decisions, 1)
	assert.Empty(t, exp.Values)
	assert.False(t, exp.ExportedAt.IsZero())
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "work-life-balance", slug(" Work/Life  balance! "))
	assert.Equal(t, "option-a", slug("Option A"))
}

type failingWrites struct {
	store.Store
	err error
}

func (f failingWrites) SaveGoal(context.Context, store.Goal) error         { return f.err }
func (f failingWrites) SaveDecision(context.Context, store.Decision) error { return f.err }
func (f failingWrites) DeleteGoal(context.Context, string) error           { return f.err }

func TestFailedWriteLeavesHistoryUntouched(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.New(ctx, "sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(ctx) })
	require.NoError(t, db.EnsureSchema(ctx))

	opts := []Option{
		WithLogger(logger.NewTestLogger(t)),
		WithClock(&stepClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}),
		WithIDGenerator(sequentialIDs()),
	}
	tr := New(db, opts...)
	goal, err := tr.CreateGoal(ctx, GoalInput{Title: "Learn Spanish", Category: "skills"})
	require.NoError(t, err)
	d, err := tr.CreateDecision(ctx, DecisionInput{Title: "Which course?"})
	require.NoError(t, err)

	boom := fmt.Errorf("disk full")
	broken := New(failingWrites{Store: db, err: boom}, opts...)

	_, err = broken.CompleteGoal(ctx, goal.ID)
	require.ErrorIs(t, err, boom)
	err = broken.DeleteGoal(ctx, goal.ID)
	require.ErrorIs(t, err, boom)
	_, err = broken.ArchiveDecision(ctx, d.ID)
	require.ErrorIs(t, err, boom)

	goalLog, err := tr.GoalHistory(ctx, "")
	require.NoError(t, err)
	require.Len(t, goalLog, 1)
	assert.Equal(t, history.ActionCreated, goalLog[0].Action)

	decisionLog, err := tr.DecisionHistory(ctx, "")
	require.NoError(t, err)
	require.Len(t, decisionLog, 1)
	assert.Equal(t, history.ActionCreated, decisionLog[0].Action)

	stored, err := tr.GetGoal(ctx, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, store.GoalActive, stored.Status)
}
