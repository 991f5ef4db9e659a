// Package storetest holds the behaviour every store.Store backend must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepthink/internal/history"
	"deepthink/internal/scoring"
	"deepthink/internal/store"
	"deepthink/internal/values"
)

// Run exercises a fresh, schema-ready store returned by open.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("goals", func(t *testing.T) { testGoals(t, open(t)) })
	t.Run("decisions", func(t *testing.T) { testDecisions(t, open(t)) })
	t.Run("values", func(t *testing.T) { testValues(t, open(t)) })
	t.Run("history", func(t *testing.T) { testHistory(t, open(t)) })
	t.Run("same second ordering", func(t *testing.T) { testSameSecondOrdering(t, open(t)) })
}

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func testGoals(t *testing.T, s store.Store) {
	ctx := context.Background()

	missing, err := s.GetGoal(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	first := store.Goal{
		ID:         "g1",
		Title:      "Get promoted",
		Category:   store.GoalCareer,
		Status:     store.GoalActive,
		Milestones: []store.Milestone{{ID: "m1", Title: "Lead a project"}},
		CreatedAt:  base,
		UpdatedAt:  base,
	}
	second := store.Goal{ID: "g2", Title: "Run 10k", Category: store.GoalHealth, Status: store.GoalCompleted, Progress: 100, CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour)}
	require.NoError(t, s.SaveGoal(ctx, first))
	require.NoError(t, s.SaveGoal(ctx, second))

	got, err := s.GetGoal(ctx, "g1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Get promoted", got.Title)
	require.Len(t, got.Milestones, 1)
	assert.True(t, got.CreatedAt.Equal(base))

	first.Progress = 40
	first.UpdatedAt = base.Add(2 * time.Hour)
	require.NoError(t, s.SaveGoal(ctx, first))
	got, err = s.GetGoal(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 40, got.Progress)

	all, err := s.ListGoals(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "g1", all[0].ID, "goals list in creation order")

	active, err := s.ListGoals(ctx, store.GoalActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "g1", active[0].ID)

	require.NoError(t, s.DeleteGoal(ctx, "g1"))
	got, err = s.GetGoal(ctx, "g1")
	require.NoError(t, err)
	assert.Nil(t, got)
	require.NoError(t, s.DeleteGoal(ctx, "g1"), "deleting a missing goal is not an error")
}

func testSameSecondOrdering(t *testing.T, s store.Store) {
	ctx := context.Background()

	late := base.Add(500 * time.Millisecond)
	require.NoError(t, s.SaveGoal(ctx, store.Goal{ID: "a-late", Title: "Later", Category: store.GoalPersonal, Status: store.GoalActive, CreatedAt: late, UpdatedAt: late}))
	require.NoError(t, s.SaveGoal(ctx, store.Goal{ID: "b-early", Title: "Earlier", Category: store.GoalPersonal, Status: store.GoalActive, CreatedAt: base, UpdatedAt: base}))

	goals, err := s.ListGoals(ctx, "")
	require.NoError(t, err)
	require.Len(t, goals, 2)
	assert.Equal(t, []string{"b-early", "a-late"}, []string{goals[0].ID, goals[1].ID})

	require.NoError(t, s.SaveDecision(ctx, store.Decision{ID: "a-late", Title: "Later", Status: store.DecisionOpen, CreatedAt: late, UpdatedAt: late}))
	require.NoError(t, s.SaveDecision(ctx, store.Decision{ID: "b-early", Title: "Earlier", Status: store.DecisionOpen, CreatedAt: base, UpdatedAt: base}))

	decisions, err := s.ListDecisions(ctx, "")
	require.NoError(t, err)
	require.Len(t, decisions, 2)
	assert.Equal(t, []string{"b-early", "a-late"}, []string{decisions[0].ID, decisions[1].ID})
}

func testDecisions(t *testing.T, s store.Store) {
	ctx := context.Background()

	d := store.Decision{
		ID:     "d1",
		Title:  "Which offer?",
		Status: store.DecisionOpen,
		Criteria: []scoring.Criterion{
			{ID: "cost", Name: "Cost", Weight: 8, Category: scoring.CategoryFinancial},
			{ID: "quality", Name: "Quality", Weight: 5, Category: scoring.CategoryGrowth},
		},
		Options: []scoring.Option{
			{ID: "a", Name: "Offer A", Scores: map[string]float64{"cost": 7, "quality": 10}},
		},
		CreatedAt: base,
		UpdatedAt: base,
	}
	require.NoError(t, s.SaveDecision(ctx, d))

	got, err := s.GetDecision(ctx, "d1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, d.Criteria, got.Criteria)
	assert.Equal(t, d.Options, got.Options)

	d.Status = store.DecisionDecided
	d.ChosenOptionID = "a"
	require.NoError(t, s.SaveDecision(ctx, d))

	open, err := s.ListDecisions(ctx, store.DecisionOpen)
	require.NoError(t, err)
	assert.Empty(t, open)

	decided, err := s.ListDecisions(ctx, store.DecisionDecided)
	require.NoError(t, err)
	require.Len(t, decided, 1)
	assert.Equal(t, "a", decided[0].ChosenOptionID)

	require.NoError(t, s.DeleteDecision(ctx, "d1"))
	got, err = s.GetDecision(ctx, "d1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func testValues(t *testing.T, s store.Store) {
	ctx := context.Background()

	empty, err := s.LoadValues(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	vals := []values.Value{
		{ID: "autonomy", Name: "Autonomy", Importance: 9, Alignment: 3},
		{ID: "security", Name: "Security", Importance: 7, Alignment: 8},
	}
	require.NoError(t, s.SaveValues(ctx, vals))

	got, err := s.LoadValues(ctx)
	require.NoError(t, err)
	assert.Equal(t, vals, got)

	require.NoError(t, s.SaveValues(ctx, vals[:1]))
	got, err = s.LoadValues(ctx)
	require.NoError(t, err)
	assert.Equal(t, vals[:1], got)
}

func testHistory(t *testing.T, s store.Store) {
	ctx := context.Background()

	goals := []history.Entry{
		{ID: "h2", EntityID: "g1", Action: history.ActionUpdated, Description: "Progress 40%", Timestamp: base.Add(time.Minute), OldValue: "0", NewValue: "40"},
		{ID: "h1", EntityID: "g1", Action: history.ActionCreated, Description: "Created", Timestamp: base},
	}
	decisions := []history.Entry{
		{ID: "h3", EntityID: "d1", Action: history.ActionCreated, Description: "Created", Timestamp: base},
	}
	require.NoError(t, s.SaveHistory(ctx, store.GoalHistory, goals))
	require.NoError(t, s.SaveHistory(ctx, store.DecisionHistory, decisions))

	got, err := s.LoadHistory(ctx, store.GoalHistory)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "h2", got[0].ID)
	assert.Equal(t, "40", got[0].NewValue)
	assert.True(t, got[1].Timestamp.Equal(base))

	got, err = s.LoadHistory(ctx, store.DecisionHistory)
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.NoError(t, s.SaveHistory(ctx, store.GoalHistory, goals[:1]))
	got, err = s.LoadHistory(ctx, store.GoalHistory)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "h2", got[0].ID)
}
