package tracker

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"deepthink/internal/history"
	"deepthink/internal/store"
	"deepthink/internal/validate"
)

type GoalInput struct {
	Title       string
	Description string
	Category    string
	TargetDate  *time.Time
	Milestones  []string
}

// GoalUpdate changes only the fields that are set.
type GoalUpdate struct {
	Title       *string
	Description *string
	Category    *string
	Progress    *int
	TargetDate  *time.Time
}

func (t *Tracker) CreateGoal(ctx context.Context, in GoalInput) (store.Goal, error) {
	var errs validate.Errors
	title := strings.TrimSpace(in.Title)
	errs.Required("title", title)
	category, err := store.ParseGoalCategory(in.Category)
	if err != nil {
		errs.Add("category", validate.CodeUnknownValue, err.Error())
	}
	for i, m := range in.Milestones {
		errs.Required(fmt.Sprintf("milestones[%d]", i), strings.TrimSpace(m))
	}
	if err := errs.Err(); err != nil {
		return store.Goal{}, err
	}

	now := t.clock.Now()
	goal := store.Goal{
		ID:          t.newID(),
		Title:       title,
		Description: in.Description,
		Category:    category,
		Status:      store.GoalActive,
		TargetDate:  in.TargetDate,
		Milestones:  make([]store.Milestone, 0, len(in.Milestones)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, m := range in.Milestones {
		goal.Milestones = append(goal.Milestones, store.Milestone{ID: t.newID(), Title: strings.TrimSpace(m)})
	}

	if err := t.record(ctx, store.GoalHistory, history.NewEntry{
		EntityID:    goal.ID,
		Action:      history.ActionCreated,
		Description: fmt.Sprintf("Created goal %q", goal.Title),
	}, t.goalSaver(goal)); err != nil {
		return store.Goal{}, err
	}
	t.log.Info("goal created", map[string]interface{}{"goal_id": goal.ID, "category": string(goal.Category)})
	return goal, nil
}

func (t *Tracker) GetGoal(ctx context.Context, id string) (store.Goal, error) {
	goal, err := t.store.GetGoal(ctx, id)
	if err != nil {
		return store.Goal{}, fmt.Errorf("getting goal: %w", err)
	}
	if goal == nil {
		return store.Goal{}, fmt.Errorf("goal %s: %w", id, store.ErrNotFound)
	}
	return *goal, nil
}

func (t *Tracker) ListGoals(ctx context.Context, status store.GoalStatus) ([]store.Goal, error) {
	goals, err := t.store.ListGoals(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("listing goals: %w", err)
	}
	return goals, nil
}

func (t *Tracker) UpdateGoal(ctx context.Context, id string, upd GoalUpdate) (store.Goal, error) {
	goal, err := t.GetGoal(ctx, id)
	if err != nil {
		return store.Goal{}, err
	}

	oldValue := map[string]any{}
	newValue := map[string]any{}
	var errs validate.Errors

	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		errs.Required("title", title)
		if title != goal.Title {
			oldValue["title"], newValue["title"] = goal.Title, title
			goal.Title = title
		}
	}
	if upd.Description != nil && *upd.Description != goal.Description {
		oldValue["description"], newValue["description"] = goal.Description, *upd.Description
		goal.Description = *upd.Description
	}
	if upd.Category != nil {
		category, err := store.ParseGoalCategory(*upd.Category)
		if err != nil {
			errs.Add("category", validate.CodeUnknownValue, err.Error())
		} else if category != goal.Category {
			oldValue["category"], newValue["category"] = string(goal.Category), string(category)
			goal.Category = category
		}
	}
	if upd.Progress != nil {
		errs.IntRange("progress", *upd.Progress, 0, 100)
		if *upd.Progress != goal.Progress {
			oldValue["progress"], newValue["progress"] = goal.Progress, *upd.Progress
			goal.Progress = *upd.Progress
		}
	}
	if upd.TargetDate != nil {
		oldValue["targetDate"], newValue["targetDate"] = goal.TargetDate, *upd.TargetDate
		target := *upd.TargetDate
		goal.TargetDate = &target
	}
	if err := errs.Err(); err != nil {
		return store.Goal{}, err
	}
	if len(newValue) == 0 {
		return goal, nil
	}

	goal.UpdatedAt = t.clock.Now()
	if err := t.record(ctx, store.GoalHistory, history.NewEntry{
		EntityID:    goal.ID,
		Action:      history.ActionUpdated,
		Description: fmt.Sprintf("Updated goal %q", goal.Title),
		OldValue:    oldValue,
		NewValue:    newValue,
	}, t.goalSaver(goal)); err != nil {
		return store.Goal{}, err
	}
	t.log.Info("goal updated", map[string]interface{}{"goal_id": goal.ID})
	return goal, nil
}

func (t *Tracker) CompleteGoal(ctx context.Context, id string) (store.Goal, error) {
	goal, err := t.GetGoal(ctx, id)
	if err != nil {
		return store.Goal{}, err
	}
	oldProgress := goal.Progress
	goal.Status = store.GoalCompleted
	goal.Progress = 100
	goal.UpdatedAt = t.clock.Now()

	return t.saveGoalChange(ctx, goal, history.NewEntry{
		EntityID:    goal.ID,
		Action:      history.ActionCompleted,
		Description: fmt.Sprintf("Completed goal %q", goal.Title),
		OldValue:    oldProgress,
		NewValue:    goal.Progress,
	})
}

func (t *Tracker) AddMilestone(ctx context.Context, goalID, title string) (store.Goal, error) {
	title = strings.TrimSpace(title)
	var errs validate.Errors
	errs.Required("title", title)
	if err := errs.Err(); err != nil {
		return store.Goal{}, err
	}

	goal, err := t.GetGoal(ctx, goalID)
	if err != nil {
		return store.Goal{}, err
	}
	oldProgress := goal.Progress
	goal.Milestones = append(goal.Milestones, store.Milestone{ID: t.newID(), Title: title})
	goal.Progress = milestoneProgress(goal.Milestones)
	goal.UpdatedAt = t.clock.Now()

	return t.saveGoalChange(ctx, goal, history.NewEntry{
		EntityID:    goal.ID,
		Action:      history.ActionUpdated,
		Description: fmt.Sprintf("Added milestone %q", title),
		OldValue:    oldProgress,
		NewValue:    goal.Progress,
	})
}

// CompleteMilestone marks a milestone done and recomputes progress as the
// rounded share of completed milestones.
func (t *Tracker) CompleteMilestone(ctx context.Context, goalID, milestoneID string) (store.Goal, error) {
	goal, err := t.GetGoal(ctx, goalID)
	if err != nil {
		return store.Goal{}, err
	}

	idx := -1
	for i, m := range goal.Milestones {
		if m.ID == milestoneID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return store.Goal{}, fmt.Errorf("milestone %s on goal %s: %w", milestoneID, goalID, store.ErrNotFound)
	}
	if goal.Milestones[idx].Completed {
		return goal, nil
	}

	now := t.clock.Now()
	oldProgress := goal.Progress
	goal.Milestones[idx].Completed = true
	goal.Milestones[idx].CompletedAt = &now
	goal.Progress = milestoneProgress(goal.Milestones)
	goal.UpdatedAt = now

	return t.saveGoalChange(ctx, goal, history.NewEntry{
		EntityID:    goal.ID,
		Action:      history.ActionMilestoneCompleted,
		Description: fmt.Sprintf("Completed milestone %q", goal.Milestones[idx].Title),
		OldValue:    oldProgress,
		NewValue:    goal.Progress,
	})
}

func (t *Tracker) ArchiveGoal(ctx context.Context, id string) (store.Goal, error) {
	goal, err := t.GetGoal(ctx, id)
	if err != nil {
		return store.Goal{}, err
	}
	oldStatus := goal.Status
	goal.Status = store.GoalArchived
	goal.UpdatedAt = t.clock.Now()

	return t.saveGoalChange(ctx, goal, history.NewEntry{
		EntityID:    goal.ID,
		Action:      history.ActionArchived,
		Description: fmt.Sprintf("Archived goal %q", goal.Title),
		OldValue:    string(oldStatus),
		NewValue:    string(goal.Status),
	})
}

func (t *Tracker) DeleteGoal(ctx context.Context, id string) error {
	goal, err := t.GetGoal(ctx, id)
	if err != nil {
		return err
	}
	if err := t.record(ctx, store.GoalHistory, history.NewEntry{
		EntityID:    goal.ID,
		Action:      history.ActionDeleted,
		Description: fmt.Sprintf("Deleted goal %q", goal.Title),
	}, func(ctx context.Context) error {
		if err := t.store.DeleteGoal(ctx, id); err != nil {
			return fmt.Errorf("deleting goal: %w", err)
		}
		return nil
	}); err != nil {
		return err
	}
	t.log.Info("goal deleted", map[string]interface{}{"goal_id": goal.ID})
	return nil
}

// GoalHistory returns the goal log, newest first. An empty id returns all of it.
func (t *Tracker) GoalHistory(ctx context.Context, goalID string) ([]history.Entry, error) {
	return t.entityHistory(ctx, store.GoalHistory, goalID)
}

func (t *Tracker) saveGoalChange(ctx context.Context, goal store.Goal, entry history.NewEntry) (store.Goal, error) {
	if err := t.record(ctx, store.GoalHistory, entry, t.goalSaver(goal)); err != nil {
		return store.Goal{}, err
	}
	t.log.Info("goal changed", map[string]interface{}{"goal_id": goal.ID, "action": string(entry.Action)})
	return goal, nil
}

func (t *Tracker) goalSaver(goal store.Goal) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := t.store.SaveGoal(ctx, goal); err != nil {
			return fmt.Errorf("saving goal: %w", err)
		}
		return nil
	}
}

func milestoneProgress(ms []store.Milestone) int {
	if len(ms) == 0 {
		return 0
	}
	done := 0
	for _, m := range ms {
		if m.Completed {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(ms)) * 100))
}
