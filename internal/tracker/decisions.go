package tracker

import (
	"context"
	"fmt"
	"strings"

	"deepthink/internal/history"
	"deepthink/internal/metrics"
	"deepthink/internal/scoring"
	"deepthink/internal/store"
	"deepthink/internal/validate"
)

type DecisionInput struct {
	Title       string
	Description string
}

// CriterionInput describes a criterion to add. An empty ID is derived from Name.
type CriterionInput struct {
	ID       string
	Name     string
	Weight   int
	Category string
}

// OptionInput describes an option to add. An empty ID is derived from Name.
type OptionInput struct {
	ID   string
	Name string
}

func (t *Tracker) CreateDecision(ctx context.Context, in DecisionInput) (store.Decision, error) {
	var errs validate.Errors
	title := strings.TrimSpace(in.Title)
	errs.Required("title", title)
	if err := errs.Err(); err != nil {
		return store.Decision{}, err
	}

	now := t.clock.Now()
	d := store.Decision{
		ID:          t.newID(),
		Title:       title,
		Description: in.Description,
		Status:      store.DecisionOpen,
		Criteria:    []scoring.Criterion{},
		Options:     []scoring.Option{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return t.saveDecisionChange(ctx, d, history.NewEntry{
		EntityID:    d.ID,
		Action:      history.ActionCreated,
		Description: fmt.Sprintf("Created decision %q", d.Title),
	})
}

func (t *Tracker) GetDecision(ctx context.Context, id string) (store.Decision, error) {
	d, err := t.store.GetDecision(ctx, id)
	if err != nil {
		return store.Decision{}, fmt.Errorf("getting decision: %w", err)
	}
	if d == nil {
		return store.Decision{}, fmt.Errorf("decision %s: %w", id, store.ErrNotFound)
	}
	return *d, nil
}

func (t *Tracker) ListDecisions(ctx context.Context, status store.DecisionStatus) ([]store.Decision, error) {
	ds, err := t.store.ListDecisions(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("listing decisions: %w", err)
	}
	return ds, nil
}

func (t *Tracker) AddCriterion(ctx context.Context, decisionID string, in CriterionInput) (store.Decision, error) {
	d, err := t.openDecision(ctx, decisionID)
	if err != nil {
		return store.Decision{}, err
	}

	category, err := scoring.ParseCategory(in.Category)
	if err != nil {
		var errs validate.Errors
		errs.Add("category", validate.CodeUnknownValue, err.Error())
		return store.Decision{}, errs
	}
	id := in.ID
	if strings.TrimSpace(id) == "" {
		id = slug(in.Name)
	}
	c, err := scoring.NewCriterion(id, in.Name, in.Weight, category)
	if err != nil {
		return store.Decision{}, err
	}
	criteria := append(append([]scoring.Criterion{}, d.Criteria...), c)
	if err := scoring.ValidateCriteria(criteria); err != nil {
		return store.Decision{}, err
	}
	d.Criteria = criteria
	d.UpdatedAt = t.clock.Now()

	return t.saveDecisionChange(ctx, d, history.NewEntry{
		EntityID:    d.ID,
		Action:      history.ActionUpdated,
		Description: fmt.Sprintf("Added criterion %q (weight %d)", c.Name, c.Weight),
		NewValue:    c,
	})
}

func (t *Tracker) AddOption(ctx context.Context, decisionID string, in OptionInput) (store.Decision, error) {
	d, err := t.openDecision(ctx, decisionID)
	if err != nil {
		return store.Decision{}, err
	}

	id := in.ID
	if strings.TrimSpace(id) == "" {
		id = slug(in.Name)
	}
	o, err := scoring.NewOption(id, in.Name)
	if err != nil {
		return store.Decision{}, err
	}
	if findOption(d.Options, o.ID) >= 0 {
		var errs validate.Errors
		errs.Add("id", validate.CodeDuplicate, fmt.Sprintf("option %q already exists", o.ID))
		return store.Decision{}, errs
	}
	d.Options = append(append([]scoring.Option{}, d.Options...), o)
	d.UpdatedAt = t.clock.Now()

	return t.saveDecisionChange(ctx, d, history.NewEntry{
		EntityID:    d.ID,
		Action:      history.ActionUpdated,
		Description: fmt.Sprintf("Added option %q", o.Name),
		NewValue:    o.ID,
	})
}

// RateOption sets one option's score against one criterion.
func (t *Tracker) RateOption(ctx context.Context, decisionID, optionID, criterionID string, score float64) (store.Decision, error) {
	d, err := t.openDecision(ctx, decisionID)
	if err != nil {
		return store.Decision{}, err
	}

	idx := findOption(d.Options, optionID)
	if idx < 0 {
		return store.Decision{}, fmt.Errorf("option %s on decision %s: %w", optionID, decisionID, store.ErrNotFound)
	}
	if !hasCriterion(d.Criteria, criterionID) {
		return store.Decision{}, fmt.Errorf("criterion %s on decision %s: %w", criterionID, decisionID, store.ErrNotFound)
	}

	old, hadScore := d.Options[idx].Scores[criterionID]
	rated, err := d.Options[idx].Rate(criterionID, score)
	if err != nil {
		return store.Decision{}, err
	}
	options := append([]scoring.Option{}, d.Options...)
	options[idx] = rated
	d.Options = options
	d.UpdatedAt = t.clock.Now()

	var oldValue any
	if hadScore {
		oldValue = old
	}
	return t.saveDecisionChange(ctx, d, history.NewEntry{
		EntityID:    d.ID,
		Action:      history.ActionUpdated,
		Description: fmt.Sprintf("Rated %q on %q", rated.Name, criterionID),
		OldValue:    oldValue,
		NewValue:    score,
	})
}

// RankDecision scores the decision's options against its criteria. It does
// not change the decision.
func (t *Tracker) RankDecision(ctx context.Context, id string) ([]scoring.ScoredOption, error) {
	d, err := t.GetDecision(ctx, id)
	if err != nil {
		return nil, err
	}
	metrics.RankingsComputed.WithLabelValues("decision").Inc()
	return scoring.ComputeRanking(d.Options, d.Criteria), nil
}

// DecideDecision closes the decision on optionID, or on the top-ranked option
// when optionID is empty.
func (t *Tracker) DecideDecision(ctx context.Context, id, optionID string) (store.Decision, error) {
	d, err := t.openDecision(ctx, id)
	if err != nil {
		return store.Decision{}, err
	}

	var chosen scoring.Option
	if optionID == "" {
		metrics.RankingsComputed.WithLabelValues("decision").Inc()
		winner, ok := scoring.Winner(scoring.ComputeRanking(d.Options, d.Criteria))
		if !ok {
			var errs validate.Errors
			errs.Add("options", validate.CodeRequired, "decision has no options to choose from")
			return store.Decision{}, errs
		}
		chosen = winner.Option
	} else {
		idx := findOption(d.Options, optionID)
		if idx < 0 {
			return store.Decision{}, fmt.Errorf("option %s on decision %s: %w", optionID, id, store.ErrNotFound)
		}
		chosen = d.Options[idx]
	}

	d.Status = store.DecisionDecided
	d.ChosenOptionID = chosen.ID
	d.UpdatedAt = t.clock.Now()

	return t.saveDecisionChange(ctx, d, history.NewEntry{
		EntityID:    d.ID,
		Action:      history.ActionCompleted,
		Description: fmt.Sprintf("Decided on %q", chosen.Name),
		NewValue:    chosen.ID,
	})
}

func (t *Tracker) ArchiveDecision(ctx context.Context, id string) (store.Decision, error) {
	d, err := t.GetDecision(ctx, id)
	if err != nil {
		return store.Decision{}, err
	}
	oldStatus := d.Status
	d.Status = store.DecisionArchived
	d.UpdatedAt = t.clock.Now()

	return t.saveDecisionChange(ctx, d, history.NewEntry{
		EntityID:    d.ID,
		Action:      history.ActionArchived,
		Description: fmt.Sprintf("Archived decision %q", d.Title),
		OldValue:    string(oldStatus),
		NewValue:    string(d.Status),
	})
}

func (t *Tracker) DeleteDecision(ctx context.Context, id string) error {
	d, err := t.GetDecision(ctx, id)
	if err != nil {
		return err
	}
	if err := t.record(ctx, store.DecisionHistory, history.NewEntry{
		EntityID:    d.ID,
		Action:      history.ActionDeleted,
		Description: fmt.Sprintf("Deleted decision %q", d.Title),
	}, func(ctx context.Context) error {
		if err := t.store.DeleteDecision(ctx, id); err != nil {
			return fmt.Errorf("deleting decision: %w", err)
		}
		return nil
	}); err != nil {
		return err
	}
	t.log.Info("decision deleted", map[string]interface{}{"decision_id": d.ID})
	return nil
}

// DecisionHistory returns the decision log, newest first. An empty id returns all of it.
func (t *Tracker) DecisionHistory(ctx context.Context, decisionID string) ([]history.Entry, error) {
	return t.entityHistory(ctx, store.DecisionHistory, decisionID)
}

func (t *Tracker) openDecision(ctx context.Context, id string) (store.Decision, error) {
	d, err := t.GetDecision(ctx, id)
	if err != nil {
		return store.Decision{}, err
	}
	if d.Status != store.DecisionOpen {
		return store.Decision{}, fmt.Errorf("decision %s is %s: %w", id, d.Status, ErrClosed)
	}
	return d, nil
}

func (t *Tracker) saveDecisionChange(ctx context.Context, d store.Decision, entry history.NewEntry) (store.Decision, error) {
	if err := t.record(ctx, store.DecisionHistory, entry, func(ctx context.Context) error {
		if err := t.store.SaveDecision(ctx, d); err != nil {
			return fmt.Errorf("saving decision: %w", err)
		}
		return nil
	}); err != nil {
		return store.Decision{}, err
	}
	t.log.Info("decision changed", map[string]interface{}{"decision_id": d.ID, "action": string(entry.Action)})
	return d, nil
}

func findOption(options []scoring.Option, id string) int {
	for i, o := range options {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func hasCriterion(criteria []scoring.Criterion, id string) bool {
	for _, c := range criteria {
		if c.ID == id {
			return true
		}
	}
	return false
}
