package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"deepthink/internal/history"
	"deepthink/internal/scoring"
	"deepthink/internal/store"
	"deepthink/internal/validate"
	"deepthink/internal/values"
)

const ExportVersion = "1.0"

type Export struct {
	Version    string           `json:"version"`
	ExportedAt time.Time        `json:"exportedAt"`
	Goals      []store.Goal     `json:"goals"`
	Decisions  []store.Decision `json:"decisions"`
	Values     []values.Value   `json:"values"`
}

// Export snapshots every goal, decision and value rating.
func (t *Tracker) Export(ctx context.Context) (Export, error) {
	goals, err := t.ListGoals(ctx, "")
	if err != nil {
		return Export{}, err
	}
	decisions, err := t.ListDecisions(ctx, "")
	if err != nil {
		return Export{}, err
	}
	vals, err := t.Values(ctx)
	if err != nil {
		return Export{}, err
	}
	return Export{
		Version:    ExportVersion,
		ExportedAt: t.clock.Now(),
		Goals:      goals,
		Decisions:  decisions,
		Values:     vals,
	}, nil
}

// decisionSchema is the accepted shape of an imported decision document.
const decisionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["title", "criteria", "options"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "criteria": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "weight"],
        "properties": {
          "id": {"type": "string"},
          "name": {"type": "string", "minLength": 1},
          "weight": {"type": "integer", "minimum": 0, "maximum": 10},
          "category": {"type": "string", "enum": ["financial", "growth", "lifestyle", "values", "other"]}
        }
      }
    },
    "options": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "id": {"type": "string"},
          "name": {"type": "string", "minLength": 1},
          "scores": {
            "type": "object",
            "additionalProperties": {"type": "number", "minimum": 0, "maximum": 10}
          }
        }
      }
    }
  }
}`

type decisionDocument struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Criteria    []struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Weight   int    `json:"weight"`
		Category string `json:"category"`
	} `json:"criteria"`
	Options []struct {
		ID     string             `json:"id"`
		Name   string             `json:"name"`
		Scores map[string]float64 `json:"scores"`
	} `json:"options"`
}

// ImportDecision creates an open decision from a JSON document. The document
// is checked against decisionSchema before any criterion or option is built.
func (t *Tracker) ImportDecision(ctx context.Context, data []byte) (store.Decision, error) {
	if err := validate.Document(decisionSchema, data); err != nil {
		return store.Decision{}, err
	}
	var doc decisionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return store.Decision{}, fmt.Errorf("decoding decision document: %w", err)
	}

	var errs validate.Errors
	criteria := make([]scoring.Criterion, 0, len(doc.Criteria))
	known := make(map[string]bool, len(doc.Criteria))
	for i, in := range doc.Criteria {
		id := in.ID
		if id == "" {
			id = slug(in.Name)
		}
		category, err := scoring.ParseCategory(in.Category)
		if err != nil {
			errs.Add(fmt.Sprintf("criteria[%d].category", i), validate.CodeUnknownValue, err.Error())
			continue
		}
		c, err := scoring.NewCriterion(id, in.Name, in.Weight, category)
		if err != nil {
			errs.Add(fmt.Sprintf("criteria[%d]", i), validate.CodeSchema, err.Error())
			continue
		}
		criteria = append(criteria, c)
		known[c.ID] = true
	}

	options := make([]scoring.Option, 0, len(doc.Options))
	for i, in := range doc.Options {
		id := in.ID
		if id == "" {
			id = slug(in.Name)
		}
		o, err := scoring.NewOption(id, in.Name)
		if err != nil {
			errs.Add(fmt.Sprintf("options[%d]", i), validate.CodeSchema, err.Error())
			continue
		}
		for key, score := range in.Scores {
			if !known[key] {
				errs.Add(fmt.Sprintf("options[%d].scores.%s", i, key), validate.CodeUnknownValue, "score references no criterion")
				continue
			}
			if o, err = o.Rate(key, score); err != nil {
				errs.Add(fmt.Sprintf("options[%d].scores.%s", i, key), validate.CodeOutOfRange, err.Error())
			}
		}
		options = append(options, o)
	}
	if err := errs.Err(); err != nil {
		return store.Decision{}, err
	}
	if err := scoring.ValidateCriteria(criteria); err != nil {
		return store.Decision{}, err
	}
	if err := scoring.ValidateOptions(options); err != nil {
		return store.Decision{}, err
	}

	now := t.clock.Now()
	d := store.Decision{
		ID:          t.newID(),
		Title:       doc.Title,
		Description: doc.Description,
		Status:      store.DecisionOpen,
		Criteria:    criteria,
		Options:     options,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return t.saveDecisionChange(ctx, d, history.NewEntry{
		EntityID:    d.ID,
		Action:      history.ActionCreated,
		Description: fmt.Sprintf("Imported decision %q with %d criteria and %d options", d.Title, len(criteria), len(options)),
	})
}
