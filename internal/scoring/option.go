package scoring

import (
	"errors"
	"fmt"
	"strings"

	"deepthink/internal/validate"
)

// Option is a candidate choice. Scores maps Criterion.ID to a raw 0-10 rating;
// keys that match no criterion are ignored by the ranking.
type Option struct {
	ID     string             `json:"id"`
	Name   string             `json:"name"`
	Scores map[string]float64 `json:"scores"`
}

func NewOption(id, name string) (Option, error) {
	o := Option{
		ID:     strings.TrimSpace(id),
		Name:   strings.TrimSpace(name),
		Scores: map[string]float64{},
	}
	var errs validate.Errors
	errs.Required("id", o.ID)
	errs.Required("name", o.Name)
	if err := errs.Err(); err != nil {
		return Option{}, err
	}
	return o, nil
}

// Rate returns a copy of the option with the score for criterionID set.
func (o Option) Rate(criterionID string, score float64) (Option, error) {
	var errs validate.Errors
	errs.Required("criterion", criterionID)
	errs.FloatRange("score", score, MinScore, MaxScore)
	if err := errs.Err(); err != nil {
		return o, err
	}

	scores := make(map[string]float64, len(o.Scores)+1)
	for k, v := range o.Scores {
		scores[k] = v
	}
	scores[criterionID] = score
	o.Scores = scores
	return o, nil
}

func (o Option) Validate() error {
	var errs validate.Errors
	errs.Required("id", o.ID)
	errs.Required("name", o.Name)
	for key, score := range o.Scores {
		errs.FloatRange(fmt.Sprintf("scores.%s", key), score, MinScore, MaxScore)
	}
	return errs.Err()
}

func ValidateOptions(options []Option) error {
	var errs validate.Errors
	seen := make(map[string]struct{}, len(options))
	for i, o := range options {
		var oerrs validate.Errors
		if asErrors(o.Validate(), &oerrs) {
			for _, e := range oerrs {
				errs.Add(fmt.Sprintf("options[%d].%s", i, e.Field), e.Code, e.Message)
			}
		}
		if _, dup := seen[o.ID]; dup {
			errs.Add(fmt.Sprintf("options[%d].id", i), validate.CodeDuplicate, fmt.Sprintf("duplicate option id %q", o.ID))
		}
		seen[o.ID] = struct{}{}
	}
	return errs.Err()
}

func asErrors(err error, target *validate.Errors) bool {
	if err == nil {
		return false
	}
	return errors.As(err, target)
}
