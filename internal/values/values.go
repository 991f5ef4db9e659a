package values

import (
	"sort"
	"strings"

	"deepthink/internal/validate"
)

const (
	MinRating = 1
	MaxRating = 10
)

type Value struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Importance  int      `json:"importance"`
	Alignment   int      `json:"alignment"`
	Category    Category `json:"category,omitempty"`
}

func NewValue(id, name, description string, importance, alignment int) (Value, error) {
	v := Value{
		ID:          strings.TrimSpace(id),
		Name:        strings.TrimSpace(name),
		Description: description,
		Importance:  importance,
		Alignment:   alignment,
		Category:    CategoryOther,
	}
	if err := v.Validate(); err != nil {
		return Value{}, err
	}
	return v, nil
}

func (v Value) Validate() error {
	var errs validate.Errors
	errs.Required("id", v.ID)
	errs.Required("name", v.Name)
	errs.IntRange("importance", v.Importance, MinRating, MaxRating)
	errs.IntRange("alignment", v.Alignment, MinRating, MaxRating)
	if v.Category != "" {
		if _, err := ParseCategory(string(v.Category)); err != nil {
			errs.Add("category", validate.CodeUnknownValue, err.Error())
		}
	}
	return errs.Err()
}

// Gap is positive when the value matters more than it is currently honoured.
func (v Value) Gap() int {
	return v.Importance - v.Alignment
}

type Ranked struct {
	Value
	Gap    int    `json:"gap"`
	Bucket Bucket `json:"bucket"`
	Advice string `json:"advice,omitempty"`
}

// RankByGap orders values by gap, most under-honoured first. Ties keep input order.
func RankByGap(values []Value) []Ranked {
	ranked := rank(values)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Gap > ranked[j].Gap
	})
	return ranked
}

// RankByImportance orders values by importance alone. Ties keep input order.
func RankByImportance(values []Value) []Ranked {
	ranked := rank(values)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Importance > ranked[j].Importance
	})
	return ranked
}

func TopValues(values []Value, n int) []Ranked {
	ranked := RankByImportance(values)
	if n < 0 {
		n = 0
	}
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

func rank(values []Value) []Ranked {
	out := make([]Ranked, 0, len(values))
	for _, v := range values {
		gap := v.Gap()
		out = append(out, Ranked{Value: v, Gap: gap, Bucket: BucketFor(gap)})
	}
	return out
}
