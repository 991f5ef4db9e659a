// Package scoring ranks decision options against weighted criteria.
package scoring

import (
	"fmt"
	"strings"

	"deepthink/internal/validate"
)

const (
	MinWeight = 0
	MaxWeight = 10
	MinScore  = 0.0
	MaxScore  = 10.0
)

// Category groups criteria on the assessment form.
type Category string

const (
	CategoryFinancial Category = "financial"
	CategoryGrowth    Category = "growth"
	CategoryLifestyle Category = "lifestyle"
	CategoryValues    Category = "values"
	CategoryOther     Category = "other"
)

var categories = []Category{CategoryFinancial, CategoryGrowth, CategoryLifestyle, CategoryValues, CategoryOther}

func Categories() []Category {
	return append([]Category(nil), categories...)
}

// ParseCategory accepts the category name in any case. An empty string maps to CategoryOther.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return CategoryOther, nil
	}
	for _, c := range categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown criterion category: %q", s)
}

func (c Category) Label() string {
	switch c {
	case CategoryFinancial:
		return "Financial"
	case CategoryGrowth:
		return "Growth & Learning"
	case CategoryLifestyle:
		return "Lifestyle"
	case CategoryValues:
		return "Values & Meaning"
	case CategoryOther:
		return "Other"
	}
	return string(c)
}

// Criterion is one weighted axis of evaluation. Weight is a linear multiplier;
// zero means the criterion contributes nothing.
type Criterion struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Weight   int      `json:"weight"`
	Category Category `json:"category,omitempty"`
}

func NewCriterion(id, name string, weight int, category Category) (Criterion, error) {
	c := Criterion{
		ID:       strings.TrimSpace(id),
		Name:     strings.TrimSpace(name),
		Weight:   weight,
		Category: category,
	}
	if c.Category == "" {
		c.Category = CategoryOther
	}
	if err := c.Validate(); err != nil {
		return Criterion{}, err
	}
	return c, nil
}

func (c Criterion) Validate() error {
	var errs validate.Errors
	errs.Required("id", c.ID)
	errs.Required("name", c.Name)
	errs.IntRange("weight", c.Weight, MinWeight, MaxWeight)
	if c.Category != "" {
		if _, err := ParseCategory(string(c.Category)); err != nil {
			errs.Add("category", validate.CodeUnknownValue, err.Error())
		}
	}
	return errs.Err()
}

// ValidateCriteria checks each criterion and rejects duplicate ids.
func ValidateCriteria(criteria []Criterion) error {
	var errs validate.Errors
	seen := make(map[string]struct{}, len(criteria))
	for i, c := range criteria {
		var cerrs validate.Errors
		if asErrors(c.Validate(), &cerrs) {
			for _, e := range cerrs {
				errs.Add(fmt.Sprintf("criteria[%d].%s", i, e.Field), e.Code, e.Message)
			}
		}
		if _, dup := seen[c.ID]; dup {
			errs.Add(fmt.Sprintf("criteria[%d].id", i), validate.CodeDuplicate, fmt.Sprintf("duplicate criterion id %q", c.ID))
		}
		seen[c.ID] = struct{}{}
	}
	return errs.Err()
}
