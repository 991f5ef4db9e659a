package values

import (
	"fmt"
	"strings"
)

type Category string

const (
	CategoryPersonal      Category = "personal"
	CategoryProfessional  Category = "professional"
	CategoryRelationships Category = "relationships"
	CategoryWellbeing     Category = "wellbeing"
	CategoryOther         Category = "other"
)

var categories = []Category{
	CategoryPersonal,
	CategoryProfessional,
	CategoryRelationships,
	CategoryWellbeing,
	CategoryOther,
}

func Categories() []Category {
	return append([]Category(nil), categories...)
}

// ParseCategory maps an empty string to CategoryOther.
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
	return "", fmt.Errorf("unknown value category: %q", s)
}

func (c Category) Label() string {
	switch c {
	case CategoryPersonal:
		return "Personal"
	case CategoryProfessional:
		return "Professional"
	case CategoryRelationships:
		return "Relationships"
	case CategoryWellbeing:
		return "Wellbeing"
	case CategoryOther:
		return "Other"
	}
	return string(c)
}
