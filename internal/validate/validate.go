package validate

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

type Code string

const (
	CodeRequired     Code = "required"
	CodeOutOfRange   Code = "out_of_range"
	CodeNotANumber   Code = "not_a_number"
	CodeUnknownValue Code = "unknown_value"
	CodeDuplicate    Code = "duplicate"
	CodeSchema       Code = "schema_violation"
)

// Error describes one rejected field at a construction boundary.
type Error struct {
	Field   string
	Code    Code
	Message string
}

func (e Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Field, e.Message, e.Code)
}

// Errors collects every problem found in one input instead of stopping at the first.
type Errors []Error

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, item := range e {
		parts = append(parts, item.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Err returns nil when nothing was collected, so callers never hand back a typed nil.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e Errors) HasField(field string) bool {
	for _, item := range e {
		if item.Field == field {
			return true
		}
	}
	return false
}

func (e *Errors) Add(field string, code Code, message string) {
	*e = append(*e, Error{Field: field, Code: code, Message: message})
}

func (e *Errors) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		e.Add(field, CodeRequired, "is required")
	}
}

func (e *Errors) IntRange(field string, value, min, max int) {
	if value < min || value > max {
		e.Add(field, CodeOutOfRange, fmt.Sprintf("must be between %d and %d, got %d", min, max, value))
	}
}

func (e *Errors) FloatRange(field string, value, min, max float64) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		e.Add(field, CodeNotANumber, "must be a finite number")
		return
	}
	if value < min || value > max {
		e.Add(field, CodeOutOfRange, fmt.Sprintf("must be between %g and %g, got %g", min, max, value))
	}
}

func IsValidation(err error) bool {
	var errs Errors
	if errors.As(err, &errs) {
		return true
	}
	var single Error
	return errors.As(err, &single)
}
