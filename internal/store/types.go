package store

import (
	"fmt"
	"strings"
	"time"

	"deepthink/internal/scoring"
)

type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalArchived  GoalStatus = "archived"
)

type GoalCategory string

const (
	GoalCareer    GoalCategory = "career"
	GoalSkills    GoalCategory = "skills"
	GoalFinancial GoalCategory = "financial"
	GoalPersonal  GoalCategory = "personal"
	GoalHealth    GoalCategory = "health"
)

var goalCategories = []GoalCategory{GoalCareer, GoalSkills, GoalFinancial, GoalPersonal, GoalHealth}

func ParseGoalCategory(s string) (GoalCategory, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return GoalCareer, nil
	}
	for _, c := range goalCategories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown goal category: %q", s)
}

func ParseGoalStatus(s string) (GoalStatus, error) {
	switch GoalStatus(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return "", nil
	case GoalActive:
		return GoalActive, nil
	case GoalCompleted:
		return GoalCompleted, nil
	case GoalArchived:
		return GoalArchived, nil
	}
	return "", fmt.Errorf("unknown goal status: %q", s)
}

type Milestone struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type Goal struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Category    GoalCategory `json:"category"`
	Status      GoalStatus   `json:"status"`
	Progress    int          `json:"progress"`
	TargetDate  *time.Time   `json:"targetDate,omitempty"`
	Milestones  []Milestone  `json:"milestones"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

type DecisionStatus string

const (
	DecisionOpen     DecisionStatus = "open"
	DecisionDecided  DecisionStatus = "decided"
	DecisionArchived DecisionStatus = "archived"
)

func ParseDecisionStatus(s string) (DecisionStatus, error) {
	switch DecisionStatus(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return "", nil
	case DecisionOpen:
		return DecisionOpen, nil
	case DecisionDecided:
		return DecisionDecided, nil
	case DecisionArchived:
		return DecisionArchived, nil
	}
	return "", fmt.Errorf("unknown decision status: %q", s)
}

type Decision struct {
	ID             string              `json:"id"`
	Title          string              `json:"title"`
	Description    string              `json:"description,omitempty"`
	Status         DecisionStatus      `json:"status"`
	Criteria       []scoring.Criterion `json:"criteria"`
	Options        []scoring.Option    `json:"options"`
	ChosenOptionID string              `json:"chosenOptionId,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

type HistoryKind string

const (
	GoalHistory     HistoryKind = "goal"
	DecisionHistory HistoryKind = "decision"
)

func (k HistoryKind) Valid() bool {
	return k == GoalHistory || k == DecisionHistory
}
