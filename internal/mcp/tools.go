package mcp

import (
	"context"
	"fmt"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"deepthink/internal/history"
	"deepthink/internal/metrics"
	"deepthink/internal/scoring"
	"deepthink/internal/store"
	"deepthink/internal/validate"
	"deepthink/internal/values"
)

type CriterionInput struct {
	ID       string `json:"id" jsonschema:"criterion id referenced by option scores"`
	Name     string `json:"name" jsonschema:"criterion label"`
	Weight   int    `json:"weight" jsonschema:"importance multiplier from 0 to 10"`
	Category string `json:"category,omitempty" jsonschema:"financial, growth, lifestyle, values, or other"`
}

type OptionInput struct {
	ID     string             `json:"id" jsonschema:"option id"`
	Name   string             `json:"name" jsonschema:"option label"`
	Scores map[string]float64 `json:"scores,omitempty" jsonschema:"criterion id to score from 0 to 10"`
}

type ComputeRankingInput struct {
	Criteria []CriterionInput `json:"criteria" jsonschema:"weighted criteria"`
	Options  []OptionInput    `json:"options" jsonschema:"options to rank"`
}

type ValueInput struct {
	ID         string `json:"id" jsonschema:"value id"`
	Name       string `json:"name" jsonschema:"value label"`
	Importance int    `json:"importance" jsonschema:"how much the value matters, 1 to 10"`
	Alignment  int    `json:"alignment" jsonschema:"how well the current situation honours it, 1 to 10"`
}

type RankValuesInput struct {
	Values []ValueInput `json:"values" jsonschema:"rated values"`
}

type RankDecisionInput struct {
	ID string `json:"id" jsonschema:"decision id"`
}

type ListDecisionsInput struct {
	Status string `json:"status,omitempty" jsonschema:"open, decided, or archived"`
}

type ListGoalsInput struct {
	Status string `json:"status,omitempty" jsonschema:"active, completed, or archived"`
}

type GetHistoryInput struct {
	Kind     string `json:"kind" jsonschema:"goal or decision"`
	EntityID string `json:"entity_id,omitempty" jsonschema:"restrict to one goal or decision"`
}

type ValuesReportInput struct {
	Top int `json:"top,omitempty" jsonschema:"how many values to list by importance"`
}

type ScoredOptionOutput struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	TotalScore       float64 `json:"total_score"`
	MaxPossibleScore float64 `json:"max_possible_score"`
	Percentage       float64 `json:"percentage"`
}

type RankingOutput struct {
	Ranking []ScoredOptionOutput `json:"ranking"`
}

type RankedValueOutput struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Importance int    `json:"importance"`
	Alignment  int    `json:"alignment"`
	Gap        int    `json:"gap"`
	Bucket     string `json:"bucket"`
	Advice     string `json:"advice,omitempty"`
}

type RankValuesOutput struct {
	ByGap        []RankedValueOutput `json:"by_gap"`
	ByImportance []RankedValueOutput `json:"by_importance"`
}

type DecisionSummaryOutput struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Status         string `json:"status"`
	Criteria       int    `json:"criteria"`
	Options        int    `json:"options"`
	ChosenOptionID string `json:"chosen_option_id,omitempty"`
}

type ListDecisionsOutput struct {
	Decisions []DecisionSummaryOutput `json:"decisions"`
}

type GoalSummaryOutput struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	Status     string `json:"status"`
	Progress   int    `json:"progress"`
	Milestones int    `json:"milestones"`
	TargetDate string `json:"target_date,omitempty"`
}

type ListGoalsOutput struct {
	Goals []GoalSummaryOutput `json:"goals"`
}

type HistoryEntryOutput struct {
	ID          string `json:"id"`
	EntityID    string `json:"entity_id"`
	Action      string `json:"action"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
	OldValue    any    `json:"old_value,omitempty"`
	NewValue    any    `json:"new_value,omitempty"`
}

type GetHistoryOutput struct {
	Entries []HistoryEntryOutput `json:"entries"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "compute_ranking",
		Description: "Rank options against weighted criteria without storing anything",
	}, s.handleComputeRanking)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "rank_values",
		Description: "Rank rated values by importance-alignment gap and by importance",
	}, s.handleRankValues)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "rank_decision",
		Description: "Rank the options of a stored decision",
	}, s.handleRankDecision)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_decisions",
		Description: "List stored decisions with optional status filter",
	}, s.handleListDecisions)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_goals",
		Description: "List stored goals with optional status filter",
	}, s.handleListGoals)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_history",
		Description: "Return the goal or decision history, newest first",
	}, s.handleGetHistory)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "values_report",
		Description: "Report stored values by gap with advice, plus the top values by importance",
	}, s.handleValuesReport)
}

func (s *Server) handleComputeRanking(ctx context.Context, req *sdk.CallToolRequest, input ComputeRankingInput) (*sdk.CallToolResult, RankingOutput, error) {
	criteria := make([]scoring.Criterion, 0, len(input.Criteria))
	for _, c := range input.Criteria {
		category, err := scoring.ParseCategory(c.Category)
		if err != nil {
			return nil, RankingOutput{}, err
		}
		criteria = append(criteria, scoring.Criterion{ID: c.ID, Name: c.Name, Weight: c.Weight, Category: category})
	}
	options := make([]scoring.Option, 0, len(input.Options))
	for _, o := range input.Options {
		options = append(options, scoring.Option{ID: o.ID, Name: o.Name, Scores: o.Scores})
	}
	if err := scoring.ValidateCriteria(criteria); err != nil {
		return nil, RankingOutput{}, err
	}
	if err := scoring.ValidateOptions(options); err != nil {
		return nil, RankingOutput{}, err
	}

	metrics.RankingsComputed.WithLabelValues("adhoc").Inc()
	return nil, rankingOutput(scoring.ComputeRanking(options, criteria)), nil
}

func (s *Server) handleRankValues(ctx context.Context, req *sdk.CallToolRequest, input RankValuesInput) (*sdk.CallToolResult, RankValuesOutput, error) {
	vals := make([]values.Value, 0, len(input.Values))
	var errs validate.Errors
	for i, v := range input.Values {
		val, err := values.NewValue(v.ID, v.Name, "", v.Importance, v.Alignment)
		if err != nil {
			errs.Add(fmt.Sprintf("values[%d]", i), validate.CodeOutOfRange, err.Error())
			continue
		}
		vals = append(vals, val)
	}
	if err := errs.Err(); err != nil {
		return nil, RankValuesOutput{}, err
	}

	metrics.RankingsComputed.WithLabelValues("values").Inc()
	return nil, RankValuesOutput{
		ByGap:        rankedValuesOutput(values.Advise(values.RankByGap(vals), s.advice)),
		ByImportance: rankedValuesOutput(values.Advise(values.RankByImportance(vals), s.advice)),
	}, nil
}

func (s *Server) handleRankDecision(ctx context.Context, req *sdk.CallToolRequest, input RankDecisionInput) (*sdk.CallToolResult, RankingOutput, error) {
	if input.ID == "" {
		return nil, RankingOutput{}, fmt.Errorf("id is required")
	}
	ranked, err := s.svc.RankDecision(ctx, input.ID)
	if err != nil {
		return nil, RankingOutput{}, err
	}
	return nil, rankingOutput(ranked), nil
}

func (s *Server) handleListDecisions(ctx context.Context, req *sdk.CallToolRequest, input ListDecisionsInput) (*sdk.CallToolResult, ListDecisionsOutput, error) {
	status, err := store.ParseDecisionStatus(input.Status)
	if err != nil {
		return nil, ListDecisionsOutput{}, err
	}
	ds, err := s.svc.ListDecisions(ctx, status)
	if err != nil {
		return nil, ListDecisionsOutput{}, err
	}

	output := make([]DecisionSummaryOutput, 0, len(ds))
	for _, d := range ds {
		output = append(output, DecisionSummaryOutput{
			ID:             d.ID,
			Title:          d.Title,
			Status:         string(d.Status),
			Criteria:       len(d.Criteria),
			Options:        len(d.Options),
			ChosenOptionID: d.ChosenOptionID,
		})
	}
	return nil, ListDecisionsOutput{Decisions: output}, nil
}

func (s *Server) handleListGoals(ctx context.Context, req *sdk.CallToolRequest, input ListGoalsInput) (*sdk.CallToolResult, ListGoalsOutput, error) {
	status, err := store.ParseGoalStatus(input.Status)
	if err != nil {
		return nil, ListGoalsOutput{}, err
	}
	goals, err := s.svc.ListGoals(ctx, status)
	if err != nil {
		return nil, ListGoalsOutput{}, err
	}

	output := make([]GoalSummaryOutput, 0, len(goals))
	for _, g := range goals {
		var target string
		if g.TargetDate != nil {
			target = g.TargetDate.Format(time.DateOnly)
		}
		output = append(output, GoalSummaryOutput{
			ID:         g.ID,
			Title:      g.Title,
			Category:   string(g.Category),
			Status:     string(g.Status),
			Progress:   g.Progress,
			Milestones: len(g.Milestones),
			TargetDate: target,
		})
	}
	return nil, ListGoalsOutput{Goals: output}, nil
}

func (s *Server) handleGetHistory(ctx context.Context, req *sdk.CallToolRequest, input GetHistoryInput) (*sdk.CallToolResult, GetHistoryOutput, error) {
	var (
		entries []history.Entry
		err     error
	)
	switch store.HistoryKind(input.Kind) {
	case store.GoalHistory:
		entries, err = s.svc.GoalHistory(ctx, input.EntityID)
	case store.DecisionHistory:
		entries, err = s.svc.DecisionHistory(ctx, input.EntityID)
	default:
		return nil, GetHistoryOutput{}, fmt.Errorf("kind must be goal or decision")
	}
	if err != nil {
		return nil, GetHistoryOutput{}, err
	}

	output := make([]HistoryEntryOutput, 0, len(entries))
	for _, e := range entries {
		output = append(output, HistoryEntryOutput{
			ID:          e.ID,
			EntityID:    e.EntityID,
			Action:      string(e.Action),
			Description: e.Description,
			Timestamp:   e.Timestamp.Format(time.RFC3339),
			OldValue:    e.OldValue,
			NewValue:    e.NewValue,
		})
	}
	return nil, GetHistoryOutput{Entries: output}, nil
}

func (s *Server) handleValuesReport(ctx context.Context, req *sdk.CallToolRequest, input ValuesReportInput) (*sdk.CallToolResult, RankValuesOutput, error) {
	report, err := s.svc.ValuesReport(ctx, input.Top)
	if err != nil {
		return nil, RankValuesOutput{}, err
	}
	return nil, RankValuesOutput{
		ByGap:        rankedValuesOutput(report.ByGap),
		ByImportance: rankedValuesOutput(report.Top),
	}, nil
}

func rankingOutput(ranked []scoring.ScoredOption) RankingOutput {
	output := make([]ScoredOptionOutput, 0, len(ranked))
	for _, r := range ranked {
		output = append(output, ScoredOptionOutput{
			ID:               r.ID,
			Name:             r.Name,
			TotalScore:       r.TotalScore,
			MaxPossibleScore: r.MaxPossibleScore,
			Percentage:       r.Percentage,
		})
	}
	return RankingOutput{Ranking: output}
}

func rankedValuesOutput(ranked []values.Ranked) []RankedValueOutput {
	output := make([]RankedValueOutput, 0, len(ranked))
	for _, r := range ranked {
		output = append(output, RankedValueOutput{
			ID:         r.ID,
			Name:       r.Name,
			Importance: r.Importance,
			Alignment:  r.Alignment,
			Gap:        r.Gap,
			Bucket:     string(r.Bucket),
			Advice:     r.Advice,
		})
	}
	return output
}
