package scoring

import (
	"math"
	"sort"
)

// ScoredOption is an Option with its derived totals. It is never persisted.
type ScoredOption struct {
	Option
	TotalScore       float64 `json:"totalScore"`
	MaxPossibleScore float64 `json:"maxPossibleScore"`
	Percentage       float64 `json:"percentage"`
}

// ComputeRanking scores every option against criteria and returns them sorted by
// TotalScore, highest first. Ties keep their input order. Inputs are not modified.
//
// Out-of-range or NaN scores are not rejected here; they flow through the
// arithmetic as-is. Use NewCriterion, Option.Rate or ValidateOptions at the boundary.
func ComputeRanking(options []Option, criteria []Criterion) []ScoredOption {
	ranked := make([]ScoredOption, 0, len(options))
	for _, option := range options {
		ranked = append(ranked, scoreOption(option, criteria))
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalScore > ranked[j].TotalScore
	})
	return ranked
}

func scoreOption(option Option, criteria []Criterion) ScoredOption {
	var total, best float64
	for _, c := range criteria {
		weight := float64(c.Weight)
		total += option.Scores[c.ID] * weight
		best += MaxScore * weight
	}

	scores := make(map[string]float64, len(option.Scores))
	for k, v := range option.Scores {
		scores[k] = v
	}
	option.Scores = scores

	return ScoredOption{
		Option:           option,
		TotalScore:       total,
		MaxPossibleScore: best,
		Percentage:       percentage(total, best),
	}
}

func percentage(total, best float64) float64 {
	if best == 0 {
		return 0
	}
	return math.Round(total / best * 100)
}

// Winner returns the top-ranked option. ok is false for an empty ranking.
func Winner(ranked []ScoredOption) (ScoredOption, bool) {
	if len(ranked) == 0 {
		return ScoredOption{}, false
	}
	return ranked[0], true
}
