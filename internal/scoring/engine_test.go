package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeRanking_WorkedExample(t *testing.T) {
	criteria := []Criterion{
		{ID: "cost", Name: "Cost", Weight: 8},
		{ID: "quality", Name: "Quality", Weight: 5},
	}
	options := []Option{{ID: "a", Name: "A", Scores: map[string]float64{"cost": 7, "quality": 10}}}

	ranked := ComputeRanking(options, criteria)
	require.Len(t, ranked, 1)
	assert.Equal(t, 106.0, ranked[0].TotalScore)
	assert.Equal(t, 130.0, ranked[0].MaxPossibleScore)
	assert.Equal(t, 82.0, ranked[0].Percentage)
}

func TestComputeRanking_Deterministic(t *testing.T) {
	criteria := []Criterion{{ID: "pay", Weight: 7}, {ID: "growth", Weight: 3}}
	options := []Option{
		{ID: "x", Scores: map[string]float64{"pay": 4, "growth": 9}},
		{ID: "y", Scores: map[string]float64{"pay": 8, "growth": 2}},
	}

	first := ComputeRanking(options, criteria)
	second := ComputeRanking(options, criteria)
	assert.Equal(t, first, second)
}

func TestComputeRanking_ZeroWeights(t *testing.T) {
	criteria := []Criterion{{ID: "a", Weight: 0}, {ID: "b", Weight: 0}}
	options := []Option{
		{ID: "one", Scores: map[string]float64{"a": 10, "b": 3}},
		{ID: "two", Scores: map[string]float64{"a": 1}},
	}

	for _, r := range ComputeRanking(options, criteria) {
		assert.Equal(t, 0.0, r.TotalScore)
		assert.Equal(t, 0.0, r.Percentage)
		assert.False(t, math.IsNaN(r.Percentage))
	}
}

func TestComputeRanking_FullScoreCeiling(t *testing.T) {
	weightSets := [][]int{{1}, {10, 1}, {3, 0, 7}, {5, 5, 5, 5}}
	for _, weights := range weightSets {
		criteria := make([]Criterion, 0, len(weights))
		scores := map[string]float64{}
		for i, w := range weights {
			id := string(rune('a' + i))
			criteria = append(criteria, Criterion{ID: id, Weight: w})
			scores[id] = 10
		}
		ranked := ComputeRanking([]Option{{ID: "best", Scores: scores}}, criteria)
		require.Len(t, ranked, 1)
		assert.Equal(t, 100.0, ranked[0].Percentage, "weights %v", weights)
	}
}

func TestComputeRanking_OrderIsStable(t *testing.T) {
	criteria := []Criterion{{ID: "c", Weight: 10}}
	options := []Option{
		{ID: "A", Scores: map[string]float64{"c": 8}},
		{ID: "B", Scores: map[string]float64{"c": 9.5}},
		{ID: "C", Scores: map[string]float64{"c": 9.5}},
	}

	ranked := ComputeRanking(options, criteria)
	require.Len(t, ranked, 3)
	assert.Equal(t, 95.0, ranked[0].TotalScore)
	assert.Equal(t, "B", ranked[0].ID)
	assert.Equal(t, "C", ranked[1].ID)
	assert.Equal(t, "A", ranked[2].ID)
	assert.Equal(t, 80.0, ranked[2].TotalScore)
}

func TestComputeRanking_SortsByTotalNotPercentage(t *testing.T) {
	criteria := []Criterion{{ID: "a", Weight: 2}, {ID: "b", Weight: 6}}
	options := []Option{
		{ID: "low", Scores: map[string]float64{"a": 10}},
		{ID: "high", Scores: map[string]float64{"b": 5}},
	}

	ranked := ComputeRanking(options, criteria)
	assert.Equal(t, "high", ranked[0].ID)
	assert.GreaterOrEqual(t, ranked[0].Percentage, ranked[1].Percentage)
	assert.Equal(t, ranked[0].MaxPossibleScore, ranked[1].MaxPossibleScore)
}

func TestComputeRanking_MissingAndUnknownScores(t *testing.T) {
	criteria := []Criterion{{ID: "a", Weight: 4}, {ID: "b", Weight: 6}}
	options := []Option{{ID: "o", Scores: map[string]float64{"a": 5, "ghost": 10}}}

	ranked := ComputeRanking(options, criteria)
	assert.Equal(t, 20.0, ranked[0].TotalScore)
	assert.Equal(t, 20.0, ranked[0].Percentage)
}

func TestComputeRanking_EmptyInputs(t *testing.T) {
	assert.Empty(t, ComputeRanking(nil, []Criterion{{ID: "a", Weight: 1}}))

	ranked := ComputeRanking([]Option{{ID: "o"}}, nil)
	require.Len(t, ranked, 1)
	assert.Equal(t, 0.0, ranked[0].TotalScore)
	assert.Equal(t, 0.0, ranked[0].Percentage)
}

func TestComputeRanking_DoesNotClampOrMutate(t *testing.T) {
	criteria := []Criterion{{ID: "a", Weight: 1}}
	scores := map[string]float64{"a": 15}
	options := []Option{{ID: "o", Scores: scores}}

	ranked := ComputeRanking(options, criteria)
	assert.Equal(t, 150.0, ranked[0].Percentage)

	ranked[0].Scores["a"] = 1
	assert.Equal(t, 15.0, scores["a"])
}

func TestComputeRanking_NaNPropagates(t *testing.T) {
	criteria := []Criterion{{ID: "a", Weight: 1}}
	ranked := ComputeRanking([]Option{{ID: "o", Scores: map[string]float64{"a": math.NaN()}}}, criteria)
	assert.True(t, math.IsNaN(ranked[0].TotalScore))
	assert.True(t, math.IsNaN(ranked[0].Percentage))
}

func TestWinner(t *testing.T) {
	_, ok := Winner(nil)
	assert.False(t, ok)

	ranked := ComputeRanking([]Option{
		{ID: "a", Scores: map[string]float64{"x": 2}},
		{ID: "b", Scores: map[string]float64{"x": 9}},
	}, []Criterion{{ID: "x", Weight: 1}})
	top, ok := Winner(ranked)
	require.True(t, ok)
	assert.Equal(t, "b", top.ID)
}
