package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepthink/internal/validate"
)

func TestNewCriterion(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		cname   string
		weight  int
		wantErr bool
	}{
		{name: "valid", id: "salary", cname: "Salary", weight: 8},
		{name: "zero weight allowed", id: "commute", cname: "Commute", weight: 0},
		{name: "negative weight", id: "x", cname: "X", weight: -1, wantErr: true},
		{name: "weight above range", id: "x", cname: "X", weight: 11, wantErr: true},
		{name: "missing id", id: " ", cname: "X", weight: 3, wantErr: true},
		{name: "missing name", id: "x", cname: "", weight: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCriterion(tt.id, tt.cname, tt.weight, "")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, validate.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, CategoryOther, c.Category)
			assert.Equal(t, tt.weight, c.Weight)
		})
	}
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("Financial")
	require.NoError(t, err)
	assert.Equal(t, CategoryFinancial, c)

	_, err = ParseCategory("hobbies")
	assert.Error(t, err)

	for _, c := range Categories() {
		assert.NotEqual(t, string(c), c.Label(), "category %s needs a label", c)
	}
}

func TestValidateCriteria_Duplicates(t *testing.T) {
	err := ValidateCriteria([]Criterion{
		{ID: "a", Name: "A", Weight: 1},
		{ID: "a", Name: "A again", Weight: 2},
	})
	require.Error(t, err)

	var errs validate.Errors
	require.ErrorAs(t, err, &errs)
	assert.True(t, errs.HasField("criteria[1].id"))
}

func TestOptionRate(t *testing.T) {
	o, err := NewOption("startup", "Join the startup")
	require.NoError(t, err)

	rated, err := o.Rate("salary", 6)
	require.NoError(t, err)
	assert.Equal(t, 6.0, rated.Scores["salary"])
	assert.Empty(t, o.Scores, "Rate must not mutate the receiver")

	_, err = rated.Rate("salary", 10.5)
	assert.True(t, validate.IsValidation(err))

	_, err = rated.Rate("salary", math.NaN())
	assert.True(t, validate.IsValidation(err))
}

func TestValidateOptions(t *testing.T) {
	err := ValidateOptions([]Option{
		{ID: "a", Name: "A", Scores: map[string]float64{"x": 3}},
		{ID: "b", Name: "B", Scores: map[string]float64{"x": -2}},
	})
	var errs validate.Errors
	require.ErrorAs(t, err, &errs)
	assert.True(t, errs.HasField("options[1].scores.x"))

	assert.NoError(t, ValidateOptions(nil))
}
