package tracker

import (
	"context"
	"errors"
	"fmt"

	"deepthink/internal/metrics"
	"deepthink/internal/validate"
	"deepthink/internal/values"
)

// DefaultTopValues is how many values a report lists by importance.
const DefaultTopValues = 3

type ValuesReport struct {
	ByGap []values.Ranked `json:"byGap"`
	Top   []values.Ranked `json:"top"`
}

// SaveValues replaces the stored value ratings after validating all of them.
func (t *Tracker) SaveValues(ctx context.Context, vals []values.Value) error {
	var errs validate.Errors
	seen := make(map[string]struct{}, len(vals))
	for i, v := range vals {
		var verrs validate.Errors
		if errors.As(v.Validate(), &verrs) {
			for _, e := range verrs {
				errs.Add(fmt.Sprintf("values[%d].%s", i, e.Field), e.Code, e.Message)
			}
		}
		if _, dup := seen[v.ID]; dup {
			errs.Add(fmt.Sprintf("values[%d].id", i), validate.CodeDuplicate, fmt.Sprintf("duplicate value id %q", v.ID))
		}
		seen[v.ID] = struct{}{}
	}
	if err := errs.Err(); err != nil {
		return err
	}

	if err := t.store.SaveValues(ctx, vals); err != nil {
		return fmt.Errorf("saving values: %w", err)
	}
	t.log.Info("values saved", map[string]interface{}{"count": len(vals)})
	return nil
}

// SetValue inserts or replaces one value rating, keeping the others in order.
func (t *Tracker) SetValue(ctx context.Context, v values.Value) ([]values.Value, error) {
	vals, err := t.Values(ctx)
	if err != nil {
		return nil, err
	}
	replaced := false
	for i := range vals {
		if vals[i].ID == v.ID {
			vals[i] = v
			replaced = true
		}
	}
	if !replaced {
		vals = append(vals, v)
	}
	if err := t.SaveValues(ctx, vals); err != nil {
		return nil, err
	}
	return vals, nil
}

func (t *Tracker) Values(ctx context.Context) ([]values.Value, error) {
	vals, err := t.store.LoadValues(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading values: %w", err)
	}
	return vals, nil
}

// ValuesReport ranks the stored values by gap and lists the top n by
// importance, both with advice attached. n <= 0 means DefaultTopValues.
func (t *Tracker) ValuesReport(ctx context.Context, n int) (ValuesReport, error) {
	vals, err := t.Values(ctx)
	if err != nil {
		return ValuesReport{}, err
	}
	if n <= 0 {
		n = DefaultTopValues
	}
	metrics.RankingsComputed.WithLabelValues("values").Inc()
	return ValuesReport{
		ByGap: values.Advise(values.RankByGap(vals), t.advice),
		Top:   values.Advise(values.TopValues(vals, n), t.advice),
	}, nil
}
