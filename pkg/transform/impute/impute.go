// Package impute fills missing numeric cells with per-column statistics
// learned at fit time.
package impute

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"

	"github.com/wdm0006/switchboard/pkg/tabular"
	"github.com/wdm0006/switchboard/pkg/transform"
)

const (
	Constant     = "constant"
	Mean         = "mean"
	Median       = "median"
	MostFrequent = "most_frequent"
)

var (
	ErrUnknownStrategy = errors.New("impute: unknown strategy")
	ErrNotFitted       = errors.New("impute: not fitted")
)

// Imputer replaces NaN and null cells. Strategy defaults to Mean; Fill is
// used by Constant and for columns that had no values at fit time.
type Imputer struct {
	Strategy string
	Fill     float64

	fills []float64
}

func (t *Imputer) Name() string { return "impute" }

func (t *Imputer) strategy() string {
	if t.Strategy == "" {
		return Mean
	}
	return t.Strategy
}

func (t *Imputer) Fit(X tabular.Table, y []float64) error {
	cols, err := transform.Columns(X)
	if err != nil {
		return err
	}
	var fill func([]float64) float64
	switch s := t.strategy(); s {
	case Constant:
		fill = func([]float64) float64 { return t.Fill }
	case Mean:
		fill = func(vals []float64) float64 { return stat.Mean(vals, nil) }
	case Median:
		fill = median
	case MostFrequent:
		fill = mostFrequent
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
	t.fills = make([]float64, len(cols))
	for j, vals := range cols {
		if len(vals) == 0 {
			t.fills[j] = t.Fill
			continue
		}
		t.fills[j] = fill(vals)
	}
	log.Debug().Str("strategy", t.strategy()).Floats64("fills", t.fills).Msg("imputer fitted")
	return nil
}

func (t *Imputer) Transform(X tabular.Table) (tabular.Table, error) {
	if t.fills == nil {
		return tabular.Table{}, ErrNotFitted
	}
	if err := transform.CheckWidth(X, len(t.fills)); err != nil {
		return tabular.Table{}, fmt.Errorf("impute: %w", err)
	}
	return transform.Map(X, func(j int, v float64) float64 {
		if math.IsNaN(v) {
			return t.fills[j]
		}
		return v
	})
}

func (t *Imputer) Params() map[string]any {
	return map[string]any{"strategy": t.strategy(), "fill": t.Fill}
}

func (t *Imputer) SetParams(params map[string]any) error {
	for k, v := range params {
		switch k {
		case "strategy":
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("impute: strategy: %w: %T", tabular.ErrUnsupportedType, v)
			}
			t.Strategy = s
		case "fill":
			f, err := transform.Float(k, v)
			if err != nil {
				return fmt.Errorf("impute: %w", err)
			}
			t.Fill = f
		default:
			return fmt.Errorf("impute: unknown parameter %q", k)
		}
	}
	t.fills = nil
	return nil
}

// median averages the two middle values of an even-length column.
func median(vals []float64) float64 {
	s := slices.Clone(vals)
	slices.Sort(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// mostFrequent breaks ties toward the smallest value. stat.Mode gives the
// top count; the first sorted run reaching it is the answer.
func mostFrequent(vals []float64) float64 {
	_, top := stat.Mode(vals, nil)
	s := slices.Clone(vals)
	slices.Sort(s)
	for i := 0; i < len(s); {
		j := i
		for j < len(s) && s[j] == s[i] {
			j++
		}
		if float64(j-i) == top {
			return s[i]
		}
		i = j
	}
	return s[0]
}
