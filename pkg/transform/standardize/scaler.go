// Package standardize rescales numeric columns to zero mean and unit variance.
package standardize

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/wdm0006/switchboard/pkg/tabular"
	"github.com/wdm0006/switchboard/pkg/transform"
)

var ErrNotFitted = errors.New("standardize: not fitted")

// Scaler learns each column's mean and population standard deviation.
// Columns with zero spread are only centered.
type Scaler struct {
	SkipMean bool
	SkipStd  bool

	means, stds []float64
}

func (s *Scaler) Name() string { return "standardize" }

func (s *Scaler) Fit(X tabular.Table, y []float64) error {
	cols, err := transform.Columns(X)
	if err != nil {
		return err
	}
	s.means = make([]float64, len(cols))
	s.stds = make([]float64, len(cols))
	for j, vals := range cols {
		if len(vals) == 0 {
			s.stds[j] = 1
			continue
		}
		s.means[j], s.stds[j] = popMeanStd(vals)
		if s.stds[j] == 0 {
			s.stds[j] = 1
		}
	}
	return nil
}

func (s *Scaler) Transform(X tabular.Table) (tabular.Table, error) {
	if s.means == nil {
		return tabular.Table{}, ErrNotFitted
	}
	if err := transform.CheckWidth(X, len(s.means)); err != nil {
		return tabular.Table{}, fmt.Errorf("standardize: %w", err)
	}
	return transform.Map(X, func(j int, v float64) float64 {
		if !s.SkipMean {
			v -= s.means[j]
		}
		if !s.SkipStd {
			v /= s.stds[j]
		}
		return v
	})
}

// popMeanStd rescales gonum's unbiased variance to the population one.
func popMeanStd(vals []float64) (float64, float64) {
	n := float64(len(vals))
	if n == 1 {
		return vals[0], 0
	}
	m, v := stat.MeanVariance(vals, nil)
	return m, math.Sqrt(v * (n - 1) / n)
}

func (s *Scaler) Params() map[string]any {
	return map[string]any{"with_mean": !s.SkipMean, "with_std": !s.SkipStd}
}

func (s *Scaler) SetParams(params map[string]any) error {
	for k, v := range params {
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("standardize: %s: %w: %T", k, tabular.ErrUnsupportedType, v)
		}
		switch k {
		case "with_mean":
			s.SkipMean = !b
		case "with_std":
			s.SkipStd = !b
		default:
			return fmt.Errorf("standardize: unknown parameter %q", k)
		}
	}
	return nil
}
