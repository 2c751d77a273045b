// Package selector picks a named or positional subset of columns out of a
// table before it moves further down a pipeline.
//
// Frames are selected by column name. Matrices and row slices have no column
// names, so a name-based subset is first resolved to positions through a
// Reference list; position-based subsets are used directly.
package selector

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/wdm0006/switchboard/pkg/tabular"
)

// ErrUnresolvableName is returned when a column name cannot be mapped to a
// position, either because it is absent from Reference or because no
// Reference was supplied for an input without column names.
var ErrUnresolvableName = errors.New("selector: unresolvable column name")

// Selector is a stateless pipeline step. Fit does nothing; Transform returns
// the configured Subset of the input's columns.
type Selector struct {
	Subset Subset
	// Reference names the columns of matrix and row inputs, in order.
	Reference []string
}

// Override replaces parts of a Selector's configuration for one call.
// Nil fields keep the stored value.
type Override struct {
	Subset    *Subset
	Reference []string
}

func (s *Selector) Name() string { return "select_columns" }

func (s *Selector) Fit(X tabular.Table, y []float64) error { return nil }

func (s *Selector) Transform(X tabular.Table) (tabular.Table, error) {
	return Select(X, s.Subset, s.Reference)
}

// TransformWith applies o on top of the stored configuration for this call
// only. The stored configuration is left untouched; use SetParams to change it.
func (s *Selector) TransformWith(X tabular.Table, o Override) (tabular.Table, error) {
	subset, reference := s.Subset, s.Reference
	if o.Subset != nil {
		subset = *o.Subset
	}
	if o.Reference != nil {
		reference = o.Reference
	}
	return Select(X, subset, reference)
}

func (s *Selector) Params() map[string]any {
	return map[string]any{"subset": s.Subset, "reference": slices.Clone(s.Reference)}
}

// SetParams accepts "subset" as a Subset, []string or []int and "reference"
// as a []string.
func (s *Selector) SetParams(params map[string]any) error {
	for k, v := range params {
		switch k {
		case "subset":
			sub, err := subsetOf(v)
			if err != nil {
				return err
			}
			s.Subset = sub
		case "reference":
			if v == nil {
				s.Reference = nil
				continue
			}
			ref, ok := v.([]string)
			if !ok {
				return fmt.Errorf("selector: reference: %w: %T", tabular.ErrUnsupportedType, v)
			}
			s.Reference = slices.Clone(ref)
		default:
			return fmt.Errorf("selector: unknown parameter %q", k)
		}
	}
	return nil
}

// Select returns the columns of X named by subset, in subset order, with
// every row kept. The result has the same shape as X. A zero subset returns
// X unchanged.
func Select(X tabular.Table, subset Subset, reference []string) (tabular.Table, error) {
	if !X.Valid() {
		return tabular.Table{}, fmt.Errorf("%w: %v table", tabular.ErrUnsupportedType, X.Shape())
	}
	if subset.IsZero() {
		log.Debug().Stringer("shape", X.Shape()).Msg("no subset configured, passing input through")
		return X, nil
	}
	switch X.Shape() {
	case tabular.ShapeFrame:
		return selectFrame(X.Frame(), subset)
	case tabular.ShapeMatrix:
		positions, err := subset.Resolve(reference)
		if err != nil {
			return tabular.Table{}, err
		}
		return selectMatrix(X.Matrix(), positions)
	case tabular.ShapeRows:
		positions, err := subset.Resolve(reference)
		if err != nil {
			return tabular.Table{}, err
		}
		return selectRows(X.Rows(), positions)
	}
	return tabular.Table{}, fmt.Errorf("%w: %v table", tabular.ErrUnsupportedType, X.Shape())
}

// SelectValue is Select for callers holding a *tabular.Frame, a gonum
// matrix or [][]float64 behind an interface. Any other value is rejected
// with tabular.ErrUnsupportedType naming its Go type.
func SelectValue(X any, subset Subset, reference []string) (tabular.Table, error) {
	t, err := tabular.Wrap(X)
	if err != nil {
		return tabular.Table{}, fmt.Errorf("selector: %w", err)
	}
	return Select(t, subset, reference)
}

func selectFrame(f *tabular.Frame, subset Subset) (tabular.Table, error) {
	var (
		out *tabular.Frame
		err error
	)
	if subset.IsNumeric() {
		out, err = f.SelectAt(subset.Positions())
	} else {
		out, err = f.Select(subset.Names())
	}
	if err != nil {
		return tabular.Table{}, err
	}
	return tabular.FrameTable(out), nil
}

func selectMatrix(m *mat.Dense, positions []int) (tabular.Table, error) {
	rows, cols := m.Dims()
	if err := checkPositions(positions, cols); err != nil {
		return tabular.Table{}, err
	}
	out := mat.NewDense(rows, len(positions), nil)
	for j, p := range positions {
		out.SetCol(j, mat.Col(nil, p, m))
	}
	return tabular.MatrixTable(out), nil
}

// selectRows reads row-first data column-wise: out[i][j] = rows[i][positions[j]].
func selectRows(rows [][]float64, positions []int) (tabular.Table, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		if err := checkPositions(positions, len(row)); err != nil {
			return tabular.Table{}, fmt.Errorf("row %d: %w", i, err)
		}
		picked := make([]float64, len(positions))
		for j, p := range positions {
			picked[j] = row[p]
		}
		out[i] = picked
	}
	return tabular.RowsTable(out), nil
}

func checkPositions(positions []int, width int) error {
	for _, p := range positions {
		if p < 0 || p >= width {
			return fmt.Errorf("%w: position %d, input has %d columns", tabular.ErrIndexOutOfRange, p, width)
		}
	}
	return nil
}
