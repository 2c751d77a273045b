// Package transform holds numeric pipeline steps and the column plumbing
// they share. Every step keeps the shape of its input: frames stay frames
// (numeric columns become float columns), matrices stay matrices and rows
// stay rows.
package transform

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/wdm0006/switchboard/pkg/tabular"
)

// Columns returns the non-missing values of each column of X. NaN and null
// cells are skipped.
func Columns(X tabular.Table) ([][]float64, error) {
	d, err := X.Dense()
	if err != nil {
		return nil, err
	}
	rows, cols := d.Dims()
	out := make([][]float64, cols)
	for j := range out {
		vals := make([]float64, 0, rows)
		for i := 0; i < rows; i++ {
			if v := d.At(i, j); !math.IsNaN(v) {
				vals = append(vals, v)
			}
		}
		out[j] = vals
	}
	return out, nil
}

// CheckWidth reports whether every row of X has want columns. Row input may
// be ragged, so each row is checked.
func CheckWidth(X tabular.Table, want int) error {
	if X.Shape() != tabular.ShapeRows {
		if w := X.Width(); w != want {
			return fmt.Errorf("fitted on %d columns, got %d", want, w)
		}
		return nil
	}
	for i, row := range X.Rows() {
		if len(row) != want {
			return fmt.Errorf("row %d: %w: fitted on %d columns, got %d", i, tabular.ErrIndexOutOfRange, want, len(row))
		}
	}
	return nil
}

// Map applies fn to every cell of X, column j at a time, and returns a
// table of the same shape. Null frame cells reach fn as NaN; a NaN result
// is stored as null.
func Map(X tabular.Table, fn func(j int, v float64) float64) (tabular.Table, error) {
	switch X.Shape() {
	case tabular.ShapeFrame:
		return mapFrame(X.Frame(), fn)
	case tabular.ShapeMatrix:
		m := X.Matrix()
		r, c := m.Dims()
		out := mat.NewDense(r, c, nil)
		out.Apply(func(i, j int, v float64) float64 { return fn(j, v) }, m)
		return tabular.MatrixTable(out), nil
	case tabular.ShapeRows:
		out := make([][]float64, len(X.Rows()))
		for i, row := range X.Rows() {
			mapped := make([]float64, len(row))
			for j, v := range row {
				mapped[j] = fn(j, v)
			}
			out[i] = mapped
		}
		return tabular.RowsTable(out), nil
	}
	return tabular.Table{}, fmt.Errorf("%w: %v table", tabular.ErrUnsupportedType, X.Shape())
}

func mapFrame(f *tabular.Frame, fn func(j int, v float64) float64) (tabular.Table, error) {
	cols := make([]tabular.Column, f.Cols())
	for j := range cols {
		src, err := f.ColumnAt(j)
		if err != nil {
			return tabular.Table{}, err
		}
		col := tabular.NewFloatColumn(src.Name(), f.Rows())
		for i := 0; i < f.Rows(); i++ {
			v, err := f.Float(i, j)
			if err != nil {
				return tabular.Table{}, err
			}
			if v = fn(j, v); !math.IsNaN(v) {
				col.Set(i, v)
			}
		}
		cols[j] = col
	}
	out, err := tabular.FromColumns(cols...)
	if err != nil {
		return tabular.Table{}, err
	}
	return tabular.FrameTable(out), nil
}

// Float reads a numeric parameter value.
func Float(name string, v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	}
	return 0, fmt.Errorf("parameter %s: %w: %T", name, tabular.ErrUnsupportedType, v)
}
