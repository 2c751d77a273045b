package tabular

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Shape tags which representation a Table holds: a named-column Frame, an
// untyped 2D matrix, or nested row-first slices.
type Shape int

const (
	ShapeInvalid Shape = iota
	ShapeFrame
	ShapeMatrix
	ShapeRows
)

func (s Shape) String() string {
	switch s {
	case ShapeFrame:
		return "frame"
	case ShapeMatrix:
		return "matrix"
	case ShapeRows:
		return "rows"
	default:
		return "invalid"
	}
}

// Table is a tagged union over the accepted table-like inputs. Exactly one
// of frame, matrix or rows is set, as named by shape. The zero Table is invalid.
type Table struct {
	shape  Shape
	frame  *Frame
	matrix *mat.Dense
	rows   [][]float64
}

func FrameTable(f *Frame) Table {
	if f == nil {
		return Table{}
	}
	return Table{shape: ShapeFrame, frame: f}
}

func MatrixTable(m *mat.Dense) Table {
	if m == nil {
		return Table{}
	}
	if r, c := m.Dims(); r == 0 || c == 0 {
		return Table{}
	}
	return Table{shape: ShapeMatrix, matrix: m}
}

// RowsTable wraps row-first nested slices. Rows may be ragged; selection
// checks each row's width.
func RowsTable(rows [][]float64) Table {
	return Table{shape: ShapeRows, rows: rows}
}

// Wrap lifts a dynamically typed value into a Table.
func Wrap(v any) (Table, error) {
	switch t := v.(type) {
	case Table:
		if t.shape != ShapeInvalid {
			return t, nil
		}
	case *Frame:
		if t != nil {
			return FrameTable(t), nil
		}
	case *mat.Dense:
		if t != nil {
			if tb := MatrixTable(t); tb.Valid() {
				return tb, nil
			}
		}
	case mat.Matrix:
		if r, c := t.Dims(); r > 0 && c > 0 {
			return MatrixTable(mat.DenseCopyOf(t)), nil
		}
	case [][]float64:
		return RowsTable(t), nil
	}
	return Table{}, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}

func (t Table) Shape() Shape       { return t.shape }
func (t Table) Frame() *Frame      { return t.frame }
func (t Table) Matrix() *mat.Dense { return t.matrix }
func (t Table) Rows() [][]float64  { return t.rows }
func (t Table) Valid() bool        { return t.shape != ShapeInvalid }
func (t Table) unsupported() error { return fmt.Errorf("%w: %v table", ErrUnsupportedType, t.shape) }

// Len returns the number of rows.
func (t Table) Len() int {
	switch t.shape {
	case ShapeFrame:
		return t.frame.Rows()
	case ShapeMatrix:
		r, _ := t.matrix.Dims()
		return r
	case ShapeRows:
		return len(t.rows)
	}
	return 0
}

// Width returns the number of columns. For rows it is the width of the first row.
func (t Table) Width() int {
	switch t.shape {
	case ShapeFrame:
		return t.frame.Cols()
	case ShapeMatrix:
		_, c := t.matrix.Dims()
		return c
	case ShapeRows:
		if len(t.rows) > 0 {
			return len(t.rows[0])
		}
	}
	return 0
}

// TakeRows returns a table of the same shape holding the given rows in order.
func (t Table) TakeRows(rows []int) (Table, error) {
	n := t.Len()
	for _, r := range rows {
		if r < 0 || r >= n {
			return Table{}, fmt.Errorf("%w: row %d, table has %d rows", ErrIndexOutOfRange, r, n)
		}
	}
	switch t.shape {
	case ShapeFrame:
		f, err := t.frame.Take(rows)
		if err != nil {
			return Table{}, err
		}
		return FrameTable(f), nil
	case ShapeMatrix:
		if len(rows) == 0 {
			return Table{}, fmt.Errorf("%w: no rows taken from matrix", ErrEmpty)
		}
		_, c := t.matrix.Dims()
		out := mat.NewDense(len(rows), c, nil)
		for i, r := range rows {
			out.SetRow(i, t.matrix.RawRowView(r))
		}
		return MatrixTable(out), nil
	case ShapeRows:
		out := make([][]float64, len(rows))
		for i, r := range rows {
			out[i] = t.rows[r]
		}
		return RowsTable(out), nil
	}
	return Table{}, t.unsupported()
}

// Dense returns the table as a numeric matrix. Matrices are returned as is.
func (t Table) Dense() (*mat.Dense, error) {
	switch t.shape {
	case ShapeFrame:
		return t.frame.Dense()
	case ShapeMatrix:
		return t.matrix, nil
	case ShapeRows:
		if len(t.rows) == 0 || len(t.rows[0]) == 0 {
			return nil, fmt.Errorf("%w: no rows", ErrEmpty)
		}
		width := len(t.rows[0])
		out := mat.NewDense(len(t.rows), width, nil)
		for i, row := range t.rows {
			if len(row) != width {
				return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrIndexOutOfRange, i, len(row), width)
			}
			out.SetRow(i, row)
		}
		return out, nil
	}
	return nil, t.unsupported()
}
