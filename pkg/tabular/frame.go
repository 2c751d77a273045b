package tabular

import (
	"fmt"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Schema describes the logical shape of a dataset.
type Schema struct {
	Columns []ColumnSchema
}

type ColumnSchema struct {
	Name     string
	Type     Kind
	Nullable bool
}

// Kind enumerates supported logical types.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	default:
		return "invalid"
	}
}

// Column is a typed, nullable column abstraction.
type Column interface {
	Name() string
	Kind() Kind
	Len() int
	IsNull(i int) bool
	SetNull(i int)
	AppendNull()
	// take returns a new column holding rows in the given order.
	take(rows []int) Column
}

// Value is the set of Go types a column can hold.
type Value interface {
	bool | int64 | float64 | string | time.Time
}

// TypedColumn stores values of one Go type alongside a null mask.
type TypedColumn[T Value] struct {
	name  string
	kind  Kind
	data  []T
	nulls []bool
}

type (
	BoolColumn   = TypedColumn[bool]
	IntColumn    = TypedColumn[int64]
	FloatColumn  = TypedColumn[float64]
	StringColumn = TypedColumn[string]
	TimeColumn   = TypedColumn[time.Time]
)

func newColumn[T Value](name string, kind Kind, n int) *TypedColumn[T] {
	nulls := make([]bool, n)
	for i := range nulls {
		nulls[i] = true
	}
	return &TypedColumn[T]{name: name, kind: kind, data: make([]T, n), nulls: nulls}
}

func NewBoolColumn(name string, n int) *BoolColumn     { return newColumn[bool](name, KindBool, n) }
func NewIntColumn(name string, n int) *IntColumn       { return newColumn[int64](name, KindInt, n) }
func NewFloatColumn(name string, n int) *FloatColumn   { return newColumn[float64](name, KindFloat, n) }
func NewStringColumn(name string, n int) *StringColumn { return newColumn[string](name, KindString, n) }
func NewTimeColumn(name string, n int) *TimeColumn     { return newColumn[time.Time](name, KindTime, n) }

// FloatColumnOf builds a fully populated float column.
func FloatColumnOf(name string, vals ...float64) *FloatColumn {
	c := NewFloatColumn(name, 0)
	for _, v := range vals {
		c.Append(v)
	}
	return c
}

// StringColumnOf builds a fully populated string column.
func StringColumnOf(name string, vals ...string) *StringColumn {
	c := NewStringColumn(name, 0)
	for _, v := range vals {
		c.Append(v)
	}
	return c
}

func (c *TypedColumn[T]) Name() string        { return c.name }
func (c *TypedColumn[T]) Kind() Kind          { return c.kind }
func (c *TypedColumn[T]) Len() int            { return len(c.data) }
func (c *TypedColumn[T]) IsNull(i int) bool   { return c.nulls[i] }
func (c *TypedColumn[T]) SetNull(i int)       { c.nulls[i] = true }
func (c *TypedColumn[T]) Get(i int) (T, bool) { return c.data[i], !c.nulls[i] }
func (c *TypedColumn[T]) Set(i int, v T)      { c.data[i] = v; c.nulls[i] = false }

func (c *TypedColumn[T]) AppendNull() {
	var zero T
	c.data = append(c.data, zero)
	c.nulls = append(c.nulls, true)
}

func (c *TypedColumn[T]) Append(v T) {
	c.data = append(c.data, v)
	c.nulls = append(c.nulls, false)
}

func (c *TypedColumn[T]) take(rows []int) Column {
	out := &TypedColumn[T]{name: c.name, kind: c.kind, data: make([]T, len(rows)), nulls: make([]bool, len(rows))}
	for i, r := range rows {
		out.data[i] = c.data[r]
		out.nulls[i] = c.nulls[r]
	}
	return out
}

// Frame is a columnar container for tabular data: the named-table shape.
type Frame struct {
	schema Schema
	cols   []Column
	index  map[string]int // name -> col index
	nrows  int
}

func NewFrame(s Schema) *Frame {
	f := &Frame{schema: s, cols: make([]Column, len(s.Columns)), index: make(map[string]int)}
	for i, cs := range s.Columns {
		switch cs.Type {
		case KindBool:
			f.cols[i] = NewBoolColumn(cs.Name, 0)
		case KindInt:
			f.cols[i] = NewIntColumn(cs.Name, 0)
		case KindFloat:
			f.cols[i] = NewFloatColumn(cs.Name, 0)
		case KindString:
			f.cols[i] = NewStringColumn(cs.Name, 0)
		case KindTime:
			f.cols[i] = NewTimeColumn(cs.Name, 0)
		default:
			panic("invalid column kind")
		}
		f.index[cs.Name] = i
	}
	return f
}

// FromColumns assembles a frame from existing columns. Storage is shared, not copied.
func FromColumns(cols ...Column) (*Frame, error) {
	f := &Frame{cols: make([]Column, 0, len(cols)), index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if _, dup := f.index[c.Name()]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, c.Name())
		}
		if i > 0 && c.Len() != f.nrows {
			return nil, fmt.Errorf("column %s has %d rows, want %d", c.Name(), c.Len(), f.nrows)
		}
		f.nrows = c.Len()
		f.index[c.Name()] = i
		f.cols = append(f.cols, c)
		f.schema.Columns = append(f.schema.Columns, ColumnSchema{Name: c.Name(), Type: c.Kind(), Nullable: true})
	}
	return f, nil
}

func (f *Frame) Schema() Schema { return f.schema }
func (f *Frame) Rows() int      { return f.nrows }
func (f *Frame) Cols() int      { return len(f.cols) }

// Names returns column names in order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.Name()
	}
	return names
}

func (f *Frame) ColumnByName(name string) (Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

func (f *Frame) ColumnAt(i int) (Column, error) {
	if i < 0 || i >= len(f.cols) {
		return nil, fmt.Errorf("%w: position %d, frame has %d columns", ErrIndexOutOfRange, i, len(f.cols))
	}
	return f.cols[i], nil
}

// Select returns a frame holding exactly the named columns, in the given order.
func (f *Frame) Select(names []string) (*Frame, error) {
	cols := make([]Column, len(names))
	for i, name := range names {
		c, ok := f.ColumnByName(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
		cols[i] = c
	}
	return f.withColumns(cols)
}

// SelectAt returns a frame holding the columns at the given positions, in the given order.
func (f *Frame) SelectAt(positions []int) (*Frame, error) {
	cols := make([]Column, len(positions))
	for i, p := range positions {
		c, err := f.ColumnAt(p)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	return f.withColumns(cols)
}

// Drop returns a frame without the named columns. Unknown names are ignored.
func (f *Frame) Drop(names ...string) *Frame {
	cols := make([]Column, 0, len(f.cols))
	for _, c := range f.cols {
		if !slices.Contains(names, c.Name()) {
			cols = append(cols, c)
		}
	}
	out, _ := f.withColumns(cols)
	return out
}

// Take returns a frame holding the given rows in order.
func (f *Frame) Take(rows []int) (*Frame, error) {
	for _, r := range rows {
		if r < 0 || r >= f.nrows {
			return nil, fmt.Errorf("%w: row %d, frame has %d rows", ErrIndexOutOfRange, r, f.nrows)
		}
	}
	cols := make([]Column, len(f.cols))
	for i, c := range f.cols {
		cols[i] = c.take(rows)
	}
	out, err := f.withColumns(cols)
	if err != nil {
		return nil, err
	}
	out.nrows = len(rows)
	return out, nil
}

func (f *Frame) withColumns(cols []Column) (*Frame, error) {
	out, err := FromColumns(cols...)
	if err != nil {
		return nil, err
	}
	out.nrows = f.nrows
	if len(cols) > 0 {
		out.nrows = cols[0].Len()
	}
	return out, nil
}

// AppendNullRow appends a row with all-null values.
func (f *Frame) AppendNullRow() {
	for _, c := range f.cols {
		c.AppendNull()
	}
	f.nrows++
}

// SetCell sets a single cell value by name (row must exist).
func (f *Frame) SetCell(row int, name string, v any) error {
	i, ok := f.index[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrMissingColumn, name)
	}
	c := f.cols[i]
	if v == nil {
		c.SetNull(row)
		return nil
	}
	switch col := c.(type) {
	case *BoolColumn:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("column %s expects bool", name)
		}
		col.Set(row, b)
	case *IntColumn:
		switch t := v.(type) {
		case int:
			col.Set(row, int64(t))
		case int64:
			col.Set(row, t)
		case float64:
			col.Set(row, int64(t))
		default:
			return fmt.Errorf("column %s expects int/int64", name)
		}
	case *FloatColumn:
		switch t := v.(type) {
		case float32:
			col.Set(row, float64(t))
		case float64:
			col.Set(row, t)
		case int:
			col.Set(row, float64(t))
		case int64:
			col.Set(row, float64(t))
		default:
			return fmt.Errorf("column %s expects float64", name)
		}
	case *StringColumn:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("column %s expects string", name)
		}
		col.Set(row, s)
	case *TimeColumn:
		t, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("column %s expects time.Time", name)
		}
		col.Set(row, t)
	default:
		return fmt.Errorf("unknown column kind")
	}
	return nil
}

// Float reads a numeric cell as float64. Nulls read as NaN.
func (f *Frame) Float(row, col int) (float64, error) {
	c, err := f.ColumnAt(col)
	if err != nil {
		return 0, err
	}
	if c.IsNull(row) {
		return math.NaN(), nil
	}
	switch t := c.(type) {
	case *FloatColumn:
		v, _ := t.Get(row)
		return v, nil
	case *IntColumn:
		v, _ := t.Get(row)
		return float64(v), nil
	case *BoolColumn:
		if v, _ := t.Get(row); v {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: column %s is %v", ErrNonNumeric, c.Name(), c.Kind())
	}
}

// Dense converts the frame into a row-major numeric matrix.
func (f *Frame) Dense() (*mat.Dense, error) {
	if f.nrows == 0 || len(f.cols) == 0 {
		return nil, fmt.Errorf("%w: %dx%d frame", ErrEmpty, f.nrows, len(f.cols))
	}
	data := make([]float64, 0, f.nrows*len(f.cols))
	for r := 0; r < f.nrows; r++ {
		for c := range f.cols {
			v, err := f.Float(r, c)
			if err != nil {
				return nil, err
			}
			data = append(data, v)
		}
	}
	return mat.NewDense(f.nrows, len(f.cols), data), nil
}

// Labels encodes a column as class codes. Classes are numbered in order of first appearance.
func (f *Frame) Labels(name string) ([]float64, []string, error) {
	c, ok := f.ColumnByName(name)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
	}
	codes := make(map[string]int)
	var classes []string
	y := make([]float64, c.Len())
	for i := 0; i < c.Len(); i++ {
		key := cellString(c, i)
		code, seen := codes[key]
		if !seen {
			code = len(classes)
			codes[key] = code
			classes = append(classes, key)
		}
		y[i] = float64(code)
	}
	return y, classes, nil
}

func cellString(c Column, i int) string {
	if c.IsNull(i) {
		return ""
	}
	switch t := c.(type) {
	case *StringColumn:
		v, _ := t.Get(i)
		return v
	case *TimeColumn:
		v, _ := t.Get(i)
		return v.Format(time.RFC3339)
	case *FloatColumn:
		v, _ := t.Get(i)
		return fmt.Sprint(v)
	case *IntColumn:
		v, _ := t.Get(i)
		return fmt.Sprint(v)
	case *BoolColumn:
		v, _ := t.Get(i)
		return fmt.Sprint(v)
	}
	return ""
}
