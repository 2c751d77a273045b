package tabular

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func abc(t *testing.T) *Frame {
	t.Helper()
	f, err := FromColumns(
		FloatColumnOf("A", 1, 4, 7),
		FloatColumnOf("B", 2, 5, 8),
		FloatColumnOf("C", 3, 6, 9),
	)
	require.NoError(t, err)
	return f
}

func TestFromColumns(t *testing.T) {
	f := abc(t)
	assert.Equal(t, 3, f.Rows())
	assert.Equal(t, []string{"A", "B", "C"}, f.Names())

	_, err := FromColumns(FloatColumnOf("A", 1), FloatColumnOf("A", 2))
	assert.ErrorIs(t, err, ErrDuplicateColumn)
	_, err = FromColumns(FloatColumnOf("A", 1), FloatColumnOf("B", 1, 2))
	assert.Error(t, err)
}

func TestSelect(t *testing.T) {
	f := abc(t)
	out, err := f.Select([]string{"C", "A"})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A"}, out.Names())
	assert.Equal(t, 3, out.Rows())
	v, err := out.Float(2, 0)
	require.NoError(t, err)
	assert.Equal(t, 9.0, v)

	// input untouched
	assert.Equal(t, []string{"A", "B", "C"}, f.Names())

	_, err = f.Select([]string{"A", "Z"})
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = f.Select([]string{"A", "A"})
	assert.ErrorIs(t, err, ErrDuplicateColumn)
}

func TestSelectAt(t *testing.T) {
	f := abc(t)
	out, err := f.SelectAt([]int{1})
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, out.Names())

	_, err = f.SelectAt([]int{3})
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = f.SelectAt([]int{-1})
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestDropAndTake(t *testing.T) {
	f := abc(t)
	assert.Equal(t, []string{"A", "C"}, f.Drop("B", "nope").Names())

	rows, err := f.Take([]int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, 2, rows.Rows())
	v, _ := rows.Float(0, 1)
	assert.Equal(t, 8.0, v)

	_, err = f.Take([]int{3})
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestDense(t *testing.T) {
	n := NewIntColumn("n", 2)
	n.Set(0, 4)
	f, err := FromColumns(FloatColumnOf("x", 1.5, 2.5), n)
	require.NoError(t, err)
	d, err := f.Dense()
	require.NoError(t, err)
	assert.Equal(t, 4.0, d.At(0, 1))
	assert.True(t, math.IsNaN(d.At(1, 1)))

	s, err := FromColumns(StringColumnOf("s", "a"))
	require.NoError(t, err)
	_, err = s.Dense()
	assert.ErrorIs(t, err, ErrNonNumeric)

	empty := NewFrame(Schema{})
	_, err = empty.Dense()
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestLabels(t *testing.T) {
	f, err := FromColumns(StringColumnOf("species", "b", "a", "b", "c"))
	require.NoError(t, err)
	y, classes, err := f.Labels("species")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0, 2}, y)
	assert.Equal(t, []string{"b", "a", "c"}, classes)

	_, _, err = f.Labels("nope")
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestSetCell(t *testing.T) {
	f := NewFrame(Schema{Columns: []ColumnSchema{{Name: "x", Type: KindFloat}, {Name: "s", Type: KindString}}})
	f.AppendNullRow()
	require.NoError(t, f.SetCell(0, "x", 3))
	assert.Error(t, f.SetCell(0, "s", 3))
	assert.ErrorIs(t, f.SetCell(0, "nope", 1.0), ErrMissingColumn)
	v, _ := f.Float(0, 0)
	assert.Equal(t, 3.0, v)
}
