package profile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/switchboard/pkg/tabular"
)

func TestCollector(t *testing.T) {
	n := tabular.NewIntColumn("n", 3)
	n.Set(0, 2)
	n.Set(1, 4)
	b := tabular.NewBoolColumn("ok", 3)
	b.Set(0, true)
	b.Set(2, false)
	f, err := tabular.FromColumns(n, b, tabular.StringColumnOf("s", "a", "b", "a"))
	require.NoError(t, err)

	c := NewCollector(f.Schema(), 1)
	c.ConsumeFrame(f)
	cols := c.Columns()

	require.NotNil(t, cols[0].Num)
	assert.Equal(t, 2, cols[0].Num.Count)
	assert.Equal(t, 1, cols[0].Num.Nulls)
	assert.Equal(t, 3.0, cols[0].Num.Mean())
	assert.Equal(t, 4.0, cols[0].Num.Max)

	require.NotNil(t, cols[1].Bool)
	assert.Equal(t, 1, cols[1].Bool.True)
	assert.Equal(t, 1, cols[1].Bool.False)
	assert.Equal(t, 1, cols[1].Bool.Nulls)

	require.NotNil(t, cols[2].Str)
	assert.Equal(t, []Freq{{"a", 2}}, cols[2].Str.Top(1))

	report := c.ReportText()
	assert.True(t, strings.HasPrefix(report, "Profile Summary\n"))
	assert.Contains(t, report, "- n (int): count=2 nulls=1 min=2 max=4 mean=3")
	assert.Contains(t, report, `  * "a": 2`)
	assert.NotContains(t, report, `"b"`)
}
