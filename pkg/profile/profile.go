// Package profile summarizes the columns of a frame: counts, nulls, numeric
// ranges and the most frequent values of text columns.
package profile

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/wdm0006/switchboard/pkg/tabular"
)

type NumStats struct {
	Count int     `json:"count"`
	Nulls int     `json:"nulls"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Sum   float64 `json:"sum"`
}

func (s NumStats) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

type BoolStats struct {
	Count int `json:"count"`
	Nulls int `json:"nulls"`
	True  int `json:"true"`
	False int `json:"false"`
}

type StringStats struct {
	Count int            `json:"count"`
	Nulls int            `json:"nulls"`
	Freqs map[string]int `json:"top,omitempty"`
}

type ColumnProfile struct {
	Name string       `json:"name"`
	Kind tabular.Kind `json:"-"`
	Num  *NumStats    `json:"num,omitempty"`
	Bool *BoolStats   `json:"bool,omitempty"`
	Str  *StringStats `json:"str,omitempty"`
}

// Collector accumulates statistics over one or more frames sharing a schema.
type Collector struct {
	cols  []ColumnProfile
	index map[string]int
	topK  int
}

func NewCollector(schema tabular.Schema, topK int) *Collector {
	c := &Collector{index: make(map[string]int), topK: topK}
	c.cols = make([]ColumnProfile, len(schema.Columns))
	for i, cs := range schema.Columns {
		cp := ColumnProfile{Name: cs.Name, Kind: cs.Type}
		switch cs.Type {
		case tabular.KindFloat, tabular.KindInt:
			cp.Num = &NumStats{Min: math.Inf(1), Max: math.Inf(-1)}
		case tabular.KindBool:
			cp.Bool = &BoolStats{}
		default:
			cp.Str = &StringStats{Freqs: make(map[string]int)}
		}
		c.cols[i] = cp
		c.index[cs.Name] = i
	}
	return c
}

// ConsumeFrame adds f's rows. Columns not in the collector's schema are ignored.
func (c *Collector) ConsumeFrame(f *tabular.Frame) {
	for j := 0; j < f.Cols(); j++ {
		col, _ := f.ColumnAt(j)
		idx, ok := c.index[col.Name()]
		if !ok {
			continue
		}
		cp := &c.cols[idx]
		for i := 0; i < col.Len(); i++ {
			switch {
			case cp.Num != nil:
				if col.IsNull(i) {
					cp.Num.Nulls++
					continue
				}
				v, err := f.Float(i, j)
				if err != nil {
					continue
				}
				cp.Num.Count++
				cp.Num.Min = min(cp.Num.Min, v)
				cp.Num.Max = max(cp.Num.Max, v)
				cp.Num.Sum += v
			case cp.Bool != nil:
				if col.IsNull(i) {
					cp.Bool.Nulls++
					continue
				}
				if v, _ := f.Float(i, j); v == 1 {
					cp.Bool.True++
				} else {
					cp.Bool.False++
				}
				cp.Bool.Count++
			default:
				if col.IsNull(i) {
					cp.Str.Nulls++
					continue
				}
				cp.Str.Count++
				if c.topK > 0 {
					cp.Str.Freqs[text(col, i)]++
				}
			}
		}
	}
}

func text(c tabular.Column, i int) string {
	switch t := c.(type) {
	case *tabular.StringColumn:
		v, _ := t.Get(i)
		return v
	case *tabular.TimeColumn:
		v, _ := t.Get(i)
		return v.Format(time.RFC3339)
	}
	return ""
}

type Freq struct {
	Value string
	Count int
}

// Top returns the k most frequent values of a text column, most frequent
// first, ties in value order.
func (s *StringStats) Top(k int) []Freq {
	out := make([]Freq, 0, len(s.Freqs))
	for v, n := range s.Freqs {
		out = append(out, Freq{v, n})
	}
	slices.SortFunc(out, func(a, b Freq) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Value, b.Value)
	})
	if k > 0 && k < len(out) {
		out = out[:k]
	}
	return out
}

func (c *Collector) Columns() []ColumnProfile { return c.cols }

// ReportText renders one line per column plus the top values of text columns.
func (c *Collector) ReportText() string {
	var b strings.Builder
	b.WriteString("Profile Summary\n")
	for _, cp := range c.cols {
		fmt.Fprintf(&b, "- %s (%v): ", cp.Name, cp.Kind)
		switch {
		case cp.Num != nil:
			fmt.Fprintf(&b, "count=%d nulls=%d min=%.6g max=%.6g mean=%.6g\n", cp.Num.Count, cp.Num.Nulls, cp.Num.Min, cp.Num.Max, cp.Num.Mean())
		case cp.Bool != nil:
			fmt.Fprintf(&b, "count=%d nulls=%d true=%d false=%d\n", cp.Bool.Count, cp.Bool.Nulls, cp.Bool.True, cp.Bool.False)
		default:
			fmt.Fprintf(&b, "count=%d nulls=%d\n", cp.Str.Count, cp.Str.Nulls)
			for _, f := range cp.Str.Top(c.topK) {
				fmt.Fprintf(&b, "  * %q: %d\n", f.Value, f.Count)
			}
		}
	}
	return b.String()
}
