// Package golearn adapts github.com/sjwhitworth/golearn learners and
// instances to switchboard's tables and router models.
package golearn

import (
	"fmt"

	"github.com/sjwhitworth/golearn/base"

	"github.com/wdm0006/switchboard/pkg/tabular"
)

// ToDenseInstances converts a Frame into golearn DenseInstances. Numeric
// columns become float attributes, everything else categorical. The column
// named class becomes the class attribute.
func ToDenseInstances(f *tabular.Frame, class string) (*base.DenseInstances, error) {
	if _, ok := f.ColumnByName(class); !ok {
		return nil, fmt.Errorf("%w: class %q", tabular.ErrMissingColumn, class)
	}
	cols := f.Schema().Columns
	attrs := make([]base.Attribute, len(cols))
	classIdx := 0
	for i, cs := range cols {
		switch cs.Type {
		case tabular.KindFloat, tabular.KindInt, tabular.KindBool:
			attrs[i] = base.NewFloatAttribute(cs.Name)
		default:
			ca := base.NewCategoricalAttribute()
			ca.SetName(cs.Name)
			attrs[i] = ca
		}
		if cs.Name == class {
			classIdx = i
		}
	}
	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		specs[i] = inst.AddAttribute(a)
	}
	if err := inst.Extend(f.Rows()); err != nil {
		return nil, err
	}

	for r := 0; r < f.Rows(); r++ {
		for c, cs := range cols {
			col, _ := f.ColumnAt(c)
			if col.IsNull(r) {
				continue
			}
			switch cs.Type {
			case tabular.KindFloat, tabular.KindInt, tabular.KindBool:
				v, err := f.Float(r, c)
				if err != nil {
					return nil, err
				}
				inst.Set(specs[c], r, base.PackFloatToBytes(v))
			default:
				inst.Set(specs[c], r, attrs[c].GetSysValFromString(cellText(col, r)))
			}
		}
	}
	if err := inst.AddClassAttribute(attrs[classIdx]); err != nil {
		return nil, err
	}
	return inst, nil
}

func cellText(c tabular.Column, r int) string {
	switch t := c.(type) {
	case *tabular.StringColumn:
		v, _ := t.Get(r)
		return v
	case *tabular.TimeColumn:
		v, _ := t.Get(r)
		return v.Format("2006-01-02T15:04:05Z07:00")
	}
	return ""
}
