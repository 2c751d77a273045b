package jsonlio

import (
	"encoding/json"

	iox "github.com/wdm0006/switchboard/pkg/io/ioutils"
	"github.com/wdm0006/switchboard/pkg/tabular"
)

// WriteAll writes one JSON object per row. Null cells are omitted.
func WriteAll(path string, f *tabular.Frame) (err error) {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	enc := json.NewEncoder(out)
	for r := 0; r < f.Rows(); r++ {
		if err := enc.Encode(Row(f, r)); err != nil {
			return err
		}
	}
	return nil
}

// Row returns the non-null cells of row r keyed by column name.
func Row(f *tabular.Frame, r int) map[string]any {
	m := make(map[string]any, f.Cols())
	for c := 0; c < f.Cols(); c++ {
		col, _ := f.ColumnAt(c)
		var (
			v  any
			ok bool
		)
		switch t := col.(type) {
		case *tabular.FloatColumn:
			v, ok = t.Get(r)
		case *tabular.IntColumn:
			v, ok = t.Get(r)
		case *tabular.BoolColumn:
			v, ok = t.Get(r)
		case *tabular.StringColumn:
			v, ok = t.Get(r)
		case *tabular.TimeColumn:
			v, ok = t.Get(r)
		}
		if ok {
			m[col.Name()] = v
		}
	}
	return m
}
