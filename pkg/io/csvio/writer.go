package csvio

import (
	"encoding/csv"
	"strconv"
	"time"

	iox "github.com/wdm0006/switchboard/pkg/io/ioutils"
	"github.com/wdm0006/switchboard/pkg/tabular"
)

type WriterOptions struct {
	Delimiter rune // default ','
}

// WriteAll writes a Frame to a CSV file (stdout for "-", gzip for *.gz) with headers.
func WriteAll(path string, f *tabular.Frame, opt WriterOptions) (err error) {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	w := csv.NewWriter(out)
	if opt.Delimiter != 0 {
		w.Comma = opt.Delimiter
	}
	if err := w.Write(f.Names()); err != nil {
		return err
	}
	row := make([]string, f.Cols())
	for r := 0; r < f.Rows(); r++ {
		for c := range row {
			col, _ := f.ColumnAt(c)
			row[c] = FormatCell(col, r)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// FormatCell renders one cell as CSV text. Nulls render empty.
func FormatCell(c tabular.Column, r int) string {
	if c.IsNull(r) {
		return ""
	}
	switch col := c.(type) {
	case *tabular.FloatColumn:
		v, _ := col.Get(r)
		return strconv.FormatFloat(v, 'g', -1, 64)
	case *tabular.IntColumn:
		v, _ := col.Get(r)
		return strconv.FormatInt(v, 10)
	case *tabular.BoolColumn:
		v, _ := col.Get(r)
		return strconv.FormatBool(v)
	case *tabular.StringColumn:
		v, _ := col.Get(r)
		return v
	case *tabular.TimeColumn:
		v, _ := col.Get(r)
		return v.Format(time.RFC3339)
	}
	return ""
}
