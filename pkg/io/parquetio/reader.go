// Package parquetio reads Parquet files with segmentio/parquet-go and writes
// them with xitongsys/parquet-go.
package parquetio

import (
	"errors"
	"fmt"
	"io"
	"os"

	parquet "github.com/segmentio/parquet-go"

	"github.com/wdm0006/switchboard/pkg/tabular"
)

// Reader loads flat Parquet files. Nested groups are not supported.
type Reader struct {
	file   *os.File
	reader *parquet.Reader
	schema tabular.Schema
}

func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("parquet open %s: %w", path, err)
	}
	r := parquet.NewReader(pf)
	schema, err := schemaOf(r.Schema())
	if err != nil {
		_ = r.Close()
		_ = f.Close()
		return nil, err
	}
	return &Reader{file: f, reader: r, schema: schema}, nil
}

func (r *Reader) Close() error {
	_ = r.reader.Close()
	return r.file.Close()
}

func (r *Reader) Schema() tabular.Schema { return r.schema }

// ReadAll reads every remaining row into a Frame.
func (r *Reader) ReadAll() (*tabular.Frame, error) {
	f := tabular.NewFrame(r.schema)
	buf := make([]parquet.Row, 1024)
	for {
		n, err := r.reader.ReadRows(buf)
		for _, row := range buf[:n] {
			f.AppendNullRow()
			if err := setRow(f, f.Rows()-1, row); err != nil {
				return nil, err
			}
		}
		if errors.Is(err, io.EOF) {
			return f, nil
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return f, nil
		}
	}
}

func schemaOf(s *parquet.Schema) (tabular.Schema, error) {
	fields := s.Fields()
	out := tabular.Schema{Columns: make([]tabular.ColumnSchema, len(fields))}
	for i, field := range fields {
		if !field.Leaf() {
			return tabular.Schema{}, fmt.Errorf("%w: nested parquet field %q", tabular.ErrUnsupportedType, field.Name())
		}
		out.Columns[i] = tabular.ColumnSchema{Name: field.Name(), Type: kindOf(field.Type().Kind()), Nullable: field.Optional()}
	}
	return out, nil
}

func kindOf(k parquet.Kind) tabular.Kind {
	switch k {
	case parquet.Boolean:
		return tabular.KindBool
	case parquet.Int32, parquet.Int64:
		return tabular.KindInt
	case parquet.Float, parquet.Double:
		return tabular.KindFloat
	}
	return tabular.KindString
}

func setRow(f *tabular.Frame, row int, values parquet.Row) error {
	cols := f.Schema().Columns
	for _, v := range values {
		if v.IsNull() {
			continue
		}
		c := v.Column()
		if c < 0 || c >= len(cols) {
			return fmt.Errorf("%w: parquet column %d", tabular.ErrIndexOutOfRange, c)
		}
		var x any
		switch v.Kind() {
		case parquet.Boolean:
			x = v.Boolean()
		case parquet.Int32:
			x = int64(v.Int32())
		case parquet.Int64:
			x = v.Int64()
		case parquet.Float:
			x = float64(v.Float())
		case parquet.Double:
			x = v.Double()
		default:
			x = string(v.ByteArray())
		}
		if err := f.SetCell(row, cols[c].Name, x); err != nil {
			return err
		}
	}
	return nil
}
