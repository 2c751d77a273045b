// Package jsonlio reads and writes newline-delimited JSON objects as frames.
package jsonlio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	iox "github.com/wdm0006/switchboard/pkg/io/ioutils"
	"github.com/wdm0006/switchboard/pkg/tabular"
)

type ReaderOptions struct {
	SampleRows int // for inference; default 100
}

// Reader decodes one JSON object per line. Keys become columns.
type Reader struct {
	dec  *json.Decoder
	opt  ReaderOptions
	buf  []map[string]any
	line int
}

var numre = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)

// Open opens a JSONL file (or stdin for "-"), transparently decompressing gzip.
func Open(path string, opt ReaderOptions) (*Reader, io.Closer, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, nil, err
	}
	return NewReaderFrom(rc, opt), rc, nil
}

func NewReaderFrom(r io.Reader, opt ReaderOptions) *Reader {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &Reader{dec: dec, opt: opt}
}

func (r *Reader) next() (map[string]any, error) {
	var m map[string]any
	if err := r.dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("jsonl object %d: %w", r.line, err)
	}
	r.line++
	return m, nil
}

// InferSchema samples objects to find columns and their kinds. Columns are
// ordered by key name so repeated reads produce the same layout.
func (r *Reader) InferSchema() (tabular.Schema, error) {
	max := r.opt.SampleRows
	if max <= 0 {
		max = 100
	}
	keys := map[string]struct{}{}
	for len(r.buf) < max {
		m, err := r.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return tabular.Schema{}, err
		}
		r.buf = append(r.buf, m)
		for k := range m {
			keys[k] = struct{}{}
		}
	}
	if len(keys) == 0 {
		return tabular.Schema{}, fmt.Errorf("%w: no JSON objects", tabular.ErrEmpty)
	}
	names := slices.Sorted(maps.Keys(keys))
	schema := tabular.Schema{Columns: make([]tabular.ColumnSchema, len(names))}
	for i, k := range names {
		schema.Columns[i] = tabular.ColumnSchema{Name: k, Type: inferKind(r.buf, k), Nullable: true}
	}
	return schema, nil
}

// ReadAll loads the sampled and remaining objects into a Frame. Keys not in
// schema are ignored; missing keys become nulls.
func (r *Reader) ReadAll(schema tabular.Schema) (*tabular.Frame, error) {
	f := tabular.NewFrame(schema)
	for _, m := range r.buf {
		setRow(f, m)
	}
	r.buf = nil
	for {
		m, err := r.next()
		if err == io.EOF {
			return f, nil
		}
		if err != nil {
			return nil, err
		}
		setRow(f, m)
	}
}

func setRow(f *tabular.Frame, m map[string]any) {
	f.AppendNullRow()
	row := f.Rows() - 1
	for _, cs := range f.Schema().Columns {
		v, ok := m[cs.Name]
		if !ok || v == nil {
			continue
		}
		if x, ok := convert(cs.Type, v); ok {
			_ = f.SetCell(row, cs.Name, x)
		}
	}
}

// convert coerces a decoded JSON value to the Go type a column of kind k stores.
func convert(k tabular.Kind, v any) (any, bool) {
	text := func() string {
		switch t := v.(type) {
		case string:
			return strings.TrimSpace(t)
		case json.Number:
			return t.String()
		case bool:
			return strconv.FormatBool(t)
		}
		b, _ := json.Marshal(v)
		return string(b)
	}
	switch k {
	case tabular.KindFloat:
		x, err := strconv.ParseFloat(text(), 64)
		return x, err == nil
	case tabular.KindInt:
		x, err := strconv.ParseInt(text(), 10, 64)
		return x, err == nil
	case tabular.KindBool:
		x, err := strconv.ParseBool(strings.ToLower(text()))
		return x, err == nil
	}
	return text(), true
}

func inferKind(sample []map[string]any, key string) tabular.Kind {
	nNum, nInt, nBool, nStr := 0, 0, 0, 0
	for _, m := range sample {
		switch t := m[key].(type) {
		case nil:
		case json.Number:
			nNum++
			if _, err := t.Int64(); err == nil {
				nInt++
			}
		case bool:
			nBool++
		case string:
			s := strings.TrimSpace(t)
			switch {
			case s == "":
			case numre.MatchString(s):
				nNum++
				if !strings.ContainsAny(s, ".eE") {
					nInt++
				}
			default:
				nStr++
			}
		default:
			nStr++
		}
	}
	switch {
	case nBool > nNum && nBool >= nStr:
		return tabular.KindBool
	case nNum > nStr && nInt == nNum:
		return tabular.KindInt
	case nNum > nStr:
		return tabular.KindFloat
	}
	return tabular.KindString
}
