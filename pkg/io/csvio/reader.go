package csvio

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	iox "github.com/wdm0006/switchboard/pkg/io/ioutils"
	"github.com/wdm0006/switchboard/pkg/tabular"
)

type ReaderOptions struct {
	HasHeader  bool
	Delimiter  rune // 0 = sniff, default ','
	SampleRows int  // for inference; default 100
	Strict     bool // if true, error on short/long records
}

type Reader struct {
	r   *csv.Reader
	opt ReaderOptions
	buf [][]string
	// repair/warning counters
	shortRecords int
	longRecords  int
}

var numre = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)

// Open opens a CSV file (or stdin for "-"), transparently decompressing gzip.
// The returned closer releases the underlying file.
func Open(path string, opt ReaderOptions) (*Reader, io.Closer, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, nil, err
	}
	rr := csv.NewReader(rc)
	if opt.Delimiter == 0 && path != "-" {
		if d, lazy, err := sniffDelimiterAndQuotes(path); err == nil && d != 0 {
			rr.Comma = d
			rr.LazyQuotes = lazy
		}
	} else if opt.Delimiter != 0 {
		rr.Comma = opt.Delimiter
	}
	rr.ReuseRecord = true
	rr.FieldsPerRecord = -1
	return &Reader{r: rr, opt: opt}, rc, nil
}

// NewReaderFrom constructs a Reader from an arbitrary io.Reader (stdin, pipe).
func NewReaderFrom(r io.Reader, opt ReaderOptions) *Reader {
	rr := csv.NewReader(r)
	if opt.Delimiter != 0 {
		rr.Comma = opt.Delimiter
	}
	rr.ReuseRecord = true
	rr.FieldsPerRecord = -1
	return &Reader{r: rr, opt: opt}
}

// InferSchema reads header (if present) and samples rows to determine column kinds.
func (r *Reader) InferSchema() (tabular.Schema, []string, error) {
	rec, err := r.read()
	if err != nil {
		return tabular.Schema{}, nil, err
	}
	names := make([]string, len(rec))
	if r.opt.HasHeader {
		for i := range rec {
			names[i] = strings.ToValidUTF8(strings.TrimSpace(rec[i]), "?")
		}
		// strip BOM on first header cell if present
		if len(names) > 0 {
			names[0] = strings.TrimPrefix(names[0], "\ufeff")
		}
		if rec, err = r.read(); err != nil {
			return tabular.Schema{}, nil, err
		}
	} else {
		for i := range names {
			names[i] = "col_" + strconv.Itoa(i)
		}
	}

	sample := [][]string{rec}
	max := r.opt.SampleRows
	if max <= 0 {
		max = 100
	}
	for i := 1; i < max; i++ {
		rr, err := r.read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return tabular.Schema{}, nil, err
		}
		sample = append(sample, rr)
	}

	kinds := inferKinds(sample, len(names))
	schema := tabular.Schema{Columns: make([]tabular.ColumnSchema, len(names))}
	for i := range names {
		schema.Columns[i] = tabular.ColumnSchema{Name: names[i], Type: kinds[i], Nullable: true}
	}
	// retain sampled rows for subsequent ReadAll
	r.buf = append(r.buf, sample...)
	return schema, names, nil
}

// read returns a record the caller may keep; the csv.Reader reuses its slice.
func (r *Reader) read() ([]string, error) {
	rec, err := r.r.Read()
	if err != nil {
		return nil, err
	}
	return append([]string(nil), rec...), nil
}

// ReadAll loads the rest of the CSV into a Frame.
func (r *Reader) ReadAll(schema tabular.Schema) (*tabular.Frame, error) {
	f := tabular.NewFrame(schema)
	for _, rec := range r.buf {
		if err := r.appendRecord(f, schema, rec); err != nil {
			return nil, err
		}
	}
	r.buf = nil
	for {
		rec, err := r.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := r.appendRecord(f, schema, rec); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// appendRecord appends a null row then sets the non-empty values of rec.
func (r *Reader) appendRecord(f *tabular.Frame, schema tabular.Schema, rec []string) error {
	if len(rec) > len(schema.Columns) {
		r.longRecords++
		if r.opt.Strict {
			return fmt.Errorf("csv long record at row %d: need %d fields, got %d", f.Rows(), len(schema.Columns), len(rec))
		}
	}
	f.AppendNullRow()
	row := f.Rows() - 1
	for i, cs := range schema.Columns {
		if i >= len(rec) {
			r.shortRecords++
			if r.opt.Strict {
				return fmt.Errorf("csv short record at row %d: need %d fields, got %d", row, len(schema.Columns), len(rec))
			}
			break
		}
		val := strings.ToValidUTF8(strings.TrimSpace(rec[i]), "?")
		if val == "" {
			continue
		}
		switch cs.Type {
		case tabular.KindFloat:
			if x, err := strconv.ParseFloat(val, 64); err == nil {
				_ = f.SetCell(row, cs.Name, x)
			}
		case tabular.KindInt:
			if x, err := strconv.ParseInt(val, 10, 64); err == nil {
				_ = f.SetCell(row, cs.Name, x)
			}
		case tabular.KindBool:
			if x, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
				_ = f.SetCell(row, cs.Name, x)
			}
		default:
			_ = f.SetCell(row, cs.Name, val)
		}
	}
	return nil
}

func inferKinds(rows [][]string, ncol int) []tabular.Kind {
	kinds := make([]tabular.Kind, ncol)
	for c := 0; c < ncol; c++ {
		num, integer, boolean, str := 0, 0, 0, 0
		for _, row := range rows {
			if c >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[c])
			if v == "" {
				continue
			}
			switch lv := strings.ToLower(v); {
			case numre.MatchString(v):
				num++
				if !strings.ContainsAny(v, ".eE") {
					integer++
				}
			case lv == "true" || lv == "false":
				boolean++
			default:
				str++
			}
		}
		switch {
		case boolean > 0 && num == 0 && str == 0:
			kinds[c] = tabular.KindBool
		case num > str:
			// prefer float over int to be permissive
			if integer == num {
				kinds[c] = tabular.KindInt
			} else {
				kinds[c] = tabular.KindFloat
			}
		default:
			kinds[c] = tabular.KindString
		}
	}
	return kinds
}

func sniffDelimiterAndQuotes(path string) (rune, bool, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return 0, false, err
	}
	defer func() { _ = rc.Close() }()
	sample, _ := bufio.NewReader(rc).Peek(4096)
	if len(sample) == 0 {
		return ',', false, nil
	}
	best, bestCount := byte(','), -1
	for _, c := range []byte{',', '\t', ';', '|'} {
		if cnt := strings.Count(string(sample), string(c)); cnt > bestCount {
			bestCount, best = cnt, c
		}
	}
	// any quotes at all: tolerate stray ones
	lazy := strings.IndexByte(string(sample), '"') >= 0
	return rune(best), lazy, nil
}

// Warnings returns a summary string of any repairs/mismatches encountered.
func (r *Reader) Warnings() string {
	var parts []string
	if r.shortRecords > 0 {
		parts = append(parts, fmt.Sprintf("short_records=%d", r.shortRecords))
	}
	if r.longRecords > 0 {
		parts = append(parts, fmt.Sprintf("long_records=%d", r.longRecords))
	}
	return strings.Join(parts, ", ")
}
