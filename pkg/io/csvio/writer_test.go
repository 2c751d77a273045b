package csvio

import (
	"path/filepath"
	"testing"

	"github.com/wdm0006/switchboard/pkg/tabular"
)

func TestWriteAllRoundTrip(t *testing.T) {
	f, err := tabular.FromColumns(
		tabular.FloatColumnOf("x", 1.5, 2.25),
		tabular.StringColumnOf("label", "a", "b"),
	)
	if err != nil {
		t.Fatal(err)
	}
	ints := tabular.NewIntColumn("n", 2)
	ints.Set(0, 7)
	f, err = tabular.FromColumns(append(columns(t, f), ints)...)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "out.csv.gz")
	if err := WriteAll(path, f, WriterOptions{}); err != nil {
		t.Fatal(err)
	}
	r, c, err := Open(path, ReaderOptions{HasHeader: true})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = c.Close() }()
	schema, names, err := r.InferSchema()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 3 || names[2] != "n" {
		t.Fatalf("unexpected header %v", names)
	}
	back, err := r.ReadAll(schema)
	if err != nil {
		t.Fatal(err)
	}
	if back.Rows() != 2 {
		t.Fatalf("expected 2 rows, got %d", back.Rows())
	}
	if v, _ := back.Float(1, 0); v != 2.25 {
		t.Fatalf("expected 2.25, got %v", v)
	}
	n, _ := back.ColumnByName("n")
	if !n.IsNull(1) {
		t.Fatal("expected null cell to survive the round trip")
	}
}

func columns(t *testing.T, f *tabular.Frame) []tabular.Column {
	t.Helper()
	out := make([]tabular.Column, f.Cols())
	for i := range out {
		c, err := f.ColumnAt(i)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = c
	}
	return out
}
