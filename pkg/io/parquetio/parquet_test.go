package parquetio

import (
	"path/filepath"
	"testing"

	"github.com/wdm0006/switchboard/pkg/tabular"
)

func TestWriteThenRead(t *testing.T) {
	n := tabular.NewIntColumn("n", 3)
	n.Set(0, 1)
	n.Set(2, 3)
	f, err := tabular.FromColumns(
		tabular.FloatColumnOf("x", 0.5, 1.5, 2.5),
		tabular.StringColumnOf("s", "a", "b", "c"),
		n,
	)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out.parquet")
	if err := WriteAll(path, f); err != nil {
		t.Fatal(err)
	}
	r, err := OpenReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = r.Close() }()
	if got := len(r.Schema().Columns); got != 3 {
		t.Fatalf("expected 3 columns, got %d", got)
	}
	back, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if back.Rows() != 3 {
		t.Fatalf("expected 3 rows, got %d", back.Rows())
	}
	if v, _ := back.Float(1, 0); v != 1.5 {
		t.Fatalf("expected 1.5, got %v", v)
	}
	col, _ := back.ColumnAt(2)
	if !col.IsNull(1) {
		t.Fatal("expected null int cell")
	}
}

func TestSchemaJSON(t *testing.T) {
	s := tabular.Schema{Columns: []tabular.ColumnSchema{{Name: "a", Type: tabular.KindFloat}, {Name: "b", Type: tabular.KindBool}}}
	got, err := schemaJSON(s)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"Tag":"name=schema, repetitiontype=REQUIRED","Fields":[{"Tag":"name=a, repetitiontype=OPTIONAL, type=DOUBLE"},{"Tag":"name=b, repetitiontype=OPTIONAL, type=BOOLEAN"}]}`
	if got != want {
		t.Fatalf("schema mismatch\n got %s\nwant %s", got, want)
	}
}
