package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/switchboard/pkg/io/csvio"
)

var irisPath = filepath.FromSlash("../../examples/data/iris.csv")

func TestRunSelect(t *testing.T) {
	out := filepath.Join(t.TempDir(), "picked.csv")
	cfg := Config{
		Input:  InputConfig{Path: irisPath, HasHeader: true},
		Select: &SelectConfig{Columns: []string{"species", "petal_width"}, Output: OutputConfig{Path: out}},
	}
	require.NoError(t, run(context.Background(), cfg, &bytes.Buffer{}))

	r, c, err := csvio.Open(out, csvio.ReaderOptions{HasHeader: true})
	require.NoError(t, err)
	defer func() { _ = c.Close() }()
	schema, names, err := r.InferSchema()
	require.NoError(t, err)
	assert.Equal(t, []string{"species", "petal_width"}, names)
	f, err := r.ReadAll(schema)
	require.NoError(t, err)
	assert.Equal(t, 45, f.Rows())
}

func TestRunSelectByIndex(t *testing.T) {
	out := filepath.Join(t.TempDir(), "picked.jsonl")
	cfg := Config{
		Input:  InputConfig{Path: irisPath, HasHeader: true},
		Select: &SelectConfig{Indices: []int{4, 0}, Output: OutputConfig{Path: out}},
	}
	require.NoError(t, run(context.Background(), cfg, &bytes.Buffer{}))

	bad := cfg
	bad.Select = &SelectConfig{Indices: []int{9}, Output: OutputConfig{Path: out}}
	assert.Error(t, run(context.Background(), bad, &bytes.Buffer{}))
}

func TestRunSearch(t *testing.T) {
	cfg := Config{
		Input: InputConfig{Path: irisPath, HasHeader: true},
		Label: "species",
		Search: &SearchConfig{
			Subsets: [][]string{{"petal_length", "petal_width"}, {"no_such_column"}},
			Models:  []string{"knn"},
			Seed:    1,
		},
	}
	var buf bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, &buf))
	got := buf.String()
	assert.Contains(t, got, "best {model__model=knn(k=3) select__subset=[petal_length petal_width]}")
	assert.Contains(t, got, "select__subset=[no_such_column]}: error:")
}

func TestRunSearchUnknownModel(t *testing.T) {
	cfg := Config{
		Input:  InputConfig{Path: irisPath, HasHeader: true},
		Label:  "species",
		Search: &SearchConfig{Models: []string{"perceptron"}},
	}
	assert.Error(t, run(context.Background(), cfg, &bytes.Buffer{}))
}

func TestTableType(t *testing.T) {
	assert.Equal(t, "csv", tableType("", "a.csv"))
	assert.Equal(t, "jsonl", tableType("", "a.jsonl.gz"))
	assert.Equal(t, "parquet", tableType("", "a.parquet"))
	assert.Equal(t, "jsonl", tableType("JSONL", "a.csv"))
	assert.Equal(t, "csv", tableType("", "-"))
}

func TestRunSearchWithPreprocessing(t *testing.T) {
	hi := 100.0
	cfg := Config{
		Input:   InputConfig{Path: irisPath, HasHeader: true},
		Label:   "species",
		Profile: true,
		Search: &SearchConfig{
			Models:      []string{"knn", "knn1"},
			Impute:      []string{"mean", "median"},
			Clip:        &ClipConfig{Max: &hi},
			Standardize: true,
			Seed:        5,
		},
	}
	var buf bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, &buf))
	got := buf.String()
	assert.Contains(t, got, "Profile Summary")
	assert.Contains(t, got, "impute__strategy=median")
	assert.Contains(t, got, "best {impute__strategy=")
	assert.NotContains(t, got, "error:")
}

func TestValidateImputeStrategy(t *testing.T) {
	cfg := Config{
		Input:  InputConfig{Path: irisPath},
		Label:  "species",
		Search: &SearchConfig{Models: []string{"knn"}, Impute: []string{"zero"}},
	}
	assert.Error(t, cfg.validate())
}
