package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadConfigFormats(t *testing.T) {
	want := Config{
		Input: InputConfig{Path: "iris.csv", HasHeader: true},
		Label: "species",
		Search: &SearchConfig{
			Subsets:    [][]string{{"petal_length", "petal_width"}},
			Models:     []string{"knn", "id3"},
			TrainRatio: 0.8,
			Seed:       7,
		},
	}
	files := map[string]string{
		"c.json": `{"input": {"path": "iris.csv", "has_header": true}, "label": "species",
			"search": {"subsets": [["petal_length", "petal_width"]], "models": ["knn", "id3"], "train_ratio": 0.8, "seed": 7}}`,
		"c.yaml": `
input:
  path: iris.csv
  has_header: true
label: species
search:
  subsets: [[petal_length, petal_width]]
  models: [knn, id3]
  train_ratio: 0.8
  seed: 7
`,
		"c.toml": `
label = "species"

[input]
path = "iris.csv"
has_header = true

[search]
subsets = [["petal_length", "petal_width"]]
models = ["knn", "id3"]
train_ratio = 0.8
seed = 7
`,
	}
	for name, body := range files {
		t.Run(name, func(t *testing.T) {
			got, err := loadConfig(writeFile(t, name, body))
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestLoadConfigRejects(t *testing.T) {
	cases := map[string]string{
		"c.ini":  `path = x`,
		"c.json": `{"input": {"path": ""}}`,
		"d.json": `{"input": {"path": "x.csv"}, "select": {"columns": ["a"], "indices": [0]}}`,
		"e.json": `{"input": {"path": "x.csv"}, "search": {"models": ["knn"]}}`,
		"f.json": `{"input": {"path": "x.csv"}, "label": "y", "search": {}}`,
		"g.yaml": "input: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := loadConfig(writeFile(t, name, body))
			assert.Error(t, err)
		})
	}
}

func TestDelimiter(t *testing.T) {
	assert.Equal(t, rune(0), delimiter(""))
	assert.Equal(t, ';', delimiter(";"))
	assert.Equal(t, '\t', delimiter(`\t`))
}
