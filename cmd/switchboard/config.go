package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"

	"github.com/wdm0006/switchboard/pkg/transform/impute"
)

var imputeStrategies = []string{impute.Constant, impute.Mean, impute.Median, impute.MostFrequent}

type InputConfig struct {
	Path      string `json:"path" yaml:"path" toml:"path"`
	Type      string `json:"type" yaml:"type" toml:"type"` // csv|jsonl|parquet; default from extension
	HasHeader bool   `json:"has_header" yaml:"has_header" toml:"has_header"`
	Delimiter string `json:"delimiter" yaml:"delimiter" toml:"delimiter"`
}

type OutputConfig struct {
	Path      string `json:"path" yaml:"path" toml:"path"` // "-" or empty writes csv to stdout
	Type      string `json:"type" yaml:"type" toml:"type"`
	Delimiter string `json:"delimiter" yaml:"delimiter" toml:"delimiter"`
}

// SelectConfig writes a column subset of the input. Columns and Indices are
// mutually exclusive.
type SelectConfig struct {
	Columns   []string     `json:"columns" yaml:"columns" toml:"columns"`
	Indices   []int        `json:"indices" yaml:"indices" toml:"indices"`
	Reference []string     `json:"reference" yaml:"reference" toml:"reference"`
	Output    OutputConfig `json:"output" yaml:"output" toml:"output"`
}

// SearchConfig scores every combination of feature subset, imputation
// strategy and model.
type SearchConfig struct {
	Subsets     [][]string  `json:"subsets" yaml:"subsets" toml:"subsets"`
	Models      []string    `json:"models" yaml:"models" toml:"models"`
	Impute      []string    `json:"impute" yaml:"impute" toml:"impute"`
	Clip        *ClipConfig `json:"clip" yaml:"clip" toml:"clip"`
	Standardize bool        `json:"standardize" yaml:"standardize" toml:"standardize"`
	TrainRatio  float64     `json:"train_ratio" yaml:"train_ratio" toml:"train_ratio"`
	Seed        int64       `json:"seed" yaml:"seed" toml:"seed"`
}

type ClipConfig struct {
	Min *float64 `json:"min" yaml:"min" toml:"min"`
	Max *float64 `json:"max" yaml:"max" toml:"max"`
}

type Config struct {
	Input   InputConfig   `json:"input" yaml:"input" toml:"input"`
	Label   string        `json:"label" yaml:"label" toml:"label"`
	Profile bool          `json:"profile" yaml:"profile" toml:"profile"`
	Select  *SelectConfig `json:"select" yaml:"select" toml:"select"`
	Search  *SearchConfig `json:"search" yaml:"search" toml:"search"`
}

// loadConfig decodes a config file, choosing the format by extension.
func loadConfig(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("config %s: unsupported format %q (want .json, .yaml, .yml or .toml)", path, ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	var errs []error
	if c.Input.Path == "" {
		errs = append(errs, errors.New("input.path is required"))
	}
	if c.Select != nil && len(c.Select.Columns) > 0 && len(c.Select.Indices) > 0 {
		errs = append(errs, errors.New("select: set columns or indices, not both"))
	}
	if c.Search != nil {
		if c.Label == "" {
			errs = append(errs, errors.New("search: label is required"))
		}
		if len(c.Search.Models) == 0 {
			errs = append(errs, errors.New("search: at least one model is required"))
		}
		for _, s := range c.Search.Impute {
			if !slices.Contains(imputeStrategies, s) {
				errs = append(errs, fmt.Errorf("search: impute strategy %q is not one of %v", s, imputeStrategies))
			}
		}
	}
	return errors.Join(errs...)
}

// delimiter returns the first rune of s, or 0 to let the reader decide.
func delimiter(s string) rune {
	if s == `\t` {
		return '\t'
	}
	for _, r := range s {
		return r
	}
	return 0
}
