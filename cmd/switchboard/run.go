package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sjwhitworth/golearn/evaluation"

	"github.com/wdm0006/switchboard/adapters/golearn"
	"github.com/wdm0006/switchboard/pkg/io/csvio"
	"github.com/wdm0006/switchboard/pkg/io/jsonlio"
	"github.com/wdm0006/switchboard/pkg/io/parquetio"
	"github.com/wdm0006/switchboard/pkg/profile"
	"github.com/wdm0006/switchboard/pkg/router"
	"github.com/wdm0006/switchboard/pkg/search"
	"github.com/wdm0006/switchboard/pkg/selector"
	"github.com/wdm0006/switchboard/pkg/stage"
	"github.com/wdm0006/switchboard/pkg/tabular"
	"github.com/wdm0006/switchboard/pkg/transform/impute"
	"github.com/wdm0006/switchboard/pkg/transform/outliers"
	"github.com/wdm0006/switchboard/pkg/transform/standardize"
)

const defaultTrainRatio = 0.7

func run(ctx context.Context, cfg Config, w io.Writer) error {
	f, err := readTable(cfg.Input)
	if err != nil {
		return fmt.Errorf("read %s: %w", cfg.Input.Path, err)
	}
	log.Info().Str("path", cfg.Input.Path).Int("rows", f.Rows()).Int("cols", f.Cols()).Msg("loaded input")

	if cfg.Profile {
		c := profile.NewCollector(f.Schema(), 5)
		c.ConsumeFrame(f)
		fmt.Fprint(w, c.ReportText())
	}
	if cfg.Select == nil && cfg.Search == nil {
		log.Info().Msg("no select or search block; nothing to do")
		return nil
	}
	if cfg.Select != nil {
		if err := runSelect(f, *cfg.Select); err != nil {
			return err
		}
	}
	if cfg.Search != nil {
		return runSearch(ctx, f, cfg.Label, *cfg.Search, w)
	}
	return nil
}

func runSelect(f *tabular.Frame, sc SelectConfig) error {
	s := &selector.Selector{Reference: sc.Reference}
	switch {
	case len(sc.Columns) > 0:
		s.Subset = selector.Names(sc.Columns...)
	case len(sc.Indices) > 0:
		s.Subset = selector.Indices(sc.Indices...)
	}
	out, err := s.Transform(tabular.FrameTable(f))
	if err != nil {
		return fmt.Errorf("select: %w", err)
	}
	log.Info().Stringer("subset", s.Subset).Strs("columns", out.Frame().Names()).Msg("selected columns")
	return writeTable(sc.Output, out.Frame())
}

// newPipeline builds the searched pipeline: a column selector, the
// configured preprocessing steps and a routed model. The router is returned
// so callers can see which model won.
func newPipeline(sc SearchConfig) (*stage.Pipeline, *router.Router[router.Model]) {
	r := router.New[router.Model](nil)
	p := stage.NewPipeline().Add("select", &selector.Selector{})
	if len(sc.Impute) > 0 {
		p.Add("impute", &impute.Imputer{})
	}
	if sc.Clip != nil {
		p.Add("clip", &outliers.Clip{Min: sc.Clip.Min, Max: sc.Clip.Max})
	}
	if sc.Standardize {
		p.Add("standardize", &standardize.Scaler{})
	}
	return p.Final("model", r), r
}

func runSearch(ctx context.Context, f *tabular.Frame, label string, sc SearchConfig, w io.Writer) error {
	y, classes, err := f.Labels(label)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	ratio := sc.TrainRatio
	if ratio == 0 {
		ratio = defaultTrainRatio
	}
	train, test, err := search.TrainTestSplit(tabular.FrameTable(f.Drop(label)), y, ratio, sc.Seed)
	if err != nil {
		return err
	}

	grid, err := buildGrid(sc)
	if err != nil {
		return err
	}
	s := &search.Search{
		Factory: func() (*stage.Pipeline, error) {
			p, _ := newPipeline(sc)
			return p, nil
		},
		Grid:   grid,
		Logger: log.Logger,
	}
	res, err := s.Run(ctx, train, test)
	if err != nil {
		return err
	}
	for _, t := range res.Trials {
		if t.Err != nil {
			fmt.Fprintf(w, "trial %s: error: %v\n", describe(t.Params), t.Err)
			continue
		}
		fmt.Fprintf(w, "trial %s: score=%.4f\n", describe(t.Params), t.Score)
	}
	fmt.Fprintf(w, "best %s: score=%.4f\n", describe(res.Best.Params), res.Best.Score)

	// Refit the winner to report its confusion matrix on the test split.
	p, r := newPipeline(sc)
	if err := p.SetParams(res.Best.Params); err != nil {
		return err
	}
	if err := p.Fit(ctx, train.X, train.Y); err != nil {
		return err
	}
	pred, err := p.Predict(ctx, test.X)
	if err != nil {
		return err
	}
	if m, ok := r.Model(); ok {
		log.Debug().Str("model", fmt.Sprint(m)).Msg("refit best model")
	}
	fmt.Fprintln(w, evaluation.GetSummary(golearn.ConfusionMatrix(test.Y, pred, classes)))
	return nil
}

func buildGrid(sc SearchConfig) (search.Grid, error) {
	grid := search.Grid{}
	for _, name := range sc.Models {
		mk, err := golearn.Lookup(name)
		if err != nil {
			return nil, err
		}
		grid["model__model"] = append(grid["model__model"], mk)
	}
	for _, cols := range sc.Subsets {
		grid["select__subset"] = append(grid["select__subset"], cols)
	}
	for _, strategy := range sc.Impute {
		grid["impute__strategy"] = append(grid["impute__strategy"], strategy)
	}
	return grid, nil
}

// describe renders trial params; model constructors render as the model they build.
func describe(params map[string]any) string {
	parts := make([]string, 0, len(params))
	for _, k := range slices.Sorted(maps.Keys(params)) {
		v := params[k]
		if mk, ok := v.(func() router.Model); ok {
			v = mk()
		}
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// tableType picks the format from an explicit type or the file extension.
func tableType(explicit, path string) string {
	if explicit != "" {
		return strings.ToLower(explicit)
	}
	switch filepath.Ext(strings.TrimSuffix(strings.ToLower(path), ".gz")) {
	case ".jsonl", ".ndjson":
		return "jsonl"
	case ".parquet":
		return "parquet"
	}
	return "csv"
}

func readTable(in InputConfig) (*tabular.Frame, error) {
	switch typ := tableType(in.Type, in.Path); typ {
	case "csv":
		rdr, c, err := csvio.Open(in.Path, csvio.ReaderOptions{HasHeader: in.HasHeader, Delimiter: delimiter(in.Delimiter), SampleRows: 100})
		if err != nil {
			return nil, err
		}
		defer func() { _ = c.Close() }()
		schema, _, err := rdr.InferSchema()
		if err != nil {
			return nil, err
		}
		f, err := rdr.ReadAll(schema)
		if err != nil {
			return nil, err
		}
		if warn := rdr.Warnings(); warn != "" {
			log.Warn().Str("path", in.Path).Str("repairs", warn).Msg("csv records repaired")
		}
		return f, nil
	case "jsonl":
		rdr, c, err := jsonlio.Open(in.Path, jsonlio.ReaderOptions{SampleRows: 100})
		if err != nil {
			return nil, err
		}
		defer func() { _ = c.Close() }()
		schema, err := rdr.InferSchema()
		if err != nil {
			return nil, err
		}
		return rdr.ReadAll(schema)
	case "parquet":
		rdr, err := parquetio.OpenReader(in.Path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = rdr.Close() }()
		return rdr.ReadAll()
	default:
		return nil, fmt.Errorf("unsupported input type %q", typ)
	}
}

func writeTable(out OutputConfig, f *tabular.Frame) error {
	path := out.Path
	if path == "" {
		path = "-"
	}
	switch typ := tableType(out.Type, path); typ {
	case "csv":
		return csvio.WriteAll(path, f, csvio.WriterOptions{Delimiter: delimiter(out.Delimiter)})
	case "jsonl":
		return jsonlio.WriteAll(path, f)
	case "parquet":
		return parquetio.WriteAll(path, f)
	default:
		return fmt.Errorf("unsupported output type %q", typ)
	}
}
