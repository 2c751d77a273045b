// Package search runs an exhaustive hyperparameter search over pipelines.
//
// Every trial gets a pipeline of its own from the Factory, so parameters set
// for one trial never leak into another.
package search

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"math/rand"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/wdm0006/switchboard/pkg/stage"
	"github.com/wdm0006/switchboard/pkg/tabular"
)

var (
	// ErrNoTrials is returned when no trial produced a score.
	ErrNoTrials = errors.New("search: no trial succeeded")

	// ErrEmptyCandidates is returned when a grid key has no values to try.
	ErrEmptyCandidates = errors.New("search: grid parameter has no candidate values")
)

// Grid maps "step__param" keys to the candidate values for that parameter.
type Grid map[string][]any

// Validate rejects keys with no candidate values, which would otherwise
// expand to zero trials.
func (g Grid) Validate() error {
	var empty []string
	for _, k := range slices.Sorted(maps.Keys(g)) {
		if len(g[k]) == 0 {
			empty = append(empty, k)
		}
	}
	if len(empty) > 0 {
		return fmt.Errorf("%w: %v", ErrEmptyCandidates, empty)
	}
	return nil
}

// Combinations expands the grid into every parameter assignment. Keys are
// visited in sorted order so the expansion is deterministic. An empty grid
// yields a single empty assignment.
func (g Grid) Combinations() []map[string]any {
	keys := slices.Sorted(maps.Keys(g))
	out := []map[string]any{{}}
	for _, k := range keys {
		var next []map[string]any
		for _, partial := range out {
			for _, v := range g[k] {
				m := maps.Clone(partial)
				m[k] = v
				next = append(next, m)
			}
		}
		out = next
	}
	return out
}

// Split is a table with its labels.
type Split struct {
	X tabular.Table
	Y []float64
}

// TrainTestSplit shuffles rows with a seeded source and puts ratio of them
// in train. Both sides keep at least one row.
func TrainTestSplit(X tabular.Table, y []float64, ratio float64, seed int64) (train, test Split, err error) {
	n := X.Len()
	if n != len(y) {
		return train, test, fmt.Errorf("search: %d rows but %d labels", n, len(y))
	}
	if n < 2 {
		return train, test, fmt.Errorf("search: need at least 2 rows to split, got %d", n)
	}
	if ratio <= 0 || ratio >= 1 {
		return train, test, fmt.Errorf("search: train ratio %v outside (0, 1)", ratio)
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	cut := int(math.Round(float64(n) * ratio))
	cut = min(max(cut, 1), n-1)

	if train, err = take(X, y, perm[:cut]); err != nil {
		return train, test, err
	}
	test, err = take(X, y, perm[cut:])
	return train, test, err
}

func take(X tabular.Table, y []float64, rows []int) (Split, error) {
	tx, err := X.TakeRows(rows)
	if err != nil {
		return Split{}, err
	}
	ty := make([]float64, len(rows))
	for i, r := range rows {
		ty[i] = y[r]
	}
	return Split{X: tx, Y: ty}, nil
}

// Factory builds a fresh, unfitted pipeline.
type Factory func() (*stage.Pipeline, error)

// Trial is the outcome of one parameter assignment.
type Trial struct {
	Params   map[string]any
	Score    float64
	Err      error
	Duration time.Duration
}

type Result struct {
	Trials []Trial
	Best   Trial
}

// Search scores every combination of Grid on a train/test split.
type Search struct {
	Factory Factory
	Grid    Grid
	Logger  zerolog.Logger
}

// Run fits and scores one pipeline per combination. Trials that fail are
// recorded with their error and skipped when choosing the best. Ties keep
// the earlier trial.
func (s *Search) Run(ctx context.Context, train, test Split) (Result, error) {
	var res Result
	if err := s.Grid.Validate(); err != nil {
		return res, err
	}
	best := -1
	for i, params := range s.Grid.Combinations() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		trial := s.trial(ctx, params, train, test)
		ev := s.Logger.Debug()
		if trial.Err != nil {
			ev = s.Logger.Warn().Err(trial.Err)
		}
		ev.Int("trial", i).Float64("score", trial.Score).Dur("took", trial.Duration).Msg("trial finished")

		res.Trials = append(res.Trials, trial)
		if trial.Err == nil && (best < 0 || trial.Score > res.Trials[best].Score) {
			best = len(res.Trials) - 1
		}
	}
	if best < 0 {
		return res, ErrNoTrials
	}
	res.Best = res.Trials[best]
	return res, nil
}

func (s *Search) trial(ctx context.Context, params map[string]any, train, test Split) Trial {
	start := time.Now()
	score, err := s.fitScore(ctx, params, train, test)
	if err != nil {
		score = math.NaN()
	}
	return Trial{Params: params, Score: score, Err: err, Duration: time.Since(start)}
}

func (s *Search) fitScore(ctx context.Context, params map[string]any, train, test Split) (float64, error) {
	p, err := s.Factory()
	if err != nil {
		return 0, err
	}
	if err := p.SetParams(params); err != nil {
		return 0, err
	}
	if err := p.Fit(ctx, train.X, train.Y); err != nil {
		return 0, err
	}
	return p.Score(ctx, test.X, test.Y)
}
