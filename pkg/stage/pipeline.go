package stage

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/wdm0006/switchboard/pkg/router"
	"github.com/wdm0006/switchboard/pkg/tabular"
)

var (
	ErrUnknownStep = errors.New("stage: unknown step")
	ErrNotTunable  = errors.New("stage: step has no parameters")
	ErrNoFinal     = errors.New("stage: pipeline has no final model")
)

// Transformer is a fitted mapping from one table to another.
type Transformer interface {
	Name() string
	Fit(X tabular.Table, y []float64) error
	Transform(X tabular.Table) (tabular.Table, error)
}

// Tunable is implemented by steps whose parameters a search may override.
type Tunable interface {
	Params() map[string]any
	SetParams(params map[string]any) error
}

type step struct {
	name string
	t    Transformer
}

// Pipeline composes a sequence of Transformers ending in a Model.
type Pipeline struct {
	steps     []step
	final     router.Model
	finalName string
}

func NewPipeline() *Pipeline { return &Pipeline{} }

func (p *Pipeline) Add(name string, t Transformer) *Pipeline {
	p.steps = append(p.steps, step{name: name, t: t})
	return p
}

// Final sets the model that consumes the transformed table.
func (p *Pipeline) Final(name string, m router.Model) *Pipeline {
	p.final, p.finalName = m, name
	return p
}

// Fit fits each step on the output of the one before it, then fits the
// final model on the dense result.
func (p *Pipeline) Fit(ctx context.Context, X tabular.Table, y []float64) error {
	cur := X
	for _, s := range p.steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.t.Fit(cur, y); err != nil {
			return fmt.Errorf("%s: fit: %w", s.name, err)
		}
		next, err := s.t.Transform(cur)
		if err != nil {
			return fmt.Errorf("%s: transform: %w", s.name, err)
		}
		cur = next
	}
	if p.final == nil {
		return nil
	}
	dense, err := p.dense(ctx, cur)
	if err != nil {
		return err
	}
	if err := p.final.Fit(dense, y); err != nil {
		return fmt.Errorf("%s: fit: %w", p.finalName, err)
	}
	return nil
}

// Transform runs X through every step, excluding the final model.
func (p *Pipeline) Transform(ctx context.Context, X tabular.Table) (tabular.Table, error) {
	cur := X
	for _, s := range p.steps {
		if err := ctx.Err(); err != nil {
			return tabular.Table{}, err
		}
		next, err := s.t.Transform(cur)
		if err != nil {
			return tabular.Table{}, fmt.Errorf("%s: transform: %w", s.name, err)
		}
		cur = next
	}
	return cur, nil
}

func (p *Pipeline) Predict(ctx context.Context, X tabular.Table) ([]float64, error) {
	dense, err := p.transformDense(ctx, X)
	if err != nil {
		return nil, err
	}
	return p.final.Predict(dense)
}

func (p *Pipeline) PredictProba(ctx context.Context, X tabular.Table) (*mat.Dense, error) {
	dense, err := p.transformDense(ctx, X)
	if err != nil {
		return nil, err
	}
	return p.final.PredictProba(dense)
}

func (p *Pipeline) Score(ctx context.Context, X tabular.Table, y []float64) (float64, error) {
	dense, err := p.transformDense(ctx, X)
	if err != nil {
		return 0, err
	}
	return p.final.Score(dense, y)
}

func (p *Pipeline) transformDense(ctx context.Context, X tabular.Table) (*mat.Dense, error) {
	if p.final == nil {
		return nil, ErrNoFinal
	}
	cur, err := p.Transform(ctx, X)
	if err != nil {
		return nil, err
	}
	return p.dense(ctx, cur)
}

func (p *Pipeline) dense(ctx context.Context, X tabular.Table) (*mat.Dense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d, err := X.Dense()
	if err != nil {
		return nil, fmt.Errorf("%s: input: %w", p.finalName, err)
	}
	return d, nil
}

// Params flattens every tunable step's parameters under "step__param" keys.
func (p *Pipeline) Params() map[string]any {
	out := map[string]any{}
	for name, t := range p.tunables() {
		for k, v := range t.Params() {
			out[name+"__"+k] = v
		}
	}
	return out
}

// SetParams routes "step__param" keys to the named steps.
func (p *Pipeline) SetParams(params map[string]any) error {
	tunables := p.tunables()
	grouped := map[string]map[string]any{}
	for key, v := range params {
		name, param, ok := strings.Cut(key, "__")
		if !ok {
			return fmt.Errorf("%w: key %q is not of the form step__param", ErrUnknownStep, key)
		}
		if _, known := tunables[name]; !known {
			if !p.hasStep(name) {
				return fmt.Errorf("%w: %q", ErrUnknownStep, name)
			}
			return fmt.Errorf("%w: %q", ErrNotTunable, name)
		}
		if grouped[name] == nil {
			grouped[name] = map[string]any{}
		}
		grouped[name][param] = v
	}
	for name, ps := range grouped {
		log.Debug().Str("step", name).Strs("params", slices.Sorted(maps.Keys(ps))).Msg("setting step params")
		if err := tunables[name].SetParams(ps); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func (p *Pipeline) tunables() map[string]Tunable {
	out := map[string]Tunable{}
	for _, s := range p.steps {
		if t, ok := s.t.(Tunable); ok {
			out[s.name] = t
		}
	}
	if t, ok := p.final.(Tunable); ok {
		out[p.finalName] = t
	}
	return out
}

func (p *Pipeline) hasStep(name string) bool {
	if slices.ContainsFunc(p.steps, func(s step) bool { return s.name == name }) {
		return true
	}
	return p.final != nil && p.finalName == name
}
