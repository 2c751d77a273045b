// Package router lets one pipeline slot delegate to an interchangeable model,
// so that the identity of the model becomes a parameter a search can tune.
package router

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNoModel is returned by every delegated call on a router that holds no model.
	ErrNoModel = errors.New("router: no model assigned")

	// ErrOptionsUnsupported is returned when fit options are given to a model that cannot take them.
	ErrOptionsUnsupported = errors.New("router: model does not accept fit options")
)

// Model is the capability set a routed model must provide.
type Model interface {
	Fit(X mat.Matrix, y []float64) error
	Predict(X mat.Matrix) ([]float64, error)
	PredictProba(X mat.Matrix) (*mat.Dense, error)
	Score(X mat.Matrix, y []float64) (float64, error)
}

// Options carries extra fit arguments through to the model untouched.
type Options map[string]any

// OptionFitter is implemented by models that accept extra fit options.
type OptionFitter interface {
	FitWithOptions(X mat.Matrix, y []float64, opts Options) error
}

// Router forwards every call to the model it holds. It does not own the model
// and performs no validation, transformation or caching of its own.
type Router[M Model] struct {
	model M
}

// New returns a router holding m. A zero Router holds no model.
func New[M Model](m M) *Router[M] {
	return &Router[M]{model: m}
}

func (r *Router[M]) Name() string { return "router" }

// Model returns the held model and whether one is assigned.
func (r *Router[M]) Model() (M, bool) {
	return r.model, !isNil(r.model)
}

// SetModel replaces the held model.
func (r *Router[M]) SetModel(m M) {
	log.Debug().Str("model", describe(m)).Msg("router model set")
	r.model = m
}

func (r *Router[M]) held() (M, error) {
	if isNil(r.model) {
		return r.model, ErrNoModel
	}
	return r.model, nil
}

func (r *Router[M]) Fit(X mat.Matrix, y []float64) error {
	m, err := r.held()
	if err != nil {
		return err
	}
	return m.Fit(X, y)
}

// FitWithOptions fits the held model with extra options and returns the
// router itself so calls can be chained.
func (r *Router[M]) FitWithOptions(X mat.Matrix, y []float64, opts Options) (*Router[M], error) {
	m, err := r.held()
	if err != nil {
		return r, err
	}
	if len(opts) == 0 {
		return r, m.Fit(X, y)
	}
	of, ok := any(m).(OptionFitter)
	if !ok {
		return r, fmt.Errorf("%w: %s", ErrOptionsUnsupported, describe(m))
	}
	return r, of.FitWithOptions(X, y, opts)
}

func (r *Router[M]) Predict(X mat.Matrix) ([]float64, error) {
	m, err := r.held()
	if err != nil {
		return nil, err
	}
	return m.Predict(X)
}

func (r *Router[M]) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	m, err := r.held()
	if err != nil {
		return nil, err
	}
	return m.PredictProba(X)
}

func (r *Router[M]) Score(X mat.Matrix, y []float64) (float64, error) {
	m, err := r.held()
	if err != nil {
		return 0, err
	}
	return m.Score(X, y)
}

// Params exposes the held model as the single tunable parameter "model".
func (r *Router[M]) Params() map[string]any {
	return map[string]any{"model": r.model}
}

// SetParams accepts "model" as either an M or a func() M. A constructor is
// called once per SetParams so each trial gets its own instance.
func (r *Router[M]) SetParams(params map[string]any) error {
	for k, v := range params {
		if k != "model" {
			return fmt.Errorf("router: unknown parameter %q", k)
		}
		switch t := v.(type) {
		case nil:
			var zero M
			r.SetModel(zero)
		case M:
			r.SetModel(t)
		case func() M:
			r.SetModel(t())
		default:
			return fmt.Errorf("router: parameter model: cannot use %T", v)
		}
	}
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func describe(v any) string {
	if isNil(v) {
		return "<nil>"
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", v)
}
