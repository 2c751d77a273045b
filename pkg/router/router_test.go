package router

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// meanModel predicts the mean of the labels it was fitted on.
type meanModel struct {
	mean float64
	opts Options
}

func (m *meanModel) Fit(X mat.Matrix, y []float64) error {
	if len(y) == 0 {
		return errors.New("no labels")
	}
	m.mean = 0
	for _, v := range y {
		m.mean += v
	}
	m.mean /= float64(len(y))
	return nil
}

func (m *meanModel) Predict(X mat.Matrix) ([]float64, error) {
	r, _ := X.Dims()
	out := make([]float64, r)
	for i := range out {
		out[i] = m.mean
	}
	return out, nil
}

func (m *meanModel) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	r, _ := X.Dims()
	return mat.NewDense(r, 1, nil), nil
}

func (m *meanModel) Score(X mat.Matrix, y []float64) (float64, error) { return -m.mean, nil }

func (m *meanModel) String() string { return "mean" }

type optionModel struct{ meanModel }

func (m *optionModel) FitWithOptions(X mat.Matrix, y []float64, opts Options) error {
	m.opts = opts
	return m.Fit(X, y)
}

var (
	X = mat.NewDense(3, 1, []float64{1, 2, 3})
	y = []float64{2, 4, 6}
)

func TestRouterIsTransparent(t *testing.T) {
	direct := &meanModel{}
	require.NoError(t, direct.Fit(X, y))
	want, err := direct.Predict(X)
	require.NoError(t, err)

	r := New[Model](&meanModel{})
	require.NoError(t, r.Fit(X, y))
	got, err := r.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	score, err := r.Score(X, y)
	require.NoError(t, err)
	assert.Equal(t, -4.0, score)

	proba, err := r.PredictProba(X)
	require.NoError(t, err)
	rows, _ := proba.Dims()
	assert.Equal(t, 3, rows)
}

func TestRouterWithoutModel(t *testing.T) {
	var zero Router[Model]
	typedNil := New[*meanModel](nil)
	for name, r := range map[string]Model{"zero": &zero, "typed nil": typedNil} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, r.Fit(X, y), ErrNoModel)
			_, err := r.Predict(X)
			assert.ErrorIs(t, err, ErrNoModel)
			_, err = r.PredictProba(X)
			assert.ErrorIs(t, err, ErrNoModel)
			_, err = r.Score(X, y)
			assert.ErrorIs(t, err, ErrNoModel)
		})
	}
	_, err := zero.FitWithOptions(X, y, Options{"w": 1})
	assert.ErrorIs(t, err, ErrNoModel)
	_, ok := zero.Model()
	assert.False(t, ok)
}

func TestFitWithOptions(t *testing.T) {
	m := &optionModel{}
	r := New[Model](m)
	got, err := r.FitWithOptions(X, y, Options{"sample_weight": []float64{1, 1, 1}})
	require.NoError(t, err)
	assert.Same(t, r, got)
	assert.Contains(t, m.opts, "sample_weight")

	plain := New[Model](&meanModel{})
	_, err = plain.FitWithOptions(X, y, Options{"sample_weight": nil})
	assert.ErrorIs(t, err, ErrOptionsUnsupported)

	_, err = plain.FitWithOptions(X, y, nil)
	assert.NoError(t, err)
}

func TestRoutersNest(t *testing.T) {
	inner := New[Model](&meanModel{})
	outer := New[Model](inner)
	require.NoError(t, outer.Fit(X, y))
	got, err := outer.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 4, 4}, got)
}

func TestSetParams(t *testing.T) {
	r := New[Model](nil)
	a := &meanModel{}
	require.NoError(t, r.SetParams(map[string]any{"model": a}))
	held, ok := r.Model()
	require.True(t, ok)
	assert.Same(t, a, held)
	assert.Equal(t, map[string]any{"model": Model(a)}, r.Params())

	var built []*meanModel
	mk := func() Model {
		m := &meanModel{}
		built = append(built, m)
		return m
	}
	require.NoError(t, r.SetParams(map[string]any{"model": mk}))
	require.NoError(t, r.SetParams(map[string]any{"model": mk}))
	require.Len(t, built, 2)
	assert.NotSame(t, built[0], built[1])

	require.NoError(t, r.SetParams(map[string]any{"model": nil}))
	assert.ErrorIs(t, r.Fit(X, y), ErrNoModel)

	assert.Error(t, r.SetParams(map[string]any{"model": "knn"}))
	assert.Error(t, r.SetParams(map[string]any{"estimator": a}))
}
