package golearn

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/ensemble"
	"github.com/sjwhitworth/golearn/evaluation"
	"github.com/sjwhitworth/golearn/knn"
	"github.com/sjwhitworth/golearn/trees"
	"gonum.org/v1/gonum/mat"

	"github.com/wdm0006/switchboard/pkg/router"
)

var (
	// ErrProbaUnsupported is returned by PredictProba: golearn learners only produce labels.
	ErrProbaUnsupported = errors.New("golearn: learner does not produce class probabilities")

	ErrNotFitted      = errors.New("golearn: classifier is not fitted")
	ErrUnknownLearner = errors.New("golearn: unknown learner")
)

// Learner is the part of golearn's base.Classifier the adapter needs.
type Learner interface {
	Fit(base.FixedDataGrid) error
	Predict(base.FixedDataGrid) (base.FixedDataGrid, error)
}

// Classifier wraps a golearn Learner as a router.Model. Features become
// float attributes x0..xn; labels become a categorical class attribute.
type Classifier struct {
	name  string
	build func(width int) Learner

	learner Learner
	attrs   []base.Attribute
	class   *base.CategoricalAttribute
}

// NewClassifier wraps learners produced by build. build receives the number
// of feature columns seen at fit time.
func NewClassifier(name string, build func(width int) Learner) *Classifier {
	return &Classifier{name: name, build: build}
}

func NewKNN(k int) *Classifier {
	return NewClassifier(fmt.Sprintf("knn(k=%d)", k), func(int) Learner {
		return knn.NewKnnClassifier("euclidean", "linear", k)
	})
}

// NewRandomForest builds a forest that considers at most features
// attributes per tree, capped at the fitted width.
func NewRandomForest(forestSize, features int) *Classifier {
	return NewClassifier(fmt.Sprintf("random_forest(trees=%d)", forestSize), func(width int) Learner {
		return ensemble.NewRandomForest(forestSize, min(features, width))
	})
}

func NewID3(prune float64) *Classifier {
	return NewClassifier(fmt.Sprintf("id3(prune=%g)", prune), func(int) Learner {
		return trees.NewID3DecisionTree(prune)
	})
}

func (c *Classifier) String() string { return c.name }

func (c *Classifier) Fit(X mat.Matrix, y []float64) error {
	rows, cols := X.Dims()
	if rows != len(y) {
		return fmt.Errorf("golearn: %d rows but %d labels", rows, len(y))
	}
	c.attrs = make([]base.Attribute, cols)
	for j := range c.attrs {
		c.attrs[j] = base.NewFloatAttribute("x" + strconv.Itoa(j))
	}
	c.class = base.NewCategoricalAttribute()
	c.class.SetName("class")

	inst, err := c.instances(X, y)
	if err != nil {
		return err
	}
	learner := c.build(cols)
	if err := learner.Fit(inst); err != nil {
		return err
	}
	c.learner = learner
	return nil
}

func (c *Classifier) Predict(X mat.Matrix) ([]float64, error) {
	if c.learner == nil {
		return nil, ErrNotFitted
	}
	if _, cols := X.Dims(); cols != len(c.attrs) {
		return nil, fmt.Errorf("golearn: fitted on %d features, got %d", len(c.attrs), cols)
	}
	inst, err := c.instances(X, nil)
	if err != nil {
		return nil, err
	}
	pred, err := c.learner.Predict(inst)
	if err != nil {
		return nil, err
	}
	_, n := pred.Size()
	out := make([]float64, n)
	for i := range out {
		v, err := strconv.ParseFloat(base.GetClass(pred, i), 64)
		if err != nil {
			return nil, fmt.Errorf("golearn: predicted label %q: %w", base.GetClass(pred, i), err)
		}
		out[i] = v
	}
	return out, nil
}

func (c *Classifier) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	return nil, fmt.Errorf("%w: %s", ErrProbaUnsupported, c.name)
}

// Score returns the accuracy of Predict(X) against y.
func (c *Classifier) Score(X mat.Matrix, y []float64) (float64, error) {
	pred, err := c.Predict(X)
	if err != nil {
		return 0, err
	}
	if len(pred) != len(y) {
		return 0, fmt.Errorf("golearn: %d predictions for %d labels", len(pred), len(y))
	}
	return evaluation.GetAccuracy(ConfusionMatrix(y, pred, nil)), nil
}

// instances lays X out as DenseInstances over the fitted attributes. With
// nil labels the class column is left at its first value.
func (c *Classifier) instances(X mat.Matrix, y []float64) (*base.DenseInstances, error) {
	rows, _ := X.Dims()
	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(c.attrs))
	for j, a := range c.attrs {
		specs[j] = inst.AddAttribute(a)
	}
	classSpec := inst.AddAttribute(c.class)
	if err := inst.AddClassAttribute(c.class); err != nil {
		return nil, err
	}
	if err := inst.Extend(rows); err != nil {
		return nil, err
	}
	for r := 0; r < rows; r++ {
		for j, spec := range specs {
			inst.Set(spec, r, base.PackFloatToBytes(X.At(r, j)))
		}
		if y != nil {
			inst.Set(classSpec, r, c.class.GetSysValFromString(formatLabel(y[r])))
		}
	}
	return inst, nil
}

func formatLabel(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// ConfusionMatrix tallies predictions against references in golearn's
// layout: reference label -> predicted label -> count. When classes is
// given, labels are used as indices into it.
func ConfusionMatrix(yTrue, yPred []float64, classes []string) evaluation.ConfusionMatrix {
	name := func(v float64) string {
		if i := int(v); float64(i) == v && i >= 0 && i < len(classes) {
			return classes[i]
		}
		return formatLabel(v)
	}
	cm := evaluation.ConfusionMatrix{}
	for i := range yTrue {
		ref, got := name(yTrue[i]), name(yPred[i])
		if cm[ref] == nil {
			cm[ref] = map[string]int{}
		}
		cm[ref][got]++
	}
	return cm
}

var registry = map[string]func() *Classifier{
	"knn":           func() *Classifier { return NewKNN(3) },
	"knn1":          func() *Classifier { return NewKNN(1) },
	"random_forest": func() *Classifier { return NewRandomForest(10, 3) },
	"id3":           func() *Classifier { return NewID3(0.6) },
}

// Lookup returns a constructor for a named learner, typed for use as a
// router "model" parameter.
func Lookup(name string) (func() router.Model, error) {
	mk, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownLearner, name, Available())
	}
	return func() router.Model { return mk() }, nil
}

// Available lists registered learner names in sorted order.
func Available() []string {
	return slices.Sorted(maps.Keys(registry))
}
