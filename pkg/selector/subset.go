package selector

import (
	"fmt"
	"slices"
	"strings"

	"github.com/wdm0006/switchboard/pkg/tabular"
)

// Subset is an ordered list of column identifiers: either names or
// positions, never both. The zero Subset selects nothing and means
// "no subset configured".
type Subset struct {
	names     []string
	positions []int
	numeric   bool
}

// Names builds a name-based subset.
func Names(names ...string) Subset {
	return Subset{names: slices.Clone(names)}
}

// Indices builds a position-based subset.
func Indices(positions ...int) Subset {
	return Subset{positions: slices.Clone(positions), numeric: true}
}

func (s Subset) IsZero() bool     { return s.Len() == 0 }
func (s Subset) IsNumeric() bool  { return s.numeric }
func (s Subset) Names() []string  { return slices.Clone(s.names) }
func (s Subset) Positions() []int { return slices.Clone(s.positions) }

func (s Subset) Len() int {
	if s.numeric {
		return len(s.positions)
	}
	return len(s.names)
}

func (s Subset) String() string {
	if s.numeric {
		return fmt.Sprint(s.positions)
	}
	return "[" + strings.Join(s.names, " ") + "]"
}

// Resolve maps the subset onto column positions. Numeric subsets are
// returned as is and never consult reference. Names resolve to the first
// matching entry of reference.
func (s Subset) Resolve(reference []string) ([]int, error) {
	if s.numeric {
		return slices.Clone(s.positions), nil
	}
	if len(reference) == 0 {
		return nil, fmt.Errorf("%w: subset %v names columns but the input has none; supply Reference", ErrUnresolvableName, s)
	}
	out := make([]int, len(s.names))
	for i, name := range s.names {
		p := slices.Index(reference, name)
		if p < 0 {
			return nil, fmt.Errorf("%w: %q is not in Reference %v", ErrUnresolvableName, name, reference)
		}
		out[i] = p
	}
	return out, nil
}

// subsetOf converts a dynamically typed parameter value into a Subset.
func subsetOf(v any) (Subset, error) {
	switch t := v.(type) {
	case nil:
		return Subset{}, nil
	case Subset:
		return t, nil
	case []string:
		return Names(t...), nil
	case []int:
		return Indices(t...), nil
	}
	return Subset{}, fmt.Errorf("selector: subset: %w: %T", tabular.ErrUnsupportedType, v)
}
