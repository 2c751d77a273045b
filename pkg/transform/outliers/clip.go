// Package outliers caps numeric values to a fixed range.
package outliers

import (
	"fmt"

	"github.com/wdm0006/switchboard/pkg/tabular"
	"github.com/wdm0006/switchboard/pkg/transform"
)

// Clip is stateless: values below Min or above Max are replaced by the bound.
// A nil bound is open. Missing cells stay missing.
type Clip struct {
	Min *float64
	Max *float64
}

func (c *Clip) Name() string { return "clip" }

func (c *Clip) Fit(X tabular.Table, y []float64) error { return nil }

func (c *Clip) Transform(X tabular.Table) (tabular.Table, error) {
	if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
		return tabular.Table{}, fmt.Errorf("clip: min %v above max %v", *c.Min, *c.Max)
	}
	return transform.Map(X, func(_ int, v float64) float64 {
		if c.Min != nil && v < *c.Min {
			return *c.Min
		}
		if c.Max != nil && v > *c.Max {
			return *c.Max
		}
		return v
	})
}

func (c *Clip) Params() map[string]any {
	return map[string]any{"min": c.Min, "max": c.Max}
}

func (c *Clip) SetParams(params map[string]any) error {
	for k, v := range params {
		var bound *float64
		if v != nil {
			if p, ok := v.(*float64); ok {
				bound = p
			} else {
				f, err := transform.Float(k, v)
				if err != nil {
					return fmt.Errorf("clip: %w", err)
				}
				bound = &f
			}
		}
		switch k {
		case "min":
			c.Min = bound
		case "max":
			c.Max = bound
		default:
			return fmt.Errorf("clip: unknown parameter %q", k)
		}
	}
	return nil
}
