// Package sweeps selects the kind of sweep named by a configuration.
package sweeps

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/armadaproject/sweeprun/internal/sweep"
	"github.com/armadaproject/sweeprun/internal/sweepctl/configuration"
	"github.com/armadaproject/sweeprun/internal/sweeps/example"
	"github.com/armadaproject/sweeprun/internal/sweeps/grid"
)

// Kinds lists the supported values of the kind setting.
var Kinds = []string{example.Kind, grid.Kind}

// New returns the sweep described by c.
func New(c configuration.SweepConfiguration) (sweep.Sweep, error) {
	config := c.SweepConfig()
	switch c.Kind {
	case example.Kind:
		runner, err := example.New(config, c.Example.N)
		if err != nil {
			return nil, err
		}
		return runner, nil
	case grid.Kind:
		runner, err := grid.New(config, gridFromConfig(c.Grid))
		if err != nil {
			return nil, err
		}
		return runner, nil
	default:
		return nil, errors.WithStack(&sweep.ErrConfiguration{
			Name:    "kind",
			Value:   c.Kind,
			Message: "unknown kind of sweep; must be one of " + strings.Join(Kinds, ", "),
		})
	}
}

func gridFromConfig(c configuration.GridConfig) grid.Sweep {
	axes := make([]grid.Axis, len(c.Axes))
	for i, axis := range c.Axes {
		axes[i] = grid.Axis{Name: axis.Name, Values: axis.Values}
	}
	return grid.Sweep{
		Name:    c.Name,
		Axes:    axes,
		Command: c.Command,
		Env:     c.Env,
	}
}
