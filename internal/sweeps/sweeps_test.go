package sweeps

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armadaproject/sweeprun/internal/sweep"
	"github.com/armadaproject/sweeprun/internal/sweepctl/configuration"
	"github.com/armadaproject/sweeprun/internal/sweeps/grid"
)

func testConfiguration(t *testing.T) configuration.SweepConfiguration {
	c, err := configuration.Load([]string{}, nil)
	require.NoError(t, err)
	c.PathPrefix = t.TempDir()
	return c
}

func TestNew_Example(t *testing.T) {
	c := testConfiguration(t)
	c.Example.N = 5

	s, err := New(c)
	require.NoError(t, err)
	assert.Equal(t, 5, s.Len())
	assert.Equal(t, "{index:4}", s.Jobs()[4].Record)
}

func TestNew_Grid(t *testing.T) {
	c := testConfiguration(t)
	c.Kind = grid.Kind
	c.Grid = configuration.GridConfig{
		Name: "scan",
		Axes: []configuration.AxisConfig{
			{Name: "a", Values: []string{"1", "2"}},
			{Name: "b", Values: []string{"x", "y", "z"}},
		},
		Command: []string{"echo", "{{.a}}{{.b}}"},
	}

	s, err := New(c)
	require.NoError(t, err)
	assert.Equal(t, 6, s.Len())
	assert.Equal(t, "{index:1 a:1 b:y}", s.Jobs()[1].Record)
}

func TestNew_Invalid(t *testing.T) {
	tests := map[string]func(c *configuration.SweepConfiguration){
		"unknown kind":      func(c *configuration.SweepConfiguration) { c.Kind = "random" },
		"empty example":     func(c *configuration.SweepConfiguration) { c.Example.N = 0 },
		"unconfigured grid": func(c *configuration.SweepConfiguration) { c.Kind = grid.Kind },
		"bad resources":     func(c *configuration.SweepConfiguration) { c.Resources.CpusPerTask = -1 },
	}
	for name, modify := range tests {
		t.Run(name, func(t *testing.T) {
			c := testConfiguration(t)
			modify(&c)
			_, err := New(c)
			var e *sweep.ErrConfiguration
			assert.True(t, errors.As(err, &e), "expected ErrConfiguration, got %v", err)
		})
	}
}
