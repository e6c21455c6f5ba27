package configuration

import (
	"github.com/hashicorp/go-multierror"
	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/armadaproject/sweeprun/internal/common/config"
	"github.com/armadaproject/sweeprun/internal/sweep"
)

type SweepConfiguration struct {
	// Selects the kind of sweep, e.g., "example" or "grid". Unknown kinds are rejected when the sweep is built.
	Kind string `validate:"required"`
	// Root directory for sweep output.
	PathPrefix string `validate:"required"`
	// If true, jobs whose output already exists are not run again.
	SkipCompleted bool
	Resources     ResourcesConfig
	Collect       CollectConfig
	Metrics       MetricsConfig
	Example       ExampleConfig
	Grid          GridConfig
	Slurm         SlurmConfig
}

// ResourcesConfig is validated by sweep.Resources.
type ResourcesConfig struct {
	JobName     string
	WallTime    sweep.WallTime
	Memory      resource.Quantity
	CpusPerTask int
}

type CollectConfig struct {
	// If true, collect merges the outputs that exist rather than failing on missing ones.
	AllowPartial bool
}

type MetricsConfig struct {
	// If set, job metrics are written to this directory in the Prometheus text format,
	// e.g., for the node exporter textfile collector. Disabled if empty.
	TextfileDir string
}

type ExampleConfig struct {
	N int
}

type GridConfig struct {
	Name    string
	Axes    []AxisConfig
	Command []string
	Env     []string
}

type AxisConfig struct {
	Name   string
	Values []string
}

type SlurmConfig struct {
	// Maximum number of array tasks running at once. 0 means no limit.
	ArrayLimit int `validate:"gte=0"`
	// Pattern passed to #SBATCH --output, e.g., slurm-%A_%a.out.
	Output    string
	Partition string
	// Path of the sweepctl binary invoked by the batch script. Defaults to the running binary.
	Executable string
	// Additional #SBATCH lines, without the prefix, e.g., --account=foo.
	ExtraOptions []string
}

// SweepConfig returns the kind-independent part of the configuration.
func (c SweepConfiguration) SweepConfig() sweep.Config {
	return sweep.Config{
		PathPrefix: c.PathPrefix,
		Resources: sweep.Resources{
			JobName:     c.Resources.JobName,
			WallTime:    c.Resources.WallTime,
			Memory:      c.Resources.Memory,
			CpusPerTask: c.Resources.CpusPerTask,
		},
		SkipCompleted:       c.SkipCompleted,
		AllowPartialCollect: c.Collect.AllowPartial,
	}
}

// Validate returns all problems with the configuration that can be detected without building the sweep.
// Kind-specific settings are validated when the sweep is constructed.
func (c SweepConfiguration) Validate() error {
	var result *multierror.Error
	if err := config.ValidateStruct(c); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.SweepConfig().Resources.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
