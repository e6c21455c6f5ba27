// Package sweep implements the job-definition and execution-indexing core of a parameter sweep.
//
// A sweep is a family of independent jobs, each identified by its position in a deterministic
// job table. A Runner maps (sweep configuration, job index) to a unique output file, runs one
// job per Execute call, and optionally merges all outputs with Collect. Execute and Collect are
// designed to run in different processes; the only state they share is the filesystem.
package sweep

import (
	"context"
	"io"
	"os"
)

// Definition is implemented by each kind of sweep. R is the kind's job record type.
//
// Implementations must be pure with respect to Jobs, OutputFolder and OutputFileName:
// the same definition value must always yield the same job table, folder and file names.
type Definition[R any] interface {
	// Jobs returns the job table, one record per unit of work, in a stable order.
	Jobs() ([]R, error)
	// OutputFolder returns a single path element encoding the parameters that distinguish
	// this sweep from any other sweep sharing the same path prefix.
	OutputFolder() string
	// OutputFileName returns the name of the file a job writes to. It must be unique within the job table.
	OutputFileName(record R) string
	// Execute performs the work for one record and writes its result to out.
	Execute(ctx context.Context, record R, out io.Writer) error
}

// Collector is an optional capability of a Definition. Sweeps that do not implement it
// have no aggregation defined and Collect is a no-op for them.
type Collector[R any] interface {
	// CollectedFileName is the name of the aggregate file written to the output folder.
	CollectedFileName() string
	// Collect merges outputs, given in job-table order, into out.
	Collect(ctx context.Context, outputs []Output[R], out io.Writer) error
}

// Output describes the persisted result of one job.
type Output[R any] struct {
	Index  int
	Record R
	Path   string
}

// Open opens the job's output file for reading.
func (o Output[R]) Open() (io.ReadCloser, error) {
	return os.Open(o.Path)
}

// Config holds the sweep-level parameters that are independent of the kind of sweep.
type Config struct {
	// Root directory under which one folder per sweep configuration is created.
	PathPrefix string
	// Scheduler-facing resource request.
	Resources Resources
	// If true, Execute returns immediately for jobs whose output already exists.
	SkipCompleted bool
	// If true, Collect skips jobs without output instead of failing.
	AllowPartialCollect bool
}

// Status reports which jobs of a sweep have produced output.
type Status struct {
	Total     int   `yaml:"total"`
	Completed []int `yaml:"completed"`
	Missing   []int `yaml:"missing"`
}

// Done returns true if every job has produced output.
func (s Status) Done() bool {
	return len(s.Missing) == 0
}

// Job is a kind-independent view of one entry of the job table.
type Job struct {
	Index  int    `yaml:"index"`
	Path   string `yaml:"path"`
	Record string `yaml:"record"`
}

// Sweep is the kind-independent interface through which drivers operate a sweep.
// It is implemented by *Runner[R] for every record type R.
type Sweep interface {
	// Len returns the number of jobs in the job table.
	Len() int
	// Jobs lists the job table.
	Jobs() []Job
	// Folder returns the output folder of the sweep.
	Folder() string
	// OutputLocation returns the output path of the job at index.
	OutputLocation(index int) (string, error)
	// Resources returns the scheduler-facing resource request.
	Resources() Resources
	// Execute runs the job at index and persists its output.
	Execute(ctx context.Context, index int) error
	// HasAggregation returns true if the sweep defines an aggregation.
	HasAggregation() bool
	// Collect merges all job outputs, if the sweep defines an aggregation.
	Collect(ctx context.Context) error
	// Status reports which jobs have produced output.
	Status() (Status, error)
	// Metrics returns the metrics recorded by this sweep.
	Metrics() *Metrics
}
