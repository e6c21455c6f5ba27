package sweep

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/armadaproject/sweeprun/internal/common/util"
)

// Runner executes and collects the jobs of one sweep.
// It holds only immutable state and is safe for concurrent Execute calls on distinct indices.
type Runner[R any] struct {
	config    Config
	def       Definition[R]
	jobs      []R
	fileNames []string
	folder    string
	clock     util.Clock
	metrics   *Metrics
	logger    *log.Entry
}

// NewRunner validates the configuration, builds the job table and derives every output file
// name up front, so that configuration errors surface before any job runs.
func NewRunner[R any](config Config, def Definition[R]) (*Runner[R], error) {
	if def == nil {
		return nil, errors.WithStack(&ErrConfiguration{Name: "definition", Message: "not provided"})
	}
	if err := config.Resources.Validate(); err != nil {
		return nil, err
	}
	folder, err := OutputFolder(config.PathPrefix, def.OutputFolder())
	if err != nil {
		return nil, err
	}
	jobs, err := BuildJobTable[R](def)
	if err != nil {
		return nil, err
	}
	fileNames, err := outputFileNames[R](def, jobs)
	if err != nil {
		return nil, err
	}
	if collector, ok := def.(Collector[R]); ok {
		collected := collector.CollectedFileName()
		if err := validatePathElement("collectedFileName", collected); err != nil {
			return nil, err
		}
		for i, name := range fileNames {
			if name == collected {
				return nil, errors.WithStack(&ErrConfiguration{
					Name:    "collectedFileName",
					Value:   collected,
					Message: fmt.Sprintf("collides with the output file of job %d", i),
				})
			}
		}
	}
	return &Runner[R]{
		config:    config,
		def:       def,
		jobs:      jobs,
		fileNames: fileNames,
		folder:    folder,
		clock:     &util.DefaultClock{},
		metrics:   NewMetrics(filepath.Base(folder)),
		logger:    log.WithField("sweep", filepath.Base(folder)),
	}, nil
}

// WithLogger replaces the logger used to report job progress.
func (r *Runner[R]) WithLogger(logger *log.Logger) *Runner[R] {
	r.logger = logger.WithField("sweep", filepath.Base(r.folder))
	return r
}

// WithClock replaces the clock used to time jobs.
func (r *Runner[R]) WithClock(clock util.Clock) *Runner[R] {
	r.clock = clock
	return r
}

func (r *Runner[R]) Len() int {
	return len(r.jobs)
}

func (r *Runner[R]) Folder() string {
	return r.folder
}

func (r *Runner[R]) Resources() Resources {
	return r.config.Resources
}

func (r *Runner[R]) Metrics() *Metrics {
	return r.metrics
}

// HasAggregation returns true if the sweep defines how its outputs are collected.
func (r *Runner[R]) HasAggregation() bool {
	_, ok := r.def.(Collector[R])
	return ok
}

func (r *Runner[R]) OutputLocation(index int) (string, error) {
	if err := r.checkIndex(index); err != nil {
		return "", err
	}
	return r.outputLocation(index), nil
}

func (r *Runner[R]) outputLocation(index int) string {
	return filepath.Join(r.folder, r.fileNames[index])
}

func (r *Runner[R]) checkIndex(index int) error {
	if index < 0 || index >= len(r.jobs) {
		return errors.WithStack(&ErrIndexOutOfRange{Index: index, Len: len(r.jobs)})
	}
	return nil
}

func (r *Runner[R]) Jobs() []Job {
	jobs := make([]Job, len(r.jobs))
	for i, record := range r.jobs {
		jobs[i] = Job{
			Index:  i,
			Path:   r.outputLocation(i),
			Record: fmt.Sprint(record),
		}
	}
	return jobs
}

// Execute runs the job at index and atomically writes its output to the job's output location,
// replacing any previous output. An out-of-range index fails before the filesystem is touched.
func (r *Runner[R]) Execute(ctx context.Context, index int) error {
	if err := r.checkIndex(index); err != nil {
		return err
	}
	record := r.jobs[index]
	path := r.outputLocation(index)
	logger := r.logger.WithField("index", index).WithField("path", path)

	if r.config.SkipCompleted {
		completed, err := isCompleted(path)
		if err != nil {
			return errors.WithStack(&ErrJobExecution{Index: index, Cause: err})
		}
		if completed {
			logger.Info("Output already exists; skipping job")
			r.metrics.recordJob(outcomeSkipped, 0)
			return nil
		}
	}

	logger.Infof("Executing job %v", record)
	start := r.clock.Now()
	err := writeAtomic(path, func(w io.Writer) error {
		return r.def.Execute(ctx, record, w)
	})
	duration := r.clock.Since(start)
	if err != nil {
		r.metrics.recordJob(outcomeFailed, duration)
		return errors.WithStack(&ErrJobExecution{Index: index, Cause: err})
	}
	r.metrics.recordJob(outcomeSucceeded, duration)
	logger.Infof("Job completed in %s", duration)
	return nil
}

// Status reports which jobs have produced output.
func (r *Runner[R]) Status() (Status, error) {
	status := Status{Total: len(r.jobs)}
	for i := range r.jobs {
		completed, err := isCompleted(r.outputLocation(i))
		if err != nil {
			return Status{}, err
		}
		if completed {
			status.Completed = append(status.Completed, i)
		} else {
			status.Missing = append(status.Missing, i)
		}
	}
	return status, nil
}

// Collect merges the outputs of all jobs into the aggregate file of the sweep.
//
// Sweeps without a Collector have no aggregation defined; for them Collect only logs and
// returns nil. Otherwise all outputs are checked before anything is written: if any job has
// no output, Collect fails with ErrIncompleteSweep listing every missing index, unless
// AllowPartialCollect is set, in which case missing jobs are skipped. A sweep with no output
// at all is incomplete under either policy.
func (r *Runner[R]) Collect(ctx context.Context) error {
	collector, ok := r.def.(Collector[R])
	if !ok {
		r.logger.WithField("folder", r.folder).Info("No aggregation defined for this sweep; nothing to collect")
		return nil
	}

	status, err := r.Status()
	if err != nil {
		return err
	}
	r.metrics.recordCollect(len(status.Completed), len(status.Missing))
	if len(status.Completed) == 0 || (!status.Done() && !r.config.AllowPartialCollect) {
		return errors.WithStack(&ErrIncompleteSweep{Total: status.Total, Missing: status.Missing})
	}
	if !status.Done() {
		r.logger.Warnf("Collecting %d of %d outputs; skipping jobs %v", len(status.Completed), status.Total, status.Missing)
	}

	outputs := make([]Output[R], len(status.Completed))
	for i, index := range status.Completed {
		outputs[i] = Output[R]{
			Index:  index,
			Record: r.jobs[index],
			Path:   r.outputLocation(index),
		}
	}

	path := filepath.Join(r.folder, collector.CollectedFileName())
	err = writeAtomic(path, func(w io.Writer) error {
		return collector.Collect(ctx, outputs, w)
	})
	if err != nil {
		return errors.WithMessagef(err, "error collecting outputs into %s", path)
	}
	r.logger.WithField("path", path).Infof("Collected %d outputs", len(outputs))
	return nil
}
