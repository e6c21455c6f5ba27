package sweepctl

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/avast/retry-go"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/armadaproject/sweeprun/internal/common/logging"
	"github.com/armadaproject/sweeprun/internal/slurm"
	"github.com/armadaproject/sweeprun/internal/sweep"
)

// ResolveIndex returns the index of the job to run. In order of precedence, it is taken from
// args, from indexFlag if set, or from the Slurm array task id.
func (a *App) ResolveIndex(args []string, indexFlag *int) (int, error) {
	if len(args) > 0 {
		return parseIndex("index", args[0])
	}
	if indexFlag != nil {
		return *indexFlag, nil
	}
	if taskId := a.Getenv(slurm.ArrayTaskIdEnv); taskId != "" {
		return parseIndex(slurm.ArrayTaskIdEnv, taskId)
	}
	return 0, errors.WithStack(&sweep.ErrConfiguration{
		Name:    "index",
		Message: fmt.Sprintf("no job index given; pass it as an argument, with --index, or via %s", slurm.ArrayTaskIdEnv),
	})
}

func parseIndex(name string, s string) (int, error) {
	index, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.WithStack(&sweep.ErrConfiguration{Name: name, Value: s, Message: "not an integer"})
	}
	return index, nil
}

// Run executes the job at index.
func (a *App) Run(ctx context.Context, index int) error {
	s, err := a.sweep()
	if err != nil {
		return err
	}
	logger := a.logger(s).WithField("index", index)
	err = s.Execute(ctx, index)
	var outOfRange *sweep.ErrIndexOutOfRange
	if errors.As(err, &outOfRange) {
		return err
	}
	if err != nil {
		logging.WithStacktrace(logger, err).Debug("Job failed")
	}
	if metricsErr := a.writeMetrics(s, strconv.Itoa(index)); metricsErr != nil {
		logger.WithError(metricsErr).Warn("Failed to write metrics")
	}
	if err != nil {
		return err
	}
	location, err := s.OutputLocation(index)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Out, location)
	return nil
}

// RunAll executes the jobs of the sweep in this process, running up to parallelism jobs at once.
// If pendingOnly is true, only jobs without output are run. A failed job does not stop the
// others; all failures are returned together. Once ctx is cancelled no further jobs are started
// and the context's error is returned.
func (a *App) RunAll(ctx context.Context, parallelism int, pendingOnly bool) error {
	if parallelism < 1 {
		return errors.WithStack(&sweep.ErrConfiguration{Name: "parallelism", Value: parallelism, Message: "must be positive"})
	}
	s, err := a.sweep()
	if err != nil {
		return err
	}
	logger := a.logger(s)

	indices := make([]int, s.Len())
	for i := range indices {
		indices[i] = i
	}
	if pendingOnly {
		status, err := s.Status()
		if err != nil {
			return err
		}
		indices = status.Missing
	}
	logger.Infof("Running %d of %d jobs with parallelism %d", len(indices), s.Len(), parallelism)

	var mu sync.Mutex
	var result *multierror.Error
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for _, index := range indices {
		if gctx.Err() != nil {
			break
		}
		index := index
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return errors.WithStack(err)
			}
			if err := s.Execute(gctx, index); err != nil {
				if gctx.Err() != nil {
					return errors.WithStack(gctx.Err())
				}
				logging.WithStacktrace(logger.WithField("index", index), err).Error("Job failed")
				mu.Lock()
				result = multierror.Append(result, err)
				mu.Unlock()
			}
			return nil
		})
	}
	err = g.Wait()
	if err == nil && ctx.Err() != nil {
		err = errors.WithStack(ctx.Err())
	}
	if err != nil {
		logger.WithError(err).Warn("Run interrupted; remaining jobs were not started")
		return err
	}

	if err := a.writeMetrics(s, "all"); err != nil {
		logger.WithError(err).Warn("Failed to write metrics")
	}
	numFailed := 0
	if result != nil {
		numFailed = len(result.Errors)
	}
	fmt.Fprintf(a.Out, "Ran %d jobs: %d succeeded, %d failed\n", len(indices), len(indices)-numFailed, numFailed)
	return result.ErrorOrNil()
}

// writeMetrics writes the sweep's metrics to the configured textfile directory, if any.
// Each process writes its own file, named after the sweep folder and suffix.
func (a *App) writeMetrics(s sweep.Sweep, suffix string) error {
	dir := a.Params.Config.Metrics.TextfileDir
	if dir == "" {
		return nil
	}
	name := fmt.Sprintf("%s%s_%s.prom", sweep.MetricsPrefix, filepath.Base(s.Folder()), suffix)
	// Textfile directories are often on network filesystems.
	return retry.Do(
		func() error { return s.Metrics().WriteToTextfile(filepath.Join(dir, name)) },
		retry.Attempts(3),
		retry.LastErrorOnly(true),
	)
}
