package sweepctl

import (
	"context"
)

// Collect merges the outputs of the sweep, if the sweep defines an aggregation.
func (a *App) Collect(ctx context.Context) error {
	s, err := a.sweep()
	if err != nil {
		return err
	}
	err = s.Collect(ctx)
	if !s.HasAggregation() {
		return err
	}
	if metricsErr := a.writeMetrics(s, "collect"); metricsErr != nil {
		a.logger(s).WithError(metricsErr).Warn("Failed to write metrics")
	}
	return err
}
