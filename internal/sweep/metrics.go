package sweep

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const MetricsPrefix = "sweep_"

// Metrics records job outcomes of one sweep. Each sweep owns its registry so that an
// array task can write exactly its own metrics to a node-exporter textfile.
type Metrics struct {
	registry        *prometheus.Registry
	jobDuration     *prometheus.HistogramVec
	jobOutcomes     *prometheus.CounterVec
	collectedOutput *prometheus.GaugeVec
}

func NewMetrics(folder string) *Metrics {
	labels := prometheus.Labels{"sweep": folder}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		jobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        MetricsPrefix + "job_duration_seconds",
				Help:        "Time taken to execute and persist one job",
				Buckets:     prometheus.ExponentialBuckets(0.01, 4, 12),
				ConstLabels: labels,
			},
			[]string{"outcome"},
		),
		jobOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        MetricsPrefix + "jobs_total",
				Help:        "Number of jobs executed, by outcome",
				ConstLabels: labels,
			},
			[]string{"outcome"},
		),
		collectedOutput: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name:        MetricsPrefix + "collected_outputs",
				Help:        "Number of job outputs found by the last collection, by state",
				ConstLabels: labels,
			},
			[]string{"state"},
		),
	}
	m.registry.MustRegister(m.jobDuration, m.jobOutcomes, m.collectedOutput)
	return m
}

const (
	outcomeSucceeded = "succeeded"
	outcomeFailed    = "failed"
	outcomeSkipped   = "skipped"
)

func (m *Metrics) recordJob(outcome string, duration time.Duration) {
	m.jobOutcomes.WithLabelValues(outcome).Inc()
	if outcome != outcomeSkipped {
		m.jobDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	}
}

func (m *Metrics) recordCollect(present int, missing int) {
	m.collectedOutput.WithLabelValues("present").Set(float64(present))
	m.collectedOutput.WithLabelValues("missing").Set(float64(missing))
}

// Registry exposes the underlying registry, e.g., for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteToTextfile writes all metrics in the text exposition format, atomically, to path.
func (m *Metrics) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Wrapf(err, "error writing metrics to %s", path)
	}
	return nil
}
