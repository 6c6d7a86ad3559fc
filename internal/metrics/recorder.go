// Package metrics records run outcomes as Prometheus metrics and writes them
// in the text exposition format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zinc-sig/ftlaunch/internal/outcome"
)

// Recorder owns a private registry so several recorders can coexist in tests.
type Recorder struct {
	registry *prometheus.Registry

	runsTotal         *prometheus.CounterVec
	runDuration       *prometheus.HistogramVec
	reconcileFailures prometheus.Counter
	emissionFailures  prometheus.Counter
}

func NewRecorder() *Recorder {
	return NewRecorderWithRegistry(prometheus.NewRegistry())
}

func NewRecorderWithRegistry(registry *prometheus.Registry) *Recorder {
	r := &Recorder{
		registry: registry,
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ftlaunch_runs_total",
				Help: "Completed test runs by type and final state",
			},
			[]string{"type", "state"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ftlaunch_run_duration_seconds",
				Help:    "Wall-clock duration of test runs",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
			},
			[]string{"type"},
		),
		reconcileFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ftlaunch_reconcile_failures_total",
			Help: "Report folders that could not be flattened",
		}),
		emissionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ftlaunch_emission_failures_total",
			Help: "Failed attempts to write the JUnit report",
		}),
	}

	registry.MustRegister(r.runsTotal, r.runDuration, r.reconcileFailures, r.emissionFailures)
	return r
}

// ObserveRun records a finished run.
func (r *Recorder) ObserveRun(run *outcome.RunOutcome) {
	r.runsTotal.WithLabelValues(string(run.TestType), run.TestState.String()).Inc()
	r.runDuration.WithLabelValues(string(run.TestType)).Observe(run.Duration.Seconds())
}

func (r *Recorder) ReconcileFailed() {
	r.reconcileFailures.Inc()
}

func (r *Recorder) EmissionFailed() {
	r.emissionFailures.Inc()
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteFile writes all metrics to path in the text exposition format.
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
