package pupilrec

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hupe1980/pupilrec/migrate"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    steps    *prometheus.CounterVec
//	    duration prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordStep(step migrate.StepID, status migrate.Status, d time.Duration) {
//	    p.steps.WithLabelValues(string(step), string(status)).Inc()
//	    p.duration.Observe(d.Seconds())
//	}
type MetricsCollector interface {
	// RecordStep is called after each attempted migration step.
	RecordStep(step migrate.StepID, status migrate.Status, duration time.Duration)

	// RecordRun is called after each migration run. steps is the number of
	// attempted steps, err is nil if the run completed.
	RecordRun(steps int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordStep(migrate.StepID, migrate.Status, time.Duration) {}
func (NoopMetricsCollector) RecordRun(int, time.Duration, error)                      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	StepsDone      atomic.Int64
	StepsSkipped   atomic.Int64
	StepsFailed    atomic.Int64
	StepTotalNanos atomic.Int64
	RunCount       atomic.Int64
	RunErrors      atomic.Int64
	RunTotalNanos  atomic.Int64
}

// RecordStep implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStep(_ migrate.StepID, status migrate.Status, duration time.Duration) {
	switch status {
	case migrate.StatusDone:
		b.StepsDone.Add(1)
	case migrate.StatusSkipped:
		b.StepsSkipped.Add(1)
	case migrate.StatusFailed:
		b.StepsFailed.Add(1)
	}
	b.StepTotalNanos.Add(duration.Nanoseconds())
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(_ int, duration time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RunErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		StepsDone:    b.StepsDone.Load(),
		StepsSkipped: b.StepsSkipped.Load(),
		StepsFailed:  b.StepsFailed.Load(),
		StepAvgNanos: avg(b.StepTotalNanos.Load(), b.StepsDone.Load()+b.StepsSkipped.Load()+b.StepsFailed.Load()),
		RunCount:     b.RunCount.Load(),
		RunErrors:    b.RunErrors.Load(),
		RunAvgNanos:  avg(b.RunTotalNanos.Load(), b.RunCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	StepsDone    int64
	StepsSkipped int64
	StepsFailed  int64
	StepAvgNanos int64
	RunCount     int64
	RunErrors    int64
	RunAvgNanos  int64
}

// stepObserver forwards step results to the logger and metrics collector.
type stepObserver struct {
	logger  *Logger
	metrics MetricsCollector
}

func (o stepObserver) StepFinished(ctx context.Context, res migrate.StepResult) error {
	o.logger.LogStep(ctx, res)
	o.metrics.RecordStep(res.Step, res.Status, res.Duration)
	return nil
}
