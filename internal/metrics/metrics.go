// Package metrics exposes a small Prometheus registry alongside the
// in-report histogram statistics: counters for completed/error/missed
// iterations and a gauge for live queue depth. This is additive
// observability in the teacher's manner — it never replaces the report,
// which remains the source of truth for percentiles and ratios.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus collectors a driver run updates.
type Metrics struct {
	Completed  prometheus.Counter
	Errors     prometheus.Counter
	Missed     prometheus.Counter
	QueueDepth prometheus.Gauge
}

// New registers a fresh set of collectors against reg and returns them. Pass
// a prometheus.NewRegistry() for test isolation, or prometheus.DefaultRegisterer
// to expose them on the process-wide /metrics endpoint.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Completed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loadtest_completed_iterations_total",
			Help: "Iterations that completed successfully during measurement.",
		}),
		Errors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loadtest_error_iterations_total",
			Help: "Iterations whose workload call failed during measurement.",
		}),
		Missed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loadtest_missed_iterations_total",
			Help: "Arrivals that expired before any worker claimed them.",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loadtest_queue_depth",
			Help: "Current length of the arrival scheduler's work queue.",
		}),
	}

	reg.MustRegister(m.Completed, m.Errors, m.Missed, m.QueueDepth)
	return m
}

// ObserveCounters adds final run counts to the cumulative counters. A run
// reports its totals once at teardown, not incrementally, so this is a
// single Add per counter rather than a running update during the loop.
func (m *Metrics) ObserveCounters(completed, errors, missed int64) {
	if m == nil {
		return
	}
	m.Completed.Add(float64(completed))
	m.Errors.Add(float64(errors))
	m.Missed.Add(float64(missed))
}

// SetQueueDepth records a point-in-time queue length, for a caller polling
// the scheduler's Queue during a run.
func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(n))
}
