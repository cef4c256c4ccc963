// Package driver wires the Arrival Scheduler, Worker Pool, and Metrics
// Aggregator into the open-loop load-test driver described by the
// design: construct from a plain typed Config and a Workload, run to
// completion, get back a Report. The driver never rethrows from inside the
// worker loop; the only two ways Run can fail are setup failure and
// teardown failure.
package driver

import (
	"context"
	"sync"
	"time"

	"brokle-loadtest/internal/clock"
	"brokle-loadtest/internal/metrics"
	"brokle-loadtest/internal/pool"
	"brokle-loadtest/internal/report"
	"brokle-loadtest/internal/scheduler"
	"brokle-loadtest/internal/workload"
	apperrors "brokle-loadtest/pkg/errors"
)

// Driver runs one Config against one Workload.
type Driver struct {
	cfg     Config
	work    workload.Workload
	clock   clock.Clock
	metrics *metrics.Metrics
}

// New constructs a Driver with a production Monotonic clock.
func New(cfg Config, work workload.Workload) *Driver {
	return &Driver{cfg: cfg, work: work, clock: clock.New()}
}

// NewWithClock constructs a Driver against an injected Clock, for
// deterministic tests.
func NewWithClock(cfg Config, work workload.Workload, clk clock.Clock) *Driver {
	return &Driver{cfg: cfg, work: work, clock: clk}
}

// WithMetrics attaches a Prometheus collector set that Run updates
// alongside the returned Report: final counters on completion, and a live
// queue-depth gauge polled while the scheduler runs.
func (d *Driver) WithMetrics(m *metrics.Metrics) *Driver {
	d.metrics = m
	return d
}

// Run executes setup, the scheduled measurement run (unless the target
// rate is zero), and teardown, returning the aggregated Report. Setup and
// teardown failures are the only errors Run returns; every other outcome
// is folded into the Report instead.
func (d *Driver) Run(ctx context.Context) (report.Report, error) {
	if err := d.work.Setup(ctx); err != nil {
		return report.Report{}, apperrors.NewSetupError("workload setup failed", err)
	}

	rep := d.runMeasured(ctx)

	if err := d.work.Teardown(ctx); err != nil {
		return report.Report{}, apperrors.NewTeardownError("workload teardown failed", err)
	}

	return rep, nil
}

func (d *Driver) runMeasured(ctx context.Context) report.Report {
	itemsPerIteration := d.work.ItemsPerIteration()
	derived := computeDerived(d.cfg, itemsPerIteration)

	cfgEcho := report.Configuration{
		TargetArrivalRate:     d.cfg.TargetRequestRatePerSecond,
		Concurrency:           d.cfg.Concurrency,
		OverallDurationMillis: float64(d.cfg.Duration.Milliseconds()),
		WarmupMillis:          float64(derived.warmup.Milliseconds()),
		RequestTimeoutMillis:  float64(derived.timeoutValue.Milliseconds()),
	}

	if d.cfg.TargetRequestRatePerSecond <= 0 {
		// Seed scenario 1: zero-rate short-circuit. No iteration is ever
		// scheduled; the report reflects a run that did nothing but
		// setup/teardown.
		return report.Aggregate(report.Input{
			Configuration:          cfgEcho,
			TestRunData:            d.work.TestRunData(),
			WorkerResults:          nil,
			MissedIterations:       0,
			MissedLatencyHistogram: nil,
			WorkerCycleTimeMillis:  float64(derived.workerCycleTime.Milliseconds()),
			MeasurementSeconds:     0,
		})
	}

	startMicros := d.clock.NowMicros()
	endMicros := startMicros + d.cfg.Duration.Microseconds()
	measurementStartMicros := startMicros + derived.warmup.Microseconds()

	sched := scheduler.New(d.clock, scheduler.Config{
		Concurrency:            d.cfg.Concurrency,
		ArrivalIntervalMicros:  derived.arrivalInterval.Microseconds(),
		StartMicros:            startMicros,
		EndMicros:              endMicros,
		TimeoutMicros:          derived.timeoutValue.Microseconds(),
		MeasurementStartMicros: measurementStartMicros,
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sched.Run(ctx)
	}()

	pollDone := make(chan struct{})
	if d.metrics != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.pollQueueDepth(ctx, sched.Queue(), pollDone)
		}()
	}

	workerPool := pool.New(d.cfg.Concurrency, func(id int) *pool.Worker {
		return &pool.Worker{
			ID:                     id,
			Clock:                  d.clock,
			Queue:                  sched.Queue(),
			Work:                   d.work,
			EndMicros:              endMicros,
			MeasurementStartMicros: measurementStartMicros,
			ItemsPerIteration:      itemsPerIteration,
		}
	})
	results := workerPool.Run(ctx)
	close(pollDone)

	wg.Wait()

	measurementSeconds := derived.measurementDuration.Seconds()

	rep := report.Aggregate(report.Input{
		Configuration:          cfgEcho,
		TestRunData:            d.work.TestRunData(),
		WorkerResults:          results,
		MissedIterations:       sched.Queue().MissedIterations(),
		MissedLatencyHistogram: sched.Queue().MissedLatencyHistogram(),
		WorkerCycleTimeMillis:  float64(derived.workerCycleTime.Milliseconds()),
		MeasurementSeconds:     measurementSeconds,
	})

	d.metrics.ObserveCounters(rep.CompletedIterations, rep.ErrorIterations, rep.MissedIterations)

	return rep
}

// pollQueueDepth periodically publishes the scheduler queue's current
// length to the attached metrics gauge until done is closed.
func (d *Driver) pollQueueDepth(ctx context.Context, q *scheduler.Queue, done <-chan struct{}) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			d.metrics.SetQueueDepth(q.Len())
		}
	}
}
