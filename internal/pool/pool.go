// Package pool implements the fixed-size worker pool that claims scheduled
// arrivals, runs the workload's iteration, and times it. Each worker owns
// its own histograms and counters; nothing here is written concurrently by
// more than one goroutine, so no locking is needed at the record site.
package pool

import (
	"context"
	"time"

	"brokle-loadtest/internal/clock"
	"brokle-loadtest/internal/histogram"
	"brokle-loadtest/internal/scheduler"
	"brokle-loadtest/internal/workload"
)

// Result is one worker's contribution to the run: its own latency
// distributions plus the counters and time-accounting it is solely
// responsible for.
type Result struct {
	Completed  int64
	Errors     int64
	TotalItems int64

	RunTimeMicros        int64
	BackoffMicros        int64
	BehindScheduleMicros int64

	RequestLatency *histogram.Histogram
	ServiceTime    *histogram.Histogram
}

// Worker executes the per-iteration loop described in the design: claim the
// next arrival, wait out any positive backoff, run the iteration, and
// record outcomes only for arrivals at or after the measurement cutoff.
type Worker struct {
	ID    int
	Clock clock.Clock
	Queue *scheduler.Queue
	Work  workload.Workload

	EndMicros              int64
	MeasurementStartMicros int64
	ItemsPerIteration      int
}

// Run executes the worker loop until the run has ended and the queue holds
// no more live (non-expired) entries, returning this worker's Result.
func (w *Worker) Run(ctx context.Context) Result {
	res := Result{
		RequestLatency: histogram.New(),
		ServiceTime:    histogram.New(),
	}

	for {
		select {
		case <-ctx.Done():
			return res
		default:
		}

		now := w.Clock.NowMicros()
		w.Queue.PruneExpired(now)

		arrival, ok := w.Queue.Pop()
		if !ok {
			if now >= w.EndMicros && w.Queue.Len() == 0 {
				return res
			}
			w.Clock.Sleep(0)
			continue
		}

		w.waitForArrival(arrival, &res)

		requestStart := w.Clock.NowMicros()
		err := w.Work.PerformIteration(ctx)
		completion := w.Clock.NowMicros()

		if arrival < w.MeasurementStartMicros {
			// Warmup: timing still runs, but nothing is counted and
			// iteration failures are swallowed.
			continue
		}

		res.RequestLatency.Record(completion - arrival)
		res.ServiceTime.Record(completion - requestStart)

		if err != nil {
			res.Errors++
			continue
		}
		res.Completed++
		res.TotalItems += int64(w.ItemsPerIteration)
		res.RunTimeMicros += completion - requestStart
	}
}

// waitForArrival accounts backoff/behind-schedule time and, for a future
// arrival, parks then yield-spins until the intended start has arrived.
func (w *Worker) waitForArrival(arrival int64, res *Result) {
	now := w.Clock.NowMicros()
	backoff := arrival - now
	if backoff <= 0 {
		res.BehindScheduleMicros += -backoff
		return
	}

	res.BackoffMicros += backoff
	if ms := backoff / 1000; ms > 0 {
		w.Clock.Sleep(time.Duration(ms) * time.Millisecond)
	}
	for w.Clock.NowMicros() < arrival {
		w.Clock.Sleep(0)
	}
}
