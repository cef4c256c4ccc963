package scheduler

import (
	"context"
	"time"

	"brokle-loadtest/internal/clock"
)

// Config carries everything the scheduler needs to compute arrival
// timestamps and know when to stop producing them.
type Config struct {
	// Concurrency bounds the queue length at 2x this value.
	Concurrency int
	// ArrivalIntervalMicros is the spacing between successive intended
	// arrivals, derived from the configured item rate and the workload's
	// items-per-iteration.
	ArrivalIntervalMicros int64
	// StartMicros anchors arrival[n] = StartMicros + n*ArrivalIntervalMicros.
	StartMicros int64
	// EndMicros is the overall run deadline; the scheduler stops enqueuing
	// once the next arrival would fall on or after it.
	EndMicros int64
	// TimeoutMicros and MeasurementStartMicros are passed through to the Queue.
	TimeoutMicros          int64
	MeasurementStartMicros int64
}

// Scheduler drives a Queue: it fills the queue up to 2x concurrency ahead
// of time and prunes expired entries on every cycle, sleeping half an
// arrival interval between cycles.
type Scheduler struct {
	cfg         Config
	clock       clock.Clock
	queue       *Queue
	nextArrival int64
}

// New constructs a Scheduler and its backing Queue.
func New(clk clock.Clock, cfg Config) *Scheduler {
	return &Scheduler{
		cfg:         cfg,
		clock:       clk,
		queue:       NewQueue(cfg.TimeoutMicros, cfg.MeasurementStartMicros),
		nextArrival: cfg.StartMicros,
	}
}

// Queue returns the shared work queue workers consume from.
func (s *Scheduler) Queue() *Queue {
	return s.queue
}

// Run fills and prunes the queue until the run's end time, per the loop
// invariant in the design: prune expired arrivals from the head, top the
// queue back up to 2x concurrency, then sleep half an arrival interval.
// It returns once now >= EndMicros; workers continue draining afterward.
func (s *Scheduler) Run(ctx context.Context) {
	sleepInterval := time.Duration(s.cfg.ArrivalIntervalMicros/2) * time.Microsecond

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		now := s.clock.NowMicros()
		if now >= s.cfg.EndMicros {
			return
		}

		s.queue.PruneExpired(now)

		for s.queue.Len() < 2*s.cfg.Concurrency && s.nextArrival < s.cfg.EndMicros {
			s.queue.Push(s.nextArrival)
			s.nextArrival += s.cfg.ArrivalIntervalMicros
		}

		s.clock.Sleep(sleepInterval)
	}
}
