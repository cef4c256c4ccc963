package driver

import "time"

// Config is the plain typed record the driver is constructed from. It is
// immutable after construction: the driver reads no environment variables
// and parses no command line; a binary entrypoint is responsible for
// building one of these from whatever configuration source it uses.
type Config struct {
	// Concurrency is the number of parallel worker tasks. Must be >= 1.
	Concurrency int
	// TargetRequestRatePerSecond is the intended steady-state rate,
	// measured in items (not iterations). Zero short-circuits the run:
	// setup and teardown still happen, but no iteration is scheduled.
	TargetRequestRatePerSecond float64
	// Duration is the overall test duration, including warmup.
	Duration time.Duration
	// TimeoutValue is the latency credited to a missed-in-queue iteration
	// and the queue's in-queue TTL. Zero means "default to worker cycle
	// time", computed once ItemsPerIteration is known.
	TimeoutValue time.Duration
	// SkipWarmup, if set, runs with no warmup phase at all.
	SkipWarmup bool
}

// derived holds the values computed from a Config and the workload's
// ItemsPerIteration, per spec.md §3's "Derived" row.
type derived struct {
	itemsPerIteration   int
	workerCycleTime     time.Duration
	arrivalInterval     time.Duration
	warmup              time.Duration
	timeoutValue        time.Duration
	measurementDuration time.Duration
}

func computeDerived(cfg Config, itemsPerIteration int) derived {
	d := derived{itemsPerIteration: itemsPerIteration}

	if cfg.TargetRequestRatePerSecond > 0 {
		iterationsPerSecond := cfg.TargetRequestRatePerSecond / float64(itemsPerIteration)
		d.workerCycleTime = time.Duration(1000 * float64(cfg.Concurrency) / iterationsPerSecond * float64(time.Millisecond))
		d.arrivalInterval = time.Duration(1000 / iterationsPerSecond * float64(time.Millisecond))
	}

	if cfg.SkipWarmup {
		d.warmup = 0
	} else {
		tenth := cfg.Duration / 10
		cap := 10 * time.Second
		if tenth < cap {
			d.warmup = tenth
		} else {
			d.warmup = cap
		}
	}

	d.timeoutValue = cfg.TimeoutValue
	if d.timeoutValue <= 0 {
		d.timeoutValue = d.workerCycleTime
	}

	d.measurementDuration = cfg.Duration - d.warmup
	if d.measurementDuration < 0 {
		d.measurementDuration = 0
	}

	return d
}
