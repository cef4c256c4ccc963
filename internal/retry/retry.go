// Package retry wraps an operation in bounded exponential backoff with
// jitter, surfacing the attempt count and total observed delay so a caller
// can report them as telemetry alongside its own metrics.
package retry

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

const (
	// DefaultBase is the first retry's nominal delay before jitter.
	DefaultBase = 20 * time.Millisecond
	// DefaultMultiplier grows the nominal delay between retries.
	DefaultMultiplier = 1.2
	// DefaultMaxDelay caps any single delay after jitter is applied.
	DefaultMaxDelay = 60 * time.Millisecond
	// DefaultMaxAttempts is the total number of tries, i.e. 3 retries.
	DefaultMaxAttempts = 4
)

// Policy configures the backoff schedule. Jitter and Sleep are overridable
// for deterministic tests; both default to a real random jitter and a real
// sleep via NewPolicy.
type Policy struct {
	Base        time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
	MaxAttempts int
	Jitter      func() float64 // returns a value in [1.0, 2.0)
	Sleep       func(time.Duration)
}

// NewPolicy returns the policy described in the design: base 20ms,
// multiplier 1.2, jitter in [1.0, 2.0), max delay 60ms, 4 total attempts.
func NewPolicy() Policy {
	return Policy{
		Base:        DefaultBase,
		Multiplier:  DefaultMultiplier,
		MaxDelay:    DefaultMaxDelay,
		MaxAttempts: DefaultMaxAttempts,
		Jitter:      func() float64 { return 1.0 + rand.Float64() },
		Sleep:       time.Sleep,
	}
}

// Result reports how many attempts a call took and how much time was spent
// sleeping between them. TotalDelay only counts the sleeps that happened
// after a failed attempt and before the next one — the wall-clock delay a
// caller actually observed, not counting anything before the first attempt.
type Result struct {
	Attempts   int
	TotalDelay time.Duration
}

// Do runs op, retrying on any non-nil error per p, until it succeeds or
// attempts are exhausted. On exhaustion it returns the last error, wrapped.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) (Result, error) {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.Jitter == nil {
		p.Jitter = func() float64 { return 1.0 }
	}
	if p.Sleep == nil {
		p.Sleep = time.Sleep
	}

	var result Result
	var lastErr error
	delay := p.Base

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		result.Attempts = attempt

		lastErr = op(ctx)
		if lastErr == nil {
			return result, nil
		}

		if attempt == p.MaxAttempts {
			break
		}

		wait := time.Duration(float64(delay) * p.Jitter())
		if wait > p.MaxDelay {
			wait = p.MaxDelay
		}
		p.Sleep(wait)
		result.TotalDelay += wait

		delay = time.Duration(float64(delay) * p.Multiplier)
	}

	return result, fmt.Errorf("retry: exhausted %d attempts: %w", p.MaxAttempts, lastErr)
}
