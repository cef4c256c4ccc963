package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"brokle-loadtest/internal/clock"
)

func TestScheduler_FillsQueueToBoundAndStopsAtEnd(t *testing.T) {
	fc := clock.NewFake(0)
	cfg := Config{
		Concurrency:            4,
		ArrivalIntervalMicros:  1000, // 1ms apart
		StartMicros:            0,
		EndMicros:              20_000, // 20ms run
		TimeoutMicros:          5_000,
		MeasurementStartMicros: 0,
	}
	s := New(fc, cfg)

	s.Run(context.Background())

	assert.GreaterOrEqual(t, fc.NowMicros(), cfg.EndMicros)
	assert.LessOrEqual(t, s.Queue().Len(), 2*cfg.Concurrency)
}

func TestQueue_PruneExpiredCountsMissedOnlyPostMeasurement(t *testing.T) {
	q := NewQueue(1000, 5000) // 1ms TTL, measurement starts at 5ms

	q.Push(100)  // pre-measurement arrival, will expire
	q.Push(6000) // post-measurement arrival, will expire

	q.PruneExpired(10_000) // well past both deadlines

	assert.EqualValues(t, 1, q.MissedIterations(), "only the post-measurement arrival should count as missed")
	assert.Equal(t, 1, q.MissedLatencyHistogram().Count())
	assert.EqualValues(t, 1000, q.MissedLatencyHistogram().Max())
}

func TestQueue_PopDrainsInArrivalOrder(t *testing.T) {
	q := NewQueue(1_000_000, 0)
	q.Push(10)
	q.Push(20)
	q.Push(30)

	a, ok := q.Pop()
	assert.True(t, ok)
	assert.EqualValues(t, 10, a)

	a, ok = q.Pop()
	assert.True(t, ok)
	assert.EqualValues(t, 20, a)

	assert.Equal(t, 1, q.Len())
}

func TestQueue_PopOnEmptyReturnsFalse(t *testing.T) {
	q := NewQueue(1000, 0)
	_, ok := q.Pop()
	assert.False(t, ok)
}

func TestScheduler_NeverExceedsBoundEvenWhenStarved(t *testing.T) {
	// A very high rate with no workers draining the queue must still respect
	// the 2x concurrency bound once the scheduler has had time to run.
	fc := clock.NewFake(0)
	cfg := Config{
		Concurrency:            2,
		ArrivalIntervalMicros:  10, // very fast arrivals
		StartMicros:            0,
		EndMicros:              1_000_000,
		TimeoutMicros:          10_000_000, // long TTL so nothing prunes
		MeasurementStartMicros: 0,
	}
	s := New(fc, cfg)
	// Fake clock's Sleep advances time deterministically, so Run terminates.
	s.Run(context.Background())
	assert.LessOrEqual(t, s.Queue().Len(), 2*cfg.Concurrency)
}
