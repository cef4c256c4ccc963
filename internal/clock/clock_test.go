package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonotonic_NowMicrosIncreases(t *testing.T) {
	c := New()
	first := c.NowMicros()
	time.Sleep(2 * time.Millisecond)
	second := c.NowMicros()
	assert.Greater(t, second, first)
}

func TestMonotonic_SleepSubMillisYields(t *testing.T) {
	c := New()
	start := time.Now()
	c.Sleep(100 * time.Microsecond)
	assert.Less(t, time.Since(start), 5*time.Millisecond)
}

func TestFake_AdvanceIsDeterministic(t *testing.T) {
	f := NewFake(1000)
	assert.EqualValues(t, 1000, f.NowMicros())

	f.Sleep(500 * time.Microsecond)
	assert.EqualValues(t, 1500, f.NowMicros())

	f.Advance(2 * time.Millisecond)
	assert.EqualValues(t, 3500, f.NowMicros())

	f.Set(42)
	assert.EqualValues(t, 42, f.NowMicros())
}
