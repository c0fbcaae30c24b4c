// Package testutil provides deterministic time sources for tests.
package testutil

import (
	"sync"
	"time"
)

// StepClock is a thread-safe deterministic wall clock for tests.
//
// Each reading advances the clock by a fixed step, so code that stamps
// start and finish times produces byte-identical reports across runs.
// Unlike the real clock, StepClock can be reset for test reuse.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type StepClock struct {
	mu    sync.Mutex
	start time.Time
	step  time.Duration
	now   time.Time
}

// NewStepClock creates a clock frozen at start that advances by step
// per reading.
//
// The first call to Now returns start.
func NewStepClock(start time.Time, step time.Duration) *StepClock {
	return &StepClock{start: start, step: step, now: start}
}

// Now returns the current instant and advances the clock by one step.
//
// Monotonic: successive calls return strictly increasing instants for
// any positive step.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Current returns the instant the next Now call will report, without
// advancing the clock.
func (c *StepClock) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Reset rewinds the clock to its start instant.
//
// Used for test reuse. After Reset, the next call to Now returns start.
func (c *StepClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.start
}
