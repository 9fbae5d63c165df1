package time

import (
	"sync"
	"time"
)

// clock supplies the current instant to everything that compares against a due time
// registry callers and the status projector never call time.Now directly
type Clock interface {
	Now() time.Time
}

// wall clock in UTC, truncated to millisecond precision
// truncation also strips the monotonic reading so instants compare by wall time only
type SystemClock struct{}

func NewClock() SystemClock {
	return SystemClock{}
}

func (SystemClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// ManualClock only moves when told to
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// moves the clock forward by d and returns the new instant
func (c *ManualClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}
