package time

import (
	"testing"
	tm "time"

	"github.com/stretchr/testify/assert"
)

func TestSystemClockMillisecondPrecision(t *testing.T) {
	now := NewClock().Now()

	assert.Equal(t, tm.UTC, now.Location())
	assert.Zero(t, now.Nanosecond()%int(tm.Millisecond))
}

func TestManualClock(t *testing.T) {
	start := tm.Date(2024, 3, 1, 9, 0, 0, 0, tm.UTC)
	clock := NewManualClock(start)

	assert.Equal(t, start, clock.Now())

	next := clock.Advance(90 * tm.Minute)
	assert.Equal(t, start.Add(90*tm.Minute), next)
	assert.Equal(t, next, clock.Now())

	clock.Set(start)
	assert.Equal(t, start, clock.Now())
}
