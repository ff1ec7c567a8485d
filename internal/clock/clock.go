package clock

import (
	"sync"
	"time"
)

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

// NewRealClock returns a Clock backed by time.Now.
func NewRealClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the instant it was set to. Used in tests.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{now: t}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *FixedClock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Business shifts a clock by a fixed offset so that its UTC fields read as
// the wall clock of the business timezone.
type Business struct {
	clock  Clock
	offset time.Duration
}

func NewBusiness(c Clock, offset time.Duration) Business {
	return Business{clock: c, offset: offset}
}

// Now returns the current UTC instant shifted by the offset.
func (b Business) Now() time.Time {
	return b.clock.Now().UTC().Add(b.offset)
}

// DayOf returns the business day containing the instant t. The offset is applied
// before truncating.
func (b Business) DayOf(t time.Time) time.Time {
	n := t.UTC().Add(b.offset)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}
