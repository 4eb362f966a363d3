package testsupport

import (
	"sync"
	"time"
)

// Clock is a deterministic time source that advances one second per call.
type Clock struct {
	mu   sync.Mutex
	next time.Time
}

// NewClock starts a clock at a fixed UTC instant.
func NewClock() *Clock {
	return &Clock{next: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)}
}

// Now returns the current instant and advances the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.next
	c.next = c.next.Add(time.Second)
	return now
}
