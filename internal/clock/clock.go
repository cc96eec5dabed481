// Package clock provides the monotonic timestamps that order the action queue.
package clock

import (
	"sync"
	"time"
)

// Monotonic выдает строго возрастающие временные метки в наносекундах.
// Метка близка к реальному времени, но никогда не повторяется и не уходит назад,
// даже если системные часы перевели назад или два действия пришли в одну наносекунду.
type Monotonic struct {
	now  func() time.Time
	last int64
	mu   sync.Mutex
}

// New creates a clock backed by time.Now.
func New() *Monotonic {
	return &Monotonic{now: time.Now}
}

// NewWithSource creates a clock backed by a custom time source. Used in tests.
func NewWithSource(now func() time.Time) *Monotonic {
	return &Monotonic{now: now}
}

// Tick returns the next timestamp: max(now, last+1).
func (c *Monotonic) Tick() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts := c.now().UnixNano()
	if ts <= c.last {
		ts = c.last + 1
	}
	c.last = ts
	return ts
}

// Observe moves the clock past a timestamp seen elsewhere, e.g. the newest
// action restored from storage after a restart.
func (c *Monotonic) Observe(ts int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ts > c.last {
		c.last = ts
	}
}

// Last returns the most recent timestamp without advancing the clock.
func (c *Monotonic) Last() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.last
}
