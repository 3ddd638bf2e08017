package runstate

import (
	"sort"
	"sync"
	"time"
)

// Handle is a scheduled callback that can be stopped.
type Handle interface {
	// Stop prevents the callback from firing if it has not fired yet.
	Stop() bool
}

// Scheduler schedules one-shot callbacks and reports the current time.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Handle
	Now() time.Time
}

// RealScheduler schedules on the wall clock via time.AfterFunc.
// Callbacks run on their own goroutine.
type RealScheduler struct{}

// AfterFunc calls f after d on a separate goroutine.
func (RealScheduler) AfterFunc(d time.Duration, f func()) Handle {
	return time.AfterFunc(d, f)
}

// Now returns time.Now().
func (RealScheduler) Now() time.Time { return time.Now() }

// ManualClock is a virtual-time Scheduler. Callbacks fire only from Advance,
// synchronously on the caller's goroutine, in due-time order (ties by
// scheduling order).
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	seq     uint64
	pending []*manualTimer
}

type manualTimer struct {
	clock   *ManualClock
	due     time.Time
	seq     uint64
	f       func()
	stopped bool
	fired   bool
}

// NewManualClock returns a ManualClock starting at a fixed instant.
func NewManualClock() *ManualClock {
	return &ManualClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the virtual time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc registers f to run once virtual time reaches Now()+d.
func (c *ManualClock) AfterFunc(d time.Duration, f func()) Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &manualTimer{clock: c, due: c.now.Add(d), seq: c.seq, f: f}
	c.pending = append(c.pending, t)
	return t
}

// Stop cancels the timer; it reports whether the call prevented the callback.
func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves virtual time forward by d, firing every callback that becomes
// due, including callbacks scheduled by callbacks within the window.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		next := c.popDue(target)
		if next == nil {
			break
		}
		next.f()
	}

	c.mu.Lock()
	c.now = target
	c.mu.Unlock()
}

// Pending returns the number of armed callbacks.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.pending {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (c *ManualClock) popDue(target time.Time) *manualTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	live := c.pending[:0]
	for _, t := range c.pending {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	c.pending = live
	sort.SliceStable(c.pending, func(i, j int) bool {
		if c.pending[i].due.Equal(c.pending[j].due) {
			return c.pending[i].seq < c.pending[j].seq
		}
		return c.pending[i].due.Before(c.pending[j].due)
	})

	if len(c.pending) == 0 || c.pending[0].due.After(target) {
		return nil
	}
	t := c.pending[0]
	t.fired = true
	if t.due.After(c.now) {
		c.now = t.due
	}
	return t
}
