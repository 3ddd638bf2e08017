package runstate

import (
	"sync"
	"time"
)

// Timer is the single cancelable callback handle a tool owns.
//
// All methods must be called with the owner's lock held. Fired callbacks
// acquire that lock themselves, then run only if they are still the armed
// generation; a callback superseded by Schedule, Cancel or Close is dropped.
type Timer struct {
	lock   sync.Locker
	sched  Scheduler
	gen    uint64
	handle Handle
	closed bool
}

// NewTimer creates a Timer whose callbacks serialise on lock.
//
// Precondition: lock and sched must be non-nil.
func NewTimer(lock sync.Locker, sched Scheduler) *Timer {
	return &Timer{lock: lock, sched: sched}
}

// Schedule cancels any pending callback and arms f to run after d.
//
// Postcondition: at most one callback is armed; f runs under the owner's lock
// unless cancelled first. Returns false if the Timer is closed.
func (t *Timer) Schedule(d time.Duration, f func()) bool {
	if t.closed {
		return false
	}
	t.stop()
	t.gen++
	gen := t.gen
	t.handle = t.sched.AfterFunc(d, func() {
		t.lock.Lock()
		defer t.lock.Unlock()
		if t.closed || t.gen != gen {
			return
		}
		t.handle = nil
		f()
	})
	return true
}

// Cancel stops the pending callback, if any. Safe to call repeatedly.
func (t *Timer) Cancel() {
	t.stop()
	t.gen++
}

// Close cancels the pending callback and disarms the Timer permanently.
//
// Postcondition: no callback scheduled through this Timer runs after Close returns.
func (t *Timer) Close() {
	t.Cancel()
	t.closed = true
}

// Armed reports whether a callback is pending.
func (t *Timer) Armed() bool { return t.handle != nil }

// Closed reports whether Close has been called.
func (t *Timer) Closed() bool { return t.closed }

// Now returns the scheduler's current time.
func (t *Timer) Now() time.Time { return t.sched.Now() }

func (t *Timer) stop() {
	if t.handle != nil {
		t.handle.Stop()
		t.handle = nil
	}
}
