// Package feedback delivers fire-and-forget cue notifications (a click when a
// run starts, a chime when its result lands) to pluggable outputs.
package feedback

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Signal names a cue.
type Signal string

const (
	// Action fires when the user triggers a mutating action.
	Action Signal = "action"
	// Result fires when a run's outcome is revealed.
	Result Signal = "result"
)

// Event is one cue emitted by a tool.
type Event struct {
	Tool   string
	Signal Signal
}

// Sink receives events. Implementations must not block.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Emit calls f(ev).
func (f SinkFunc) Emit(ev Event) { f(ev) }

// Nop discards every event.
var Nop Sink = SinkFunc(func(Event) {})

// NewZapSink logs each event at debug level.
func NewZapSink(logger *zap.Logger) Sink {
	return SinkFunc(func(ev Event) {
		logger.Debug("feedback",
			zap.String("tool", ev.Tool),
			zap.String("signal", string(ev.Signal)),
		)
	})
}

// DefaultBuffer is the dispatcher queue depth used when none is given.
const DefaultBuffer = 32

// Dispatcher fans events out to its outputs on a background goroutine.
//
// Emit never blocks: when the queue is full or the dispatcher is muted or
// closed, the event is dropped.
type Dispatcher struct {
	outputs []Sink
	queue   chan Event
	muted   atomic.Bool
	dropped atomic.Uint64

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewDispatcher starts a dispatcher delivering to outputs in order.
//
// Precondition: buffer >= 0; 0 selects DefaultBuffer.
// Postcondition: Close must be called to release the delivery goroutine.
func NewDispatcher(buffer int, outputs ...Sink) *Dispatcher {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	d := &Dispatcher{
		outputs: outputs,
		queue:   make(chan Event, buffer),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for ev := range d.queue {
		for _, out := range d.outputs {
			out.Emit(ev)
		}
	}
}

// Emit enqueues ev without blocking.
func (d *Dispatcher) Emit(ev Event) {
	if d.muted.Load() {
		return
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	select {
	case d.queue <- ev:
	default:
		d.dropped.Add(1)
	}
}

// SetMuted toggles delivery.
func (d *Dispatcher) SetMuted(muted bool) { d.muted.Store(muted) }

// Muted reports whether delivery is suppressed.
func (d *Dispatcher) Muted() bool { return d.muted.Load() }

// Dropped returns the number of events discarded because the queue was full.
func (d *Dispatcher) Dropped() uint64 { return d.dropped.Load() }

// Close stops accepting events and waits for queued ones to drain.
// Safe to call more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}
