package tools_test

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/chance/internal/chance/runstate"
	"github.com/cory-johannsen/chance/internal/chance/sample"
	"github.com/cory-johannsen/chance/internal/chance/tools"
	"github.com/cory-johannsen/chance/internal/config"
	"github.com/cory-johannsen/chance/internal/feedback"
)

// recordingSource wraps a seeded source and remembers every Int64N result.
type recordingSource struct {
	mu   sync.Mutex
	src  sample.Source
	ints []int64
}

func (r *recordingSource) Int64N(n int64) int64 {
	v := r.src.Int64N(n)
	r.mu.Lock()
	r.ints = append(r.ints, v)
	r.mu.Unlock()
	return v
}

func (r *recordingSource) Float64() float64 { return r.src.Float64() }

func (r *recordingSource) mark() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ints)
}

func (r *recordingSource) at(i int) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ints[i]
}

// harness wires a tool to virtual time and records everything it emits.
type harness struct {
	clock  *runstate.ManualClock
	src    *recordingSource
	core   zapcore.Core
	logs   *observer.ObservedLogs
	mu     sync.Mutex
	frames []tools.Frame
	events []feedback.Event
}

func newHarness(seed uint64) *harness {
	core, logs := observer.New(zapcore.DebugLevel)
	return &harness{
		clock: runstate.NewManualClock(),
		src:   &recordingSource{src: sample.NewSeededSource(seed)},
		core:  core,
		logs:  logs,
	}
}

func (h *harness) deps() tools.Deps {
	return tools.Deps{
		Source:    h.src,
		Scheduler: h.clock,
		Sink: feedback.SinkFunc(func(ev feedback.Event) {
			h.mu.Lock()
			h.events = append(h.events, ev)
			h.mu.Unlock()
		}),
		Observer: tools.ObserverFunc(func(f tools.Frame) {
			h.mu.Lock()
			h.frames = append(h.frames, f)
			h.mu.Unlock()
		}),
		Logger:  zap.New(h.core),
		Timings: config.DefaultTools(),
	}
}

func (h *harness) frameCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.frames)
}

func (h *harness) kinds() []tools.FrameKind {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]tools.FrameKind, len(h.frames))
	for i, f := range h.frames {
		out[i] = f.Kind
	}
	return out
}

func (h *harness) lastFrame(kind tools.FrameKind) (tools.Frame, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := len(h.frames) - 1; i >= 0; i-- {
		if h.frames[i].Kind == kind {
			return h.frames[i], true
		}
	}
	return tools.Frame{}, false
}

func (h *harness) signals() []feedback.Signal {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]feedback.Signal, len(h.events))
	for i, ev := range h.events {
		out[i] = ev.Signal
	}
	return out
}

func (h *harness) warnings(msg string) int {
	return h.logs.FilterMessage(msg).FilterLevelExact(zapcore.WarnLevel).Len()
}
