// Package tools implements the five chance tools: wheel, coin, dice, ranged
// number and name draw.
//
// Every tool owns one lock, one run state machine and one timer. User actions
// and timer callbacks both serialise on that lock, and the timer drops any
// callback that was superseded or cancelled, so a reset or teardown can never
// be followed by a late mutation. Refused actions return a sentinel error and
// leave the tool unchanged.
package tools

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/chance/internal/chance/animate"
	"github.com/cory-johannsen/chance/internal/chance/runstate"
	"github.com/cory-johannsen/chance/internal/chance/sample"
	"github.com/cory-johannsen/chance/internal/chance/wheel"
	"github.com/cory-johannsen/chance/internal/config"
	"github.com/cory-johannsen/chance/internal/feedback"
	"github.com/cory-johannsen/chance/internal/observability"
)

// Tool names.
const (
	ToolWheel  = "wheel"
	ToolCoin   = "coin"
	ToolDice   = "dice"
	ToolNumber = "number"
	ToolDraw   = "draw"
)

var (
	// ErrBusy is returned when a run is triggered while another is in flight.
	ErrBusy = errors.New("a run is already in progress")
	// ErrNotIdle is returned when configuration changes or resets are attempted mid-run.
	ErrNotIdle = errors.New("inputs are locked until the current run finishes")
	// ErrClosed is returned by every action after Close.
	ErrClosed = errors.New("tool is closed")
	// ErrNoCandidates is returned when a name draw has nothing to draw from.
	ErrNoCandidates = errors.New("no candidates to draw from")
	// ErrTooFewOptions is returned when the wheel has fewer than two options.
	ErrTooFewOptions = wheel.ErrTooFewOptions
	// ErrInvalidRange is returned when a number bound is not a finite number.
	ErrInvalidRange = sample.ErrInvalidRange
	// ErrEmptyLabel is returned when a wheel option label is blank.
	ErrEmptyLabel = errors.New("option label must not be empty")
	// ErrUnknownOption is returned when a wheel option id does not exist.
	ErrUnknownOption = errors.New("unknown option")
	// ErrUnknownPreset is returned when a wheel preset name does not exist.
	ErrUnknownPreset = errors.New("unknown preset")
)

// Tool is the behaviour shared by every chance tool.
type Tool interface {
	Name() string
	State() runstate.State
	// Reset restores defaults. Returns ErrNotIdle unless the tool is Idle.
	Reset() error
	// Close cancels any pending callback and permanently disables the tool.
	Close()
}

// FrameKind classifies a Frame.
type FrameKind int

const (
	// FrameUpdate reports a configuration change.
	FrameUpdate FrameKind = iota
	// FrameStart reports that a run began.
	FrameStart
	// FrameTick carries an intermediate display value.
	FrameTick
	// FrameReveal carries the run's outcome.
	FrameReveal
	// FrameIdle reports that inputs are unlocked again.
	FrameIdle
)

// String returns the lowercase frame kind.
func (k FrameKind) String() string {
	switch k {
	case FrameUpdate:
		return "update"
	case FrameStart:
		return "start"
	case FrameTick:
		return "tick"
	case FrameReveal:
		return "reveal"
	case FrameIdle:
		return "idle"
	default:
		return "unknown"
	}
}

// Frame is one display update pushed to an Observer.
type Frame struct {
	Tool  string
	Kind  FrameKind
	State runstate.State
	Text  string
}

// Observer receives frames. OnFrame is called with the tool's lock held and
// must not block or call back into the tool.
type Observer interface {
	OnFrame(Frame)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Frame)

// OnFrame calls f(fr).
func (f ObserverFunc) OnFrame(fr Frame) { f(fr) }

// Deps are the collaborators shared by the tools of one session.
// Nil fields are replaced with working defaults.
type Deps struct {
	Source    sample.Source
	Scheduler runstate.Scheduler
	Sink      feedback.Sink
	Observer  Observer
	Logger    *zap.Logger
	Timings   config.ToolsConfig
}

func (d Deps) withDefaults() Deps {
	if d.Source == nil {
		d.Source = sample.NewCryptoSource()
	}
	if d.Scheduler == nil {
		d.Scheduler = runstate.RealScheduler{}
	}
	if d.Sink == nil {
		d.Sink = feedback.Nop
	}
	if d.Observer == nil {
		d.Observer = ObserverFunc(func(Frame) {})
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Timings == (config.ToolsConfig{}) {
		d.Timings = config.DefaultTools()
	}
	return d
}

// core holds what every tool needs. Methods other than the exported
// accessors assume mu is held.
type core struct {
	name    string
	mu      sync.Mutex
	machine runstate.Machine
	timer   *runstate.Timer
	settle  *animate.Transition
	src     sample.Source
	sink    feedback.Sink
	obs     Observer
	logger  *zap.Logger
}

func (c *core) init(name string, d Deps) {
	c.name = name
	c.timer = runstate.NewTimer(&c.mu, d.Scheduler)
	c.settle = animate.NewTransition(c.timer)
	c.src = d.Source
	c.sink = d.Sink
	c.obs = d.Observer
	c.logger = observability.ForTool(d.Logger, name)
}

// Name returns the tool's name.
func (c *core) Name() string { return c.name }

// State returns the current run state.
func (c *core) State() runstate.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.State()
}

// Close cancels any pending callback and disables the tool.
//
// Postcondition: no state change happens after Close returns.
func (c *core) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer.Closed() {
		return
	}
	was := c.machine.State()
	c.timer.Close()
	c.machine.Abort()
	c.logger.Debug("tool closed", zap.Stringer("state", was))
}

// idle reports whether a new run may start.
func (c *core) idle() error {
	if c.timer.Closed() {
		return ErrClosed
	}
	if !c.machine.Accepting() {
		return ErrBusy
	}
	return nil
}

// begin starts a run.
func (c *core) begin() error {
	if err := c.idle(); err != nil {
		return err
	}
	c.machine.Start()
	c.cue(feedback.Action)
	return nil
}

// mutable reports whether configuration may change.
func (c *core) mutable() error {
	if c.timer.Closed() {
		return ErrClosed
	}
	if !c.machine.Accepting() {
		return ErrNotIdle
	}
	return nil
}

// conclude moves Running to Settling, publishes reveal, and returns to Idle
// after d. onIdle, if set, runs just before the Idle frame.
func (c *core) conclude(reveal Frame, d time.Duration, onIdle func()) {
	c.machine.Finish()
	c.emit(reveal)
	c.settle.Run(d, func() {
		c.machine.Settle()
		if onIdle != nil {
			onIdle()
		}
		c.emit(Frame{Kind: FrameIdle})
		c.logger.Debug("run settled")
	})
}

func (c *core) emit(f Frame) {
	f.Tool = c.name
	f.State = c.machine.State()
	c.obs.OnFrame(f)
}

func (c *core) cue(sig feedback.Signal) {
	c.sink.Emit(feedback.Event{Tool: c.name, Signal: sig})
}
