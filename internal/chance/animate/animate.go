// Package animate drives the convergence animations that precede every reveal.
//
// Two disciplines are provided. Ticker re-samples a display value at jittered,
// optionally decelerating intervals for a fixed duration and then fires a
// single final callback. Transition hands a precomputed transform to the
// renderer and fires once its wall-clock duration has elapsed.
//
// Both run on the owning tool's runstate.Timer, so at most one chain is live
// per tool and every callback executes under the tool's lock.
package animate

import (
	"time"

	"github.com/cory-johannsen/chance/internal/chance/runstate"
	"github.com/cory-johannsen/chance/internal/chance/sample"
)

// TickerConfig defines a fixed-duration, jittered-interval animation.
//
// The delay before the next tick is
//
//	BaseDelay + U[0, Jitter) + Spread * (elapsed/Duration)^2
type TickerConfig struct {
	Duration  time.Duration
	BaseDelay time.Duration
	Jitter    time.Duration
	Spread    time.Duration
}

// Delay returns the wait before the next tick given the elapsed run time.
//
// Precondition: src is non-nil.
func (c TickerConfig) Delay(src sample.Source, elapsed time.Duration) time.Duration {
	d := c.BaseDelay
	if c.Jitter > 0 {
		d += time.Duration(src.Int64N(int64(c.Jitter)))
	}
	if c.Spread > 0 && c.Duration > 0 {
		frac := min(1.0, float64(elapsed)/float64(c.Duration))
		d += time.Duration(float64(c.Spread) * frac * frac)
	}
	return max(d, time.Millisecond)
}

// Ticker runs a TickerConfig on a tool's Timer.
type Ticker struct {
	cfg   TickerConfig
	timer *runstate.Timer
	src   sample.Source
}

// NewTicker binds cfg to timer; src supplies the jitter.
//
// Precondition: timer and src are non-nil; cfg.Duration >= 0.
func NewTicker(cfg TickerConfig, timer *runstate.Timer, src sample.Source) *Ticker {
	return &Ticker{cfg: cfg, timer: timer, src: src}
}

// Run starts the animation. onTick runs once synchronously and then on each
// scheduled tick before Duration elapses; onFinal runs exactly once, at the
// first tick at or after Duration, strictly after every onTick.
//
// Precondition: called with the owner's lock held.
func (t *Ticker) Run(onTick, onFinal func()) {
	start := t.timer.Now()
	onTick()

	var step func()
	step = func() {
		elapsed := t.timer.Now().Sub(start)
		if elapsed >= t.cfg.Duration {
			onFinal()
			return
		}
		onTick()
		t.timer.Schedule(t.cfg.Delay(t.src, elapsed), step)
	}
	t.timer.Schedule(t.cfg.Delay(t.src, 0), step)
}

// Transition is a single fixed-duration step with no intermediate sampling.
type Transition struct {
	timer *runstate.Timer
}

// NewTransition binds a Transition to timer.
func NewTransition(timer *runstate.Timer) *Transition {
	return &Transition{timer: timer}
}

// Run calls onEnd once d has elapsed; a non-positive d runs it immediately.
//
// Precondition: called with the owner's lock held.
func (t *Transition) Run(d time.Duration, onEnd func()) {
	if d <= 0 {
		onEnd()
		return
	}
	t.timer.Schedule(d, onEnd)
}
