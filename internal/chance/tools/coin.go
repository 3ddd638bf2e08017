package tools

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/chance/internal/chance/animate"
	"github.com/cory-johannsen/chance/internal/chance/wheel"
	"github.com/cory-johannsen/chance/internal/feedback"
)

// Side is a coin face.
type Side int

const (
	Heads Side = iota
	Tails
)

// String returns "heads" or "tails".
func (s Side) String() string {
	if s == Tails {
		return "tails"
	}
	return "heads"
}

// angle is the Y rotation at which s faces the viewer.
func (s Side) angle() float64 {
	if s == Tails {
		return 180
	}
	return 0
}

// Face returns the side visible at the given Y rotation.
func Face(rotationY float64) Side {
	r := wheel.Norm360(rotationY)
	if r >= 90 && r < 270 {
		return Tails
	}
	return Heads
}

// NearestCongruent returns the angle closest to target that is congruent to
// desired modulo 360.
func NearestCongruent(target, desired float64) float64 {
	k := math.Round((target - desired) / 360)
	return desired + k*360
}

// Coin is the coin flip. The committed side is hidden until the settle
// window after the flip ends.
type Coin struct {
	core
	rotationY float64
	result    *Side
	flip      *animate.Transition
	flipDur   time.Duration
	settleDur time.Duration
}

// NewCoin creates a coin showing heads.
func NewCoin(d Deps) *Coin {
	d = d.withDefaults()
	c := &Coin{flipDur: d.Timings.CoinFlip, settleDur: d.Timings.CoinSettle}
	c.init(ToolCoin, d)
	c.flip = animate.NewTransition(c.timer)
	return c
}

// Result returns the revealed side, if any.
func (c *Coin) Result() (Side, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return Heads, false
	}
	return *c.result, true
}

// RotationY returns the current Y rotation in degrees.
func (c *Coin) RotationY() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rotationY
}

// Flip commits a side and a multi-turn target rotation.
//
// Postcondition: on success the previous result is cleared and the new one
// becomes visible only after flip + settle.
func (c *Coin) Flip() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.begin(); err != nil {
		return err
	}

	next := Side(c.src.Int64N(2))
	desired := next.angle()
	delta := desired - wheel.Norm360(c.rotationY)
	if delta > 180 {
		delta -= 360
	}
	if delta < -180 {
		delta += 360
	}
	spins := 6 + float64(c.src.Int64N(3))
	target := c.rotationY + spins*360 + delta

	c.rotationY = target
	c.result = nil
	c.logger.Debug("flip committed", zap.Stringer("side", next), zap.Float64("rotation", target))
	c.emit(Frame{Kind: FrameStart, Text: "flipping"})

	c.flip.Run(c.flipDur, func() {
		c.rotationY = NearestCongruent(target, desired)
		c.conclude(Frame{Kind: FrameTick, Text: "landing"}, c.settleDur, func() {
			c.result = &next
			c.cue(feedback.Result)
			c.emit(Frame{Kind: FrameReveal, Text: next.String()})
		})
	})
	return nil
}

// Reset clears the result and the rotation.
func (c *Coin) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.mutable(); err != nil {
		return err
	}
	c.result = nil
	c.rotationY = 0
	c.emit(Frame{Kind: FrameUpdate, Text: "reset"})
	return nil
}
