package tools

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/chance/internal/chance/animate"
	"github.com/cory-johannsen/chance/internal/chance/sample"
	"github.com/cory-johannsen/chance/internal/feedback"
)

// Number defaults.
const (
	DefaultMin      = 1
	DefaultMax      = 100
	DefaultDecimals = 2
)

// HintKind classifies the current range.
type HintKind int

const (
	HintReady HintKind = iota
	HintEqual
	HintInverted
	HintInvalid
)

// String returns the badge label.
func (k HintKind) String() string {
	switch k {
	case HintReady:
		return "ready"
	case HintEqual:
		return "fixed"
	case HintInverted:
		return "inverted range"
	case HintInvalid:
		return "invalid range"
	default:
		return "unknown"
	}
}

// Hint describes the range to the user.
type Hint struct {
	Kind    HintKind
	Message string
}

// Number generates a random value in a configurable range.
type Number struct {
	core
	mode          sample.Mode
	lo, hi        float64
	decimals      int
	allowNegative bool
	result        string
	last          string

	ticker    *animate.Ticker
	settleDur time.Duration
}

// NewNumber creates an integer generator over [1, 100].
func NewNumber(d Deps) *Number {
	d = d.withDefaults()
	n := &Number{settleDur: d.Timings.NumberSettle}
	n.init(ToolNumber, d)
	n.ticker = animate.NewTicker(animate.TickerConfig{
		Duration:  d.Timings.NumberDuration,
		BaseDelay: d.Timings.NumberTick,
	}, n.timer, n.src)
	n.defaults()
	return n
}

func (n *Number) defaults() {
	n.mode = sample.ModeInteger
	n.lo, n.hi = DefaultMin, DefaultMax
	n.decimals = DefaultDecimals
	n.allowNegative = true
	n.result = ""
	n.last = ""
}

func (n *Number) precision() sample.Precision {
	if n.mode == sample.ModeDecimal {
		return sample.Decimal(n.decimals)
	}
	return sample.Integer
}

// Bounds returns the configured min and max. Either may be NaN.
func (n *Number) Bounds() (lo, hi float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lo, n.hi
}

// Mode returns the sampling mode.
func (n *Number) Mode() sample.Mode {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.mode
}

// Decimals returns the configured decimal places.
func (n *Number) Decimals() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.decimals
}

// AllowNegative reports whether negative bounds are kept as entered.
func (n *Number) AllowNegative() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.allowNegative
}

// Result returns the displayed value; empty before the first run.
func (n *Number) Result() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.result
}

// LastResult returns the value shown before the most recent run.
func (n *Number) LastResult() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}

// SetMode switches between integer and decimal output.
func (n *Number) SetMode(m sample.Mode) error {
	return n.update(func() { n.mode = m })
}

// SetMin sets the lower bound. NaN marks the bound invalid.
func (n *Number) SetMin(v float64) error {
	return n.update(func() { n.lo = n.clampSign(v) })
}

// SetMax sets the upper bound. NaN marks the bound invalid.
func (n *Number) SetMax(v float64) error {
	return n.update(func() { n.hi = n.clampSign(v) })
}

// SetDecimals sets the decimal places, clamped to [0, sample.MaxDecimals].
func (n *Number) SetDecimals(d int) error {
	return n.update(func() { n.decimals = sample.ClampDecimals(d) })
}

// SetAllowNegative toggles negative bounds. Turning it off raises finite
// negative bounds to zero.
func (n *Number) SetAllowNegative(allow bool) error {
	return n.update(func() {
		n.cue(feedback.Action)
		n.allowNegative = allow
		n.lo = n.clampSign(n.lo)
		n.hi = n.clampSign(n.hi)
	})
}

// Swap exchanges min and max.
func (n *Number) Swap() error {
	return n.update(func() {
		n.cue(feedback.Action)
		n.lo, n.hi = n.hi, n.lo
	})
}

func (n *Number) clampSign(v float64) float64 {
	if n.allowNegative || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.Max(0, v)
}

func (n *Number) update(f func()) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.mutable(); err != nil {
		return err
	}
	f()
	n.emit(Frame{Kind: FrameUpdate, Text: n.hint().Message})
	return nil
}

// Hint describes the current range.
func (n *Number) Hint() Hint {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.hint()
}

func (n *Number) hint() Hint {
	switch {
	case !finite(n.lo) || !finite(n.hi):
		return Hint{HintInvalid, "enter valid numbers for min and max"}
	case n.lo == n.hi:
		return Hint{HintEqual, "min and max are equal: the result is always that number"}
	case n.lo > n.hi:
		return Hint{HintInverted, "min is greater than max: the range is swapped when generating"}
	default:
		return Hint{HintReady, "range ready"}
	}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Generate animates random values and commits a final one.
//
// Precondition: both bounds finite, otherwise ErrInvalidRange.
// Postcondition: LastResult holds the value shown before this run.
func (n *Number) Generate() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.idle(); err != nil {
		return err
	}
	if !finite(n.lo) || !finite(n.hi) {
		return ErrInvalidRange
	}
	if err := n.begin(); err != nil {
		return err
	}

	lo, hi, p := n.lo, n.hi, n.precision()
	n.last = n.result
	n.logger.Debug("generate started",
		zap.Float64("min", lo), zap.Float64("max", hi),
		zap.String("mode", string(p.Mode)), zap.Int("decimals", p.Decimals),
	)
	n.emit(Frame{Kind: FrameStart, Text: "generating"})
	n.ticker.Run(func() {
		if v, err := sample.Range(n.src, lo, hi, p); err == nil {
			n.result = v.Text
			n.emit(Frame{Kind: FrameTick, Text: v.Text})
		}
	}, func() {
		v, err := sample.Range(n.src, lo, hi, p)
		if err != nil {
			n.logger.Warn("final sample", zap.Error(err))
			n.conclude(Frame{Kind: FrameReveal, Text: n.result}, n.settleDur, nil)
			return
		}
		n.result = v.Text
		n.cue(feedback.Result)
		n.conclude(Frame{Kind: FrameReveal, Text: v.Text}, n.settleDur, nil)
	})
	return nil
}

// Reset restores the integer [1, 100] configuration and clears results.
func (n *Number) Reset() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.mutable(); err != nil {
		return err
	}
	n.defaults()
	n.emit(Frame{Kind: FrameUpdate, Text: "reset"})
	return nil
}
