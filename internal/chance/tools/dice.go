package tools

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/chance/internal/chance/animate"
	"github.com/cory-johannsen/chance/internal/feedback"
)

// Dice count limits.
const (
	MinDice     = 1
	MaxDice     = 6
	DefaultDice = 2
)

// Dice rolls between one and six six-sided dice.
type Dice struct {
	core
	count  int
	dice   []int
	ticker *animate.Ticker
}

// NewDice creates a pair of dice.
func NewDice(d Deps) *Dice {
	d = d.withDefaults()
	x := &Dice{count: DefaultDice}
	x.init(ToolDice, d)
	x.ticker = animate.NewTicker(animate.TickerConfig{
		Duration:  d.Timings.DiceRoll,
		BaseDelay: d.Timings.DiceTick,
		Jitter:    d.Timings.DiceJitter,
	}, x.timer, x.src)
	x.dice = x.roll()
	return x
}

func (x *Dice) roll() []int {
	out := make([]int, x.count)
	for i := range out {
		out[i] = 1 + int(x.src.Int64N(6))
	}
	return out
}

// Count returns the configured number of dice.
func (x *Dice) Count() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.count
}

// Dice returns the current face values.
func (x *Dice) Dice() []int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return slices.Clone(x.dice)
}

// Total returns the sum of the current faces.
func (x *Dice) Total() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return sum(x.dice)
}

func sum(v []int) int {
	t := 0
	for _, n := range v {
		t += n
	}
	return t
}

// SetCount clamps n to [MinDice, MaxDice] and re-rolls the display.
func (x *Dice) SetCount(n int) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.mutable(); err != nil {
		return err
	}
	x.cue(feedback.Action)
	x.count = min(max(n, MinDice), MaxDice)
	x.dice = x.roll()
	x.emit(Frame{Kind: FrameUpdate, Text: x.describe()})
	return nil
}

// Roll animates the dice and settles on a final sample at the end.
func (x *Dice) Roll() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.begin(); err != nil {
		return err
	}
	x.logger.Debug("roll started", zap.Int("count", x.count))
	x.emit(Frame{Kind: FrameStart, Text: "rolling"})
	x.ticker.Run(func() {
		x.dice = x.roll()
		x.emit(Frame{Kind: FrameTick, Text: x.describe()})
	}, func() {
		x.dice = x.roll()
		x.logger.Debug("roll final", zap.Ints("dice", x.dice))
		x.cue(feedback.Result)
		x.conclude(Frame{Kind: FrameReveal, Text: x.describe()}, 0, nil)
	})
	return nil
}

// Reset restores two dice.
func (x *Dice) Reset() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.mutable(); err != nil {
		return err
	}
	x.count = DefaultDice
	x.dice = x.roll()
	x.emit(Frame{Kind: FrameUpdate, Text: x.describe()})
	return nil
}

func (x *Dice) describe() string {
	faces := make([]string, len(x.dice))
	for i, v := range x.dice {
		faces[i] = fmt.Sprint(v)
	}
	return fmt.Sprintf("[%s] total %d", strings.Join(faces, " "), sum(x.dice))
}
