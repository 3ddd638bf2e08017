package tools

import (
	"context"

	"github.com/cory-johannsen/chance/internal/chance/wheel"
)

// Set is one of each tool, owned together by a single session.
type Set struct {
	Wheel  *Wheel
	Coin   *Coin
	Dice   *Dice
	Number *Number
	Draw   *NameDraw
}

// NewSet builds all five tools on shared deps.
func NewSet(ctx context.Context, d Deps, store OptionStore, presets map[string]wheel.Preset) *Set {
	return &Set{
		Wheel:  NewWheel(ctx, d, store, presets),
		Coin:   NewCoin(d),
		Dice:   NewDice(d),
		Number: NewNumber(d),
		Draw:   NewNameDraw(d),
	}
}

// All returns the tools in display order.
func (s *Set) All() []Tool {
	return []Tool{s.Wheel, s.Coin, s.Dice, s.Number, s.Draw}
}

// Lookup returns the tool with the given name.
func (s *Set) Lookup(name string) (Tool, bool) {
	for _, t := range s.All() {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

// Close tears down every tool.
//
// Postcondition: no timer callback of any tool runs after Close returns.
func (s *Set) Close() {
	for _, t := range s.All() {
		t.Close()
	}
}
