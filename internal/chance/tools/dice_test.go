package tools_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/chance/internal/chance/runstate"
	"github.com/cory-johannsen/chance/internal/chance/tools"
	"github.com/cory-johannsen/chance/internal/feedback"
)

func TestDice_SetCountClamps(t *testing.T) {
	h := newHarness(2)
	d := tools.NewDice(h.deps())
	assert.Equal(t, tools.DefaultDice, d.Count())
	assert.Len(t, d.Dice(), 2)

	require.NoError(t, d.SetCount(0))
	assert.Equal(t, 1, d.Count())
	require.NoError(t, d.SetCount(9))
	assert.Equal(t, 6, d.Count())
	assert.Len(t, d.Dice(), 6)
}

func TestDice_RollTicksThenFinal(t *testing.T) {
	h := newHarness(2)
	d := tools.NewDice(h.deps())
	require.NoError(t, d.SetCount(3))

	require.NoError(t, d.Roll())
	assert.ErrorIs(t, d.SetCount(4), tools.ErrNotIdle)
	assert.ErrorIs(t, d.Roll(), tools.ErrBusy)

	h.clock.Advance(2 * time.Second)
	assert.Equal(t, runstate.Running, d.State())

	h.clock.Advance(time.Second)
	assert.Equal(t, runstate.Idle, d.State())

	faces := d.Dice()
	require.Len(t, faces, 3)
	total := 0
	for _, f := range faces {
		assert.GreaterOrEqual(t, f, 1)
		assert.LessOrEqual(t, f, 6)
		total += f
	}
	assert.Equal(t, total, d.Total())

	kinds := h.kinds()
	ticks := 0
	for _, k := range kinds {
		if k == tools.FrameTick {
			ticks++
		}
	}
	// 2300ms at 70-129ms per tick
	assert.GreaterOrEqual(t, ticks, 17)
	assert.Equal(t, []tools.FrameKind{tools.FrameReveal, tools.FrameIdle}, kinds[len(kinds)-2:])
	sig := h.signals()
	assert.Equal(t, feedback.Result, sig[len(sig)-1])
}

func TestDice_Reset(t *testing.T) {
	h := newHarness(2)
	d := tools.NewDice(h.deps())
	require.NoError(t, d.SetCount(5))
	require.NoError(t, d.Reset())
	assert.Equal(t, 2, d.Count())
	assert.Len(t, d.Dice(), 2)
}
