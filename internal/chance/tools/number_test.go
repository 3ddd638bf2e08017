package tools_test

import (
	"math"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/chance/internal/chance/runstate"
	"github.com/cory-johannsen/chance/internal/chance/sample"
	"github.com/cory-johannsen/chance/internal/chance/tools"
)

func TestNumber_Defaults(t *testing.T) {
	n := tools.NewNumber(newHarness(1).deps())
	lo, hi := n.Bounds()
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 100.0, hi)
	assert.Equal(t, sample.ModeInteger, n.Mode())
	assert.Equal(t, 2, n.Decimals())
	assert.True(t, n.AllowNegative())
	assert.Equal(t, tools.HintReady, n.Hint().Kind)
	assert.Empty(t, n.Result())
}

func TestNumber_GenerateIntegerLifecycle(t *testing.T) {
	h := newHarness(9)
	n := tools.NewNumber(h.deps())

	require.NoError(t, n.Generate())
	assert.ErrorIs(t, n.SetMin(5), tools.ErrNotIdle)
	assert.ErrorIs(t, n.Generate(), tools.ErrBusy)

	h.clock.Advance(760 * time.Millisecond)
	assert.Equal(t, runstate.Settling, n.State())
	first := n.Result()
	v, err := strconv.Atoi(first)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, v, 1)
	assert.LessOrEqual(t, v, 100)

	h.clock.Advance(120 * time.Millisecond)
	assert.Equal(t, runstate.Idle, n.State())

	require.NoError(t, n.Generate())
	assert.Equal(t, first, n.LastResult())
	h.clock.Advance(time.Second)
	assert.Equal(t, runstate.Idle, n.State())
}

func TestNumber_InvalidRangeRefused(t *testing.T) {
	h := newHarness(1)
	n := tools.NewNumber(h.deps())
	require.NoError(t, n.SetMax(math.NaN()))
	assert.Equal(t, tools.HintInvalid, n.Hint().Kind)
	assert.ErrorIs(t, n.Generate(), tools.ErrInvalidRange)
	assert.Equal(t, runstate.Idle, n.State())
	assert.Zero(t, h.clock.Pending())
}

func TestNumber_Hints(t *testing.T) {
	n := tools.NewNumber(newHarness(1).deps())
	require.NoError(t, n.SetMin(7))
	require.NoError(t, n.SetMax(7))
	assert.Equal(t, tools.HintEqual, n.Hint().Kind)
	require.NoError(t, n.SetMax(3))
	assert.Equal(t, tools.HintInverted, n.Hint().Kind)
	require.NoError(t, n.Swap())
	lo, hi := n.Bounds()
	assert.Equal(t, 3.0, lo)
	assert.Equal(t, 7.0, hi)
	assert.Equal(t, tools.HintReady, n.Hint().Kind)
}

func TestNumber_InvertedRangeStillGenerates(t *testing.T) {
	h := newHarness(4)
	n := tools.NewNumber(h.deps())
	require.NoError(t, n.SetMin(10))
	require.NoError(t, n.SetMax(5))
	require.NoError(t, n.Generate())
	h.clock.Advance(time.Second)
	v, err := strconv.Atoi(n.Result())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, v, 5)
	assert.LessOrEqual(t, v, 10)
}

func TestNumber_AllowNegative(t *testing.T) {
	n := tools.NewNumber(newHarness(1).deps())
	require.NoError(t, n.SetMin(-20))
	lo, _ := n.Bounds()
	assert.Equal(t, -20.0, lo)

	require.NoError(t, n.SetAllowNegative(false))
	lo, _ = n.Bounds()
	assert.Equal(t, 0.0, lo)

	require.NoError(t, n.SetMax(-4))
	_, hi := n.Bounds()
	assert.Equal(t, 0.0, hi)

	require.NoError(t, n.SetMin(math.NaN()))
	lo, _ = n.Bounds()
	assert.True(t, math.IsNaN(lo), "invalid input is kept so the hint can flag it")
}

func TestNumber_DecimalMode(t *testing.T) {
	h := newHarness(11)
	n := tools.NewNumber(h.deps())
	require.NoError(t, n.SetMode(sample.ModeDecimal))
	require.NoError(t, n.SetDecimals(9))
	assert.Equal(t, sample.MaxDecimals, n.Decimals())
	require.NoError(t, n.SetDecimals(3))

	require.NoError(t, n.Generate())
	h.clock.Advance(time.Second)
	res := n.Result()
	dot := strings.IndexByte(res, '.')
	require.GreaterOrEqual(t, dot, 0, res)
	assert.Len(t, res[dot+1:], 3)
	v, err := strconv.ParseFloat(res, 64)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, v, 1.0)
	assert.LessOrEqual(t, v, 100.0)
}

func TestNumber_Reset(t *testing.T) {
	h := newHarness(1)
	n := tools.NewNumber(h.deps())
	require.NoError(t, n.SetMode(sample.ModeDecimal))
	require.NoError(t, n.SetMin(-3))
	require.NoError(t, n.Generate())
	assert.ErrorIs(t, n.Reset(), tools.ErrNotIdle)
	h.clock.Advance(time.Second)

	require.NoError(t, n.Reset())
	lo, hi := n.Bounds()
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 100.0, hi)
	assert.Equal(t, sample.ModeInteger, n.Mode())
	assert.Empty(t, n.Result())
	assert.Empty(t, n.LastResult())
}
