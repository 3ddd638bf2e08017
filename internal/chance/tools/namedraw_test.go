package tools_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/chance/internal/chance/namedraw"
	"github.com/cory-johannsen/chance/internal/chance/runstate"
	"github.com/cory-johannsen/chance/internal/chance/tools"
	"github.com/cory-johannsen/chance/internal/feedback"
)

func TestNameDraw_EmptyRefused(t *testing.T) {
	h := newHarness(1)
	nd := tools.NewNameDraw(h.deps())
	assert.ErrorIs(t, nd.Draw(), tools.ErrNoCandidates)
	require.NoError(t, nd.SetInput(" \n \n"))
	assert.ErrorIs(t, nd.Draw(), tools.ErrNoCandidates)
	assert.Equal(t, runstate.Idle, nd.State())
}

func TestNameDraw_CandidatesUseRules(t *testing.T) {
	nd := tools.NewNameDraw(newHarness(1).deps())
	require.NoError(t, nd.SetInput("Ana\nana\nBeto"))
	assert.Equal(t, []string{"Ana", "Beto"}, nd.Candidates())

	require.NoError(t, nd.SetRules(namedraw.Rules{RemoveDuplicates: true}))
	assert.Equal(t, []string{"Ana", "ana", "Beto"}, nd.Candidates())

	require.NoError(t, nd.AppendInput("Carla"))
	assert.Equal(t, "Ana\nana\nBeto\nCarla", nd.Input())
}

func TestNameDraw_DrawLifecycle(t *testing.T) {
	h := newHarness(3)
	nd := tools.NewNameDraw(h.deps())
	require.NoError(t, nd.SetInput("Ana\nBeto\nCarla"))
	require.NoError(t, nd.SetDuration(tools.DrawShort))

	require.NoError(t, nd.Draw())
	assert.ErrorIs(t, nd.SetInput("x"), tools.ErrNotIdle)
	assert.ErrorIs(t, nd.Draw(), tools.ErrBusy)
	assert.NotEmpty(t, nd.Rolling())

	h.clock.Advance(2900 * time.Millisecond)
	_, ok := nd.Winner()
	assert.False(t, ok)

	var winner string
	for elapsed := 2900 * time.Millisecond; elapsed < 3400*time.Millisecond; elapsed += 10 * time.Millisecond {
		h.clock.Advance(10 * time.Millisecond)
		if winner, ok = nd.Winner(); ok {
			break
		}
	}
	require.True(t, ok, "winner revealed within the short duration plus one tick")
	assert.Contains(t, []string{"Ana", "Beto", "Carla"}, winner)
	assert.Equal(t, winner, nd.Rolling())
	assert.Equal(t, runstate.Settling, nd.State())

	h.clock.Advance(160 * time.Millisecond)
	assert.Equal(t, runstate.Idle, nd.State())
	assert.Zero(t, nd.ExcludedCount())
}

func TestNameDraw_ExcludeWinnerShrinksPool(t *testing.T) {
	h := newHarness(8)
	nd := tools.NewNameDraw(h.deps())
	require.NoError(t, nd.SetInput("Ana\nBeto\nCarla"))
	rules := namedraw.DefaultRules()
	rules.ExcludeWinner = true
	require.NoError(t, nd.SetRules(rules))
	require.NoError(t, nd.SetDuration(tools.DrawShort))

	seen := map[string]bool{}
	for i := 1; i <= 3; i++ {
		require.NoError(t, nd.Draw())
		h.clock.Advance(4 * time.Second)
		w, ok := nd.Winner()
		require.True(t, ok)
		assert.False(t, seen[w], "winner %q drawn twice", w)
		seen[w] = true
		assert.Equal(t, i, nd.ExcludedCount())
		assert.Len(t, nd.Candidates(), 3-i)
	}
	assert.ErrorIs(t, nd.Draw(), tools.ErrNoCandidates)

	require.NoError(t, nd.ResetWinners())
	assert.Zero(t, nd.ExcludedCount())
	assert.Len(t, nd.Candidates(), 3)
	_, ok := nd.Winner()
	assert.False(t, ok)
}

func TestNameDraw_DurationPresets(t *testing.T) {
	nd := tools.NewNameDraw(newHarness(1).deps())
	assert.Equal(t, tools.DrawMedium, nd.Duration())
	d, ok := tools.ParseDrawDuration(" LONG ")
	require.True(t, ok)
	require.NoError(t, nd.SetDuration(d))
	assert.Equal(t, tools.DrawLong, nd.Duration())
	_, ok = tools.ParseDrawDuration("forever")
	assert.False(t, ok)
	assert.Error(t, nd.SetDuration("forever"))
}

func TestNameDraw_RuleAndDurationChangesCueAction(t *testing.T) {
	h := newHarness(1)
	nd := tools.NewNameDraw(h.deps())

	require.NoError(t, nd.SetInput("Ana\nBea"))
	assert.Empty(t, h.signals(), "typing names is silent")

	require.NoError(t, nd.SetRules(namedraw.Rules{RemoveDuplicates: true, ExcludeWinner: true}))
	require.NoError(t, nd.SetDuration(tools.DrawShort))
	assert.Equal(t, []feedback.Signal{feedback.Action, feedback.Action}, h.signals())

	assert.Error(t, nd.SetDuration("forever"))
	assert.Len(t, h.signals(), 2)
}

func TestNameDraw_Reset(t *testing.T) {
	h := newHarness(1)
	nd := tools.NewNameDraw(h.deps())
	require.NoError(t, nd.SetInput("Ana"))
	require.NoError(t, nd.SetRules(namedraw.Rules{ExcludeWinner: true}))
	require.NoError(t, nd.SetDuration(tools.DrawShort))
	require.NoError(t, nd.Draw())
	h.clock.Advance(4 * time.Second)
	require.Equal(t, 1, nd.ExcludedCount())

	require.NoError(t, nd.Reset())
	assert.Empty(t, nd.Input())
	assert.Equal(t, namedraw.DefaultRules(), nd.Rules())
	assert.Equal(t, tools.DrawMedium, nd.Duration())
	assert.Zero(t, nd.ExcludedCount())
}
