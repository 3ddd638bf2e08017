package runstate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/chance/internal/chance/runstate"
)

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", runstate.Idle.String())
	assert.Equal(t, "running", runstate.Running.String())
	assert.Equal(t, "settling", runstate.Settling.String())
	assert.Equal(t, "unknown", runstate.State(9).String())
}

func TestMachine_FullCycle(t *testing.T) {
	var m runstate.Machine
	assert.Equal(t, runstate.Idle, m.State())
	assert.True(t, m.Start())
	assert.False(t, m.Start(), "duplicate start while running")
	assert.False(t, m.CanReset())
	assert.True(t, m.Finish())
	assert.False(t, m.Start(), "start while settling")
	assert.False(t, m.CanReset())
	assert.True(t, m.Settle())
	assert.True(t, m.CanReset())
	assert.True(t, m.Accepting())
}

func TestMachine_OutOfOrderTransitions(t *testing.T) {
	var m runstate.Machine
	assert.False(t, m.Finish())
	assert.False(t, m.Settle())
	m.Start()
	assert.False(t, m.Settle())
	assert.Equal(t, runstate.Running, m.State())
}

func TestMachine_Abort(t *testing.T) {
	var m runstate.Machine
	m.Start()
	m.Abort()
	assert.Equal(t, runstate.Idle, m.State())
}

// Property: for every reachable action sequence, start is accepted only from
// Idle and reset only from Idle, and a rejected action never changes state.
func TestProperty_MachineRejections(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		var m runstate.Machine
		actions := rapid.SliceOfN(rapid.IntRange(0, 3), 1, 64).Draw(rt, "actions")
		for _, a := range actions {
			before := m.State()
			switch a {
			case 0:
				ok := m.Start()
				assert.Equal(rt, before == runstate.Idle, ok)
			case 1:
				ok := m.Finish()
				assert.Equal(rt, before == runstate.Running, ok)
			case 2:
				ok := m.Settle()
				assert.Equal(rt, before == runstate.Settling, ok)
			case 3:
				assert.Equal(rt, before == runstate.Idle, m.CanReset())
				assert.Equal(rt, before, m.State())
			}
		}
	})
}
