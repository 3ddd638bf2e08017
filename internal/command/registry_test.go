package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDefaultRegistry_CoversEveryHandler(t *testing.T) {
	r := DefaultRegistry()
	handlers := map[string]bool{}
	for _, cmd := range r.Commands() {
		handlers[cmd.Handler] = true
		assert.NotEmpty(t, cmd.Help, cmd.Name)
	}
	for _, h := range []string{HandlerWheel, HandlerCoin, HandlerDice, HandlerNumber, HandlerDraw,
		HandlerReset, HandlerStatus, HandlerMute, HandlerHelp, HandlerQuit} {
		assert.True(t, handlers[h], h)
	}
}

func TestResolve_CanonicalAndAlias(t *testing.T) {
	r := DefaultRegistry()

	cmd, ok := r.Resolve("wheel")
	require.True(t, ok)
	assert.Equal(t, HandlerWheel, cmd.Handler)

	cmd, ok = r.Resolve("FLIP")
	require.True(t, ok)
	assert.Equal(t, "coin", cmd.Name)
}

func TestResolve_NotFound(t *testing.T) {
	_, ok := DefaultRegistry().Resolve("teleport")
	assert.False(t, ok)
}

func TestNewRegistry_Collisions(t *testing.T) {
	_, err := NewRegistry([]Command{{Name: "a"}, {Name: "a"}})
	assert.Error(t, err)

	_, err = NewRegistry([]Command{{Name: "a", Aliases: []string{"x"}}, {Name: "b", Aliases: []string{"x"}}})
	assert.Error(t, err)

	_, err = NewRegistry([]Command{{Name: "a", Aliases: []string{"b"}}, {Name: "b"}})
	assert.Error(t, err)

	_, err = NewRegistry([]Command{{Name: ""}})
	assert.Error(t, err)

	_, err = NewRegistry([]Command{{Name: "spin"}, {Name: "roll", Aliases: []string{"SPIN"}}})
	assert.Error(t, err, "aliases clash regardless of case")
}

func TestCommands_ReturnsCopy(t *testing.T) {
	r := DefaultRegistry()
	cmds := r.Commands()
	cmds[0] = nil
	assert.NotNil(t, r.Commands()[0])
}

func TestCommands_Sorted(t *testing.T) {
	cmds := DefaultRegistry().Commands()
	for i := 1; i < len(cmds); i++ {
		assert.Less(t, cmds[i-1].Name, cmds[i].Name)
	}
}

func TestCommandsByCategory(t *testing.T) {
	cats := DefaultRegistry().CommandsByCategory()
	assert.Len(t, cats[CategoryTools], 5)
	assert.NotEmpty(t, cats[CategorySession])
}

// Property: every registered name and alias resolves to its owner.
func TestPropertyResolveEveryAlias(t *testing.T) {
	r := DefaultRegistry()
	cmds := BuiltinCommands()
	rapid.Check(t, func(t *rapid.T) {
		cmd := rapid.SampledFrom(cmds).Draw(t, "cmd")
		names := append([]string{cmd.Name}, cmd.Aliases...)
		name := rapid.SampledFrom(names).Draw(t, "name")
		got, ok := r.Resolve(name)
		if !ok || got.Name != cmd.Name {
			t.Fatalf("Resolve(%q) = %v, %v; want %q", name, got, ok, cmd.Name)
		}
	})
}
