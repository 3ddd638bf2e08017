package command

import (
	"fmt"
	"slices"
	"strings"
)

// Registry resolves typed words to the session commands they invoke.
type Registry struct {
	words  map[string]*Command // lowercased name or alias
	sorted []*Command
}

// NewRegistry indexes cmds by name and alias.
//
// Precondition: every command has a name; names and aliases are unique
// ignoring case.
// Postcondition: Returns a Registry, or an error naming the first clash.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{words: make(map[string]*Command, len(cmds)*2)}
	for i := range cmds {
		cmd := &cmds[i]
		if strings.TrimSpace(cmd.Name) == "" {
			return nil, fmt.Errorf("command #%d has no name", i)
		}
		for _, w := range append([]string{cmd.Name}, cmd.Aliases...) {
			key := strings.ToLower(w)
			if prev, taken := r.words[key]; taken {
				return nil, fmt.Errorf("%q is claimed by both %s and %s", key, prev.Name, cmd.Name)
			}
			r.words[key] = cmd
		}
		r.sorted = append(r.sorted, cmd)
	}
	slices.SortFunc(r.sorted, func(a, b *Command) int { return strings.Compare(a.Name, b.Name) })
	return r, nil
}

// DefaultRegistry indexes BuiltinCommands. It panics if the table clashes.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic("command table: " + err.Error())
	}
	return r
}

// Resolve finds the command a word names, ignoring case.
func (r *Registry) Resolve(word string) (*Command, bool) {
	cmd, ok := r.words[strings.ToLower(word)]
	return cmd, ok
}

// Commands lists every command once, ordered by name.
func (r *Registry) Commands() []*Command {
	return slices.Clone(r.sorted)
}

// CommandsByCategory groups Commands by Category, keeping name order.
func (r *Registry) CommandsByCategory() map[string][]*Command {
	out := make(map[string][]*Command)
	for _, cmd := range r.sorted {
		out[cmd.Category] = append(out[cmd.Category], cmd)
	}
	return out
}
