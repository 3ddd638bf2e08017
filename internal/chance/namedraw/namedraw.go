// Package namedraw turns raw pasted text into the candidate list for a name draw.
//
// Every step is pure and order-preserving: the processed list is always a
// subsequence of the base list in its original relative order.
package namedraw

import (
	"strings"

	"golang.org/x/text/cases"
)

// Rules toggles the optional filters of the pipeline.
type Rules struct {
	RemoveDuplicates bool
	// CaseInsensitive applies to duplicate removal only.
	CaseInsensitive bool
	// ExcludeWinner removes past winners and records each new winner.
	ExcludeWinner bool
}

// DefaultRules returns the rules a fresh draw starts with.
func DefaultRules() Rules {
	return Rules{RemoveDuplicates: true, CaseInsensitive: true}
}

// Fold returns the caseless form used for case-insensitive comparison.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// SplitLines splits raw text into trimmed, non-empty lines.
func SplitLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Dedupe drops repeated entries, keeping the first occurrence.
//
// Postcondition: Dedupe(Dedupe(l, ci), ci) equals Dedupe(l, ci).
func Dedupe(list []string, caseInsensitive bool) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, n := range list {
		key := n
		if caseInsensitive {
			key = Fold(n)
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Exclude drops every entry whose folded form is in excluded.
func Exclude(list []string, excluded *Excluded) []string {
	if excluded.Len() == 0 {
		return list
	}
	out := make([]string, 0, len(list))
	for _, n := range list {
		if !excluded.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

// Process runs the full pipeline over raw text.
func Process(raw string, rules Rules, excluded *Excluded) []string {
	list := SplitLines(raw)
	if rules.RemoveDuplicates {
		list = Dedupe(list, rules.CaseInsensitive)
	}
	if rules.ExcludeWinner {
		list = Exclude(list, excluded)
	}
	return list
}

// Excluded is the set of past winners, compared case-insensitively.
// The zero value is an empty set.
type Excluded struct {
	names map[string]struct{}
}

// Add records name; it reports whether the set grew.
func (e *Excluded) Add(name string) bool {
	if e.names == nil {
		e.names = make(map[string]struct{})
	}
	key := Fold(name)
	if _, ok := e.names[key]; ok {
		return false
	}
	e.names[key] = struct{}{}
	return true
}

// Has reports whether name was excluded.
func (e *Excluded) Has(name string) bool {
	if e == nil {
		return false
	}
	_, ok := e.names[Fold(name)]
	return ok
}

// Len returns the number of excluded names.
func (e *Excluded) Len() int {
	if e == nil {
		return 0
	}
	return len(e.names)
}

// Clear empties the set.
func (e *Excluded) Clear() { e.names = nil }
