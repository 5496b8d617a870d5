package grammar

import (
	"fmt"
	"sort"

	"statescan/internal/scanner"
)

// Entry describes a bundled grammar.
type Entry struct {
	Name    string
	Summary string
	Machine scanner.StateMachine[Kind]
}

var registry = map[string]Entry{
	"arith": {
		Name:    "arith",
		Summary: "integers, identifiers, operators and whitespace",
		Machine: Arith{},
	},
	"words": {
		Name:    "words",
		Summary: "whitespace runs and word runs",
		Machine: Words{},
	},
	"words-nospace": {
		Name:    "words-nospace",
		Summary: "word runs only; whitespace is skipped",
		Machine: Words{DropSpace: true},
	},
}

// Lookup returns the grammar registered under name.
func Lookup(name string) (scanner.StateMachine[Kind], error) {
	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown grammar %q (available: %v)", name, Names())
	}
	return e.Machine, nil
}

// Entries returns all bundled grammars sorted by name.
func Entries() []Entry {
	out := make([]Entry, 0, len(registry))
	for _, e := range registry {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the sorted grammar names.
func Names() []string {
	entries := Entries()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}
