package harness

import (
	"fmt"
	"strings"
)

// Registry is an ordered, immutable table of targets.
//
// Declaration order is backend priority. A Registry is built once and is
// safe for concurrent readers without locking.
type Registry struct {
	targets []Target
	index   map[string]int
}

// NewRegistry builds a registry from targets in priority order.
// It panics on an empty or duplicate name, or a target without
// CreateSurface; both are programming errors in a static table.
func NewRegistry(targets ...Target) *Registry {
	r := &Registry{
		targets: make([]Target, len(targets)),
		index:   make(map[string]int, len(targets)),
	}
	copy(r.targets, targets)
	for i, t := range r.targets {
		if t.Name == "" {
			panic(fmt.Sprintf("harness: target %d has no name", i))
		}
		if t.CreateSurface == nil {
			panic(fmt.Sprintf("harness: target %q has no CreateSurface", t.Name))
		}
		if _, dup := r.index[t.Name]; dup {
			panic(fmt.Sprintf("harness: duplicate target %q", t.Name))
		}
		r.index[t.Name] = i
	}
	return r
}

// Lookup returns the target with exactly the given name.
// An unknown name is not an error: callers skip it.
func (r *Registry) Lookup(name string) (Target, bool) {
	i, ok := r.index[name]
	if !ok {
		return Target{}, false
	}
	return r.targets[i], true
}

// List returns all targets in priority order.
func (r *Registry) List() []Target {
	out := make([]Target, len(r.targets))
	copy(out, r.targets)
	return out
}

// Names returns target names in priority order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.targets))
	for i, t := range r.targets {
		names[i] = t.Name
	}
	return names
}

// Len returns the number of targets.
func (r *Registry) Len() int { return len(r.targets) }

// Select resolves a target filter such as "software,native-gpu".
//
// An empty filter selects every target. Names are separated by commas or
// whitespace; duplicates are dropped and the filter order is kept. Names
// that match no target are returned in unknown so the caller can report
// and skip them.
func (r *Registry) Select(filter string) (selected []Target, unknown []string) {
	fields := strings.FieldsFunc(filter, func(c rune) bool {
		return c == ',' || c == ' ' || c == '\t' || c == '\n'
	})
	if len(fields) == 0 {
		return r.List(), nil
	}

	seen := make(map[string]bool, len(fields))
	for _, name := range fields {
		if seen[name] {
			continue
		}
		seen[name] = true
		t, ok := r.Lookup(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		selected = append(selected, t)
	}
	return selected, unknown
}
