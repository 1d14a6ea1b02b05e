package state

import (
	"fmt"
	"slices"
)

// Map is a JSON-shaped partition value.
type Map = map[string]any

// GlobalsKey is the config key listing external binding names.
const GlobalsKey = "globals"

// State is the story state bag. It is not safe for concurrent use; the engine
// that owns it serializes all access.
type State struct {
	s Map
	m Map
	g Map
	c Map

	bindings map[string]any
	names    []string
}

// Option configures a State at construction.
type Option func(*State)

// WithConfig sets the config partition.
func WithConfig(c Map) Option {
	return func(st *State) {
		st.c = normalize(c)
	}
}

// WithGlobals sets the globals partition.
func WithGlobals(g Map) Option {
	return func(st *State) {
		st.g = normalize(g)
	}
}

// WithBindings supplies the source for external bindings. Only the names
// declared under the config "globals" key are taken from source.
func WithBindings(source map[string]any) Option {
	return func(st *State) {
		st.bindings = make(map[string]any, len(source))
		for k, v := range source {
			st.bindings[k] = v
		}
	}
}

// New creates an empty State.
func New(opts ...Option) *State {
	st := &State{s: Map{}, m: Map{}, g: Map{}, c: Map{}}
	for _, opt := range opts {
		opt(st)
	}
	st.bind(st.bindings)
	return st
}

// From creates a State that shares config and globals with other. The
// partitions are shared by reference; callers needing isolation must Clone
// them explicitly. state and meta start empty. When no WithBindings option is
// given, binding values are inherited from other.
func From(other *State, opts ...Option) *State {
	st := &State{s: Map{}, m: Map{}, g: Map{}, c: Map{}}
	if other != nil {
		st.c = other.c
		st.g = other.g
		st.bindings = other.bindings
	}
	for _, opt := range opts {
		opt(st)
	}
	st.bind(st.bindings)
	return st
}

// bind keeps only the binding names declared in config.
func (st *State) bind(source map[string]any) {
	st.names = nil
	declared := bindingNames(st.c)
	if len(declared) == 0 {
		st.bindings = nil
		return
	}
	bound := make(map[string]any, len(declared))
	for _, name := range declared {
		bound[name] = source[name]
	}
	st.bindings = bound
	st.names = declared
}

func bindingNames(c Map) []string {
	raw, ok := c[GlobalsKey]
	if !ok {
		return nil
	}
	var names []string
	switch v := raw.(type) {
	case []string:
		names = append(names, v...)
	case []any:
		for _, n := range v {
			if s, ok := n.(string); ok && s != "" {
				names = append(names, s)
			}
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// State returns the working-memory partition.
func (st *State) State() Map { return st.s }

// SetState replaces the working-memory partition.
func (st *State) SetState(v Map) { st.s = normalize(v) }

// Meta returns the per-transition metadata partition.
func (st *State) Meta() Map { return st.m }

// SetMeta replaces the metadata partition.
func (st *State) SetMeta(v Map) { st.m = normalize(v) }

// Globals returns the persistent globals partition.
func (st *State) Globals() Map { return st.g }

// SetGlobals replaces the globals partition.
func (st *State) SetGlobals(v Map) { st.g = normalize(v) }

// Config returns the story configuration partition.
func (st *State) Config() Map { return st.c }

// SetConfig replaces the configuration partition and re-evaluates the
// declared binding names.
func (st *State) SetConfig(v Map) {
	st.c = normalize(v)
	st.bind(st.bindings)
}

// BindingNames returns the external binding names declared by config.
func (st *State) BindingNames() []string {
	return slices.Clone(st.names)
}

// Binding reads an external binding.
func (st *State) Binding(name string) (any, bool) {
	if st.bindings == nil {
		return nil, false
	}
	v, ok := st.bindings[name]
	return v, ok
}

// SetBinding overwrites an external binding. Only declared names are writable.
func (st *State) SetBinding(name string, v any) error {
	if _, ok := st.Binding(name); !ok {
		return fmt.Errorf("binding %q is not declared in config %q", name, GlobalsKey)
	}
	st.bindings[name] = v
	return nil
}

func normalize(v Map) Map {
	if v == nil {
		return Map{}
	}
	return v
}
