package config

import (
	"fmt"
	"sort"
	"strings"
)

// EnvPrefixes lists the environment prefixes, highest precedence first.
var EnvPrefixes = []string{"DOCKERIZE", "DPY", "DOCKERPYZE"}

// Source supplies raw values for tool-section fields. Fields are named by
// their manifest spelling, e.g. "apt-packages".
type Source interface {
	// Name identifies the source in provenance output.
	Name() string

	// Value returns the raw value of a scalar or list field.
	Value(field string) (any, bool)

	// Entries returns the entries of a mapping field in source order.
	Entries(field string) []Entry
}

// EnvSuffix converts a manifest field name to its environment spelling.
func EnvSuffix(field string) string {
	return strings.ToUpper(strings.ReplaceAll(field, "-", "_"))
}

// EnvSource reads <Prefix>_<FIELD> variables from an Env.
type EnvSource struct {
	Prefix string
	Env    *Env
}

// Name implements Source.
func (s EnvSource) Name() string {
	return "env:" + s.Prefix
}

// Value implements Source. Empty values count as unset.
func (s EnvSource) Value(field string) (any, bool) {
	v, ok := s.Env.Get(s.Prefix + "_" + EnvSuffix(field))
	if !ok || v == "" {
		return nil, false
	}
	return v, true
}

// Entries implements Source. Keys keep the case used in the environment.
func (s EnvSource) Entries(field string) []Entry {
	return s.Env.WithPrefix(s.Prefix + "_" + EnvSuffix(field) + "_")
}

// TableSource reads fields from a decoded manifest table.
type TableSource struct {
	Label string
	Table map[string]any

	// Order returns the document order of the keys of a nested table field.
	// When nil, mapping keys are sorted.
	Order func(field string) []string
}

// Name implements Source.
func (s TableSource) Name() string {
	return s.Label
}

// Value implements Source.
func (s TableSource) Value(field string) (any, bool) {
	v, ok := s.Table[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Entries implements Source.
func (s TableSource) Entries(field string) []Entry {
	m, ok := s.Table[field].(map[string]any)
	if !ok {
		return nil
	}

	var keys []string
	if s.Order != nil {
		keys = s.Order(field)
	}
	if len(keys) != len(m) {
		keys = make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	}

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		entries = append(entries, Entry{Key: k, Value: stringify(v)})
	}
	return entries
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

// Layers is an ordered list of sources, highest precedence first.
type Layers []Source

// DefaultLayers returns the environment prefixes followed by the manifest
// tool table.
func DefaultLayers(env *Env, table TableSource) Layers {
	layers := make(Layers, 0, len(EnvPrefixes)+1)
	for _, p := range EnvPrefixes {
		layers = append(layers, EnvSource{Prefix: p, Env: env})
	}
	return append(layers, table)
}

// Lookup returns the value of field from the first source that has it, along
// with that source's name.
func (l Layers) Lookup(field string) (any, string, bool) {
	for _, s := range l {
		if v, ok := s.Value(field); ok {
			return v, s.Name(), true
		}
	}
	return nil, "", false
}

// Mapping merges the entries of field from the lowest to the highest
// precedence source. Later keys override in place; new keys append.
func (l Layers) Mapping(field string) Pairs {
	var out Pairs
	for i := len(l) - 1; i >= 0; i-- {
		for _, e := range l[i].Entries(field) {
			out.Set(e.Key, e.Value)
		}
	}
	return out
}

// Names returns the source names in precedence order.
func (l Layers) Names() []string {
	names := make([]string, len(l))
	for i, s := range l {
		names[i] = s.Name()
	}
	return names
}
