package manifest

import (
	"fmt"
	"sort"
)

// Get returns the value at path.
func (m *Manifest) Get(path ...string) (any, bool) {
	var cur any = m.data
	for _, seg := range path {
		table, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = table[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Table returns the table at path.
func (m *Manifest) Table(path ...string) (map[string]any, bool) {
	v, ok := m.Get(path...)
	if !ok {
		return nil, false
	}
	table, ok := v.(map[string]any)
	return table, ok
}

// String returns the string at path, or "" when absent or not a string.
func (m *Manifest) String(path ...string) string {
	v, ok := m.Get(path...)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Strings returns the list of strings at path. Non-string items are
// formatted with %v.
func (m *Manifest) Strings(path ...string) []string {
	v, ok := m.Get(path...)
	if !ok {
		return nil
	}
	s, _ := toStringSlice(v)
	return s
}

// Tables returns the array of tables at path, accepting both [[a.b]] headers
// and inline arrays of tables.
func (m *Manifest) Tables(path ...string) []map[string]any {
	v, ok := m.Get(path...)
	if !ok {
		return nil
	}
	return toTableSlice(v)
}

// Keys returns the keys of the table at path in document order.
func (m *Manifest) Keys(path ...string) []string {
	table, ok := m.Table(path...)
	if !ok {
		return nil
	}

	keys := make([]string, 0, len(table))
	seen := make(map[string]bool, len(table))
	for _, k := range m.order[keyPath(path)] {
		if _, ok := table[k]; ok && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}

	// Keys the metadata did not report still get a stable position.
	var rest []string
	for k := range table {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// ToolSection returns the dockerpyze tool table and its dotted name. The
// table is nil when neither spelling is present.
func (m *Manifest) ToolSection() (string, map[string]any) {
	for _, name := range ToolNames {
		if table, ok := m.Table("tool", name); ok {
			return "tool." + name, table
		}
	}
	return "", nil
}

// ToolKeys returns the document order of the keys of a table nested in the
// tool section, e.g. ToolKeys("env").
func (m *Manifest) ToolKeys(field string) []string {
	name, _ := m.ToolSection()
	if name == "" {
		return nil
	}
	return m.Keys("tool", name[len("tool."):], field)
}

// toStringSlice attempts to convert a value to []string.
// Returns the slice and true if successful, nil and false otherwise.
func toStringSlice(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		result := make([]string, len(v))
		for i, item := range v {
			result[i] = fmt.Sprintf("%v", item)
		}
		return result, true
	default:
		return nil, false
	}
}

func toTableSlice(value any) []map[string]any {
	switch v := value.(type) {
	case []map[string]any:
		return v
	case []any:
		result := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if t, ok := item.(map[string]any); ok {
				result = append(result, t)
			}
		}
		return result
	default:
		return nil
	}
}
