package manifest

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSection indicates a well-known manifest key holds the wrong type.
var ErrInvalidSection = errors.New("invalid manifest section")

// tablePaths must be tables when present.
var tablePaths = [][]string{
	{"project"},
	{"project", "scripts"},
	{"project", "urls"},
	{"tool"},
	{"tool", ToolDPY},
	{"tool", ToolDockerize},
	{"tool", "poetry"},
	{"tool", "poetry", "dependencies"},
	{"tool", "poetry", "scripts"},
	{"tool", "uv", "sources"},
}

// Validate checks that the sections dockerpyze reads have the expected
// shape. It does not interpret values.
func (m *Manifest) Validate() error {
	for _, path := range tablePaths {
		v, ok := m.Get(path...)
		if !ok {
			continue
		}
		if _, ok := v.(map[string]any); !ok {
			return fmt.Errorf("%w: %s must be a table, got %T", ErrInvalidSection, strings.Join(path, "."), v)
		}
	}

	if v, ok := m.Get("tool", "poetry", "packages"); ok && toTableSlice(v) == nil {
		return fmt.Errorf("%w: tool.poetry.packages must be an array of tables, got %T", ErrInvalidSection, v)
	}

	return nil
}
