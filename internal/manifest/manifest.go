package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

// ErrManifestNotFound is returned when the project has no pyproject.toml.
var ErrManifestNotFound = errors.New("pyproject.toml not found")

// ParseError reports malformed TOML with its position.
type ParseError struct {
	Path   string
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s: line %d, column %d: %v", e.Path, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads the pyproject.toml at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: expected %s", ErrManifestNotFound, path)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return Parse(path, data)
}

// Parse decodes manifest content. path is only used in error messages.
func Parse(path string, content []byte) (*Manifest, error) {
	data := make(map[string]any)
	md, err := toml.Decode(string(content), &data)
	if err != nil {
		perr := &ParseError{Path: path, Err: err}
		var tomlErr toml.ParseError
		if errors.As(err, &tomlErr) {
			perr.Line = tomlErr.Position.Line
			perr.Column = tomlErr.Position.Col
			perr.Err = errors.New(tomlErr.Message)
		}
		return nil, perr
	}

	m := &Manifest{
		Path:  path,
		data:  data,
		order: make(map[string][]string),
	}

	seen := make(map[string]bool)
	for _, key := range md.Keys() {
		if len(key) == 0 {
			continue
		}
		parent := keyPath(key[:len(key)-1])
		full := keyPath(key)
		if seen[full] {
			continue
		}
		seen[full] = true
		m.order[parent] = append(m.order[parent], key[len(key)-1])
	}

	return m, nil
}
