package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// Env is an immutable-by-convention snapshot of environment variables.
type Env struct {
	vars map[string]string
}

// NewEnv returns an Env holding a copy of vars.
func NewEnv(vars map[string]string) *Env {
	e := &Env{vars: make(map[string]string, len(vars))}
	for k, v := range vars {
		e.vars[k] = v
	}
	return e
}

// FromOS snapshots the process environment.
func FromOS() *Env {
	e := &Env{vars: make(map[string]string)}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		e.vars[k] = v
	}
	return e
}

// LoadDotEnv merges the dotenv file at path into the snapshot. Variables that
// are already present are not overridden. A missing file is not an error.
func (e *Env) LoadDotEnv(path string) error {
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	for k, v := range vars {
		if _, ok := e.vars[k]; ok {
			continue
		}
		e.vars[k] = v
	}
	return nil
}

// Get returns the value of key.
func (e *Env) Get(key string) (string, bool) {
	if e == nil {
		return "", false
	}
	v, ok := e.vars[key]
	return v, ok
}

// WithPrefix returns the entries whose key starts with prefix, with the
// prefix stripped, sorted by key.
func (e *Env) WithPrefix(prefix string) []Entry {
	if e == nil {
		return nil
	}

	var entries []Entry
	for k, v := range e.vars {
		rest, ok := strings.CutPrefix(k, prefix)
		if !ok || rest == "" {
			continue
		}
		entries = append(entries, Entry{Key: rest, Value: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// Len returns the number of variables.
func (e *Env) Len() int {
	if e == nil {
		return 0
	}
	return len(e.vars)
}
