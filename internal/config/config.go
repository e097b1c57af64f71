// Package config handles project discovery and layered configuration sources.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// File names looked up in the project root.
const (
	ManifestFile     = "pyproject.toml"
	UVLockFile       = "uv.lock"
	PoetryLockFile   = "poetry.lock"
	DockerfileFile   = "Dockerfile"
	DockerIgnoreFile = ".dockerignore"
	DotEnvFile       = ".env"
)

// ErrNotDirectory is returned when the project path is not a directory.
var ErrNotDirectory = errors.New("project path is not a directory")

// Project holds the paths dockerpyze reads and writes for one Python project.
type Project struct {
	// Root is the real path of the project directory.
	Root string

	// Manifest is the path to pyproject.toml.
	Manifest string

	UVLock     string
	PoetryLock string

	// Dockerfile is where --generate writes its output.
	Dockerfile string

	DockerIgnore string
	DotEnv       string
}

// Load resolves path to a real directory and returns its Project.
// An empty path means the working directory.
func Load(path string) (*Project, error) {
	if path == "" {
		path = "."
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve project path: %w", err)
	}

	root, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve project path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat project path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, ErrNotDirectory)
	}

	return NewProject(root), nil
}

// NewProject returns the Project rooted at root without touching the filesystem.
func NewProject(root string) *Project {
	return &Project{
		Root:         root,
		Manifest:     filepath.Join(root, ManifestFile),
		UVLock:       filepath.Join(root, UVLockFile),
		PoetryLock:   filepath.Join(root, PoetryLockFile),
		Dockerfile:   filepath.Join(root, DockerfileFile),
		DockerIgnore: filepath.Join(root, DockerIgnoreFile),
		DotEnv:       filepath.Join(root, DotEnvFile),
	}
}

// Name returns the base name of the project directory.
func (p *Project) Name() string {
	return filepath.Base(p.Root)
}
