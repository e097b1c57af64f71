package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/nicoloboschi/dockerpyze/internal/builder"
	"github.com/nicoloboschi/dockerpyze/internal/docker"
)

// resetRootCmd resets the root command state for test isolation.
// This must be called at the beginning of each test to ensure
// cobra command state doesn't leak between tests.
func resetRootCmd(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	// Reset args to empty slice (not nil, which would use os.Args)
	rootCmd.SetArgs([]string{})
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootOpts.path, rootOpts.debug, rootOpts.generate = "", false, false
	checkOnly = false
	unmark := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.Flags().VisitAll(unmark)
	rootCmd.PersistentFlags().VisitAll(unmark)
	for _, cmd := range rootCmd.Commands() {
		cmd.SetContext(context.TODO())
		cmd.Flags().VisitAll(unmark)
	}
	return buf
}

// executeCmd executes the root command with the given args and returns
// stdout and stderr separately.
func executeCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetRootCmd(t)

	oldNoColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = oldNoColor })

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	// Important: Set args BEFORE setting output buffers
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// fakeEngine records builds instead of talking to a daemon.
type fakeEngine struct {
	builds []docker.BuildOptions
}

func (f *fakeEngine) BuildImage(_ context.Context, opts docker.BuildOptions) (*docker.BuildResult, error) {
	f.builds = append(f.builds, opts)
	refs, err := docker.References(opts.Image, opts.Tags)
	if err != nil {
		return nil, err
	}
	return &docker.BuildResult{ImageID: "sha256:feedface", References: refs}, nil
}

func (f *fakeEngine) Close() error { return nil }

// useFakeEngine routes builds to a fake for the duration of the test.
func useFakeEngine(t *testing.T) *fakeEngine {
	t.Helper()
	engine := &fakeEngine{}
	old := newEngine
	newEngine = func(context.Context) (builder.ImageBuilder, error) { return engine, nil }
	t.Cleanup(func() { newEngine = old })
	return engine
}

const testPyproject = `
[tool.poetry]
name = "my-app"
version = "0.1.0"
packages = [{ include = "app" }]

[tool.poetry.dependencies]
python = "^3.12"

[tool.dpy]
ports = [8000]
`

// writeProject creates a poetry project with a single package.
func writeProject(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "my-app")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "app"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "app", "__init__.py"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pyproject.toml"), []byte(testPyproject), 0644))
	return root
}
