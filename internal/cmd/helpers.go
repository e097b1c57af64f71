package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/nicoloboschi/dockerpyze/internal/builder"
	"github.com/nicoloboschi/dockerpyze/internal/docker"
	"github.com/nicoloboschi/dockerpyze/internal/lock"
	"github.com/nicoloboschi/dockerpyze/internal/logging"
	"github.com/nicoloboschi/dockerpyze/internal/manifest"
	"github.com/nicoloboschi/dockerpyze/internal/ui"
)

// newEngine connects to the image builder. Tests replace it.
var newEngine builder.Engine = builder.DockerEngine

// newBuilder creates a Builder that prints to out and logs at the level
// selected by --debug.
func newBuilder(out io.Writer) (*builder.Builder, error) {
	logger, err := logging.New(logging.Level(rootOpts.debug))
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	b := builder.New(ui.NewConsole(out), logger)
	b.Engine = newEngine
	return b, nil
}

// printError writes err with a hint for the failures users can fix.
func printError(w io.Writer, err error) {
	console := ui.NewConsole(w)

	var buildErr *docker.BuildError
	if errors.As(err, &buildErr) {
		// The build log has already been replayed.
		console.Error("Image build failed")
		return
	}

	console.Error("Error: %v", err)

	switch {
	case errors.Is(err, manifest.ErrManifestNotFound):
		console.Hint("\nRun dockerpyze from a Python project or point --path at one.")
	case errors.Is(err, docker.ErrInvalidReference):
		console.Hint("\nSet a valid image name with 'name' in [tool.dpy] or DPY_NAME.")
	case errors.Is(err, lock.ErrLocked):
		console.Hint("\nWait for the other run to finish and try again.")
	case errors.Is(err, builder.ErrEngineUnavailable):
		console.Hint("\nIs the Docker daemon running? Use --generate to only write the Dockerfile.")
	}
}
