package builder

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/nicoloboschi/dockerpyze/internal/config"
	"github.com/nicoloboschi/dockerpyze/internal/docker"
	"github.com/nicoloboschi/dockerpyze/internal/fileutil"
	"github.com/nicoloboschi/dockerpyze/internal/lock"
	"github.com/nicoloboschi/dockerpyze/internal/manifest"
	"github.com/nicoloboschi/dockerpyze/internal/render"
	"github.com/nicoloboschi/dockerpyze/internal/resolve"
	"github.com/nicoloboschi/dockerpyze/internal/ui"
)

// ErrEngineUnavailable is returned when no image builder can be reached.
var ErrEngineUnavailable = errors.New("connect to docker")

// Options are the per-invocation switches.
type Options struct {
	// Path is the project root. Empty means the working directory.
	Path string

	// Verbose prints the Dockerfile and streams the build output.
	Verbose bool

	// Generate writes <root>/Dockerfile instead of building.
	Generate bool
}

// Plan is everything known about a project before anything is written or
// built.
type Plan struct {
	Project    *config.Project
	Config     *resolve.Config
	Dockerfile string
}

// ImageBuilder builds images from a context directory.
type ImageBuilder interface {
	BuildImage(ctx context.Context, opts docker.BuildOptions) (*docker.BuildResult, error)
	Close() error
}

// Engine connects to an ImageBuilder.
type Engine func(ctx context.Context) (ImageBuilder, error)

// DockerEngine connects to the local Docker daemon.
func DockerEngine(ctx context.Context) (ImageBuilder, error) {
	client, err := docker.NewClient()
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// Builder runs dockerpyze against a project.
type Builder struct {
	Console *ui.Console
	Logger  logr.Logger
	Engine  Engine

	// Environ snapshots the environment. Nil uses the process environment.
	Environ func() *config.Env

	// PythonVersion overrides the local interpreter probe.
	PythonVersion resolve.VersionProbe

	// LockDir holds the per-project run locks. Empty uses the default.
	LockDir string

	now    func() time.Time
	remove func(string) error
}

// New returns a Builder printing to console and building with Docker.
func New(console *ui.Console, logger logr.Logger) *Builder {
	if console == nil {
		console = ui.NewConsole(nil)
	}
	return &Builder{
		Console: console,
		Logger:  logger,
		Engine:  DockerEngine,
		Environ: config.FromOS,
		now:     time.Now,
		remove:  os.Remove,
	}
}

// Plan loads, resolves and renders the project at opts.Path.
func (b *Builder) Plan(opts Options) (*Plan, error) {
	project, err := config.Load(opts.Path)
	if err != nil {
		return nil, err
	}
	b.Logger.V(1).Info("loaded project", "root", project.Root)

	env := b.environ()
	if err := env.LoadDotEnv(project.DotEnv); err != nil {
		return nil, err
	}
	b.Logger.V(1).Info("environment loaded", "variables", env.Len(), "dotenv", project.DotEnv)

	m, err := manifest.Load(project.Manifest)
	if err != nil {
		return nil, err
	}

	resolver := resolve.New(project, b.Console)
	resolver.Logger = b.Logger
	if b.PythonVersion != nil {
		resolver.PythonVersion = b.PythonVersion
	}

	cfg, err := resolver.Resolve(m, env)
	if err != nil {
		return nil, err
	}

	text, err := render.Render(cfg, project.Root, b.Console)
	if err != nil {
		return nil, fmt.Errorf("render Dockerfile: %w", err)
	}

	return &Plan{Project: project, Config: cfg, Dockerfile: text}, nil
}

// Run plans the project and then generates or builds. Concurrent runs
// against the same project root are rejected with lock.ErrLocked.
func (b *Builder) Run(ctx context.Context, opts Options) error {
	plan, err := b.Plan(opts)
	if err != nil {
		return err
	}

	return lock.WithLock(b.LockDir, plan.Project.Root, func() error {
		if opts.Generate {
			return b.Generate(plan, opts.Verbose)
		}
		_, err := b.Build(ctx, plan, opts.Verbose)
		return err
	})
}

// Generate writes the plan's Dockerfile into the project root. With
// verbose set the change against an existing Dockerfile is printed.
func (b *Builder) Generate(plan *Plan, verbose bool) error {
	path := plan.Project.Dockerfile

	if verbose {
		previous, err := os.ReadFile(path)
		switch {
		case err == nil:
			if diff := unifiedDiff(string(previous), plan.Dockerfile, config.DockerfileFile); diff != "" {
				b.Console.Print(diff)
			} else {
				b.Console.Info("Dockerfile is unchanged")
			}
		case !errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("read existing Dockerfile: %w", err)
		}
	}

	if err := fileutil.WriteFileAtomic(path, []byte(plan.Dockerfile), 0644); err != nil {
		return fmt.Errorf("write Dockerfile: %w", err)
	}

	b.Console.Info("Stored Dockerfile to %s 📄", path)
	return nil
}

// Build sends the plan to the engine. On an engine failure the build log is
// replayed before the error is returned.
func (b *Builder) Build(ctx context.Context, plan *Plan, verbose bool) (*docker.BuildResult, error) {
	cfg := plan.Config

	if verbose {
		b.Console.Print("Building with dockerfile content: \n===[Dockerfile]==\n" + plan.Dockerfile + "\n===[/Dockerfile]==\n\n")
	}

	cleanup, err := b.ensureDockerIgnore(plan.Project.DockerIgnore)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	refs := cfg.References()
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: %s: no tags", docker.ErrInvalidReference, cfg.ImageName)
	}
	b.Console.Info("Building image: %s 🔨", refs[0])

	engine, err := b.Engine(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
	}
	defer engine.Close()

	buildOpts := docker.BuildOptions{
		ContextDir: plan.Project.Root,
		Dockerfile: plan.Dockerfile,
		Image:      cfg.ImageName,
		Tags:       cfg.ImageTags,
		Logger:     b.Logger,
	}
	if verbose {
		buildOpts.Output = b.Console.Writer()
		buildOpts.IsTerminal = b.Console.IsTerminal()
	}

	start := b.clock()
	result, err := engine.BuildImage(ctx, buildOpts)
	if err != nil {
		var buildErr *docker.BuildError
		if errors.As(err, &buildErr) {
			b.replay(buildErr)
		}
		return nil, err
	}
	elapsed := b.clock().Sub(start)

	b.Console.Success("Successfully built images (%.1fs)", elapsed.Seconds())
	for _, ref := range result.References {
		b.Console.Print("  - " + ref + "\n")
	}
	b.Logger.V(1).Info("build finished", "image", result.ImageID, "elapsed", elapsed.String())

	return result, nil
}

func (b *Builder) replay(buildErr *docker.BuildError) {
	b.Console.Error("Build failed, printing execution logs:")
	b.Console.Print("\n")
	for _, line := range buildErr.Log {
		if !strings.HasSuffix(line, "\n") {
			line += "\n"
		}
		b.Console.Print(line)
	}
	b.Console.Print("Error: " + buildErr.Message + "\n")
}

func (b *Builder) clock() time.Time {
	if b.now == nil {
		return time.Now()
	}
	return b.now()
}

func (b *Builder) removeFile(path string) error {
	if b.remove == nil {
		return os.Remove(path)
	}
	return b.remove(path)
}

func (b *Builder) environ() *config.Env {
	if b.Environ == nil {
		return config.FromOS()
	}
	return b.Environ()
}
