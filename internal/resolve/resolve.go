package resolve

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/go-logr/logr"

	"github.com/nicoloboschi/dockerpyze/internal/config"
	"github.com/nicoloboschi/dockerpyze/internal/fileutil"
	"github.com/nicoloboschi/dockerpyze/internal/manifest"
	"github.com/nicoloboschi/dockerpyze/internal/ui"
)

// Provenance values for fields that no layer supplied.
const (
	SourceInferred = "inferred"
	SourceDefault  = "default"
)

// Resolver turns a manifest and an environment snapshot into a Config.
type Resolver struct {
	// Project supplies the lock file paths and the fallback image name.
	Project *config.Project

	Reporter ui.Reporter
	Logger   logr.Logger

	// PythonVersion probes the local interpreter for `python = "*"`.
	PythonVersion VersionProbe
}

// New returns a Resolver for project.
func New(project *config.Project, reporter ui.Reporter) *Resolver {
	if reporter == nil {
		reporter = ui.Discard
	}
	return &Resolver{
		Project:       project,
		Reporter:      reporter,
		PythonVersion: LocalPythonVersion,
	}
}

// Layers returns the configuration sources for m in precedence order.
func Layers(m *manifest.Manifest, env *config.Env) config.Layers {
	name, table := m.ToolSection()
	label := "manifest"
	if name != "" {
		label += ":" + name
	}
	return config.DefaultLayers(env, config.TableSource{
		Label: label,
		Table: table,
		Order: m.ToolKeys,
	})
}

// Resolve computes the build configuration.
func (r *Resolver) Resolve(m *manifest.Manifest, env *config.Env) (*Config, error) {
	if err := m.Validate(); err != nil {
		return nil, &ResolutionError{Field: "manifest", Err: err}
	}

	layers := Layers(m, env)
	r.Logger.V(1).Info("configuration sources", "precedence", layers.Names())

	tool, err := DecodeToolSection(layers)
	if err != nil {
		return nil, err
	}
	for _, s := range tool.Sources {
		r.Logger.V(1).Info("field supplied", "field", s.Key, "source", s.Value)
	}

	cfg := &Config{}
	prov := &cfg.Provenance
	fieldSource := func(field, fallback string) string {
		if s, ok := tool.Sources.Get(field); ok {
			return s
		}
		return fallback
	}

	cfg.PackageManager, err = r.packageManager(m)
	if err != nil {
		return nil, err
	}
	prov.Set("package_manager", SourceInferred)

	if cfg.PackageManager == Poetry {
		if tool.PoetryVersion != "" {
			cfg.InstallToolVersion = tool.PoetryVersion
			prov.Set("install_tool_version", fieldSource(FieldPoetryVersion, ""))
		} else {
			v, source, err := r.poetryVersion()
			if err != nil {
				return nil, err
			}
			cfg.InstallToolVersion = v
			prov.Set("install_tool_version", source)
		}
		cfg.InstallArgs = tool.BuildInstallArgs
	}

	version := projectVersion(m)

	switch {
	case tool.Name != "":
		cfg.ImageName = tool.Name
		prov.Set("image_name", fieldSource(FieldName, ""))
	case projectName(m) != "":
		cfg.ImageName = projectName(m)
		prov.Set("image_name", SourceInferred)
	default:
		cfg.ImageName = r.Project.Name()
		prov.Set("image_name", SourceDefault)
	}

	switch {
	case len(tool.Tags) > 0:
		cfg.ImageTags = tool.Tags
		prov.Set("image_tags", fieldSource(FieldTags, ""))
	case version != "":
		cfg.ImageTags = []string{version, LatestTag}
		prov.Set("image_tags", SourceInferred)
	default:
		cfg.ImageTags = []string{LatestTag}
		prov.Set("image_tags", SourceDefault)
	}

	if len(tool.Entrypoint) > 0 {
		cfg.Entrypoint = tool.Entrypoint
		prov.Set("entrypoint", fieldSource(FieldEntrypoint, ""))
	} else {
		ep, err := inferEntrypoint(m)
		if err != nil {
			return nil, err
		}
		cfg.Entrypoint = ep
		prov.Set("entrypoint", SourceInferred)
	}

	cfg.BaseImage = r.baseImage(m, tool)
	prov.Set("base_image", fieldSource(FieldBaseImage, fieldSource(FieldPython, SourceInferred)))

	cfg.RuntimeAptPackages = dedupe(tool.AptPackages)
	build := append([]string{}, tool.BuildAptPackages...)
	build = append(build, ToolchainPackage)
	if hasGitDependency(m) {
		build = append(build, GitPackage)
	}
	cfg.BuildAptPackages = dedupe(build)

	cfg.AppPackages = appPackages(m)
	cfg.DepsPackages = depsPackages(m)

	cfg.Ports = tool.Ports
	cfg.Env = tool.Env
	cfg.Labels = buildLabels(m, cfg.ImageName, tool.Labels)
	cfg.ExtraBuildInstructions = tool.ExtraBuildInstructions
	cfg.ExtraRuntimeInstructions = tool.ExtraRuntimeInstructions

	for _, field := range []string{FieldPorts, FieldAptPackages, FieldBuildAptPackages, FieldBuildInstallArgs, FieldExtraBuildInstructions, FieldExtraRuntimeInstructions} {
		if s, ok := tool.Sources.Get(field); ok {
			prov.Set(field, s)
		}
	}

	r.Logger.V(1).Info("configuration resolved",
		"image", cfg.ImageName, "tags", cfg.ImageTags, "packageManager", cfg.PackageManager, "baseImage", cfg.BaseImage,
		"env", cfg.Env.Keys(), "labels", cfg.Labels.Keys())

	return cfg, nil
}

func (r *Resolver) report() ui.Reporter {
	if r.Reporter == nil {
		return ui.Discard
	}
	return r.Reporter
}

// packageManager picks uv or poetry from the lock files and dependencies.
func (r *Resolver) packageManager(m *manifest.Manifest) (PackageManager, error) {
	uvLock, err := fileutil.Exists(r.Project.UVLock)
	if err != nil {
		return "", fmt.Errorf("check %s: %w", config.UVLockFile, err)
	}
	poetryLock, err := fileutil.Exists(r.Project.PoetryLock)
	if err != nil {
		return "", fmt.Errorf("check %s: %w", config.PoetryLockFile, err)
	}

	pm := UV
	switch {
	case uvLock:
	case poetryLock:
		pm = Poetry
	default:
		if deps, ok := m.Table("tool", "poetry", "dependencies"); ok && len(deps) > 0 {
			pm = Poetry
		}
	}

	if pm == UV {
		r.report().Info("Using 'uv' as package manager ⚡️")
	} else {
		r.report().Info("Using 'poetry' as package manager 🚀")
	}
	return pm, nil
}

// poetryVersion pins the poetry release that generated the lock file.
func (r *Resolver) poetryVersion() (string, string, error) {
	v, err := lockPoetryVersion(r.Project.PoetryLock)
	if err == nil {
		return v, "inferred:" + config.PoetryLockFile, nil
	}
	if !isLockFallback(err) {
		return "", "", err
	}

	if errors.Is(err, fs.ErrNotExist) {
		r.report().Info("No %s found, using poetry %s", config.PoetryLockFile, DefaultPoetryVersion)
	} else {
		r.report().Warning("Could not read version from %s, falling back to poetry %s: %v", config.PoetryLockFile, DefaultPoetryVersion, err)
	}
	return DefaultPoetryVersion, SourceDefault, nil
}

// declaredPython returns the python requirement from poetry dependencies,
// given as a string or as a table with a version key, or else from
// project.requires-python.
func declaredPython(m *manifest.Manifest) string {
	switch v, _ := m.Get("tool", "poetry", "dependencies", "python"); dep := v.(type) {
	case string:
		if dep != "" {
			return dep
		}
	case map[string]any:
		if version, ok := dep["version"].(string); ok && version != "" {
			return version
		}
	}
	return m.String("project", "requires-python")
}

// baseImage applies base-image, then python, then the declared requirement.
func (r *Resolver) baseImage(m *manifest.Manifest, tool *ToolSection) string {
	if tool.BaseImage != "" {
		return tool.BaseImage
	}
	if tool.Python != "" {
		return fmt.Sprintf(BaseImageFormat, tool.Python)
	}

	declared := declaredPython(m)
	if declared == "" {
		r.report().Info("No python version specified in pyproject.toml, using %s", DefaultPythonVersion)
		return fmt.Sprintf(BaseImageFormat, DefaultPythonVersion)
	}

	version, rule, ok := ExtractPythonVersion(declared, r.PythonVersion)
	switch {
	case !ok:
		r.report().Info("Declared python version %q is too complex, using default: %s", declared, DefaultPythonVersion)
		version = DefaultPythonVersion
	case rule == "any":
		r.report().Info("Python version is too generic (*), using same as system: %s", version)
	default:
		r.report().Info("Python version extracted from project configuration: %s", version)
	}
	return fmt.Sprintf(BaseImageFormat, version)
}
