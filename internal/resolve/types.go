package resolve

import "github.com/nicoloboschi/dockerpyze/internal/config"

// PackageManager selects how dependencies are installed in the builder stage.
type PackageManager string

const (
	UV     PackageManager = "uv"
	Poetry PackageManager = "poetry"
)

// Defaults applied when the project does not say otherwise.
const (
	DefaultPythonVersion = "3.11"
	DefaultPoetryVersion = "1.8.3"

	// BaseImageFormat renders a python version into a base image.
	BaseImageFormat = "python:%s-slim-bookworm"

	// ToolchainPackage is always installed in the builder stage.
	ToolchainPackage = "gcc"

	// GitPackage is installed in the builder stage for git dependencies.
	GitPackage = "git"

	LatestTag = "latest"
)

// OCI label keys, in the order they are emitted.
const (
	LabelTitle    = "org.opencontainers.image.title"
	LabelVersion  = "org.opencontainers.image.version"
	LabelAuthors  = "org.opencontainers.image.authors"
	LabelLicenses = "org.opencontainers.image.licenses"
	LabelURL      = "org.opencontainers.image.url"
	LabelSource   = "org.opencontainers.image.source"
)

// Config is the build-ready result of resolution. Entrypoint is never empty
// and ImageTags has at least one element.
type Config struct {
	ImageName  string   `yaml:"image_name"`
	ImageTags  []string `yaml:"image_tags"`
	Entrypoint []string `yaml:"entrypoint"`
	BaseImage  string   `yaml:"base_image"`

	PackageManager PackageManager `yaml:"package_manager"`

	// InstallToolVersion is the poetry version pinned in the builder stage.
	// Empty for uv.
	InstallToolVersion string   `yaml:"install_tool_version,omitempty"`
	InstallArgs        []string `yaml:"install_args,omitempty"`

	Ports  []int        `yaml:"ports,omitempty"`
	Env    config.Pairs `yaml:"env,omitempty"`
	Labels config.Pairs `yaml:"labels"`

	BuildAptPackages   []string `yaml:"build_apt_packages"`
	RuntimeAptPackages []string `yaml:"runtime_apt_packages,omitempty"`

	ExtraBuildInstructions   []string `yaml:"extra_build_instructions,omitempty"`
	ExtraRuntimeInstructions []string `yaml:"extra_runtime_instructions,omitempty"`

	// DepsPackages and AppPackages are paths relative to the project root.
	DepsPackages []string `yaml:"deps_packages,omitempty"`
	AppPackages  []string `yaml:"app_packages,omitempty"`

	// Provenance maps a resolved field to the source that supplied it.
	Provenance config.Pairs `yaml:"provenance,omitempty"`
}

// References returns name:tag for every tag, primary first.
func (c *Config) References() []string {
	refs := make([]string, len(c.ImageTags))
	for i, tag := range c.ImageTags {
		refs[i] = c.ImageName + ":" + tag
	}
	return refs
}
