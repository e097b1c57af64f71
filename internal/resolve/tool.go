package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/docker/go-connections/nat"
	"github.com/hashicorp/go-multierror"
	"github.com/mattn/go-shellwords"

	"github.com/nicoloboschi/dockerpyze/internal/config"
)

// Tool section field names, in manifest spelling.
const (
	FieldName                     = "name"
	FieldTags                     = "tags"
	FieldEntrypoint               = "entrypoint"
	FieldPython                   = "python"
	FieldPorts                    = "ports"
	FieldEnv                      = "env"
	FieldLabels                   = "labels"
	FieldAptPackages              = "apt-packages"
	FieldBuildAptPackages         = "build-apt-packages"
	FieldBuildInstallArgs         = "build-poetry-install-args"
	FieldBaseImage                = "base-image"
	FieldExtraBuildInstructions   = "extra-build-instructions"
	FieldExtraRuntimeInstructions = "extra-runtime-instructions"
	FieldPoetryVersion            = "poetry-version"
)

// ToolSection holds the dockerpyze options after layering environment
// variables over the manifest tool table. Unset fields are zero.
type ToolSection struct {
	Name                     string
	Tags                     []string
	Entrypoint               []string
	Python                   string
	Ports                    []int
	Env                      config.Pairs
	Labels                   config.Pairs
	AptPackages              []string
	BuildAptPackages         []string
	BuildInstallArgs         []string
	BaseImage                string
	ExtraBuildInstructions   []string
	ExtraRuntimeInstructions []string
	PoetryVersion            string

	// Sources records which layer supplied each set field.
	Sources config.Pairs
}

// ErrShellOperator is returned when a string entrypoint contains an unquoted
// shell operator such as &&, ;, | or a redirection.
var ErrShellOperator = errors.New("shell operators need an explicit list or a single-element shell-form entrypoint")

// splitter turns a string value into list items.
type splitter func(string) ([]string, error)

func splitFields(s string) ([]string, error) {
	return strings.Fields(s), nil
}

func splitShellWords(s string) ([]string, error) {
	p := shellwords.NewParser()
	args, err := p.Parse(s)
	if err != nil {
		return nil, err
	}
	// The parser stops at the first unquoted operator.
	if p.Position != -1 {
		return nil, fmt.Errorf("%w: %q", ErrShellOperator, string([]rune(s)[p.Position:]))
	}
	return args, nil
}

func splitLines(s string) ([]string, error) {
	s = strings.Trim(s, "\n")
	if s == "" {
		return nil, nil
	}
	return strings.Split(s, "\n"), nil
}

// toolDecoder collects every decode failure instead of stopping at the first.
type toolDecoder struct {
	layers  config.Layers
	sources config.Pairs
	errs    *multierror.Error
}

// DecodeToolSection reads every tool field from layers. All type errors are
// reported together in one ResolutionError.
func DecodeToolSection(layers config.Layers) (*ToolSection, error) {
	d := &toolDecoder{layers: layers}

	t := &ToolSection{
		Name:                     d.str(FieldName),
		Tags:                     d.list(FieldTags, splitFields),
		Entrypoint:               d.list(FieldEntrypoint, splitShellWords),
		Python:                   d.str(FieldPython),
		Ports:                    d.ports(FieldPorts),
		Env:                      layers.Mapping(FieldEnv),
		Labels:                   layers.Mapping(FieldLabels),
		AptPackages:              d.list(FieldAptPackages, splitFields),
		BuildAptPackages:         d.list(FieldBuildAptPackages, splitFields),
		BuildInstallArgs:         d.list(FieldBuildInstallArgs, splitFields),
		BaseImage:                d.str(FieldBaseImage),
		ExtraBuildInstructions:   d.list(FieldExtraBuildInstructions, splitLines),
		ExtraRuntimeInstructions: d.list(FieldExtraRuntimeInstructions, splitLines),
		PoetryVersion:            d.str(FieldPoetryVersion),
	}
	t.Sources = d.sources

	if err := d.errs.ErrorOrNil(); err != nil {
		return nil, &ResolutionError{Field: "tool section", Err: err}
	}
	return t, nil
}

func (d *toolDecoder) fail(field, source string, err error) {
	d.errs = multierror.Append(d.errs, fmt.Errorf("%s (from %s): %w", field, source, err))
}

func (d *toolDecoder) lookup(field string) (any, string, bool) {
	v, source, ok := d.layers.Lookup(field)
	if ok {
		d.sources.Set(field, source)
	}
	return v, source, ok
}

func (d *toolDecoder) str(field string) string {
	v, source, ok := d.lookup(field)
	if !ok {
		return ""
	}

	s, err := scalar(v)
	if err != nil {
		d.fail(field, source, err)
		return ""
	}
	return s
}

func (d *toolDecoder) list(field string, split splitter) []string {
	v, source, ok := d.lookup(field)
	if !ok {
		return nil
	}

	items, err := toList(v, split)
	if err != nil {
		d.fail(field, source, err)
		return nil
	}
	return items
}

func (d *toolDecoder) ports(field string) []int {
	v, source, ok := d.lookup(field)
	if !ok {
		return nil
	}

	items, err := toList(v, splitFields)
	if err != nil {
		d.fail(field, source, err)
		return nil
	}

	ports := make([]int, 0, len(items))
	for _, item := range items {
		port, err := nat.ParsePort(item)
		if err == nil && port == 0 {
			err = fmt.Errorf("invalid port '%s': must be between 1 and 65535", item)
		}
		if err != nil {
			d.fail(field, source, err)
			continue
		}
		ports = append(ports, port)
	}
	return ports
}

// scalar formats a TOML scalar as a string.
func scalar(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case int64, float64, bool:
		return fmt.Sprint(val), nil
	default:
		return "", fmt.Errorf("expected a string, got %T", v)
	}
}

// toList accepts a TOML array of scalars or a string to split.
func toList(v any, split splitter) ([]string, error) {
	switch val := v.(type) {
	case string:
		items, err := split(val)
		if err != nil {
			return nil, fmt.Errorf("split %q: %w", val, err)
		}
		return items, nil
	case []any:
		items := make([]string, 0, len(val))
		for i, item := range val {
			s, err := scalar(item)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			items = append(items, s)
		}
		return items, nil
	case []string:
		return val, nil
	default:
		return nil, fmt.Errorf("expected a list or a string, got %T", v)
	}
}
