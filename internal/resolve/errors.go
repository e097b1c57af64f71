package resolve

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoEntrypoint is returned when no entrypoint is configured and none can
// be inferred from the project packages.
var ErrNoEntrypoint = errors.New("no package found in pyproject.toml and no entrypoint specified in the [tool.dpy] section")

// MultiplePackagesError is returned when the entrypoint cannot be inferred
// because the project declares more than one package.
type MultiplePackagesError struct {
	Packages []string
}

func (e *MultiplePackagesError) Error() string {
	return fmt.Sprintf("multiple packages found in pyproject.toml (%s), please specify 'entrypoint' in the [tool.dpy] section:\n\n%s",
		strings.Join(e.Packages, ", "), e.Snippet())
}

// Snippet returns a tool section that resolves the ambiguity using the first
// package.
func (e *MultiplePackagesError) Snippet() string {
	first := ""
	if len(e.Packages) > 0 {
		first = e.Packages[0]
	}
	return fmt.Sprintf("[tool.dpy]\nentrypoint = \"python -m %s\"\n", first)
}

// ResolutionError reports invalid input found while resolving a field.
type ResolutionError struct {
	Field string
	Err   error
}

func (e *ResolutionError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("resolve configuration: %v", e.Err)
	}
	return fmt.Sprintf("resolve %s: %v", e.Field, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
