package resolve

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// VersionProbe returns the major.minor of the local python interpreter.
type VersionProbe func() (string, error)

// versionRule extracts a python version numeral from a constraint.
type versionRule struct {
	name    string
	extract func(constraint string, probe VersionProbe) (string, bool)
}

// versionRules are evaluated in order; the first match wins.
var versionRules = []versionRule{
	{name: "any", extract: matchAny},
	{name: "major.minor", extract: matchPattern(regexp.MustCompile(`^[\^~]?(\d\.\d+)(\.\d+)?`))},
	{name: "major", extract: matchPattern(regexp.MustCompile(`^[\^~]?(\d)(\.\*)?`))},
}

func matchAny(constraint string, probe VersionProbe) (string, bool) {
	if constraint != "*" || probe == nil {
		return "", false
	}
	v, err := probe()
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

func matchPattern(re *regexp.Regexp) func(string, VersionProbe) (string, bool) {
	return func(constraint string, _ VersionProbe) (string, bool) {
		m := re.FindStringSubmatch(constraint)
		if m == nil {
			return "", false
		}
		return m[1], true
	}
}

// ExtractPythonVersion returns the version numeral for constraint and the
// name of the rule that produced it.
func ExtractPythonVersion(constraint string, probe VersionProbe) (version, rule string, ok bool) {
	constraint = strings.TrimSpace(constraint)
	for _, r := range versionRules {
		if v, ok := r.extract(constraint, probe); ok {
			return v, r.name, true
		}
	}
	return "", "", false
}

// LocalPythonVersion runs `python3 --version` and returns its major.minor.
func LocalPythonVersion() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "python3", "--version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("run python3 --version: %w", err)
	}
	return parsePythonVersion(string(out))
}

// parsePythonVersion reads the output of `python --version`.
func parsePythonVersion(out string) (string, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(out), "Python"))
	v, err := semver.NewVersion(raw)
	if err != nil {
		return "", fmt.Errorf("parse python version %q: %w", raw, err)
	}
	return fmt.Sprintf("%d.%d", v.Major(), v.Minor()), nil
}
