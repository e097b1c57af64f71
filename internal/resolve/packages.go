package resolve

import (
	"path"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/nicoloboschi/dockerpyze/internal/manifest"
)

// dedupe removes repeated items, keeping the first occurrence.
func dedupe(items []string) []string {
	seen := mapset.NewThreadUnsafeSet[string]()
	out := make([]string, 0, len(items))
	for _, item := range items {
		if seen.Add(item) {
			out = append(out, item)
		}
	}
	return out
}

// poetryPackages returns the include names of [tool.poetry.packages].
func poetryPackages(m *manifest.Manifest) []string {
	var names []string
	for _, pkg := range m.Tables("tool", "poetry", "packages") {
		if include, ok := pkg["include"].(string); ok && include != "" {
			names = append(names, include)
		}
	}
	return names
}

// inferEntrypoint derives `python -m <package>` from a single declared package.
func inferEntrypoint(m *manifest.Manifest) ([]string, error) {
	packages := poetryPackages(m)
	switch len(packages) {
	case 0:
		return nil, ErrNoEntrypoint
	case 1:
		return []string{"python", "-m", packages[0]}, nil
	default:
		return nil, &MultiplePackagesError{Packages: packages}
	}
}

// appPackages returns the paths of the project's own packages followed by
// the top-level modules of its console scripts.
func appPackages(m *manifest.Manifest) []string {
	var paths []string
	for _, pkg := range m.Tables("tool", "poetry", "packages") {
		include, ok := pkg["include"].(string)
		if !ok || include == "" {
			continue
		}
		if from, ok := pkg["from"].(string); ok && from != "" {
			include = path.Join(from, include)
		}
		paths = append(paths, include)
	}

	for _, table := range [][]string{{"project", "scripts"}, {"tool", "poetry", "scripts"}} {
		for _, name := range m.Keys(table...) {
			target := m.String(append(table, name)...)
			if module := scriptModule(target); module != "" {
				paths = append(paths, module)
			}
		}
	}

	return dedupe(paths)
}

// scriptModule returns the top-level module of a "pkg.mod:func" reference.
func scriptModule(target string) string {
	module, _, _ := strings.Cut(strings.TrimSpace(target), ":")
	top, _, _ := strings.Cut(module, ".")
	return top
}

// dependencyTables returns every table-valued dependency declaration from
// [tool.poetry.dependencies] and [tool.uv.sources], in document order.
func dependencyTables(m *manifest.Manifest) []map[string]any {
	var tables []map[string]any
	for _, section := range [][]string{{"tool", "poetry", "dependencies"}, {"tool", "uv", "sources"}} {
		for _, name := range m.Keys(section...) {
			v, _ := m.Get(append(section, name)...)
			switch dep := v.(type) {
			case map[string]any:
				tables = append(tables, dep)
			case []map[string]any:
				tables = append(tables, dep...)
			case []any:
				for _, item := range dep {
					if t, ok := item.(map[string]any); ok {
						tables = append(tables, t)
					}
				}
			}
		}
	}
	return tables
}

// depsPackages returns the local path dependencies of the project.
func depsPackages(m *manifest.Manifest) []string {
	var paths []string
	for _, dep := range dependencyTables(m) {
		if p, ok := dep["path"].(string); ok && p != "" {
			paths = append(paths, p)
		}
	}
	return dedupe(paths)
}

// hasGitDependency reports whether any dependency is fetched from a git
// repository.
func hasGitDependency(m *manifest.Manifest) bool {
	for _, dep := range dependencyTables(m) {
		if _, ok := dep["git"]; ok {
			return true
		}
	}
	for _, req := range m.Strings("project", "dependencies") {
		if strings.Contains(req, "git+") {
			return true
		}
	}
	return false
}
