package resolve

import (
	"strings"

	"github.com/nicoloboschi/dockerpyze/internal/config"
	"github.com/nicoloboschi/dockerpyze/internal/manifest"
)

// projectVersion returns tool.poetry.version, else project.version.
func projectVersion(m *manifest.Manifest) string {
	return firstNonEmpty(m.String("tool", "poetry", "version"), m.String("project", "version"))
}

// projectName returns tool.poetry.name, else project.name.
func projectName(m *manifest.Manifest) string {
	return firstNonEmpty(m.String("tool", "poetry", "name"), m.String("project", "name"))
}

// authors returns tool.poetry.authors, else the flattened project.authors.
func authors(m *manifest.Manifest) []string {
	if a := m.Strings("tool", "poetry", "authors"); len(a) > 0 {
		return a
	}

	var out []string
	for _, author := range m.Tables("project", "authors") {
		name, _ := author["name"].(string)
		email, _ := author["email"].(string)
		if name != "" && email != "" {
			out = append(out, name+" <"+email+">")
		} else {
			out = append(out, name+email)
		}
	}
	return out
}

// license accepts both `license = "MIT"` and `license = { text = "MIT" }`.
func license(m *manifest.Manifest) string {
	for _, p := range [][]string{{"tool", "poetry", "license"}, {"project", "license"}} {
		v, ok := m.Get(p...)
		if !ok {
			continue
		}
		switch val := v.(type) {
		case string:
			if val != "" {
				return val
			}
		case map[string]any:
			if text, ok := val["text"].(string); ok && text != "" {
				return text
			}
		}
	}
	return ""
}

func repository(m *manifest.Manifest) string {
	return firstNonEmpty(m.String("tool", "poetry", "repository"), m.String("project", "urls", "repository"))
}

// buildLabels returns the six OCI labels followed by the user overrides.
func buildLabels(m *manifest.Manifest, imageName string, overrides config.Pairs) config.Pairs {
	repo := repository(m)
	labels := config.Pairs{
		{Key: LabelTitle, Value: imageName},
		{Key: LabelVersion, Value: projectVersion(m)},
		{Key: LabelAuthors, Value: strings.Join(authors(m), ", ")},
		{Key: LabelLicenses, Value: license(m)},
		{Key: LabelURL, Value: repo},
		{Key: LabelSource, Value: repo},
	}
	for _, e := range overrides {
		labels.Set(e.Key, e.Value)
	}
	return labels
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
