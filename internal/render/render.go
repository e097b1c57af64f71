package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/nicoloboschi/dockerpyze/internal/resolve"
	"github.com/nicoloboschi/dockerpyze/internal/ui"
)

//go:embed templates/dockerfile.tmpl
var templateFS embed.FS

// ErrEmptyEntrypoint is returned for a config without an entrypoint.
var ErrEmptyEntrypoint = errors.New("entrypoint is empty")

// blocks are rendered in order and separated by one blank line.
var blocks = []string{
	"builder",
	"bootstrap-env",
	"build-apt",
	"context",
	"app",
	"build-extra",
	"install",
	"runtime",
	"runtime-apt",
	"labels",
	"env",
	"workdir",
	"expose",
	"runtime-extra",
	"cmd",
}

var dockerfileTemplate = template.Must(
	template.New("dockerfile.tmpl").
		Funcs(sprig.TxtFuncMap()).
		Funcs(renderFuncs()).
		ParseFS(templateFS, "templates/dockerfile.tmpl"),
)

// data is the template input.
type data struct {
	Config     *resolve.Config
	Poetry     bool
	DepsCopies []string
	AppCopies  []string
}

// Render produces the Dockerfile for cfg. Copy sources are checked under
// contextRoot; missing ones are reported and skipped.
func Render(cfg *resolve.Config, contextRoot string, r ui.Reporter) (string, error) {
	if len(cfg.Entrypoint) == 0 {
		return "", ErrEmptyEntrypoint
	}
	if r == nil {
		r = ui.Discard
	}

	d := data{
		Config:     cfg,
		Poetry:     cfg.PackageManager == resolve.Poetry,
		DepsCopies: existingPaths(contextRoot, cfg.DepsPackages, r),
		AppCopies:  existingPaths(contextRoot, cfg.AppPackages, r),
	}

	parts := make([]string, 0, len(blocks))
	for _, name := range blocks {
		var buf bytes.Buffer
		if err := dockerfileTemplate.ExecuteTemplate(&buf, name, d); err != nil {
			return "", fmt.Errorf("render %s block: %w", name, err)
		}
		block := strings.Trim(buf.String(), "\n")
		if strings.TrimSpace(block) == "" {
			continue
		}
		parts = append(parts, block)
	}

	return strings.Join(parts, "\n\n") + "\n", nil
}

// existingPaths deduplicates paths and drops those missing under root.
func existingPaths(root string, paths []string, r ui.Reporter) []string {
	seen := mapset.NewThreadUnsafeSet[string]()
	var out []string
	for _, p := range paths {
		if !seen.Add(p) {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, p)); err != nil {
			r.Warning("%s not found, skipping it", p)
			continue
		}
		out = append(out, p)
	}
	return out
}

func renderFuncs() template.FuncMap {
	return template.FuncMap{
		"cmd": cmdForm,
	}
}

// cmdForm renders a CMD argument: a JSON array for two or more tokens, the
// bare token for exactly one.
func cmdForm(tokens []string) (string, error) {
	if len(tokens) == 1 {
		return tokens[0], nil
	}

	quoted := make([]string, len(tokens))
	for i, tok := range tokens {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(tok); err != nil {
			return "", fmt.Errorf("encode %q: %w", tok, err)
		}
		quoted[i] = strings.TrimSuffix(buf.String(), "\n")
	}
	return "[" + strings.Join(quoted, ", ") + "]", nil
}
