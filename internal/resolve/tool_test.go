package resolve

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicoloboschi/dockerpyze/internal/config"
)

func layersFor(table map[string]any, env map[string]string) config.Layers {
	return config.DefaultLayers(config.NewEnv(env), config.TableSource{Label: "manifest:tool.dpy", Table: table})
}

func TestDecodeToolSection_StringCoercion(t *testing.T) {
	tool, err := DecodeToolSection(layersFor(map[string]any{
		"tags":                       "v1 v2  latest",
		"entrypoint":                 `gunicorn -b "0.0.0.0:8000" app:wsgi`,
		"ports":                      "80 443",
		"apt-packages":               "curl jq",
		"extra-runtime-instructions": "RUN a\nRUN b\n",
		"python":                     int64(3),
	}, nil))
	require.NoError(t, err)

	assert.Equal(t, []string{"v1", "v2", "latest"}, tool.Tags)
	assert.Equal(t, []string{"gunicorn", "-b", "0.0.0.0:8000", "app:wsgi"}, tool.Entrypoint)
	assert.Equal(t, []int{80, 443}, tool.Ports)
	assert.Equal(t, []string{"curl", "jq"}, tool.AptPackages)
	assert.Equal(t, []string{"RUN a", "RUN b"}, tool.ExtraRuntimeInstructions)
	assert.Equal(t, "3", tool.Python)
}

func TestDecodeToolSection_ListsKeepItems(t *testing.T) {
	tool, err := DecodeToolSection(layersFor(map[string]any{
		"entrypoint": []any{"sh -c 'run me'"},
		"ports":      []any{int64(8080), "9090"},
	}, nil))
	require.NoError(t, err)

	assert.Equal(t, []string{"sh -c 'run me'"}, tool.Entrypoint)
	assert.Equal(t, []int{8080, 9090}, tool.Ports)
}

func TestDecodeToolSection_Sources(t *testing.T) {
	tool, err := DecodeToolSection(layersFor(
		map[string]any{"name": "manifest-name", "python": "3.12"},
		map[string]string{"DPY_NAME": "env-name"},
	))
	require.NoError(t, err)

	assert.Equal(t, "env-name", tool.Name)
	assert.Equal(t, config.Pairs{
		{Key: FieldName, Value: "env:DPY"},
		{Key: FieldPython, Value: "manifest:tool.dpy"},
	}, tool.Sources)
}

func TestDecodeToolSection_Errors(t *testing.T) {
	tests := []struct {
		name  string
		table map[string]any
		env   map[string]string
		want  string
	}{
		{"port zero", map[string]any{"ports": []any{int64(0)}}, nil, "must be between 1 and 65535"},
		{"port text", nil, map[string]string{"DPY_PORTS": "http"}, "ports (from env:DPY): invalid port 'http'"},
		{"unterminated quote", map[string]any{"entrypoint": `python -m "app`}, nil, "entrypoint (from manifest:tool.dpy): split"},
		{"nested list", map[string]any{"tags": []any{[]any{"a"}}}, nil, "tags (from manifest:tool.dpy): item 0"},
		{"table scalar", map[string]any{"base-image": map[string]any{"a": "b"}}, nil, "expected a string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeToolSection(layersFor(tt.table, tt.env))
			require.Error(t, err)

			var rerr *ResolutionError
			require.True(t, errors.As(err, &rerr))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDecodeToolSection_ShellOperators(t *testing.T) {
	tests := []struct {
		name       string
		entrypoint string
		rest       string
	}{
		{"and list", `sh -c 'migrate' && python -m app`, "&& python -m app"},
		{"redirect", "uvicorn app:main > /tmp/log", "> /tmp/log"},
		{"sequence", "python -m app; echo done", "; echo done"},
		{"pipe", "python -m app | tee out", "| tee out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeToolSection(layersFor(nil, map[string]string{"DPY_ENTRYPOINT": tt.entrypoint}))
			require.ErrorIs(t, err, ErrShellOperator)
			assert.Contains(t, err.Error(), "entrypoint (from env:DPY)")
			assert.Contains(t, err.Error(), tt.rest)
		})
	}

	t.Run("quoted operators are kept", func(t *testing.T) {
		tool, err := DecodeToolSection(layersFor(map[string]any{
			"entrypoint": `sh -c "migrate && python -m app"`,
		}, nil))
		require.NoError(t, err)
		assert.Equal(t, []string{"sh", "-c", "migrate && python -m app"}, tool.Entrypoint)
	})

	t.Run("single-element list is shell form", func(t *testing.T) {
		tool, err := DecodeToolSection(layersFor(map[string]any{
			"entrypoint": []any{"migrate && python -m app"},
		}, nil))
		require.NoError(t, err)
		assert.Equal(t, []string{"migrate && python -m app"}, tool.Entrypoint)
	})
}

func TestExtractPythonVersion(t *testing.T) {
	probe := func() (string, error) { return "3.12", nil }
	failing := func() (string, error) { return "", errors.New("no python3") }

	tests := []struct {
		constraint string
		probe      VersionProbe
		want       string
		rule       string
		ok         bool
	}{
		{"^3.9", probe, "3.9", "major.minor", true},
		{"3.10.4", probe, "3.10", "major.minor", true},
		{"~3.11", probe, "3.11", "major.minor", true},
		{"3", probe, "3", "major", true},
		{"^3.*", probe, "3", "major", true},
		{"*", probe, "3.12", "any", true},
		{"*", failing, "", "", false},
		{">=3.8", probe, "", "", false},
		{"", probe, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			got, rule, ok := ExtractPythonVersion(tt.constraint, tt.probe)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.rule, rule)
		})
	}
}

func TestParsePythonVersion(t *testing.T) {
	v, err := parsePythonVersion("Python 3.12.4\n")
	require.NoError(t, err)
	assert.Equal(t, "3.12", v)

	_, err = parsePythonVersion("command not found")
	assert.Error(t, err)
}
