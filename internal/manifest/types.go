package manifest

import "strings"

// FileName is the manifest file looked up in the project root.
const FileName = "pyproject.toml"

// Tool section names, newest spelling first.
const (
	ToolDPY       = "dpy"
	ToolDockerize = "dockerize"
)

// ToolNames lists the accepted tool section names in preference order.
var ToolNames = []string{ToolDPY, ToolDockerize}

// Manifest is a decoded pyproject.toml. It is read-only once loaded.
type Manifest struct {
	// Path is the file the manifest was read from.
	Path string

	data  map[string]any
	order map[string][]string
}

// keyPath joins table path segments into an order map key.
func keyPath(path []string) string {
	return strings.Join(path, "\x00")
}
