// Package manifest loads a Python project's pyproject.toml.
//
// The manifest is exposed as a generic nested mapping without any
// interpretation. Alongside the decoded values it remembers the order in
// which keys first appear in the document, so that callers emitting mappings
// (labels, environment variables) can keep the author's order:
//
//	m, err := manifest.Load(filepath.Join(root, manifest.FileName))
//	if err != nil {
//		return err
//	}
//	name := m.String("project", "name")
//	for _, k := range m.Keys("tool", "dpy", "env") {
//		...
//	}
//
// # Tool Section
//
// dockerpyze options live under [tool.dpy]. The older [tool.dockerize]
// spelling is still read; when both tables exist [tool.dpy] wins entirely.
package manifest
