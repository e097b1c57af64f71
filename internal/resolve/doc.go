// Package resolve turns a pyproject.toml and an environment snapshot into a
// build-ready Config.
//
// Every tool-section field is looked up through config.Layers, highest
// precedence first:
//
//	env:DOCKERIZE   DOCKERIZE_<FIELD>
//	env:DPY         DPY_<FIELD>
//	env:DOCKERPYZE  DOCKERPYZE_<FIELD>
//	manifest        [tool.dpy] or [tool.dockerize]
//
// Mapping fields (env, labels) are merged across all layers instead, so
// DPY_ENV_VAR1=x overrides VAR1 from [tool.dpy.env] and keeps the rest.
//
// Values the project does not set are inferred from the rest of the manifest
// (name, version, packages, python requirement) or defaulted. Every fallback
// is reported to the ui.Reporter as an informational note.
package resolve
