// Package builder runs one dockerpyze invocation: it loads the project,
// resolves its configuration, renders the Dockerfile and then either writes
// it next to pyproject.toml or builds the image through the Docker engine.
package builder
