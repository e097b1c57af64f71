// Package render turns a resolved configuration into Dockerfile text.
//
// The output has two stages. The builder stage installs the package manager,
// the build apt packages and the project dependencies into /app/.venv; the
// runtime stage copies /app from the builder and sets labels, environment,
// exposed ports and the command.
//
// Rendering is deterministic: the same Config and context root always
// produce the same bytes. Golden files live in testdata/ and are refreshed
// with:
//
//	go test ./internal/render -update
package render
