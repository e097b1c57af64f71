// Command dockerpyze builds Docker images for Python projects from their
// pyproject.toml.
package main

import "github.com/nicoloboschi/dockerpyze/internal/cmd"

func main() {
	cmd.Execute()
}
