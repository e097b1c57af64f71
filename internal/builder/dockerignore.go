package builder

import (
	"github.com/nicoloboschi/dockerpyze/internal/fileutil"
)

// DefaultDockerIgnore is written to projects that have no .dockerignore
// for the duration of a build.
const DefaultDockerIgnore = `__pycache__
*.pyc
*.pyo
*.pyd
.Python
env
pip-log.txt
pip-delete-this-directory.txt
.tox
.coverage
.coverage.*
.cache
nosetests.xml
coverage.xml
*.cover
*.log
.git
.mypy_cache
.pytest_cache
.hypothesis
`

// ensureDockerIgnore writes the default .dockerignore when path is free
// and returns a cleanup that removes it again. Cleanup errors are logged
// and otherwise ignored.
func (b *Builder) ensureDockerIgnore(path string) (func(), error) {
	created, err := fileutil.WriteIfMissing(path, []byte(DefaultDockerIgnore), 0644)
	if err != nil {
		return nil, err
	}
	if !created {
		return func() {}, nil
	}

	b.Console.Info("No .dockerignore found, using a good default one 😉")
	return func() {
		if err := b.removeFile(path); err != nil {
			b.Logger.V(1).Info("could not remove default .dockerignore", "path", path, "error", err.Error())
		}
	}, nil
}
