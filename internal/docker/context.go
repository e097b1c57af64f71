package docker

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/moby/go-archive"
	"github.com/moby/patternmatcher/ignorefile"
)

// DockerIgnoreFile is read from the context root to exclude files.
const DockerIgnoreFile = ".dockerignore"

// DockerfileName returns a context-unique name for an injected Dockerfile.
func DockerfileName() string {
	return ".dockerpyze-" + uuid.NewString() + ".Dockerfile"
}

// ReadDockerIgnore returns the exclude patterns of dir/.dockerignore.
// A missing file yields no patterns.
func ReadDockerIgnore(dir string) ([]string, error) {
	f, err := os.Open(filepath.Join(dir, DockerIgnoreFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", DockerIgnoreFile, err)
	}
	defer f.Close()

	patterns, err := ignorefile.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", DockerIgnoreFile, err)
	}
	return patterns, nil
}

// BuildContext tars dir, skipping .dockerignore matches, and adds the
// Dockerfile content under name. The caller must close the returned reader.
func BuildContext(dir, name, dockerfile string) (io.ReadCloser, error) {
	excludes, err := ReadDockerIgnore(dir)
	if err != nil {
		return nil, err
	}

	tarball, err := archive.TarWithOptions(dir, &archive.TarOptions{
		ExcludePatterns: excludes,
	})
	if err != nil {
		return nil, fmt.Errorf("archive build context: %w", err)
	}

	content := []byte(dockerfile)
	return archive.ReplaceFileTarWrapper(tarball, map[string]archive.TarModifierFunc{
		name: func(path string, _ *tar.Header, _ io.Reader) (*tar.Header, []byte, error) {
			return &tar.Header{
				Name:     path,
				Mode:     0600,
				Typeflag: tar.TypeReg,
			}, content, nil
		},
	}), nil
}
