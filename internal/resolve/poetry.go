package resolve

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

var poetryLockHeader = regexp.MustCompile(`@generated by Poetry (\d+\.\d+\.\d+)`)

// errNoLockVersion is returned when the lock file header has no version.
var errNoLockVersion = errors.New("poetry version not found in the first line")

// lockPoetryVersion reads the poetry version from the header of a lock file.
// A *ResolutionError means the header is present but invalid; any other
// error means the caller should fall back to a default.
func lockPoetryVersion(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	m := poetryLockHeader.FindStringSubmatch(line)
	if m == nil {
		return "", errNoLockVersion
	}

	if _, err := semver.StrictNewVersion(m[1]); err != nil {
		return "", &ResolutionError{Field: FieldPoetryVersion, Err: fmt.Errorf("invalid version %q in %s: %w", m[1], path, err)}
	}
	return m[1], nil
}

// isLockFallback reports whether err from lockPoetryVersion is recoverable.
func isLockFallback(err error) bool {
	var rerr *ResolutionError
	return err != nil && !errors.As(err, &rerr)
}
