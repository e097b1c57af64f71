// Package lock serializes dockerpyze runs against the same project.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrLocked is returned when another process holds the project lock.
var ErrLocked = errors.New("another dockerpyze run is already in progress for this project")

// Lock is an exclusive, non-blocking lock for one project root. The lock
// file lives outside the project so it never ends up in a build context.
type Lock struct {
	root string
	path string
	file *os.File
}

// New returns the lock for the project at root, with lock files kept in dir.
// An empty dir selects <tmp>/dockerpyze-locks.
func New(dir, root string) *Lock {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "dockerpyze-locks")
	}
	name := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+root)).String()
	return &Lock{
		root: root,
		path: filepath.Join(dir, name+".lock"),
	}
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Acquire takes the lock or returns ErrLocked.
func (l *Lock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}

	held, err := tryLock(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !held {
		f.Close()
		return fmt.Errorf("%w: %s", ErrLocked, l.root)
	}

	// PID and root for whoever finds the file
	f.Truncate(0)
	f.Seek(0, 0)
	fmt.Fprintf(f, "%d %s\n", os.Getpid(), l.root)

	l.file = f
	return nil
}

// Release drops the lock. It is safe to call more than once. The lock file
// stays in place so every run locks the same inode.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}

	err := unlock(l.file)
	l.file.Close()
	l.file = nil
	if err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

// WithLock runs fn while holding the lock for root.
func WithLock(dir, root string, fn func() error) error {
	l := New(dir, root)
	if err := l.Acquire(); err != nil {
		return err
	}
	defer l.Release()

	return fn()
}
