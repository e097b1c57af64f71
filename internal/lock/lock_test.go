package lock

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	dir := t.TempDir()

	a := New(dir, "/src/my-app")
	b := New(dir, "/src/my-app")
	c := New(dir, "/src/other")

	assert.Equal(t, a.Path(), b.Path(), "same root must share a lock")
	assert.NotEqual(t, a.Path(), c.Path())
	assert.Equal(t, dir, filepath.Dir(a.Path()))
	assert.True(t, strings.HasSuffix(a.Path(), ".lock"))
}

func TestNew_DefaultDir(t *testing.T) {
	l := New("", "/src/my-app")
	assert.Equal(t, filepath.Join(os.TempDir(), "dockerpyze-locks"), filepath.Dir(l.Path()))
}

func TestLock_AcquireRelease(t *testing.T) {
	l := New(t.TempDir(), "/src/my-app")

	require.NoError(t, l.Acquire())

	content, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Contains(t, string(content), "/src/my-app")

	require.NoError(t, l.Release())

	_, err = os.Stat(l.Path())
	assert.NoError(t, err, "the lock file is kept after release")
}

func TestLock_HandleOpenedBeforeRelease(t *testing.T) {
	dir := t.TempDir()

	first := New(dir, "/src/my-app")
	require.NoError(t, first.Acquire())
	before, err := os.Stat(first.Path())
	require.NoError(t, err)

	// A run that opened the file while the first one held it.
	waiting, err := os.OpenFile(first.Path(), os.O_RDWR, 0644)
	require.NoError(t, err)
	defer waiting.Close()

	require.NoError(t, first.Release())

	held, err := tryLock(waiting)
	require.NoError(t, err)
	require.True(t, held)
	defer unlock(waiting)

	third := New(dir, "/src/my-app")
	assert.ErrorIs(t, third.Acquire(), ErrLocked, "only one run may hold the lock")

	after, err := os.Stat(third.Path())
	require.NoError(t, err)
	assert.True(t, os.SameFile(before, after))
}

func TestLock_DoubleAcquire(t *testing.T) {
	dir := t.TempDir()

	first := New(dir, "/src/my-app")
	require.NoError(t, first.Acquire())
	defer first.Release()

	second := New(dir, "/src/my-app")
	err := second.Acquire()
	require.ErrorIs(t, err, ErrLocked)
	assert.Contains(t, err.Error(), "/src/my-app")

	require.NoError(t, first.Release())
	require.NoError(t, second.Acquire())
	require.NoError(t, second.Release())
}

func TestLock_ReleaseWithoutAcquire(t *testing.T) {
	l := New(t.TempDir(), "/src/my-app")
	assert.NoError(t, l.Release())
	assert.NoError(t, l.Release())
}

func TestWithLock(t *testing.T) {
	dir := t.TempDir()

	t.Run("runs function", func(t *testing.T) {
		called := false
		err := WithLock(dir, "/src/my-app", func() error {
			called = true
			return nil
		})
		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("propagates error and releases", func(t *testing.T) {
		errBoom := errors.New("boom")
		err := WithLock(dir, "/src/my-app", func() error { return errBoom })
		assert.ErrorIs(t, err, errBoom)

		require.NoError(t, WithLock(dir, "/src/my-app", func() error { return nil }))
	})

	t.Run("nested run is rejected", func(t *testing.T) {
		err := WithLock(dir, "/src/my-app", func() error {
			return WithLock(dir, "/src/my-app", func() error { return nil })
		})
		assert.ErrorIs(t, err, ErrLocked)
	})
}
