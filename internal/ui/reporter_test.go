package ui

import (
	"bytes"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withNoColor(t *testing.T) {
	t.Helper()
	old := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = old })
}

func TestConsole(t *testing.T) {
	withNoColor(t)

	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Info("Using package manager %s", "poetry")
	c.Warning("path %q does not exist, skipping", "src")
	c.Success("Built %s", "app:latest")
	c.Error("Build failed")
	c.Hint("Is the Docker daemon running?")
	c.Print("FROM x\n")

	assert.Equal(t,
		"Using package manager poetry\n"+
			"⚠ path \"src\" does not exist, skipping\n"+
			"✓ Built app:latest\n"+
			"✗ Build failed\n"+
			"Is the Docker daemon running?\n"+
			"FROM x\n",
		buf.String())
	assert.Same(t, &buf, c.Writer())
	assert.False(t, c.IsTerminal())
}

func TestNewConsole_NilWriter(t *testing.T) {
	c := NewConsole(nil)
	require.NotNil(t, c.Writer())
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Info("defaulting to python %s", "3.11")
	r.Warning("missing %s", "README.md")

	require.Len(t, r.Messages, 2)
	assert.Equal(t, Message{Level: LevelInfo, Text: "defaulting to python 3.11"}, r.Messages[0])
	assert.Equal(t, Message{Level: LevelWarning, Text: "missing README.md"}, r.Messages[1])

	assert.True(t, r.Contains(LevelInfo, "python 3.11"))
	assert.False(t, r.Contains(LevelWarning, "python 3.11"))
}

func TestRecorder_Concurrent(t *testing.T) {
	var r Recorder
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Info("note %d", i)
		}(i)
	}
	wg.Wait()
	assert.Len(t, r.Messages, 10)
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard.Info("x")
		Discard.Warning("y")
	})
}
