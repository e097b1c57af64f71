package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Reporter receives the informational notes and warnings produced while a
// build plan is resolved and rendered.
type Reporter interface {
	Info(format string, args ...any)
	Warning(format string, args ...any)
}

// Console is a Reporter that writes colored lines to a writer.
type Console struct {
	out io.Writer
}

// NewConsole returns a Console writing to out. A nil out selects os.Stdout.
func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out}
}

// Info implements Reporter.
func (c *Console) Info(format string, args ...any) {
	writeLine(c.out, blue, "", format, args...)
}

// Warning implements Reporter.
func (c *Console) Warning(format string, args ...any) {
	writeLine(c.out, yellow, markWarning, format, args...)
}

// Success prints a green line with a checkmark.
func (c *Console) Success(format string, args ...any) {
	writeLine(c.out, green, markSuccess, format, args...)
}

// Error prints a red line with an X.
func (c *Console) Error(format string, args ...any) {
	writeLine(c.out, red, markError, format, args...)
}

// Hint prints a yellow line suggesting what to do next.
func (c *Console) Hint(format string, args ...any) {
	writeLine(c.out, yellow, "", format, args...)
}

// Print writes s verbatim.
func (c *Console) Print(s string) {
	fmt.Fprint(c.out, s)
}

// Writer returns the underlying writer.
func (c *Console) Writer() io.Writer {
	return c.out
}

// IsTerminal reports whether the console writes to a terminal.
func (c *Console) IsTerminal() bool {
	f, ok := c.out.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Level distinguishes recorded messages.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
)

// Message is a single recorded note.
type Message struct {
	Level Level
	Text  string
}

// Recorder is a Reporter that keeps every message in memory.
type Recorder struct {
	mu       sync.Mutex
	Messages []Message
}

// Info implements Reporter.
func (r *Recorder) Info(format string, args ...any) {
	r.add(LevelInfo, format, args...)
}

// Warning implements Reporter.
func (r *Recorder) Warning(format string, args ...any) {
	r.add(LevelWarning, format, args...)
}

func (r *Recorder) add(level Level, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, Message{Level: level, Text: fmt.Sprintf(format, args...)})
}

// Contains reports whether any message of the given level contains substr.
func (r *Recorder) Contains(level Level, substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.Messages {
		if m.Level == level && strings.Contains(m.Text, substr) {
			return true
		}
	}
	return false
}

// Discard is a Reporter that drops everything.
var Discard Reporter = discard{}

type discard struct{}

func (discard) Info(string, ...any)    {}
func (discard) Warning(string, ...any) {}
