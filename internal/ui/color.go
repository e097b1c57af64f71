// Package ui writes the colored status lines dockerpyze prints while it
// resolves, renders and builds a project.
package ui

import (
	"io"

	"github.com/fatih/color"
)

var (
	red    = color.New(color.FgRed)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	blue   = color.New(color.FgBlue)
)

// Line prefixes.
const (
	markSuccess = "✓ "
	markError   = "✗ "
	markWarning = "⚠ "
)

// writeLine prints mark and the formatted message in c, ending the line.
// color.NoColor turns the escape codes off.
func writeLine(w io.Writer, c *color.Color, mark, format string, args ...any) {
	c.Fprintf(w, mark+format+"\n", args...)
}
