// Package logging builds the structured debug logger shared by dockerpyze
// packages.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger writing to stderr at the given level.
func New(level string) (logr.Logger, error) {
	return NewWithWriter(level, os.Stderr)
}

// NewWithWriter returns a logger writing console-encoded lines to w.
// Debug enables V(1) messages.
func NewWithWriter(level string, w io.Writer) (logr.Logger, error) {
	var zapLevel zapcore.Level
	development := false
	switch strings.ToLower(level) {
	case "debug":
		development = true
		zapLevel = zapcore.DebugLevel
	case "info", "":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return logr.Logger{}, fmt.Errorf("unknown log level %q (expected debug, info, warn, or error)", level)
	}
	atomic := zap.NewAtomicLevelAt(zapLevel)

	encCfg := zap.NewProductionEncoderConfig()
	if development {
		encCfg = zap.NewDevelopmentEncoderConfig()
	}
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), atomic)

	var opts []zap.Option
	if development {
		opts = append(opts, zap.Development())
	}
	return zapr.NewLogger(zap.New(core, opts...)), nil
}

// Level maps the --debug flag to a level name.
func Level(debug bool) string {
	if debug {
		return "debug"
	}
	return "info"
}
