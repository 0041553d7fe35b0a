// Package output holds the process-wide logger used by the server and CLI.
package output

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

var logger = newLogger(os.Stderr, log.InfoLevel, false)

// LogConfig configures SetupLogging.
type LogConfig struct {
	// Verbose enables debug output, timestamps and caller reporting.
	Verbose bool

	// Out receives log lines. Defaults to stderr.
	Out io.Writer
}

// SetupLogging replaces the global logger according to cfg.
func SetupLogging(cfg LogConfig) {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	level := log.InfoLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}
	logger = newLogger(out, level, cfg.Verbose)
}

func newLogger(out io.Writer, level log.Level, verbose bool) *log.Logger {
	return log.NewWithOptions(out, log.Options{
		Level:           level,
		ReportTimestamp: verbose,
		ReportCaller:    verbose,
		TimeFormat:      "15:04:05",
	})
}

// Logger returns the global logger.
func Logger() *log.Logger {
	return logger
}

// Component returns a child logger whose lines are prefixed with name.
func Component(name string) *log.Logger {
	return logger.WithPrefix(name)
}

// Debug logs a debug message.
func Debug(msg string, keyvals ...any) {
	logger.Debug(msg, keyvals...)
}

// Info logs an info message.
func Info(msg string, keyvals ...any) {
	logger.Info(msg, keyvals...)
}

// Warn logs a warning message.
func Warn(msg string, keyvals ...any) {
	logger.Warn(msg, keyvals...)
}

// Error logs an error message.
func Error(msg string, keyvals ...any) {
	logger.Error(msg, keyvals...)
}
