// Package logger provides leveled logging for naviyam.
// When verbose mode is enabled via the --verbose flag, debug messages
// describing the turn pipeline are written in console form. Otherwise
// only errors are emitted, as JSON lines.
package logger

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

const serviceName = "naviyam"

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	log               = build(os.Stderr, false)
)

func build(w io.Writer, v bool) zerolog.Logger {
	if v {
		cw := zerolog.ConsoleWriter{Out: w, NoColor: true, PartsExclude: []string{zerolog.TimestampFieldName}}
		return zerolog.New(cw).Level(zerolog.DebugLevel)
	}
	return zerolog.New(w).Level(zerolog.ErrorLevel).With().
		Str("service", serviceName).
		Timestamp().
		Logger()
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	log = build(output, verbose)
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	log = build(output, verbose)
}

// Logger returns the current zerolog logger for callers that want fields.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Debug logs a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	l := Logger()
	l.Debug().Msgf(format, args...)
}

// Section logs a section header if verbose mode is enabled.
func Section(name string) {
	l := Logger()
	l.Debug().Msgf("=== %s ===", name)
}

// Info logs an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	l := Logger()
	l.Info().Msgf(format, args...)
}

// Warn logs a warning if verbose mode is enabled.
func Warn(format string, args ...any) {
	l := Logger()
	l.Warn().Msgf(format, args...)
}

// Error logs an error. Errors are always emitted.
func Error(err error, format string, args ...any) {
	l := Logger()
	l.Error().Err(err).Msgf(format, args...)
}
