// Package monitoring holds the process-wide log streams.
//
// Ops carries actionable failures and lifecycle events. Diag carries per-run
// diagnostics and trace carries per-sweep telemetry. Each stream is a zerolog
// logger; a nil writer disables the stream.
package monitoring

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogWriters holds the io.Writers for each logging stream.
type LogWriters struct {
	Ops   io.Writer
	Diag  io.Writer
	Trace io.Writer

	// JSON switches from the human console format to one JSON object per line.
	JSON bool
}

var (
	mu          sync.RWMutex
	level       = zerolog.DebugLevel
	writers     LogWriters
	opsLogger   *zerolog.Logger
	diagLogger  *zerolog.Logger
	traceLogger *zerolog.Logger
)

// SetLogWriters configures all three logging streams at once.
// Pass nil for any writer to disable that stream.
func SetLogWriters(w LogWriters) {
	mu.Lock()
	defer mu.Unlock()
	writers = w
	rebuild()
}

// SetLevel sets the minimum level for the streams. Ops lines are logged at
// info, diag at debug and trace at trace level, so "info" mutes diag and
// trace while "trace" shows everything.
func SetLevel(name string) error {
	l, err := zerolog.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", name, err)
	}
	mu.Lock()
	defer mu.Unlock()
	level = l
	rebuild()
	return nil
}

// rebuild replaces the stream loggers. Callers hold mu; loggers already
// handed out are never mutated.
func rebuild() {
	opsLogger = newLogger("ops", writers.Ops, writers.JSON, level)
	diagLogger = newLogger("diag", writers.Diag, writers.JSON, level)

	// zerolog's global gate drops trace events, so the trace stream logs
	// level-less events and gates them here.
	traceLevel := zerolog.Disabled
	if level <= zerolog.TraceLevel {
		traceLevel = zerolog.TraceLevel
	}
	traceLogger = newLogger("trace", writers.Trace, writers.JSON, traceLevel)
}

// newLogger creates a logger for a given writer, or returns nil if w is nil.
func newLogger(stream string, w io.Writer, json bool, lvl zerolog.Level) *zerolog.Logger {
	if w == nil {
		return nil
	}
	if !json {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}
	l := zerolog.New(w).Level(lvl).With().Timestamp().Str("stream", stream).Logger()
	return &l
}

// Opsf logs to the ops stream (actionable warnings, errors, lifecycle events).
func Opsf(format string, args ...interface{}) {
	mu.RLock()
	l := opsLogger
	mu.RUnlock()
	if l != nil {
		l.Info().Msgf(format, args...)
	}
}

// Diagf logs to the diag stream (per-run diagnostics, tuning context).
func Diagf(format string, args ...interface{}) {
	mu.RLock()
	l := diagLogger
	mu.RUnlock()
	if l != nil {
		l.Debug().Msgf(format, args...)
	}
}

// Tracef logs to the trace stream (per-sweep and per-trial telemetry).
func Tracef(format string, args ...interface{}) {
	mu.RLock()
	l := traceLogger
	mu.RUnlock()
	if l != nil {
		l.Log().Str(zerolog.LevelFieldName, zerolog.LevelTraceValue).Msgf(format, args...)
	}
}
