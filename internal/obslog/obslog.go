package obslog

import (
	"io"
	"os"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the engine's injected logger handle: a logiface.Logger bound to
// stumpy's JSON event type. The zero value (nil *Logger) is a valid no-op
// logger — every method below guards against a nil receiver, so callers
// never need a `if log != nil` branch of their own.
type Logger = logiface.Logger[*stumpy.Event]

// Builder is the fluent field-builder returned by a Logger's level methods.
type Builder = logiface.Builder[*stumpy.Event]

// New constructs a Logger writing newline-delimited JSON to w.
func New(w io.Writer) *Logger {
	return stumpy.L.New(stumpy.L.WithStumpy(stumpy.WithWriter(w)))
}

// Default constructs a Logger writing to os.Stderr, the CLI's default.
func Default() *Logger { return New(os.Stderr) }

// Nop constructs a Logger with every level disabled; cheaper than a nil
// check at every call site when a caller wants to explicitly silence
// logging rather than pass no logger at all.
func Nop() *Logger {
	return stumpy.L.New(stumpy.L.WithStumpy(stumpy.WithWriter(io.Discard)), logiface.WithLevel[*stumpy.Event](logiface.LevelDisabled))
}

// nilSafe funnels every level method through one guarded accessor so a nil
// *Logger never dereferences.
func nilSafe(l *Logger) *Logger {
	if l == nil {
		return Nop()
	}
	return l
}

// Debug begins a debug-level log entry; safe to call on a nil *Logger.
func Debug(l *Logger) *Builder { return nilSafe(l).Debug() }

// Info begins an informational-level log entry; safe to call on a nil *Logger.
func Info(l *Logger) *Builder { return nilSafe(l).Info() }

// Notice begins a notice-level log entry; safe to call on a nil *Logger.
func Notice(l *Logger) *Builder { return nilSafe(l).Notice() }

// Warning begins a warning-level log entry; safe to call on a nil *Logger.
func Warning(l *Logger) *Builder { return nilSafe(l).Warning() }

// Err begins an error-level log entry; safe to call on a nil *Logger.
func Err(l *Logger) *Builder { return nilSafe(l).Err() }
