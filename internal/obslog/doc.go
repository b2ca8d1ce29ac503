// Package obslog is the structured-logging facade used throughout the
// engine (the synthesis driver's decision loop, bind/deadlock recovery, and
// the CLI), per SPEC_FULL.md §1. It thinly wraps
// github.com/joeycumines/logiface — adopted from the joeycumines-go-utilpkg
// constellation's structured-logging facade — backed by
// github.com/joeycumines/stumpy's zero-allocation JSON writer.
//
// Logging is injected, never global: every call site takes a *Logger
// parameter (nil-safe: a nil *Logger is a valid no-op logger, keeping
// synthesis itself side-effect-free per §5).
package obslog
