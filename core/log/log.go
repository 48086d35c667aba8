// Package log provides a minimal logging interface compatible with slog concepts.
//
// Overview:
//   - Responsibility: Define the logging interface shared by generators, tools and CLI
//   - Key Types: Logger interface with structured key-value logging
//   - Concurrency Model: Logger implementations must be safe for concurrent use
//   - Error Semantics: Error method accepts error as first parameter for structured logging
//   - Performance Notes: Interface designed for zero-allocation key-value pairs
//
// Usage:
//
//	logger.Info("entity rendered", log.Str("entity", "Product"), log.Int("files", 6))
package log

import "time"

// Logger defines a structured logging interface compatible with slog concepts.
// Implementations must be safe for concurrent use.
type Logger interface {
	// With returns a new Logger with the given key-value pairs attached.
	With(kv ...any) Logger

	// Debug logs a debug message with optional key-value pairs.
	Debug(msg string, kv ...any)

	// Info logs an informational message with optional key-value pairs.
	Info(msg string, kv ...any)

	// Warn logs a warning message with optional key-value pairs.
	Warn(msg string, kv ...any)

	// Error logs an error message with the error and optional key-value pairs.
	Error(err error, msg string, kv ...any)
}

// Str creates a string key-value pair for structured logging.
func Str(k, v string) any {
	return []any{k, v}
}

// Int creates an integer key-value pair for structured logging.
func Int(k string, v int) any {
	return []any{k, v}
}

// Bool creates a boolean key-value pair for structured logging.
func Bool(k string, v bool) any {
	return []any{k, v}
}

// Dur creates a duration key-value pair for structured logging.
func Dur(k string, v time.Duration) any {
	return []any{k, v}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (n nopLogger) With(kv ...any) Logger { return n }
func (nopLogger) Debug(msg string, kv ...any) {}
func (nopLogger) Info(msg string, kv ...any) {}
func (nopLogger) Warn(msg string, kv ...any) {}
func (nopLogger) Error(err error, msg string, kv ...any) {}
