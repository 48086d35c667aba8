// Package logx provides a structured logging implementation based on slog.
//
// Overview:
//   - Responsibility: Generator logging with logfmt/JSON output, field sorting, and colorization
//   - Key Types: Logger implementation, Options for configuration
//   - Concurrency Model: All loggers are safe for concurrent use
//   - Error Semantics: No errors returned; logging failures are silently handled
//   - Performance Notes: Sorted fields keep output stable between runs
//
// Usage:
//
//	logger := logx.New(logx.WithFormat(logx.FormatLogfmt), logx.WithColor(true))
//	logger.Info("entity rendered", log.Str("entity", "Product"))
package logx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.eggybyte.com/stackgen/core/log"
	"go.eggybyte.com/stackgen/logx/internal"
)

// Format specifies the output format for logs.
type Format string

const (
	// FormatLogfmt outputs logs in logfmt format (key=value pairs).
	FormatLogfmt Format = "logfmt"
	// FormatJSON outputs logs as one JSON object per line.
	FormatJSON Format = "json"
)

// Options configures the logger behavior.
type Options struct {
	Format           Format     // Output format: logfmt or json
	Level            slog.Level // Minimum log level
	Color            bool       // Enable colorization for level field only
	Writer           io.Writer  // Output writer (default: os.Stderr)
	PayloadMaxBytes  int        // Maximum bytes to log for large string values (0 = unlimited)
	DisableTimestamp bool       // Disable timestamp in output
}

// Logger implements the core/log.Logger interface using slog.
type Logger struct {
	handler *internal.Handler
	attrs   []slog.Attr
}

// New creates a new Logger with the given options.
func New(opts ...Option) log.Logger {
	options := Options{
		Format:           FormatLogfmt,
		Level:            slog.LevelInfo,
		Writer:           os.Stderr,
		DisableTimestamp: true,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Writer == nil {
		options.Writer = os.Stderr
	}

	handler := internal.NewHandler(internal.Options{
		Format:           string(options.Format),
		Level:            options.Level,
		Color:            options.Color && options.Format != FormatJSON,
		PayloadMaxBytes:  options.PayloadMaxBytes,
		DisableTimestamp: options.DisableTimestamp,
	}, options.Writer)

	return &Logger{
		handler: handler,
	}
}

// Option configures logger behavior.
type Option func(*Options)

// WithFormat sets the output format.
func WithFormat(format Format) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithLevel sets the minimum log level.
func WithLevel(level slog.Level) Option {
	return func(o *Options) {
		o.Level = level
	}
}

// WithColor enables colorization for the level field only.
func WithColor(enabled bool) Option {
	return func(o *Options) {
		o.Color = enabled
	}
}

// WithWriter sets the output writer.
func WithWriter(w io.Writer) Option {
	return func(o *Options) {
		o.Writer = w
	}
}

// WithPayloadLimit sets the maximum bytes to log for large string values,
// such as captured tool output.
func WithPayloadLimit(maxBytes int) Option {
	return func(o *Options) {
		o.PayloadMaxBytes = maxBytes
	}
}

// WithTimestamp enables the time field.
func WithTimestamp(enabled bool) Option {
	return func(o *Options) {
		o.DisableTimestamp = !enabled
	}
}

// ParseFormat converts a flag value into a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatLogfmt:
		return FormatLogfmt, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown log format %q (want logfmt or json)", s)
	}
}

// With returns a new Logger with the given key-value pairs attached.
func (l *Logger) With(kv ...any) log.Logger {
	attrs := internal.KVToAttrs(kv)
	newAttrs := append([]slog.Attr{}, l.attrs...)
	newAttrs = append(newAttrs, attrs...)

	return &Logger{
		handler: l.handler,
		attrs:   newAttrs,
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, kv ...any) {
	l.log(slog.LevelDebug, msg, kv...)
}

// Info logs an informational message.
func (l *Logger) Info(msg string, kv ...any) {
	l.log(slog.LevelInfo, msg, kv...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, kv ...any) {
	l.log(slog.LevelWarn, msg, kv...)
}

// Error logs an error message.
func (l *Logger) Error(err error, msg string, kv ...any) {
	attrs := internal.KVToAttrs(kv)
	if err != nil {
		attrs = append([]slog.Attr{slog.String("error", err.Error())}, attrs...)
	}
	l.logWithAttrs(slog.LevelError, msg, attrs)
}

func (l *Logger) log(level slog.Level, msg string, kv ...any) {
	l.logWithAttrs(level, msg, internal.KVToAttrs(kv))
}

func (l *Logger) logWithAttrs(level slog.Level, msg string, attrs []slog.Attr) {
	allAttrs := append([]slog.Attr{}, l.attrs...)
	allAttrs = append(allAttrs, attrs...)

	l.handler.LogRecord(level, msg, allAttrs)
}

type ctxKey struct{}

// NewContext returns a context carrying the logger.
func NewContext(ctx context.Context, logger log.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stored by NewContext, or a no-op logger.
func FromContext(ctx context.Context) log.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(log.Logger); ok && logger != nil {
		return logger
	}
	return log.Nop()
}
