// Package ui provides unified terminal output for the stackgen CLI.
//
// Overview:
//   - Responsibility: Human-facing progress, warnings and summaries
//   - Key Types: OutputLevel, Message for JSON mode
//   - Concurrency Model: Global settings guarded by a RWMutex
//   - Error Semantics: Output failures are ignored
//   - Performance Notes: One formatted write per message
//
// Usage:
//
//	ui.Info("Rendering %d entities", n)
//	ui.Error("Generation failed: %v", err)
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

var (
	verbose    bool
	jsonOutput bool
	stdout     io.Writer = os.Stdout
	stderr     io.Writer = os.Stderr
	mu         sync.RWMutex
)

// OutputLevel represents the severity level of a message.
type OutputLevel string

const (
	LevelDebug   OutputLevel = "debug"
	LevelInfo    OutputLevel = "info"
	LevelWarning OutputLevel = "warning"
	LevelError   OutputLevel = "error"
	LevelSuccess OutputLevel = "success"
)

var prefixes = map[OutputLevel]*color.Color{
	LevelDebug:   color.New(color.FgMagenta),
	LevelInfo:    color.New(color.FgCyan),
	LevelWarning: color.New(color.FgYellow),
	LevelError:   color.New(color.FgRed, color.Bold),
	LevelSuccess: color.New(color.FgGreen),
}

var labels = map[OutputLevel]string{
	LevelDebug:   "DEBUG:",
	LevelInfo:    "INFO:",
	LevelWarning: "WARN:",
	LevelError:   "ERROR:",
	LevelSuccess: "OK:",
}

// Message represents a structured output message in JSON mode.
type Message struct {
	Level     OutputLevel `json:"level"`
	Text      string      `json:"text"`
	Timestamp time.Time   `json:"timestamp"`
}

// SetVerbose enables or disables debug output.
func SetVerbose(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = enabled
}

// Verbose reports whether debug output is enabled.
func Verbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetJSONOutput enables JSON-formatted output.
func SetJSONOutput(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	jsonOutput = enabled
}

// SetOutput redirects regular and error output. Passing nil keeps the current writer.
func SetOutput(out, errOut io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if out != nil {
		stdout = out
	}
	if errOut != nil {
		stderr = errOut
	}
}

// Writer returns the current regular output writer.
func Writer() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return stdout
}

func output(level OutputLevel, format string, args ...any) {
	mu.RLock()
	useJSON := jsonOutput
	useVerbose := verbose
	out, errOut := stdout, stderr
	mu.RUnlock()

	if level == LevelDebug && !useVerbose {
		return
	}

	text := fmt.Sprintf(format, args...)

	if useJSON {
		encoder := json.NewEncoder(out)
		if err := encoder.Encode(Message{Level: level, Text: text, Timestamp: time.Now().UTC()}); err != nil {
			fmt.Fprintf(errOut, "failed to encode JSON output: %v\n", err)
		}
		return
	}

	writer := out
	if level == LevelError || level == LevelWarning {
		writer = errOut
	}

	fmt.Fprintf(writer, "%s %s\n", prefixes[level].Sprint(labels[level]), text)
}

// Debug outputs a debug message, shown only in verbose mode.
func Debug(format string, args ...any) {
	output(LevelDebug, format, args...)
}

// Info outputs an informational message.
func Info(format string, args ...any) {
	output(LevelInfo, format, args...)
}

// Warning outputs a warning message.
func Warning(format string, args ...any) {
	output(LevelWarning, format, args...)
}

// Error outputs an error message.
func Error(format string, args ...any) {
	output(LevelError, format, args...)
}

// Success outputs a success message.
func Success(format string, args ...any) {
	output(LevelSuccess, format, args...)
}

// Step outputs a step indicator with message.
func Step(step, total int, format string, args ...any) {
	mu.RLock()
	useJSON := jsonOutput
	out := stdout
	mu.RUnlock()

	if useJSON {
		Info(format, args...)
		return
	}

	fmt.Fprintf(out, "  [%d/%d] %s\n", step, total, fmt.Sprintf(format, args...))
}
