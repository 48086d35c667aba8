// Package testingx provides test helpers shared by the stackgen packages.
//
// Overview:
//   - Responsibility: Recording logger, error code assertions and fixture files
//   - Key Types: MockLogger, LogEntry
//   - Concurrency Model: MockLogger is safe for concurrent use
//   - Error Semantics: Failures are reported through testing.TB
//   - Performance Notes: Entries are kept in memory for the life of the test
//
// Usage:
//
//	logger := testingx.NewMockLogger(t)
//	p := generators.NewPipeline(fs, runner, generators.WithLogger(logger))
//	logger.AssertLogged("INFO", "generation finished")
package testingx

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"go.eggybyte.com/stackgen/core/errors"
	"go.eggybyte.com/stackgen/core/log"
)

// LogEntry is one recorded log call. Fields holds the logger's With fields
// followed by the call's own pairs.
type LogEntry struct {
	Level   string
	Message string
	Fields  []any
	Error   error
}

// Field returns the value recorded for key, or nil.
func (e LogEntry) Field(key string) any {
	for i := 0; i+1 < len(e.Fields); i += 2 {
		if k, ok := e.Fields[i].(string); ok && k == key {
			return e.Fields[i+1]
		}
	}
	return nil
}

// store is shared by a MockLogger and every logger derived from it with With.
type store struct {
	mu      sync.Mutex
	entries []LogEntry
}

// MockLogger records every call for later assertions.
type MockLogger struct {
	t      testing.TB
	store  *store
	fields []any
}

// NewMockLogger creates a recording logger reporting failures to t.
func NewMockLogger(t testing.TB) *MockLogger {
	return &MockLogger{t: t, store: &store{}}
}

// With returns a logger that records into the same store with extra fields.
func (m *MockLogger) With(kv ...any) log.Logger {
	fields := make([]any, 0, len(m.fields)+len(kv))
	fields = append(fields, m.fields...)
	fields = append(fields, flatten(kv)...)
	return &MockLogger{t: m.t, store: m.store, fields: fields}
}

// Debug implements log.Logger.
func (m *MockLogger) Debug(msg string, kv ...any) { m.record("DEBUG", msg, nil, kv) }

// Info implements log.Logger.
func (m *MockLogger) Info(msg string, kv ...any) { m.record("INFO", msg, nil, kv) }

// Warn implements log.Logger.
func (m *MockLogger) Warn(msg string, kv ...any) { m.record("WARN", msg, nil, kv) }

// Error implements log.Logger.
func (m *MockLogger) Error(err error, msg string, kv ...any) { m.record("ERROR", msg, err, kv) }

func (m *MockLogger) record(level, msg string, err error, kv []any) {
	fields := make([]any, 0, len(m.fields)+len(kv))
	fields = append(fields, m.fields...)
	fields = append(fields, flatten(kv)...)

	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.entries = append(m.store.entries, LogEntry{Level: level, Message: msg, Fields: fields, Error: err})
}

// flatten expands the []any pairs built by log.Str and friends.
func flatten(kv []any) []any {
	out := make([]any, 0, len(kv))
	for _, v := range kv {
		if pair, ok := v.([]any); ok {
			out = append(out, flatten(pair)...)
			continue
		}
		out = append(out, v)
	}
	return out
}

// Entries returns a copy of all recorded entries.
func (m *MockLogger) Entries() []LogEntry {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return append([]LogEntry(nil), m.store.entries...)
}

// Find returns the first entry with level and msg.
func (m *MockLogger) Find(level, msg string) (LogEntry, bool) {
	for _, e := range m.Entries() {
		if e.Level == level && e.Message == msg {
			return e, true
		}
	}
	return LogEntry{}, false
}

// AssertLogged fails the test unless a message was logged at level.
func (m *MockLogger) AssertLogged(level, msg string) {
	m.t.Helper()
	if _, ok := m.Find(level, msg); !ok {
		m.t.Errorf("Expected log message not found: level=%s msg=%q", level, msg)
	}
}

// AssertNotLogged fails the test if a message was logged at level.
func (m *MockLogger) AssertNotLogged(level, msg string) {
	m.t.Helper()
	if _, ok := m.Find(level, msg); ok {
		m.t.Errorf("Unexpected log message: level=%s msg=%q", level, msg)
	}
}

// Clear drops all recorded entries.
func (m *MockLogger) Clear() {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.entries = nil
}

// AssertError fails the test unless err carries expectedCode.
func AssertError(t testing.TB, err error, expectedCode errors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected error with code %s, got nil", expectedCode)
	}
	if code := errors.CodeOf(err); code != expectedCode {
		t.Errorf("Expected error code %s, got %s (%v)", expectedCode, code, err)
	}
}

// AssertNoError fails the test immediately if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
}

// WriteFile writes content to name under dir, creating parents, and returns the full path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(full), err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", full, err)
	}
	return full
}
