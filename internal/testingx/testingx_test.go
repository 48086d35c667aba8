package testingx

import (
	"os"
	"sync"
	"testing"

	"go.eggybyte.com/stackgen/core/errors"
	"go.eggybyte.com/stackgen/core/log"
)

func TestMockLoggerRecords(t *testing.T) {
	logger := NewMockLogger(t)
	logger.Debug("debug message", log.Str("k", "v"))
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error(errors.New(errors.CodeInternal, "boom"), "error message")

	entries := logger.Entries()
	if len(entries) != 4 {
		t.Fatalf("Expected 4 entries, got %d", len(entries))
	}
	if entries[0].Field("k") != "v" {
		t.Errorf("Expected flattened field k=v, got %v", entries[0].Fields)
	}
	if entries[3].Level != "ERROR" || entries[3].Error == nil {
		t.Errorf("Unexpected error entry: %+v", entries[3])
	}

	logger.AssertLogged("WARN", "warn message")
	logger.AssertNotLogged("INFO", "warn message")

	logger.Clear()
	if len(logger.Entries()) != 0 {
		t.Error("Expected no entries after Clear")
	}
}

func TestMockLoggerWith(t *testing.T) {
	root := NewMockLogger(t)
	child := root.With(log.Str("run_id", "r1"))
	child.Info("hello", log.Int("n", 2))

	e, ok := root.Find("INFO", "hello")
	if !ok {
		t.Fatal("Expected entry recorded through the child logger")
	}
	if e.Field("run_id") != "r1" || e.Field("n") != 2 {
		t.Errorf("Fields = %v", e.Fields)
	}
	if e.Field("missing") != nil {
		t.Error("Expected nil for an unknown field")
	}
}

func TestMockLoggerConcurrency(t *testing.T) {
	logger := NewMockLogger(t)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info("concurrent")
		}()
	}
	wg.Wait()
	if n := len(logger.Entries()); n != 10 {
		t.Errorf("Expected 10 entries, got %d", n)
	}
}

func TestAssertHelpers(t *testing.T) {
	AssertError(t, errors.New(errors.CodeNotFound, "gone"), errors.CodeNotFound)
	AssertNoError(t, nil)
}

func TestWriteFile(t *testing.T) {
	full := WriteFile(t, t.TempDir(), "a/b/c.txt", "hi")
	data, err := os.ReadFile(full)
	if err != nil || string(data) != "hi" {
		t.Errorf("ReadFile = %q, %v", data, err)
	}
}
