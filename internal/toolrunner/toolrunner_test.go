package toolrunner

import (
	"context"
	"os/exec"
	"runtime"
	"testing"

	"go.eggybyte.com/stackgen/core/errors"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecSuccess(t *testing.T) {
	requireShell(t)
	r := NewRunner()

	result, err := r.ExecIn(context.Background(), t.TempDir(), "sh", "-c", "echo hello; echo warn >&2")
	if err != nil {
		t.Fatalf("ExecIn: %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", result.ExitCode)
	}
	if result.Stdout != "hello\n" {
		t.Errorf("Stdout = %q", result.Stdout)
	}
	if result.Stderr != "warn\n" {
		t.Errorf("Stderr = %q", result.Stderr)
	}
}

func TestExecInUsesDir(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	r := NewRunner()

	if _, err := r.ExecIn(context.Background(), dir, "sh", "-c", "touch marker && test -f marker"); err != nil {
		t.Fatalf("ExecIn: %v", err)
	}
}

func TestExecFailure(t *testing.T) {
	requireShell(t)
	r := NewRunner()

	result, err := r.ExecIn(context.Background(), t.TempDir(), "sh", "-c", "echo boom >&2; exit 3")
	if !errors.IsCode(err, errors.CodeAborted) {
		t.Fatalf("Expected ABORTED, got %v", err)
	}
	if result == nil || result.ExitCode != 3 {
		t.Fatalf("Expected exit code 3, got %+v", result)
	}
	if result.Stderr != "boom\n" {
		t.Errorf("Stderr = %q", result.Stderr)
	}
}

func TestExecMissingTool(t *testing.T) {
	r := NewRunner()

	result, err := r.ExecIn(context.Background(), t.TempDir(), "stackgen-no-such-tool")
	if !errors.IsCode(err, errors.CodeUnavailable) {
		t.Fatalf("Expected UNAVAILABLE, got %v", err)
	}
	if result != nil {
		t.Errorf("Expected nil result, got %+v", result)
	}
}

func TestExecCancelled(t *testing.T) {
	requireShell(t)
	r := NewRunner()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.ExecIn(ctx, t.TempDir(), "sh", "-c", "sleep 5")
	if !errors.IsCode(err, errors.CodeAborted) {
		t.Fatalf("Expected ABORTED for cancelled context, got %v", err)
	}
}

func TestCheckRequiredTools(t *testing.T) {
	r := NewRunner()
	r.lookPath = func(name string) (string, error) {
		if name == "flutter" {
			return "", exec.ErrNotFound
		}
		return "/usr/bin/" + name, nil
	}

	if err := r.CheckRequiredTools("curl", "unzip"); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	err := r.CheckRequiredTools("curl", "flutter")
	if !errors.IsCode(err, errors.CodeUnavailable) {
		t.Fatalf("Expected UNAVAILABLE, got %v", err)
	}
}

func TestLastLine(t *testing.T) {
	if got := lastLine("a\nb\n\n"); got != "b" {
		t.Errorf("lastLine = %q", got)
	}
	if got := lastLine(""); got != "" {
		t.Errorf("lastLine(\"\") = %q", got)
	}
}
