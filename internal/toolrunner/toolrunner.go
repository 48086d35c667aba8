// Package toolrunner provides execution of the external scaffolding tools.
//
// Overview:
//   - Responsibility: Execute curl, unzip, npx, npm and flutter with captured output
//   - Key Types: Runner, CommandResult
//   - Concurrency Model: Sequential command execution with context support
//   - Error Semantics: UNAVAILABLE when the tool is not on PATH, ABORTED when it
//     ran and failed; the CommandResult is returned in both cases once the process started
//   - Performance Notes: Output is buffered in memory
//
// Usage:
//
//	runner := toolrunner.NewRunner(toolrunner.WithLogger(logger))
//	result, err := runner.ExecIn(ctx, "shop/mobile", "flutter", "create", "shop_app")
package toolrunner

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.eggybyte.com/stackgen/core/errors"
	"go.eggybyte.com/stackgen/core/log"
)

// Runner provides execution of external tools.
//
// Parameters:
//   - verbose: Whether to log command output
//   - logger: Structured logger for command lines and results
//
// Concurrency:
//   - Safe for concurrent use after configuration
type Runner struct {
	verbose  bool
	logger   log.Logger
	lookPath func(string) (string, error)
}

// CommandResult represents the result of a command execution.
//
// Parameters:
//   - ExitCode: Process exit code (-1 if the process did not exit normally)
//   - Stdout: Standard output content
//   - Stderr: Standard error content
//   - Duration: Command execution time
//
// Concurrency:
//   - Immutable after creation
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for command tracing.
func WithLogger(logger log.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithVerbose enables logging of command output.
func WithVerbose(enabled bool) Option {
	return func(r *Runner) {
		r.verbose = enabled
	}
}

// NewRunner creates a new tool runner.
//
// Parameters:
//   - opts: Optional logger and verbosity
//
// Returns:
//   - *Runner: Tool runner instance
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		logger:   log.Nop(),
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ExecIn runs a command in dir and returns the result.
//
// Parameters:
//   - ctx: Context for cancellation; cancelling kills the process
//   - dir: Working directory
//   - name: Command name, resolved on PATH
//   - args: Command arguments
//
// Returns:
//   - *CommandResult: Command execution result (nil if the tool is missing)
//   - error: UNAVAILABLE or ABORTED coded error
//
// Concurrency:
//   - Blocks until the process exits
func (r *Runner) ExecIn(ctx context.Context, dir, name string, args ...string) (*CommandResult, error) {
	op := "toolrunner." + name
	if _, err := r.lookPath(name); err != nil {
		return nil, errors.Wrapf(errors.CodeUnavailable, op, err, "tool not found in PATH: %s", name)
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	line := strings.TrimSpace(name + " " + strings.Join(args, " "))
	r.logger.Debug("running command", log.Str("cmd", line), log.Str("dir", dir))

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &CommandResult{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	r.logger.Debug("command finished",
		log.Str("cmd", line),
		log.Int("exit_code", result.ExitCode),
		log.Dur("duration", result.Duration))
	if r.verbose && result.Stdout != "" {
		r.logger.Debug("command output", log.Str("cmd", line), log.Str("stdout", result.Stdout))
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, errors.Wrapf(errors.CodeAborted, op, ctxErr, "%s interrupted", line)
	}
	if err != nil {
		msg := fmt.Sprintf("%s exited with code %d", line, result.ExitCode)
		if s := lastLine(result.Stderr); s != "" {
			msg += ": " + s
		}
		return result, errors.Wrapf(errors.CodeAborted, op, err, "%s", msg)
	}
	return result, nil
}

// available reports whether toolName is on PATH.
func (r *Runner) available(toolName string) bool {
	_, err := r.lookPath(toolName)
	return err == nil
}

// CheckRequiredTools returns an UNAVAILABLE error naming every missing tool.
func (r *Runner) CheckRequiredTools(tools ...string) error {
	var missing []string
	for _, tool := range tools {
		if !r.available(tool) {
			missing = append(missing, tool)
		}
	}
	if len(missing) > 0 {
		return errors.Newf(errors.CodeUnavailable, "missing required tools: %s", strings.Join(missing, ", "))
	}
	return nil
}

// lastLine returns the last non-empty line of s.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
