// Package main provides the stackgen CLI entry point.
//
// Overview:
//   - Responsibility: CLI command parsing and execution
//   - Key Types: Cobra command tree
//   - Concurrency Model: Single-threaded CLI execution; the root context is
//     cancelled on SIGINT or SIGTERM
//   - Error Semantics: Diagnostics are printed before a non-zero exit
//   - Performance Notes: Templates are embedded, no startup file access
//
// Usage:
//
//	stackgen [command] [flags]
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"go.eggybyte.com/stackgen/core/log"
	"go.eggybyte.com/stackgen/internal/envconfig"
	"go.eggybyte.com/stackgen/internal/ui"
	"go.eggybyte.com/stackgen/logx"
)

var (
	verbose    bool
	jsonOutput bool
	logFormat  string
)

// envDefaults are the flag defaults taken from STACKGEN_* variables.
var envDefaults, envErr = envconfig.FromEnv()

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "stackgen",
	Short: "Generate Spring Boot, Angular and Flutter code from an entity schema",
	Long: `stackgen reads an entity schema and a project config and generates a
consistent CRUD stack from them:

- Spring Boot model, DTO, mapper, repository, service and REST controller
- Angular standalone form components, services, routes and labels
- Flutter models, HTTP services, providers and list screens

Every target derives its names from the same entity name, so the generated
code agrees on paths, routes and identifiers across the stack.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ui.SetVerbose(verbose)
		ui.SetJSONOutput(jsonOutput)
		if envErr != nil {
			return envErr
		}
		_, err := logx.ParseFormat(logFormat)
		return err
	},
}

// newLogger builds the structured logger configured by the global flags.
// Logs go to stderr; human-facing output goes through ui.
func newLogger() log.Logger {
	format, err := logx.ParseFormat(logFormat)
	if err != nil {
		format = logx.FormatLogfmt
	}
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return logx.New(
		logx.WithFormat(format),
		logx.WithLevel(level),
		logx.WithColor(!jsonOutput),
		logx.WithWriter(os.Stderr),
		logx.WithPayloadLimit(4096),
	)
}

// Execute runs the root command with a context cancelled on interrupt.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.Error("%v", err)
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", envDefaults.LogFormat, "Structured log format: logfmt or json")
}

func main() {
	os.Exit(Execute())
}
