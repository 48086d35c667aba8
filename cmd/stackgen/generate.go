package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"go.eggybyte.com/stackgen/internal/configschema"
	"go.eggybyte.com/stackgen/internal/generators"
	"go.eggybyte.com/stackgen/internal/projectfs"
	"go.eggybyte.com/stackgen/internal/toolrunner"
	"go.eggybyte.com/stackgen/internal/typemap"
	"go.eggybyte.com/stackgen/internal/ui"
)

var (
	outDir    string
	targetArg string
	dryRun    bool
	bootstrap bool
	keepGoing bool
)

// generateCmd represents the generate command.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the selected targets from the entity schema",
	Long: `Generate backend, frontend and mobile sources from the entity schema.

All targets are rendered in memory first; nothing is written if any template
fails. With --bootstrap the base projects are created first with Spring
Initializr, the Angular CLI and flutter create, and the files those tools
own (angular.json, package.json, styles.scss, pubspec.yaml) are patched
after the generated files are written.

Examples:
  stackgen generate --dry-run
  stackgen generate --targets backend,mobile --out ./build
  stackgen generate --bootstrap --keep-going`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	addInputFlags(generateCmd)
	generateCmd.Flags().StringVar(&outDir, "out", envDefaults.Out, "Output directory")
	generateCmd.Flags().StringVar(&targetArg, "targets", envDefaults.Targets, "Comma-separated targets: backend, frontend, mobile (default all)")
	generateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the file tree without writing")
	generateCmd.Flags().BoolVar(&bootstrap, "bootstrap", envDefaults.Bootstrap, "Create the base projects with the external tools first")
	generateCmd.Flags().BoolVar(&keepGoing, "keep-going", envDefaults.KeepGoing, "Report bootstrap failures as warnings instead of stopping")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	targets, err := typemap.ParseTargets(splitList(targetArg))
	if err != nil {
		return err
	}

	in, diags := configschema.Load(entitiesPath, projectPath)
	displayDiagnostics(diags)
	if err := diags.Err("generate"); err != nil {
		return err
	}

	logger := newLogger()
	ctx := cmd.Context()
	opts := []generators.PipelineOption{
		generators.WithTargets(targets...),
		generators.WithLogger(logger),
		generators.WithBootstrap(bootstrap),
		generators.WithKeepGoing(keepGoing),
	}

	if dryRun {
		files, err := generators.NewPipeline(nil, nil, opts...).Plan(ctx, in.Schema, in.Project)
		if err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		if err := generators.PrintTree(ui.Writer(), outDir, files); err != nil {
			return err
		}
		ui.Success("Dry run: %d files would be written to %s", len(files), outDir)
		return nil
	}

	var runner generators.CommandRunner
	if bootstrap {
		r := toolrunner.NewRunner(toolrunner.WithLogger(logger), toolrunner.WithVerbose(verbose))
		if err := r.CheckRequiredTools(requiredTools(in.Project, targets)...); err != nil {
			if !keepGoing {
				return err
			}
			ui.Warning("%v", err)
		}
		runner = r
	}

	ui.Info("Generating %s for %d entities...", joinTargets(targets), len(in.Schema.Entities))
	fs := projectfs.NewProjectFS(outDir, logger)
	report, err := generators.NewPipeline(fs, runner, opts...).Run(ctx, in.Schema, in.Project)
	for _, s := range report.Steps {
		if s.OK() {
			ui.Debug("%s: %s", s.Step.Name, s.Step.CommandLine())
		}
	}
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	for _, s := range report.FailedSteps() {
		ui.Warning("Bootstrap step %s (%s) failed: %v", s.Step.Name, s.Step.Target, s.Err)
	}
	for _, p := range report.Patched {
		ui.Debug("Patched %s", p)
	}
	ui.Success("Generated %d files in %s (run %s)", report.Written, outDir, report.RunID)
	return nil
}

// requiredTools lists the executables the bootstrap steps of targets need, in first-use order.
func requiredTools(cfg *configschema.ProjectConfig, targets []typemap.Target) []string {
	var tools []string
	seen := make(map[string]bool)
	for _, s := range generators.BootstrapSteps(cfg, targets) {
		if !seen[s.Command] {
			seen[s.Command] = true
			tools = append(tools, s.Command)
		}
	}
	return tools
}

// splitList splits a comma-separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func joinTargets(targets []typemap.Target) string {
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
