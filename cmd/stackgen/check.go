package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.eggybyte.com/stackgen/internal/configschema"
	"go.eggybyte.com/stackgen/internal/templates"
	"go.eggybyte.com/stackgen/internal/ui"
)

var (
	entitiesPath string
	projectPath  string
)

// checkCmd represents the check command.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the entity schema and project config",
	Long: `Validate the entity schema and project config without generating anything.

Reports:
- Errors: unreadable files, invalid names, invalid project settings
- Warnings: duplicate entities or columns, reserved words, empty schemas
- Info: unrecognized column types that fall back to a permissive type

Every embedded template is also parsed, so a broken build fails here.

Example:
  stackgen check --entities entities.json --project project.yaml`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	addInputFlags(checkCmd)
	rootCmd.AddCommand(checkCmd)
}

// addInputFlags registers the --entities and --project flags on cmd.
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&entitiesPath, "entities", envDefaults.Entities, "Entity schema file (JSON, or YAML for .yaml/.yml)")
	cmd.Flags().StringVar(&projectPath, "project", envDefaults.Project, "Project config file (JSON, or YAML for .yaml/.yml)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ui.Info("Checking %s and %s...", entitiesPath, projectPath)

	in, diags := configschema.Load(entitiesPath, projectPath)
	displayDiagnostics(diags)
	if err := diags.Err("check"); err != nil {
		return err
	}
	if err := templates.NewLoader().ValidateAllTemplates(); err != nil {
		ui.Error("Embedded templates failed to parse")
		return err
	}

	warnings := diags.Count(configschema.SeverityWarning)
	infos := diags.Count(configschema.SeverityInfo)
	if warnings > 0 || infos > 0 {
		ui.Warning("Check completed with %d warnings and %d info messages", warnings, infos)
	} else {
		ui.Success("Check passed: %d entities, no issues found", len(in.Schema.Entities))
	}
	return nil
}

// displayDiagnostics prints diagnostics grouped by severity.
func displayDiagnostics(diags *configschema.Diagnostics) {
	groups := []struct {
		severity configschema.DiagnosticSeverity
		heading  string
		print    func(string, ...any)
	}{
		{configschema.SeverityError, "Errors found:", ui.Error},
		{configschema.SeverityWarning, "Warnings found:", ui.Warning},
		{configschema.SeverityInfo, "Info messages:", ui.Info},
	}

	items := diags.Items()
	for _, g := range groups {
		if diags.Count(g.severity) == 0 {
			continue
		}
		g.print(g.heading)
		for _, d := range items {
			if d.Severity != g.severity {
				continue
			}
			ui.Info("  %s", describe(d))
		}
	}
}

func describe(d configschema.Diagnostic) string {
	text := d.Message
	if d.Path != "" {
		text = d.Path + ": " + text
	}
	if d.Suggestion != "" {
		text = fmt.Sprintf("%s\n    Suggestion: %s", text, d.Suggestion)
	}
	return text
}
