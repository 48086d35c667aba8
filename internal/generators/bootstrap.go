package generators

import (
	"context"
	"path"
	"strings"

	"go.eggybyte.com/stackgen/internal/configschema"
	"go.eggybyte.com/stackgen/internal/toolrunner"
	"go.eggybyte.com/stackgen/internal/typemap"
)

// SpringInitializrURL is the project generator the backend bootstrap downloads from.
const SpringInitializrURL = "https://start.spring.io/starter.zip"

// backendArchive is the Initializr download, removed after extraction.
const backendArchive = "app.zip"

// CommandRunner runs one external command in a directory.
// *toolrunner.Runner implements it.
type CommandRunner interface {
	ExecIn(ctx context.Context, dir, name string, args ...string) (*toolrunner.CommandResult, error)
}

// Step is one external bootstrap command.
type Step struct {
	Target  typemap.Target
	Name    string   // Short label used in logs and reports
	Dir     string   // Working directory relative to the output root
	Command string   // Executable looked up on PATH
	Args    []string // Command arguments
}

// CommandLine returns the command as it would be typed in a shell.
func (s Step) CommandLine() string {
	return strings.TrimSpace(s.Command + " " + strings.Join(s.Args, " "))
}

// StepResult is the outcome of one bootstrap step.
type StepResult struct {
	Step   Step
	Result *toolrunner.CommandResult // nil when the tool could not be started
	Err    error
}

// OK reports whether the step succeeded.
func (r StepResult) OK() bool {
	return r.Err == nil
}

// frontendPackages are installed into the Angular app after creation.
var frontendPackages = []string{
	"primeng", "primeicons", "primeflex",
	"@angular/animations", "@angular/forms",
	"@ngx-translate/core", "@ngx-translate/http-loader",
}

// frontendDevPackages back the generated stories and Cypress specs.
var frontendDevPackages = []string{
	"@storybook/angular", "@storybook/cli", "cypress",
}

// BootstrapSteps returns the tool invocations that create the base project of
// each target, in the fixed target order.
func BootstrapSteps(cfg *configschema.ProjectConfig, targets []typemap.Target) []Step {
	var steps []Step
	for _, t := range targets {
		switch t {
		case typemap.Backend:
			dir := BackendRoot(cfg)
			steps = append(steps,
				Step{
					Target: t, Name: "spring-initializr", Dir: dir, Command: "curl",
					Args: []string{
						"-fsSL", SpringInitializrURL,
						"-d", "dependencies=web,data-jpa,h2",
						"-d", "packageName=" + cfg.BackendPackage,
						"-o", backendArchive,
					},
				},
				Step{Target: t, Name: "unzip", Dir: dir, Command: "unzip", Args: []string{"-o", backendArchive, "-d", "."}},
			)
		case typemap.Frontend:
			parent := path.Join(cfg.Name, cfg.Frontend)
			app := FrontendRoot(cfg)
			steps = append(steps,
				Step{
					Target: t, Name: "angular-new", Dir: parent, Command: "npx",
					Args: []string{"-y", "@angular/cli@latest", "new", cfg.App, "--style=scss", "--routing=false", "--skip-git", "--skip-install"},
				},
				Step{Target: t, Name: "npm-install", Dir: app, Command: "npm", Args: append([]string{"install"}, frontendPackages...)},
				Step{Target: t, Name: "npm-install-dev", Dir: app, Command: "npm", Args: append([]string{"install", "--save-dev"}, frontendDevPackages...)},
			)
		case typemap.Mobile:
			steps = append(steps, Step{
				Target: t, Name: "flutter-create", Dir: path.Join(cfg.Name, cfg.Mobile), Command: "flutter",
				Args: []string{"create", cfg.MobileApp},
			})
		}
	}
	return steps
}
