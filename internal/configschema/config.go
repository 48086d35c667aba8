// Package configschema loads and validates the entity schema and project config.
//
// Overview:
//   - Responsibility: Parse both inputs once, fill defaults, validate, report diagnostics
//   - Key Types: ProjectConfig, Inputs, Diagnostics
//   - Concurrency Model: Returned values are immutable after loading
//   - Error Semantics: Problems are collected as diagnostics; Diagnostics.Err
//     turns error-level ones into an INVALID_ARGUMENT error
//   - Performance Notes: Single read and single parse per file
//
// Usage:
//
//	in, diags := configschema.Load("entities.json", "project.json")
//	if err := diags.Err("configschema.Load"); err != nil {
//	    return err
//	}
package configschema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"go.eggybyte.com/stackgen/internal/schema"
)

// Default values applied to optional project settings.
const (
	DefaultMobileDir   = "mobile"
	DefaultAPIBaseURL  = "http://10.0.2.2:8080"
	DefaultBackendPort = 8080
)

// ProjectConfig describes where and under which identifiers the scaffolding is generated.
//
// Parameters:
//   - Name: Root output directory
//   - Frontend: Frontend subdirectory under Name
//   - Backend: Backend subdirectory under Name
//   - App: Angular application name, also its directory
//   - MobileApp: Flutter application name, also its directory
//   - BackendPackage: Java package of the generated sources, e.g. com.example.shop
//   - Mobile: Mobile subdirectory under Name (default "mobile")
//   - APIBaseURL: Base URL the mobile client calls (default http://10.0.2.2:8080)
//   - BackendPort: Port the frontend dev proxy forwards /api to (default 8080)
//
// Concurrency:
//   - Immutable after loading
type ProjectConfig struct {
	Name           string `json:"name" yaml:"name" validate:"required,dirname"`
	Frontend       string `json:"frontend" yaml:"frontend" validate:"required,dirname"`
	Backend        string `json:"backend" yaml:"backend" validate:"required,dirname"`
	App            string `json:"app" yaml:"app" validate:"required,dirname"`
	MobileApp      string `json:"mobile_app" yaml:"mobile_app" validate:"required,dartpkg"`
	BackendPackage string `json:"backend_package" yaml:"backend_package" validate:"required,javapkg"`
	Mobile         string `json:"mobile,omitempty" yaml:"mobile,omitempty" validate:"dirname"`
	APIBaseURL     string `json:"api_base_url,omitempty" yaml:"api_base_url,omitempty" validate:"url"`
	BackendPort    int    `json:"backend_port,omitempty" yaml:"backend_port,omitempty" validate:"min=1,max=65535"`
}

// BackendPackagePath returns the package as a slash-separated directory path.
func (c *ProjectConfig) BackendPackagePath() string {
	return strings.ReplaceAll(c.BackendPackage, ".", "/")
}

// projectFile is the on-disk envelope of the project config.
type projectFile struct {
	Project *ProjectConfig `json:"project" yaml:"project"`
}

// Inputs bundles the two read-only inputs of one generation run.
type Inputs struct {
	Schema  *schema.EntitySchema
	Project *ProjectConfig
}

// Load reads both input files and returns them with the merged diagnostics.
// Inputs is nil when either file could not be read or parsed.
func Load(entitiesPath, projectPath string) (*Inputs, *Diagnostics) {
	diags := NewDiagnostics()

	s, sd := LoadEntities(entitiesPath)
	diags.Merge(sd)
	p, pd := LoadProject(projectPath)
	diags.Merge(pd)

	if s == nil || p == nil {
		return nil, diags
	}
	return &Inputs{Schema: s, Project: p}, diags
}

// LoadProject reads and validates a project config file.
//
// Parameters:
//   - path: JSON file, or YAML when the extension is .yaml or .yml
//
// Returns:
//   - *ProjectConfig: Parsed config with defaults applied (nil if unreadable)
//   - *Diagnostics: Validation issues found
func LoadProject(path string) (*ProjectConfig, *Diagnostics) {
	diags := NewDiagnostics()

	data, ok := readInput(path, "Pass --project with the path of the project config", diags)
	if !ok {
		return nil, diags
	}

	var file projectFile
	if err := decode(path, data, &file); err != nil {
		diags.AddError(fmt.Sprintf("Failed to parse project config: %v", err), path, syntaxHint(path))
		return nil, diags
	}
	if file.Project == nil {
		diags.AddError("missing top-level \"project\" object", path, `Wrap the settings as {"project": {...}}`)
		return nil, diags
	}

	CheckProject(file.Project, diags)
	return file.Project, diags
}

// CheckProject applies defaults to cfg and validates it into diags.
// It is used for configs that did not come from a file, such as preview requests.
func CheckProject(cfg *ProjectConfig, diags *Diagnostics) {
	applyDefaults(cfg)
	if err := newValidator().Struct(cfg); err != nil {
		validationDiagnostics(err, "project", diags)
	}
}

// applyDefaults fills in default values for missing optional settings.
func applyDefaults(cfg *ProjectConfig) {
	if cfg.Mobile == "" {
		cfg.Mobile = DefaultMobileDir
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	if cfg.BackendPort == 0 {
		cfg.BackendPort = DefaultBackendPort
	}
}

// readInput reads a whole input file, recording a diagnostic on failure.
func readInput(path, missingHint string, diags *Diagnostics) ([]byte, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			diags.AddError("input file not found", path, missingHint)
		} else {
			diags.AddError(fmt.Sprintf("Failed to read input file: %v", err), path, "Check file permissions")
		}
		return nil, false
	}
	return data, true
}

// decode parses data as YAML or JSON based on the file extension.
func decode(path string, data []byte, out any) error {
	if isYAML(path) {
		return yaml.Unmarshal(data, out)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(out); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after top-level value")
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func syntaxHint(path string) string {
	if isYAML(path) {
		return "Check YAML syntax"
	}
	return "Check JSON syntax"
}
