// Package templates provides loading and rendering of the embedded source templates.
//
// Overview:
//   - Responsibility: Load per-target text/template files and render them from view models
//   - Key Types: Loader
//   - Concurrency Model: Parsed templates are cached under a mutex; safe for concurrent use
//   - Error Semantics: NOT_FOUND for a missing template, INTERNAL for parse and render failures
//   - Performance Notes: Each template is parsed once per Loader
//
// Usage:
//
//	loader := templates.NewLoader()
//	content, err := loader.LoadAndRender("backend/model.java.tmpl", view)
package templates

import (
	"embed"
	"encoding/json"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"text/template"

	"go.eggybyte.com/stackgen/core/errors"
)

//go:embed templates
var templateFS embed.FS

// Loader provides template loading and rendering functionality.
//
// Concurrency:
//   - Safe for concurrent use
//
// Performance:
//   - Template caching, no file system access beyond the embedded tree
type Loader struct {
	fsys  fs.FS
	mu    sync.Mutex
	cache map[string]*template.Template
}

// NewLoader creates a loader over the embedded template tree.
func NewLoader() *Loader {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		// fs.Sub only fails for an invalid directory name.
		panic(err)
	}
	return NewLoaderFS(sub)
}

// NewLoaderFS creates a loader over an arbitrary template tree.
// Paths passed to the loader are relative to the root of fsys.
func NewLoaderFS(fsys fs.FS) *Loader {
	return &Loader{
		fsys:  fsys,
		cache: make(map[string]*template.Template),
	}
}

// funcMap holds the helpers available to every template.
var funcMap = template.FuncMap{
	// i18n renders an Angular interpolation of a translated key.
	"i18n": func(key string) string {
		return "{{ '" + key + "' | translate }}"
	},
	// json renders a value as a JSON literal, used for strings embedded in JSON files.
	"json": func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	},
}

// LoadTemplate returns the raw content of a template file.
//
// Parameters:
//   - templatePath: Slash-separated path relative to the template root
//
// Returns:
//   - string: Template content
//   - error: NOT_FOUND if the template does not exist
func (l *Loader) LoadTemplate(templatePath string) (string, error) {
	content, err := fs.ReadFile(l.fsys, templatePath)
	if err != nil {
		return "", errors.Wrapf(errors.CodeNotFound, "templates.LoadTemplate", err, "failed to load template %s", templatePath)
	}
	return string(content), nil
}

// parsed returns the cached parsed template for templatePath, parsing it on first use.
func (l *Loader) parsed(templatePath string) (*template.Template, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if tmpl, ok := l.cache[templatePath]; ok {
		return tmpl, nil
	}
	content, err := l.LoadTemplate(templatePath)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New(path.Base(templatePath)).Funcs(funcMap).Option("missingkey=error").Parse(content)
	if err != nil {
		return nil, errors.Wrapf(errors.CodeInternal, "templates.Parse", err, "failed to parse template %s", templatePath)
	}
	l.cache[templatePath] = tmpl
	return tmpl, nil
}

// LoadAndRender loads a template and renders it with data.
//
// Parameters:
//   - templatePath: Path to template file
//   - data: View model passed as the template's dot
//
// Returns:
//   - string: Rendered content
//   - error: Loading or rendering error, naming the template
//
// Concurrency:
//   - Safe for concurrent use; execution of a parsed template does not mutate it
func (l *Loader) LoadAndRender(templatePath string, data any) (string, error) {
	tmpl, err := l.parsed(templatePath)
	if err != nil {
		return "", err
	}

	var result strings.Builder
	if err := tmpl.Execute(&result, data); err != nil {
		return "", errors.Wrapf(errors.CodeInternal, "templates.Render", err, "failed to render template %s", templatePath)
	}
	return result.String(), nil
}

// ListTemplates lists all template files in sorted order.
func (l *Loader) ListTemplates() ([]string, error) {
	var templates []string
	err := fs.WalkDir(l.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".tmpl") {
			templates = append(templates, p)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, "templates.List", err)
	}
	sort.Strings(templates)
	return templates, nil
}

// ValidateAllTemplates parses every template, returning the first failure.
func (l *Loader) ValidateAllTemplates() error {
	templates, err := l.ListTemplates()
	if err != nil {
		return err
	}
	for _, p := range templates {
		if _, err := l.parsed(p); err != nil {
			return err
		}
	}
	return nil
}
