package generators

import (
	"encoding/json"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"go.eggybyte.com/stackgen/core/errors"
	"go.eggybyte.com/stackgen/internal/configschema"
	"go.eggybyte.com/stackgen/internal/schema"
	"go.eggybyte.com/stackgen/internal/templates"
	"go.eggybyte.com/stackgen/internal/typemap"
)

// SaveButtonKey is the translation key of the form submit button.
const SaveButtonKey = "SAVE_BUTTON"

// FrontendEmitter emits the Angular application: one form component, DTO and
// service per entity, plus routes, shell component, providers, dev proxy,
// Cypress config and English labels.
type FrontendEmitter struct {
	loader *templates.Loader
}

// NewFrontendEmitter creates a frontend emitter rendering through loader.
func NewFrontendEmitter(loader *templates.Loader) *FrontendEmitter {
	return &FrontendEmitter{loader: loader}
}

// Target implements Emitter.
func (f *FrontendEmitter) Target() typemap.Target {
	return typemap.Frontend
}

// FrontendRoot returns the Angular project directory relative to the output directory.
func FrontendRoot(cfg *configschema.ProjectConfig) string {
	return path.Join(cfg.Name, cfg.Frontend, cfg.App)
}

// EmitEntity implements Emitter.
func (f *FrontendEmitter) EmitEntity(e schema.Entity, cfg *configschema.ProjectConfig) ([]File, error) {
	view := newEntityView(e, cfg, typemap.Frontend)
	root := FrontendRoot(cfg)
	l := view.Lower
	comp := path.Join(root, "src", "app", "components", l)

	return renderAll(f.loader, typemap.Frontend, view,
		job{path.Join(comp, l+".component.ts"), "frontend/component.ts.tmpl"},
		job{path.Join(comp, l+".component.html"), "frontend/component.html.tmpl"},
		job{path.Join(comp, l+".component.spec.ts"), "frontend/component.spec.ts.tmpl"},
		job{path.Join(comp, l+".stories.ts"), "frontend/stories.ts.tmpl"},
		job{path.Join(root, "cypress", "e2e", l+".cy.ts"), "frontend/e2e.cy.ts.tmpl"},
		job{path.Join(root, "src", "app", "core", "models", l+".dto.ts"), "frontend/dto.ts.tmpl"},
		job{path.Join(root, "src", "app", "core", "services", l+".service.ts"), "frontend/service.ts.tmpl"},
	)
}

// Label is one translation entry.
type Label struct {
	Key   string
	Value string
}

// frontendAppView adds the ordered translation table to the shared aggregate view.
type frontendAppView struct {
	AppView
	Labels []Label
}

// labels returns form titles and field labels in schema order, first
// definition winning for repeated keys, followed by the save button.
func labels(app AppView) []Label {
	var out []Label
	seen := make(map[string]bool)
	add := func(key, value string) {
		if !seen[key] {
			seen[key] = true
			out = append(out, Label{Key: key, Value: value})
		}
	}
	for _, e := range app.Entities {
		add(e.FormTitleKey(), e.Title+" Form")
		for _, fld := range e.Fields {
			add(fld.LabelKey, fld.Label)
		}
	}
	add(SaveButtonKey, "Save")
	return out
}

// EmitAggregate implements Emitter.
func (f *FrontendEmitter) EmitAggregate(s *schema.EntitySchema, cfg *configschema.ProjectConfig) ([]File, error) {
	app := newAppView(s, cfg, typemap.Frontend)
	view := frontendAppView{AppView: app, Labels: labels(app)}
	root := FrontendRoot(cfg)
	src := path.Join(root, "src", "app")

	return renderAll(f.loader, typemap.Frontend, view,
		job{path.Join(src, "app.routes.ts"), "frontend/app.routes.ts.tmpl"},
		job{path.Join(src, "app.component.ts"), "frontend/app.component.ts.tmpl"},
		job{path.Join(src, "app.component.html"), "frontend/app.component.html.tmpl"},
		job{path.Join(src, "app.component.scss"), "frontend/app.component.scss.tmpl"},
		job{path.Join(src, "app.config.ts"), "frontend/app.config.ts.tmpl"},
		job{path.Join(root, "proxy.conf.json"), "frontend/proxy.conf.json.tmpl"},
		job{path.Join(root, "cypress.config.ts"), "frontend/cypress.config.ts.tmpl"},
		job{path.Join(root, "src", "assets", "i18n", "en.json"), "frontend/en.json.tmpl"},
	)
}

var (
	// import { A, B } from './x';   import type { A } from '../y';
	staticImport  = regexp.MustCompile(`import\s+(?:type\s+)?\{([^}]*)\}\s+from\s+'(\.[^']*)'`)
	// import('./x').then(m => m.A)
	dynamicImport = regexp.MustCompile(`import\('(\.[^']*)'\)\.then\(\s*m\s*=>\s*m\.(\w+)\s*\)`)
	templateURL   = regexp.MustCompile(`templateUrl:\s*'(\.[^']*)'`)
	// {{ 'KEY' | translate }}
	translateKey  = regexp.MustCompile(`'([A-Z0-9_]+)'\s*\|\s*translate`)
)

// Verify implements Verifier. It checks that every relative import of every
// generated TypeScript file names a file in the same output set that exports
// the imported symbol, that every templateUrl exists, and that every
// translated key exists in en.json.
func (f *FrontendEmitter) Verify(files []File) error {
	byPath := make(map[string]string, len(files))
	for _, file := range files {
		if file.Target == typemap.Frontend {
			byPath[file.Path] = file.Content
		}
	}

	var problems []string
	var keys map[string]any
	for p, content := range byPath {
		if path.Base(p) == "en.json" {
			if err := json.Unmarshal([]byte(content), &keys); err != nil {
				problems = append(problems, fmt.Sprintf("%s: invalid JSON: %v", p, err))
			}
		}
	}

	paths := make([]string, 0, len(byPath))
	for p := range byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		content := byPath[p]
		dir := path.Dir(p)

		switch {
		case strings.HasSuffix(p, ".ts"):
			for _, m := range staticImport.FindAllStringSubmatch(content, -1) {
				for _, sym := range strings.Split(m[1], ",") {
					problems = append(problems, checkExport(byPath, p, path.Join(dir, m[2])+".ts", strings.TrimSpace(sym))...)
				}
			}
			for _, m := range dynamicImport.FindAllStringSubmatch(content, -1) {
				problems = append(problems, checkExport(byPath, p, path.Join(dir, m[1])+".ts", m[2])...)
			}
			if m := templateURL.FindStringSubmatch(content); m != nil {
				if _, ok := byPath[path.Join(dir, m[1])]; !ok {
					problems = append(problems, fmt.Sprintf("%s: template %s is not generated", p, m[1]))
				}
			}
		case strings.HasSuffix(p, ".html"):
			for _, m := range translateKey.FindAllStringSubmatch(content, -1) {
				if _, ok := keys[m[1]]; !ok {
					problems = append(problems, fmt.Sprintf("%s: translation key %s is not defined", p, m[1]))
				}
			}
		}
	}

	if len(problems) > 0 {
		return errors.Build(errors.CodeInternal).
			WithOp("generators.FrontendEmitter.Verify").
			WithMsgf("dangling frontend references: %s", strings.Join(problems, "; ")).
			WithDetails(problems).
			Err()
	}
	return nil
}

// checkExport reports whether target is in the output set and exports sym.
func checkExport(byPath map[string]string, from, target, sym string) []string {
	if sym == "" {
		return nil
	}
	content, ok := byPath[target]
	if !ok {
		return []string{fmt.Sprintf("%s: imports %s from %s which is not generated", from, sym, target)}
	}
	decl := regexp.MustCompile(`export\s+(?:class|interface|const|function|type)\s+` + regexp.QuoteMeta(sym) + `\b`)
	if !decl.MatchString(content) {
		return []string{fmt.Sprintf("%s: %s does not export %s", from, target, sym)}
	}
	return nil
}
