// Package generators turns an entity schema into per-target source trees.
//
// Overview:
//   - Responsibility: Backend, frontend and mobile emitters behind one Emitter
//     interface, plus the Pipeline that renders, bootstraps and writes them
//   - Key Types: File, Emitter, Pipeline, StepResult
//   - Concurrency Model: Emitters are pure functions of read-only inputs; a
//     Pipeline runs one linear pass
//   - Error Semantics: Render failures are INTERNAL and abort before any write;
//     bootstrap failures are fatal unless keep-going is set
//   - Performance Notes: Output is built in memory; templates are parsed once
//
// Usage:
//
//	p := generators.NewPipeline(fs, runner, generators.WithTargets(typemap.AllTargets...))
//	files, err := p.Plan(ctx, in.Schema, in.Project)
//	report, err := p.Run(ctx, in.Schema, in.Project)
package generators

import (
	"fmt"

	"go.eggybyte.com/stackgen/core/errors"
	"go.eggybyte.com/stackgen/internal/configschema"
	"go.eggybyte.com/stackgen/internal/schema"
	"go.eggybyte.com/stackgen/internal/templates"
	"go.eggybyte.com/stackgen/internal/typemap"
)

// File is one generated artifact held in memory.
type File struct {
	Target  typemap.Target `json:"target"`
	Path    string         `json:"path"` // Slash-separated, relative to the output root
	Content string         `json:"content"`
}

// Emitter produces the source files of one target.
//
// EmitEntity returns the files that belong to a single entity; EmitAggregate
// returns the files that list every entity (routes, registrations, labels).
// Implementations must not retain or modify their arguments.
type Emitter interface {
	Target() typemap.Target
	EmitEntity(e schema.Entity, cfg *configschema.ProjectConfig) ([]File, error)
	EmitAggregate(s *schema.EntitySchema, cfg *configschema.ProjectConfig) ([]File, error)
}

// Verifier is implemented by emitters that check their complete output set.
type Verifier interface {
	Verify(files []File) error
}

// NewEmitter returns the emitter for target, rendering through loader.
func NewEmitter(target typemap.Target, loader *templates.Loader) (Emitter, error) {
	switch target {
	case typemap.Backend:
		return NewBackendEmitter(loader), nil
	case typemap.Frontend:
		return NewFrontendEmitter(loader), nil
	case typemap.Mobile:
		return NewMobileEmitter(loader), nil
	default:
		return nil, errors.Newf(errors.CodeInvalidArgument, "unknown target %q", target)
	}
}

// Emit runs one emitter over the whole schema: every entity in order, then the
// aggregate files, then the emitter's own verification when it has one.
func Emit(em Emitter, s *schema.EntitySchema, cfg *configschema.ProjectConfig) ([]File, error) {
	var files []File
	for _, e := range s.Entities {
		out, err := em.EmitEntity(e, cfg)
		if err != nil {
			return nil, fmt.Errorf("%s entity %s: %w", em.Target(), e.Name, err)
		}
		files = append(files, out...)
	}

	agg, err := em.EmitAggregate(s, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s aggregate: %w", em.Target(), err)
	}
	files = append(files, agg...)

	if v, ok := em.(Verifier); ok {
		if err := v.Verify(files); err != nil {
			return nil, err
		}
	}
	return files, nil
}

// render produces one File from a template, tagging failures with the output path.
func render(loader *templates.Loader, target typemap.Target, path, tmpl string, data any) (File, error) {
	content, err := loader.LoadAndRender(tmpl, data)
	if err != nil {
		return File{}, errors.Wrapf(errors.CodeInternal, "generators.render", err, "render %s", path)
	}
	return File{Target: target, Path: path, Content: content}, nil
}

// job pairs a template with the output path it renders to.
type job struct {
	path string
	tmpl string
}

// renderAll renders jobs in order with the same view model.
func renderAll(loader *templates.Loader, target typemap.Target, data any, jobs ...job) ([]File, error) {
	files := make([]File, 0, len(jobs))
	for _, j := range jobs {
		f, err := render(loader, target, j.path, j.tmpl, data)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}
