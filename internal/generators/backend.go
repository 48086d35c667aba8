package generators

import (
	"path"

	"go.eggybyte.com/stackgen/internal/configschema"
	"go.eggybyte.com/stackgen/internal/schema"
	"go.eggybyte.com/stackgen/internal/templates"
	"go.eggybyte.com/stackgen/internal/typemap"
)

// BackendEmitter emits the Spring Boot persistence and REST layer.
//
// Per entity it writes, under <name>/<backend>/src/main/java/<package path>/:
//   - model/<P>.java, dto/<P>Dto.java, mapper/<P>Mapper.java
//   - repository/<P>Repository.java, service/<P>Service.java, controller/<P>Controller.java
//
// The backend has no aggregate files.
type BackendEmitter struct {
	loader *templates.Loader
}

// NewBackendEmitter creates a backend emitter rendering through loader.
func NewBackendEmitter(loader *templates.Loader) *BackendEmitter {
	return &BackendEmitter{loader: loader}
}

// Target implements Emitter.
func (b *BackendEmitter) Target() typemap.Target {
	return typemap.Backend
}

// BackendRoot returns the root of the backend source tree relative to the output directory.
func BackendRoot(cfg *configschema.ProjectConfig) string {
	return path.Join(cfg.Name, cfg.Backend)
}

// javaRoot returns the directory of the backend package.
func javaRoot(cfg *configschema.ProjectConfig) string {
	return path.Join(BackendRoot(cfg), "src", "main", "java", cfg.BackendPackagePath())
}

// EmitEntity implements Emitter.
func (b *BackendEmitter) EmitEntity(e schema.Entity, cfg *configschema.ProjectConfig) ([]File, error) {
	view := newEntityView(e, cfg, typemap.Backend)
	root := javaRoot(cfg)
	p := view.Pascal

	return renderAll(b.loader, typemap.Backend, view,
		job{path.Join(root, "model", p+".java"), "backend/model.java.tmpl"},
		job{path.Join(root, "dto", p+"Dto.java"), "backend/dto.java.tmpl"},
		job{path.Join(root, "mapper", p+"Mapper.java"), "backend/mapper.java.tmpl"},
		job{path.Join(root, "repository", p+"Repository.java"), "backend/repository.java.tmpl"},
		job{path.Join(root, "service", p+"Service.java"), "backend/service.java.tmpl"},
		job{path.Join(root, "controller", p+"Controller.java"), "backend/controller.java.tmpl"},
	)
}

// EmitAggregate implements Emitter.
func (b *BackendEmitter) EmitAggregate(*schema.EntitySchema, *configschema.ProjectConfig) ([]File, error) {
	return nil, nil
}
