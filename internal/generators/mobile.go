package generators

import (
	"path"

	"go.eggybyte.com/stackgen/internal/configschema"
	"go.eggybyte.com/stackgen/internal/schema"
	"go.eggybyte.com/stackgen/internal/templates"
	"go.eggybyte.com/stackgen/internal/typemap"
)

// MobileEmitter emits the Flutter client: model, service, provider and list
// screen per entity, and a main.dart that registers all of them.
type MobileEmitter struct {
	loader *templates.Loader
}

// NewMobileEmitter creates a mobile emitter rendering through loader.
func NewMobileEmitter(loader *templates.Loader) *MobileEmitter {
	return &MobileEmitter{loader: loader}
}

// Target implements Emitter.
func (m *MobileEmitter) Target() typemap.Target {
	return typemap.Mobile
}

// MobileRoot returns the Flutter project directory relative to the output directory.
func MobileRoot(cfg *configschema.ProjectConfig) string {
	return path.Join(cfg.Name, cfg.Mobile, cfg.MobileApp)
}

// mobileEntityView adds the list tile expression to the shared entity view.
type mobileEntityView struct {
	EntityView
	TileTitle string
}

func newMobileEntityView(e schema.Entity, cfg *configschema.ProjectConfig) mobileEntityView {
	view := newEntityView(e, cfg, typemap.Mobile)
	for i := range view.Fields {
		// Decoded JSON may hold null for any column.
		if view.Fields[i].Type != typemap.Fallback(typemap.Mobile) {
			view.Fields[i].Type += "?"
		}
	}
	return mobileEntityView{EntityView: view, TileTitle: tileTitle(view.Fields)}
}

// tileTitle returns the Dart expression shown as a list tile title: the first
// string column, else the first column rendered as text.
func tileTitle(fields []FieldView) string {
	for _, f := range fields {
		if f.IsString {
			return "item." + f.Name + " ?? ''"
		}
	}
	if len(fields) > 0 {
		return "item." + fields[0].Name + "?.toString() ?? ''"
	}
	return "item.toString()"
}

// EmitEntity implements Emitter.
func (m *MobileEmitter) EmitEntity(e schema.Entity, cfg *configschema.ProjectConfig) ([]File, error) {
	view := newMobileEntityView(e, cfg)
	lib := path.Join(MobileRoot(cfg), "lib")
	l := view.Lower

	return renderAll(m.loader, typemap.Mobile, view,
		job{path.Join(lib, "models", l+"_model.dart"), "mobile/model.dart.tmpl"},
		job{path.Join(lib, "services", l+"_service.dart"), "mobile/service.dart.tmpl"},
		job{path.Join(lib, "providers", l+"_provider.dart"), "mobile/provider.dart.tmpl"},
		job{path.Join(lib, "screens", l+"_list_screen.dart"), "mobile/list_screen.dart.tmpl"},
	)
}

// EmitAggregate implements Emitter.
func (m *MobileEmitter) EmitAggregate(s *schema.EntitySchema, cfg *configschema.ProjectConfig) ([]File, error) {
	view := newAppView(s, cfg, typemap.Mobile)
	f, err := render(m.loader, typemap.Mobile, path.Join(MobileRoot(cfg), "lib", "main.dart"), "mobile/main.dart.tmpl", view)
	if err != nil {
		return nil, err
	}
	return []File{f}, nil
}
