package generators

import (
	"go.eggybyte.com/stackgen/internal/configschema"
	"go.eggybyte.com/stackgen/internal/naming"
	"go.eggybyte.com/stackgen/internal/schema"
	"go.eggybyte.com/stackgen/internal/typemap"
)

// FieldView is the template view of one non-id column.
type FieldView struct {
	Name      string // camelCase identifier used in every target
	Pascal    string // Accessor suffix
	LabelKey  string // Translation key
	Label     string // English label
	Type      string // Target type from typemap
	IsString  bool
	IsNumber  bool
	IsBoolean bool
}

// EntityView is the template view of one entity on one target.
// Every identifier comes from the embedded naming.Names.
type EntityView struct {
	naming.Names
	Fields  []FieldView
	KeyType string
	APIPath string // "/api/<plural>"
	Project *configschema.ProjectConfig
}

// HasFields reports whether the entity has any mutable column.
func (v EntityView) HasFields() bool {
	return len(v.Fields) > 0
}

// HasNumber reports whether any mutable column is numeric.
func (v EntityView) HasNumber() bool {
	for _, f := range v.Fields {
		if f.IsNumber {
			return true
		}
	}
	return false
}

// HasBoolean reports whether any mutable column is boolean.
func (v EntityView) HasBoolean() bool {
	for _, f := range v.Fields {
		if f.IsBoolean {
			return true
		}
	}
	return false
}

// AppView is the template view of the aggregate files of one target.
type AppView struct {
	Project  *configschema.ProjectConfig
	Title    string // Human application title derived from the project name
	Entities []EntityView
}

// First returns the first entity, or nil for an empty schema.
func (v AppView) First() *EntityView {
	if len(v.Entities) == 0 {
		return nil
	}
	return &v.Entities[0]
}

// newEntityView builds the view of e for target. The id column never becomes a field.
func newEntityView(e schema.Entity, cfg *configschema.ProjectConfig, target typemap.Target) EntityView {
	names := naming.For(e.Name)
	view := EntityView{
		Names:   names,
		KeyType: typemap.KeyType(target),
		APIPath: "/api/" + names.Plural,
		Project: cfg,
	}
	for _, c := range e.MutableColumns() {
		t := c.Type.Normalize()
		view.Fields = append(view.Fields, FieldView{
			Name:      naming.Camel(c.Name),
			Pascal:    naming.FieldPascal(c.Name),
			LabelKey:  naming.FieldLabelKey(c.Name),
			Label:     naming.Title(c.Name),
			Type:      typemap.Map(c.Type, target),
			IsString:  t == schema.TypeString,
			IsNumber:  t == schema.TypeNumber,
			IsBoolean: t == schema.TypeBoolean,
		})
	}
	return view
}

// newAppView builds the aggregate view over every entity in schema order.
func newAppView(s *schema.EntitySchema, cfg *configschema.ProjectConfig, target typemap.Target) AppView {
	view := AppView{
		Project: cfg,
		Title:   naming.Title(cfg.Name),
	}
	for _, e := range s.Entities {
		view.Entities = append(view.Entities, newEntityView(e, cfg, target))
	}
	return view
}
