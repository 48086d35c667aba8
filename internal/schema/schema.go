// Package schema defines the declarative entity model that drives every emitter.
//
// Overview:
//   - Responsibility: Represent entities, columns and the abstract column types
//   - Key Types: EntitySchema, Entity, Column, ColumnType
//   - Concurrency Model: Values are read-only after loading and safe to share
//   - Error Semantics: No errors; validation lives in configschema
//   - Performance Notes: Plain slices, order preserved from the input file
//
// Usage:
//
//	for _, e := range s.Entities {
//	    for _, c := range e.MutableColumns() { ... }
//	}
package schema

import (
	"strings"

	"go.eggybyte.com/stackgen/internal/naming"
)

// ColumnType is the abstract type of a column as written in the schema file.
// Values outside the known set are kept verbatim and mapped by fallback.
type ColumnType string

// Known column types.
const (
	TypeString  ColumnType = "string"
	TypeNumber  ColumnType = "number"
	TypeBoolean ColumnType = "boolean"
)

// KnownTypes lists the recognized column types in a stable order.
var KnownTypes = []ColumnType{TypeString, TypeNumber, TypeBoolean}

// Normalize lower-cases and trims the type so "Number " and "number" match.
func (t ColumnType) Normalize() ColumnType {
	return ColumnType(strings.ToLower(strings.TrimSpace(string(t))))
}

// Known reports whether the type is one of KnownTypes.
func (t ColumnType) Known() bool {
	n := t.Normalize()
	for _, k := range KnownTypes {
		if n == k {
			return true
		}
	}
	return false
}

// EntitySchema is the ordered list of entities read from the schema file.
type EntitySchema struct {
	Entities []Entity `json:"entities" yaml:"entities"`
}

// Entity is one generated resource.
type Entity struct {
	Name    string   `json:"name" yaml:"name"`
	Columns []Column `json:"columns" yaml:"columns"`
}

// Column is one typed attribute of an entity.
type Column struct {
	Name string     `json:"name" yaml:"name"`
	Type ColumnType `json:"type" yaml:"type"`
}

// IsID reports whether the column is the implicit primary key. The check runs on
// the emitted camelCase identifier, so "ID", "_id" and "Id__" are all the key.
func (c Column) IsID() bool {
	return naming.Camel(c.Name) == "id"
}

// MutableColumns returns the columns that appear in field lists, constructors
// and forms: every column except the implicit id.
func (e Entity) MutableColumns() []Column {
	cols := make([]Column, 0, len(e.Columns))
	for _, c := range e.Columns {
		if !c.IsID() {
			cols = append(cols, c)
		}
	}
	return cols
}
