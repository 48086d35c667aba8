// Package typemap translates abstract column types into each target's primitive types.
//
// Overview:
//   - Responsibility: One independent mapping table per target
//   - Key Types: Target, the per-target tables
//   - Concurrency Model: Read-only tables, safe for concurrent use
//   - Error Semantics: Never fails; unrecognized types map to the target's permissive type
//   - Performance Notes: Single map lookup
//
// Usage:
//
//	typemap.Map(schema.TypeNumber, typemap.Backend) // "Double"
//	typemap.Map("date", typemap.Mobile)             // "dynamic"
package typemap

import (
	"fmt"
	"strings"

	"go.eggybyte.com/stackgen/internal/schema"
)

// Target identifies one generated runtime.
type Target string

// Targets in emission order.
const (
	Backend  Target = "backend"
	Frontend Target = "frontend"
	Mobile   Target = "mobile"
)

// AllTargets lists every target in the fixed emission order.
var AllTargets = []Target{Backend, Frontend, Mobile}

// ParseTarget converts a target name, case-insensitively.
func ParseTarget(s string) (Target, error) {
	t := Target(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllTargets {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown target %q (expected backend, frontend or mobile)", s)
}

// ParseTargets converts a list of names and returns them in emission order
// without duplicates. An empty list selects every target.
func ParseTargets(names []string) ([]Target, error) {
	if len(names) == 0 {
		return append([]Target(nil), AllTargets...), nil
	}
	selected := make(map[Target]bool, len(names))
	for _, n := range names {
		t, err := ParseTarget(n)
		if err != nil {
			return nil, err
		}
		selected[t] = true
	}
	var out []Target
	for _, t := range AllTargets {
		if selected[t] {
			out = append(out, t)
		}
	}
	return out, nil
}

type table struct {
	types    map[schema.ColumnType]string
	fallback string
	key      string
}

var tables = map[Target]table{
	Backend: {
		types: map[schema.ColumnType]string{
			schema.TypeString:  "String",
			schema.TypeNumber:  "Double",
			schema.TypeBoolean: "Boolean",
		},
		fallback: "Object",
		key:      "Long",
	},
	Frontend: {
		types: map[schema.ColumnType]string{
			schema.TypeString:  "string",
			schema.TypeNumber:  "number",
			schema.TypeBoolean: "boolean",
		},
		fallback: "any",
		key:      "number",
	},
	Mobile: {
		types: map[schema.ColumnType]string{
			schema.TypeString:  "String",
			schema.TypeNumber:  "num",
			schema.TypeBoolean: "bool",
		},
		fallback: "dynamic",
		key:      "int",
	},
}

// Map returns the target type name for a column type.
// Types are matched after trimming and lower-casing; anything unrecognized,
// including an unknown target, yields a permissive non-empty type.
func Map(t schema.ColumnType, target Target) string {
	tbl, ok := tables[target]
	if !ok {
		return "any"
	}
	if name, ok := tbl.types[t.Normalize()]; ok {
		return name
	}
	return tbl.fallback
}

// KeyType returns the type of the implicit primary key on target.
func KeyType(target Target) string {
	if tbl, ok := tables[target]; ok {
		return tbl.key
	}
	return "any"
}

// Fallback returns the permissive type used for unrecognized columns on target.
func Fallback(target Target) string {
	if tbl, ok := tables[target]; ok {
		return tbl.fallback
	}
	return "any"
}
