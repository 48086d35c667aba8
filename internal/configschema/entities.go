package configschema

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.eggybyte.com/stackgen/internal/naming"
	"go.eggybyte.com/stackgen/internal/schema"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// entitiesFile is the on-disk envelope of the entity schema. A nil Entities
// means the key was absent or null; an empty list is a valid empty schema.
type entitiesFile struct {
	Entities *[]schema.Entity `json:"entities" yaml:"entities"`
}

// LoadEntities reads and checks an entity schema file.
//
// Parameters:
//   - path: JSON file, or YAML when the extension is .yaml or .yml
//
// Returns:
//   - *schema.EntitySchema: Parsed schema in file order (nil if unreadable or without "entities")
//   - *Diagnostics: Errors for malformed entries or a missing "entities" key;
//     warnings for duplicates and reserved words; info for unrecognized column types
func LoadEntities(path string) (*schema.EntitySchema, *Diagnostics) {
	diags := NewDiagnostics()

	data, ok := readInput(path, "Pass --entities with the path of the entity schema", diags)
	if !ok {
		return nil, diags
	}

	var file entitiesFile
	if err := decode(path, data, &file); err != nil {
		diags.AddError(fmt.Sprintf("Failed to parse entity schema: %v", err), path, syntaxHint(path))
		return nil, diags
	}
	if file.Entities == nil {
		diags.AddError("missing top-level \"entities\" list", path, `Wrap the entities as {"entities": [...]}`)
		return nil, diags
	}

	s := &schema.EntitySchema{Entities: *file.Entities}
	CheckEntities(s, diags)
	return s, diags
}

// CheckEntities validates a parsed schema into diags without modifying it.
//
// Concurrency:
//   - Read-only over s
//
// Performance:
//   - O(entities * columns)
func CheckEntities(s *schema.EntitySchema, diags *Diagnostics) {
	if len(s.Entities) == 0 {
		diags.AddWarning("schema declares no entities", "entities", "Only aggregate files will be generated")
		return
	}

	seenEntities := make(map[string]int, len(s.Entities))
	for i, e := range s.Entities {
		path := fmt.Sprintf("entities[%d]", i)

		if !checkIdentifier(e.Name, path+".name", "entity", diags) {
			continue
		}
		n := naming.For(e.Name)
		if first, dup := seenEntities[n.Pascal]; dup {
			diags.AddWarning(
				fmt.Sprintf("entity %q duplicates entities[%d] as %s; later files overwrite earlier ones", e.Name, first, n.Pascal),
				path+".name", "Rename or remove one of the entities")
		} else {
			seenEntities[n.Pascal] = i
		}
		warnReserved(n.Camel, path+".name", diags)
		if n.Lower != n.Camel {
			warnReserved(n.Lower, path+".name", diags)
		}

		if len(e.MutableColumns()) == 0 {
			diags.AddWarning(fmt.Sprintf("entity %q has no columns besides id", e.Name), path+".columns", "")
		}
		checkColumns(e, path, diags)
	}
}

func checkColumns(e schema.Entity, path string, diags *Diagnostics) {
	seen := make(map[string]int, len(e.Columns))
	for j, c := range e.Columns {
		cpath := fmt.Sprintf("%s.columns[%d]", path, j)
		if !checkIdentifier(c.Name, cpath+".name", "column", diags) {
			continue
		}
		// Columns are emitted under their camelCase form, so "unit_price" and "unitPrice" collide.
		key := naming.Camel(c.Name)
		if first, dup := seen[key]; dup {
			diags.AddWarning(fmt.Sprintf("column %q duplicates columns[%d]", c.Name, first), cpath+".name", "Remove the duplicate column")
		} else {
			seen[key] = j
		}
		if !c.IsID() {
			warnReserved(naming.Camel(c.Name), cpath+".name", diags)
		}
		if !c.Type.Known() {
			diags.AddInfo(fmt.Sprintf("unrecognized column type %q, permissive fallback applies", string(c.Type)),
				cpath+".type", "Use one of: string, number, boolean")
		}
	}
}

// checkIdentifier records an error when name cannot be used as an identifier.
func checkIdentifier(name, path, kind string, diags *Diagnostics) bool {
	if strings.TrimSpace(name) == "" {
		diags.AddError(kind+" name is required", path, "")
		return false
	}
	if !identPattern.MatchString(name) {
		diags.AddError(fmt.Sprintf("%s name %q is not a valid identifier", kind, name), path, "Use letters, digits and '_' and start with a letter")
		return false
	}
	// "_" and "_1x" match the pattern but give an empty or digit-led type name.
	if r, _ := utf8.DecodeRuneInString(naming.Pascal(name)); !unicode.IsLetter(r) {
		diags.AddError(fmt.Sprintf("%s name %q has no identifier starting with a letter", kind, name), path, "Start the name with a letter")
		return false
	}
	return true
}

func warnReserved(ident, path string, diags *Diagnostics) {
	if langs := naming.ReservedIn(ident); len(langs) > 0 {
		diags.AddWarning(fmt.Sprintf("%q is a reserved word in %s", ident, strings.Join(langs, ", ")), path, "Rename it to avoid uncompilable output")
	}
}
