// Package naming derives every casing and plural variant of an entity or column name.
//
// Overview:
//   - Responsibility: Single source of identifiers shared by all emitters
//   - Key Types: Names (all variants of one canonical entity name)
//   - Concurrency Model: Pure functions, safe for concurrent use
//   - Error Semantics: No errors; empty input yields empty variants
//   - Performance Notes: O(n) in name length
//
// Usage:
//
//	n := naming.For("OrderItem")
//	n.Pascal     // "OrderItem"
//	n.Lower      // "orderitem"
//	n.Plural     // "orderitems"
//	n.UpperSnake // "ORDER_ITEM"
package naming

import (
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Names holds every derived form of one canonical entity name.
// Emitters must take identifiers from here rather than re-casing the name.
type Names struct {
	Canonical    string // Name as written in the schema
	Pascal       string // Type name, e.g. "OrderItem"
	Camel        string // Local identifier, e.g. "orderItem"
	Lower        string // File, path and selector segment, e.g. "orderitem"
	Plural       string // REST resource segment, e.g. "orderitems"
	PluralPascal string // e.g. "OrderItems"
	PluralCamel  string // e.g. "orderItems"
	PluralTitle  string // e.g. "Order Items"
	UpperSnake   string // Label key stem, e.g. "ORDER_ITEM"
	Title        string // Human label, e.g. "Order Item"
}

// For computes all variants of a canonical entity name.
func For(name string) Names {
	pascal := Pascal(name)
	pluralPascal := ""
	if pascal != "" {
		pluralPascal = inflection.Plural(pascal)
	}
	return Names{
		Canonical:    name,
		Pascal:       pascal,
		Camel:        Camel(name),
		Lower:        Lower(name),
		Plural:       strings.ToLower(pluralPascal),
		PluralPascal: pluralPascal,
		PluralCamel:  lowerFirst(pluralPascal),
		PluralTitle:  Title(pluralPascal),
		UpperSnake:   UpperSnake(name),
		Title:        Title(name),
	}
}

// FormTitleKey is the translation key of the entity form heading.
func (n Names) FormTitleKey() string {
	return n.UpperSnake + "_FORM_TITLE"
}

// Words splits a name on separators and lower-to-upper case boundaries.
// "OrderItem", "order_item" and "order-item" all give [order item].
func Words(name string) []string {
	var words []string
	var current []rune
	runes := []rune(strings.TrimSpace(name))

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(current) > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			// Break on "aB" and on the last capital of an acronym run ("HTTPServer" -> HTTP|Server).
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		current = append(current, r)
	}
	flush()
	return words
}

// Pascal returns the PascalCase form: "order_item" -> "OrderItem".
func Pascal(name string) string {
	var b strings.Builder
	for _, w := range Words(name) {
		b.WriteString(capitalize(w))
	}
	return b.String()
}

// Camel returns the camelCase form: "OrderItem" -> "orderItem".
func Camel(name string) string {
	return lowerFirst(Pascal(name))
}

// Lower returns the all-lower identifier with separators removed: "OrderItem" -> "orderitem".
func Lower(name string) string {
	return strings.ToLower(Pascal(name))
}

// Plural returns the plural lower-case resource segment: "Category" -> "categories".
func Plural(name string) string {
	return For(name).Plural
}

// UpperSnake returns the UPPER_SNAKE form: "OrderItem" -> "ORDER_ITEM".
func UpperSnake(name string) string {
	words := Words(name)
	for i, w := range words {
		words[i] = strings.ToUpper(w)
	}
	return strings.Join(words, "_")
}

// Title returns a human label: "unitPrice" -> "Unit Price".
func Title(name string) string {
	words := Words(name)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// FieldPascal returns the accessor suffix of a column: "unitPrice" -> "UnitPrice".
func FieldPascal(column string) string {
	return Pascal(column)
}

// FieldLabelKey returns the translation key of a column label: "unitPrice" -> "FIELD_UNIT_PRICE".
func FieldLabelKey(column string) string {
	return "FIELD_" + UpperSnake(column)
}

// capitalize title-cases one word from Words: "HTTP" -> "Http".
// A Caser keeps state between calls, so each call takes its own.
func capitalize(w string) string {
	if w == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ToLower(w))
}

func lowerFirst(s string) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
