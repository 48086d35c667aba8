package naming

import "sort"

// reserved lists identifiers that cannot be used as class, field or variable
// names in the generated languages.
var reserved = map[string][]string{
	"java": {
		"abstract", "assert", "boolean", "break", "byte", "case", "catch", "char",
		"class", "const", "continue", "default", "do", "double", "else", "enum",
		"extends", "final", "finally", "float", "for", "goto", "if", "implements",
		"import", "instanceof", "int", "interface", "long", "native", "new",
		"package", "private", "protected", "public", "return", "short", "static",
		"strictfp", "super", "switch", "synchronized", "this", "throw", "throws",
		"transient", "try", "void", "volatile", "while", "var", "record", "yield",
		"true", "false", "null",
	},
	"typescript": {
		"break", "case", "catch", "class", "const", "continue", "debugger",
		"default", "delete", "do", "else", "enum", "export", "extends", "false",
		"finally", "for", "function", "if", "import", "in", "instanceof", "new",
		"null", "return", "super", "switch", "this", "throw", "true", "try",
		"typeof", "var", "void", "while", "with", "implements", "interface",
		"let", "package", "private", "protected", "public", "static", "yield",
	},
	"dart": {
		"abstract", "as", "assert", "async", "await", "break", "case", "catch",
		"class", "const", "continue", "covariant", "default", "deferred", "do",
		"dynamic", "else", "enum", "export", "extends", "extension", "external",
		"factory", "false", "final", "finally", "for", "get", "hide", "if",
		"implements", "import", "in", "interface", "is", "late", "library",
		"mixin", "new", "null", "on", "operator", "part", "required", "rethrow",
		"return", "set", "show", "static", "super", "switch", "sync", "this",
		"throw", "true", "try", "typedef", "var", "void", "while", "with", "yield",
	},
}

// ReservedIn returns the sorted list of languages in which ident is a reserved word.
func ReservedIn(ident string) []string {
	var langs []string
	for lang, words := range reserved {
		for _, w := range words {
			if w == ident {
				langs = append(langs, lang)
				break
			}
		}
	}
	sort.Strings(langs)
	return langs
}
