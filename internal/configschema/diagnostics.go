package configschema

import (
	"fmt"
	"strings"

	"go.eggybyte.com/stackgen/core/errors"
)

// Diagnostic represents a validation issue.
type Diagnostic struct {
	Severity   DiagnosticSeverity `json:"severity"`
	Message    string             `json:"message"`
	Path       string             `json:"path,omitempty"`
	Suggestion string             `json:"suggestion,omitempty"`
}

// String renders the diagnostic on one line for terminal output.
func (d Diagnostic) String() string {
	var b strings.Builder
	if d.Path != "" {
		b.WriteString(d.Path)
		b.WriteString(": ")
	}
	b.WriteString(d.Message)
	if d.Suggestion != "" {
		fmt.Fprintf(&b, " (%s)", d.Suggestion)
	}
	return b.String()
}

// DiagnosticSeverity represents the severity of a diagnostic.
type DiagnosticSeverity string

const (
	SeverityError   DiagnosticSeverity = "error"
	SeverityWarning DiagnosticSeverity = "warning"
	SeverityInfo    DiagnosticSeverity = "info"
)

// Diagnostics represents a collection of validation issues in the order they were found.
// A Diagnostics value is not safe for concurrent mutation.
type Diagnostics struct {
	items []Diagnostic
}

// NewDiagnostics creates a new diagnostics collection.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{
		items: make([]Diagnostic, 0),
	}
}

// Add adds a diagnostic to the collection.
//
// Parameters:
//   - severity: Diagnostic severity level
//   - message: Human-readable message
//   - path: Optional input path such as "entities[0].columns[1].name"
//   - suggestion: Optional fix suggestion
func (d *Diagnostics) Add(severity DiagnosticSeverity, message, path, suggestion string) {
	d.items = append(d.items, Diagnostic{
		Severity:   severity,
		Message:    message,
		Path:       path,
		Suggestion: suggestion,
	})
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(message, path, suggestion string) {
	d.Add(SeverityError, message, path, suggestion)
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(message, path, suggestion string) {
	d.Add(SeverityWarning, message, path, suggestion)
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(message, path, suggestion string) {
	d.Add(SeverityInfo, message, path, suggestion)
}

// Merge appends all diagnostics of other, preserving order.
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil {
		return
	}
	d.items = append(d.items, other.items...)
}

// HasErrors returns true if there are any error-level diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return d.Count(SeverityError) > 0
}

// HasWarnings returns true if there are any warning-level diagnostics.
func (d *Diagnostics) HasWarnings() bool {
	return d.Count(SeverityWarning) > 0
}

// Count returns the number of diagnostics with the given severity.
func (d *Diagnostics) Count(severity DiagnosticSeverity) int {
	if d == nil {
		return 0
	}
	n := 0
	for _, item := range d.items {
		if item.Severity == severity {
			n++
		}
	}
	return n
}

// Items returns a copy of all diagnostics.
func (d *Diagnostics) Items() []Diagnostic {
	if d == nil {
		return []Diagnostic{}
	}
	result := make([]Diagnostic, len(d.items))
	copy(result, d.items)
	return result
}

// Err converts error-level diagnostics into a single INVALID_ARGUMENT error.
//
// Parameters:
//   - op: Operation name recorded on the error
//
// Returns:
//   - error: nil when there are no error diagnostics; otherwise an *errors.E
//     whose message names the first error and whose Details hold every error diagnostic
func (d *Diagnostics) Err(op string) error {
	if !d.HasErrors() {
		return nil
	}
	var errs []any
	for _, item := range d.items {
		if item.Severity == SeverityError {
			errs = append(errs, item)
		}
	}
	first := errs[0].(Diagnostic)
	msg := first.String()
	if len(errs) > 1 {
		msg = fmt.Sprintf("%s (and %d more)", msg, len(errs)-1)
	}
	return errors.Build(errors.CodeInvalidArgument).
		WithOp(op).
		WithMsgf("%s", msg).
		WithDetails(errs...).
		Err()
}
