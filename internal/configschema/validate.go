package configschema

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"go.eggybyte.com/stackgen/internal/naming"
)

var (
	dirnamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
	javaSegment    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	dartPackage    = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// newValidator returns a validator with the project rules registered.
// Field names in validation errors are the JSON keys of the config file.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for empty tags or nil functions.
	_ = v.RegisterValidation("dirname", validateDirname)
	_ = v.RegisterValidation("javapkg", validateJavaPackage)
	_ = v.RegisterValidation("dartpkg", validateDartPackage)
	return v
}

// validateDirname accepts a single path segment that is safe to use as a directory name.
func validateDirname(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s != "." && s != ".." && dirnamePattern.MatchString(s)
}

// validateJavaPackage accepts dotted Java package names whose segments are not keywords.
func validateJavaPackage(fl validator.FieldLevel) bool {
	for _, seg := range strings.Split(fl.Field().String(), ".") {
		if !javaSegment.MatchString(seg) {
			return false
		}
		for _, lang := range naming.ReservedIn(seg) {
			if lang == "java" {
				return false
			}
		}
	}
	return true
}

// validateDartPackage accepts names "flutter create" takes as a package name.
func validateDartPackage(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !dartPackage.MatchString(s) {
		return false
	}
	for _, lang := range naming.ReservedIn(s) {
		if lang == "dart" {
			return false
		}
	}
	return true
}

// validationDiagnostics translates validator errors into diagnostics under prefix.
func validationDiagnostics(err error, prefix string, diags *Diagnostics) {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		diags.AddError(err.Error(), prefix, "")
		return
	}
	for _, fe := range verrs {
		path := prefix + "." + fe.Field()
		switch fe.Tag() {
		case "required":
			diags.AddError("value is required", path, "")
		case "dirname":
			diags.AddError("not a valid directory name: "+quote(fe.Value()), path, "Use letters, digits, '.', '_' or '-' without path separators")
		case "javapkg":
			diags.AddError("not a valid Java package: "+quote(fe.Value()), path, "Use dotted identifiers such as com.example.app")
		case "dartpkg":
			diags.AddError("not a valid Dart package name: "+quote(fe.Value()), path, "Use lower_snake_case such as my_app")
		case "url":
			diags.AddError("not a valid URL: "+quote(fe.Value()), path, "Use an absolute URL such as http://10.0.2.2:8080")
		case "min", "max":
			diags.AddError("value out of range: "+quote(fe.Value()), path, "Use a port between 1 and 65535")
		default:
			diags.AddError("failed validation rule "+fe.Tag(), path, "")
		}
	}
}

func quote(v any) string {
	return fmt.Sprintf("'%v'", v)
}
