// Package envconfig binds environment variables to structs through env and
// default tags.
//
// Overview:
//   - Responsibility: Provide CLI flag defaults from STACKGEN_* variables
//   - Key Types: CLIDefaults
//   - Concurrency Model: Stateless; safe for concurrent use
//   - Error Semantics: INVALID_ARGUMENT naming the variable that failed to parse
//   - Performance Notes: One reflection pass per Bind
//
// Usage:
//
//	defaults, err := envconfig.FromEnv()
//	cmd.Flags().StringVar(&out, "out", defaults.Out, "Output directory")
package envconfig

import (
	"os"
	"reflect"
	"strconv"
	"time"

	"go.eggybyte.com/stackgen/core/errors"
)

// CLIDefaults holds the defaults of the stackgen command line flags.
type CLIDefaults struct {
	Entities  string `env:"STACKGEN_ENTITIES" default:"entities.json"`
	Project   string `env:"STACKGEN_PROJECT" default:"project.json"`
	Out       string `env:"STACKGEN_OUT" default:"."`
	Targets   string `env:"STACKGEN_TARGETS"`
	LogFormat string `env:"STACKGEN_LOG_FORMAT" default:"logfmt"`
	Addr      string `env:"STACKGEN_ADDR" default:":8090"`
	Bootstrap bool   `env:"STACKGEN_BOOTSTRAP"`
	KeepGoing bool   `env:"STACKGEN_KEEP_GOING"`
}

// FromEnv binds CLIDefaults from the process environment. On error the
// returned value holds the tag defaults.
func FromEnv() (CLIDefaults, error) {
	var d CLIDefaults
	if err := Bind(os.LookupEnv, &d); err != nil {
		var fallback CLIDefaults
		_ = Bind(func(string) (string, bool) { return "", false }, &fallback)
		return fallback, err
	}
	return d, nil
}

// Bind sets every tagged field of the struct target points to.
//
// Parameters:
//   - lookup: Variable source, such as os.LookupEnv
//   - target: Pointer to a struct; nested structs are walked
//
// Returns:
//   - error: INVALID_ARGUMENT for a bad target or an unparsable value
func Bind(lookup func(string) (string, bool), target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return errors.New(errors.CodeInvalidArgument, "target must be a pointer to struct")
	}
	return bindFields(lookup, v.Elem())
}

func bindFields(lookup func(string) (string, bool), sv reflect.Value) error {
	st := sv.Type()
	for i := 0; i < sv.NumField(); i++ {
		field := sv.Field(i)
		ft := st.Field(i)
		if !field.CanSet() {
			continue
		}
		if field.Kind() == reflect.Struct && field.Type() != reflect.TypeOf(time.Time{}) {
			if err := bindFields(lookup, field); err != nil {
				return err
			}
			continue
		}

		key := ft.Tag.Get("env")
		if key == "" {
			continue
		}
		value, ok := lookup(key)
		if !ok {
			value = ft.Tag.Get("default")
		}
		if err := setField(field, value); err != nil {
			return errors.Wrapf(errors.CodeInvalidArgument, "envconfig.Bind", err, "invalid value for %s", key)
		}
	}
	return nil
}

// setField parses value into field. An empty value keeps the zero value.
func setField(field reflect.Value, value string) error {
	if value == "" {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
			return nil
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return errors.Newf(errors.CodeInvalidArgument, "unsupported field type %s", field.Kind())
	}
	return nil
}
