package validate

// This package adds struct and field validation as a thin wrapper around the go-playground/validator package.
//
// e.g. internal/config/config.go
//   type Config struct {
//       ...
//       MaxLength int    `yaml:"max_length" validate:"gtfield=MinLength"`
//       Charset   string `yaml:"charset,omitempty" validate:"omitempty,charset"`
//   }
//
// Field names in errors are reported by their yaml key so messages match what users write in config files.

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// minCharsetGlyphs is the smallest glyph set that still produces visible variety.
const minCharsetGlyphs = 2

//nolint:gochecknoglobals // Shared validator singleton.
var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

// get returns a process-wide singleton of the validator.
func get() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInst = validator.New(validator.WithRequiredStructEnabled())
		validatorInst.RegisterTagNameFunc(yamlName)
		// Registration only fails for an empty tag or nil func.
		_ = validatorInst.RegisterValidation("charset", isCharset)
	})
	return validatorInst
}

// Struct validates a struct using the shared validator instance.
func Struct(v any) error {
	return get().Struct(v)
}

// Var validates a single variable against the provided tag constraints.
func Var(field any, tag string) error {
	return get().Var(field, tag)
}

// Describe flattens validator errors into a single readable line, e.g.
// "max_length must be gtfield min_length; charset must be charset".
// Errors that are not validation errors are returned as-is.
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += " " + yamlParam(fe)
		}
		parts = append(parts, fmt.Sprintf("%s must be %s (got %v)", fe.Field(), rule, fe.Value()))
	}
	return strings.Join(parts, "; ")
}

// isCharset accepts strings of at least two printable, non-space glyphs.
func isCharset(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !utf8.ValidString(s) || utf8.RuneCountInString(s) < minCharsetGlyphs {
		return false
	}
	for _, r := range s {
		if !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func yamlName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0] //nolint:mnd // name,options
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	default:
		return name
	}
}

// yamlParam rewrites cross-field params (gtfield=MinLength) to the yaml key of the referenced field.
func yamlParam(fe validator.FieldError) string {
	if !strings.HasSuffix(fe.Tag(), "field") {
		return fe.Param()
	}
	return toSnake(fe.Param())
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
