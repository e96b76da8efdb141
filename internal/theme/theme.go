// Package theme provides glyph sets and colour palettes for the rain, built in or loaded from files.
package theme

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ensigniasec/signature-rain/internal/rain"
	"github.com/ensigniasec/signature-rain/internal/validate"
)

// DefaultDir is searched for theme files when no directory is configured.
const DefaultDir = "~/.config/signature-rain/themes"

// BuiltinSource marks themes compiled into the binary.
const BuiltinSource = "builtin"

// ErrNotFound is returned by Lookup for an unknown theme name.
var ErrNotFound = errors.New("theme not found")

// Theme is a glyph set plus colours. Colours are lipgloss colour strings: an ANSI
// index ("46") or a hex value ("#00ff41").
type Theme struct {
	Name    string   `yaml:"name" json:"name" validate:"required,max=64"`
	Charset string   `yaml:"charset" json:"charset" validate:"required,charset"`
	Head    string   `yaml:"head" json:"head" validate:"required,hexcolor|numeric"`
	Body    []string `yaml:"body" json:"body" validate:"required,min=1,max=16,dive,hexcolor|numeric"`
	Source  string   `yaml:"-" json:"source"`
}

// Validate checks the theme's fields.
func (t Theme) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("theme %q: %s", t.Name, validate.Describe(err))
	}
	return nil
}

// Builtins returns the themes compiled into the binary, sorted by name.
func Builtins() []Theme {
	return []Theme{
		{
			Name:    "binary",
			Charset: "01",
			Head:    "#d7ffd7",
			Body:    []string{"#5fd75f", "#00af00", "#008700", "#005f00"},
			Source:  BuiltinSource,
		},
		{
			Name:    "katakana",
			Charset: "ｱｲｳｴｵｶｷｸｹｺｻｼｽｾｿﾀﾁﾂﾃﾄﾅﾆﾇﾈﾉﾊﾋﾌﾍﾎﾏﾐﾑﾒﾓﾔﾕﾖﾗﾘﾙﾚﾛﾜﾝ0123456789",
			Head:    "15",
			Body:    []string{"#00ff41", "#00d936", "#00a82a", "#00701c", "#003b0f"},
			Source:  BuiltinSource,
		},
		{
			Name:    "matrix",
			Charset: rain.DefaultCharset,
			Head:    "15",
			Body:    []string{"46", "40", "34", "28", "22"},
			Source:  BuiltinSource,
		},
		{
			Name:    "signature",
			Charset: "MARIO0123456789<>/\\|",
			Head:    "229",
			Body:    []string{"214", "208", "172", "130", "94"},
			Source:  BuiltinSource,
		},
	}
}

// Default is the matrix theme.
func Default() Theme {
	for _, t := range Builtins() {
		if t.Name == "matrix" {
			return t
		}
	}
	panic("matrix theme missing")
}

// merge overlays discovered themes on the built-ins; a discovered theme replaces a built-in of the same name.
func merge(builtins, discovered []Theme) []Theme {
	byName := make(map[string]Theme, len(builtins)+len(discovered))
	for _, t := range builtins {
		byName[t.Name] = t
	}
	for _, t := range discovered {
		byName[t.Name] = t
	}
	out := make([]Theme, 0, len(byName))
	for _, t := range byName {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
