// Package locale decomposes and composes locale specs of the form
// language[-Script][-REGION][-variant].
//
// Parsing is lenient: both "-" and "_" are accepted as separators and
// subtag case is normalized, so "zh_hant_tw" and "zh-Hant-TW" yield the
// same Locale. Composition is canonical: language-Script-REGION joined
// with hyphens.
package locale

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Locale is a parsed locale spec. The zero value is the empty locale.
type Locale struct {
	Language string
	Script   string
	Region   string
	Variant  string
}

// New builds a Locale from its components, normalizing case.
func New(lang, script, region string) Locale {
	return Locale{
		Language: strings.ToLower(lang),
		Script:   titleCase(script),
		Region:   strings.ToUpper(region),
	}
}

// Parse splits a locale spec into its components. Subtags that are
// neither a script nor a region are collected into Variant. Parse never
// fails; use Validate to reject malformed specs.
func Parse(spec string) Locale {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Locale{}
	}
	parts := strings.FieldsFunc(spec, func(r rune) bool { return r == '-' || r == '_' })
	if len(parts) == 0 {
		return Locale{}
	}

	l := Locale{Language: strings.ToLower(parts[0])}
	var variants []string
	for _, p := range parts[1:] {
		switch {
		case l.Script == "" && l.Region == "" && isScript(p):
			l.Script = titleCase(p)
		case l.Region == "" && isRegion(p):
			l.Region = strings.ToUpper(p)
		default:
			variants = append(variants, p)
		}
	}
	l.Variant = strings.Join(variants, "-")
	return l
}

// String returns the canonical hyphen-joined spec.
func (l Locale) String() string {
	return l.join("-")
}

// Dir returns the spec with components separated by "/".
func (l Locale) Dir() string {
	return l.join("/")
}

// Under returns the spec with components separated by "_".
func (l Locale) Under() string {
	return l.join("_")
}

// IsZero reports whether no component is set.
func (l Locale) IsZero() bool {
	return l == Locale{}
}

// Equal compares two locales component-wise.
func (l Locale) Equal(other Locale) bool {
	return l == other
}

func (l Locale) join(sep string) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{l.Language, l.Script, l.Region, l.Variant} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, sep)
}

// Validate reports whether spec is a well-formed locale identifier.
// Underscore separators are accepted.
func Validate(spec string) error {
	if strings.TrimSpace(spec) == "" {
		return fmt.Errorf("empty locale")
	}
	l := Parse(spec)
	if n := len(l.Language); n < 2 || n > 3 || !isLower(l.Language) {
		return fmt.Errorf("locale %q: invalid language subtag %q", spec, l.Language)
	}
	if _, err := language.Parse(l.String()); err != nil {
		return fmt.Errorf("locale %q: %w", spec, err)
	}
	return nil
}

func isScript(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if !isLetter(r) {
			return false
		}
	}
	return true
}

func isRegion(s string) bool {
	switch len(s) {
	case 2:
		return isLetter(rune(s[0])) && isLetter(rune(s[1]))
	case 3:
		for _, r := range s {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	}
	return false
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isLower(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

func titleCase(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
