// Package template compiles localized output path templates.
//
// A template is a path with bracketed placeholders, for example
//
//	[dir]/[localeDir]/strings.json
//	resources/[language]/[basename]_[localeUnder].json
//
// A template is parsed once into a sequence of segments. Two independent
// interpreters walk that same sequence: Render builds a concrete output
// path from a source path and a target locale, and Matcher builds a
// regular expression that recognizes such a path and recovers the locale
// from it. Because both directions share one parsed form, a path produced
// by Render always yields its locale back through ExtractLocale.
package template

import (
	"fmt"
	"strings"
)

// Kind identifies a placeholder.
type Kind int

const (
	// Unknown is any placeholder name outside the vocabulary. It behaves
	// exactly like Locale in both directions.
	Unknown Kind = iota
	Dir
	Filename
	Basename
	Locale
	Language
	Script
	Region
	LocaleDir
	LocaleUnder
)

var kindNames = map[string]Kind{
	"dir":         Dir,
	"filename":    Filename,
	"basename":    Basename,
	"locale":      Locale,
	"language":    Language,
	"script":      Script,
	"region":      Region,
	"localeDir":   LocaleDir,
	"localeUnder": LocaleUnder,
}

func (k Kind) String() string {
	for name, kind := range kindNames {
		if kind == k {
			return name
		}
	}
	return "unknown"
}

// localeBearing reports whether the placeholder contributes to the locale.
func (k Kind) localeBearing() bool {
	switch k {
	case Dir, Filename, Basename:
		return false
	}
	return true
}

// Segment is one parsed piece of a template: either a literal run of
// text or a placeholder.
type Segment struct {
	Literal string
	Kind    Kind
	// Name is the placeholder name as written; empty for literals.
	Name string
}

// IsLiteral reports whether the segment is literal text.
func (s Segment) IsLiteral() bool {
	return s.Name == ""
}

// Template is a parsed output path template. It is immutable and safe
// for concurrent use.
type Template struct {
	src      string
	segments []Segment
}

// SyntaxError reports a malformed template.
type SyntaxError struct {
	Template string
	Offset   int
	Msg      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("template %q: %s at offset %d", e.Template, e.Msg, e.Offset)
}

// Parse parses a template string. Unbalanced or nested brackets and empty
// placeholder names are syntax errors.
func Parse(src string) (*Template, error) {
	t := &Template{src: src}
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			t.segments = append(t.segments, Segment{Literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(src); i++ {
		switch src[i] {
		case ']':
			return nil, &SyntaxError{Template: src, Offset: i, Msg: "unexpected ']'"}
		case '[':
			end := strings.IndexAny(src[i+1:], "[]")
			if end < 0 || src[i+1+end] != ']' {
				return nil, &SyntaxError{Template: src, Offset: i, Msg: "unterminated placeholder"}
			}
			name := src[i+1 : i+1+end]
			if name == "" {
				return nil, &SyntaxError{Template: src, Offset: i, Msg: "empty placeholder"}
			}
			flush()
			t.segments = append(t.segments, Segment{Kind: kindNames[name], Name: name})
			i += end + 1
		default:
			lit.WriteByte(src[i])
		}
	}
	flush()
	return t, nil
}

// MustParse is like Parse but panics on error. It is meant for templates
// known at compile time.
func MustParse(src string) *Template {
	t, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the template source.
func (t *Template) String() string {
	return t.src
}

// Segments returns a copy of the parsed segments.
func (t *Template) Segments() []Segment {
	return append([]Segment(nil), t.segments...)
}

// HasLocale reports whether any placeholder carries locale information.
func (t *Template) HasLocale() bool {
	for _, s := range t.segments {
		if !s.IsLiteral() && s.Kind.localeBearing() {
			return true
		}
	}
	return false
}

// dirSlash reports whether segment i is a [dir] placeholder immediately
// followed by a literal starting with "/". Both interpreters treat that
// pair as one optional directory prefix.
func (t *Template) dirSlash(i int) bool {
	if t.segments[i].IsLiteral() || t.segments[i].Kind != Dir || i+1 >= len(t.segments) {
		return false
	}
	next := t.segments[i+1]
	return next.IsLiteral() && strings.HasPrefix(next.Literal, "/")
}
