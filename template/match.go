package template

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/minios-linux/jsonloc/locale"
)

// Sub-patterns for locale components.
const (
	languageExpr = `[a-z]{2,3}`
	scriptExpr   = `[A-Z][a-z]{3}`
	regionExpr   = `[A-Z]{2}|[0-9]{3}`
)

// Capture group name prefixes. Each group is suffixed with a sequence
// number so repeated placeholders never collide.
const (
	groupLanguage = "language"
	groupScript   = "script"
	groupRegion   = "region"
)

// Matcher compiles the template into an anchored regular expression that
// matches localized paths produced from it. Locale placeholders become
// named capture groups. [filename] and [basename] are the literal values
// taken from concretePath, since the source path is unknown when
// matching. That literal is only recoverable when the placeholder sits
// alone in the last path component; anywhere else they match any run of
// non-separator characters. [dir] matches any directory prefix.
func (t *Template) Matcher(concretePath string) (*regexp.Regexp, error) {
	base := path.Base(filepath.ToSlash(concretePath))

	var b strings.Builder
	b.WriteString("^")

	n := 0
	group := func(name, expr string) string {
		n++
		return fmt.Sprintf("(?P<%s_%d>%s)", name, n, expr)
	}
	compound := func(sep string) string {
		q := regexp.QuoteMeta(sep)
		return group(groupLanguage, languageExpr) +
			"(?:" + q + group(groupScript, scriptExpr) + ")?" +
			"(?:" + q + group(groupRegion, regionExpr) + ")?"
	}

	skipSlash := false
	for i, s := range t.segments {
		if s.IsLiteral() {
			lit := s.Literal
			if skipSlash {
				lit = lit[1:]
				skipSlash = false
			}
			b.WriteString(regexp.QuoteMeta(lit))
			continue
		}

		switch s.Kind {
		case Dir:
			if t.dirSlash(i) {
				b.WriteString("(?:.*?/)?")
				skipSlash = true
				continue
			}
			b.WriteString(".*?")
		case Filename, Basename:
			switch {
			case t.sharesComponent(i):
				b.WriteString(`[^/]*?`)
			case !t.finalComponent(i):
				b.WriteString(`[^/]+?`)
			case s.Kind == Filename:
				b.WriteString(regexp.QuoteMeta(base))
			default:
				b.WriteString(regexp.QuoteMeta(TrimExtension(base)))
			}
		case Language:
			b.WriteString(group(groupLanguage, languageExpr))
		case Script:
			b.WriteString(group(groupScript, scriptExpr))
		case Region:
			b.WriteString(group(groupRegion, regionExpr))
		case LocaleDir:
			b.WriteString(compound("/"))
		case LocaleUnder:
			b.WriteString(compound("_"))
		default:
			b.WriteString(compound("-"))
		}
	}
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("compiling matcher for template %q: %w", t.src, err)
	}
	return re, nil
}

// sharesComponent reports whether placeholder i sits in the same path
// component as a locale-bearing placeholder.
func (t *Template) sharesComponent(i int) bool {
	for j := i - 1; j >= 0; j-- {
		if s := t.segments[j]; s.IsLiteral() {
			if strings.Contains(s.Literal, "/") {
				break
			}
		} else if s.Kind.localeBearing() {
			return true
		}
	}
	for j := i + 1; j < len(t.segments); j++ {
		if s := t.segments[j]; s.IsLiteral() {
			if strings.Contains(s.Literal, "/") {
				break
			}
		} else if s.Kind.localeBearing() {
			return true
		}
	}
	return false
}

// finalComponent reports whether no separator follows segment i.
func (t *Template) finalComponent(i int) bool {
	for _, s := range t.segments[i+1:] {
		if s.IsLiteral() && strings.Contains(s.Literal, "/") {
			return false
		}
	}
	return true
}

// ExtractLocale returns the canonical locale spec encoded in
// concretePath according to the template, or "" when the path does not
// match or carries no locale.
func (t *Template) ExtractLocale(concretePath string) string {
	return t.ExtractLocaleSpec(concretePath).String()
}

// ExtractLocaleSpec is like ExtractLocale but returns the parsed locale.
// The zero Locale means no match.
func (t *Template) ExtractLocaleSpec(concretePath string) locale.Locale {
	re, err := t.Matcher(concretePath)
	if err != nil {
		return locale.Locale{}
	}
	m := re.FindStringSubmatch(filepath.ToSlash(concretePath))
	if m == nil {
		return locale.Locale{}
	}

	var lang, script, region string
	for i, name := range re.SubexpNames() {
		if name == "" || m[i] == "" {
			continue
		}
		component, _, _ := strings.Cut(name, "_")
		switch component {
		case groupLanguage:
			if lang == "" {
				lang = m[i]
			}
		case groupScript:
			if script == "" {
				script = m[i]
			}
		case groupRegion:
			if region == "" {
				region = m[i]
			}
		}
	}
	return locale.New(lang, script, region)
}
