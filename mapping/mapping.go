// Package mapping decides which mapping rule, if any, governs a file path
// and whether that path is a localizable source file or a localized
// output generated from one.
//
// Rules are glob patterns (doublestar syntax, "**" spans directories)
// tried in declaration order; the first match wins regardless of how
// specific later patterns are.
package mapping

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/minios-linux/jsonloc/locale"
	"github.com/minios-linux/jsonloc/template"
)

// Method is how localized output files are produced for a rule.
type Method string

const (
	// MethodCopy writes a full copy of the source with translated values.
	MethodCopy Method = "copy"
	// MethodSparse writes only the translated values.
	MethodSparse Method = "sparse"
)

// ParseMethod validates a method name. The empty string means MethodCopy.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case "", MethodCopy:
		return MethodCopy, nil
	case MethodSparse:
		return MethodSparse, nil
	}
	return "", fmt.Errorf("unknown method %q (valid: copy, sparse)", s)
}

// Rule maps source files matching Pattern to a schema and an output
// path template.
type Rule struct {
	Pattern  string
	SchemaID string
	Method   Method
	Template *template.Template
}

// Default rule values used when a project configures no mappings.
const (
	DefaultPattern  = "**/*.json"
	DefaultSchemaID = "http://github.com/ilib-js/LocalizableJson"
	DefaultTemplate = "[dir]/[localeDir]/strings.json"
)

// DefaultRules returns the rule set used when nothing is configured.
func DefaultRules() []Rule {
	return []Rule{{
		Pattern:  DefaultPattern,
		SchemaID: DefaultSchemaID,
		Method:   MethodCopy,
		Template: template.MustParse(DefaultTemplate),
	}}
}

// ErrDuplicatePattern is returned when two rules share a pattern.
var ErrDuplicatePattern = errors.New("duplicate mapping pattern")

// NormalizeExtension replaces an alias JSON extension with the canonical
// one. The result is only used for pattern matching; it never names a
// file on disk.
func NormalizeExtension(path string) string {
	canonical := template.Extensions[0]
	for _, ext := range template.Extensions[1:] {
		if strings.HasSuffix(path, ext) {
			return strings.TrimSuffix(path, ext) + canonical
		}
	}
	return path
}

// HasExtension reports whether path ends in a recognized JSON extension.
func HasExtension(path string) bool {
	for _, ext := range template.Extensions {
		if strings.HasSuffix(path, ext) && len(path) > len(ext) {
			return true
		}
	}
	return false
}

// Kind classifies a path.
type Kind int

const (
	// Unhandled paths match no rule or are not JSON files.
	Unhandled Kind = iota
	// Source paths are localizable files in the source locale.
	Source
	// Localized paths are outputs generated for a non-source locale.
	Localized
)

func (k Kind) String() string {
	switch k {
	case Source:
		return "source"
	case Localized:
		return "localized"
	}
	return "unhandled"
}

// Result is the outcome of classifying a path.
type Result struct {
	Kind Kind
	// Rule is the governing rule; nil when Kind is Unhandled.
	Rule *Rule
	// Locale is the locale recovered from the path through the rule's
	// template, or the zero Locale.
	Locale locale.Locale
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Classifier) {
		c.log = l
	}
}

// Classifier holds an ordered, immutable rule table. It is safe for
// concurrent use.
type Classifier struct {
	rules        []Rule
	sourceLocale locale.Locale
	log          *slog.Logger
}

// NewClassifier validates rules and builds a Classifier. Invalid glob
// patterns, duplicate patterns and rules without a template are
// configuration errors.
func NewClassifier(rules []Rule, sourceLocale string, opts ...Option) (*Classifier, error) {
	c := &Classifier{
		rules:        make([]Rule, 0, len(rules)),
		sourceLocale: locale.Parse(sourceLocale),
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	seen := make(map[string]bool, len(rules))
	for i, r := range rules {
		if seen[r.Pattern] {
			return nil, fmt.Errorf("mapping #%d %q: %w", i+1, r.Pattern, ErrDuplicatePattern)
		}
		seen[r.Pattern] = true

		if !doublestar.ValidatePattern(r.Pattern) {
			return nil, fmt.Errorf("mapping #%d %q: invalid glob pattern", i+1, r.Pattern)
		}
		if r.Template == nil {
			return nil, fmt.Errorf("mapping %q: no template", r.Pattern)
		}
		if r.Method == "" {
			r.Method = MethodCopy
		}
		c.rules = append(c.rules, r)
	}
	return c, nil
}

// Rules returns the rules in declaration order.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// SourceLocale returns the project source locale.
func (c *Classifier) SourceLocale() locale.Locale {
	return c.sourceLocale
}

// Resolve returns the first rule whose pattern matches path. A match on
// the path as given takes precedence over a match on its
// extension-normalized form. The boolean is false when no rule matches.
func (c *Classifier) Resolve(path string) (*Rule, bool) {
	p := filepath.ToSlash(path)
	if r := c.first(p); r != nil {
		return r, true
	}
	if n := NormalizeExtension(p); n != p {
		if r := c.first(n); r != nil {
			return r, true
		}
	}
	return nil, false
}

func (c *Classifier) first(p string) *Rule {
	for i := range c.rules {
		if ok, _ := doublestar.Match(c.rules[i].Pattern, p); ok {
			return &c.rules[i]
		}
	}
	return nil
}

// Classify determines whether path is unhandled, a source file or a
// localized output. A path governed by a rule is a localized output when
// the rule's template recovers a locale from it that differs from the
// source locale.
func (c *Classifier) Classify(path string) Result {
	if !HasExtension(path) {
		c.log.Debug("not a json file", "path", path)
		return Result{}
	}

	rule, ok := c.Resolve(path)
	if !ok {
		c.log.Debug("no mapping matches", "path", path)
		return Result{}
	}

	res := Result{Kind: Source, Rule: rule}
	res.Locale = rule.Template.ExtractLocaleSpec(path)
	if !res.Locale.IsZero() && !res.Locale.Equal(c.sourceLocale) {
		res.Kind = Localized
	}
	c.log.Debug("classified path", "path", path, "pattern", rule.Pattern, "kind", res.Kind.String(), "locale", res.Locale.String())
	return res
}

// Handles reports whether path is a localizable source file.
func (c *Classifier) Handles(path string) bool {
	return c.Classify(path).Kind == Source
}
