// Package config loads .jsonloc.yaml project configuration.
//
// The file declares the source locale, the target locales, the schema
// files to load and an ordered set of mappings from glob patterns to
// output rules:
//
//	source_locale: en-US
//	locales: [de-DE, fr-FR]
//	json:
//	  schemas: [schemas]
//	  mappings:
//	    "**/*.json":
//	      schema: http://github.com/ilib-js/LocalizableJson
//	      method: copy
//	      template: "[dir]/[localeDir]/strings.json"
//
// Mapping order is significant: the first pattern that matches a path
// wins, so mappings are decoded in document order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/jsonloc/locale"
	"github.com/minios-linux/jsonloc/mapping"
	"github.com/minios-linux/jsonloc/template"
)

// FileName is the default config file name.
const FileName = ".jsonloc.yaml"

// DefaultSourceLocale is used when source_locale is not set.
const DefaultSourceLocale = "en-US"

// ErrInvalid marks configuration validation failures.
var ErrInvalid = errors.New("invalid configuration")

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level .jsonloc.yaml structure.
type File struct {
	// SourceLocale is the locale of the untranslated content.
	SourceLocale string `yaml:"source_locale,omitempty"`
	// Locales are the target locales.
	Locales []string `yaml:"locales,omitempty"`
	// JSON holds the json file type settings. When absent, the default
	// schema and mapping apply.
	JSON *JSONSettings `yaml:"json,omitempty"`

	path string
}

// JSONSettings configures schemas and mappings for JSON files.
type JSONSettings struct {
	// Schemas are schema files or directories relative to the project root.
	Schemas []string `yaml:"schemas,omitempty"`
	// Mappings are tried in declaration order.
	Mappings Mappings `yaml:"mappings,omitempty"`
}

// Mapping is one glob pattern and the rule for files matching it.
type Mapping struct {
	Pattern  string `yaml:"-"`
	Schema   string `yaml:"schema,omitempty"`
	Method   string `yaml:"method,omitempty"`
	Template string `yaml:"template"`
}

// Mappings is an ordered list of mappings written as a YAML map keyed by
// pattern.
type Mappings []Mapping

var mappingFields = map[string]bool{"schema": true, "method": true, "template": true}

// UnmarshalYAML decodes the pattern map in document order, rejecting
// duplicate patterns and unknown rule fields.
func (m *Mappings) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: mappings must be a map of pattern to rule", n.Line)
	}
	out := make(Mappings, 0, len(n.Content)/2)
	seen := make(map[string]bool, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if seen[key.Value] {
			return fmt.Errorf("line %d: %w %q", key.Line, mapping.ErrDuplicatePattern, key.Value)
		}
		seen[key.Value] = true

		if val.Kind == yaml.MappingNode {
			for j := 0; j+1 < len(val.Content); j += 2 {
				if f := val.Content[j]; !mappingFields[f.Value] {
					return fmt.Errorf("line %d: mapping %q: unknown field %q", f.Line, key.Value, f.Value)
				}
			}
		}

		var mp Mapping
		if err := val.Decode(&mp); err != nil {
			return fmt.Errorf("mapping %q: %w", key.Value, err)
		}
		mp.Pattern = key.Value
		out = append(out, mp)
	}
	*m = out
	return nil
}

// MarshalYAML encodes the mappings as a pattern map in slice order.
func (m Mappings) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, mp := range m {
		var val yaml.Node
		if err := val.Encode(mp); err != nil {
			return nil, err
		}
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: mp.Pattern},
			&val,
		)
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Default returns the configuration used when a project has no config
// file.
func Default() *File {
	return &File{SourceLocale: DefaultSourceLocale}
}

// Load reads and validates .jsonloc.yaml from the given directory.
// Returns nil if no config file exists.
func Load(rootDir string) (*File, error) {
	f, err := LoadFile(filepath.Join(rootDir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return f, err
}

// LoadFile reads and validates a config file at an explicit path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	f.path = path

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Path returns the file the config was loaded from, or "" for Default.
func (f *File) Path() string {
	return f.path
}

// Validate applies defaults and checks every locale, template and method.
func (f *File) Validate() error {
	name := f.path
	if name == "" {
		name = FileName
	}
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%s: %w: %s", name, ErrInvalid, fmt.Sprintf(format, args...))
	}

	if f.SourceLocale == "" {
		f.SourceLocale = DefaultSourceLocale
	}
	if err := locale.Validate(f.SourceLocale); err != nil {
		return invalid("source_locale: %v", err)
	}
	for _, l := range f.Locales {
		if err := locale.Validate(l); err != nil {
			return invalid("locales: %v", err)
		}
	}

	if f.JSON == nil {
		return nil
	}
	for i := range f.JSON.Mappings {
		mp := &f.JSON.Mappings[i]
		if mp.Pattern == "" {
			return invalid("mapping #%d has an empty pattern", i+1)
		}
		if mp.Template == "" {
			return invalid("mapping %q has no template", mp.Pattern)
		}
		if _, err := template.Parse(mp.Template); err != nil {
			return invalid("mapping %q: %v", mp.Pattern, err)
		}
		if _, err := mapping.ParseMethod(mp.Method); err != nil {
			return invalid("mapping %q: %v", mp.Pattern, err)
		}
		if mp.Schema == "" {
			mp.Schema = mapping.DefaultSchemaID
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Resolving
// ---------------------------------------------------------------------------

// Rules compiles the configured mappings, or returns the default rule
// set when none are configured.
func (f *File) Rules() ([]mapping.Rule, error) {
	if f.JSON == nil || len(f.JSON.Mappings) == 0 {
		return mapping.DefaultRules(), nil
	}

	rules := make([]mapping.Rule, 0, len(f.JSON.Mappings))
	for _, mp := range f.JSON.Mappings {
		tmpl, err := template.Parse(mp.Template)
		if err != nil {
			return nil, fmt.Errorf("mapping %q: %w", mp.Pattern, err)
		}
		method, err := mapping.ParseMethod(mp.Method)
		if err != nil {
			return nil, fmt.Errorf("mapping %q: %w", mp.Pattern, err)
		}
		rules = append(rules, mapping.Rule{
			Pattern:  mp.Pattern,
			SchemaID: mp.Schema,
			Method:   method,
			Template: tmpl,
		})
	}
	return rules, nil
}

// SchemaPaths returns the configured schema paths joined to rootDir.
// Absolute entries are kept as is.
func (f *File) SchemaPaths(rootDir string) []string {
	if f.JSON == nil {
		return nil
	}
	paths := make([]string, 0, len(f.JSON.Schemas))
	for _, s := range f.JSON.Schemas {
		if filepath.IsAbs(s) {
			paths = append(paths, s)
			continue
		}
		paths = append(paths, filepath.Join(rootDir, s))
	}
	return paths
}

// TargetLocales returns the configured locales without the source
// locale and without duplicates, in declaration order.
func (f *File) TargetLocales() []string {
	src := locale.Parse(f.SourceLocale)
	seen := make(map[string]bool)
	var out []string
	for _, l := range f.Locales {
		canon := locale.Parse(l)
		if canon.Equal(src) || seen[canon.String()] {
			continue
		}
		seen[canon.String()] = true
		out = append(out, canon.String())
	}
	return out
}
