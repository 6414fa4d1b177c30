// Package project wires a project's configuration, schema registry and
// mapping rules together. It is the entry point used by the CLI: Open
// validates everything up front so later lookups never fail for
// configuration reasons.
package project

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/minios-linux/jsonloc/config"
	"github.com/minios-linux/jsonloc/mapping"
	"github.com/minios-linux/jsonloc/schema"
)

// DefaultSchemaDocument names the built-in schema in the registry.
const DefaultSchemaDocument = "default"

// ErrSchemaNotFound is returned by Open when a mapping names a schema
// that no loaded document defines.
var ErrSchemaNotFound = errors.New("schema not found")

// Project is an opened project. It is immutable and safe for concurrent
// use.
type Project struct {
	root       string
	cfg        *config.File
	registry   *schema.Registry
	classifier *mapping.Classifier
	// schemas maps rule pattern to its resolved schema.
	schemas map[string]schema.Node
	log     *slog.Logger
}

// Open loads the schemas, compiles the mappings and resolves each
// mapping's schema. A nil cfg means config.Default(); a nil logger means
// slog.Default().
func Open(root string, cfg *config.File, log *slog.Logger) (*Project, error) {
	if log == nil {
		log = slog.Default()
	}
	if cfg == nil {
		cfg = config.Default()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	b := schema.NewBuilder(log)
	b.AddDocument(DefaultSchemaDocument, schema.DefaultSchema())
	for _, p := range cfg.SchemaPaths(absRoot) {
		if err := b.LoadPath(p); err != nil {
			return nil, err
		}
	}
	registry := b.Build()

	rules, err := cfg.Rules()
	if err != nil {
		return nil, err
	}
	classifier, err := mapping.NewClassifier(rules, cfg.SourceLocale, mapping.WithLogger(log))
	if err != nil {
		return nil, err
	}

	p := &Project{
		root:       absRoot,
		cfg:        cfg,
		registry:   registry,
		classifier: classifier,
		schemas:    make(map[string]schema.Node, len(rules)),
		log:        log,
	}
	for _, r := range classifier.Rules() {
		n, ok := registry.Get(r.SchemaID)
		if !ok {
			return nil, fmt.Errorf("mapping %q: %w: %s", r.Pattern, ErrSchemaNotFound, r.SchemaID)
		}
		p.schemas[r.Pattern] = n
	}

	log.Debug("project opened", "root", absRoot, "rules", len(rules), "refs", registry.Len())
	return p, nil
}

// Root returns the absolute project root.
func (p *Project) Root() string { return p.root }

// Config returns the project configuration.
func (p *Project) Config() *config.File { return p.cfg }

// Registry returns the schema registry.
func (p *Project) Registry() *schema.Registry { return p.registry }

// Classifier returns the mapping classifier.
func (p *Project) Classifier() *mapping.Classifier { return p.classifier }

// Schema returns the schema resolved for a rule.
func (p *Project) Schema(r *mapping.Rule) (schema.Node, bool) {
	if r == nil {
		return nil, false
	}
	n, ok := p.schemas[r.Pattern]
	return n, ok
}

// Rel converts path to the slash-separated, root-relative form that
// mapping patterns are written against. Paths outside the root are
// returned unchanged.
func (p *Project) Rel(path string) string {
	if filepath.IsAbs(path) {
		if rel, err := filepath.Rel(p.root, path); err == nil {
			rel = filepath.ToSlash(rel)
			if rel != ".." && !strings.HasPrefix(rel, "../") {
				path = rel
			}
		}
	}
	return filepath.ToSlash(path)
}

// Classify classifies a path relative to the project root.
func (p *Project) Classify(path string) mapping.Result {
	return p.classifier.Classify(p.Rel(path))
}

// OutputPath returns where the targetLocale version of a source file is
// written. It reports false when path is not a source file.
func (p *Project) OutputPath(path, targetLocale string) (string, bool) {
	res := p.Classify(path)
	if res.Kind != mapping.Source {
		return "", false
	}
	return res.Rule.Template.Render(p.Rel(path), targetLocale), true
}

// OutputPaths returns the output path for every target locale, keyed by
// locale. It returns nil when path is not a source file.
func (p *Project) OutputPaths(path string) map[string]string {
	res := p.Classify(path)
	if res.Kind != mapping.Source {
		return nil
	}
	rel := p.Rel(path)
	out := make(map[string]string)
	for _, l := range p.cfg.TargetLocales() {
		out[l] = res.Rule.Template.Render(rel, l)
	}
	return out
}

// ScanResult groups the JSON files found under a project root.
type ScanResult struct {
	// Sources are root-relative source files, sorted.
	Sources []string
	// Localized maps a locale to its root-relative output files.
	Localized map[string][]string
	// Locales are the distinct non-source locales found, sorted.
	Locales []string
}

// Scan walks the project root and classifies every file. Hidden
// directories are skipped and symbolic links are not followed.
func (p *Project) Scan(ctx context.Context) (*ScanResult, error) {
	res := &ScanResult{Localized: make(map[string][]string)}

	err := filepath.WalkDir(p.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != p.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel := p.Rel(path)
		c := p.classifier.Classify(rel)
		switch c.Kind {
		case mapping.Source:
			res.Sources = append(res.Sources, rel)
		case mapping.Localized:
			l := c.Locale.String()
			res.Localized[l] = append(res.Localized[l], rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", p.root, err)
	}

	for l := range res.Localized {
		res.Locales = append(res.Locales, l)
	}
	sort.Strings(res.Locales)
	sort.Strings(res.Sources)
	return res, nil
}
