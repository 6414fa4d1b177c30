// Package schema loads JSON schema documents and indexes every named
// fragment in them.
//
// Loading is two-phase: a Builder accumulates documents and references,
// then Build freezes them into a read-only Registry that is safe to share
// between goroutines.
//
// A reference is the path from a document's base through every object key
// and array index down to an "$id" or "$anchor" key, with that key name
// appended, e.g. "http://example.com/app/$defs/address/$id". It resolves
// to the object that holds the key.
package schema

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Marker keys that name a schema fragment.
const (
	IDKey     = "$id"
	AnchorKey = "$anchor"
)

// DefaultID is the $id of DefaultSchema.
const DefaultID = "http://github.com/ilib-js/LocalizableJson"

// DefaultSchema returns the schema applied when a project configures
// none: a flat object whose property values are localizable strings.
func DefaultSchema() Node {
	return FromValue(map[string]any{
		"$schema":     "http://json-schema.org/draft-07/schema#",
		"$id":         DefaultID,
		"type":        "object",
		"description": "A collection of properties with localizable values",
		"additionalProperties": map[string]any{
			"type":        "string",
			"localizable": true,
		},
	})
}

// IndexRefs returns every reference found in doc, composed under base.
// Only objects and arrays are descended into.
func IndexRefs(doc Node, base string) map[string]Node {
	refs := make(map[string]Node)
	indexRefs(doc, []string{base}, refs)
	return refs
}

func indexRefs(n Node, trail []string, refs map[string]Node) {
	switch v := n.(type) {
	case *Object:
		for _, k := range v.keys {
			if k == IDKey || k == AnchorKey {
				refs[joinRef(append(trail, k))] = v
				continue
			}
			indexRefs(v.fields[k], append(trail, k), refs)
		}
	case Array:
		for i, el := range v {
			indexRefs(el, append(trail, strconv.Itoa(i)), refs)
		}
	}
}

// joinRef joins reference segments with "/". An empty base contributes
// nothing, and no other normalization is applied so URI bases such as
// "http://host/x" survive intact.
func joinRef(segs []string) string {
	if len(segs) > 0 && segs[0] == "" {
		segs = segs[1:]
	}
	return strings.Join(segs, "/")
}

// Builder accumulates schema documents. It is not safe for concurrent use.
type Builder struct {
	docs map[string]Node
	refs map[string]Node
	log  *slog.Logger
}

// NewBuilder returns an empty Builder. A nil logger means slog.Default().
func NewBuilder(log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{
		docs: make(map[string]Node),
		refs: make(map[string]Node),
		log:  log,
	}
}

// LoadPath loads a schema file, or every regular file below a directory.
// path itself may be a symbolic link; links below it are not followed.
// Documents are named under path as given. Any unreadable or unparseable
// file aborts loading.
func (b *Builder) LoadPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("loading schemas: %w", err)
	}
	if !info.IsDir() {
		return b.LoadFile(path)
	}

	root, err := filepath.EvalSymlinks(path)
	if err != nil {
		return fmt.Errorf("loading schemas: %w", err)
	}
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("loading schemas: %w", err)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		return b.LoadFile(filepath.Join(path, rel))
	})
}

// LoadFile parses one schema file and adds it under its path.
func (b *Builder) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading schema %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return fmt.Errorf("parsing schema %s: %w", path, err)
	}
	b.AddDocument(filepath.ToSlash(path), doc)
	return nil
}

// AddDocument registers doc under name. A root "$id" string names the
// whole document and becomes the base for its references; otherwise the
// document name is the base.
func (b *Builder) AddDocument(name string, doc Node) {
	b.docs[name] = doc

	base := name
	if obj, ok := doc.(*Object); ok {
		if id := obj.StringField(IDKey); id != "" {
			b.add(id, doc, name)
			base = id
		}
	}
	for ref, n := range IndexRefs(doc, base) {
		b.add(ref, n, name)
	}
	b.log.Debug("schema loaded", "document", name, "base", base)
}

func (b *Builder) add(ref string, n Node, from string) {
	if _, dup := b.refs[ref]; dup {
		b.log.Warn("schema reference redefined", "ref", ref, "document", from)
	}
	b.refs[ref] = n
}

// Build freezes the accumulated documents into a Registry. The Builder
// may keep loading afterwards without affecting the returned Registry.
func (b *Builder) Build() *Registry {
	r := &Registry{
		docs: make(map[string]Node, len(b.docs)),
		refs: make(map[string]Node, len(b.refs)),
	}
	for k, v := range b.docs {
		r.docs[k] = v
	}
	for k, v := range b.refs {
		r.refs[k] = v
	}
	return r
}

// Registry is a read-only index of schema documents and references.
type Registry struct {
	docs map[string]Node
	refs map[string]Node
}

// Get returns the schema fragment registered under uri.
func (r *Registry) Get(uri string) (Node, bool) {
	n, ok := r.refs[uri]
	return n, ok
}

// Document returns a loaded document by its name (file path).
func (r *Registry) Document(name string) (Node, bool) {
	n, ok := r.docs[name]
	return n, ok
}

// Documents returns the names of all loaded documents, sorted.
func (r *Registry) Documents() []string {
	return sortedKeys(r.docs)
}

// URIs returns every registered reference, sorted.
func (r *Registry) URIs() []string {
	return sortedKeys(r.refs)
}

// Len returns the number of registered references.
func (r *Registry) Len() int {
	return len(r.refs)
}

func sortedKeys(m map[string]Node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
