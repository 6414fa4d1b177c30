package schema

import (
	"fmt"
	"sort"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// Node is a schema document tree: an *Object, an Array or a Scalar.
type Node interface {
	// Value converts the node back to plain Go values (map[string]any,
	// []any and scalars).
	Value() any
	isNode()
}

// Object is a JSON object with its keys kept in sorted order.
type Object struct {
	keys   []string
	fields map[string]Node
}

// Array is a JSON array.
type Array []Node

// Scalar is any JSON leaf: string, number, bool or null.
type Scalar struct {
	V any
}

func (*Object) isNode() {}
func (Array) isNode()   {}
func (Scalar) isNode()  {}

// NewObject builds an Object from a field map.
func NewObject(fields map[string]Node) *Object {
	o := &Object{fields: make(map[string]Node, len(fields))}
	for k, v := range fields {
		o.fields[k] = v
		o.keys = append(o.keys, k)
	}
	sort.Strings(o.keys)
	return o
}

// Keys returns the object's keys in sorted order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Node, bool) {
	n, ok := o.fields[key]
	return n, ok
}

// Len returns the number of fields.
func (o *Object) Len() int {
	return len(o.keys)
}

// StringField returns the string value under key, or "" if it is missing or
// not a string.
func (o *Object) StringField(key string) string {
	if s, ok := o.fields[key].(Scalar); ok {
		if str, ok := s.V.(string); ok {
			return str
		}
	}
	return ""
}

func (o *Object) Value() any {
	m := make(map[string]any, len(o.fields))
	for k, v := range o.fields {
		m[k] = v.Value()
	}
	return m
}

func (a Array) Value() any {
	out := make([]any, len(a))
	for i, v := range a {
		out[i] = v.Value()
	}
	return out
}

func (s Scalar) Value() any {
	return s.V
}

// FromValue converts decoded JSON values into a Node tree.
func FromValue(v any) Node {
	switch t := v.(type) {
	case map[string]any:
		fields := make(map[string]Node, len(t))
		for k, child := range t {
			fields[k] = FromValue(child)
		}
		return NewObject(fields)
	case []any:
		arr := make(Array, len(t))
		for i, child := range t {
			arr[i] = FromValue(child)
		}
		return arr
	default:
		return Scalar{V: t}
	}
}

// Parse decodes a JSON schema document.
func Parse(data []byte) (Node, error) {
	v, err := oj.Parse(data)
	if err != nil {
		return nil, err
	}
	return FromValue(v), nil
}

// Marshal renders a node as indented JSON with sorted keys.
func Marshal(n Node) string {
	return oj.JSON(n.Value(), &oj.Options{Indent: 2, Sort: true})
}

// Select evaluates a JSONPath expression against a node.
func Select(n Node, expr string) ([]Node, error) {
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath %q: %w", expr, err)
	}
	results := x.Get(n.Value())
	nodes := make([]Node, len(results))
	for i, r := range results {
		nodes[i] = FromValue(r)
	}
	return nodes, nil
}
