package udm

import (
	"iter"
	"slices"
	"strings"
	"unicode"
)

// Object is an ordered mapping from property name to [Value], plus a
// separate ordered mapping from attribute name to string, plus an optional
// element name.
//
// Property and attribute names form disjoint namespaces. Objects are built
// with a [Builder] and never modified afterward.
type Object struct {
	name     string
	keys     []string
	props    map[string]Value
	attrKeys []string
	attrs    map[string]string
}

// EmptyObject returns an object with no properties, attributes or name.
func EmptyObject() *Object { return &Object{} }

// Kind implements [Value].
func (*Object) Kind() Kind { return KindObject }

// Name returns the element name, or "" if the object has none.
func (o *Object) Name() string { return o.name }

// Len returns the number of properties.
func (o *Object) Len() int { return len(o.keys) }

// Keys returns the property names in insertion order.
func (o *Object) Keys() []string { return slices.Clone(o.keys) }

// Get returns the property stored under key.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.props[key]

	return v, ok
}

// Has reports whether the object has a property named key.
func (o *Object) Has(key string) bool {
	_, ok := o.props[key]

	return ok
}

// All iterates over the properties in insertion order.
func (o *Object) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, k := range o.keys {
			if !yield(k, o.props[k]) {
				return
			}
		}
	}
}

// Values returns the property values in insertion order.
func (o *Object) Values() Array {
	out := make(Array, 0, len(o.keys))
	for _, k := range o.keys {
		out = append(out, o.props[k])
	}

	return out
}

// Attr returns the attribute stored under name.
func (o *Object) Attr(name string) (string, bool) {
	v, ok := o.attrs[name]

	return v, ok
}

// AttrLen returns the number of attributes.
func (o *Object) AttrLen() int { return len(o.attrKeys) }

// Attrs iterates over the attributes in insertion order.
func (o *Object) Attrs() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, k := range o.attrKeys {
			if !yield(k, o.attrs[k]) {
				return
			}
		}
	}
}

// With returns a copy of o with key set to v. An existing key keeps its
// position; a new key is appended.
func (o *Object) With(key string, v Value) *Object {
	return o.Builder().Set(key, v).Build()
}

// Without returns a copy of o without the given properties.
func (o *Object) Without(keys ...string) *Object {
	b := NewBuilder().Named(o.name)

	for k, v := range o.All() {
		if !slices.Contains(keys, k) {
			b.Set(k, v)
		}
	}

	for k, v := range o.Attrs() {
		b.SetAttr(k, v)
	}

	return b.Build()
}

// Builder returns a [Builder] initialized with a copy of o.
func (o *Object) Builder() *Builder {
	b := NewBuilder().Named(o.name)

	for k, v := range o.All() {
		b.Set(k, v)
	}

	for k, v := range o.Attrs() {
		b.SetAttr(k, v)
	}

	return b
}

// String returns o in literal syntax. Attributes are written as @name keys
// ahead of the properties.
func (o *Object) String() string {
	if o.Len() == 0 && o.AttrLen() == 0 {
		return "{}"
	}

	var sb strings.Builder

	sb.WriteByte('{')

	first := true
	sep := func() {
		if !first {
			sb.WriteString(", ")
		}

		first = false
	}

	for k, v := range o.Attrs() {
		sep()
		sb.WriteByte('@')
		sb.WriteString(FormatKey(k))
		sb.WriteString(": ")
		sb.WriteString(Quote(v))
	}

	for k, v := range o.All() {
		sep()
		sb.WriteString(FormatKey(k))
		sb.WriteString(": ")
		sb.WriteString(v.String())
	}

	sb.WriteByte('}')

	return sb.String()
}

// FormatKey returns key as it must be written in an object literal: bare if
// it is a valid identifier or directive name, quoted otherwise.
func FormatKey(key string) string {
	name, directive := strings.CutPrefix(key, "%")
	if IsIdentifier(name) && !(directive && name == "") {
		return key
	}

	return Quote(key)
}

// IsIdentifier reports whether s is a valid bare identifier.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		switch {
		case r == '_', unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}

	return !reserved[s]
}

// reserved lists words that cannot be written as bare object keys.
var reserved = map[string]bool{
	"true": true, "false": true, "null": true,
	"let": true, "function": true, "def": true, "template": true,
	"match": true, "if": true, "else": true, "try": true, "catch": true,
	"apply": true,
}

// Builder accumulates the contents of an [Object].
// The zero value is not usable; call [NewBuilder].
type Builder struct {
	obj *Object
}

// NewBuilder returns an empty object builder.
func NewBuilder() *Builder {
	return &Builder{obj: &Object{
		props: map[string]Value{},
		attrs: map[string]string{},
	}}
}

// Named sets the element name.
func (b *Builder) Named(name string) *Builder {
	b.obj.name = name

	return b
}

// Set stores v under key. An existing key keeps its original position.
func (b *Builder) Set(key string, v Value) *Builder {
	if v == nil {
		v = Null{}
	}

	if _, ok := b.obj.props[key]; !ok {
		b.obj.keys = append(b.obj.keys, key)
	}

	b.obj.props[key] = v

	return b
}

// Delete removes key if present.
func (b *Builder) Delete(key string) *Builder {
	if _, ok := b.obj.props[key]; ok {
		delete(b.obj.props, key)
		b.obj.keys = slices.DeleteFunc(b.obj.keys, func(k string) bool {
			return k == key
		})
	}

	return b
}

// SetAttr stores an attribute. An existing attribute keeps its position.
func (b *Builder) SetAttr(name, value string) *Builder {
	if _, ok := b.obj.attrs[name]; !ok {
		b.obj.attrKeys = append(b.obj.attrKeys, name)
	}

	b.obj.attrs[name] = value

	return b
}

// Merge copies every property and attribute of o into the builder, in o's
// order, with the semantics of [Builder.Set] and [Builder.SetAttr].
func (b *Builder) Merge(o *Object) *Builder {
	for k, v := range o.All() {
		b.Set(k, v)
	}

	for k, v := range o.Attrs() {
		b.SetAttr(k, v)
	}

	return b
}

// Len returns the number of properties set so far.
func (b *Builder) Len() int { return len(b.obj.keys) }

// Build returns the finished object. The builder must not be used after.
func (b *Builder) Build() *Object {
	o := b.obj
	b.obj = nil

	return o
}
