package lang

import (
	"strings"

	"github.com/ardnew/udx/udm"
)

// Closure is a user function: a lambda or a function declaration paired
// with the scope it was defined in.
type Closure struct {
	Name   string // empty for lambdas
	Params []*Param
	Type   string
	Body   Node
	Env    *Environment
}

// Kind implements [udm.Value].
func (*Closure) Kind() udm.Kind { return udm.KindFunction }

// String returns the closure's signature.
func (c *Closure) String() string {
	var sb strings.Builder

	if c.Name != "" {
		sb.WriteString("function ")
		sb.WriteString(c.Name)
	}

	sb.WriteByte('(')
	writeParams(&sb, c.Params)
	sb.WriteByte(')')

	if c.Name == "" {
		sb.WriteString(" => …")
	}

	return sb.String()
}

// Builtin is a host library function. Params names its parameters for
// signature help; a trailing '?' marks an optional parameter and a leading
// "..." a variadic one.
type Builtin struct {
	Name   string
	Params []string
	Doc    string
	Fn     func(rt *Runtime, args []udm.Value) (udm.Value, error)
}

// Kind implements [udm.Value].
func (*Builtin) Kind() udm.Kind { return udm.KindFunction }

// String returns the builtin's signature.
func (b *Builtin) String() string {
	return b.Name + "(" + strings.Join(b.Params, ", ") + ")"
}

// arity returns the minimum and maximum argument counts; max is -1 for
// variadic functions.
func (b *Builtin) arity() (int, int) {
	required := 0

	for _, p := range b.Params {
		switch {
		case strings.HasPrefix(p, "..."):
			return required, -1
		case !strings.HasSuffix(p, "?"):
			required++
		}
	}

	return required, len(b.Params)
}

// TypeOf returns the type name of v as reported by the typeOf builtin:
// "null", "boolean", "number", "string", "array", "object" or "function".
func TypeOf(v udm.Value) string {
	if v == nil {
		return udm.KindNull.String()
	}

	return v.Kind().String()
}

// typeNames maps declared type names to kinds. Any and unknown names
// accept every value.
var typeNames = map[string]udm.Kind{
	"null":     udm.KindNull,
	"boolean":  udm.KindBool,
	"bool":     udm.KindBool,
	"number":   udm.KindNumber,
	"string":   udm.KindString,
	"array":    udm.KindArray,
	"object":   udm.KindObject,
	"function": udm.KindFunction,
}

// conforms reports whether v satisfies a declared type. A trailing '?'
// also admits null.
func conforms(v udm.Value, typ string) bool {
	if typ == "" {
		return true
	}

	nullable := strings.HasSuffix(typ, "?")
	if nullable && udm.IsNull(v) {
		return true
	}

	kind, ok := typeNames[strings.ToLower(strings.TrimSuffix(typ, "?"))]
	if !ok {
		return true
	}

	return TypeOf(v) == kind.String()
}

func writeParams(sb *strings.Builder, params []*Param) {
	for i, p := range params {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(p.Name)

		if p.Type != "" {
			sb.WriteString(": ")
			sb.WriteString(p.Type)
		}
	}
}
