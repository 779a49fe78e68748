// Package udm defines the Universal Data Model: the single in-memory shape
// shared by every input format, every output format, and every expression
// evaluated by package lang.
//
// A [Value] is one of [Null], [Bool], [Number], [String], [Array], or
// [*Object]. An interpreter may add its own callable values of
// [KindFunction]. Values are immutable once constructed; operations that appear
// to modify a value return a new one.
package udm

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

// Kind identifies the variant of a [Value].
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	// KindFunction marks callables produced by an interpreter. They never
	// come out of a decoder and cannot be encoded.
	KindFunction
)

// String returns the name of the kind as reported by typeOf.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Value is a node in the Universal Data Model.
type Value interface {
	Kind() Kind
	// String returns the value in literal syntax.
	String() string
}

// Null is the absent value.
type Null struct{}

// Bool is a boolean scalar.
type Bool bool

// Number is a floating-point scalar.
type Number float64

// String is a text scalar.
type String string

// Array is an ordered, possibly heterogeneous sequence of values.
// An Array must not be modified after it has been shared.
type Array []Value

func (Null) Kind() Kind   { return KindNull }
func (Bool) Kind() Kind   { return KindBool }
func (Number) Kind() Kind { return KindNumber }
func (String) Kind() Kind { return KindString }
func (Array) Kind() Kind  { return KindArray }

func (Null) String() string { return "null" }

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

func (n Number) String() string { return FormatNumber(float64(n)) }

func (s String) String() string { return Quote(string(s)) }

func (a Array) String() string {
	var sb strings.Builder

	sb.WriteByte('[')

	for i, v := range a {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(v.String())
	}

	sb.WriteByte(']')

	return sb.String()
}

// FormatNumber formats n the way it is written in source: integral values
// have no fractional part and no exponent below 1e21.
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case n == math.Trunc(n) && math.Abs(n) < 1e21:
		return strconv.FormatFloat(n, 'f', -1, 64)
	default:
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
}

// Quote returns s as a double-quoted string literal using the escapes
// \n, \t, \r, \b, \f, \", \\ and \uXXXX. Bytes that are not valid UTF-8
// are written as \xHH so that the literal reads back to the same bytes.
func Quote(s string) string {
	var sb strings.Builder

	sb.Grow(len(s) + 2)
	sb.WriteByte('"')

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			fmt.Fprintf(&sb, `\x%02x`, s[i])
			i++

			continue
		}

		i += size

		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		default:
			if unicode.IsPrint(r) {
				sb.WriteRune(r)

				continue
			}

			for _, u := range utf16.Encode([]rune{r}) {
				fmt.Fprintf(&sb, `\u%04x`, u)
			}
		}
	}

	sb.WriteByte('"')

	return sb.String()
}

// Text returns the plain text form of v: strings unquoted, everything else
// in literal syntax. Null is the empty string.
func Text(v Value) string {
	switch x := v.(type) {
	case nil, Null:
		return ""
	case String:
		return string(x)
	default:
		return v.String()
	}
}

// Truthy reports whether v counts as true in a condition.
// Null, false, 0 and "" are falsy; every other value, including empty
// arrays and objects, is truthy.
func Truthy(v Value) bool {
	switch x := v.(type) {
	case nil, Null:
		return false
	case Bool:
		return bool(x)
	case Number:
		return x != 0
	case String:
		return x != ""
	default:
		return true
	}
}

// IsNull reports whether v is absent or [Null].
func IsNull(v Value) bool {
	if v == nil {
		return true
	}

	_, ok := v.(Null)

	return ok
}

// Int returns v as an int if it is a Number with no fractional part.
func Int(v Value) (int, bool) {
	n, ok := v.(Number)
	if !ok {
		return 0, false
	}

	f := float64(n)
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return int(f), true
}
