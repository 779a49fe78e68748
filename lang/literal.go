package lang

import (
	"math"
	"strings"

	"github.com/ardnew/udx/udm"
)

// FormatLiteral returns v in literal syntax. [ParseLiteral] reads the result
// back to a value equal to v, except that object names are not written and
// non-finite numbers become null. Functions are written as null.
func FormatLiteral(v udm.Value) string {
	var sb strings.Builder

	writeLiteral(&sb, v)

	return sb.String()
}

func writeLiteral(sb *strings.Builder, v udm.Value) {
	switch x := v.(type) {
	case udm.Number:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			sb.WriteString("null")

			return
		}

		sb.WriteString(udm.FormatNumber(float64(x)))

	case udm.Bool, udm.String:
		sb.WriteString(x.String())

	case udm.Array:
		sb.WriteByte('[')

		for i, e := range x {
			if i > 0 {
				sb.WriteString(", ")
			}

			writeLiteral(sb, e)
		}

		sb.WriteByte(']')

	case *udm.Object:
		sb.WriteByte('{')

		first := true
		sep := func() {
			if !first {
				sb.WriteString(", ")
			}

			first = false
		}

		for k, a := range x.Attrs() {
			sep()
			sb.WriteByte('@')
			sb.WriteString(udm.FormatKey(k))
			sb.WriteString(": ")
			sb.WriteString(udm.Quote(a))
		}

		for k, e := range x.All() {
			sep()
			sb.WriteString(udm.FormatKey(k))
			sb.WriteString(": ")
			writeLiteral(sb, e)
		}

		sb.WriteByte('}')

	default:
		sb.WriteString("null")
	}
}

// ParseLiteral parses a literal value: null, a boolean, a number (with an
// optional leading minus), a string, or an array or object of literals.
// Identifiers, operators and calls are rejected with [ErrParse].
func ParseLiteral(source string) (udm.Value, error) {
	n, err := ParseExpression(source)
	if err != nil {
		return nil, err
	}

	v, err := literalValue(n)
	if err != nil {
		return nil, withSource(err, source)
	}

	return v, nil
}

func literalValue(n Node) (udm.Value, error) {
	switch n := n.(type) {
	case *NullLit:
		return udm.Null{}, nil

	case *BoolLit:
		return udm.Bool(n.Value), nil

	case *NumberLit:
		return udm.Number(n.Value), nil

	case *StringLit:
		return udm.String(n.Value), nil

	case *Group:
		return literalValue(n.X)

	case *Unary:
		if num, ok := unparen(n.X).(*NumberLit); ok && n.Op == "-" {
			return udm.Number(-num.Value), nil
		}

	case *ArrayLit:
		out := make(udm.Array, 0, len(n.Elems))

		for _, e := range n.Elems {
			if e.Spread {
				return nil, newSignal(ErrParse, "spread is not allowed in a literal", e.Value.Pos())
			}

			v, err := literalValue(e.Value)
			if err != nil {
				return nil, err
			}

			out = append(out, v)
		}

		return out, nil

	case *ObjectLit:
		if len(n.Decls) > 0 {
			return nil, newSignal(ErrParse, "declarations are not allowed in a literal", n.Decls[0].Pos())
		}

		b := udm.NewBuilder()

		for _, e := range n.Entries {
			switch e.Kind {
			case EntryKey, EntryDirective:
				v, err := literalValue(e.Value)
				if err != nil {
					return nil, err
				}

				b.Set(e.Key, v)

			case EntryAttr:
				v, err := literalValue(e.Value)
				if err != nil {
					return nil, err
				}

				b.SetAttr(e.Key, udm.Text(v))

			default:
				return nil, newSignal(ErrParse, "computed and spread entries are not allowed in a literal", e.At)
			}
		}

		return b.Build(), nil
	}

	return nil, newSignal(ErrParse, "expected a literal value", n.Pos())
}
