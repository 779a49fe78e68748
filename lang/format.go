package lang

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/ardnew/udx/format"
	"github.com/ardnew/udx/udm"
)

// Format writes the script in normalized source syntax. With indent > 0,
// blocks, objects and match cases are laid out one member per line;
// otherwise the body is written on one line.
func (s *Script) Format(_ context.Context, w io.Writer, indent int) error {
	p := &printer{indent: indent}

	if s.Header != nil {
		p.header(s.Header)
	}

	p.body(s.Body.Decls, s.Body.Result)
	p.sb.WriteByte('\n')

	_, err := io.WriteString(w, p.sb.String())

	return err
}

// FormatJSON writes the script's syntax tree (see [Script.Tree]) as JSON.
func (s *Script) FormatJSON(ctx context.Context, w io.Writer, indent int) error {
	return format.Encode(ctx, "json", w, s.Tree(),
		udm.NewBuilder().Set("indent", udm.Number(indent)).Build())
}

// FormatYAML writes the script's syntax tree (see [Script.Tree]) as YAML.
// An indent of 0 selects flow style.
func (s *Script) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	opts := udm.NewBuilder().Set("indent", udm.Number(max(indent, 2)))
	if indent == 0 {
		opts.Set("flow", udm.Bool(true))
	}

	return format.Encode(ctx, "yaml", w, s.Tree(), opts.Build())
}

// FormatNode returns n in compact source syntax.
func FormatNode(n Node) string {
	p := new(printer)
	p.expr(n, 0)

	return p.sb.String()
}

// printer writes nodes in source syntax.
type printer struct {
	sb     strings.Builder
	indent int
	depth  int
}

// Operator precedence levels, loosest first. Postfix selectors and calls
// bind tightest.
const (
	precPipe = iota
	precTernary
	precCoalesce
	precOr
	precAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
)

func binaryPrec(op string) int {
	switch op {
	case "??":
		return precCoalesce
	case "||":
		return precOr
	case "&&":
		return precAnd
	case "==", "!=":
		return precEquality
	case "<", "<=", ">", ">=":
		return precRelational
	case "+", "-":
		return precAdditive
	}

	return precMultiplicative
}

// prec returns the precedence of n as an operand. Forms ending in an
// unbracketed expression (if, try, lambda) bind loosest.
func prec(n Node) int {
	switch n := n.(type) {
	case *Pipe, *If, *Try, *Lambda:
		return precPipe
	case *Ternary:
		return precTernary
	case *Binary:
		return binaryPrec(n.Op)
	case *Unary:
		return precUnary
	}

	return precPostfix
}

func (p *printer) write(parts ...string) {
	for _, s := range parts {
		p.sb.WriteString(s)
	}
}

func (p *printer) newline() {
	if p.indent > 0 {
		p.sb.WriteByte('\n')
		p.sb.WriteString(strings.Repeat(" ", p.depth*p.indent))
	}
}

// sep writes a newline when indenting, else compact.
func (p *printer) sep(compact string) {
	if p.indent > 0 {
		p.newline()
	} else {
		p.write(compact)
	}
}

// expr writes n, parenthesized if it binds looser than floor.
func (p *printer) expr(n Node, floor int) {
	if prec(n) < floor {
		p.write("(")
		p.expr(n, 0)
		p.write(")")

		return
	}

	switch n := n.(type) {
	case *NumberLit:
		if n.Raw != "" {
			p.write(n.Raw)
		} else {
			p.write(udm.FormatNumber(n.Value))
		}

	case *StringLit:
		p.write(udm.Quote(n.Value))

	case *BoolLit:
		p.write(fmt.Sprint(n.Value))

	case *NullLit:
		p.write("null")

	case *Ident:
		p.write(n.Name)

	case *InputRef:
		p.write("$", n.Name)

	case *ContextRef:
		p.write("$")

	case *AttrRef:
		p.write("@", n.Name)

	case *Group:
		p.write("(")
		p.expr(n.X, 0)
		p.write(")")

	case *ObjectLit:
		p.object(n)

	case *ArrayLit:
		p.write("[")

		for i, e := range n.Elems {
			if i > 0 {
				p.write(", ")
			}

			if e.Spread {
				p.write("...")
			}

			p.expr(e.Value, 0)
		}

		p.write("]")

	case *Member:
		p.expr(n.Target, precPostfix)

		if n.Safe {
			p.write("?.")
		} else {
			p.write(".")
		}

		p.write(memberKey(n.Name))

	case *AttrAccess:
		p.expr(n.Target, precPostfix)
		p.write(".@", n.Name)

	case *Wildcard:
		p.expr(n.Target, precPostfix)
		p.write("[*]")

	case *Index:
		p.expr(n.Target, precPostfix)
		p.write("[")
		p.expr(n.Index, 0)
		p.write("]")

	case *Predicate:
		p.expr(n.Target, precPostfix)
		p.write("[")
		p.expr(n.Cond, 0)
		p.write("]")

	case *Descent:
		p.expr(n.Target, precPostfix)
		p.write("..", memberKey(n.Name))

	case *Binary:
		op := binaryPrec(n.Op)
		p.expr(n.L, op)
		p.write(" ", n.Op, " ")
		p.expr(n.R, op+1)

	case *Unary:
		p.write(n.Op)
		p.expr(n.X, precUnary)

	case *If:
		p.write("if (")
		p.expr(n.Cond, 0)
		p.write(") ")

		if n.Else != nil && openIf(n.Then) {
			p.write("(")
			p.expr(n.Then, 0)
			p.write(")")
		} else {
			p.expr(n.Then, 0)
		}

		if n.Else != nil {
			p.write(" else ")
			p.expr(n.Else, 0)
		}

	case *Ternary:
		p.expr(n.Cond, precCoalesce)
		p.write(" ? ")
		p.expr(n.Then, precTernary)
		p.write(" : ")
		p.expr(n.Else, precTernary)

	case *Match:
		p.match(n)

	case *Try:
		p.write("try ")
		p.expr(n.Body, 0)
		p.write(" catch ")

		if n.Name != "" {
			p.write("(", n.Name, ") ")
		}

		p.expr(n.Handler, 0)

	case *Lambda:
		p.params(n.Params)
		p.write(" => ")
		p.expr(n.Body, 0)

	case *Pipe:
		for i, s := range n.Stages {
			if i > 0 {
				p.write(" |> ")
			}

			p.expr(s, precTernary)
		}

	case *Apply:
		p.write("apply(")

		if n.Selector != nil {
			p.expr(n.Selector, 0)
		}

		if n.Mode != nil {
			p.write(", ")
			p.expr(n.Mode, 0)
		}

		p.write(")")

	case *Block:
		p.write("{")
		p.depth++
		p.sep(" ")
		p.body(n.Decls, n.Result)
		p.depth--
		p.sep(" ")
		p.write("}")

	case *Call:
		p.expr(n.Callee, precPostfix)
		p.write("(")

		for i, a := range n.Args {
			if i > 0 {
				p.write(", ")
			}

			p.expr(a, 0)
		}

		p.write(")")

	case Decl:
		p.decl(n)

	default:
		p.write(fmt.Sprintf("<%T>", n))
	}
}

// body writes declarations followed by the result expression.
func (p *printer) body(decls []Decl, result Node) {
	for _, d := range decls {
		p.decl(d)
		p.write(";")
		p.sep(" ")
	}

	p.expr(result, 0)
}

func (p *printer) decl(d Decl) {
	switch d := d.(type) {
	case *Let:
		p.write("let ", d.Name)
		p.typeAnnotation(d.Type)
		p.write(" = ")
		p.expr(d.Value, 0)

	case *FuncDecl:
		p.write("function ", d.Name)
		p.params(d.Params)
		p.typeAnnotation(d.Type)
		p.write(" => ")
		p.expr(d.Body, 0)

	case *TemplateDecl:
		p.write("template match = ", udm.Quote(d.Pattern))

		if d.Priority != nil {
			p.write(" priority = ", udm.FormatNumber(*d.Priority))
		}

		if d.Mode != "" {
			p.write(" mode = ", udm.Quote(d.Mode))
		}

		p.write(" => ")
		p.expr(d.Body, 0)
	}
}

func (p *printer) params(params []*Param) {
	p.write("(")

	for i, prm := range params {
		if i > 0 {
			p.write(", ")
		}

		p.write(prm.Name)
		p.typeAnnotation(prm.Type)
	}

	p.write(")")
}

func (p *printer) typeAnnotation(t string) {
	if t != "" {
		p.write(": ", t)
	}
}

func (p *printer) object(n *ObjectLit) {
	if len(n.Decls) == 0 && len(n.Entries) == 0 {
		p.write("{}")

		return
	}

	p.write("{")
	p.depth++
	p.sep(" ")

	for _, d := range n.Decls {
		p.decl(d)
		p.write(";")
		p.sep(" ")
	}

	for i, e := range n.Entries {
		if i > 0 {
			p.write(",")
			p.sep(" ")
		}

		switch e.Kind {
		case EntrySpread:
			p.write("...")
		case EntryComputed:
			p.write("[")
			p.expr(e.KeyExpr, 0)
			p.write("]: ")
		case EntryAttr:
			p.write("@", udm.FormatKey(e.Key), ": ")
		default:
			p.write(udm.FormatKey(e.Key), ": ")
		}

		p.expr(e.Value, 0)
	}

	p.depth--
	p.sep(" ")
	p.write("}")
}

func (p *printer) match(n *Match) {
	p.write("match ")
	p.expr(n.Subject, 0)
	p.write(" {")
	p.depth++
	p.sep(" ")

	for i, c := range n.Cases {
		if i > 0 {
			p.write(",")
			p.sep(" ")
		}

		switch pat := c.Pattern.(type) {
		case *WildcardPattern:
			p.write("_")
		case *VarPattern:
			p.write(pat.Name)
		case *LiteralPattern:
			p.write(FormatLiteral(pat.Value))
		}

		if c.Guard != nil {
			p.write(" if ")
			p.expr(c.Guard, 0)
		}

		p.write(" => ")
		p.expr(c.Body, 0)
	}

	p.depth--
	p.sep(" ")
	p.write("}")
}

func (p *printer) header(h *Header) {
	if h.Dialect != nil {
		p.write("%")
		p.dialect(h.Dialect)
		p.write("\n")
	}

	for _, in := range h.Inputs {
		p.write("input ")

		if in.Name != "input" {
			p.write(in.Name, " ")
		}

		p.formatSpec(&in.FormatSpec)
		p.write("\n")
	}

	if h.Output != nil {
		p.write("output ")
		p.formatSpec(h.Output)
		p.write("\n")
	}

	p.write("---\n")
}

func (p *printer) formatSpec(f *FormatSpec) {
	p.write(f.Format)

	if f.Options != nil {
		p.write(" ")

		saved := p.indent
		p.indent = 0
		p.object(f.Options)
		p.indent = saved
	}

	if f.Dialect != nil {
		p.write(" %")
		p.dialect(f.Dialect)
	}
}

func (p *printer) dialect(d *Dialect) {
	p.write(d.Name)

	if d.Version != "" {
		p.write(" ", udm.Quote(d.Version))
	}
}

// openIf reports whether n ends in an if without else, which would capture
// a following else.
func openIf(n Node) bool {
	switch n := n.(type) {
	case *If:
		return n.Else == nil || openIf(n.Else)
	case *Try:
		return openIf(n.Handler)
	case *Lambda:
		return openIf(n.Body)
	}

	return false
}

// memberKey returns a name as written after '.' or '..'.
func memberKey(name string) string {
	if udm.IsIdentifier(name) || IsKeyword(name) {
		return name
	}

	return udm.Quote(name)
}

// Tree returns the script's syntax tree as a value. Each node becomes an
// object whose "node" property names its type, followed by its fields with
// lowercased names; positions are written as "line:column".
func (s *Script) Tree() *udm.Object {
	b := udm.NewBuilder().Named("script")

	if s.Header != nil {
		b.Set("header", treeValue(reflect.ValueOf(s.Header)))
	}

	b.Set("body", treeValue(reflect.ValueOf(s.Body)))

	return b.Build()
}

var (
	positionType = reflect.TypeFor[Position]()
	udmValueType = reflect.TypeFor[udm.Value]()
)

func treeValue(v reflect.Value) udm.Value {
	if v.Kind() == reflect.Interface && v.Type() == udmValueType && !v.IsNil() {
		if uv, ok := v.Interface().(udm.Value); ok {
			return uv
		}
	}

	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return udm.Null{}
		}

		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.String:
		return udm.String(v.String())
	case reflect.Bool:
		return udm.Bool(v.Bool())
	case reflect.Float64:
		return udm.Number(v.Float())
	case reflect.Int:
		return udm.Number(v.Int())
	case reflect.Slice:
		out := make(udm.Array, v.Len())
		for i := range out {
			out[i] = treeValue(v.Index(i))
		}

		return out
	case reflect.Struct:
		if v.Type() == positionType {
			pos, _ := v.Interface().(Position)

			return udm.String(pos.String())
		}

		return treeStruct(v)
	}

	return udm.Null{}
}

func treeStruct(v reflect.Value) *udm.Object {
	t := v.Type()
	b := udm.NewBuilder().Named(t.Name()).Set("node", udm.String(t.Name()))

	for i := range t.NumField() {
		f := t.Field(i)

		switch {
		case !f.IsExported():
			continue
		case f.Anonymous:
			if inner, ok := treeValue(v.Field(i)).(*udm.Object); ok {
				for k, x := range inner.All() {
					if k != "node" {
						b.Set(k, x)
					}
				}
			}

			continue
		}

		fv := v.Field(i)

		switch fv.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.String:
			if fv.IsZero() {
				continue
			}
		}

		key := strings.ToLower(f.Name[:1]) + f.Name[1:]

		if f.Type == reflect.TypeFor[EntryKind]() {
			b.Set(key, udm.String(EntryKind(fv.Int()).String()))

			continue
		}

		b.Set(key, treeValue(fv))
	}

	return b.Build()
}
