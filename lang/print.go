package lang

import (
	"io"
	"strings"

	"github.com/ardnew/udx/udm"
)

// Print writes an indented outline of the script's syntax tree to w.
func (s *Script) Print(w io.Writer) error {
	return s.PrintIndent(w, 0)
}

// PrintIndent writes an outline of the syntax tree starting at the given
// indentation level. Each node is written on its own line as its type,
// followed by its scalar fields and then its children.
func (s *Script) PrintIndent(w io.Writer, indent int) error {
	p := &outline{w: w}
	p.object("Script", s.Tree(), indent)

	return p.err
}

type outline struct {
	w   io.Writer
	err error
}

func (p *outline) line(indent int, item ...string) {
	if p.err != nil {
		return
	}

	_, p.err = io.WriteString(p.w, strings.Repeat("  ", indent)+strings.Join(item, ": ")+"\n")
}

func (p *outline) object(label string, o *udm.Object, indent int) {
	if n, ok := o.Get("node"); ok {
		label = udm.Text(n)
	}

	var scalars []string

	for k, v := range o.All() {
		if k == "node" {
			continue
		}

		switch v.(type) {
		case *udm.Object, udm.Array:
		default:
			scalars = append(scalars, k+"="+v.String())
		}
	}

	if len(scalars) > 0 {
		p.line(indent, label, strings.Join(scalars, " "))
	} else {
		p.line(indent, label)
	}

	for k, v := range o.All() {
		switch x := v.(type) {
		case *udm.Object:
			p.child(k, x, indent+1)
		case udm.Array:
			if len(x) == 0 {
				continue
			}

			p.line(indent+1, k)

			for _, e := range x {
				p.value(e, indent+2)
			}
		}
	}
}

func (p *outline) child(key string, o *udm.Object, indent int) {
	if _, ok := o.Get("node"); !ok {
		p.object(key, o, indent)

		return
	}

	p.line(indent, key)
	p.object("", o, indent+1)
}

func (p *outline) value(v udm.Value, indent int) {
	switch x := v.(type) {
	case *udm.Object:
		p.object("", x, indent)
	case udm.Array:
		p.line(indent, "[]")

		for _, e := range x {
			p.value(e, indent+1)
		}
	default:
		p.line(indent, v.String())
	}
}
