package format

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/ardnew/udx/udm"
)

// textKey holds the character data of an element that also has attributes
// or child elements.
const textKey = "_text"

// XML is the XML codec.
//
// Decoding maps each element to an object named after the element, with
// the element's attributes in the object's attribute map and its children
// as properties. Repeated children become arrays. A leaf element without
// attributes becomes a string. The document decodes to an object holding
// the root element under its name.
//
// Options: root (string, default "root"; the element used when the value
// does not have exactly one property), indent (number, default 2),
// declaration (boolean, default true).
type XML struct{}

type xmlFrame struct {
	name     string
	builder  *udm.Builder
	children []string
	values   map[string]udm.Value
	repeated map[string]bool
	text     strings.Builder
}

func newXMLFrame(se xml.StartElement) *xmlFrame {
	f := &xmlFrame{
		name:     se.Name.Local,
		builder:  udm.NewBuilder().Named(se.Name.Local),
		values:   map[string]udm.Value{},
		repeated: map[string]bool{},
	}

	for _, a := range se.Attr {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}

		f.builder.SetAttr(a.Name.Local, a.Value)
	}

	return f
}

// add records a child element. The second occurrence of a name promotes
// the property to an array.
func (f *xmlFrame) add(name string, v udm.Value) {
	prev, ok := f.values[name]

	switch {
	case !ok:
		f.children = append(f.children, name)
		f.values[name] = v
	case f.repeated[name]:
		f.values[name] = append(prev.(udm.Array), v)
	default:
		f.values[name] = udm.Array{prev, v}
		f.repeated[name] = true
	}
}

func (f *xmlFrame) value() udm.Value {
	text := strings.TrimSpace(f.text.String())

	for _, name := range f.children {
		f.builder.Set(name, f.values[name])
	}

	if text != "" {
		f.builder.Set(textKey, udm.String(text))
	}

	obj := f.builder.Build()
	if len(f.children) == 0 && obj.AttrLen() == 0 {
		return udm.String(text)
	}

	return obj
}

// Decode implements [Codec].
func (XML) Decode(_ context.Context, r io.Reader, _ *udm.Object) (udm.Value, error) {
	dec := xml.NewDecoder(r)

	var (
		stack []*xmlFrame
		root  udm.Value
		name  string
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, wrap("xml", ErrDecode, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, newXMLFrame(t))
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		case xml.EndElement:
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			v := top.value()
			if len(stack) == 0 {
				root, name = v, top.name

				continue
			}

			stack[len(stack)-1].add(top.name, v)
		}
	}

	if root == nil {
		return nil, wrap("xml", ErrDecode, errors.New("no root element"))
	}

	return udm.NewBuilder().Set(name, root).Build(), nil
}

// Encode implements [Codec].
func (XML) Encode(_ context.Context, w io.Writer, v udm.Value, opts *udm.Object) error {
	if optBool(opts, "declaration", true) {
		if _, err := io.WriteString(w, xml.Header); err != nil {
			return wrap("xml", ErrEncode, err)
		}
	}

	enc := xml.NewEncoder(w)
	if n := optInt(opts, "indent", 2); n > 0 {
		enc.Indent("", strings.Repeat(" ", n))
	}

	rootName, rootValue := optString(opts, "root", "root"), v
	if obj, ok := v.(*udm.Object); ok && obj.Len() == 1 && obj.AttrLen() == 0 {
		for k, e := range obj.All() {
			rootName, rootValue = k, e
		}
	}

	if err := encodeXML(enc, rootName, rootValue); err != nil {
		return wrap("xml", ErrEncode, err)
	}

	if err := enc.Flush(); err != nil {
		return wrap("xml", ErrEncode, err)
	}

	_, err := io.WriteString(w, "\n")

	return err
}

func encodeXML(enc *xml.Encoder, name string, v udm.Value) error {
	if arr, ok := v.(udm.Array); ok {
		for _, e := range arr {
			if err := encodeXML(enc, name, e); err != nil {
				return err
			}
		}

		return nil
	}

	start := xml.StartElement{Name: xml.Name{Local: name}}

	obj, isObj := v.(*udm.Object)
	if isObj {
		for k, a := range obj.Attrs() {
			start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: k}, Value: a})
		}
	}

	if err := enc.EncodeToken(start); err != nil {
		return err
	}

	switch {
	case isObj:
		for k, e := range obj.All() {
			if k == textKey {
				if err := enc.EncodeToken(xml.CharData(udm.Text(e))); err != nil {
					return err
				}

				continue
			}

			if err := encodeXML(enc, k, e); err != nil {
				return err
			}
		}
	case !udm.IsNull(v):
		if err := enc.EncodeToken(xml.CharData(udm.Text(v))); err != nil {
			return err
		}
	}

	return enc.EncodeToken(start.End())
}
