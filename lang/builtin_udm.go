package lang

import (
	"github.com/ardnew/udx/udm"
)

// These functions expose the element view of objects: a name and a set of
// string attributes alongside the properties, as read from XML.

func udmBuiltins() []*Builtin {
	return []*Builtin{
		{
			Name:   "name",
			Params: []string{"object"},
			Doc:    "returns the element name of object, or null",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				if obj, ok := args[0].(*udm.Object); ok && obj.Name() != "" {
					return udm.String(obj.Name()), nil
				}

				return udm.Null{}, nil
			}),
		},
		{
			Name:   "attributes",
			Params: []string{"object"},
			Doc:    "returns the attributes of object as an object of strings",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				b := udm.NewBuilder()

				if obj, ok := args[0].(*udm.Object); ok {
					for k, v := range obj.Attrs() {
						b.Set(k, udm.String(v))
					}
				}

				return b.Build(), nil
			}),
		},
		{
			Name:   "attr",
			Params: []string{"object", "name"},
			Doc:    "returns one attribute of object, or null",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				name, err := argString("attr", args, 1)
				if err != nil {
					return nil, err
				}

				return attribute(args[0], name), nil
			}),
		},
		{
			Name:   "element",
			Params: []string{"name", "props?", "attrs?"},
			Doc:    "builds a named object from properties and attributes",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				name, err := argString("element", args, 0)
				if err != nil {
					return nil, err
				}

				props, err := argObject("element", args, 1)
				if err != nil {
					return nil, err
				}

				b := props.Builder().Named(name)

				if err := setAttrs(b, "element", args, 2); err != nil {
					return nil, err
				}

				return b.Build(), nil
			}),
		},
		{
			Name:   "withAttributes",
			Params: []string{"object", "attrs"},
			Doc:    "returns object with the given attributes added or replaced",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				obj, err := argObject("withAttributes", args, 0)
				if err != nil {
					return nil, err
				}

				b := obj.Builder()

				if err := setAttrs(b, "withAttributes", args, 1); err != nil {
					return nil, err
				}

				return b.Build(), nil
			}),
		},
	}
}

func setAttrs(b *udm.Builder, name string, args []udm.Value, i int) error {
	attrs, err := argObject(name, args, i)
	if err != nil {
		return err
	}

	for k, v := range attrs.All() {
		if v.Kind() == udm.KindArray || v.Kind() == udm.KindObject {
			return raise(ErrTypeMismatch, "%s: attribute %s must be a scalar, got %s", name, k, TypeOf(v))
		}

		b.SetAttr(k, udm.Text(v))
	}

	return nil
}
