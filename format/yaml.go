package format

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/udx/udm"
)

// YAML is the YAML codec. Mapping order is preserved in both directions.
//
// Options: indent (number, default 2), flow (boolean, default false).
type YAML struct{}

// Decode implements [Codec].
func (YAML) Decode(ctx context.Context, r io.Reader, _ *udm.Object) (udm.Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, wrap("yaml", ErrDecode, err)
	}

	var doc any

	err = yaml.UnmarshalContext(ctx, data, &doc, yaml.UseOrderedMap())
	if err != nil {
		return nil, wrap("yaml", ErrDecode, err)
	}

	return fromYAML(doc), nil
}

func fromYAML(v any) udm.Value {
	switch x := v.(type) {
	case yaml.MapSlice:
		b := udm.NewBuilder()

		for _, item := range x {
			key := fmt.Sprint(item.Key)
			val := fromYAML(item.Value)

			name, attr := cutAttr(key)
			if attr && isScalar(val) {
				b.SetAttr(name, udm.Text(val))

				continue
			}

			b.Set(key, val)
		}

		return b.Build()
	case []any:
		out := make(udm.Array, len(x))
		for i, e := range x {
			out[i] = fromYAML(e)
		}

		return out
	}

	return udm.FromNative(v)
}

// Encode implements [Codec].
func (YAML) Encode(
	ctx context.Context,
	w io.Writer,
	v udm.Value,
	opts *udm.Object,
) error {
	encOpts := []yaml.EncodeOption{yaml.Indent(optInt(opts, "indent", 2))}
	if optBool(opts, "flow", false) {
		encOpts = append(encOpts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, toYAML(v), encOpts...)
	if err != nil {
		return wrap("yaml", ErrEncode, err)
	}

	if _, err := w.Write(data); err != nil {
		return wrap("yaml", ErrEncode, err)
	}

	return nil
}

// toYAML converts v into values the YAML encoder writes in order.
func toYAML(v udm.Value) any {
	switch x := v.(type) {
	case udm.Array:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = toYAML(e)
		}

		return out
	case *udm.Object:
		ms := make(yaml.MapSlice, 0, x.Len()+x.AttrLen())

		for k, a := range x.Attrs() {
			ms = append(ms, yaml.MapItem{Key: "@" + k, Value: a})
		}

		for k, e := range x.All() {
			ms = append(ms, yaml.MapItem{Key: k, Value: toYAML(e)})
		}

		return ms
	}

	return udm.ToNative(v)
}

func cutAttr(key string) (string, bool) {
	if len(key) > 1 && key[0] == '@' {
		return key[1:], true
	}

	return key, false
}
