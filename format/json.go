package format

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/ardnew/udx/udm"
)

// JSON is the JSON codec. Object key order is preserved in both directions.
// Attributes are encoded as "@name" keys, and "@name" keys are decoded back
// into attributes.
//
// Options: indent (number, default 2; 0 for compact output).
type JSON struct{}

// Decode implements [Codec].
func (JSON) Decode(_ context.Context, r io.Reader, _ *udm.Object) (udm.Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	v, err := decodeJSON(dec)
	if err != nil {
		return nil, wrap("json", ErrDecode, err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, wrap("json", ErrDecode, errors.New("trailing data after value"))
	}

	return v, nil
}

func decodeJSON(dec *json.Decoder) (udm.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case nil:
		return udm.Null{}, nil
	case bool:
		return udm.Bool(t), nil
	case string:
		return udm.String(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}

		return udm.Number(f), nil
	case json.Delim:
		switch t {
		case '[':
			arr := udm.Array{}

			for dec.More() {
				v, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}

				arr = append(arr, v)
			}

			if _, err := dec.Token(); err != nil {
				return nil, err
			}

			return arr, nil
		case '{':
			b := udm.NewBuilder()

			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}

				key, _ := kt.(string)

				v, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}

				name, attr := cutAttr(key)
				if attr && isScalar(v) {
					b.SetAttr(name, udm.Text(v))

					continue
				}

				b.Set(key, v)
			}

			if _, err := dec.Token(); err != nil {
				return nil, err
			}

			return b.Build(), nil
		}
	}

	return nil, errors.New("unexpected JSON token")
}

// Encode implements [Codec].
func (JSON) Encode(_ context.Context, w io.Writer, v udm.Value, opts *udm.Object) error {
	bw := bufio.NewWriter(w)
	enc := jsonEncoder{w: bw, indent: optInt(opts, "indent", 2)}

	if err := enc.value(v, 0); err != nil {
		return wrap("json", ErrEncode, err)
	}

	bw.WriteByte('\n')

	if err := bw.Flush(); err != nil {
		return wrap("json", ErrEncode, err)
	}

	return nil
}

type jsonEncoder struct {
	w      *bufio.Writer
	indent int
}

func (e jsonEncoder) newline(depth int) {
	if e.indent <= 0 {
		return
	}

	e.w.WriteByte('\n')
	e.w.WriteString(strings.Repeat(" ", depth*e.indent))
}

func (e jsonEncoder) scalar(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	_, err = e.w.Write(b)

	return err
}

func (e jsonEncoder) key(k string) error {
	if err := e.scalar(k); err != nil {
		return err
	}

	e.w.WriteByte(':')

	if e.indent > 0 {
		e.w.WriteByte(' ')
	}

	return nil
}

func (e jsonEncoder) value(v udm.Value, depth int) error {
	switch x := v.(type) {
	case nil, udm.Null:
		_, err := e.w.WriteString("null")

		return err
	case udm.Bool:
		return e.scalar(bool(x))
	case udm.Number:
		f := float64(x)
		if s := udm.FormatNumber(f); s != "NaN" && !strings.Contains(s, "Infinity") {
			_, err := e.w.WriteString(s)

			return err
		}

		_, err := e.w.WriteString("null")

		return err
	case udm.String:
		return e.scalar(string(x))
	case udm.Array:
		if len(x) == 0 {
			_, err := e.w.WriteString("[]")

			return err
		}

		e.w.WriteByte('[')

		for i, elem := range x {
			if i > 0 {
				e.w.WriteByte(',')
			}

			e.newline(depth + 1)

			if err := e.value(elem, depth+1); err != nil {
				return err
			}
		}

		e.newline(depth)
		e.w.WriteByte(']')

		return nil
	case *udm.Object:
		if x.Len() == 0 && x.AttrLen() == 0 {
			_, err := e.w.WriteString("{}")

			return err
		}

		e.w.WriteByte('{')

		first := true
		field := func() {
			if !first {
				e.w.WriteByte(',')
			}

			first = false

			e.newline(depth + 1)
		}

		for k, a := range x.Attrs() {
			field()

			if err := e.key("@" + k); err != nil {
				return err
			}

			if err := e.scalar(a); err != nil {
				return err
			}
		}

		for k, elem := range x.All() {
			field()

			if err := e.key(k); err != nil {
				return err
			}

			if err := e.value(elem, depth+1); err != nil {
				return err
			}
		}

		e.newline(depth)
		e.w.WriteByte('}')

		return nil
	}

	return errors.New("unsupported value")
}

func isScalar(v udm.Value) bool {
	switch v.Kind() {
	case udm.KindArray, udm.KindObject:
		return false
	default:
		return true
	}
}
