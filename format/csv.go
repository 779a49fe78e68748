package format

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"slices"
	"strconv"
	"unicode/utf8"

	"github.com/ardnew/udx/udm"
)

// CSV is the CSV codec.
//
// With headers (the default) each record decodes to an object keyed by the
// header row; without headers each record decodes to an array of strings.
// Numeric fields are decoded as numbers when typed is set.
//
// Options: headers (boolean, default true), delimiter (string, default
// ","), typed (boolean, default false).
type CSV struct{}

func csvDelimiter(opts *udm.Object) rune {
	d, _ := utf8.DecodeRuneInString(optString(opts, "delimiter", ","))
	if d == utf8.RuneError {
		return ','
	}

	return d
}

// Decode implements [Codec].
func (CSV) Decode(_ context.Context, r io.Reader, opts *udm.Object) (udm.Value, error) {
	cr := csv.NewReader(r)
	cr.Comma = csvDelimiter(opts)
	cr.FieldsPerRecord = -1

	headers := optBool(opts, "headers", true)
	typed := optBool(opts, "typed", false)

	field := func(s string) udm.Value {
		if typed {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return udm.Number(f)
			}
		}

		return udm.String(s)
	}

	var (
		names []string
		rows  = udm.Array{}
	)

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, wrap("csv", ErrDecode, err)
		}

		if headers && names == nil {
			names = rec

			continue
		}

		if !headers {
			row := make(udm.Array, len(rec))
			for i, s := range rec {
				row[i] = field(s)
			}

			rows = append(rows, row)

			continue
		}

		b := udm.NewBuilder()

		for i, name := range names {
			if i < len(rec) {
				b.Set(name, field(rec[i]))
			} else {
				b.Set(name, udm.Null{})
			}
		}

		rows = append(rows, b.Build())
	}

	return rows, nil
}

// Encode implements [Codec]. The value must be an array of objects or an
// array of arrays; a single object is written as one record.
func (CSV) Encode(_ context.Context, w io.Writer, v udm.Value, opts *udm.Object) error {
	cw := csv.NewWriter(w)
	cw.Comma = csvDelimiter(opts)

	rows, ok := v.(udm.Array)
	if !ok {
		rows = udm.Array{v}
	}

	var names []string

	for _, row := range rows {
		obj, ok := row.(*udm.Object)
		if !ok {
			continue
		}

		for _, k := range obj.Keys() {
			if !slices.Contains(names, k) {
				names = append(names, k)
			}
		}
	}

	if names != nil && optBool(opts, "headers", true) {
		if err := cw.Write(names); err != nil {
			return wrap("csv", ErrEncode, err)
		}
	}

	for _, row := range rows {
		var rec []string

		switch x := row.(type) {
		case *udm.Object:
			rec = make([]string, len(names))
			for i, k := range names {
				if e, ok := x.Get(k); ok {
					rec[i] = udm.Text(e)
				}
			}
		case udm.Array:
			rec = make([]string, len(x))
			for i, e := range x {
				rec[i] = udm.Text(e)
			}
		default:
			rec = []string{udm.Text(x)}
		}

		if err := cw.Write(rec); err != nil {
			return wrap("csv", ErrEncode, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return wrap("csv", ErrEncode, err)
	}

	return nil
}
