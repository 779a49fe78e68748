package udm

import (
	"cmp"
	"fmt"
	"math"
	"reflect"
	"slices"
	"sort"
	"time"
)

// Equal reports whether a and b are structurally equal. Objects are equal
// when they have the same element name, the same properties in the same
// order, and the same attributes regardless of order.
func Equal(a, b Value) bool {
	if a == nil {
		a = Null{}
	}

	if b == nil {
		b = Null{}
	}

	if a.Kind() != b.Kind() {
		return false
	}

	switch x := a.(type) {
	case Null:
		return true
	case Bool:
		return x == b.(Bool)
	case Number:
		return x == b.(Number)
	case String:
		return x == b.(String)
	case Array:
		y := b.(Array)

		return slices.EqualFunc(x, y, Equal)
	case *Object:
		y := b.(*Object)
		if x.name != y.name || x.AttrLen() != y.AttrLen() ||
			!slices.Equal(x.keys, y.keys) {
			return false
		}

		for k, v := range x.Attrs() {
			if w, ok := y.Attr(k); !ok || v != w {
				return false
			}
		}

		for k, v := range x.All() {
			if !Equal(v, y.props[k]) {
				return false
			}
		}

		return true
	}

	return a == b
}

// Compare orders two values for sorting. Values of different kinds order
// by kind (null < boolean < number < string < array < object); numbers and
// strings compare naturally, arrays lexicographically, objects by size.
func Compare(a, b Value) int {
	if a == nil {
		a = Null{}
	}

	if b == nil {
		b = Null{}
	}

	if c := cmp.Compare(a.Kind(), b.Kind()); c != 0 {
		return c
	}

	switch x := a.(type) {
	case Bool:
		y := b.(Bool)

		switch {
		case x == y:
			return 0
		case !bool(x):
			return -1
		default:
			return 1
		}
	case Number:
		return cmp.Compare(float64(x), float64(b.(Number)))
	case String:
		return cmp.Compare(string(x), string(b.(String)))
	case Array:
		return slices.CompareFunc(x, b.(Array), Compare)
	case *Object:
		return cmp.Compare(x.Len(), b.(*Object).Len())
	}

	return 0
}

// FromNative converts a Go value produced by a decoder or a host library
// into a [Value]. Maps with string keys become objects with sorted keys
// unless the map is already ordered (a [*Object]).
func FromNative(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null{}
	case Value:
		return x
	case bool:
		return Bool(x)
	case string:
		return String(x)
	case []byte:
		return String(x)
	case float64:
		return Number(x)
	case float32:
		return Number(x)
	case int:
		return Number(x)
	case int8:
		return Number(x)
	case int16:
		return Number(x)
	case int32:
		return Number(x)
	case int64:
		return Number(x)
	case uint:
		return Number(x)
	case uint8:
		return Number(x)
	case uint16:
		return Number(x)
	case uint32:
		return Number(x)
	case uint64:
		return Number(x)
	case time.Time:
		return String(x.Format(time.RFC3339Nano))
	case fmt.Stringer:
		return String(x.String())
	case []any:
		out := make(Array, len(x))
		for i, e := range x {
			out[i] = FromNative(e)
		}

		return out
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		b := NewBuilder()
		for _, k := range keys {
			b.Set(k, FromNative(x[k]))
		}

		return b.Build()
	}

	return fromReflect(reflect.ValueOf(v))
}

func fromReflect(rv reflect.Value) Value {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make(Array, rv.Len())
		for i := range out {
			out[i] = FromNative(rv.Index(i).Interface())
		}

		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}

		keys := rv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return cmp.Compare(a.String(), b.String())
		})

		bld := NewBuilder()
		for _, k := range keys {
			bld.Set(k.String(), FromNative(rv.MapIndex(k).Interface()))
		}

		return bld.Build()
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null{}
		}

		return FromNative(rv.Elem().Interface())
	}

	return String(fmt.Sprint(rv.Interface()))
}

// ToNative converts v to plain Go values: nil, bool, float64, string,
// []any and map[string]any. Attributes are kept as "@name" keys.
// Integral numbers are returned as int when they fit.
func ToNative(v Value) any {
	switch x := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(x)
	case Number:
		f := float64(x)
		if f == math.Trunc(f) && math.Abs(f) <= 1<<53 {
			return int(f)
		}

		return f
	case String:
		return string(x)
	case Array:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = ToNative(e)
		}

		return out
	case *Object:
		out := make(map[string]any, x.Len()+x.AttrLen())
		for k, a := range x.Attrs() {
			out["@"+k] = a
		}

		for k, e := range x.All() {
			out[k] = ToNative(e)
		}

		return out
	}

	return nil
}
