package lang

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ardnew/udx/udm"
)

func kindTest(name string, kind udm.Kind) *Builtin {
	return &Builtin{
		Name:   name,
		Params: []string{"value"},
		Doc:    "reports whether value is " + kind.String(),
		Fn: pure(func(args []udm.Value) (udm.Value, error) {
			return udm.Bool(TypeOf(args[0]) == kind.String()), nil
		}),
	}
}

func coreBuiltins() []*Builtin {
	return []*Builtin{
		{
			Name:   "typeOf",
			Params: []string{"value"},
			Doc:    "returns the type name of value",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				return udm.String(TypeOf(args[0])), nil
			}),
		},
		kindTest("isNull", udm.KindNull),
		kindTest("isBoolean", udm.KindBool),
		kindTest("isNumber", udm.KindNumber),
		kindTest("isString", udm.KindString),
		kindTest("isArray", udm.KindArray),
		kindTest("isObject", udm.KindObject),
		kindTest("isFunction", udm.KindFunction),
		{
			Name:   "string",
			Params: []string{"value"},
			Doc:    "converts value to text; strings are returned as is",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				return udm.String(udm.Text(args[0])), nil
			}),
		},
		{
			Name:   "number",
			Params: []string{"value"},
			Doc:    "converts a string or boolean to a number",
			Fn:     pure(toNumber),
		},
		{
			Name:   "boolean",
			Params: []string{"value"},
			Doc:    "returns the truthiness of value",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				return udm.Bool(udm.Truthy(args[0])), nil
			}),
		},
		{
			Name:   "size",
			Params: []string{"value"},
			Doc:    "returns the length of a string, array or object",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				n, err := size("size", args[0])

				return udm.Number(n), err
			}),
		},
		{
			Name:   "isEmpty",
			Params: []string{"value"},
			Doc:    "reports whether value is null or has size 0",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				if udm.IsNull(args[0]) {
					return udm.Bool(true), nil
				}

				n, err := size("isEmpty", args[0])

				return udm.Bool(n == 0), err
			}),
		},
		{
			Name:   "contains",
			Params: []string{"container", "item"},
			Doc:    "substring, array element or object key test",
			Fn:     pure(contains),
		},
		{
			Name:   "keys",
			Params: []string{"object"},
			Doc:    "returns the property names of object",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				obj, err := argObject("keys", args, 0)
				if err != nil {
					return nil, err
				}

				return strs(obj.Keys()), nil
			}),
		},
		{
			Name:   "values",
			Params: []string{"object"},
			Doc:    "returns the property values of object",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				obj, err := argObject("values", args, 0)
				if err != nil {
					return nil, err
				}

				return obj.Values(), nil
			}),
		},
		{
			Name:   "entries",
			Params: []string{"object"},
			Doc:    "returns [{key, value}, ...] for the properties of object",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				obj, err := argObject("entries", args, 0)
				if err != nil {
					return nil, err
				}

				out := make(udm.Array, 0, obj.Len())
				for k, v := range obj.All() {
					out = append(out, entry(k, v))
				}

				return out, nil
			}),
		},
		{
			Name:   "fromEntries",
			Params: []string{"entries"},
			Doc:    "builds an object from {key, value} objects or [key, value] pairs",
			Fn:     pure(fromEntries),
		},
		{
			Name:   "get",
			Params: []string{"value", "path", "default?"},
			Doc:    "follows a dotted path or an array of keys, returning default when missing",
			Fn:     pure(get),
		},
		{
			Name:   "at",
			Params: []string{"array", "index"},
			Doc:    "returns an element, failing when the index is out of range",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				arr, err := argArray("at", args, 0)
				if err != nil {
					return nil, err
				}

				i, err := argInt("at", args, 1)
				if err != nil {
					return nil, err
				}

				j := i
				if j < 0 {
					j += len(arr)
				}

				if j < 0 || j >= len(arr) {
					return nil, raise(ErrIndexOutOfRange, "index %d, length %d", i, len(arr))
				}

				return arr[j], nil
			}),
		},
		{
			Name:   "error",
			Params: []string{"message"},
			Doc:    "raises a catchable error with message",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				return nil, raise(ErrUserRaised, "%s", udm.Text(args[0]))
			}),
		},
		{
			Name:   "default",
			Params: []string{"value", "fallback"},
			Doc:    "returns fallback when value is null",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				if udm.IsNull(args[0]) {
					return args[1], nil
				}

				return args[0], nil
			}),
		},
	}
}

func toNumber(args []udm.Value) (udm.Value, error) {
	switch v := args[0].(type) {
	case udm.Number, udm.Null:
		return v, nil
	case udm.Bool:
		if v {
			return udm.Number(1), nil
		}

		return udm.Number(0), nil
	case udm.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		if err != nil {
			return nil, raise(ErrTypeMismatch, "number: cannot convert %s", v)
		}

		return udm.Number(f), nil
	}

	return nil, argError("number", 0, "a scalar", args[0])
}

func size(fn string, v udm.Value) (int, error) {
	switch x := v.(type) {
	case udm.Null:
		return 0, nil
	case udm.String:
		return utf8.RuneCountInString(string(x)), nil
	case udm.Array:
		return len(x), nil
	case *udm.Object:
		return x.Len(), nil
	}

	return 0, argError(fn, 0, "a string, array or object", v)
}

func contains(args []udm.Value) (udm.Value, error) {
	switch c := args[0].(type) {
	case udm.Null:
		return udm.Bool(false), nil
	case udm.String:
		return udm.Bool(strings.Contains(string(c), udm.Text(args[1]))), nil
	case udm.Array:
		for _, e := range c {
			if udm.Equal(e, args[1]) {
				return udm.Bool(true), nil
			}
		}

		return udm.Bool(false), nil
	case *udm.Object:
		return udm.Bool(c.Has(udm.Text(args[1]))), nil
	}

	return nil, argError("contains", 0, "a string, array or object", args[0])
}

func entry(k string, v udm.Value) *udm.Object {
	return udm.NewBuilder().Set("key", udm.String(k)).Set("value", v).Build()
}

// splitEntry reads a {key, value} object or a [key, value] pair.
func splitEntry(fn string, v udm.Value) (string, udm.Value, error) {
	switch x := v.(type) {
	case *udm.Object:
		k, ok := x.Get("key")
		if !ok {
			return "", nil, raise(ErrTypeMismatch, "%s: entry object has no key", fn)
		}

		val, _ := x.Get("value")
		if val == nil {
			val = udm.Null{}
		}

		return udm.Text(k), val, nil
	case udm.Array:
		if len(x) == 2 {
			return udm.Text(x[0]), x[1], nil
		}
	}

	return "", nil, raise(ErrTypeMismatch,
		"%s: entry must be {key, value} or [key, value], got %s", fn, TypeOf(v))
}

func fromEntries(args []udm.Value) (udm.Value, error) {
	arr, err := argArray("fromEntries", args, 0)
	if err != nil {
		return nil, err
	}

	b := udm.NewBuilder()

	for _, e := range arr {
		k, v, err := splitEntry("fromEntries", e)
		if err != nil {
			return nil, err
		}

		b.Set(k, v)
	}

	return b.Build(), nil
}

func get(args []udm.Value) (udm.Value, error) {
	var steps udm.Array

	switch p := args[1].(type) {
	case udm.String:
		for s := range strings.SplitSeq(string(p), ".") {
			if n, err := strconv.Atoi(s); err == nil {
				steps = append(steps, udm.Number(n))
			} else {
				steps = append(steps, udm.String(s))
			}
		}
	case udm.Array:
		steps = p
	case udm.Number:
		steps = udm.Array{p}
	default:
		return nil, argError("get", 1, "a string or array path", args[1])
	}

	v := args[0]

	for _, step := range steps {
		v = index(v, step)
		if udm.IsNull(v) {
			return opt(args, 2), nil
		}
	}

	return v, nil
}
