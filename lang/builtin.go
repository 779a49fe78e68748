package lang

// This file defines the host library registry. The table is built once per
// process from the groups in the builtin_*.go files. Host names are
// lowercase; a binding of the same name in scope shadows the host function.

import (
	"maps"
	"slices"
	"sync"

	"github.com/ardnew/udx/udm"
)

// ErrHost reports a failure inside a host function that is not one of the
// language's own error kinds, such as malformed JSON passed to parseJson.
var ErrHost = NewError("host function failed")

//nolint:gochecknoglobals
var (
	builtinsOnce sync.Once
	builtins     map[string]*Builtin
)

func builtinTable() map[string]*Builtin {
	builtinsOnce.Do(func() {
		builtins = make(map[string]*Builtin)

		for _, group := range [][]*Builtin{
			coreBuiltins(),
			stringBuiltins(),
			arrayBuiltins(),
			entryBuiltins(),
			mathBuiltins(),
			udmBuiltins(),
			codecBuiltins(),
			miscBuiltins(),
		} {
			for _, b := range group {
				builtins[b.Name] = b
			}
		}
	})

	return builtins
}

// LookupBuiltin returns the host function named name.
func LookupBuiltin(name string) (*Builtin, bool) {
	b, ok := builtinTable()[name]

	return b, ok
}

// BuiltinNames returns the names of all host functions, sorted.
func BuiltinNames() []string {
	return slices.Sorted(maps.Keys(builtinTable()))
}

// Argument helpers. Each fails with ErrTypeMismatch naming the function and
// the 1-based argument position.

func argError(fn string, i int, want string, got udm.Value) error {
	return raise(ErrTypeMismatch, "%s: argument %d must be %s, got %s", fn, i+1, want, TypeOf(got))
}

// opt returns args[i] or null.
func opt(args []udm.Value, i int) udm.Value {
	if i < len(args) {
		return args[i]
	}

	return udm.Null{}
}

func argString(fn string, args []udm.Value, i int) (string, error) {
	s, ok := opt(args, i).(udm.String)
	if !ok {
		return "", argError(fn, i, "a string", opt(args, i))
	}

	return string(s), nil
}

// argText accepts any scalar and returns its text.
func argText(fn string, args []udm.Value, i int) (string, error) {
	switch v := opt(args, i); v.Kind() {
	case udm.KindArray, udm.KindObject, udm.KindFunction:
		return "", argError(fn, i, "a scalar", v)
	default:
		return udm.Text(v), nil
	}
}

func argNumber(fn string, args []udm.Value, i int) (float64, error) {
	n, ok := opt(args, i).(udm.Number)
	if !ok {
		return 0, argError(fn, i, "a number", opt(args, i))
	}

	return float64(n), nil
}

func argInt(fn string, args []udm.Value, i int) (int, error) {
	n, ok := udm.Int(opt(args, i))
	if !ok {
		return 0, argError(fn, i, "an integer", opt(args, i))
	}

	return n, nil
}

// argArray accepts an array; null is treated as the empty array.
func argArray(fn string, args []udm.Value, i int) (udm.Array, error) {
	switch v := opt(args, i).(type) {
	case udm.Array:
		return v, nil
	case udm.Null:
		return udm.Array{}, nil
	default:
		return nil, argError(fn, i, "an array", v)
	}
}

// argObject accepts an object; null is treated as the empty object.
func argObject(fn string, args []udm.Value, i int) (*udm.Object, error) {
	switch v := opt(args, i).(type) {
	case *udm.Object:
		return v, nil
	case udm.Null:
		return udm.EmptyObject(), nil
	default:
		return nil, argError(fn, i, "an object", v)
	}
}

func argFunc(fn string, args []udm.Value, i int) (udm.Value, error) {
	v := opt(args, i)
	if v.Kind() != udm.KindFunction {
		return nil, argError(fn, i, "a function", v)
	}

	return v, nil
}

// argStrings accepts string arguments from i on, or a single array of
// strings at i.
func argStrings(fn string, args []udm.Value, i int) ([]string, error) {
	rest := args[min(i, len(args)):]
	if len(rest) == 1 {
		if arr, ok := rest[0].(udm.Array); ok {
			rest = arr
		}
	}

	out := make([]string, len(rest))

	for j, v := range rest {
		s, ok := v.(udm.String)
		if !ok {
			return nil, argError(fn, i+j, "a string", v)
		}

		out[j] = string(s)
	}

	return out, nil
}

// pure adapts a function that needs no runtime.
func pure(f func(args []udm.Value) (udm.Value, error)) func(*Runtime, []udm.Value) (udm.Value, error) {
	return func(_ *Runtime, args []udm.Value) (udm.Value, error) { return f(args) }
}

func strs(ss []string) udm.Array {
	out := make(udm.Array, len(ss))
	for i, s := range ss {
		out[i] = udm.String(s)
	}

	return out
}
