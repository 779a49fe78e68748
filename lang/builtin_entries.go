package lang

import (
	"slices"

	"github.com/ardnew/udx/udm"
)

// objectFn reads the (object, function) arguments shared by the entry
// functions.
func objectFn(name string, args []udm.Value) (*udm.Object, udm.Value, error) {
	obj, err := argObject(name, args, 0)
	if err != nil {
		return nil, nil, err
	}

	fn, err := argFunc(name, args, 1)
	if err != nil {
		return nil, nil, err
	}

	return obj, fn, nil
}

// eachEntry calls fn(key, value) for every property until visit returns
// false.
func eachEntry(
	rt *Runtime,
	name string,
	args []udm.Value,
	visit func(k string, v, result udm.Value) (bool, error),
) error {
	obj, fn, err := objectFn(name, args)
	if err != nil {
		return err
	}

	for k, v := range obj.All() {
		r, err := rt.Invoke(fn, udm.String(k), v)
		if err != nil {
			return err
		}

		more, err := visit(k, v, r)
		if err != nil || !more {
			return err
		}
	}

	return nil
}

func entryBuiltins() []*Builtin {
	return []*Builtin{
		{
			Name:   "mapEntries",
			Params: []string{"object", "fn"},
			Doc:    "rebuilds object from fn(key, value), which returns {key, value} or [key, value]",
			Fn: func(rt *Runtime, args []udm.Value) (udm.Value, error) {
				b := udm.NewBuilder()
				err := eachEntry(rt, "mapEntries", args, func(_ string, _, r udm.Value) (bool, error) {
					k, v, err := splitEntry("mapEntries", r)
					if err != nil {
						return false, err
					}

					b.Set(k, v)

					return true, nil
				})
				if err != nil {
					return nil, err
				}

				return b.Build(), nil
			},
		},
		{
			Name:   "filterEntries",
			Params: []string{"object", "fn"},
			Doc:    "keeps the properties for which fn(key, value) is truthy",
			Fn: func(rt *Runtime, args []udm.Value) (udm.Value, error) {
				b := udm.NewBuilder()
				err := eachEntry(rt, "filterEntries", args, func(k string, v, r udm.Value) (bool, error) {
					if udm.Truthy(r) {
						b.Set(k, v)
					}

					return true, nil
				})
				if err != nil {
					return nil, err
				}

				return b.Build(), nil
			},
		},
		{
			Name:   "mapKeys",
			Params: []string{"object", "fn"},
			Doc:    "renames each property to the text of fn(key, value)",
			Fn: func(rt *Runtime, args []udm.Value) (udm.Value, error) {
				b := udm.NewBuilder()
				err := eachEntry(rt, "mapKeys", args, func(_ string, v, r udm.Value) (bool, error) {
					b.Set(udm.Text(r), v)

					return true, nil
				})
				if err != nil {
					return nil, err
				}

				return b.Build(), nil
			},
		},
		{
			Name:   "mapValues",
			Params: []string{"object", "fn"},
			Doc:    "replaces each value with fn(value, key)",
			Fn: func(rt *Runtime, args []udm.Value) (udm.Value, error) {
				obj, fn, err := objectFn("mapValues", args)
				if err != nil {
					return nil, err
				}

				b := udm.NewBuilder().Named(obj.Name())

				for k, v := range obj.All() {
					r, err := rt.Invoke(fn, v, udm.String(k))
					if err != nil {
						return nil, err
					}

					b.Set(k, r)
				}

				for k, v := range obj.Attrs() {
					b.SetAttr(k, v)
				}

				return b.Build(), nil
			},
		},
		{
			Name:   "reduceEntries",
			Params: []string{"object", "fn", "initial"},
			Doc:    "folds the properties with fn(accumulator, key, value)",
			Fn: func(rt *Runtime, args []udm.Value) (udm.Value, error) {
				obj, fn, err := objectFn("reduceEntries", args)
				if err != nil {
					return nil, err
				}

				acc := args[2]

				for k, v := range obj.All() {
					if acc, err = rt.Invoke(fn, acc, udm.String(k), v); err != nil {
						return nil, err
					}
				}

				return acc, nil
			},
		},
		{
			Name:   "someEntry",
			Params: []string{"object", "fn"},
			Doc:    "reports whether fn(key, value) is truthy for any property",
			Fn: func(rt *Runtime, args []udm.Value) (udm.Value, error) {
				hit := false
				err := eachEntry(rt, "someEntry", args, func(_ string, _, r udm.Value) (bool, error) {
					hit = udm.Truthy(r)

					return !hit, nil
				})

				return udm.Bool(hit), err
			},
		},
		{
			Name:   "everyEntry",
			Params: []string{"object", "fn"},
			Doc:    "reports whether fn(key, value) is truthy for every property",
			Fn: func(rt *Runtime, args []udm.Value) (udm.Value, error) {
				all := true
				err := eachEntry(rt, "everyEntry", args, func(_ string, _, r udm.Value) (bool, error) {
					all = udm.Truthy(r)

					return all, nil
				})

				return udm.Bool(all), err
			},
		},
		{
			Name:   "pick",
			Params: []string{"object", "...keys"},
			Doc:    "keeps only the named properties, in the object's order",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				obj, err := argObject("pick", args, 0)
				if err != nil {
					return nil, err
				}

				keys, err := argStrings("pick", args, 1)
				if err != nil {
					return nil, err
				}

				drop := make([]string, 0, obj.Len())

				for _, k := range obj.Keys() {
					if !slices.Contains(keys, k) {
						drop = append(drop, k)
					}
				}

				return obj.Without(drop...), nil
			}),
		},
		{
			Name:   "omit",
			Params: []string{"object", "...keys"},
			Doc:    "removes the named properties",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				obj, err := argObject("omit", args, 0)
				if err != nil {
					return nil, err
				}

				keys, err := argStrings("omit", args, 1)
				if err != nil {
					return nil, err
				}

				return obj.Without(keys...), nil
			}),
		},
		{
			Name:   "merge",
			Params: []string{"...objects"},
			Doc:    "merges objects left to right; later keys replace earlier ones in place",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				b := udm.NewBuilder()

				for i := range args {
					obj, err := argObject("merge", args, i)
					if err != nil {
						return nil, err
					}

					b.Merge(obj)
				}

				return b.Build(), nil
			}),
		},
	}
}
