package lang

import (
	"math"
	"slices"

	"github.com/ardnew/udx/udm"
)

// arrayFn reads the (array, function) arguments shared by the
// higher-order array functions.
func arrayFn(name string, args []udm.Value) (udm.Array, udm.Value, error) {
	arr, err := argArray(name, args, 0)
	if err != nil {
		return nil, nil, err
	}

	fn, err := argFunc(name, args, 1)
	if err != nil {
		return nil, nil, err
	}

	return arr, fn, nil
}

// each calls fn(elem, index, array) for every element until visit returns
// false.
func each(
	rt *Runtime,
	name string,
	args []udm.Value,
	visit func(i int, elem, result udm.Value) bool,
) error {
	arr, fn, err := arrayFn(name, args)
	if err != nil {
		return err
	}

	for i, e := range arr {
		r, err := rt.Invoke(fn, e, udm.Number(i), arr)
		if err != nil {
			return err
		}

		if !visit(i, e, r) {
			break
		}
	}

	return nil
}

func arrayBuiltins() []*Builtin {
	return []*Builtin{
		{
			Name:   "map",
			Params: []string{"array", "fn"},
			Doc:    "calls fn(elem, index, array) on each element and collects the results",
			Fn: func(rt *Runtime, args []udm.Value) (udm.Value, error) {
				out := udm.Array{}
				err := each(rt, "map", args, func(_ int, _, r udm.Value) bool {
					out = append(out, r)

					return true
				})

				return out, err
			},
		},
		{
			Name:   "filter",
			Params: []string{"array", "fn"},
			Doc:    "keeps the elements for which fn(elem, index, array) is truthy",
			Fn: func(rt *Runtime, args []udm.Value) (udm.Value, error) {
				out := udm.Array{}
				err := each(rt, "filter", args, func(_ int, e, r udm.Value) bool {
					if udm.Truthy(r) {
						out = append(out, e)
					}

					return true
				})

				return out, err
			},
		},
		{
			Name:   "flatMap",
			Params: []string{"array", "fn"},
			Doc:    "maps each element and concatenates array results",
			Fn: func(rt *Runtime, args []udm.Value) (udm.Value, error) {
				out := udm.Array{}
				err := each(rt, "flatMap", args, func(_ int, _, r udm.Value) bool {
					if a, ok := r.(udm.Array); ok {
						out = append(out, a...)
					} else {
						out = append(out, r)
					}

					return true
				})

				return out, err
			},
		},
		{
			Name:   "find",
			Params: []string{"array", "fn"},
			Doc:    "returns the first element for which fn is truthy, or null",
			Fn: func(rt *Runtime, args []udm.Value) (udm.Value, error) {
				var found udm.Value = udm.Null{}
				err := each(rt, "find", args, func(_ int, e, r udm.Value) bool {
					if udm.Truthy(r) {
						found = e

						return false
					}

					return true
				})

				return found, err
			},
		},
		{
			Name:   "findIndex",
			Params: []string{"array", "fn"},
			Doc:    "returns the index of the first element for which fn is truthy, or -1",
			Fn: func(rt *Runtime, args []udm.Value) (udm.Value, error) {
				found := -1
				err := each(rt, "findIndex", args, func(i int, _, r udm.Value) bool {
					if udm.Truthy(r) {
						found = i

						return false
					}

					return true
				})

				return udm.Number(found), err
			},
		},
		{
			Name:   "some",
			Params: []string{"array", "fn"},
			Doc:    "reports whether fn is truthy for any element",
			Fn: func(rt *Runtime, args []udm.Value) (udm.Value, error) {
				hit := false
				err := each(rt, "some", args, func(_ int, _, r udm.Value) bool {
					hit = udm.Truthy(r)

					return !hit
				})

				return udm.Bool(hit), err
			},
		},
		{
			Name:   "every",
			Params: []string{"array", "fn"},
			Doc:    "reports whether fn is truthy for every element",
			Fn: func(rt *Runtime, args []udm.Value) (udm.Value, error) {
				all := true
				err := each(rt, "every", args, func(_ int, _, r udm.Value) bool {
					all = udm.Truthy(r)

					return all
				})

				return udm.Bool(all), err
			},
		},
		{
			Name:   "count",
			Params: []string{"array", "fn?"},
			Doc:    "returns the number of elements, or of those for which fn is truthy",
			Fn: func(rt *Runtime, args []udm.Value) (udm.Value, error) {
				if udm.IsNull(opt(args, 1)) {
					arr, err := argArray("count", args, 0)

					return udm.Number(len(arr)), err
				}

				n := 0
				err := each(rt, "count", args, func(_ int, _, r udm.Value) bool {
					if udm.Truthy(r) {
						n++
					}

					return true
				})

				return udm.Number(n), err
			},
		},
		{
			Name:   "reduce",
			Params: []string{"array", "fn", "initial"},
			Doc:    "folds the array with fn(accumulator, elem, index)",
			Fn: func(rt *Runtime, args []udm.Value) (udm.Value, error) {
				arr, fn, err := arrayFn("reduce", args)
				if err != nil {
					return nil, err
				}

				acc := args[2]

				for i, e := range arr {
					if acc, err = rt.Invoke(fn, acc, e, udm.Number(i)); err != nil {
						return nil, err
					}
				}

				return acc, nil
			},
		},
		{
			Name:   "sortBy",
			Params: []string{"array", "fn"},
			Doc:    "sorts stably by the key fn(elem)",
			Fn:     sortBy,
		},
		{
			Name:   "sort",
			Params: []string{"array"},
			Doc:    "sorts values stably in natural order",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				arr, err := argArray("sort", args, 0)
				if err != nil {
					return nil, err
				}

				out := slices.Clone(arr)
				slices.SortStableFunc(out, udm.Compare)

				return out, nil
			}),
		},
		{
			Name:   "reverse",
			Params: []string{"value"},
			Doc:    "reverses an array or the characters of a string",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				if s, ok := args[0].(udm.String); ok {
					r := []rune(string(s))
					slices.Reverse(r)

					return udm.String(string(r)), nil
				}

				arr, err := argArray("reverse", args, 0)
				if err != nil {
					return nil, err
				}

				out := slices.Clone(arr)
				slices.Reverse(out)

				return out, nil
			}),
		},
		{
			Name:   "first",
			Params: []string{"array"},
			Doc:    "returns the first element, or null",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				arr, err := argArray("first", args, 0)
				if err != nil || len(arr) == 0 {
					return udm.Null{}, err
				}

				return arr[0], nil
			}),
		},
		{
			Name:   "last",
			Params: []string{"array"},
			Doc:    "returns the last element, or null",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				arr, err := argArray("last", args, 0)
				if err != nil || len(arr) == 0 {
					return udm.Null{}, err
				}

				return arr[len(arr)-1], nil
			}),
		},
		{
			Name:   "take",
			Params: []string{"array", "n"},
			Doc:    "returns the first n elements",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				arr, n, err := arrayCount("take", args)
				if err != nil {
					return nil, err
				}

				return slices.Clone(arr[:n]), nil
			}),
		},
		{
			Name:   "drop",
			Params: []string{"array", "n"},
			Doc:    "returns all but the first n elements",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				arr, n, err := arrayCount("drop", args)
				if err != nil {
					return nil, err
				}

				return slices.Clone(arr[n:]), nil
			}),
		},
		{
			Name:   "distinct",
			Params: []string{"array"},
			Doc:    "removes later duplicates",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				arr, err := argArray("distinct", args, 0)
				if err != nil {
					return nil, err
				}

				return distinct(arr, arr), nil
			}),
		},
		{
			Name:   "distinctBy",
			Params: []string{"array", "fn"},
			Doc:    "removes later elements whose key fn(elem) was already seen",
			Fn: func(rt *Runtime, args []udm.Value) (udm.Value, error) {
				arr, keys, err := keyed(rt, "distinctBy", args)
				if err != nil {
					return nil, err
				}

				return distinct(arr, keys), nil
			},
		},
		{
			Name:   "groupBy",
			Params: []string{"array", "fn"},
			Doc:    "groups elements into an object keyed by the text of fn(elem)",
			Fn: func(rt *Runtime, args []udm.Value) (udm.Value, error) {
				arr, keys, err := keyed(rt, "groupBy", args)
				if err != nil {
					return nil, err
				}

				var (
					order  []string
					groups = map[string]udm.Array{}
				)

				for i, e := range arr {
					k := udm.Text(keys[i])
					if _, ok := groups[k]; !ok {
						order = append(order, k)
					}

					groups[k] = append(groups[k], e)
				}

				b := udm.NewBuilder()
				for _, k := range order {
					b.Set(k, groups[k])
				}

				return b.Build(), nil
			},
		},
		{
			Name:   "flatten",
			Params: []string{"array", "depth?"},
			Doc:    "flattens nested arrays up to depth levels (default 1)",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				arr, err := argArray("flatten", args, 0)
				if err != nil {
					return nil, err
				}

				depth := 1
				if !udm.IsNull(opt(args, 1)) {
					if depth, err = argInt("flatten", args, 1); err != nil {
						return nil, err
					}
				}

				return flatten(udm.Array{}, arr, depth), nil
			}),
		},
		{
			Name:   "zip",
			Params: []string{"...arrays"},
			Doc:    "pairs up elements by index, stopping at the shortest array",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				if len(args) == 0 {
					return udm.Array{}, nil
				}

				arrs := make([]udm.Array, len(args))
				n := math.MaxInt

				for i := range args {
					var err error
					if arrs[i], err = argArray("zip", args, i); err != nil {
						return nil, err
					}

					n = min(n, len(arrs[i]))
				}

				out := make(udm.Array, n)
				for j := range n {
					row := make(udm.Array, len(arrs))
					for i, a := range arrs {
						row[i] = a[j]
					}

					out[j] = row
				}

				return out, nil
			}),
		},
		{
			Name:   "range",
			Params: []string{"start", "end?", "step?"},
			Doc:    "returns numbers from start up to but excluding end; range(n) counts from 0",
			Fn:     pure(numberRange),
		},
		{
			Name:   "sum",
			Params: []string{"array"},
			Doc:    "adds the numbers in array",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				nums, err := numbers("sum", args)
				if err != nil {
					return nil, err
				}

				total := 0.0
				for _, n := range nums {
					total += n
				}

				return udm.Number(total), nil
			}),
		},
		{
			Name:   "avg",
			Params: []string{"array"},
			Doc:    "returns the mean of the numbers in array, or null when empty",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				nums, err := numbers("avg", args)
				if err != nil || len(nums) == 0 {
					return udm.Null{}, err
				}

				total := 0.0
				for _, n := range nums {
					total += n
				}

				return udm.Number(total / float64(len(nums))), nil
			}),
		},
		{
			Name:   "min",
			Params: []string{"...values"},
			Doc:    "returns the least of the arguments, or of a single array argument",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				return extreme(args, -1), nil
			}),
		},
		{
			Name:   "max",
			Params: []string{"...values"},
			Doc:    "returns the greatest of the arguments, or of a single array argument",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				return extreme(args, 1), nil
			}),
		},
	}
}

func sortBy(rt *Runtime, args []udm.Value) (udm.Value, error) {
	arr, keys, err := keyed(rt, "sortBy", args)
	if err != nil {
		return nil, err
	}

	idx := make([]int, len(arr))
	for i := range idx {
		idx[i] = i
	}

	slices.SortStableFunc(idx, func(a, b int) int { return udm.Compare(keys[a], keys[b]) })

	out := make(udm.Array, len(arr))
	for i, j := range idx {
		out[i] = arr[j]
	}

	return out, nil
}

// keyed returns the array argument with fn(elem) for each element.
func keyed(rt *Runtime, name string, args []udm.Value) (udm.Array, udm.Array, error) {
	arr, fn, err := arrayFn(name, args)
	if err != nil {
		return nil, nil, err
	}

	keys := make(udm.Array, len(arr))
	for i, e := range arr {
		if keys[i], err = rt.Invoke(fn, e, udm.Number(i)); err != nil {
			return nil, nil, err
		}
	}

	return arr, keys, nil
}

func distinct(arr, keys udm.Array) udm.Array {
	out := udm.Array{}
	seen := udm.Array{}

	for i, e := range arr {
		if slices.ContainsFunc(seen, func(s udm.Value) bool { return udm.Equal(s, keys[i]) }) {
			continue
		}

		seen = append(seen, keys[i])
		out = append(out, e)
	}

	return out
}

func flatten(out, arr udm.Array, depth int) udm.Array {
	for _, e := range arr {
		if a, ok := e.(udm.Array); ok && depth > 0 {
			out = flatten(out, a, depth-1)
		} else {
			out = append(out, e)
		}
	}

	return out
}

// arrayCount reads (array, n) with n clamped to the array length.
func arrayCount(name string, args []udm.Value) (udm.Array, int, error) {
	arr, err := argArray(name, args, 0)
	if err != nil {
		return nil, 0, err
	}

	n, err := argInt(name, args, 1)
	if err != nil {
		return nil, 0, err
	}

	return arr, max(0, min(n, len(arr))), nil
}

func numbers(name string, args []udm.Value) ([]float64, error) {
	arr, err := argArray(name, args, 0)
	if err != nil {
		return nil, err
	}

	out := make([]float64, 0, len(arr))

	for i, e := range arr {
		n, ok := e.(udm.Number)
		if !ok {
			return nil, raise(ErrTypeMismatch, "%s: element %d must be a number, got %s", name, i, TypeOf(e))
		}

		out = append(out, float64(n))
	}

	return out, nil
}

// extreme returns the least (sign -1) or greatest (sign 1) value, ignoring
// nulls.
func extreme(args []udm.Value, sign int) udm.Value {
	vals := args
	if len(args) == 1 {
		if arr, ok := args[0].(udm.Array); ok {
			vals = arr
		}
	}

	var best udm.Value = udm.Null{}

	for _, v := range vals {
		if udm.IsNull(v) {
			continue
		}

		if udm.IsNull(best) || udm.Compare(v, best)*sign > 0 {
			best = v
		}
	}

	return best
}

// maxRange bounds the length of a range result.
const maxRange = 1 << 24

func numberRange(args []udm.Value) (udm.Value, error) {
	start, err := argNumber("range", args, 0)
	if err != nil {
		return nil, err
	}

	end, step := start, 1.0

	switch len(args) {
	case 1:
		start = 0
	default:
		if end, err = argNumber("range", args, 1); err != nil {
			return nil, err
		}

		if !udm.IsNull(opt(args, 2)) {
			if step, err = argNumber("range", args, 2); err != nil {
				return nil, err
			}
		}
	}

	if step == 0 {
		return nil, raise(ErrTypeMismatch, "range: step must not be zero")
	}

	// Elements are counted: x += step stalls where step is below the
	// float spacing near x.
	n := math.Ceil((end - start) / step)
	if n > maxRange {
		return nil, raise(ErrIndexOutOfRange, "range: %g elements exceeds limit %d", n, maxRange)
	}

	if !(n > 0) {
		return udm.Array{}, nil
	}

	out := make(udm.Array, int(n))
	for i := range out {
		out[i] = udm.Number(start + float64(i)*step)
	}

	return out, nil
}
