package lang

import (
	"slices"

	"github.com/ardnew/udx/udm"
)

// evalSelector evaluates one selector stage. Missing data yields null;
// only failures in the target or in a predicate propagate.
func (rt *Runtime) evalSelector(n Node, env *Environment) (udm.Value, error) {
	switch n := n.(type) {
	case *Member:
		t, err := rt.eval(n.Target, env)
		if err != nil {
			return nil, err
		}

		return member(t, n.Name), nil

	case *AttrAccess:
		t, err := rt.eval(n.Target, env)
		if err != nil {
			return nil, err
		}

		return attribute(t, n.Name), nil

	case *Wildcard:
		t, err := rt.eval(n.Target, env)
		if err != nil {
			return nil, err
		}

		return wildcard(t), nil

	case *Descent:
		t, err := rt.eval(n.Target, env)
		if err != nil {
			return nil, err
		}

		return descend(t, n.Name), nil

	case *Index:
		t, err := rt.eval(n.Target, env)
		if err != nil {
			return nil, err
		}

		i, err := rt.eval(n.Index, env)
		if err != nil {
			return nil, err
		}

		return index(t, i), nil

	case *Predicate:
		t, err := rt.eval(n.Target, env)
		if err != nil {
			return nil, err
		}

		arr, ok := t.(udm.Array)
		if !ok {
			keep, err := rt.test(n.Cond, t, env)
			if err != nil || !keep {
				return udm.Null{}, err
			}

			return t, nil
		}

		out := udm.Array{}

		for _, e := range arr {
			keep, err := rt.test(n.Cond, e, env)
			if err != nil {
				return nil, err
			}

			if keep {
				out = append(out, e)
			}
		}

		return out, nil
	}

	return udm.Null{}, nil
}

// test evaluates a predicate with v's properties in scope and $ bound to v.
func (rt *Runtime) test(cond Node, v udm.Value, env *Environment) (bool, error) {
	r, err := rt.eval(cond, bindObject(env, v))
	if err != nil {
		return false, err
	}

	return udm.Truthy(r), nil
}

func member(v udm.Value, name string) udm.Value {
	if obj, ok := v.(*udm.Object); ok {
		if p, ok := obj.Get(name); ok {
			return p
		}
	}

	return udm.Null{}
}

func attribute(v udm.Value, name string) udm.Value {
	if obj, ok := v.(*udm.Object); ok {
		if a, ok := obj.Attr(name); ok {
			return udm.String(a)
		}
	}

	return udm.Null{}
}

func wildcard(v udm.Value) udm.Value {
	switch x := v.(type) {
	case udm.Array:
		return x
	case *udm.Object:
		return x.Values()
	}

	return udm.Array{}
}

// index selects an array element by number, counting from the end when
// negative, or an object property by string.
func index(v, i udm.Value) udm.Value {
	switch x := v.(type) {
	case udm.Array:
		n, ok := udm.Int(i)
		if !ok {
			return udm.Null{}
		}

		if n < 0 {
			n += len(x)
		}

		if n < 0 || n >= len(x) {
			return udm.Null{}
		}

		return x[n]

	case *udm.Object:
		if s, ok := i.(udm.String); ok {
			return member(x, string(s))
		}
	}

	return udm.Null{}
}

// descend collects every value stored under name anywhere in v, depth-first
// and pre-order, descending into matched values as well.
func descend(v udm.Value, name string) udm.Array {
	out := udm.Array{}

	var walk func(udm.Value)

	walk = func(v udm.Value) {
		switch x := v.(type) {
		case *udm.Object:
			for k, child := range x.All() {
				if k == name {
					out = append(out, child)
				}

				walk(child)
			}
		case udm.Array:
			for _, e := range x {
				walk(e)
			}
		}
	}

	walk(v)

	return out
}

// traced is a value with the property path it was reached through. An
// array built from values found at different paths, by a wildcard or a
// descent, carries the traced elements as well.
type traced struct {
	value udm.Value
	path  []string
	elems []traced
}

// name returns the element name used by template patterns: the object's
// own name, else the last property key of its path.
func (t traced) name() string {
	if obj, ok := t.value.(*udm.Object); ok && obj.Name() != "" {
		return obj.Name()
	}

	if len(t.path) > 0 {
		return t.path[len(t.path)-1]
	}

	return ""
}

func (t traced) child(key string, v udm.Value) traced {
	return traced{value: v, path: append(slices.Clip(t.path), key)}
}

// elem returns element i of an array value. Elements of a plain array
// keep the array's path.
func (t traced) elem(i int) traced {
	if t.elems != nil {
		return t.elems[i]
	}

	return traced{value: t.value.(udm.Array)[i], path: t.path}
}

// gather builds an array value from traced elements.
func gather(elems []traced) traced {
	arr := make(udm.Array, len(elems))
	for i, e := range elems {
		arr[i] = e.value
	}

	return traced{value: arr, elems: elems}
}

// contexts flattens t into the contexts a template application visits:
// the elements of an array, one level deep, or else t itself. Null
// yields nothing.
func (t traced) contexts() []traced {
	switch x := t.value.(type) {
	case nil, udm.Null:
		return nil
	case udm.Array:
		out := make([]traced, 0, len(x))

		for i, e := range x {
			if !udm.IsNull(e) {
				out = append(out, t.elem(i))
			}
		}

		return out
	}

	return []traced{t}
}

// trace evaluates a selector like [Runtime.evalSelector] while recording
// the property path of the result. Expressions that are not selectors are
// evaluated without a path.
func (rt *Runtime) trace(n Node, env *Environment) (traced, error) {
	switch n := n.(type) {
	case *Group:
		return rt.trace(n.X, env)

	case *ContextRef:
		v, _ := env.Lookup("$")

		return traced{value: v, path: rt.current.path}, nil

	case *Ident:
		if obj, ok := rt.current.value.(*udm.Object); ok {
			if v, ok := obj.Get(n.Name); ok {
				if bound, _ := env.Lookup(n.Name); udm.Equal(bound, v) {
					return rt.current.child(n.Name, v), nil
				}
			}
		}

	case *Member:
		p, err := rt.trace(n.Target, env)
		if err != nil {
			return traced{}, err
		}

		return p.child(n.Name, member(p.value, n.Name)), nil

	case *AttrAccess:
		p, err := rt.trace(n.Target, env)
		if err != nil {
			return traced{}, err
		}

		return p.child("@"+n.Name, attribute(p.value, n.Name)), nil

	case *Wildcard:
		p, err := rt.trace(n.Target, env)
		if err != nil {
			return traced{}, err
		}

		switch x := p.value.(type) {
		case udm.Array:
			return p, nil
		case *udm.Object:
			elems := make([]traced, 0, x.Len())
			for k, v := range x.All() {
				elems = append(elems, p.child(k, v))
			}

			return gather(elems), nil
		}

		return traced{value: udm.Array{}, path: p.path}, nil

	case *Descent:
		p, err := rt.trace(n.Target, env)
		if err != nil {
			return traced{}, err
		}

		return gather(descendTraced([]traced{}, p, n.Name)), nil

	case *Index:
		p, err := rt.trace(n.Target, env)
		if err != nil {
			return traced{}, err
		}

		i, err := rt.eval(n.Index, env)
		if err != nil {
			return traced{}, err
		}

		switch x := p.value.(type) {
		case udm.Array:
			k, ok := udm.Int(i)
			if ok && k < 0 {
				k += len(x)
			}

			if ok && k >= 0 && k < len(x) {
				return p.elem(k), nil
			}
		case *udm.Object:
			if s, ok := i.(udm.String); ok {
				return p.child(string(s), member(x, string(s))), nil
			}
		}

		return traced{value: udm.Null{}, path: p.path}, nil

	case *Predicate:
		p, err := rt.trace(n.Target, env)
		if err != nil {
			return traced{}, err
		}

		x, ok := p.value.(udm.Array)
		if !ok {
			keep, err := rt.test(n.Cond, p.value, env)
			if err != nil {
				return traced{}, err
			}

			if !keep {
				return traced{value: udm.Null{}, path: p.path}, nil
			}

			return p, nil
		}

		elems := []traced{}

		for i, e := range x {
			keep, err := rt.test(n.Cond, e, env)
			if err != nil {
				return traced{}, err
			}

			if keep {
				elems = append(elems, p.elem(i))
			}
		}

		return gather(elems), nil
	}

	v, err := rt.eval(n, env)
	if err != nil {
		return traced{}, err
	}

	return traced{value: v}, nil
}

// descendTraced is [descend] with path tracking.
func descendTraced(out []traced, t traced, name string) []traced {
	switch x := t.value.(type) {
	case *udm.Object:
		for k, child := range x.All() {
			ct := t.child(k, child)
			if k == name {
				out = append(out, ct)
			}

			out = descendTraced(out, ct, name)
		}
	case udm.Array:
		for i := range x {
			out = descendTraced(out, t.elem(i), name)
		}
	}

	return out
}
