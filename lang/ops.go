package lang

import (
	"math"

	"github.com/ardnew/udx/udm"
)

func (rt *Runtime) evalBinary(n *Binary, env *Environment) (udm.Value, error) {
	l, err := rt.eval(n.L, env)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case "&&":
		if !udm.Truthy(l) {
			return udm.Bool(false), nil
		}

		r, err := rt.eval(n.R, env)
		if err != nil {
			return nil, err
		}

		return udm.Bool(udm.Truthy(r)), nil

	case "||":
		if udm.Truthy(l) {
			return udm.Bool(true), nil
		}

		r, err := rt.eval(n.R, env)
		if err != nil {
			return nil, err
		}

		return udm.Bool(udm.Truthy(r)), nil

	case "??":
		if !udm.IsNull(l) {
			return l, nil
		}

		return rt.eval(n.R, env)
	}

	r, err := rt.eval(n.R, env)
	if err != nil {
		return nil, err
	}

	v, err := binaryOp(n.Op, l, r)
	if err != nil {
		return nil, locate(err, n.At)
	}

	return v, nil
}

// binaryOp applies a strict (non short-circuit) binary operator.
func binaryOp(op string, l, r udm.Value) (udm.Value, error) {
	switch op {
	case "==":
		return udm.Bool(udm.Equal(l, r)), nil
	case "!=":
		return udm.Bool(!udm.Equal(l, r)), nil
	case "<", "<=", ">", ">=":
		c, err := compareOrdered(op, l, r)
		if err != nil {
			return nil, err
		}

		switch op {
		case "<":
			return udm.Bool(c < 0), nil
		case "<=":
			return udm.Bool(c <= 0), nil
		case ">":
			return udm.Bool(c > 0), nil
		default:
			return udm.Bool(c >= 0), nil
		}
	case "+":
		return add(l, r)
	}

	a, aok := l.(udm.Number)
	b, bok := r.(udm.Number)

	if !aok || !bok {
		return nil, raise(ErrTypeMismatch, "cannot apply %s to %s and %s", op, TypeOf(l), TypeOf(r))
	}

	switch op {
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return nil, raise(ErrDivisionByZero, "%s / 0", a)
		}

		return a / b, nil
	case "%":
		if b == 0 {
			return nil, raise(ErrDivisionByZero, "%s %% 0", a)
		}

		return udm.Number(math.Mod(float64(a), float64(b))), nil
	}

	return nil, raise(ErrTypeMismatch, "unknown operator %s", op)
}

// add sums numbers, concatenates when either side is a string, and joins
// two arrays.
func add(l, r udm.Value) (udm.Value, error) {
	switch a := l.(type) {
	case udm.Number:
		if b, ok := r.(udm.Number); ok {
			return a + b, nil
		}
	case udm.Array:
		if b, ok := r.(udm.Array); ok {
			out := make(udm.Array, 0, len(a)+len(b))

			return append(append(out, a...), b...), nil
		}
	}

	if l.Kind() == udm.KindString || r.Kind() == udm.KindString {
		return udm.String(udm.Text(l) + udm.Text(r)), nil
	}

	return nil, raise(ErrTypeMismatch, "cannot apply + to %s and %s", TypeOf(l), TypeOf(r))
}

// compareOrdered compares two numbers or two strings.
func compareOrdered(op string, l, r udm.Value) (int, error) {
	if l.Kind() != r.Kind() ||
		(l.Kind() != udm.KindNumber && l.Kind() != udm.KindString) {
		return 0, raise(ErrTypeMismatch, "cannot apply %s to %s and %s", op, TypeOf(l), TypeOf(r))
	}

	return udm.Compare(l, r), nil
}

func (rt *Runtime) evalUnary(n *Unary, env *Environment) (udm.Value, error) {
	x, err := rt.eval(n.X, env)
	if err != nil {
		return nil, err
	}

	if n.Op == "!" {
		return udm.Bool(!udm.Truthy(x)), nil
	}

	num, ok := x.(udm.Number)
	if !ok {
		return nil, raiseAt(n.At, ErrTypeMismatch, "cannot negate %s", TypeOf(x))
	}

	return -num, nil
}
