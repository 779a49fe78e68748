package lang

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/ardnew/udx/udm"
)

func unaryMath(name, doc string, f func(float64) float64) *Builtin {
	return &Builtin{
		Name:   name,
		Params: []string{"n"},
		Doc:    doc,
		Fn: pure(func(args []udm.Value) (udm.Value, error) {
			n, err := argNumber(name, args, 0)
			if err != nil {
				return nil, err
			}

			return udm.Number(f(n)), nil
		}),
	}
}

// places reads an optional decimal-places argument.
func places(name string, args []udm.Value, i int) (int32, error) {
	if udm.IsNull(opt(args, i)) {
		return 0, nil
	}

	p, err := argInt(name, args, i)
	if err != nil {
		return 0, err
	}

	return int32(max(-28, min(p, 28))), nil //nolint:gosec
}

func mathBuiltins() []*Builtin {
	return []*Builtin{
		unaryMath("abs", "returns the absolute value", math.Abs),
		unaryMath("floor", "rounds down to an integer", math.Floor),
		unaryMath("ceil", "rounds up to an integer", math.Ceil),
		unaryMath("sqrt", "returns the square root", math.Sqrt),
		{
			Name:   "round",
			Params: []string{"n", "places?"},
			Doc:    "rounds half away from zero to the given number of decimal places",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				n, err := argNumber("round", args, 0)
				if err != nil {
					return nil, err
				}

				p, err := places("round", args, 1)
				if err != nil {
					return nil, err
				}

				f, _ := decimal.NewFromFloat(n).Round(p).Float64()

				return udm.Number(f), nil
			}),
		},
		{
			Name:   "pow",
			Params: []string{"base", "exponent"},
			Doc:    "raises base to exponent",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				b, err := argNumber("pow", args, 0)
				if err != nil {
					return nil, err
				}

				e, err := argNumber("pow", args, 1)
				if err != nil {
					return nil, err
				}

				return udm.Number(math.Pow(b, e)), nil
			}),
		},
		{
			Name:   "formatNumber",
			Params: []string{"n", "places?"},
			Doc:    "renders n with exactly the given number of decimal places",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				n, err := argNumber("formatNumber", args, 0)
				if err != nil {
					return nil, err
				}

				p, err := places("formatNumber", args, 1)
				if err != nil {
					return nil, err
				}

				return udm.String(decimal.NewFromFloat(n).StringFixed(max(p, 0))), nil
			}),
		},
	}
}
