package lang

import (
	"os"

	"github.com/ardnew/mung"
	"github.com/expr-lang/expr"

	"github.com/ardnew/udx/udm"
)

func miscBuiltins() []*Builtin {
	return []*Builtin{
		{
			Name:   "expr",
			Params: []string{"source", "env?"},
			Doc:    "evaluates an expr-lang expression with the properties of env in scope",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				source, err := argString("expr", args, 0)
				if err != nil {
					return nil, err
				}

				obj, err := argObject("expr", args, 1)
				if err != nil {
					return nil, err
				}

				env := map[string]any{}
				for k, v := range obj.All() {
					env[k] = udm.ToNative(v)
				}

				program, err := expr.Compile(source, expr.Env(env))
				if err != nil {
					return nil, raise(ErrHost, "expr: %v", err)
				}

				out, err := expr.Run(program, env)
				if err != nil {
					return nil, raise(ErrHost, "expr: %v", err)
				}

				return udm.FromNative(out), nil
			}),
		},
		{
			Name:   "pathPrefix",
			Params: []string{"list", "...items"},
			Doc:    "prepends items to a path list, removing duplicates",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				list, items, err := pathArgs("pathPrefix", args, 1)
				if err != nil {
					return nil, err
				}

				return udm.String(mung.Make(
					mung.WithSubjectItems(list),
					mung.WithDelim(string(os.PathListSeparator)),
					mung.WithPrefixItems(items...),
				).String()), nil
			}),
		},
		{
			Name:   "pathPrefixIf",
			Params: []string{"list", "pred", "...items"},
			Doc:    "like pathPrefix, keeping only the entries for which pred(entry) is truthy",
			Fn: func(rt *Runtime, args []udm.Value) (udm.Value, error) {
				list, items, err := pathArgs("pathPrefixIf", args, 2)
				if err != nil {
					return nil, err
				}

				pred, err := argFunc("pathPrefixIf", args, 1)
				if err != nil {
					return nil, err
				}

				var failed error

				out := mung.Make(
					mung.WithSubjectItems(list),
					mung.WithDelim(string(os.PathListSeparator)),
					mung.WithPrefixItems(items...),
					mung.WithFilter(func(s string) bool {
						if failed != nil {
							return false
						}

						r, err := rt.Invoke(pred, udm.String(s))
						if err != nil {
							failed = err

							return false
						}

						return udm.Truthy(r)
					}),
				).String()

				if failed != nil {
					return nil, failed
				}

				return udm.String(out), nil
			},
		},
	}
}

func pathArgs(name string, args []udm.Value, from int) (string, []string, error) {
	list := ""
	if !udm.IsNull(args[0]) {
		var err error
		if list, err = argString(name, args, 0); err != nil {
			return "", nil, err
		}
	}

	items, err := argStrings(name, args, from)
	if err != nil {
		return "", nil, err
	}

	return list, items, nil
}
