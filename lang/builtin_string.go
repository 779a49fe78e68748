package lang

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ardnew/udx/udm"
)

// stringFunc adapts a function over one string argument.
func stringFunc(name, doc string, f func(string) string) *Builtin {
	return &Builtin{
		Name:   name,
		Params: []string{"text"},
		Doc:    doc,
		Fn: pure(func(args []udm.Value) (udm.Value, error) {
			if udm.IsNull(args[0]) {
				return udm.Null{}, nil
			}

			s, err := argText(name, args, 0)
			if err != nil {
				return nil, err
			}

			return udm.String(f(s)), nil
		}),
	}
}

// stringTest adapts a predicate over two strings.
func stringTest(name, doc string, f func(s, t string) bool) *Builtin {
	return &Builtin{
		Name:   name,
		Params: []string{"text", "other"},
		Doc:    doc,
		Fn: pure(func(args []udm.Value) (udm.Value, error) {
			s, err := argText(name, args, 0)
			if err != nil {
				return nil, err
			}

			t, err := argText(name, args, 1)
			if err != nil {
				return nil, err
			}

			return udm.Bool(f(s, t)), nil
		}),
	}
}

func stringBuiltins() []*Builtin {
	upper := cases.Upper(language.Und)
	title := cases.Title(language.Und)

	return []*Builtin{
		stringFunc("upper", "converts text to upper case", strings.ToUpper),
		stringFunc("lower", "converts text to lower case", strings.ToLower),
		stringFunc("trim", "removes leading and trailing white space", strings.TrimSpace),
		stringFunc("capitalize", "upper-cases the first letter", func(s string) string {
			r, n := utf8.DecodeRuneInString(s)
			if r == utf8.RuneError {
				return s
			}

			return upper.String(string(r)) + s[n:]
		}),
		stringFunc("titleCase", "upper-cases the first letter of every word", title.String),
		stringTest("startsWith", "reports whether text begins with other", strings.HasPrefix),
		stringTest("endsWith", "reports whether text ends with other", strings.HasSuffix),
		{
			Name:   "split",
			Params: []string{"text", "separator"},
			Doc:    "splits text around separator",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				s, err := argText("split", args, 0)
				if err != nil {
					return nil, err
				}

				sep, err := argString("split", args, 1)
				if err != nil {
					return nil, err
				}

				return strs(strings.Split(s, sep)), nil
			}),
		},
		{
			Name:   "join",
			Params: []string{"array", "separator?"},
			Doc:    "joins the text of each element with separator",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				arr, err := argArray("join", args, 0)
				if err != nil {
					return nil, err
				}

				sep := ""
				if !udm.IsNull(opt(args, 1)) {
					if sep, err = argString("join", args, 1); err != nil {
						return nil, err
					}
				}

				parts := make([]string, len(arr))
				for i, e := range arr {
					parts[i] = udm.Text(e)
				}

				return udm.String(strings.Join(parts, sep)), nil
			}),
		},
		{
			Name:   "replace",
			Params: []string{"text", "old", "new"},
			Doc:    "replaces every occurrence of old with new",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				var s [3]string

				for i := range s {
					var err error
					if s[i], err = argText("replace", args, i); err != nil {
						return nil, err
					}
				}

				return udm.String(strings.ReplaceAll(s[0], s[1], s[2])), nil
			}),
		},
		{
			Name:   "substring",
			Params: []string{"text", "start", "end?"},
			Doc:    "returns the characters from start up to end; indices clamp to the text",
			Fn:     pure(substring),
		},
		{
			Name:   "indexOf",
			Params: []string{"haystack", "needle"},
			Doc:    "character index of needle in text, or element index in an array; -1 if absent",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				if arr, ok := args[0].(udm.Array); ok {
					for i, e := range arr {
						if udm.Equal(e, args[1]) {
							return udm.Number(i), nil
						}
					}

					return udm.Number(-1), nil
				}

				s, err := argText("indexOf", args, 0)
				if err != nil {
					return nil, err
				}

				i := strings.Index(s, udm.Text(args[1]))
				if i < 0 {
					return udm.Number(-1), nil
				}

				return udm.Number(utf8.RuneCountInString(s[:i])), nil
			}),
		},
		{
			Name:   "matches",
			Params: []string{"text", "pattern"},
			Doc:    "reports whether text matches the regular expression",
			Fn: pure(func(args []udm.Value) (udm.Value, error) {
				s, err := argText("matches", args, 0)
				if err != nil {
					return nil, err
				}

				pat, err := argString("matches", args, 1)
				if err != nil {
					return nil, err
				}

				re, err := regexp.Compile(pat)
				if err != nil {
					return nil, raise(ErrHost, "matches: %v", err)
				}

				return udm.Bool(re.MatchString(s)), nil
			}),
		},
		{
			Name:   "padLeft",
			Params: []string{"text", "width", "pad?"},
			Doc:    "pads text on the left to width characters",
			Fn:     pure(padder("padLeft", true)),
		},
		{
			Name:   "padRight",
			Params: []string{"text", "width", "pad?"},
			Doc:    "pads text on the right to width characters",
			Fn:     pure(padder("padRight", false)),
		},
	}
}

func substring(args []udm.Value) (udm.Value, error) {
	s, err := argText("substring", args, 0)
	if err != nil {
		return nil, err
	}

	runes := []rune(s)

	start, err := argInt("substring", args, 1)
	if err != nil {
		return nil, err
	}

	end := len(runes)
	if !udm.IsNull(opt(args, 2)) {
		if end, err = argInt("substring", args, 2); err != nil {
			return nil, err
		}
	}

	clamp := func(i int) int {
		if i < 0 {
			i += len(runes)
		}

		return max(0, min(i, len(runes)))
	}

	start, end = clamp(start), clamp(end)
	if start >= end {
		return udm.String(""), nil
	}

	return udm.String(string(runes[start:end])), nil
}

func padder(name string, left bool) func([]udm.Value) (udm.Value, error) {
	return func(args []udm.Value) (udm.Value, error) {
		s, err := argText(name, args, 0)
		if err != nil {
			return nil, err
		}

		width, err := argInt(name, args, 1)
		if err != nil {
			return nil, err
		}

		pad := " "
		if !udm.IsNull(opt(args, 2)) {
			if pad, err = argString(name, args, 2); err != nil {
				return nil, err
			}
		}

		n := width - utf8.RuneCountInString(s)
		if n <= 0 || pad == "" {
			return udm.String(s), nil
		}

		fill := []rune(strings.Repeat(pad, n))[:n]

		if left {
			return udm.String(string(fill) + s), nil
		}

		return udm.String(s + string(fill)), nil
	}
}
