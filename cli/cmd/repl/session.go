package repl

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/udx/lang"
	"github.com/ardnew/udx/log"
	"github.com/ardnew/udx/udm"
)

// Sentinel errors.
var (
	ErrOutOfBounds  = errors.New("index out of range")
	ErrEditDeclined = errors.New("decline edit")
)

// declKeywords start a declaration; a line made only of declarations is
// given a null result so it can be entered on its own.
var declKeywords = []string{"let", "def", "function", "template"}

// session is the state shared by every line entered in the REPL: one
// interpreter whose declarations persist between lines.
type session struct {
	interp *lang.Interpreter
	opts   []lang.Option
	logger log.Logger
}

func newSession(interp *lang.Interpreter, logger log.Logger, opts ...lang.Option) *session {
	return &session{interp: interp, opts: opts, logger: logger}
}

// parse parses a line, accepting one that only declares names.
func (s *session) parse(ctx context.Context, line string) (script *lang.Script, declOnly bool, err error) {
	if toks, lerr := lang.Lex(line); lerr == nil && len(toks) > 0 &&
		slices.ContainsFunc(declKeywords, toks[0].Is) {
		if script, err := lang.ParseString(ctx, line+"\nnull", s.opts...); err == nil {
			return script, true, nil
		}
	}

	script, err = lang.ParseString(ctx, line, s.opts...)

	return script, false, err
}

// eval runs a line and returns the text to print: the result in literal
// syntax, or the names a declaration-only line bound.
func (s *session) eval(ctx context.Context, line string) (string, error) {
	script, declOnly, err := s.parse(ctx, line)
	if err != nil {
		return "", err
	}

	return s.exec(ctx, script, declOnly)
}

func (s *session) exec(ctx context.Context, script *lang.Script, declOnly bool) (string, error) {
	before := s.interp.Names()

	v, err := s.interp.Exec(ctx, script)
	if err != nil {
		return "", err
	}

	s.logger.TraceContext(ctx, "repl exec",
		slog.String("type", lang.TypeOf(v)),
		slog.Bool("declaration", declOnly))

	if !declOnly {
		return lang.FormatLiteral(v), nil
	}

	var bound []string

	for _, name := range s.interp.Names() {
		if !slices.Contains(before, name) {
			bound = append(bound, name)
		}
	}

	if len(bound) == 0 {
		return "ok", nil
	}

	slices.Sort(bound)

	return "bound " + strings.Join(bound, ", "), nil
}

// names returns the user bindings, sorted, without "$".
func (s *session) names() []string {
	names := slices.DeleteFunc(s.interp.Names(), func(n string) bool { return n == "$" })
	slices.Sort(names)

	return names
}

// lookup resolves a top-level word: "$" or "$name" for inputs, otherwise a
// binding or a builtin.
func (s *session) lookup(name string) (udm.Value, bool) {
	if name == "$" {
		return s.interp.Lookup("$")
	}

	if input, ok := strings.CutPrefix(name, "$"); ok {
		return s.interp.Inputs().Get(input)
	}

	if v, ok := s.interp.Lookup(name); ok {
		return v, true
	}

	if b, ok := lang.LookupBuiltin(name); ok {
		return b, true
	}

	return nil, false
}

// resolve walks a dotted member path from a top-level word.
func (s *session) resolve(path string) (udm.Value, bool) {
	segments := strings.Split(path, ".")

	v, ok := s.lookup(segments[0])
	if !ok {
		return nil, false
	}

	for _, seg := range segments[1:] {
		obj, ok := v.(*udm.Object)
		if !ok {
			return nil, false
		}

		if v, ok = obj.Get(seg); !ok {
			return nil, false
		}
	}

	return v, true
}

// topLevel returns every name that may start an expression: bindings,
// input references, builtins and keywords.
func (s *session) topLevel() []string {
	names := s.names()

	names = append(names, "$")
	for name := range s.interp.Inputs().All() {
		names = append(names, "$"+name)
	}

	names = append(names, lang.BuiltinNames()...)

	for _, kw := range []string{
		"let", "def", "template", "match", "if", "else", "try", "catch",
		"apply", "true", "false", "null",
	} {
		if lang.IsKeyword(kw) {
			names = append(names, kw)
		}
	}

	return names
}

// children returns the property names of the object at path.
func (s *session) children(path string) []string {
	v, ok := s.resolve(path)
	if !ok {
		return nil
	}

	if obj, ok := v.(*udm.Object); ok {
		return obj.Keys()
	}

	return nil
}

// isFunction reports whether name is bound to a callable value.
func (s *session) isFunction(name string) bool {
	v, ok := s.lookup(name)

	return ok && v.Kind() == udm.KindFunction
}

// signature returns the call signature of the function bound to name and
// its parameter names.
func (s *session) signature(name string) (string, []string) {
	v, ok := s.resolve(name)
	if !ok {
		return "", nil
	}

	switch fn := v.(type) {
	case *lang.Builtin:
		return fn.String(), slices.Clone(fn.Params)
	case *lang.Closure:
		params := make([]string, len(fn.Params))
		for i, p := range fn.Params {
			params[i] = p.Name
			if p.Type != "" {
				params[i] += ": " + p.Type
			}
		}

		return name + "(" + strings.Join(params, ", ") + ")", params
	}

	return "", nil
}

// preview is a one-line summary of a binding for the list command.
func (s *session) preview(name string) string {
	v, ok := s.lookup(name)
	if !ok {
		return ""
	}

	if v.Kind() == udm.KindFunction {
		sig, _ := s.signature(name)

		return sig
	}

	text := lang.FormatLiteral(v)
	if len(text) > 40 {
		text = text[:37] + "..."
	}

	return text
}
