package lang

import (
	"errors"
	"log/slog"

	"github.com/ardnew/udx/udm"
)

// evalMatch evaluates the subject once and runs the body of the first case
// whose pattern and guard both hold.
func (rt *Runtime) evalMatch(n *Match, env *Environment) (udm.Value, error) {
	subject, err := rt.eval(n.Subject, env)
	if err != nil {
		return nil, err
	}

	for _, c := range n.Cases {
		scope, ok := bindPattern(c.Pattern, subject, env)
		if !ok {
			continue
		}

		if c.Guard != nil {
			g, err := rt.eval(c.Guard, scope)
			if err != nil {
				return nil, err
			}

			if !udm.Truthy(g) {
				continue
			}
		}

		return rt.eval(c.Body, scope)
	}

	return nil, raiseAt(n.At, ErrNoMatchingCase, "%s", subject.String())
}

// bindPattern tests subject against p and returns the scope the guard and
// body run in.
func bindPattern(p Pattern, subject udm.Value, env *Environment) (*Environment, bool) {
	switch p := p.(type) {
	case *LiteralPattern:
		return env, udm.Equal(subject, p.Value)
	case *VarPattern:
		scope := env.Child()
		scope.Define(p.Name, subject)

		return scope, true
	case *WildcardPattern:
		return env, true
	}

	return env, false
}

// evalTry intercepts runtime signals raised by the body. Errors that are
// not signals, such as cancellation, pass through, and so does anything
// raised by the handler.
func (rt *Runtime) evalTry(n *Try, env *Environment) (udm.Value, error) {
	v, err := rt.eval(n.Body, env)
	if err == nil {
		return v, nil
	}

	var sig *Signal
	if !errors.As(err, &sig) || sig.Kind == ErrLex || sig.Kind == ErrParse {
		return nil, err
	}

	rt.cfg.logger.TraceContext(rt.ctx, "signal caught",
		slog.Any("signal", sig),
		slog.String("binding", n.Name))

	scope := env
	if n.Name != "" {
		scope = env.Child()
		scope.Define(n.Name, udm.String(sig.Message()))
	}

	return rt.eval(n.Handler, scope)
}
