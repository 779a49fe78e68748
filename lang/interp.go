package lang

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ardnew/udx/udm"
)

// Interpreter evaluates scripts against a fixed set of named inputs.
//
// An Interpreter is not safe for concurrent use; a single evaluation is
// synchronous and single-threaded.
type Interpreter struct {
	cfg     config
	inputs  *udm.Object
	globals *Environment
	rules   *TemplateRegistry
}

// NewInterpreter returns an interpreter with the given options. Inputs are
// bound once here and are read-only afterwards.
func NewInterpreter(opts ...Option) *Interpreter {
	return newInterpreter(makeConfig(opts...))
}

func newInterpreter(cfg config) *Interpreter {
	b := udm.NewBuilder()
	for _, in := range cfg.inputs {
		b.Set(in.name, in.value)
	}

	in := &Interpreter{
		cfg:     cfg,
		inputs:  b.Build(),
		globals: NewEnvironment(nil),
		rules:   new(TemplateRegistry),
	}

	in.globals.Define("$", in.primaryInput())

	return in
}

// primaryInput is the value of $ at the top level: the input named "input",
// else the only input, else an object of all inputs.
func (in *Interpreter) primaryInput() udm.Value {
	if v, ok := in.inputs.Get("input"); ok {
		return v
	}

	switch in.inputs.Len() {
	case 0:
		return udm.Null{}
	case 1:
		return in.inputs.Values()[0]
	default:
		return in.inputs
	}
}

// Evaluate runs s in a fresh scope. Declarations do not outlive the call.
func (in *Interpreter) Evaluate(ctx context.Context, s *Script) (udm.Value, error) {
	return in.run(ctx, s, false)
}

// Exec runs s like [Interpreter.Evaluate], but the script's declarations
// and templates remain bound in the interpreter for later calls.
func (in *Interpreter) Exec(ctx context.Context, s *Script) (udm.Value, error) {
	return in.run(ctx, s, true)
}

// Names returns the names bound in the interpreter's global scope.
func (in *Interpreter) Names() []string { return in.globals.Names() }

// Lookup returns the value bound to name in the global scope.
func (in *Interpreter) Lookup(name string) (udm.Value, bool) {
	return in.globals.Lookup(name)
}

// Inputs returns the bound inputs.
func (in *Interpreter) Inputs() *udm.Object { return in.inputs }

func (in *Interpreter) run(ctx context.Context, s *Script, persist bool) (udm.Value, error) {
	rt := &Runtime{ctx: ctx, cfg: in.cfg, inputs: in.inputs, rules: in.rules}

	env := in.globals
	if !persist {
		env = env.Child()
		rt.rules = in.rules.clone()
	}

	rt.cfg.logger.TraceContext(ctx, "evaluate",
		slog.Int("input_count", in.inputs.Len()),
		slog.Int("max_depth", rt.cfg.opts.MaxDepth))

	env, err := rt.declare(s.Body.Decls, env)
	if err != nil {
		return nil, withSource(err, s.source)
	}

	if persist {
		in.globals = env
	}

	v, err := rt.eval(s.Body.Result, env)
	if err != nil {
		return nil, withSource(err, s.source)
	}

	return v, nil
}

// Evaluate parses and evaluates source.
func Evaluate(ctx context.Context, source string, opts ...Option) (udm.Value, error) {
	s, err := ParseString(ctx, source, opts...)
	if err != nil {
		return nil, err
	}

	return s.Evaluate(ctx, opts...)
}

// Evaluate runs the script with its parse options plus opts.
func (s *Script) Evaluate(ctx context.Context, opts ...Option) (udm.Value, error) {
	return newInterpreter(s.cfg.with(opts...)).Evaluate(ctx, s)
}

// Runtime is the state of one evaluation. Host functions receive it to
// call back into script code through [Runtime.Invoke].
type Runtime struct {
	ctx     context.Context
	cfg     config
	inputs  *udm.Object
	rules   *TemplateRegistry
	depth   int
	current traced // context of the innermost template application
}

// Context returns the context the evaluation runs under.
func (rt *Runtime) Context() context.Context { return rt.ctx }

// Invoke calls fn, a closure or a builtin, with args. This is the single
// path by which host functions call user functions. At most as many
// arguments as fn declares are passed; too few fail with [ErrArity].
// Failures propagate unchanged.
func (rt *Runtime) Invoke(fn udm.Value, args ...udm.Value) (udm.Value, error) {
	return rt.call(fn, args, false, Position{})
}

// enter guards the nesting depth and checks for cancellation.
func (rt *Runtime) enter(pos Position) error {
	if err := rt.ctx.Err(); err != nil {
		return context.Cause(rt.ctx)
	}

	if rt.depth >= rt.cfg.opts.MaxDepth {
		return raiseAt(pos, ErrRecursionLimit, "depth %d", rt.cfg.opts.MaxDepth)
	}

	rt.depth++

	return nil
}

func (rt *Runtime) leave() { rt.depth-- }

// call applies fn to args. Strict calls, written directly in a script,
// reject surplus arguments.
func (rt *Runtime) call(fn udm.Value, args []udm.Value, strict bool, pos Position) (udm.Value, error) {
	switch f := fn.(type) {
	case *Closure:
		want := len(f.Params)

		if len(args) > want {
			if strict {
				return nil, raiseAt(pos, ErrArity, "%s expects %d arguments, got %d", f.label(), want, len(args))
			}

			args = args[:want]
		}

		if len(args) < want {
			return nil, raiseAt(pos, ErrArity, "%s expects %d arguments, got %d", f.label(), want, len(args))
		}

		if err := rt.enter(pos); err != nil {
			return nil, err
		}
		defer rt.leave()

		scope := f.Env.Child()

		for i, p := range f.Params {
			if !conforms(args[i], p.Type) {
				return nil, raiseAt(pos, ErrTypeMismatch, "parameter %s of %s: expected %s, got %s",
					p.Name, f.label(), p.Type, TypeOf(args[i]))
			}

			scope.Define(p.Name, args[i])
		}

		v, err := rt.eval(f.Body, scope)
		if err != nil {
			return nil, err
		}

		if !conforms(v, f.Type) {
			return nil, raiseAt(pos, ErrTypeMismatch, "%s returns %s, declared %s", f.label(), TypeOf(v), f.Type)
		}

		return v, nil

	case *Builtin:
		lo, hi := f.arity()

		if hi >= 0 && len(args) > hi {
			if strict {
				return nil, raiseAt(pos, ErrArity, "%s expects at most %d arguments, got %d", f.Name, hi, len(args))
			}

			args = args[:hi]
		}

		if len(args) < lo {
			return nil, raiseAt(pos, ErrArity, "%s expects at least %d arguments, got %d", f.Name, lo, len(args))
		}

		if err := rt.enter(pos); err != nil {
			return nil, err
		}
		defer rt.leave()

		v, err := f.Fn(rt, args)
		if err != nil {
			return nil, locate(err, pos)
		}

		return v, nil
	}

	return nil, raiseAt(pos, ErrTypeMismatch, "%s is not a function", TypeOf(fn))
}

func (c *Closure) label() string {
	if c.Name == "" {
		return "lambda"
	}

	return c.Name
}

// raise returns a runtime signal without a position. Host functions use
// it; the call site fills in the position.
func raise(kind *Error, format string, args ...any) *Signal {
	return newSignal(kind, fmt.Sprintf(format, args...), Position{})
}

func raiseAt(pos Position, kind *Error, format string, args ...any) *Signal {
	return newSignal(kind, fmt.Sprintf(format, args...), pos)
}

// locate sets the position of a signal raised without one.
func locate(err error, pos Position) error {
	var sig *Signal
	if errors.As(err, &sig) && sig.Pos.Line == 0 {
		sig.Pos = pos
	}

	return err
}

// declare evaluates declarations in order, each in a new scope nested in
// the previous one, and returns the innermost scope. Templates see the
// innermost scope so they may call functions declared after them.
func (rt *Runtime) declare(decls []Decl, env *Environment) (*Environment, error) {
	var pending []*TemplateRule

	for i := 0; i < len(decls); i++ {
		switch d := decls[i].(type) {
		case *Let:
			v, err := rt.eval(d.Value, env)
			if err != nil {
				return nil, err
			}

			if !conforms(v, d.Type) {
				return nil, raiseAt(d.At, ErrTypeMismatch, "let %s: expected %s, got %s", d.Name, d.Type, TypeOf(v))
			}

			if fn, ok := v.(*Closure); ok && fn.Name == "" {
				named := *fn
				named.Name = d.Name
				v = &named
			}

			env = env.Child()
			env.Define(d.Name, v)

		case *FuncDecl:
			group := []*FuncDecl{d}

			for i+1 < len(decls) {
				next, ok := decls[i+1].(*FuncDecl)
				if !ok {
					break
				}

				group = append(group, next)
				i++
			}

			env = letrec(env, group)

		case *TemplateDecl:
			rule := rt.rules.Add(d)
			pending = append(pending, rule)

			rt.cfg.logger.TraceContext(rt.ctx, "template registered",
				slog.String("pattern", d.Pattern),
				slog.Float64("priority", rule.Priority()),
				slog.String("mode", d.Mode),
				slog.Int("index", rule.Index))
		}
	}

	for _, rule := range pending {
		rule.Env = env
	}

	return env, nil
}

// eval evaluates n in env.
func (rt *Runtime) eval(n Node, env *Environment) (udm.Value, error) {
	switch n := n.(type) {
	case *NumberLit:
		return udm.Number(n.Value), nil

	case *StringLit:
		return udm.String(n.Value), nil

	case *BoolLit:
		return udm.Bool(n.Value), nil

	case *NullLit:
		return udm.Null{}, nil

	case *Group:
		return rt.eval(n.X, env)

	case *Ident:
		if v, ok := env.Lookup(n.Name); ok {
			return v, nil
		}

		if b, ok := LookupBuiltin(n.Name); ok {
			return b, nil
		}

		return nil, raiseAt(n.At, ErrUndefinedIdentifier, "%s", n.Name)

	case *InputRef:
		if v, ok := rt.inputs.Get(n.Name); ok {
			return v, nil
		}

		return nil, raiseAt(n.At, ErrUndefinedIdentifier, "input $%s is not bound", n.Name)

	case *ContextRef:
		if v, ok := env.Lookup("$"); ok {
			return v, nil
		}

		return udm.Null{}, nil

	case *AttrRef:
		v, _ := env.Lookup("$")

		return attribute(v, n.Name), nil

	case *ObjectLit:
		return rt.evalObject(n, env)

	case *ArrayLit:
		return rt.evalArray(n, env)

	case *Member, *AttrAccess, *Wildcard, *Index, *Predicate, *Descent:
		return rt.evalSelector(n, env)

	case *Binary:
		return rt.evalBinary(n, env)

	case *Unary:
		return rt.evalUnary(n, env)

	case *If:
		cond, err := rt.eval(n.Cond, env)
		if err != nil {
			return nil, err
		}

		switch {
		case udm.Truthy(cond):
			return rt.eval(n.Then, env)
		case n.Else != nil:
			return rt.eval(n.Else, env)
		default:
			return udm.Null{}, nil
		}

	case *Ternary:
		cond, err := rt.eval(n.Cond, env)
		if err != nil {
			return nil, err
		}

		if udm.Truthy(cond) {
			return rt.eval(n.Then, env)
		}

		return rt.eval(n.Else, env)

	case *Match:
		return rt.evalMatch(n, env)

	case *Try:
		return rt.evalTry(n, env)

	case *Lambda:
		return &Closure{Params: n.Params, Body: n.Body, Env: env}, nil

	case *Pipe:
		return rt.evalPipe(n, env)

	case *Apply:
		return rt.evalApply(n, env)

	case *Block:
		// Templates declared in a block apply only while it evaluates.
		defer rt.rules.truncate(rt.rules.Len())

		scope, err := rt.declare(n.Decls, env.Child())
		if err != nil {
			return nil, err
		}

		return rt.eval(n.Result, scope)

	case *Call:
		fn, err := rt.callee(n.Callee, env)
		if err != nil {
			return nil, err
		}

		args := make([]udm.Value, len(n.Args))
		for i, a := range n.Args {
			if args[i], err = rt.eval(a, env); err != nil {
				return nil, err
			}
		}

		return rt.call(fn, args, true, n.At)
	}

	return nil, raiseAt(n.Pos(), ErrTypeMismatch, "cannot evaluate %T", n)
}

// callee resolves the function position of a call. Uppercase names must be
// user bindings. Lowercase names prefer a function bound in scope and fall
// back to the host library.
func (rt *Runtime) callee(n Node, env *Environment) (udm.Value, error) {
	id, ok := unparen(n).(*Ident)
	if !ok {
		return rt.eval(n, env)
	}

	v, found := env.Lookup(id.Name)

	if IsUserFunctionName(id.Name) {
		if !found {
			return nil, raiseAt(id.At, ErrUndefinedIdentifier, "function %s", id.Name)
		}

		return v, nil
	}

	if found && v.Kind() == udm.KindFunction {
		return v, nil
	}

	if b, ok := LookupBuiltin(id.Name); ok {
		return b, nil
	}

	if found {
		return v, nil
	}

	return nil, raiseAt(id.At, ErrUndefinedIdentifier, "function %s", id.Name)
}

// evalPipe feeds each stage's value into the next: a call stage receives
// it as its first argument, any other stage must evaluate to a function.
func (rt *Runtime) evalPipe(n *Pipe, env *Environment) (udm.Value, error) {
	v, err := rt.eval(n.Stages[0], env)
	if err != nil {
		return nil, err
	}

	for _, stage := range n.Stages[1:] {
		var (
			fn   udm.Value
			args = []udm.Value{v}
		)

		if c, ok := stage.(*Call); ok {
			if fn, err = rt.callee(c.Callee, env); err != nil {
				return nil, err
			}

			for _, a := range c.Args {
				av, err := rt.eval(a, env)
				if err != nil {
					return nil, err
				}

				args = append(args, av)
			}
		} else if fn, err = rt.callee(stage, env); err != nil {
			return nil, err
		}

		if v, err = rt.call(fn, args, true, stage.Pos()); err != nil {
			return nil, err
		}
	}

	return v, nil
}

func (rt *Runtime) evalObject(n *ObjectLit, env *Environment) (udm.Value, error) {
	if len(n.Decls) > 0 {
		defer rt.rules.truncate(rt.rules.Len())

		var err error

		if env, err = rt.declare(n.Decls, env.Child()); err != nil {
			return nil, err
		}
	}

	b := udm.NewBuilder()

	for _, e := range n.Entries {
		v, err := rt.eval(e.Value, env)
		if err != nil {
			return nil, err
		}

		switch e.Kind {
		case EntryKey, EntryDirective:
			b.Set(e.Key, v)

		case EntryAttr:
			b.SetAttr(e.Key, udm.Text(v))

		case EntryComputed:
			k, err := rt.eval(e.KeyExpr, env)
			if err != nil {
				return nil, err
			}

			b.Set(udm.Text(k), v)

		case EntrySpread:
			switch x := v.(type) {
			case *udm.Object:
				b.Merge(x)
			case udm.Null:
			default:
				return nil, raiseAt(e.At, ErrTypeMismatch, "cannot spread %s into an object", TypeOf(v))
			}
		}
	}

	return b.Build(), nil
}

func (rt *Runtime) evalArray(n *ArrayLit, env *Environment) (udm.Value, error) {
	out := make(udm.Array, 0, len(n.Elems))

	for _, e := range n.Elems {
		v, err := rt.eval(e.Value, env)
		if err != nil {
			return nil, err
		}

		if !e.Spread {
			out = append(out, v)

			continue
		}

		switch x := v.(type) {
		case udm.Array:
			out = append(out, x...)
		case udm.Null:
		default:
			return nil, raiseAt(e.Value.Pos(), ErrTypeMismatch, "cannot spread %s into an array", TypeOf(v))
		}
	}

	return out, nil
}
