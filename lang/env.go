package lang

import (
	"slices"

	"github.com/ardnew/udx/udm"
)

// Environment is one lexical scope. Lookups walk outward through parent
// scopes.
type Environment struct {
	parent *Environment
	names  []string
	vars   map[string]udm.Value
}

// NewEnvironment returns an empty scope nested in parent, which may be nil.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{parent: parent}
}

// Child returns a new scope nested in e.
func (e *Environment) Child() *Environment {
	return NewEnvironment(e)
}

// Define binds name in this scope, replacing any binding of the same name
// in this scope only.
func (e *Environment) Define(name string, v udm.Value) {
	if e.vars == nil {
		e.vars = make(map[string]udm.Value)
	}

	if _, ok := e.vars[name]; !ok {
		e.names = append(e.names, name)
	}

	e.vars[name] = v
}

// Lookup finds the innermost binding of name.
func (e *Environment) Lookup(name string) (udm.Value, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}

	return nil, false
}

// Names returns every visible name, innermost scope first, each once.
func (e *Environment) Names() []string {
	var out []string

	for s := e; s != nil; s = s.parent {
		for _, name := range slices.Backward(s.names) {
			if !slices.Contains(out, name) {
				out = append(out, name)
			}
		}
	}

	return out
}

// letrec binds a run of adjacent functions in one fresh scope that each
// closure captures, so the bodies can refer to themselves and to each
// other. The slots are filled after the closures are built.
func letrec(env *Environment, decls []*FuncDecl) *Environment {
	scope := env.Child()

	for _, d := range decls {
		scope.Define(d.Name, udm.Null{})
	}

	for _, d := range decls {
		scope.vars[d.Name] = &Closure{Name: d.Name, Params: d.Params, Type: d.Type, Body: d.Body, Env: scope}
	}

	return scope
}

// bindObject defines each property of v, when v is an object, and binds $
// to v. Template bodies and predicates evaluate in such a scope.
func bindObject(env *Environment, v udm.Value) *Environment {
	scope := env.Child()

	if obj, ok := v.(*udm.Object); ok {
		for k, prop := range obj.All() {
			if udm.IsIdentifier(k) {
				scope.Define(k, prop)
			}
		}
	}

	scope.Define("$", v)

	return scope
}
