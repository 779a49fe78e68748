package lang

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/ardnew/udx/udm"
)

// Default template priorities by pattern kind.
const (
	PriorityPath      = 3
	PriorityElement   = 2
	PriorityAttribute = 1
	PriorityWildcard  = 0
)

// templatePattern is a compiled template match pattern. The set of kinds
// is closed: path, element, attribute predicate and wildcard.
type templatePattern interface {
	matches(t traced) bool
	priority() float64
}

type (
	// pathPattern matches when the context's path ends with steps, or
	// equals them when anchored. A "*" step matches any key.
	pathPattern struct {
		steps    []string
		anchored bool
	}

	elementPattern struct{ name string }

	// attrPattern matches an object carrying attr, optionally with a given
	// value, and optionally restricted to an element name.
	attrPattern struct {
		element string // "" or "*" for any
		attr    string
		value   string
		valued  bool
	}

	wildcardPattern struct{}
)

func (p *pathPattern) priority() float64     { return PriorityPath }
func (p *elementPattern) priority() float64  { return PriorityElement }
func (p *attrPattern) priority() float64     { return PriorityAttribute }
func (p *wildcardPattern) priority() float64 { return PriorityWildcard }

func (p *pathPattern) matches(t traced) bool {
	if len(t.path) < len(p.steps) || (p.anchored && len(t.path) != len(p.steps)) {
		return false
	}

	tail := t.path[len(t.path)-len(p.steps):]

	for i, step := range p.steps {
		if step != "*" && step != tail[i] {
			return false
		}
	}

	return true
}

func (p *elementPattern) matches(t traced) bool { return t.name() == p.name }

func (p *attrPattern) matches(t traced) bool {
	obj, ok := t.value.(*udm.Object)
	if !ok {
		return false
	}

	if p.element != "" && p.element != "*" && t.name() != p.element {
		return false
	}

	v, ok := obj.Attr(p.attr)

	return ok && (!p.valued || v == p.value)
}

func (p *wildcardPattern) matches(traced) bool { return true }

var errBadPattern = errors.New("invalid template pattern")

// parseTemplatePattern compiles a template match pattern:
//
//	Order               element name
//	*                   wildcard
//	A/B/C, /A/B         path (leading '/' anchors at the root)
//	Order[@id]          attribute predicate
//	Order[@id='1']      attribute predicate with value
//	@id, *[@id]         attribute predicate on any element
func parseTemplatePattern(s string) (templatePattern, error) {
	s = strings.TrimSpace(s)

	switch {
	case s == "":
		return nil, errBadPattern

	case s == "*":
		return &wildcardPattern{}, nil

	case strings.HasPrefix(s, "@"):
		return parseAttrPattern("", s[1:])

	case strings.HasSuffix(s, "]"):
		elem, pred, ok := strings.Cut(strings.TrimSuffix(s, "]"), "[")
		if !ok || !strings.HasPrefix(pred, "@") {
			return nil, errors.Join(errBadPattern, errors.New(s))
		}

		return parseAttrPattern(elem, pred[1:])

	case strings.Contains(s, "/"):
		p := &pathPattern{anchored: strings.HasPrefix(s, "/")}

		for step := range strings.SplitSeq(strings.Trim(s, "/"), "/") {
			if step == "" {
				return nil, errors.Join(errBadPattern, errors.New(s))
			}

			p.steps = append(p.steps, step)
		}

		return p, nil
	}

	return &elementPattern{name: s}, nil
}

func parseAttrPattern(elem, pred string) (templatePattern, error) {
	p := &attrPattern{element: elem, attr: pred}

	if name, value, ok := strings.Cut(pred, "="); ok {
		value = strings.TrimSpace(value)
		if len(value) < 2 || (value[0] != '\'' && value[0] != '"') || value[len(value)-1] != value[0] {
			return nil, errors.Join(errBadPattern, errors.New("attribute value must be quoted"))
		}

		p.attr, p.value, p.valued = strings.TrimSpace(name), value[1:len(value)-1], true
	}

	if p.attr == "" {
		return nil, errors.Join(errBadPattern, errors.New("missing attribute name"))
	}

	return p, nil
}

// TemplateRule is a registered template.
type TemplateRule struct {
	Decl  *TemplateDecl
	Env   *Environment
	Index int // definition order
}

// Priority returns the rule's effective priority: the explicit priority if
// given, else the default for its pattern kind.
func (r *TemplateRule) Priority() float64 {
	if r.Decl.Priority != nil {
		return *r.Decl.Priority
	}

	return r.Decl.pattern.priority()
}

// TemplateRegistry holds template rules in definition order.
type TemplateRegistry struct {
	rules []*TemplateRule
}

// Add registers d and returns its rule.
func (tr *TemplateRegistry) Add(d *TemplateDecl) *TemplateRule {
	r := &TemplateRule{Decl: d, Index: len(tr.rules)}
	tr.rules = append(tr.rules, r)

	return r
}

// Len returns the number of rules.
func (tr *TemplateRegistry) Len() int { return len(tr.rules) }

// truncate drops the rules added since the registry held n.
func (tr *TemplateRegistry) truncate(n int) {
	clear(tr.rules[n:])
	tr.rules = tr.rules[:n]
}

func (tr *TemplateRegistry) clone() *TemplateRegistry {
	return &TemplateRegistry{rules: append([]*TemplateRule(nil), tr.rules...)}
}

// Select returns the rule for a context in mode: the highest effective
// priority among matching rules, the last defined on ties.
func (tr *TemplateRegistry) Select(t traced, mode string) *TemplateRule {
	var best *TemplateRule

	for _, r := range tr.rules {
		if r.Decl.Mode != mode || !r.Decl.pattern.matches(t) {
			continue
		}

		if best == nil || r.Priority() >= best.Priority() {
			best = r
		}
	}

	return best
}

// evalApply dispatches every context reached by the selector. One context
// gives its result directly; any other number gives an array.
func (rt *Runtime) evalApply(n *Apply, env *Environment) (udm.Value, error) {
	mode := ""

	if n.Mode != nil {
		m, err := rt.eval(n.Mode, env)
		if err != nil {
			return nil, err
		}

		mode = udm.Text(m)
	}

	var contexts []traced

	if n.Selector == nil {
		cur := rt.current
		if v, ok := env.Lookup("$"); ok {
			cur.value, cur.elems = v, nil
		}

		contexts = children(cur)
	} else {
		t, err := rt.trace(n.Selector, env)
		if err != nil {
			return nil, err
		}

		contexts = t.contexts()
	}

	results := make(udm.Array, 0, len(contexts))

	for _, t := range contexts {
		v, err := rt.dispatch(t, mode, n.At)
		if err != nil {
			return nil, err
		}

		results = append(results, v)
	}

	if len(results) == 1 {
		return results[0], nil
	}

	return results, nil
}

// children returns the properties of an object context, or the elements
// of an array context, as contexts. An array property gives one context
// per element under the property's name.
func children(t traced) []traced {
	var out []traced

	switch x := t.value.(type) {
	case *udm.Object:
		for k, v := range x.All() {
			out = append(out, t.child(k, v).contexts()...)
		}
	case udm.Array:
		out = t.contexts()
	}

	return out
}

// dispatch runs the winning template for one context.
func (rt *Runtime) dispatch(t traced, mode string, pos Position) (udm.Value, error) {
	rule := rt.rules.Select(t, mode)
	if rule == nil {
		return nil, raiseAt(pos, ErrNoMatchingTemplate, "%s at /%s",
			describe(t), strings.Join(t.path, "/"))
	}

	rt.cfg.logger.TraceContext(rt.ctx, "apply dispatch",
		slog.String("pattern", rule.Decl.Pattern),
		slog.Float64("priority", rule.Priority()),
		slog.Int("index", rule.Index),
		slog.String("path", "/"+strings.Join(t.path, "/")))

	if err := rt.enter(pos); err != nil {
		return nil, err
	}
	defer rt.leave()

	saved := rt.current
	rt.current = t

	defer func() { rt.current = saved }()

	return rt.eval(rule.Decl.Body, bindObject(rule.Env, t.value))
}

func describe(t traced) string {
	if name := t.name(); name != "" {
		return TypeOf(t.value) + " " + name
	}

	return TypeOf(t.value)
}
