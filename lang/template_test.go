package lang

import (
	"testing"

	"github.com/ardnew/udx/udm"
)

const ordersDoc = `{orders: [{@kind: "x", id: 1}, {id: 2}]}`

func TestTemplate_Dispatch(t *testing.T) {
	opts := WithInput("input", mustLiteral(t, ordersDoc))

	runEvalCases(t, []evalCase{
		{
			name:   "element",
			source: "template match = \"orders\" { id * 10 }\napply($.orders)",
			want:   `[10, 20]`,
		},
		{
			name:   "single context",
			source: "template match = \"orders\" => id\napply($.orders[1])",
			want:   `2`,
		},
		{
			name:   "attribute value",
			source: "template match = \"orders[@kind='x']\" { \"x\" }\ntemplate match = \"*\" { \"other\" }\napply($.orders)",
			want:   `["x", "other"]`,
		},
		{
			name:   "later function",
			source: "template match = \"orders\" { Label(id) }\ndef Label(n) => \"#\" + string(n)\napply($.orders[1])",
			want:   `"#2"`,
		},
		{
			name:   "object name",
			source: "template match = \"row\" { v }\napply(element(\"row\", {v: 1}))",
			want:   `1`,
		},
		{
			name:   "no contexts",
			source: "template match = \"*\" { 1 }\napply($.missing)",
			want:   `[]`,
		},
	}, opts)
}

func TestTemplate_Priority(t *testing.T) {
	const (
		wildcard  = "template match = \"*\" { \"wildcard\" }\n"
		attribute = "template match = \"orders[@kind]\" { \"attr\" }\n"
		element   = "template match = \"orders\" { \"element\" }\n"
		path      = "template match = \"/orders\" { \"path\" }\n"
		target    = "apply($.orders[0])"
	)

	opts := WithInput("input", mustLiteral(t, ordersDoc))

	runEvalCases(t, []evalCase{
		{"path beats element", path + element + attribute + wildcard + target, `"path"`},
		{"element beats attribute", wildcard + attribute + element + target, `"element"`},
		{"attribute beats wildcard", attribute + wildcard + target, `"attr"`},
		{"wildcard alone", wildcard + target, `"wildcard"`},
		{
			name:   "explicit priority overrides",
			source: path + "template match = \"*\" priority = 10 { \"w\" }\n" + target,
			want:   `"w"`,
		},
		{
			name:   "negative priority loses",
			source: wildcard + "template match = \"*\" priority = -1 { \"neg\" }\n" + target,
			want:   `"wildcard"`,
		},
		{
			name:   "last defined wins a default tie",
			source: "template match = \"orders\" { \"first\" }\ntemplate match = \"orders\" { \"second\" }\n" + target,
			want:   `"second"`,
		},
		{
			name:   "last defined wins an explicit tie",
			source: "template match = \"orders\" priority = 1 { \"a\" }\ntemplate match = \"*\" priority = 1 { \"b\" }\n" + target,
			want:   `"b"`,
		},
	}, opts)
}

func TestTemplate_Modes(t *testing.T) {
	src := `template match = "orders" { "default" }
template match = "orders" mode = "short" { "short" }
[apply($.orders[0]), apply($.orders[0], "short")]`

	v := mustEval(t, src, WithInput("input", mustLiteral(t, ordersDoc)))
	if want := mustLiteral(t, `["default", "short"]`); !udm.Equal(v, want) {
		t.Errorf("got %s, want %s", FormatLiteral(v), FormatLiteral(want))
	}

	expectSignal(t, "template match = \"orders\" { 1 }\napply($.orders[0], \"other\")",
		ErrNoMatchingTemplate, WithInput("input", mustLiteral(t, ordersDoc)))
}

func TestTemplate_Nested(t *testing.T) {
	doc := WithInput("input", mustLiteral(t, `{order: {id: 1, items: [{sku: "a"}, {sku: "b"}]}}`))

	runEvalCases(t, []evalCase{
		{
			name: "selector from context",
			source: `template match = "order" { {id: id, skus: apply(items)} }
template match = "order/items" { sku }
apply($.order)`,
			want: `{id: 1, skus: ["a", "b"]}`,
		},
		{
			name: "children of context",
			source: `template match = "order" { apply() }
template match = "id" { "ID " + string($) }
template match = "items" { sku }
apply($.order)`,
			want: `["ID 1", "a", "b"]`,
		},
	}, doc)
}

func TestTemplate_ApplyFollowsSelector(t *testing.T) {
	doc := WithInput("input", mustLiteral(t, `{orders: [{id: 1}, {id: 2}], matrix: [[1, 2], [3]]}`))

	const identity = "template match = \"*\" { $ }\n"

	runEvalCases(t, []evalCase{
		{"member on array", identity + "apply($.orders.id)", `[]`},
		{"nested array element", identity + "apply($.matrix[0])", `[1, 2]`},
		{"nested arrays one level", identity + "apply($.matrix)", `[[1, 2], [3]]`},
		{"negative index", identity + "apply($.matrix[-1])", `3`},
		{"descent", identity + "apply($..id)", `[1, 2]`},
		{"predicate", identity + "apply($.orders[id > 1])", `{id: 2}`},
		{"wildcard then member", identity + "apply($.orders[*].id)", `[]`},
	}, doc)

	// apply visits exactly the values the selector evaluates to.
	for _, sel := range []string{
		`$.orders`, `$.orders.id`, `$.orders[0]`, `$.orders[5]`, `$.matrix`,
		`$.matrix[0]`, `$.matrix[1][0]`, `$.*`, `$..id`, `$.orders[id == 2]`,
		`$["matrix"][0]`,
	} {
		want := mustEval(t, sel, doc)

		var visited udm.Array

		switch x := want.(type) {
		case udm.Null:
		case udm.Array:
			for _, e := range x {
				if !udm.IsNull(e) {
					visited = append(visited, e)
				}
			}
		default:
			visited = udm.Array{x}
		}

		got := mustEval(t, identity+"apply("+sel+")", doc)
		if len(visited) == 1 {
			got = udm.Array{got}
		}

		if !udm.Equal(got, udm.Array(visited)) && !(len(visited) == 0 && udm.Equal(got, udm.Array{})) {
			t.Errorf("apply(%s) = %s, selector gives %s", sel, FormatLiteral(got), FormatLiteral(want))
		}
	}
}

func TestTemplate_ElementPathsAfterSelectors(t *testing.T) {
	doc := WithInput("input", mustLiteral(t, `{shop: {orders: [{id: 1}, {id: 2}], owner: {id: 9}}}`))

	runEvalCases(t, []evalCase{
		{
			name:   "wildcard keeps property names",
			source: "template match = \"orders\" { size($) }\ntemplate match = \"owner\" { \"w\" }\napply($.shop.*)",
			want:   `[2, "w"]`,
		},
		{
			name:   "predicate keeps path",
			source: "template match = \"shop/orders\" { id }\napply($.shop.orders[id > 0])",
			want:   `[1, 2]`,
		},
		{
			name:   "descent keeps path",
			source: "template match = \"owner/id\" { \"owner\" }\ntemplate match = \"id\" { $ }\napply($..id)",
			want:   `[1, 2, "owner"]`,
		},
	}, doc)
}

func TestTemplate_BlockScope(t *testing.T) {
	runEvalCases(t, []evalCase{
		{
			name:   "visible inside the body",
			source: "function F(n) { template match = \"*\" { n * 10 }; apply([1, 2]) }\nF(3)",
			want:   `[30, 30]`,
		},
		{
			name: "restored after nested call",
			source: `function G(n) { template match = "*" { n }; [apply([0]), n > 0 ? G(n - 1) : null, apply([0])] }
G(1)`,
			want: `[1, [0, null, 0], 1]`,
		},
		{
			name:   "object bindings",
			source: "{ template match = \"*\" { \"in\" }; a: apply([1]) }",
			want:   `{a: "in"}`,
		},
	})

	expectSignal(t, `function F(n) { template match = "*" { n }; n }
let xs = map(range(1000), F)
apply([1])`, ErrNoMatchingTemplate)

	expectSignal(t, `let r = try { template match = "*" { 1 / 0 }; apply([1]) } catch (e) e
apply([1])`, ErrNoMatchingTemplate)

	s, err := ParseString(t.Context(), `template match = "*" { "top" }
function F(n) { template match = "*" { n }; n }
let xs = map(range(1000), F)
apply([1])`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	in := NewInterpreter()

	v, err := in.Exec(t.Context(), s)
	if err != nil {
		t.Fatalf("exec error: %v", err)
	}

	if !udm.Equal(v, udm.String("top")) {
		t.Errorf("got %s, want \"top\"", FormatLiteral(v))
	}

	if n := in.rules.Len(); n != 1 {
		t.Errorf("expected 1 registered rule after exec, got %d", n)
	}
}

func TestTemplate_Errors(t *testing.T) {
	opts := WithInput("input", mustLiteral(t, ordersDoc))

	expectSignal(t, "template match = \"nothing\" { 1 }\napply($.orders[0])", ErrNoMatchingTemplate, opts)
	expectSignal(t, `apply($.orders)`, ErrNoMatchingTemplate, opts)

	sig := expectSignal(t, "template match = \"*\" { apply($) }\napply($.orders[0])",
		ErrRecursionLimit, opts, WithMaxDepth(30))
	if sig.Pos.Line == 0 {
		t.Error("expected a position on the recursion signal")
	}
}

func TestTemplate_Catchable(t *testing.T) {
	v := mustEval(t, `try apply($.orders) catch (e) "none"`,
		WithInput("input", mustLiteral(t, ordersDoc)))

	if !udm.Equal(v, udm.String("none")) {
		t.Errorf("got %s, want \"none\"", FormatLiteral(v))
	}
}

func TestTemplateRegistry_Select(t *testing.T) {
	s, err := ParseString(t.Context(), `template match = "a/b" { 1 }
template match = "b" { 2 }
template match = "b" mode = "m" { 3 }
template match = "*" priority = 2.5 { 4 }
null`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var reg TemplateRegistry
	for _, d := range s.Body.Decls {
		reg.Add(d.(*TemplateDecl))
	}

	if reg.Len() != 4 {
		t.Fatalf("expected 4 rules, got %d", reg.Len())
	}

	tests := []struct {
		name  string
		path  []string
		mode  string
		index int
	}{
		{"path", []string{"a", "b"}, "", 0},
		{"explicit beats element", []string{"c", "b"}, "", 3},
		{"mode", []string{"a", "b"}, "m", 2},
		{"wildcard only", []string{"z"}, "", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := reg.Select(traced{value: udm.EmptyObject(), path: tt.path}, tt.mode)
			if r == nil {
				t.Fatal("expected a rule")
			}

			if r.Index != tt.index {
				t.Errorf("selected rule %d (%s), want %d", r.Index, r.Decl.Pattern, tt.index)
			}
		})
	}

	if r := reg.Select(traced{value: udm.Number(1), path: []string{"q"}}, "none"); r != nil {
		t.Errorf("expected no rule for an unknown mode, got %s", r.Decl.Pattern)
	}
}

func TestTemplatePattern_Parse(t *testing.T) {
	valid := []struct {
		pattern  string
		priority float64
	}{
		{"*", PriorityWildcard},
		{"item", PriorityElement},
		{"a/b", PriorityPath},
		{"/a", PriorityPath},
		{"item[@id]", PriorityAttribute},
		{"item[@id='1']", PriorityAttribute},
		{"@id", PriorityAttribute},
	}

	for _, tt := range valid {
		p, err := parseTemplatePattern(tt.pattern)
		if err != nil {
			t.Errorf("%s: %v", tt.pattern, err)

			continue
		}

		if p.priority() != tt.priority {
			t.Errorf("%s: priority %v, want %v", tt.pattern, p.priority(), tt.priority)
		}
	}

	for _, bad := range []string{"", "a//b", "item[id]", "item[@id=1]", "item[@]"} {
		if _, err := parseTemplatePattern(bad); err == nil {
			t.Errorf("%q: expected an error", bad)
		}
	}
}
