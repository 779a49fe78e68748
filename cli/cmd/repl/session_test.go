package repl

import (
	"errors"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/udx/lang"
	"github.com/ardnew/udx/log"
	"github.com/ardnew/udx/udm"
)

func testLogger() log.Logger { return log.Make(io.Discard) }

func testInterpreter(tb testing.TB) *lang.Interpreter {
	tb.Helper()

	orders, err := lang.ParseLiteral(`{id: 7, customer: {name: "Ada", city: "Oslo"}, items: [1, 2]}`)
	if err != nil {
		tb.Fatalf("literal error: %v", err)
	}

	inputs := udm.NewBuilder().Set("orders", orders).Build()

	return lang.NewInterpreter(lang.WithInputs(inputs))
}

func testSession(tb testing.TB) *session {
	tb.Helper()

	return newSession(testInterpreter(tb), testLogger())
}

func TestSession_Eval(t *testing.T) {
	sess := testSession(t)

	steps := []struct {
		line string
		want string
	}{
		{"1 + 2", "3"},
		{"let x = 10", "bound x"},
		{"x * 2", "20"},
		{"let x = 11", "ok"},
		{"x", "11"},
		{"def Even(n) => n == 0 ? true : Odd(n - 1)\ndef Odd(n) => n == 0 ? false : Even(n - 1)", "bound Even, Odd"},
		{"Even(4)", "true"},
		{"$orders.customer.name", `"Ada"`},
		{"$.id", "7"},
		{"{ let y = 2; y }", "2"},
		{"y ?? \"unbound\"", ""}, // y is local to the block above
	}

	for _, step := range steps {
		got, err := sess.eval(t.Context(), step.line)

		if step.want == "" {
			if err == nil {
				t.Errorf("%s: expected an error, got %s", step.line, got)
			}

			continue
		}

		if err != nil {
			t.Fatalf("%s: eval error: %v", step.line, err)
		}

		if got != step.want {
			t.Errorf("%s: got %s, want %s", step.line, got, step.want)
		}
	}
}

func TestSession_EvalErrors(t *testing.T) {
	sess := testSession(t)

	for _, line := range []string{"1 +", "1 / 0", "undefined + 1", "let = 3"} {
		if _, err := sess.eval(t.Context(), line); err == nil {
			t.Errorf("%s: expected an error", line)
		}
	}

	var sig *lang.Signal
	if _, err := sess.eval(t.Context(), "1 / 0"); !errors.As(err, &sig) {
		t.Errorf("expected a *lang.Signal, got %T", err)
	}

	// A failed line leaves earlier bindings intact.
	if _, err := sess.eval(t.Context(), "let kept = 1"); err != nil {
		t.Fatalf("eval error: %v", err)
	}

	if _, err := sess.eval(t.Context(), "kept + nope"); err == nil {
		t.Fatal("expected an error")
	}

	if got, err := sess.eval(t.Context(), "kept"); err != nil || got != "1" {
		t.Errorf("kept = %q, %v", got, err)
	}
}

func TestSession_Names(t *testing.T) {
	sess := testSession(t)

	for _, line := range []string{"let b = 1", "let a = 2"} {
		if _, err := sess.eval(t.Context(), line); err != nil {
			t.Fatalf("eval error: %v", err)
		}
	}

	names := sess.names()
	if !slices.Equal(names, []string{"a", "b"}) {
		t.Errorf("names() = %v", names)
	}

	top := sess.topLevel()
	for _, want := range []string{"a", "b", "$", "$orders", "upper", "match"} {
		if !slices.Contains(top, want) {
			t.Errorf("topLevel() missing %q", want)
		}
	}

	children := sess.children("$orders.customer")
	if !slices.Equal(children, []string{"name", "city"}) {
		t.Errorf("children() = %v", children)
	}

	for _, path := range []string{"$orders.items", "$orders.missing", "nope.x", "a"} {
		if c := sess.children(path); c != nil {
			t.Errorf("children(%q) = %v, want nil", path, c)
		}
	}
}

func TestSession_Preview(t *testing.T) {
	sess := testSession(t)

	for _, line := range []string{
		`let short = [1, 2]`,
		`let long = "` + strings.Repeat("x", 60) + `"`,
		`let f = (a, b) => a + b`,
	} {
		if _, err := sess.eval(t.Context(), line); err != nil {
			t.Fatalf("eval error: %v", err)
		}
	}

	tests := []struct {
		name string
		want string
	}{
		{"short", "[1, 2]"},
		{"long", `"` + strings.Repeat("x", 36) + "..."},
		{"f", "f(a, b)"},
		{"upper", "upper(text)"},
		{"$orders", `{id: 7, customer: {name: "Ada", city:...`},
		{"missing", ""},
	}

	for _, tt := range tests {
		if got := sess.preview(tt.name); got != tt.want {
			t.Errorf("preview(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}

	if !sess.isFunction("f") || !sess.isFunction("upper") || sess.isFunction("short") {
		t.Error("isFunction reported the wrong kinds")
	}
}
