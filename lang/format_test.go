package lang

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ardnew/udx/format"
	"github.com/ardnew/udx/udm"
)

func formatScript(t *testing.T, source string, indent int) string {
	t.Helper()

	s, err := ParseString(t.Context(), source)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var buf bytes.Buffer
	if err := s.Format(t.Context(), &buf, indent); err != nil {
		t.Fatalf("format error: %v", err)
	}

	return buf.String()
}

func TestFormat_Simple(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"number", `1.50`, "1.50\n"},
		{"string", `'it"s'`, `"it\"s"` + "\n"},
		{"precedence", `1 + 2 * 3`, "1 + 2 * 3\n"},
		{"group", `(1 + 2) * 3`, "(1 + 2) * 3\n"},
		{"declarations", "let x = 1\nx + 2", "let x = 1; x + 2\n"},
		{"function", "def Twice(n: number) => n * 2\nTwice(2)", "function Twice(n: number) => n * 2; Twice(2)\n"},
		{"block", `{ let y = 20; [y] }`, "{ let y = 20; [y] }\n"},
		{"object", `{a: 1, "b c": [1, 2]}`, `{ a: 1, "b c": [1, 2] }` + "\n"},
		{"empty object", `{}`, "{}\n"},
		{"spread", `{...$, @id: "x", [k]: 1}`, `{ ...$, @id: "x", [k]: 1 }` + "\n"},
		{"selectors", `$.a?.b[0][x > 1]..c`, "$.a?.b[0][x > 1]..c\n"},
		{"wildcard", `$.a.*`, "$.a[*]\n"},
		{"pipe", `$ |> keys |> (ks) => size(ks)`, "$ |> keys |> ((ks) => size(ks))\n"},
		{"ternary", `a ?? b ? 1 : 2`, "a ?? b ? 1 : 2\n"},
		{"try", `try { 1 / 0 } catch (e) e`, "try { 1 / 0 } catch (e) e\n"},
		{"match", `match x { 1 => "one", n if n > 1 => "many", _ => "none" }`,
			`match x { 1 => "one", n if n > 1 => "many", _ => "none" }` + "\n"},
		{"template", "template match = \"a/b\" priority = 2 { apply() }\napply($, \"m\")",
			`template match = "a/b" priority = 2 => { apply() }; apply($, "m")` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatScript(t, tt.input, 0); got != tt.want {
				t.Errorf("format mismatch:\nwant: %q\ngot:  %q", tt.want, got)
			}
		})
	}
}

func TestFormat_Indent(t *testing.T) {
	got := formatScript(t, `{a: 1, b: { let c = 2; c }}`, 2)
	want := "{\n  a: 1,\n  b: {\n    let c = 2;\n    c\n  }\n}\n"

	if got != want {
		t.Errorf("format mismatch:\nwant: %q\ngot:  %q", want, got)
	}
}

func TestFormat_Header(t *testing.T) {
	source := "%udx 1.0\ninput csv {headers: false}, lookup json\noutput yaml\n---\n$"
	want := "%udx \"1.0\"\ninput csv { headers: false }\ninput lookup json\noutput yaml\n---\n$\n"

	if got := formatScript(t, source, 0); got != want {
		t.Errorf("format mismatch:\nwant: %q\ngot:  %q", want, got)
	}
}

func TestFormat_Stable(t *testing.T) {
	sources := []string{
		`mapEntries({a: 1, b: 2}, (k, v) => {key: upper(k), value: v * 2})`,
		`-(1 + 2) - -3`,
		`!(a && b) || c`,
		`if (a) if (b) 1 else 2`,
		`if (a) (if (b) 1) else 2`,
		`a - (b - c)`,
		`(a ? b : c) ? d : e`,
		`((x) => x)(1)`,
		`{...{a: 1, b: 2}, b: 3}`,
		"def Even(n) => n == 0 ? true : Odd(n - 1)\ndef Odd(n) => n == 0 ? false : Even(n - 1)\nEven(10)",
		"input json\n---\n$..price |> sum",
	}

	for _, src := range sources {
		for _, indent := range []int{0, 2} {
			first := formatScript(t, src, indent)
			second := formatScript(t, first, indent)

			if first != second {
				t.Errorf("%s: format not stable at indent %d:\n%q\n%q", src, indent, first, second)
			}
		}
	}
}

func TestFormat_PreservesMeaning(t *testing.T) {
	sources := []string{
		`1 - (2 - 3)`,
		`2 * (3 + 4) % 5`,
		`{ let a = null; a ?? 1 ? "x" : "y" }`,
		`[1, 2, 3] |> map((x) => x * x) |> sum`,
		`if (false) if (true) 1 else 2`,
	}

	for _, src := range sources {
		want := mustEval(t, src)
		got := mustEval(t, formatScript(t, src, 0))

		if !udm.Equal(got, want) {
			t.Errorf("%s: formatted source evaluates to %s, want %s", src, FormatLiteral(got), FormatLiteral(want))
		}
	}
}

func TestFormatNode(t *testing.T) {
	n, err := ParseExpression(`a.b + c[0] * -d`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if got := FormatNode(n); got != "a.b + c[0] * -d" {
		t.Errorf("FormatNode = %q", got)
	}
}

func TestFormat_JSON(t *testing.T) {
	s, err := ParseString(t.Context(), "let x = 1\nx + 2")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var buf bytes.Buffer
	if err := s.FormatJSON(t.Context(), &buf, 2); err != nil {
		t.Fatalf("format error: %v", err)
	}

	tree, err := format.Decode(context.Background(), "json", &buf, nil)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}

	checks := []struct {
		path []udm.Value
		want udm.Value
	}{
		{[]udm.Value{udm.String("body"), udm.String("node")}, udm.String("Block")},
		{
			[]udm.Value{udm.String("body"), udm.String("decls"), udm.Number(0), udm.String("node")},
			udm.String("Let"),
		},
		{
			[]udm.Value{udm.String("body"), udm.String("decls"), udm.Number(0), udm.String("name")},
			udm.String("x"),
		},
		{[]udm.Value{udm.String("body"), udm.String("result"), udm.String("op")}, udm.String("+")},
		{
			[]udm.Value{udm.String("body"), udm.String("result"), udm.String("r"), udm.String("value")},
			udm.Number(2),
		},
		{
			[]udm.Value{udm.String("body"), udm.String("result"), udm.String("l"), udm.String("name")},
			udm.String("x"),
		},
	}

	for _, c := range checks {
		got, err := get([]udm.Value{tree, udm.Array(c.path)})
		if err != nil {
			t.Fatalf("get: %v", err)
		}

		if !udm.Equal(got, c.want) {
			t.Errorf("%s: got %s, want %s", FormatLiteral(udm.Array(c.path)), FormatLiteral(got), FormatLiteral(c.want))
		}
	}
}

func TestFormat_YAML(t *testing.T) {
	s, err := ParseString(t.Context(), "input json\n---\n$.a")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var buf bytes.Buffer
	if err := s.FormatYAML(t.Context(), &buf, 2); err != nil {
		t.Fatalf("format error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"header:", "node: Member", "name: a", "format: json"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in YAML tree:\n%s", want, out)
		}
	}
}

func TestPrint(t *testing.T) {
	s, err := ParseString(t.Context(), "let x = 1\nx + 2")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var buf bytes.Buffer
	if err := s.Print(&buf); err != nil {
		t.Fatalf("print error: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "Script\n  body\n    Block") {
		t.Errorf("unexpected outline head:\n%s", out)
	}

	for _, want := range []string{"Let: ", `name="x"`, "Binary: ", `op="+"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in outline:\n%s", want, out)
		}
	}
}
