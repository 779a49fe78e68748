package cmd

import (
	"errors"
	"testing"

	"github.com/ardnew/udx/lang"
)

func TestEval(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "data.json", `{"items": [{"n": 1}, {"n": 2}]}`)

	tests := []struct {
		name   string
		expr   string
		inputs []string
		want   string
	}{
		{"arithmetic", `1 + 2 * 3`, nil, "7\n"},
		{"string", `upper("udx")`, nil, "\"UDX\"\n"},
		{"object", `{a: [1, 2], b: null}`, nil, "{a: [1, 2], b: null}\n"},
		{"declarations", "let x = 4\nx * x", nil, "16\n"},
		{"input", `$..n |> sum`, []string{data}, "3\n"},
		{"named input", `size($d.items)`, []string{"d=" + data}, "2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, out := withStreams(t, "")

			e := &Eval{Expr: tt.expr}
			for _, s := range tt.inputs {
				e.Input = append(e.Input, mustInput(t, s))
			}

			if err := e.Run(ctx); err != nil {
				t.Fatalf("eval: %v", err)
			}

			if got := out.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEval_Format(t *testing.T) {
	ctx, out := withStreams(t, "")

	if err := (&Eval{Expr: `{a: 1, b: [true]}`, Format: "json"}).Run(ctx); err != nil {
		t.Fatalf("eval: %v", err)
	}

	decodeAs(t, "json", out.String(), `{a: 1, b: [true]}`)
}

func TestEval_StdinInput(t *testing.T) {
	ctx, out := withStreams(t, `{"v": "x"}`)

	if err := (&Eval{Expr: "input json\n---\n$.v"}).Run(ctx); err != nil {
		t.Fatalf("eval: %v", err)
	}

	if got := out.String(); got != "\"x\"\n" {
		t.Errorf("got %q", got)
	}
}

func TestEval_Errors(t *testing.T) {
	tests := []struct {
		name string
		eval Eval
		want error
	}{
		{"syntax", Eval{Expr: `1 +`}, lang.ErrParse},
		{"runtime", Eval{Expr: `1 / 0`}, lang.ErrDivisionByZero},
		{"format", Eval{Expr: `1`, Format: "toml"}, ErrWriteOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := withStreams(t, "")

			if err := tt.eval.Run(ctx); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
