package cmd

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/udx/format"
	"github.com/ardnew/udx/lang"
	"github.com/ardnew/udx/udm"
)

const fmtSource = "input json\n---\nlet   total=sum( $.items )\n{total:total}"

func TestFmt_Literal(t *testing.T) {
	tests := []struct {
		indent int
		want   string
	}{
		{0, "input json\n---\nlet total = sum($.items); { total: total }\n"},
	}

	for _, tt := range tests {
		ctx, out := withStreams(t, fmtSource)

		l := &Literal{SourceArgs{Indent: tt.indent, Source: stdinSource}}
		if err := l.Run(ctx); err != nil {
			t.Fatalf("fmt: %v", err)
		}

		if got := out.String(); got != tt.want {
			t.Errorf("indent %d:\ngot  %q\nwant %q", tt.indent, got, tt.want)
		}
	}
}

func TestFmt_LiteralStable(t *testing.T) {
	for _, indent := range []int{0, 2, 4} {
		first := runFmt(t, &Literal{SourceArgs{Indent: indent, Source: stdinSource}}, fmtSource)
		second := runFmt(t, &Literal{SourceArgs{Indent: indent, Source: stdinSource}}, first)

		if first != second {
			t.Errorf("indent %d: not stable:\n%s\n%s", indent, first, second)
		}
	}
}

type runner interface {
	Run(ctx context.Context) error
}

func runFmt(t *testing.T, cmd runner, stdin string) string {
	t.Helper()

	ctx, out := withStreams(t, stdin)
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("fmt: %v", err)
	}

	return out.String()
}

func TestFmt_Tree(t *testing.T) {
	args := SourceArgs{Indent: 2, Source: stdinSource}

	t.Run("json", func(t *testing.T) {
		out := runFmt(t, &JSON{args}, fmtSource)

		tree, err := format.Decode(t.Context(), "json", strings.NewReader(out), nil)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}

		obj, ok := tree.(*udm.Object)
		if !ok {
			t.Fatalf("expected an object, got %s", lang.FormatLiteral(tree))
		}

		body, _ := obj.Get("body")
		if node, _ := body.(*udm.Object).Get("node"); !udm.Equal(node, udm.String("Block")) {
			t.Errorf("body node = %s", lang.FormatLiteral(node))
		}
	})

	t.Run("yaml", func(t *testing.T) {
		out := runFmt(t, &YAML{args}, fmtSource)

		for _, want := range []string{"header:", "node: Block", "format: json"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in:\n%s", want, out)
			}
		}
	})

	t.Run("ast", func(t *testing.T) {
		out := runFmt(t, &AST{args}, fmtSource)

		if !strings.HasPrefix(out, "Script\n") || !strings.Contains(out, "Let: ") {
			t.Errorf("unexpected outline:\n%s", out)
		}
	})
}

func TestFmt_File(t *testing.T) {
	path := writeFile(t, t.TempDir(), "s.udx", "[1,2]|>sum")

	if got := runFmt(t, &Literal{SourceArgs{Source: path}}, ""); got != "[1, 2] |> sum\n" {
		t.Errorf("got %q", got)
	}
}

func TestFmt_Errors(t *testing.T) {
	ctx, _ := withStreams(t, "{a: }")

	if err := (&Literal{SourceArgs{Source: stdinSource}}).Run(ctx); !errors.Is(err, lang.ErrParse) {
		t.Errorf("expected lang.ErrParse, got %v", err)
	}

	if err := (&AST{SourceArgs{Source: "/nonexistent/s.udx"}}).Run(ctx); !errors.Is(err, ErrReadInput) {
		t.Errorf("expected ErrReadInput, got %v", err)
	}
}
