package lang

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ardnew/udx/udm"
)

// FuzzLex tests the lexer with random inputs to find edge cases.
func FuzzLex(f *testing.F) {
	f.Add("foo")
	f.Add("123")
	f.Add(`"string"`)
	f.Add(`'single'`)
	f.Add("// comment\n")
	f.Add("/* block */")
	f.Add("# hash")
	f.Add("-123.456e-10")
	f.Add(`"escaped\"quoteé"`)
	f.Add("$input..price ?? 0 |> sum")
	f.Add("input json\n---\n$")

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		defer func() {
			if r := recover(); r != nil {
				t.Errorf("lexer panicked on input %q: %v", input, r)
			}
		}()

		toks, err := Lex(input)
		if err != nil {
			if !errors.Is(err, ErrLex) {
				t.Errorf("expected ErrLex, got %v", err)
			}

			return
		}

		if len(toks) == 0 || toks[len(toks)-1].Kind != TokenEOF {
			t.Fatal("token stream must end with EOF")
		}

		last := -1
		for i, tok := range toks {
			if tok.Pos.Offset < last || tok.Pos.Offset > len(input) {
				t.Errorf("token %d has invalid offset %d", i, tok.Pos.Offset)
			}

			last = tok.Pos.Offset
		}
	})
}

// FuzzParse tests the parser with random inputs to find edge cases.
func FuzzParse(f *testing.F) {
	f.Add("{}")
	f.Add("{a: 1, b: [1, 2, 3]}")
	f.Add("{ let x = 1; x }")
	f.Add("let f = (x) => x * 2\nf(3)")
	f.Add("def F(n) => n < 2 ? n : F(n - 1)\nF(5)")
	f.Add(`match $ { "a" => 1, n if n > 2 => n, _ => 0 }`)
	f.Add(`template match = "a/b" priority = 2 { apply() }` + "\napply($)")
	f.Add("try { 1 / 0 } catch (e) { e }")
	f.Add("$.a?.b[0][x > 1]..c.*")
	f.Add("%udx 1.0\ninput csv {headers: true}\noutput json\n---\n$")

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		defer func() {
			if r := recover(); r != nil {
				t.Errorf("parser panicked on input %q: %v", input, r)
			}
		}()

		s, err := parse(context.Background(), input, makeConfig())
		if err != nil {
			var sig *Signal
			if !errors.As(err, &sig) {
				t.Errorf("expected *Signal, got %T: %v", err, err)
			}

			return
		}

		// Formatted output must parse back to the same formatted output.
		var first strings.Builder
		if err := s.Format(context.Background(), &first, 0); err != nil {
			t.Fatalf("format error: %v", err)
		}

		again, err := parse(context.Background(), first.String(), makeConfig())
		if err != nil {
			t.Fatalf("formatted source %q does not parse: %v", first.String(), err)
		}

		var second strings.Builder
		if err := again.Format(context.Background(), &second, 0); err != nil {
			t.Fatalf("format error: %v", err)
		}

		if first.String() != second.String() {
			t.Errorf("format is not stable:\n%s\n%s", first.String(), second.String())
		}
	})
}

// FuzzLiteralRoundTrip checks that every literal formats and reads back to
// an equal value.
func FuzzLiteralRoundTrip(f *testing.F) {
	f.Add(`null`)
	f.Add(`[1, -2.5, "x"]`)
	f.Add(`{a: {b: [true]}, "c d": 1e+21}`)
	f.Add(`{@id: "1", v: "\n"}`)

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		v, err := ParseLiteral(input)
		if err != nil {
			return
		}

		out := FormatLiteral(v)

		again, err := ParseLiteral(out)
		if err != nil {
			t.Fatalf("formatted literal %q does not parse: %v", out, err)
		}

		if !udm.Equal(v, again) {
			t.Errorf("round trip changed %q into %q", out, FormatLiteral(again))
		}
	})
}
