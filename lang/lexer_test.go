package lang

import (
	"errors"
	"testing"
)

func TestLex_Tokens(t *testing.T) {
	toks, err := Lex(`let total = $orders..price ?? 0 |> sum // trailing`)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	want := []struct {
		kind TokenKind
		text string
	}{
		{TokenKeyword, "let"},
		{TokenIdent, "total"},
		{TokenPunct, "="},
		{TokenInput, "orders"},
		{TokenPunct, ".."},
		{TokenIdent, "price"},
		{TokenPunct, "??"},
		{TokenNumber, "0"},
		{TokenPunct, "|>"},
		{TokenIdent, "sum"},
		{TokenEOF, ""},
	}

	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(toks), toks)
	}

	for i, w := range want {
		if toks[i].Kind != w.kind || toks[i].Text != w.text {
			t.Errorf("token %d: expected %s %q, got %s %q",
				i, w.kind, w.text, toks[i].Kind, toks[i].Text)
		}
	}
}

func TestLex_Strings(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"double quoted", `"abc"`, "abc"},
		{"single quoted", `'it"s'`, `it"s`},
		{"escapes", `"a\nb\tc\\d\"e"`, "a\nb\tc\\d\"e"},
		{"control escapes", `"\b\f\r"`, "\b\f\r"},
		{"unicode escape", `"caf\u00e9"`, "café"},
		{"surrogate pair", `"\ud83d\ude00"`, "\U0001F600"},
		{"lone surrogate", `"\ud83d"`, "\ufffd"},
		{"byte escape", `"a\xffb\x41"`, "a\xffbA"},
		{"raw utf-8", `"日本"`, "日本"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Lex(tt.source)
			if err != nil {
				t.Fatalf("lex error: %v", err)
			}

			if toks[0].Kind != TokenString {
				t.Fatalf("expected string token, got %s", toks[0].Kind)
			}

			if toks[0].Str != tt.want {
				t.Errorf("expected %q, got %q", tt.want, toks[0].Str)
			}
		})
	}
}

func TestLex_Numbers(t *testing.T) {
	tests := []struct {
		source string
		want   float64
	}{
		{"0", 0},
		{"42", 42},
		{"3.25", 3.25},
		{"1e3", 1000},
		{"2.5E-1", 0.25},
		{"1e+21", 1e21},
	}

	for _, tt := range tests {
		toks, err := Lex(tt.source)
		if err != nil {
			t.Errorf("%s: lex error: %v", tt.source, err)

			continue
		}

		if toks[0].Kind != TokenNumber || toks[0].Num != tt.want {
			t.Errorf("%s: expected %v, got %s %v", tt.source, tt.want, toks[0].Kind, toks[0].Num)
		}
	}
}

func TestLex_MemberAfterNumber(t *testing.T) {
	// "1.x" is not a fraction: the dot must be followed by a digit.
	toks, err := Lex("a[1].b")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	if toks[2].Kind != TokenNumber || toks[2].Text != "1" {
		t.Errorf("expected number 1, got %s %q", toks[2].Kind, toks[2].Text)
	}
}

func TestLex_Comments(t *testing.T) {
	toks, err := Lex("# hash\n1 /* block\nspanning */ + // line\n2")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	if len(toks) != 4 {
		t.Fatalf("expected 4 tokens, got %d: %v", len(toks), toks)
	}

	if !toks[2].NewlineBefore {
		t.Error("expected token after line comment to start a line")
	}
}

func TestLex_Separator(t *testing.T) {
	toks, err := Lex("input json\n---\n$ - -1")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	if toks[2].Kind != TokenSeparator {
		t.Errorf("expected separator, got %s %q", toks[2].Kind, toks[2].Text)
	}

	for _, tok := range toks[3:] {
		if tok.Kind == TokenSeparator {
			t.Errorf("unexpected separator at %s", tok.Pos)
		}
	}
}

func TestLex_Positions(t *testing.T) {
	toks, err := Lex("a\n  bc")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	if p := toks[1].Pos; p.Line != 2 || p.Column != 3 || p.Offset != 4 {
		t.Errorf("expected 2:3 at offset 4, got %s at offset %d", p, p.Offset)
	}
}

func TestLex_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"unterminated string", `"abc`},
		{"newline in string", "\"a\nb\""},
		{"invalid escape", `"\q"`},
		{"short unicode escape", `"\u12"`},
		{"short byte escape", `"\x4"`},
		{"non-hex byte escape", `"\xzz"`},
		{"unterminated comment", "/* open"},
		{"number suffix", "12abc"},
		{"bare exponent", "1e"},
		{"unknown character", "a ~ b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Lex(tt.source)
			if !errors.Is(err, ErrLex) {
				t.Fatalf("expected ErrLex, got %v", err)
			}
		})
	}
}

func TestIsKeyword(t *testing.T) {
	for _, kw := range []string{"let", "function", "def", "template", "match", "apply", "null"} {
		if !IsKeyword(kw) {
			t.Errorf("expected %q to be a keyword", kw)
		}
	}

	for _, id := range []string{"map", "input", "output", "Let"} {
		if IsKeyword(id) {
			t.Errorf("expected %q not to be a keyword", id)
		}
	}
}
