package repl

import (
	"slices"
	"strings"
	"testing"
)

func TestDetectFunctionCall(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		cursor     int
		wantName   string
		wantIndex  int
		wantInCall bool
	}{
		{"no call", "greeting", 8, "", 0, false},
		{"open paren", "add(", 4, "add", 0, true},
		{"first arg", "add(1", 5, "add", 0, true},
		{"second arg", "add(1,", 6, "add", 1, true},
		{"second arg with value", "add(1, 2", 8, "add", 1, true},
		{"member callee", "$.fmt(a, ", 9, "$.fmt", 1, true},
		{"nested call inner", "map(xs, upper(", 14, "upper", 0, true},
		{"nested call closed", "map(xs, upper(x), ", 18, "map", 2, true},
		{"comma in array", "sum([1, 2, 3", 12, "", 0, false},
		{"after array", "join([1, 2], ", 13, "join", 1, true},
		{"comma in object", "keys({a: 1, b: 2}, ", 19, "keys", 1, true},
		{"comma in string", `split("a,b", `, 13, "split", 1, true},
		{"inside string", `upper("a, b`, 11, "", 0, false},
		{"escaped quote", `upper("a\", b", `, 16, "upper", 1, true},
		{"closed call", "add(1, 2)", 9, "", 0, false},
		{"grouping paren", "(1 + ", 5, "", 0, false},
		{"if condition", "if (x, ", 7, "", 0, false},
		{"catch binding", "try { 1 } catch (e", 18, "", 0, false},
		{"lambda params", "map(xs, (x, ", 12, "", 0, false},
		{"cursor mid input", "add(1, 2)", 5, "add", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectFunctionCall(tt.input, tt.cursor)

			if got.inCall != tt.wantInCall {
				t.Fatalf("detectFunctionCall(%q, %d).inCall = %v, want %v",
					tt.input, tt.cursor, got.inCall, tt.wantInCall)
			}

			if !got.inCall {
				return
			}

			if got.name != tt.wantName {
				t.Errorf("name = %q, want %q", got.name, tt.wantName)
			}

			if got.argIndex != tt.wantIndex {
				t.Errorf("argIndex = %d, want %d", got.argIndex, tt.wantIndex)
			}
		})
	}
}

func TestSignature(t *testing.T) {
	sess := testSession(t)

	for _, line := range []string{
		"def Scale(n: number, by) => n * by",
		"let twice = (x) => x * 2",
		"let limit = 3",
	} {
		if _, err := sess.eval(t.Context(), line); err != nil {
			t.Fatalf("%s: eval error: %v", line, err)
		}
	}

	tests := []struct {
		name       string
		wantSig    string
		wantParams []string
	}{
		{"upper", "upper(text)", []string{"text"}},
		{"map", "map(array, fn)", []string{"array", "fn"}},
		{"Scale", "Scale(n: number, by)", []string{"n: number", "by"}},
		{"twice", "twice(x)", []string{"x"}},
		{"limit", "", nil},
		{"undefined", "", nil},
		{"$orders.customer", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, params := sess.signature(tt.name)

			if sig != tt.wantSig {
				t.Errorf("signature(%q) = %q, want %q", tt.name, sig, tt.wantSig)
			}

			if !slices.Equal(params, tt.wantParams) {
				t.Errorf("signature(%q) params = %v, want %v", tt.name, params, tt.wantParams)
			}
		})
	}
}

func TestRenderSignatureHint(t *testing.T) {
	tests := []struct {
		name       string
		signature  string
		params     []string
		currentArg int
	}{
		{"no params", "now()", nil, 0},
		{"first param", "add(x, y)", []string{"x", "y"}, 0},
		{"second param", "add(x, y)", []string{"x", "y"}, 1},
		{"past last param", "add(x, y)", []string{"x", "y"}, 4},
		{"typed param", "Scale(n: number)", []string{"n: number"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderSignatureHint(tt.signature, tt.params, tt.currentArg)

			// Styling is visual; the function name must survive rendering.
			name, _, _ := strings.Cut(tt.signature, "(")
			if !strings.Contains(got, name) {
				t.Errorf("renderSignatureHint(%q) = %q, missing %q", tt.signature, got, name)
			}
		})
	}

	if got := renderSignatureHint("", nil, 0); got != "" {
		t.Errorf("expected empty hint for empty signature, got %q", got)
	}
}

func BenchmarkDetectFunctionCall(b *testing.B) {
	input := `map($orders.items, (item) => {name: upper(item.name), tags: join(item.tags, ", ")`

	for b.Loop() {
		detectFunctionCall(input, len(input))
	}
}

func BenchmarkSignature(b *testing.B) {
	sess := newSession(testInterpreter(b), testLogger())

	for b.Loop() {
		sess.signature("mapEntries")
	}
}
