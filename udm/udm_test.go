package udm

import (
	"math"
	"testing"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{Null{}, "null"},
		{Bool(true), "boolean"},
		{Number(1), "number"},
		{String(""), "string"},
		{Array{}, "array"},
		{EmptyObject(), "object"},
	}

	for _, tt := range tests {
		if got := tt.value.Kind().String(); got != tt.want {
			t.Errorf("%T: expected %q, got %q", tt.value, tt.want, got)
		}
	}

	if got := Kind(200).String(); got != "unknown" {
		t.Errorf("expected unknown, got %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    float64
		want string
	}{
		{0, "0"},
		{-3, "-3"},
		{2.5, "2.5"},
		{1e20, "100000000000000000000"},
		{1e21, "1e+21"},
		{1.5e-7, "1.5e-07"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
	}

	for _, tt := range tests {
		if got := FormatNumber(tt.n); got != tt.want {
			t.Errorf("FormatNumber(%v): expected %q, got %q", tt.n, tt.want, got)
		}
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", `"plain"`},
		{`a"b\c`, `"a\"b\\c"`},
		{"\n\t\r\b\f", `"\n\t\r\b\f"`},
		{"café", `"café"`},
		{"\x00", `"\u0000"`},
		{"\xff", `"\xff"`},
		{"a\xc3b", `"a\xc3b"`},
		{"\ufffd", "\"\ufffd\""},
		{" ", `" "`},
	}

	for _, tt := range tests {
		if got := Quote(tt.in); got != tt.want {
			t.Errorf("Quote(%q): expected %s, got %s", tt.in, tt.want, got)
		}
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{nil, ""},
		{Null{}, ""},
		{String("a b"), "a b"},
		{Number(4), "4"},
		{Bool(false), "false"},
		{Array{Number(1), String("x")}, `[1, "x"]`},
	}

	for _, tt := range tests {
		if got := Text(tt.value); got != tt.want {
			t.Errorf("Text(%v): expected %q, got %q", tt.value, tt.want, got)
		}
	}
}

func TestTruthy(t *testing.T) {
	falsy := []Value{nil, Null{}, Bool(false), Number(0), String("")}
	truthy := []Value{
		Bool(true), Number(-1), Number(math.NaN()), String("0"),
		Array{}, EmptyObject(),
	}

	for _, v := range falsy {
		if Truthy(v) {
			t.Errorf("expected %v to be falsy", v)
		}
	}

	for _, v := range truthy {
		if !Truthy(v) {
			t.Errorf("expected %v to be truthy", v)
		}
	}
}

func TestInt(t *testing.T) {
	tests := []struct {
		value Value
		want  int
		ok    bool
	}{
		{Number(3), 3, true},
		{Number(-2), -2, true},
		{Number(1.5), 0, false},
		{Number(math.Inf(1)), 0, false},
		{String("3"), 0, false},
	}

	for _, tt := range tests {
		got, ok := Int(tt.value)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Int(%v): expected (%d, %v), got (%d, %v)", tt.value, tt.want, tt.ok, got, ok)
		}
	}
}

func TestIsNull(t *testing.T) {
	if !IsNull(nil) || !IsNull(Null{}) {
		t.Error("expected nil and Null to be null")
	}

	if IsNull(Number(0)) || IsNull(String("")) {
		t.Error("expected zero values not to be null")
	}
}
