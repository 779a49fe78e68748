package udm

import (
	"math"
	"slices"
	"testing"
	"time"
)

func TestEqual(t *testing.T) {
	obj := func(name string, kv ...any) *Object {
		b := NewBuilder().Named(name)
		for i := 0; i < len(kv); i += 2 {
			b.Set(kv[i].(string), kv[i+1].(Value))
		}

		return b.Build()
	}

	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"nil is null", nil, Null{}, true},
		{"numbers", Number(1), Number(1), true},
		{"number and string", Number(1), String("1"), false},
		{"nan", Number(math.NaN()), Number(math.NaN()), false},
		{"arrays", Array{Number(1), Array{}}, Array{Number(1), Array{}}, true},
		{"array length", Array{Number(1)}, Array{}, false},
		{"objects", obj("", "a", Number(1)), obj("", "a", Number(1)), true},
		{"object order", obj("", "a", Null{}, "b", Null{}), obj("", "b", Null{}, "a", Null{}), false},
		{"object name", obj("x", "a", Null{}), obj("y", "a", Null{}), false},
		{
			"attributes",
			NewBuilder().SetAttr("k", "1").Build(),
			NewBuilder().SetAttr("k", "2").Build(),
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v", tt.a, tt.b, got)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	values := []Value{
		String("b"),
		Number(2),
		EmptyObject(),
		Null{},
		Array{Number(1)},
		Bool(true),
		String("a"),
		Bool(false),
		Number(-1),
		Array{},
	}

	slices.SortStableFunc(values, Compare)

	want := []Value{
		Null{}, Bool(false), Bool(true), Number(-1), Number(2),
		String("a"), String("b"), Array{}, Array{Number(1)}, EmptyObject(),
	}

	if !slices.EqualFunc(values, want, Equal) {
		t.Errorf("unexpected order: %v", Array(values))
	}
}

type point struct{ X, Y int }

func (p point) String() string { return "point" }

func TestFromNative(t *testing.T) {
	when := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	n := 5

	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null{}},
		{"int64", int64(7), Number(7)},
		{"uint8", uint8(7), Number(7)},
		{"bytes", []byte("hi"), String("hi")},
		{"time", when, String("2024-01-02T03:04:05Z")},
		{"stringer", point{1, 2}, String("point")},
		{"slice", []any{1, "a", nil}, Array{Number(1), String("a"), Null{}}},
		{"typed slice", []int{1, 2}, Array{Number(1), Number(2)}},
		{
			"map sorted",
			map[string]any{"b": 1, "a": true},
			NewBuilder().Set("a", Bool(true)).Set("b", Number(1)).Build(),
		},
		{
			"typed map",
			map[string]int{"z": 1, "y": 2},
			NewBuilder().Set("y", Number(2)).Set("z", Number(1)).Build(),
		},
		{"pointer", &n, Number(5)},
		{"nil pointer", (*int)(nil), Null{}},
		{"value", String("x"), String("x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromNative(tt.in); !Equal(got, tt.want) {
				t.Errorf("FromNative(%#v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestToNative(t *testing.T) {
	v := NewBuilder().
		SetAttr("id", "7").
		Set("n", Number(2)).
		Set("f", Number(2.5)).
		Set("list", Array{Null{}, Bool(true)}).
		Build()

	got, ok := ToNative(v).(map[string]any)
	if !ok {
		t.Fatalf("expected a map, got %T", ToNative(v))
	}

	if got["@id"] != "7" {
		t.Errorf("expected attribute key, got %v", got["@id"])
	}

	if got["n"] != 2 {
		t.Errorf("expected int 2, got %#v", got["n"])
	}

	if got["f"] != 2.5 {
		t.Errorf("expected float 2.5, got %#v", got["f"])
	}

	list, _ := got["list"].([]any)
	if len(list) != 2 || list[0] != nil || list[1] != true {
		t.Errorf("unexpected list %#v", got["list"])
	}

	if back := FromNative(ToNative(Array{Number(1), String("a")})); !Equal(back, Array{Number(1), String("a")}) {
		t.Errorf("round trip through native values changed %v", back)
	}
}
