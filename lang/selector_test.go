package lang

import "testing"

const storeDoc = `{
	store: {
		name: "s",
		books: [
			{title: "A", price: 10, tags: ["x"]},
			{@lang: "en", title: "B", price: 25}
		],
		owner: null
	}
}`

func TestSelector_NullSafety(t *testing.T) {
	opts := WithInput("input", mustLiteral(t, storeDoc))

	runEvalCases(t, []evalCase{
		{"member", `$.store.name`, `"s"`},
		{"missing member", `$.store.missing.deeper`, `null`},
		{"through null", `$.store.owner.name`, `null`},
		{"safe member", `$.store?.name`, `"s"`},
		{"member of array", `$.store.books.title`, `null`},
		{"member of scalar", `"text".name`, `null`},
		{"member of null literal", `null.a.b`, `null`},
		{"index", `$.store.books[0].title`, `"A"`},
		{"negative index", `$.store.books[-1].title`, `"B"`},
		{"index out of range", `$.store.books[5]`, `null`},
		{"negative out of range", `$.store.books[-3]`, `null`},
		{"fractional index", `$.store.books[1.5]`, `null`},
		{"index of scalar", `5[0]`, `null`},
		{"string index", `$.store["name"]`, `"s"`},
		{"string index on array", `$.store.books["title"]`, `null`},
		{"attribute", `$.store.books[1].@lang`, `"en"`},
		{"missing attribute", `$.store.books[0].@lang`, `null`},
		{"attribute of scalar", `$.store.name.@lang`, `null`},
	}, opts)
}

func TestSelector_Wildcard(t *testing.T) {
	opts := WithInput("input", mustLiteral(t, storeDoc))

	runEvalCases(t, []evalCase{
		{"object values", `size($.store.*)`, `3`},
		{"object values order", `$.store.*[0]`, `"s"`},
		{"array", `$.store.books[*] |> size`, `2`},
		{"scalar", `5[*]`, `[]`},
	}, opts)
}

func TestSelector_Predicate(t *testing.T) {
	opts := WithInput("input", mustLiteral(t, storeDoc))

	runEvalCases(t, []evalCase{
		{"comparison", `$.store.books[price > 15] |> map((b) => b.title)`, `["B"]`},
		{"attribute", `$.store.books[@lang == "en"] |> size`, `1`},
		{"context", `$.store.books[$.price < 15][0].title`, `"A"`},
		{"none", `$.store.books[price > 100]`, `[]`},
		{"boolean literal", `$.store.books[true] |> size`, `2`},
		{"function in predicate", `$.store.books[size($.tags ?? []) > 0][0].title`, `"A"`},
		{"call is an index", `$.store.books[size([1])].title`, `"B"`},
		{"outer binding", `{ let limit = 20; $.store.books[price < limit] |> size }`, `1`},
		{"object kept", `{a: 1}[a == 1]`, `{a: 1}`},
		{"object dropped", `{a: 1}[a == 2]`, `null`},
		{"scalar items", `[1, 5, 10][$ > 3]`, `[5, 10]`},
	}, opts)
}

func TestSelector_RecursiveDescent(t *testing.T) {
	opts := WithInput("input", mustLiteral(t, storeDoc))

	runEvalCases(t, []evalCase{
		{"all titles", `$..title`, `["A", "B"]`},
		{"nested arrays", `$..tags`, `[["x"]]`},
		{"missing", `$..nothing`, `[]`},
		{"pre-order", `{a: {a: 1}}..a`, `[{a: 1}, 1]`},
		{"through arrays", `[[{k: 1}], {k: 2, x: {k: 3}}]..k`, `[1, 2, 3]`},
		{"scalar", `5..a`, `[]`},
	}, opts)
}

func TestSelector_PredicateFailurePropagates(t *testing.T) {
	expectSignal(t, `[1, 2][$ / 0 > 1]`, ErrDivisionByZero)
}
