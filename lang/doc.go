// Package lang implements udx, a small functional language for transforming
// structured data. Every input format decodes into the same value model
// (package udm), a script computes a new value from it, and the result is
// encoded into any output format.
//
// # Scripts
//
// A script is an optional header, terminated by a line holding only "---",
// followed by a body:
//
//	%udx 1.0
//	input orders json, customers xml
//	output yaml
//	---
//	let big = $orders[total > 100]
//	{ count: size(big), ids: big |> map((o) => o.id) }
//
// The body is a sequence of declarations separated by ';' or line breaks,
// then one result expression. Declarations are:
//
//	let name[: Type] = expr
//	function Name(params)[: Type] => expr
//	template match = "pattern" [priority = n] [mode = "m"] { body }
//
// User functions start with an uppercase letter; lowercase names call the
// host library (see [BuiltinNames]) unless a function of that name is bound.
// Functions may refer to themselves, and a run of adjacent function
// declarations may refer to each other.
//
// # Expressions
//
//	null true 1.5 "text" [1, ...xs] {a: 1, "b c": 2, [k]: v, @id: "7", ...o}
//	$ $name @attr
//	a.b  a?.b  a.@id  a[*]  a.*  a[0]  a[-1]  a["key"]  a[x > 1]  a..name
//	!x  -x  * / %  + -  < <= > >=  == !=  &&  ||  ??  c ? a : b  x |> f
//	(x, y) => x + y      x => x * 2
//	if (c) a else b
//	match v { 0 => "zero", n if n < 0 => "neg", _ => "pos" }
//	try expr catch (e) fallback
//	apply(selector, mode)
//	{ let x = 1; x + 1 }
//
// Braces hold either a block (declarations then one expression) or an
// object literal (entries of the form key: value, optionally preceded by
// declarations). "{}" is the empty object.
//
// Selectors never fail on missing data: a member of a non-object, an index
// out of range, or a step through null all yield null. Bracketed
// comparisons, logical expressions and boolean literals are predicates;
// anything else in brackets is an index.
//
// # Evaluation
//
// Scripts are evaluated with an [Interpreter] or the package-level
// [Evaluate]. Inputs are bound with [WithInput] and read as $name; "$"
// alone is the current context, initially the primary input. Host
// functions call back into script functions only through [Runtime.Invoke].
//
// Failures are returned as [*Signal] values wrapping one of the sentinel
// errors ([ErrTypeMismatch], [ErrDivisionByZero], ...). Runtime signals may
// be intercepted with try/catch; lex and parse errors may not.
//
// # Templates
//
// apply(selector) dispatches each context reached by the selector to the
// template with the highest priority whose pattern matches it; among
// equal priorities the template defined last wins. Default priorities are
// 3 for paths (a/b), 2 for element names, 1 for attribute predicates
// (e[@id='1']) and 0 for the wildcard "*".
package lang
