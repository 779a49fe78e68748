package lang

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/ardnew/udx/udm"
)

// Node is an element of the syntax tree. The set of implementations is
// closed; every node is built by the parser and never modified.
type Node interface {
	Pos() Position
	node()
}

// Decl is a declaration that may precede the result expression of a script
// body, a block, or an object literal: [*Let], [*FuncDecl] or
// [*TemplateDecl].
type Decl interface {
	Node
	decl()
}

// Script is a parsed udx program.
type Script struct {
	Header *Header // nil when the source has no header
	Body   *Block
	source string
	cfg    config
}

// Source returns the text the script was parsed from.
func (s *Script) Source() string { return s.source }

// Header holds the declarations before the "---" terminator.
type Header struct {
	Dialect *Dialect
	Inputs  []*InputSpec
	Output  *FormatSpec
	At      Position
}

// Dialect names a language or schema dialect with an optional version.
type Dialect struct {
	Name    string
	Version string
}

// FormatSpec names a data format, its options, and an optional schema
// dialect annotation.
type FormatSpec struct {
	Format  string
	Options *ObjectLit // nil when absent
	Dialect *Dialect
	At      Position
}

// InputSpec declares one named input.
type InputSpec struct {
	Name string
	FormatSpec
}

type (
	// NumberLit is a number literal.
	NumberLit struct {
		Value float64
		Raw   string
		At    Position
	}

	// StringLit is a string literal.
	StringLit struct {
		Value string
		At    Position
	}

	// BoolLit is true or false.
	BoolLit struct {
		Value bool
		At    Position
	}

	// NullLit is null.
	NullLit struct{ At Position }

	// Ident refers to a binding or a host function.
	Ident struct {
		Name string
		At   Position
	}

	// InputRef is $name.
	InputRef struct {
		Name string
		At   Position
	}

	// ContextRef is the bare $.
	ContextRef struct{ At Position }

	// AttrRef is @name, an attribute of the current context.
	AttrRef struct {
		Name string
		At   Position
	}

	// Group is a parenthesized expression.
	Group struct {
		X  Node
		At Position
	}

	// ObjectLit is an object literal, optionally preceded by local
	// declarations visible to its values.
	ObjectLit struct {
		Decls   []Decl
		Entries []*Entry
		At      Position
	}

	// ArrayLit is an array literal.
	ArrayLit struct {
		Elems []*Elem
		At    Position
	}

	// Member is target.name or target?.name.
	Member struct {
		Target Node
		Name   string
		Safe   bool
		At     Position
	}

	// AttrAccess is target.@name.
	AttrAccess struct {
		Target Node
		Name   string
		At     Position
	}

	// Wildcard is target[*] or target.*.
	Wildcard struct {
		Target Node
		At     Position
	}

	// Index is target[expr] where expr is not a predicate.
	Index struct {
		Target Node
		Index  Node
		At     Position
	}

	// Predicate is target[expr] where expr is a comparison, logical or
	// boolean-literal expression.
	Predicate struct {
		Target Node
		Cond   Node
		At     Position
	}

	// Descent is target..name.
	Descent struct {
		Target Node
		Name   string
		At     Position
	}

	// Binary is a binary operator application.
	Binary struct {
		Op   string
		L, R Node
		At   Position
	}

	// Unary is a prefix operator application.
	Unary struct {
		Op string
		X  Node
		At Position
	}

	// If is if (cond) then [else else].
	If struct {
		Cond, Then, Else Node // Else may be nil
		At               Position
	}

	// Ternary is cond ? then : else.
	Ternary struct {
		Cond, Then, Else Node
		At               Position
	}

	// Match is match subject { cases }.
	Match struct {
		Subject Node
		Cases   []*Case
		At      Position
	}

	// Try is try body catch [(name)] handler.
	Try struct {
		Body    Node
		Name    string // empty when the message is not bound
		Handler Node
		At      Position
	}

	// Lambda is (params) => body.
	Lambda struct {
		Params []*Param
		Body   Node
		At     Position
	}

	// Pipe is stage |> stage |> ...
	Pipe struct {
		Stages []Node
		At     Position
	}

	// Apply is apply([selector [, mode]]).
	Apply struct {
		Selector Node // nil applies to every property of the context
		Mode     Node // nil for the default mode
		At       Position
	}

	// Block is a sequence of declarations and one result expression.
	Block struct {
		Decls  []Decl
		Result Node
		At     Position
	}

	// Call is callee(args).
	Call struct {
		Callee Node
		Args   []Node
		At     Position
	}

	// Let binds a name in a new scope.
	Let struct {
		Name  string
		Type  string
		Value Node
		At    Position
	}

	// FuncDecl defines a recursive user function.
	FuncDecl struct {
		Name   string
		Params []*Param
		Type   string
		Body   Node
		At     Position
	}

	// TemplateDecl defines a template rule.
	TemplateDecl struct {
		Pattern  string
		Priority *float64 // nil selects the pattern's default
		Mode     string
		Body     Node
		At       Position

		pattern templatePattern
	}
)

// EntryKind classifies an object literal entry.
type EntryKind int

const (
	EntryKey       EntryKind = iota // name: value
	EntryComputed                   // [expr]: value
	EntryDirective                  // %name: value
	EntryAttr                       // @name: value
	EntrySpread                     // ...expr
)

func (k EntryKind) String() string {
	switch k {
	case EntryKey:
		return "key"
	case EntryComputed:
		return "computed"
	case EntryDirective:
		return "directive"
	case EntryAttr:
		return "attribute"
	case EntrySpread:
		return "spread"
	}

	return "EntryKind(" + strconv.Itoa(int(k)) + ")"
}

// Entry is one member of an object literal.
type Entry struct {
	Kind EntryKind
	// Key is the property or attribute name. Directive keys include the
	// leading '%'.
	Key     string
	KeyExpr Node // EntryComputed only
	Value   Node
	At      Position
}

// Elem is one member of an array literal.
type Elem struct {
	Value  Node
	Spread bool
}

// Param is a function parameter with an optional declared type.
type Param struct {
	Name string
	Type string
}

// Case is one arm of a match expression.
type Case struct {
	Pattern Pattern
	Guard   Node // nil when absent
	Body    Node
}

// Pattern is a match arm pattern: [*LiteralPattern], [*VarPattern] or
// [*WildcardPattern].
type Pattern interface {
	pattern()
}

type (
	// LiteralPattern matches a structurally equal value.
	LiteralPattern struct{ Value udm.Value }

	// VarPattern matches anything and binds it.
	VarPattern struct{ Name string }

	// WildcardPattern is _.
	WildcardPattern struct{}
)

func (*LiteralPattern) pattern()  {}
func (*VarPattern) pattern()      {}
func (*WildcardPattern) pattern() {}

func (n *NumberLit) Pos() Position    { return n.At }
func (n *StringLit) Pos() Position    { return n.At }
func (n *BoolLit) Pos() Position      { return n.At }
func (n *NullLit) Pos() Position      { return n.At }
func (n *Ident) Pos() Position        { return n.At }
func (n *InputRef) Pos() Position     { return n.At }
func (n *ContextRef) Pos() Position   { return n.At }
func (n *AttrRef) Pos() Position      { return n.At }
func (n *Group) Pos() Position        { return n.At }
func (n *ObjectLit) Pos() Position    { return n.At }
func (n *ArrayLit) Pos() Position     { return n.At }
func (n *Member) Pos() Position       { return n.At }
func (n *AttrAccess) Pos() Position   { return n.At }
func (n *Wildcard) Pos() Position     { return n.At }
func (n *Index) Pos() Position        { return n.At }
func (n *Predicate) Pos() Position    { return n.At }
func (n *Descent) Pos() Position      { return n.At }
func (n *Binary) Pos() Position       { return n.At }
func (n *Unary) Pos() Position        { return n.At }
func (n *If) Pos() Position           { return n.At }
func (n *Ternary) Pos() Position      { return n.At }
func (n *Match) Pos() Position        { return n.At }
func (n *Try) Pos() Position          { return n.At }
func (n *Lambda) Pos() Position       { return n.At }
func (n *Pipe) Pos() Position         { return n.At }
func (n *Apply) Pos() Position        { return n.At }
func (n *Block) Pos() Position        { return n.At }
func (n *Call) Pos() Position         { return n.At }
func (n *Let) Pos() Position          { return n.At }
func (n *FuncDecl) Pos() Position     { return n.At }
func (n *TemplateDecl) Pos() Position { return n.At }

func (*NumberLit) node()    {}
func (*StringLit) node()    {}
func (*BoolLit) node()      {}
func (*NullLit) node()      {}
func (*Ident) node()        {}
func (*InputRef) node()     {}
func (*ContextRef) node()   {}
func (*AttrRef) node()      {}
func (*Group) node()        {}
func (*ObjectLit) node()    {}
func (*ArrayLit) node()     {}
func (*Member) node()       {}
func (*AttrAccess) node()   {}
func (*Wildcard) node()     {}
func (*Index) node()        {}
func (*Predicate) node()    {}
func (*Descent) node()      {}
func (*Binary) node()       {}
func (*Unary) node()        {}
func (*If) node()           {}
func (*Ternary) node()      {}
func (*Match) node()        {}
func (*Try) node()          {}
func (*Lambda) node()       {}
func (*Pipe) node()         {}
func (*Apply) node()        {}
func (*Block) node()        {}
func (*Call) node()         {}
func (*Let) node()          {}
func (*FuncDecl) node()     {}
func (*TemplateDecl) node() {}

func (*Let) decl()          {}
func (*FuncDecl) decl()     {}
func (*TemplateDecl) decl() {}

// IsUserFunctionName reports whether name follows the casing reserved for
// user-defined functions: an uppercase first letter.
func IsUserFunctionName(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)

	return unicode.IsUpper(r)
}

// unparen strips enclosing groups.
func unparen(n Node) Node {
	for {
		g, ok := n.(*Group)
		if !ok {
			return n
		}

		n = g.X
	}
}

// isPredicate reports whether a bracketed expression filters rather than
// indexes.
func isPredicate(n Node) bool {
	switch x := unparen(n).(type) {
	case *Binary:
		switch x.Op {
		case "==", "!=", "<", "<=", ">", ">=", "&&", "||":
			return true
		}
	case *Unary:
		return x.Op == "!"
	case *BoolLit:
		return true
	}

	return false
}
