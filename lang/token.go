package lang

import (
	"strconv"
)

// Position locates a token in source text. Line and Column are 1-based.
type Position struct {
	Offset int
	Line   int
	Column int
}

// String returns "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// TokenKind classifies a [Token].
type TokenKind int

const (
	TokenEOF       TokenKind = iota // end of input
	TokenNumber                     // number
	TokenString                     // string
	TokenIdent                      // identifier
	TokenKeyword                    // keyword
	TokenInput                      // input reference
	TokenContext                    // context reference
	TokenPunct                      // operator
	TokenSeparator                  // header terminator
)

// String returns the kind's description used in error messages.
func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "end of input"
	case TokenNumber:
		return "number"
	case TokenString:
		return "string"
	case TokenIdent:
		return "identifier"
	case TokenKeyword:
		return "keyword"
	case TokenInput:
		return "input reference"
	case TokenContext:
		return "context reference"
	case TokenPunct:
		return "operator"
	case TokenSeparator:
		return "header terminator"
	default:
		return "unknown"
	}
}

// Token is a lexeme produced by [Lex].
type Token struct {
	Kind TokenKind
	// Text is the raw lexeme. For identifiers and input references it is the
	// name without any leading '$'.
	Text string
	// Str holds the decoded value of a string literal.
	Str string
	// Num holds the value of a number literal.
	Num float64
	Pos Position
	// NewlineBefore is set when the token is the first on its line.
	NewlineBefore bool
}

// Is reports whether t is the punctuation or keyword s.
func (t Token) Is(s string) bool {
	return (t.Kind == TokenPunct || t.Kind == TokenKeyword) && t.Text == s
}

// String describes the token for error messages.
func (t Token) String() string {
	switch t.Kind {
	case TokenEOF:
		return t.Kind.String()
	case TokenString:
		return strconv.Quote(t.Str)
	case TokenInput:
		return "$" + t.Text
	default:
		return strconv.Quote(t.Text)
	}
}

var keywords = map[string]bool{
	"let":      true,
	"function": true,
	"def":      true,
	"template": true,
	"match":    true,
	"if":       true,
	"else":     true,
	"try":      true,
	"catch":    true,
	"apply":    true,
	"priority": true,
	"mode":     true,
	"true":     true,
	"false":    true,
	"null":     true,
}

// IsKeyword reports whether s is reserved.
func IsKeyword(s string) bool { return keywords[s] }

// operators lists punctuation, longest first so the lexer can take the
// longest match.
var operators = []string{
	"...",
	"..", "?.", "??", "|>", "=>", "==", "!=", "<=", ">=", "&&", "||",
	"+", "-", "*", "/", "%", "<", ">", "!", "?", ":", ".", ",", ";",
	"(", ")", "[", "]", "{", "}", "=", "@",
}
