package lang

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

// Lex splits source into tokens. The final token is always [TokenEOF].
func Lex(source string) ([]Token, error) {
	lx := &lexer{input: []byte(source), line: 1, col: 1, lineStart: true}

	var toks []Token

	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}

		toks = append(toks, tok)

		if tok.Kind == TokenEOF {
			return toks, nil
		}
	}
}

type lexer struct {
	input     []byte
	pos       int
	line      int
	col       int
	lineStart bool
}

func (lx *lexer) fail(pos Position, msg string) error {
	return newSignal(ErrLex, msg, pos)
}

func (lx *lexer) next() (Token, error) {
	if err := lx.skipWhitespaceAndComments(); err != nil {
		return Token{}, err
	}

	tok := Token{Pos: lx.position(), NewlineBefore: lx.lineStart}
	lx.lineStart = false

	if lx.eof() {
		tok.Kind = TokenEOF

		return tok, nil
	}

	ch := lx.peek()

	switch {
	case ch == '"' || ch == '\'':
		s, err := lx.lexString(ch)
		if err != nil {
			return Token{}, err
		}

		tok.Kind, tok.Str = TokenString, s
		tok.Text = string(lx.input[tok.Pos.Offset:lx.pos])

		return tok, nil

	case isDigit(ch):
		return lx.lexNumber(tok)

	case isIdentifierStart(ch):
		tok.Text = lx.lexIdentifier()
		tok.Kind = TokenIdent

		if IsKeyword(tok.Text) {
			tok.Kind = TokenKeyword
		}

		return tok, nil

	case ch == '$':
		lx.advance()

		if !lx.eof() && isIdentifierStart(lx.peek()) {
			tok.Kind, tok.Text = TokenInput, lx.lexIdentifier()

			return tok, nil
		}

		tok.Kind, tok.Text = TokenContext, "$"

		return tok, nil

	case ch == '-' && tok.NewlineBefore && lx.isSeparatorLine():
		lx.pos += 3
		lx.col += 3
		tok.Kind, tok.Text = TokenSeparator, "---"

		return tok, nil
	}

	for _, op := range operators {
		if lx.peekN(len(op)) == op {
			lx.pos += len(op)
			lx.col += len(op)
			tok.Kind, tok.Text = TokenPunct, op

			return tok, nil
		}
	}

	return Token{}, lx.fail(tok.Pos, "unexpected character "+strconv.QuoteRune(ch))
}

// isSeparatorLine reports whether the current line holds only "---".
func (lx *lexer) isSeparatorLine() bool {
	rest := lx.input[lx.pos:]
	if end := strings.IndexByte(string(rest), '\n'); end >= 0 {
		rest = rest[:end]
	}

	return strings.TrimSpace(string(rest)) == "---"
}

func (lx *lexer) lexIdentifier() string {
	start := lx.pos

	lx.advance()

	for !lx.eof() && isIdentifierContinue(lx.peek()) {
		lx.advance()
	}

	return string(lx.input[start:lx.pos])
}

func (lx *lexer) lexNumber(tok Token) (Token, error) {
	start := lx.pos

	for !lx.eof() && isDigit(lx.peek()) {
		lx.advance()
	}

	if lx.peek() == '.' && lx.pos+1 < len(lx.input) && isDigit(rune(lx.input[lx.pos+1])) {
		lx.advance()

		for !lx.eof() && isDigit(lx.peek()) {
			lx.advance()
		}
	}

	if c := lx.peek(); c == 'e' || c == 'E' {
		mark, col := lx.pos, lx.col

		lx.advance()

		if c := lx.peek(); c == '+' || c == '-' {
			lx.advance()
		}

		if !isDigit(lx.peek()) {
			lx.pos, lx.col = mark, col
		}

		for !lx.eof() && isDigit(lx.peek()) {
			lx.advance()
		}
	}

	tok.Kind = TokenNumber
	tok.Text = string(lx.input[start:lx.pos])

	n, err := strconv.ParseFloat(tok.Text, 64)
	if err != nil {
		return Token{}, lx.fail(tok.Pos, "invalid number "+strconv.Quote(tok.Text))
	}

	tok.Num = n

	if !lx.eof() && isIdentifierStart(lx.peek()) {
		return Token{}, lx.fail(lx.position(), "invalid number suffix")
	}

	return tok, nil
}

func (lx *lexer) lexString(quote rune) (string, error) {
	start := lx.position()

	lx.advance() // opening quote

	var sb strings.Builder

	for !lx.eof() {
		ch := lx.peek()

		switch ch {
		case quote:
			lx.advance()

			return sb.String(), nil

		case '\n':
			return "", lx.fail(start, "unterminated string")

		case '\\':
			esc := lx.position()

			lx.advance()

			if lx.eof() {
				return "", lx.fail(start, "unterminated string")
			}

			e := lx.peek()
			lx.advance()

			switch e {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\', '"', '\'', '/':
				sb.WriteRune(e)
			case 'b':
				sb.WriteByte('\b')
			case 'f':
				sb.WriteByte('\f')
			case 'x':
				b, ok := lx.hex(2)
				if !ok {
					return "", lx.fail(esc, "invalid byte escape")
				}

				sb.WriteByte(byte(b))
			case 'u':
				r, ok := lx.hex(4)
				if !ok {
					return "", lx.fail(esc, "invalid unicode escape")
				}

				// A high surrogate pairs with a following \uXXXX low surrogate.
				if utf16.IsSurrogate(r) && lx.peekN(2) == `\u` {
					mark, col := lx.pos, lx.col
					lx.pos, lx.col = lx.pos+2, lx.col+2

					if lo, ok := lx.hex(4); ok {
						if pair := utf16.DecodeRune(r, lo); pair != utf8.RuneError {
							r = pair
						} else {
							lx.pos, lx.col = mark, col
						}
					} else {
						lx.pos, lx.col = mark, col
					}
				}

				sb.WriteRune(r)
			default:
				return "", lx.fail(esc, "invalid escape "+strconv.QuoteRune(e))
			}

		default:
			sb.WriteRune(ch)
			lx.advance()
		}
	}

	return "", lx.fail(start, "unterminated string")
}

// hex consumes n hex digits.
func (lx *lexer) hex(n int) (rune, bool) {
	if lx.pos+n > len(lx.input) {
		return 0, false
	}

	r, err := strconv.ParseUint(string(lx.input[lx.pos:lx.pos+n]), 16, 32)
	if err != nil {
		return 0, false
	}

	lx.pos += n
	lx.col += n

	return rune(r), true
}

func (lx *lexer) peek() rune {
	if lx.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(lx.input[lx.pos:])

	return r
}

func (lx *lexer) peekN(n int) string {
	if lx.pos+n > len(lx.input) {
		return string(lx.input[lx.pos:])
	}

	return string(lx.input[lx.pos : lx.pos+n])
}

func (lx *lexer) advance() {
	if lx.eof() {
		return
	}

	r, size := utf8.DecodeRune(lx.input[lx.pos:])

	lx.pos += size
	if r == '\n' {
		lx.line++
		lx.col = 1
		lx.lineStart = true
	} else {
		lx.col++
	}
}

func (lx *lexer) eof() bool {
	return lx.pos >= len(lx.input)
}

func (lx *lexer) position() Position {
	return Position{Offset: lx.pos, Line: lx.line, Column: lx.col}
}

func (lx *lexer) skipWhitespaceAndComments() error {
	for !lx.eof() {
		switch {
		case unicode.IsSpace(lx.peek()):
			lx.advance()

		case lx.peek() == '#', lx.peekN(2) == "//":
			for !lx.eof() && lx.peek() != '\n' {
				lx.advance()
			}

		case lx.peekN(2) == "/*":
			start := lx.position()

			lx.advance()
			lx.advance()

			for {
				if lx.eof() {
					return lx.fail(start, "unterminated block comment")
				}

				if lx.peekN(2) == "*/" {
					lx.advance()
					lx.advance()

					break
				}

				lx.advance()
			}

		default:
			return nil
		}
	}

	return nil
}

// Character classification

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentifierStart(r rune) bool {
	return unicode.In(r,
		unicode.L,  // Letter
		unicode.Nl, // Letter, Number
		unicode.Other_ID_Start,
	) || r == '_'
}

func isIdentifierContinue(r rune) bool {
	return unicode.In(r,
		unicode.L,  // Letter
		unicode.Nl, // Letter, Number
		unicode.Other_ID_Start,
		unicode.Mn, // Mark, Nonspacing
		unicode.Mc, // Mark, Spacing Combining
		unicode.Nd, // Number, Decimal Digit
		unicode.Pc, // Punctuation, Connector
		unicode.Other_ID_Continue,
	)
}
