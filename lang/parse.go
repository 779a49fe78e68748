package lang

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/ardnew/udx/udm"
)

// ParseString parses a script.
//
// Results are cached by source text and options; see [ParseReader].
func ParseString(ctx context.Context, source string, opts ...Option) (*Script, error) {
	cfg := makeConfig(opts...)

	cfg.logger.TraceContext(ctx, "parse start",
		slog.Int("source_length", len(source)))

	return parseCached(ctx, source, cfg)
}

// parse lexes and parses source without consulting the cache.
func parse(ctx context.Context, source string, cfg config) (*Script, error) {
	toks, err := Lex(source)
	if err != nil {
		return nil, withSource(err, source)
	}

	p := &parser{toks: toks}

	s, err := p.parseScript()
	if err != nil {
		return nil, withSource(err, source)
	}

	s.source = source
	s.cfg = cfg

	cfg.logger.TraceContext(ctx, "parse complete",
		slog.Int("token_count", len(toks)),
		slog.Int("declaration_count", len(s.Body.Decls)),
		slog.Bool("header", s.Header != nil))

	return s, nil
}

// ParseExpression parses source as a single expression with no header and
// no declarations.
func ParseExpression(source string) (Node, error) {
	toks, err := Lex(source)
	if err != nil {
		return nil, withSource(err, source)
	}

	p := &parser{toks: toks}

	n, err := p.parseExpr()
	if err != nil {
		return nil, withSource(err, source)
	}

	if !p.at(TokenEOF) {
		return nil, withSource(p.unexpected(p.peek()), source)
	}

	return n, nil
}

// parser holds the parser state.
// maxNesting bounds how deeply expressions may nest.
const maxNesting = 1000

type parser struct {
	toks  []Token
	pos   int
	depth int
}

// nest enters one level of expression nesting. Each successful call is
// paired with unnest.
func (p *parser) nest() error {
	if p.depth >= maxNesting {
		return p.fail(p.peek(), "expression nested too deeply")
	}

	p.depth++

	return nil
}

func (p *parser) unnest() { p.depth-- }

func (p *parser) peek() Token { return p.toks[p.pos] }

func (p *parser) peekAt(n int) Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}

	return p.toks[p.pos+n]
}

func (p *parser) next() Token {
	tok := p.toks[p.pos]
	if tok.Kind != TokenEOF {
		p.pos++
	}

	return tok
}

func (p *parser) at(kind TokenKind) bool { return p.peek().Kind == kind }

func (p *parser) is(s string) bool { return p.peek().Is(s) }

func (p *parser) accept(s string) bool {
	if p.is(s) {
		p.next()

		return true
	}

	return false
}

func (p *parser) expect(s string) (Token, error) {
	if !p.is(s) {
		return Token{}, p.fail(p.peek(), "expected "+strconv.Quote(s)+", found "+p.peek().String())
	}

	return p.next(), nil
}

func (p *parser) fail(tok Token, msg string) error {
	return newSignal(ErrParse, msg, tok.Pos)
}

func (p *parser) unexpected(tok Token) error {
	return p.fail(tok, "unexpected "+tok.String())
}

// name accepts an identifier or, when keywords is set, a keyword used as a
// plain name (object keys, member names).
func (p *parser) name(what string, keywords bool) (Token, error) {
	tok := p.peek()
	if tok.Kind == TokenIdent || (keywords && tok.Kind == TokenKeyword) {
		return p.next(), nil
	}

	return Token{}, p.fail(tok, "expected "+what+", found "+tok.String())
}

// parseScript parses: [Header "---"] Body EOF.
func (p *parser) parseScript() (*Script, error) {
	s := new(Script)

	if p.hasHeader() {
		h, err := p.parseHeader()
		if err != nil {
			return nil, err
		}

		if err := h.validate(); err != nil {
			return nil, err
		}

		s.Header = h
	}

	start := p.peek()

	decls, err := p.parseDecls(false)
	if err != nil {
		return nil, err
	}

	if p.at(TokenEOF) {
		return nil, p.fail(p.peek(), "expected result expression")
	}

	result, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	p.accept(";")

	if !p.at(TokenEOF) {
		return nil, p.fail(p.peek(), "unexpected "+p.peek().String()+" after result expression")
	}

	s.Body = &Block{Decls: decls, Result: result, At: start.Pos}

	return s, nil
}

func (p *parser) hasHeader() bool {
	for _, tok := range p.toks {
		if tok.Kind == TokenSeparator {
			return true
		}
	}

	return false
}

// parseHeader parses header lines up to and including "---".
func (p *parser) parseHeader() (*Header, error) {
	h := &Header{At: p.peek().Pos}

	for !p.at(TokenSeparator) {
		tok := p.peek()

		switch {
		case tok.Is("%"):
			p.next()

			d, err := p.parseDialect()
			if err != nil {
				return nil, err
			}

			h.Dialect = d

		case tok.Kind == TokenIdent && tok.Text == "input":
			p.next()

			inputs, err := p.parseInputSpecs()
			if err != nil {
				return nil, err
			}

			h.Inputs = append(h.Inputs, inputs...)

		case tok.Kind == TokenIdent && tok.Text == "output":
			p.next()

			spec, err := p.parseFormatSpec()
			if err != nil {
				return nil, err
			}

			h.Output = spec

		default:
			return nil, p.fail(tok, "expected input, output or %dialect in header, found "+tok.String())
		}
	}

	p.next() // ---

	return h, nil
}

// parseDialect parses: NAME [VERSION], the version on the same line.
func (p *parser) parseDialect() (*Dialect, error) {
	name, err := p.name("dialect name", false)
	if err != nil {
		return nil, err
	}

	d := &Dialect{Name: name.Text}

	switch v := p.peek(); {
	case v.NewlineBefore:
	case v.Kind == TokenNumber, v.Kind == TokenIdent:
		d.Version = p.next().Text
	case v.Kind == TokenString:
		d.Version = p.next().Str
	}

	return d, nil
}

// parseInputSpecs parses: FORMAT [opts] | NAME FORMAT [opts] ("," NAME FORMAT [opts])*.
func (p *parser) parseInputSpecs() ([]*InputSpec, error) {
	var specs []*InputSpec

	for {
		first, err := p.name("input format", false)
		if err != nil {
			return nil, err
		}

		in := &InputSpec{Name: "input"}
		in.At = first.Pos
		in.Format = first.Text

		if nt := p.peek(); nt.Kind == TokenIdent && !nt.NewlineBefore {
			in.Name, in.Format = first.Text, p.next().Text
		}

		if err := p.parseFormatTail(&in.FormatSpec); err != nil {
			return nil, err
		}

		specs = append(specs, in)

		if !p.accept(",") {
			return specs, nil
		}
	}
}

// parseFormatSpec parses: FORMAT [opts] ["%" DIALECT [VERSION]].
func (p *parser) parseFormatSpec() (*FormatSpec, error) {
	tok, err := p.name("output format", false)
	if err != nil {
		return nil, err
	}

	spec := &FormatSpec{Format: tok.Text, At: tok.Pos}

	return spec, p.parseFormatTail(spec)
}

func (p *parser) parseFormatTail(spec *FormatSpec) error {
	if p.is("{") && !p.peek().NewlineBefore {
		n, err := p.parseBrace()
		if err != nil {
			return err
		}

		obj, ok := n.(*ObjectLit)
		if !ok {
			return p.fail(Token{Pos: n.Pos()}, "format options must be an object literal")
		}

		spec.Options = obj
	}

	if p.is("%") && !p.peek().NewlineBefore {
		p.next()

		d, err := p.parseDialect()
		if err != nil {
			return err
		}

		spec.Dialect = d
	}

	return nil
}

// atDecl reports whether a declaration starts here. A keyword followed by
// ':' is an object key, not a declaration.
func (p *parser) atDecl() bool {
	tok := p.peek()
	if tok.Kind != TokenKeyword || p.peekAt(1).Is(":") {
		return false
	}

	switch tok.Text {
	case "let", "function", "def", "template":
		return true
	}

	return false
}

// parseDecls parses leading declarations. Inside braces a declaration must
// be followed by ';' or ',' unless the next token starts another
// declaration, an object entry, or closes the braces. At the top level a
// line break also separates.
func (p *parser) parseDecls(braced bool) ([]Decl, error) {
	var decls []Decl

	for p.atDecl() {
		d, err := p.parseDecl()
		if err != nil {
			return nil, err
		}

		decls = append(decls, d)

		switch {
		case p.accept(";"), p.accept(","):
		case p.atDecl(), p.at(TokenEOF):
		case braced && (p.is("}") || p.atEntry()):
		case !braced && p.peek().NewlineBefore:
		default:
			return nil, p.fail(p.peek(), "expected ';' after declaration, found "+p.peek().String())
		}
	}

	return decls, nil
}

func (p *parser) parseDecl() (Decl, error) {
	tok := p.next()

	switch tok.Text {
	case "let":
		return p.parseLet(tok)
	case "function", "def":
		return p.parseFuncDecl(tok)
	default:
		return p.parseTemplateDecl(tok)
	}
}

// parseLet parses: "let" NAME [":" TYPE] "=" Expr.
func (p *parser) parseLet(kw Token) (Decl, error) {
	name, err := p.name("binding name", false)
	if err != nil {
		return nil, err
	}

	typ, err := p.parseTypeAnnotation()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect("="); err != nil {
		return nil, err
	}

	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return &Let{Name: name.Text, Type: typ, Value: value, At: kw.Pos}, nil
}

// parseFuncDecl parses: ("function"|"def") NAME "(" Params ")" [":" TYPE]
// ("=>" Expr | "=" Expr | Brace).
func (p *parser) parseFuncDecl(kw Token) (Decl, error) {
	name, err := p.name("function name", false)
	if err != nil {
		return nil, err
	}

	if !IsUserFunctionName(name.Text) {
		return nil, p.fail(name, "user function "+strconv.Quote(name.Text)+
			" must start with an uppercase letter")
	}

	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}

	typ, err := p.parseTypeAnnotation()
	if err != nil {
		return nil, err
	}

	var body Node

	switch {
	case p.accept("=>"), p.accept("="):
		body, err = p.parseExpr()
	case p.is("{"):
		body, err = p.parseBrace()
	default:
		err = p.fail(p.peek(), "expected function body, found "+p.peek().String())
	}

	if err != nil {
		return nil, err
	}

	return &FuncDecl{
		Name:   name.Text,
		Params: params,
		Type:   typ,
		Body:   body,
		At:     kw.Pos,
	}, nil
}

// parseTemplateDecl parses: "template" "match" "=" STRING
// ["priority" "=" NUMBER] ["mode" "=" STRING] (Brace | "=>" Expr).
func (p *parser) parseTemplateDecl(kw Token) (Decl, error) {
	if _, err := p.expect("match"); err != nil {
		return nil, err
	}

	if _, err := p.expect("="); err != nil {
		return nil, err
	}

	pat := p.peek()
	if pat.Kind != TokenString {
		return nil, p.fail(pat, "expected template pattern string, found "+pat.String())
	}

	p.next()

	compiled, err := parseTemplatePattern(pat.Str)
	if err != nil {
		return nil, p.fail(pat, err.Error())
	}

	t := &TemplateDecl{Pattern: pat.Str, At: kw.Pos, pattern: compiled}

	for {
		switch {
		case p.accept("priority"):
			if _, err := p.expect("="); err != nil {
				return nil, err
			}

			neg := p.accept("-")

			num := p.peek()
			if num.Kind != TokenNumber {
				return nil, p.fail(num, "expected priority number, found "+num.String())
			}

			p.next()

			prio := num.Num
			if neg {
				prio = -prio
			}

			t.Priority = &prio

			continue

		case p.accept("mode"):
			if _, err := p.expect("="); err != nil {
				return nil, err
			}

			m := p.peek()
			if m.Kind != TokenString {
				return nil, p.fail(m, "expected mode string, found "+m.String())
			}

			p.next()

			t.Mode = m.Str

			continue
		}

		break
	}

	switch {
	case p.is("{"):
		t.Body, err = p.parseBrace()
	case p.accept("=>"):
		t.Body, err = p.parseExpr()
	default:
		err = p.fail(p.peek(), "expected template body, found "+p.peek().String())
	}

	if err != nil {
		return nil, err
	}

	return t, nil
}

// parseParams parses: "(" [NAME [":" TYPE] ("," NAME [":" TYPE])*] ")".
func (p *parser) parseParams() ([]*Param, error) {
	if _, err := p.expect("("); err != nil {
		return nil, err
	}

	var params []*Param

	for !p.is(")") {
		name, err := p.name("parameter name", false)
		if err != nil {
			return nil, err
		}

		typ, err := p.parseTypeAnnotation()
		if err != nil {
			return nil, err
		}

		params = append(params, &Param{Name: name.Text, Type: typ})

		if !p.accept(",") {
			break
		}
	}

	if _, err := p.expect(")"); err != nil {
		return nil, err
	}

	return params, nil
}

// parseTypeAnnotation parses an optional ":" TYPE ["?"].
func (p *parser) parseTypeAnnotation() (string, error) {
	if !p.accept(":") {
		return "", nil
	}

	tok, err := p.name("type name", true)
	if err != nil {
		return "", err
	}

	if p.accept("?") {
		return tok.Text + "?", nil
	}

	return tok.Text, nil
}

// parseExpr parses an expression. Pipe binds loosest.
func (p *parser) parseExpr() (Node, error) {
	first, err := p.parseTernary()
	if err != nil {
		return nil, err
	}

	if !p.is("|>") {
		return first, nil
	}

	pipe := &Pipe{Stages: []Node{first}, At: first.Pos()}

	for p.accept("|>") {
		stage, err := p.parseTernary()
		if err != nil {
			return nil, err
		}

		pipe.Stages = append(pipe.Stages, stage)
	}

	return pipe, nil
}

func (p *parser) parseTernary() (Node, error) {
	cond, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}

	if !p.accept("?") {
		return cond, nil
	}

	if err := p.nest(); err != nil {
		return nil, err
	}
	defer p.unnest()

	then, err := p.parseTernary()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(":"); err != nil {
		return nil, err
	}

	els, err := p.parseTernary()
	if err != nil {
		return nil, err
	}

	return &Ternary{Cond: cond, Then: then, Else: els, At: cond.Pos()}, nil
}

// binaryLevels lists binary operators from loosest to tightest.
var binaryLevels = [][]string{
	{"??"},
	{"||"},
	{"&&"},
	{"==", "!="},
	{"<", "<=", ">", ">="},
	{"+", "-"},
	{"*", "/", "%"},
}

// parseBinary parses left-associative operators at binaryLevels[level] and
// tighter.
func (p *parser) parseBinary(level int) (Node, error) {
	if level == len(binaryLevels) {
		return p.parseUnary()
	}

	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}

	for {
		op, ok := p.binaryOp(level)
		if !ok {
			return left, nil
		}

		p.next()

		right, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}

		left = &Binary{Op: op, L: left, R: right, At: left.Pos()}
	}
}

func (p *parser) binaryOp(level int) (string, bool) {
	tok := p.peek()
	if tok.Kind != TokenPunct {
		return "", false
	}

	for _, op := range binaryLevels[level] {
		if tok.Text == op {
			return op, true
		}
	}

	return "", false
}

func (p *parser) parseUnary() (Node, error) {
	if err := p.nest(); err != nil {
		return nil, err
	}
	defer p.unnest()

	if tok := p.peek(); tok.Is("!") || tok.Is("-") {
		p.next()

		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &Unary{Op: tok.Text, X: x, At: tok.Pos}, nil
	}

	return p.parsePostfix()
}

// parsePostfix parses selectors and calls. A '[' or '(' that starts a new
// line does not continue the expression.
func (p *parser) parsePostfix() (Node, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()

		switch {
		case tok.Is("."), tok.Is("?."):
			p.next()

			switch {
			case p.accept("@"):
				name, err := p.name("attribute name", true)
				if err != nil {
					return nil, err
				}

				x = &AttrAccess{Target: x, Name: name.Text, At: tok.Pos}

			case tok.Is(".") && p.accept("*"):
				x = &Wildcard{Target: x, At: tok.Pos}

			default:
				name, err := p.memberName()
				if err != nil {
					return nil, err
				}

				x = &Member{Target: x, Name: name, Safe: tok.Is("?."), At: tok.Pos}
			}

		case tok.Is(".."):
			p.next()

			name, err := p.memberName()
			if err != nil {
				return nil, err
			}

			x = &Descent{Target: x, Name: name, At: tok.Pos}

		case tok.Is("[") && !tok.NewlineBefore:
			p.next()

			if p.is("*") && p.peekAt(1).Is("]") {
				p.next()
				p.next()

				x = &Wildcard{Target: x, At: tok.Pos}

				continue
			}

			inner, err := p.parseExpr()
			if err != nil {
				return nil, err
			}

			if _, err := p.expect("]"); err != nil {
				return nil, err
			}

			if isPredicate(inner) {
				x = &Predicate{Target: x, Cond: inner, At: tok.Pos}
			} else {
				x = &Index{Target: x, Index: inner, At: tok.Pos}
			}

		case tok.Is("(") && !tok.NewlineBefore:
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}

			x = &Call{Callee: x, Args: args, At: x.Pos()}

		default:
			return x, nil
		}
	}
}

// memberName accepts an identifier, keyword, or string after '.' or '..'.
func (p *parser) memberName() (string, error) {
	if tok := p.peek(); tok.Kind == TokenString {
		p.next()

		return tok.Str, nil
	}

	tok, err := p.name("member name", true)
	if err != nil {
		return "", err
	}

	return tok.Text, nil
}

func (p *parser) parseArgs() ([]Node, error) {
	if _, err := p.expect("("); err != nil {
		return nil, err
	}

	var args []Node

	for !p.is(")") {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		if !p.accept(",") {
			break
		}
	}

	if _, err := p.expect(")"); err != nil {
		return nil, err
	}

	return args, nil
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.peek()

	switch tok.Kind {
	case TokenNumber:
		p.next()

		return &NumberLit{Value: tok.Num, Raw: tok.Text, At: tok.Pos}, nil

	case TokenString:
		p.next()

		return &StringLit{Value: tok.Str, At: tok.Pos}, nil

	case TokenInput:
		p.next()

		return &InputRef{Name: tok.Text, At: tok.Pos}, nil

	case TokenContext:
		p.next()

		return &ContextRef{At: tok.Pos}, nil

	case TokenIdent:
		if p.peekAt(1).Is("=>") {
			p.next()
			p.next()

			body, err := p.parseExpr()
			if err != nil {
				return nil, err
			}

			return &Lambda{Params: []*Param{{Name: tok.Text}}, Body: body, At: tok.Pos}, nil
		}

		p.next()

		return &Ident{Name: tok.Text, At: tok.Pos}, nil

	case TokenKeyword:
		return p.parseKeyword(tok)
	}

	switch {
	case tok.Is("@"):
		p.next()

		name, err := p.name("attribute name", true)
		if err != nil {
			return nil, err
		}

		return &AttrRef{Name: name.Text, At: tok.Pos}, nil

	case tok.Is("("):
		if p.lambdaAhead() {
			return p.parseLambda()
		}

		p.next()

		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(")"); err != nil {
			return nil, err
		}

		return &Group{X: x, At: tok.Pos}, nil

	case tok.Is("["):
		return p.parseArray()

	case tok.Is("{"):
		return p.parseBrace()
	}

	return nil, p.unexpected(tok)
}

func (p *parser) parseKeyword(tok Token) (Node, error) {
	switch tok.Text {
	case "true", "false":
		p.next()

		return &BoolLit{Value: tok.Text == "true", At: tok.Pos}, nil

	case "null":
		p.next()

		return &NullLit{At: tok.Pos}, nil

	case "if":
		return p.parseIf()

	case "match":
		return p.parseMatch()

	case "try":
		return p.parseTry()

	case "apply":
		return p.parseApply()
	}

	return nil, p.unexpected(tok)
}

// lambdaAhead reports whether the '(' at the cursor closes onto "=>".
func (p *parser) lambdaAhead() bool {
	depth := 0

	for i := p.pos; i < len(p.toks); i++ {
		tok := p.toks[i]

		switch {
		case tok.Kind == TokenEOF:
			return false
		case tok.Is("("), tok.Is("["), tok.Is("{"):
			depth++
		case tok.Is(")"), tok.Is("]"), tok.Is("}"):
			depth--
			if depth == 0 {
				return i+1 < len(p.toks) && p.toks[i+1].Is("=>")
			}
		}
	}

	return false
}

func (p *parser) parseLambda() (Node, error) {
	at := p.peek().Pos

	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect("=>"); err != nil {
		return nil, err
	}

	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return &Lambda{Params: params, Body: body, At: at}, nil
}

func (p *parser) parseArray() (Node, error) {
	open := p.next()
	arr := &ArrayLit{At: open.Pos}

	for !p.is("]") {
		spread := p.accept("...")

		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		arr.Elems = append(arr.Elems, &Elem{Value: v, Spread: spread})

		if !p.accept(",") {
			break
		}
	}

	if _, err := p.expect("]"); err != nil {
		return nil, err
	}

	return arr, nil
}

// parseBrace parses '{' ... '}' as an empty object, a block, or an object
// literal:
//
//	{}                          empty object
//	{ decls; expr }             block
//	{ decls key: v, ... }       object literal with local declarations
func (p *parser) parseBrace() (Node, error) {
	open, err := p.expect("{")
	if err != nil {
		return nil, err
	}

	if p.accept("}") {
		return &ObjectLit{At: open.Pos}, nil
	}

	decls, err := p.parseDecls(true)
	if err != nil {
		return nil, err
	}

	if p.atEntry() {
		return p.parseObject(open, decls)
	}

	if p.is("}") {
		return nil, p.fail(p.peek(), "expected result expression before '}'")
	}

	result, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	p.accept(";")

	if !p.accept("}") {
		return nil, p.fail(p.peek(), "expected '}' after block result, found "+p.peek().String())
	}

	return &Block{Decls: decls, Result: result, At: open.Pos}, nil
}

// atEntry reports whether an object entry starts at the cursor:
// "...", KEY ":", "%" NAME ":", "@" NAME ":" or "[" ... "]" ":".
func (p *parser) atEntry() bool {
	tok := p.peek()

	switch {
	case tok.Is("..."):
		return true
	case tok.Kind == TokenIdent, tok.Kind == TokenKeyword,
		tok.Kind == TokenString, tok.Kind == TokenNumber:
		return p.peekAt(1).Is(":")
	case tok.Is("%"), tok.Is("@"):
		switch nt := p.peekAt(1); nt.Kind {
		case TokenIdent, TokenKeyword, TokenString:
			return p.peekAt(2).Is(":")
		}
	case tok.Is("["):
		depth := 0

		for i := p.pos; i < len(p.toks); i++ {
			switch t := p.toks[i]; {
			case t.Kind == TokenEOF:
				return false
			case t.Is("("), t.Is("["), t.Is("{"):
				depth++
			case t.Is(")"), t.Is("]"), t.Is("}"):
				depth--
				if depth == 0 {
					return i+1 < len(p.toks) && p.toks[i+1].Is(":")
				}
			}
		}
	}

	return false
}

func (p *parser) parseObject(open Token, decls []Decl) (Node, error) {
	obj := &ObjectLit{Decls: decls, At: open.Pos}

	for !p.is("}") {
		e, err := p.parseEntry()
		if err != nil {
			return nil, err
		}

		obj.Entries = append(obj.Entries, e)

		switch {
		case p.accept(","), p.accept(";"):
		case p.is("}"), p.peek().NewlineBefore:
		default:
			return nil, p.fail(p.peek(), "expected ',' between object entries, found "+p.peek().String())
		}
	}

	p.next() // }

	return obj, nil
}

func (p *parser) parseEntry() (*Entry, error) {
	tok := p.peek()
	e := &Entry{At: tok.Pos}

	switch {
	case tok.Is("..."):
		p.next()

		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		e.Kind, e.Value = EntrySpread, v

		return e, nil

	case tok.Is("["):
		p.next()

		k, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect("]"); err != nil {
			return nil, err
		}

		e.Kind, e.KeyExpr = EntryComputed, k

	case tok.Is("%"), tok.Is("@"):
		p.next()

		nt := p.next()

		name := nt.Text
		if nt.Kind == TokenString {
			name = nt.Str
		}

		e.Kind, e.Key = EntryDirective, "%"+name
		if tok.Is("@") {
			e.Kind, e.Key = EntryAttr, name
		}

	case tok.Kind == TokenString:
		p.next()

		e.Kind, e.Key = EntryKey, tok.Str

	default:
		p.next()

		e.Kind, e.Key = EntryKey, tok.Text
	}

	if _, err := p.expect(":"); err != nil {
		return nil, err
	}

	v, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	e.Value = v

	return e, nil
}

// parseIf parses: "if" "(" Expr ")" Expr ["else" Expr].
func (p *parser) parseIf() (Node, error) {
	kw := p.next()

	if _, err := p.expect("("); err != nil {
		return nil, err
	}

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(")"); err != nil {
		return nil, err
	}

	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	n := &If{Cond: cond, Then: then, At: kw.Pos}

	if p.accept("else") {
		if n.Else, err = p.parseExpr(); err != nil {
			return nil, err
		}
	}

	return n, nil
}

// parseMatch parses: "match" Expr "{" (Pattern ["if" Expr] "=>" Expr)+ "}".
func (p *parser) parseMatch() (Node, error) {
	kw := p.next()

	subject, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect("{"); err != nil {
		return nil, err
	}

	m := &Match{Subject: subject, At: kw.Pos}

	for !p.is("}") {
		c := new(Case)

		if c.Pattern, err = p.parsePattern(); err != nil {
			return nil, err
		}

		if p.accept("if") {
			if c.Guard, err = p.parseExpr(); err != nil {
				return nil, err
			}
		}

		if _, err := p.expect("=>"); err != nil {
			return nil, err
		}

		if c.Body, err = p.parseExpr(); err != nil {
			return nil, err
		}

		m.Cases = append(m.Cases, c)

		switch {
		case p.accept(","), p.accept(";"):
		case p.is("}"), p.peek().NewlineBefore:
		default:
			return nil, p.fail(p.peek(), "expected ',' between match cases, found "+p.peek().String())
		}
	}

	p.next() // }

	if len(m.Cases) == 0 {
		return nil, p.fail(kw, "match requires at least one case")
	}

	return m, nil
}

func (p *parser) parsePattern() (Pattern, error) {
	tok := p.next()

	switch {
	case tok.Kind == TokenIdent && tok.Text == "_":
		return &WildcardPattern{}, nil
	case tok.Kind == TokenIdent:
		return &VarPattern{Name: tok.Text}, nil
	case tok.Kind == TokenString:
		return &LiteralPattern{Value: udm.String(tok.Str)}, nil
	case tok.Kind == TokenNumber:
		return &LiteralPattern{Value: udm.Number(tok.Num)}, nil
	case tok.Is("-") && p.at(TokenNumber):
		return &LiteralPattern{Value: udm.Number(-p.next().Num)}, nil
	case tok.Is("true"), tok.Is("false"):
		return &LiteralPattern{Value: udm.Bool(tok.Text == "true")}, nil
	case tok.Is("null"):
		return &LiteralPattern{Value: udm.Null{}}, nil
	}

	return nil, p.fail(tok, "expected match pattern, found "+tok.String())
}

// parseTry parses: "try" Expr "catch" ["(" NAME ")"] Expr.
func (p *parser) parseTry() (Node, error) {
	kw := p.next()

	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect("catch"); err != nil {
		return nil, err
	}

	t := &Try{Body: body, At: kw.Pos}

	if p.is("(") && p.peekAt(1).Kind == TokenIdent && p.peekAt(2).Is(")") {
		p.next()
		t.Name = p.next().Text
		p.next()
	}

	if t.Handler, err = p.parseExpr(); err != nil {
		return nil, err
	}

	return t, nil
}

// parseApply parses: "apply" "(" [Expr ["," Expr]] ")".
func (p *parser) parseApply() (Node, error) {
	kw := p.next()

	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}

	a := &Apply{At: kw.Pos}

	switch len(args) {
	case 0:
	case 1:
		a.Selector = args[0]
	case 2:
		a.Selector, a.Mode = args[0], args[1]
	default:
		return nil, p.fail(kw, "apply takes at most a selector and a mode")
	}

	return a, nil
}
