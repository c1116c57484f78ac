// Package parser turns Lambo source text into a term.Node tree: a
// recursive-descent expression parser with precedence climbing for the
// arithmetic/pipe operators, driven by a single infix-precedence map
// following the teacher's precedence levels (internal/parser/operators.go)
// rather than prefix/infix parse function tables, since Lambo's grammar is
// much smaller. Variable names are resolved to de Bruijn depths via a lexical
// scope stack built up as lambdas, lets, and withs are entered; nothing
// downstream of this package ever sees a name.
package parser

import (
	"fmt"

	"github.com/eug-vs/lambo/internal/errors"
	"github.com/eug-vs/lambo/internal/lexer"
	"github.com/eug-vs/lambo/internal/prim"
	"github.com/eug-vs/lambo/internal/term"
)

// Precedence levels, lowest to highest (teacher's operators.go convention).
const (
	_ int = iota
	lowest
	pipePrec // |
	eqPrec   // =num
	sumPrec  // + -
	prodPrec // * /
)

var infixPrecedence = map[lexer.TokenType]int{
	lexer.PIPE:  pipePrec,
	lexer.EQNUM: eqPrec,
	lexer.PLUS:  sumPrec,
	lexer.MINUS: sumPrec,
	lexer.STAR:  prodPrec,
	lexer.SLASH: prodPrec,
}

// Parser holds a token lookahead buffer over a Lexer and the lexical scope
// stack used to resolve identifiers to de Bruijn depths.
type Parser struct {
	l    *lexer.Lexer
	cur  lexer.Token
	peek lexer.Token

	source, file string
	scope        []string // innermost binder last, matching term.NLambda's convention
	errs         []*errors.CompilerError
}

// New creates a Parser over source, identified as file for diagnostics.
func New(source, file string) *Parser {
	p := &Parser{l: lexer.New(source), source: source, file: file}
	p.advance()
	p.advance()
	return p
}

// Parse parses source as a single expression and returns its term tree.
func Parse(source, file string) (*term.Node, error) {
	p := New(source, file)
	expr := p.parseExpr(lowest)
	p.expect(lexer.EOF, "expected end of input")
	if len(p.errs) > 0 {
		return nil, fmt.Errorf("%s", errors.FormatErrorsWithContext(p.errs, 1, false))
	}
	return expr, nil
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) addError(pos lexer.Position, msg string) {
	p.errs = append(p.errs, errors.NewCompilerError(pos, msg, p.source, p.file))
}

func (p *Parser) expect(t lexer.TokenType, msg string) {
	if p.cur.Type != t {
		p.addError(p.cur.Pos, fmt.Sprintf("%s, got %q", msg, p.cur.Literal))
		return
	}
	p.advance()
}

// parseExpr parses let/with forms or, failing that, a binary expression
// chain down to minPrec.
func (p *Parser) parseExpr(minPrec int) *term.Node {
	if p.cur.Type == lexer.LET || p.cur.Type == lexer.WITH {
		return p.parseLetOrWith()
	}
	return p.parseBinary(minPrec)
}

// parseLetOrWith desugars "let NAME VALUE in EXPR" / "with NAME VALUE in
// EXPR" to App(Lambda(EXPR), VALUE): VALUE is parsed in the *outer* scope
// (spec §6: "let/with sugar is de-sugared to App(Lambda(body), value)"),
// so the binding is not implicitly recursive.
func (p *Parser) parseLetOrWith() *term.Node {
	pos := p.cur.Pos
	p.advance() // consume 'let'/'with'

	if p.cur.Type != lexer.IDENT {
		p.addError(p.cur.Pos, "expected a name after let/with")
		return term.NewNum(pos, 0)
	}
	name := p.cur.Literal
	p.advance()

	value := p.parseBinary(lowest)
	p.expect(lexer.IN, "expected 'in'")

	p.pushScope(name)
	body := p.parseExpr(lowest)
	p.popScope()

	return term.NewApp(pos, term.NewLambda(pos, body), value)
}

// parseBinary implements precedence climbing over the infix operator set:
// pipe is desugared to App(rhs, lhs); the arithmetic/=num operators
// desugar to App(App(Primitive, lhs), rhs).
func (p *Parser) parseBinary(minPrec int) *term.Node {
	left := p.parseApp()

	for {
		prec, ok := infixPrecedence[p.cur.Type]
		if !ok || prec < minPrec {
			return left
		}
		opTok := p.cur
		p.advance()
		right := p.parseBinary(prec + 1) // left-associative

		if opTok.Type == lexer.PIPE {
			left = term.NewApp(opTok.Pos, right, left)
			continue
		}
		left = term.NApp(opTok.Pos, p.primitiveFor(opTok), left, right)
	}
}

func (p *Parser) primitiveFor(tok lexer.Token) *term.Node {
	name := tok.Literal
	switch tok.Type {
	case lexer.PLUS:
		name = "+"
	case lexer.MINUS:
		name = "-"
	case lexer.STAR:
		name = "*"
	case lexer.SLASH:
		name = "/"
	case lexer.EQNUM:
		name = "=num"
	}
	id, arity, ok := prim.Lookup(name)
	if !ok {
		p.addError(tok.Pos, "unknown operator "+name)
		return term.NewNum(tok.Pos, 0)
	}
	return term.NewPrim(tok.Pos, id, arity, name)
}

// parseApp parses left-associative juxtaposition: one or more atoms folded
// with term.NApp, the tightest-binding surface construct.
func (p *Parser) parseApp() *term.Node {
	fn := p.parseAtom()
	for p.startsAtom() {
		arg := p.parseAtom()
		fn = term.NewApp(fn.Pos, fn, arg)
	}
	return fn
}

func (p *Parser) startsAtom() bool {
	switch p.cur.Type {
	case lexer.LPAREN, lexer.BACKSLASH, lexer.IDENT, lexer.PRIM, lexer.INT, lexer.STRING:
		return true
	default:
		return false
	}
}

func (p *Parser) parseAtom() *term.Node {
	tok := p.cur
	switch tok.Type {
	case lexer.LPAREN:
		p.advance()
		inner := p.parseExpr(lowest)
		p.expect(lexer.RPAREN, "expected ')'")
		return inner

	case lexer.BACKSLASH:
		return p.parseLambda()

	case lexer.INT:
		p.advance()
		return term.NewNum(tok.Pos, parseUint(tok.Literal))

	case lexer.STRING:
		p.advance()
		return term.NewBytes(tok.Pos, []byte(tok.Literal))

	case lexer.PRIM:
		p.advance()
		id, arity, ok := prim.Lookup(tok.Literal)
		if !ok {
			p.addError(tok.Pos, "unknown primitive "+tok.Literal)
			return term.NewNum(tok.Pos, 0)
		}
		return term.NewPrim(tok.Pos, id, arity, tok.Literal)

	case lexer.IDENT:
		p.advance()
		if id, arity, ok := prim.Lookup(tok.Literal); ok {
			return term.NewPrim(tok.Pos, id, arity, tok.Literal)
		}
		depth, found := p.resolve(tok.Literal)
		if !found {
			p.addError(tok.Pos, "unbound variable "+tok.Literal)
			return term.NewNum(tok.Pos, 0)
		}
		return term.NewVar(tok.Pos, depth)

	default:
		p.addError(tok.Pos, fmt.Sprintf("unexpected token %q", tok.Literal))
		p.advance()
		return term.NewNum(tok.Pos, 0)
	}
}

// parseLambda parses "\x y z. body", desugaring the N-ary parameter list
// into nested unary Lambdas (spec §6: "Lambdas are always unary; N-ary
// surface sugar is de-sugared by the parser into nested Lambdas").
func (p *Parser) parseLambda() *term.Node {
	pos := p.cur.Pos
	p.advance() // consume '\'

	var params []string
	for p.cur.Type == lexer.IDENT {
		params = append(params, p.cur.Literal)
		p.advance()
	}
	if len(params) == 0 {
		p.addError(p.cur.Pos, "expected at least one parameter after '\\'")
	}
	p.expect(lexer.DOT, "expected '.' after lambda parameters")

	for _, name := range params {
		p.pushScope(name)
	}
	body := p.parseExpr(lowest)
	for range params {
		p.popScope()
	}

	return term.NLambda(pos, len(params), body)
}

func (p *Parser) pushScope(name string) { p.scope = append(p.scope, name) }
func (p *Parser) popScope()             { p.scope = p.scope[:len(p.scope)-1] }

// resolve looks up name in the lexical scope stack innermost-first,
// returning its de Bruijn depth (innermost enclosing binder == 1).
func (p *Parser) resolve(name string) (uint32, bool) {
	for i := len(p.scope) - 1; i >= 0; i-- {
		if p.scope[i] == name {
			return uint32(len(p.scope) - i), true
		}
	}
	return 0, false
}

func parseUint(s string) uint64 {
	var v uint64
	for _, c := range s {
		v = v*10 + uint64(c-'0')
	}
	return v
}
