// Package exprparse implements Surefire's expression parser: a
// recursive-descent, operator-precedence parser using a
// precedence-climbing design, generalized to this grammar's
// relational-chain rewrite and function-call syntax for the
// rolling-statistics functions.
package exprparse

import (
	"strconv"

	"github.com/hashicorp/go-multierror"

	"j5.nz/surefire/config/ast"
	"j5.nz/surefire/config/token"
	"j5.nz/surefire/errs"
)

// StatFuncs lists the recognized rolling-statistics functions, each
// with arity 2: the inner expression and the window size.
var StatFuncs = map[string]bool{
	"ROLL_AVG": true, "ROLL_MEDIAN": true, "ROLL_MIN": true,
	"ROLL_MAX": true, "ROLL_RANGE": true,
}

type parser struct {
	file string
	toks []token.Token
	pos  int
	errs *multierror.Error
}

// Parse parses toks (the tokens of exactly one expression fragment,
// with no leading/trailing NEWLINE) into an untyped AST. emptyLine/
// emptyCol position an EXP_EMPTY diagnostic when toks is empty.
func Parse(file string, toks []token.Token, emptyLine, emptyCol int) (*ast.Expr, error) {
	if len(toks) == 0 {
		return nil, errs.At(errs.ExpEmpty, file, emptyLine, emptyCol, "empty expression")
	}
	p := &parser{file: file, toks: toks}
	e := p.parseOr()
	if p.errs == nil && !p.atEOF() {
		tok := p.peek()
		p.fail(errs.ExpSyntax, tok, "unexpected trailing token %s", tok)
	}
	if p.errs != nil {
		return nil, p.errs.ErrorOrNil()
	}
	return e, nil
}

func (p *parser) atEOF() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() token.Token {
	if p.atEOF() {
		if len(p.toks) > 0 {
			last := p.toks[len(p.toks)-1]
			return token.Token{Kind: token.EOF, Line: last.Line, Col: last.Col}
		}
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *parser) advance() token.Token {
	t := p.peek()
	if !p.atEOF() {
		p.pos++
	}
	return t
}

func (p *parser) fail(code errs.Code, tok token.Token, format string, args ...interface{}) {
	p.errs = multierror.Append(p.errs, errs.At(code, p.file, tok.Line, tok.Col, format, args...))
}

func isOp(t token.Token, variants ...string) bool {
	if t.Kind != token.OPERATOR {
		return false
	}
	for _, v := range variants {
		if t.Text == v {
			return true
		}
	}
	return false
}

func (p *parser) parseOr() *ast.Expr {
	left := p.parseAnd()
	for isOp(p.peek(), "OR", "or") {
		opTok := p.advance()
		right := p.parseAnd()
		left = &ast.Expr{Kind: ast.ExprBinOp, Op: "OR", L: left, R: right, Line: opTok.Line, Col: opTok.Col}
	}
	return left
}

func (p *parser) parseAnd() *ast.Expr {
	left := p.parseEquality()
	for isOp(p.peek(), "AND", "and") {
		opTok := p.advance()
		right := p.parseEquality()
		left = &ast.Expr{Kind: ast.ExprBinOp, Op: "AND", L: left, R: right, Line: opTok.Line, Col: opTok.Col}
	}
	return left
}

func (p *parser) parseEquality() *ast.Expr {
	left := p.parseRelational()
	for isOp(p.peek(), "==", "!=") {
		opTok := p.advance()
		right := p.parseRelational()
		left = &ast.Expr{Kind: ast.ExprBinOp, Op: opTok.Text, L: left, R: right, Line: opTok.Line, Col: opTok.Col}
	}
	return left
}

// parseRelational implements the double-inequality rewrite: a chain
// of relational operators at this precedence level is rewritten into
// an AND of the pairwise comparisons, preserving left-to-right
// evaluation, instead of a naive left-associative fold (which would
// compare a bool against the next operand).
func (p *parser) parseRelational() *ast.Expr {
	cur := p.parseAdditive()
	var chain *ast.Expr
	for isOp(p.peek(), "<", "<=", ">", ">=") {
		opTok := p.advance()
		next := p.parseAdditive()
		cmp := &ast.Expr{Kind: ast.ExprBinOp, Op: opTok.Text, L: cur, R: next, Line: opTok.Line, Col: opTok.Col}
		if chain == nil {
			chain = cmp
		} else {
			chain = &ast.Expr{Kind: ast.ExprBinOp, Op: "AND", L: chain, R: cmp, Line: opTok.Line, Col: opTok.Col}
		}
		cur = next
	}
	if chain == nil {
		return cur
	}
	return chain
}

func (p *parser) parseAdditive() *ast.Expr {
	left := p.parseMultiplicative()
	for isOp(p.peek(), "+", "-") {
		opTok := p.advance()
		right := p.parseMultiplicative()
		left = &ast.Expr{Kind: ast.ExprBinOp, Op: opTok.Text, L: left, R: right, Line: opTok.Line, Col: opTok.Col}
	}
	return left
}

func (p *parser) parseMultiplicative() *ast.Expr {
	left := p.parseUnary()
	for isOp(p.peek(), "*", "/") {
		opTok := p.advance()
		right := p.parseUnary()
		left = &ast.Expr{Kind: ast.ExprBinOp, Op: opTok.Text, L: left, R: right, Line: opTok.Line, Col: opTok.Col}
	}
	return left
}

// parseUnary handles right-associative unary NOT and unary minus.
func (p *parser) parseUnary() *ast.Expr {
	if isOp(p.peek(), "NOT", "not") {
		opTok := p.advance()
		x := p.parseUnary()
		return &ast.Expr{Kind: ast.ExprUnary, Op: "NOT", L: x, Line: opTok.Line, Col: opTok.Col}
	}
	if isOp(p.peek(), "-") {
		opTok := p.advance()
		x := p.parseUnary()
		return &ast.Expr{Kind: ast.ExprUnary, Op: "-", L: x, Line: opTok.Line, Col: opTok.Col}
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() *ast.Expr {
	tok := p.peek()
	switch tok.Kind {
	case token.CONSTANT:
		p.advance()
		return &ast.Expr{Kind: ast.ExprConst, Text: tok.Text, Line: tok.Line, Col: tok.Col}
	case token.IDENT:
		p.advance()
		if p.peek().Kind == token.LPAREN {
			return p.parseCall(tok)
		}
		return &ast.Expr{Kind: ast.ExprIdent, Name: tok.Text, Line: tok.Line, Col: tok.Col}
	case token.LPAREN:
		p.advance()
		inner := p.parseOr()
		if p.peek().Kind != token.RPAREN {
			p.fail(errs.ExpParen, p.peek(), "expected ')' to close '('")
			return inner
		}
		p.advance()
		return inner
	default:
		p.fail(errs.ExpTok, tok, "unexpected token %s in expression", tok)
		if !p.atEOF() {
			p.advance()
		}
		return &ast.Expr{Kind: ast.ExprConst, Text: "0", Line: tok.Line, Col: tok.Col}
	}
}

func (p *parser) parseCall(name token.Token) *ast.Expr {
	p.advance() // consume '('
	call := &ast.Expr{Kind: ast.ExprCall, Name: name.Text, Line: name.Line, Col: name.Col}
	if p.peek().Kind == token.RPAREN {
		p.advance()
		return call
	}
	for {
		call.Args = append(call.Args, p.parseOr())
		if p.peek().Kind == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	if p.peek().Kind != token.RPAREN {
		p.fail(errs.ExpParen, p.peek(), "expected ')' to close call to %s", name.Text)
		return call
	}
	p.advance()
	return call
}

// ParseNumber parses a CONSTANT token's text into a float64, used by
// the assembler when folding a Const node.
func ParseNumber(text string) (float64, error) {
	switch text {
	case "true", "TRUE":
		return 1, nil
	case "false", "FALSE":
		return 0, nil
	}
	return strconv.ParseFloat(text, 64)
}

// IsBoolLiteral reports whether text is one of the accepted boolean
// constant spellings.
func IsBoolLiteral(text string) bool {
	switch text {
	case "true", "false", "TRUE", "FALSE":
		return true
	}
	return false
}

// BoolLiteralValue returns the boolean value of an accepted spelling.
func BoolLiteralValue(text string) bool {
	return text == "true" || text == "TRUE"
}
