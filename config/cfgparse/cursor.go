// Package cfgparse implements Surefire's section-based configuration
// parser: it walks a tokenized config file and produces the untyped
// parse trees in package ast, one flavor for state-vector configs and
// one for state-machine configs. Semantic checks (duplicate names,
// type mismatches, reserved-alias binding) are left to the
// downstream builder/assembler; this package only enforces shape.
package cfgparse

import (
	"strings"

	"github.com/hashicorp/go-multierror"

	"j5.nz/surefire/config/ast"
	"j5.nz/surefire/config/token"
	"j5.nz/surefire/errs"
)

type cursor struct {
	file string
	toks []token.Token
	pos  int
	errs *multierror.Error
}

func newCursor(file string, toks []token.Token) *cursor {
	return &cursor{file: file, toks: toks}
}

func (c *cursor) peek() token.Token {
	if c.pos >= len(c.toks) {
		return token.Token{Kind: token.EOF}
	}
	return c.toks[c.pos]
}

func (c *cursor) peekAt(off int) token.Token {
	i := c.pos + off
	if i >= len(c.toks) {
		return token.Token{Kind: token.EOF}
	}
	return c.toks[i]
}

func (c *cursor) atEOF() bool { return c.peek().Kind == token.EOF }

func (c *cursor) advance() token.Token {
	t := c.peek()
	if !c.atEOF() {
		c.pos++
	}
	return t
}

func (c *cursor) skipNewlines() {
	for c.peek().Kind == token.NEWLINE {
		c.advance()
	}
}

func (c *cursor) fail(tok token.Token, format string, args ...interface{}) {
	c.errs = multierror.Append(c.errs, errs.At(errs.CfgSyntax, c.file, tok.Line, tok.Col, format, args...))
}

// expectKind consumes and returns the next token if it has kind k,
// else records a CfgSyntax diagnostic and returns the zero Token with
// ok=false.
func (c *cursor) expectKind(k token.Kind, what string) (token.Token, bool) {
	tok := c.peek()
	if tok.Kind != k {
		c.fail(tok, "expected %s, got %s", what, tok)
		return token.Token{}, false
	}
	return c.advance(), true
}

// parseAnnotations consumes a run of ANNOTATION tokens, each
// optionally followed by "=" VALUE, stopping at the first token that
// is not an annotation.
func (c *cursor) parseAnnotations() []ast.Annotation {
	var anns []ast.Annotation
	for c.peek().Kind == token.ANNOTATION {
		tok := c.advance()
		ann := ast.Annotation{Name: tok.Text, Line: tok.Line, Col: tok.Col}
		if c.peek().Kind == token.OPERATOR && c.peek().Text == "=" {
			c.advance()
			val := c.advance()
			ann.Value = val.Text
		}
		anns = append(anns, ann)
	}
	return anns
}

// parseElemDecl parses "TYPE NAME { annotation }" and consumes the
// trailing run of newlines (or leaves the cursor positioned at a
// SECTION/EOF token that ends the enclosing section).
func (c *cursor) parseElemDecl() (ast.ElementDecl, bool) {
	typeTok, ok := c.expectKind(token.IDENT, "a type name")
	if !ok {
		return ast.ElementDecl{}, false
	}
	nameTok, ok := c.expectKind(token.IDENT, "an element name")
	if !ok {
		return ast.ElementDecl{}, false
	}
	anns := c.parseAnnotations()
	decl := ast.ElementDecl{Type: typeTok.Text, Name: nameTok.Text, Annotations: anns, Line: typeTok.Line, Col: typeTok.Col}
	c.skipNewlines()
	return decl, true
}

// splitSectionName splits a SECTION token's text on "/", supporting
// the legacy "REGION/Name" spelling alongside the current bare
// "Name" spelling.
func splitSectionName(text string) string {
	if i := strings.IndexByte(text, '/'); i >= 0 {
		return text[i+1:]
	}
	return text
}
